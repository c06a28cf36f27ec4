package app

import (
	"net/http"

	"github.com/google/uuid"
)

type sessionKey string

const (
	SessionKeyUserId    = sessionKey("userID")
	SessionKeyUserEmail = sessionKey("userEmail")
)

func (s sessionKey) String() string {
	return string(s)
}

func (app *Application) contextGetUserId(r *http.Request) uuid.UUID {
	userId, ok := r.Context().Value(SessionKeyUserId).(uuid.UUID)
	if !ok {
		panic("missing user id from context")
	}

	return userId
}

func (app *Application) contextGetUserEmail(r *http.Request) string {
	email, _ := r.Context().Value(SessionKeyUserEmail).(string)
	return email
}

// sessionUserId reports the session's user on routes that work both
// anonymously and authenticated; uuid.Nil means no user.
func (app *Application) sessionUserId(r *http.Request) uuid.UUID {
	userIdStr := app.sessionManager.GetString(r.Context(), SessionKeyUserId.String())
	if userIdStr == "" {
		return uuid.Nil
	}

	userId, err := uuid.Parse(userIdStr)
	if err != nil {
		return uuid.Nil
	}

	return userId
}
