package integration_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type catalog struct {
	MovieID    uuid.UUID
	HallID     uuid.UUID
	ShowtimeID uuid.UUID
	SeatA1     uuid.UUID
	SeatA2     uuid.UUID
	SeatA3     uuid.UUID
}

// seedCatalog creates a movie, a hall with three seats, and a showtime
// priced at 1400 cents. The engine only reads these rows.
func seedCatalog(t testing.TB, app *TestApp) catalog {
	t.Helper()

	ctx := context.Background()

	c := catalog{
		MovieID:    uuid.New(),
		HallID:     uuid.New(),
		ShowtimeID: uuid.New(),
		SeatA1:     uuid.New(),
		SeatA2:     uuid.New(),
		SeatA3:     uuid.New(),
	}

	_, err := app.DB.Exec(ctx, `INSERT INTO movies (id, title) VALUES ($1, 'Night Train')`, c.MovieID)
	require.NoError(t, err)

	_, err = app.DB.Exec(ctx, `INSERT INTO halls (id, name) VALUES ($1, 'Hall 1')`, c.HallID)
	require.NoError(t, err)

	seats := map[uuid.UUID]int{c.SeatA1: 1, c.SeatA2: 2, c.SeatA3: 3}
	for seatID, number := range seats {
		_, err = app.DB.Exec(
			ctx,
			`INSERT INTO seats (id, hall_id, row_label, seat_number) VALUES ($1, $2, 'A', $3)`,
			seatID, c.HallID, number,
		)
		require.NoError(t, err)
	}

	_, err = app.DB.Exec(
		ctx,
		`INSERT INTO showtimes (id, movie_id, hall_id, starts_at, base_price_cents)
		VALUES ($1, $2, $3, NOW() + INTERVAL '1 day', 1400)`,
		c.ShowtimeID, c.MovieID, c.HallID,
	)
	require.NoError(t, err)

	return c
}

// authCookie mints the session cookie the auth collaborator would have
// issued for the given user.
func authCookie(t testing.TB, app *TestApp, userID uuid.UUID) *http.Cookie {
	t.Helper()

	ctx, err := app.Session.Load(context.Background(), "")
	require.NoError(t, err)

	app.Session.Put(ctx, "userID", userID.String())
	app.Session.Put(ctx, "userEmail", fmt.Sprintf("%s@example.com", userID))

	token, _, err := app.Session.Commit(ctx)
	require.NoError(t, err)

	return &http.Cookie{Name: "session_id", Value: token}
}

func doRequest(
	t testing.TB,
	server string,
	method, path string,
	body any,
	cookie *http.Cookie) *http.Response {

	t.Helper()

	var reader io.Reader

	if body != nil {
		jsonData, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequest(method, server+path, reader)
	require.NoError(t, err)

	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)

	return resp
}

func decodeBody[T any](t testing.TB, resp *http.Response) T {
	t.Helper()

	defer resp.Body.Close()

	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))

	return out
}
