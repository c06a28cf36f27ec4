package app

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/ticketnest/booking-engine/api"
)

const heartbeatInterval = 30 * time.Second

// StreamSeatEvents delivers the showtime's seat events over
// server-sent events. A client that connects mid-stream re-fetches the
// seat map; the stream only keeps it current from that point on.
func (app *Application) StreamSeatEvents(w http.ResponseWriter, r *http.Request) {
	showtimeID, err := app.readUUIDParam(r, "showtimeID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		app.serverErrorResponse(w, r, fmt.Errorf("streaming is not supported"))
		return
	}

	events, unsubscribe, err := app.broadcaster.Subscribe(r.Context(), showtimeID)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
	defer unsubscribe()

	// The server's write deadline would cut the stream short.
	rc := http.NewResponseController(w)
	rc.SetWriteDeadline(time.Time{})

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return

		case event, ok := <-events:
			if !ok {
				return
			}

			payload, err := json.Marshal(api.SeatEventPayload{
				SeatIds: toStrings(event.SeatIDs),
			})
			if err != nil {
				app.contextGetLogger(r).Error("failed to marshal seat event", "error", err)
				continue
			}

			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, payload)
			flusher.Flush()

		case <-heartbeat.C:
			fmt.Fprint(w, ": heartbeat\n\n")
			flusher.Flush()
		}
	}
}
