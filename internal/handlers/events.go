package handlers

import (
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/ijwi/citizen-server/internal/middleware"
	"github.com/ijwi/citizen-server/internal/notifier"
)

// EventsHandler streams room notifications to clients over Server-Sent
// Events. Each connection subscribes to the rooms derived from the caller's
// role and location.
type EventsHandler struct {
	publisher *notifier.RedisPublisher
	logger    *zap.SugaredLogger
}

// NewEventsHandler creates a new events handler
func NewEventsHandler(publisher *notifier.RedisPublisher, logger *zap.SugaredLogger) *EventsHandler {
	return &EventsHandler{publisher: publisher, logger: logger}
}

// Stream handles GET /api/events/stream
func (h *EventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		respondError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	user := middleware.CurrentUser(r.Context())
	rooms := notifier.RoomsFor(user)

	sub := h.publisher.Subscribe(r.Context(), rooms)
	defer sub.Close()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	fmt.Fprintf(w, ": connected to %d rooms\n\n", len(rooms))
	flusher.Flush()

	h.logger.Infow("Event stream opened", "user", user.ID, "rooms", len(rooms))

	ch := sub.Channel()
	for {
		select {
		case <-r.Context().Done():
			h.logger.Infow("Event stream closed", "user", user.ID)
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "event: message\ndata: %s\n\n", msg.Payload)
			flusher.Flush()
		}
	}
}
