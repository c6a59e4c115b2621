package handlers

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ijwi/citizen-server/internal/middleware"
	"github.com/ijwi/citizen-server/internal/models"
	"github.com/ijwi/citizen-server/internal/notifier"
)

func setupEventsHandler(t *testing.T) (*EventsHandler, *notifier.RedisPublisher) {
	t.Helper()
	s := miniredis.RunT(t)
	pub, err := notifier.NewRedisPublisher("redis://" + s.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { pub.Close() })
	return NewEventsHandler(pub, zap.NewNop().Sugar()), pub
}

func asUser(user *models.User) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(middleware.WithUser(r.Context(), user)))
		})
	}
}

// publishUntilRead retries a publish until the reader reports success, since
// the subscription is established asynchronously after the stream opens.
func publishUntilRead(t *testing.T, pub *notifier.RedisPublisher, event models.Event, done <-chan struct{}) {
	t.Helper()
	go func() {
		ticker := time.NewTicker(50 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				_ = pub.Publish(context.Background(), event)
			}
		}
	}()
}

func readUntilData(t *testing.T, body *bufio.Reader) string {
	t.Helper()
	for {
		line, err := body.ReadString('\n')
		require.NoError(t, err)
		if strings.HasPrefix(line, "data: ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "data: "))
		}
	}
}

func TestStreamDeliversRoomEvents(t *testing.T) {
	h, pub := setupEventsHandler(t)
	user := &models.User{
		ID:       uuid.New(),
		Role:     models.RoleCitizen,
		Location: models.Location{Province: "Kigali", District: "Gasabo", Sector: "Remera"},
	}

	r := chi.NewRouter()
	r.With(asUser(user)).Get("/api/events/stream", h.Stream)
	srv := httptest.NewServer(r)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/events/stream")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	body := bufio.NewReader(resp.Body)
	comment, err := body.ReadString('\n')
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(comment, ": connected"))

	event, err := notifier.NewEvent(notifier.UserRoom(user.ID), notifier.EventNewMessage, map[string]string{"from": "a neighbour"})
	require.NoError(t, err)

	done := make(chan struct{})
	defer close(done)
	publishUntilRead(t, pub, event, done)

	data := readUntilData(t, body)
	require.Contains(t, data, notifier.UserRoom(user.ID))
	require.Contains(t, data, "a neighbour")
}

// The stream is mounted outside the request-timeout group, so a connection
// must stay open past the deadline that bounds every other route.
func TestStreamOutlivesRequestTimeout(t *testing.T) {
	h, pub := setupEventsHandler(t)
	user := &models.User{
		ID:       uuid.New(),
		Role:     models.RoleCitizen,
		Location: models.Location{Province: "Kigali", District: "Gasabo", Sector: "Remera"},
	}

	const deadline = 150 * time.Millisecond

	r := chi.NewRouter()
	r.Use(asUser(user))
	r.Get("/api/events/stream", h.Stream)
	r.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(deadline))
		r.Get("/api/slow", func(w http.ResponseWriter, req *http.Request) {
			<-req.Context().Done()
		})
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	// The bounded sibling route is cut off at the deadline.
	slow, err := http.Get(srv.URL + "/api/slow")
	require.NoError(t, err)
	slow.Body.Close()
	require.Equal(t, http.StatusGatewayTimeout, slow.StatusCode)

	resp, err := http.Get(srv.URL + "/api/events/stream")
	require.NoError(t, err)
	defer resp.Body.Close()

	body := bufio.NewReader(resp.Body)
	_, err = body.ReadString('\n')
	require.NoError(t, err)

	// Publish only after the deadline has long passed; a stream bounded by
	// the timeout would have been closed before this arrives.
	time.Sleep(3 * deadline)

	event, err := notifier.NewEvent(notifier.UserRoom(user.ID), notifier.EventNewMessage, map[string]string{"late": "still here"})
	require.NoError(t, err)

	done := make(chan struct{})
	defer close(done)
	publishUntilRead(t, pub, event, done)

	data := readUntilData(t, body)
	require.Contains(t, data, "still here")
}
