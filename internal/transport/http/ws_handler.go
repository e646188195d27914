package http

import (
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"ramadan-quiz-service/internal/app"
	"ramadan-quiz-service/internal/domain"
)

// StatsFeed pushes live stats snapshots to the admin dashboard over a
// websocket. Subscribers receive the current snapshot on connect and a fresh
// one after every mutation; slow readers get stale updates dropped.
type StatsFeed struct {
	service  *app.QuizService
	upgrader websocket.Upgrader
}

func NewStatsFeed(service *app.QuizService) *StatsFeed {
	return &StatsFeed{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type statsMessage struct {
	Type    string       `json:"type"`
	Payload domain.Stats `json:"payload"`
}

// ServeWS authorizes the caller, upgrades the connection, and streams stats
// until the client disconnects.
func (h *StatsFeed) ServeWS(w http.ResponseWriter, r *http.Request) {
	adminEmail := r.URL.Query().Get("adminEmail")
	if adminEmail == "" {
		http.Error(w, "missing adminEmail", http.StatusBadRequest)
		return
	}

	// Authorize before upgrading so non-admins get a plain 403.
	updates, cancel, err := h.service.SubscribeStats(adminEmail)
	if err != nil {
		if errors.Is(err, domain.ErrForbidden) {
			http.Error(w, msgForbidden, http.StatusForbidden)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	defer cancel()

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	// Drain inbound frames; a read error means the client is gone, and
	// cancel closes the updates channel to stop the write loop.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				cancel()
				return
			}
		}
	}()

	for update := range updates {
		if err := conn.WriteJSON(statsMessage{Type: "stats", Payload: update}); err != nil {
			log.Printf("ws write error: %v", err)
			return
		}
	}
}
