// Package ws streams raid progress snapshots to subscribed clients.
package ws

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"example.com/voyage/internal/domain"
)

type subscriber struct {
	tenantID string
	out      chan []byte
}

// Hub fans raid snapshots out to websocket subscribers, keyed by tenant.
// Slow clients have updates dropped rather than blocking the broadcaster.
type Hub struct {
	mu       sync.Mutex
	subs     map[*subscriber]struct{}
	upgrader websocket.Upgrader
	logger   *log.Logger
}

// NewHub constructs a Hub.
func NewHub(logger *log.Logger) *Hub {
	if logger == nil {
		logger = log.Default()
	}
	return &Hub{
		subs:   make(map[*subscriber]struct{}),
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 4 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type raidSnapshot struct {
	Type             string  `json:"type"`
	RaidID           string  `json:"raid_id"`
	Name             string  `json:"name"`
	Category         string  `json:"category"`
	Status           string  `json:"status"`
	CurrentProgress  float64 `json:"current_progress"`
	GoalKwh          float64 `json:"goal_kwh"`
	ParticipantCount int     `json:"participant_count"`
}

// RaidProgress implements domain.RaidNotifier.
func (h *Hub) RaidProgress(raid domain.RaidEvent) {
	payload, err := json.Marshal(raidSnapshot{
		Type:             "raid.progress",
		RaidID:           raid.ID,
		Name:             raid.Name,
		Category:         string(raid.Category),
		Status:           string(raid.Status),
		CurrentProgress:  raid.CurrentProgress,
		GoalKwh:          raid.GoalKwh,
		ParticipantCount: raid.ParticipantCount,
	})
	if err != nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.subs {
		if sub.tenantID != raid.TenantID {
			continue
		}
		select {
		case sub.out <- payload:
		default:
			// Buffer full; the client catches up on the next snapshot.
		}
	}
}

// SubscriberCount reports the number of connected clients.
func (h *Hub) SubscriberCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

func (h *Hub) add(sub *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.subs[sub] = struct{}{}
}

func (h *Hub) remove(sub *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subs, sub)
}

// Handler upgrades the connection and streams snapshots for the tenant
// resolved by tenantFor until the client disconnects.
func (h *Hub) Handler(tenantFor func(*http.Request) string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID := tenantFor(r)
		if tenantID == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		conn, err := h.upgrader.Upgrade(w, r, nil)
		if err != nil {
			h.logger.Printf("ws upgrade failed: %v", err)
			return
		}
		defer conn.Close()

		sub := &subscriber{tenantID: tenantID, out: make(chan []byte, 16)}
		h.add(sub)
		defer h.remove(sub)

		done := make(chan struct{})
		go func() {
			defer close(done)
			for payload := range sub.out {
				_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
				if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
					return
				}
			}
		}()

		// Reader loop exists only to detect disconnects and pings.
		for {
			_ = conn.SetReadDeadline(time.Now().Add(120 * time.Second))
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}

		// Unregister before closing so no broadcast can hit a closed channel.
		h.remove(sub)
		close(sub.out)
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"), time.Now().Add(time.Second))
		select {
		case <-done:
		case <-time.After(500 * time.Millisecond):
		}
	}
}
