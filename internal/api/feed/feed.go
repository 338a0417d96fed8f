// Package feed streams registry events to websocket subscribers.
//
// The hub is a fan-out only surface: clients receive issuance and
// transfer events as they commit but cannot mutate the registry over
// the socket.
package feed

import (
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"time"

	"golang.org/x/net/websocket"

	"github.com/lapelpin/lapelpin/internal/metrics"
	"github.com/lapelpin/lapelpin/internal/registry/domain"
)

const maxBacklogEvents = 256

type eventFrame struct {
	Type  string       `json:"type"`
	Event eventPayload `json:"event"`
}

type eventPayload struct {
	Seq       uint64 `json:"seq"`
	Kind      string `json:"kind"`
	BadgeID   uint64 `json:"badge_id"`
	Attendee  string `json:"attendee,omitempty"`
	Recipient string `json:"recipient,omitempty"`
	CreatedAt string `json:"created_at"`
}

type wsPeer struct {
	mu      sync.Mutex
	encoder *json.Encoder
}

func (p *wsPeer) writeFrame(frame eventFrame) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.encoder.Encode(frame)
}

// Hub broadcasts registry events to connected websocket peers. It
// keeps a bounded backlog so late subscribers see recent history.
type Hub struct {
	mu      sync.Mutex
	peers   map[*wsPeer]struct{}
	backlog []eventFrame
}

// NewHub creates an empty feed hub.
func NewHub() *Hub {
	return &Hub{peers: make(map[*wsPeer]struct{})}
}

// Notify fans the event out to every connected peer. Peers whose
// connection fails are dropped on their next read.
func (h *Hub) Notify(evt domain.Event) {
	frame := eventFrame{
		Type: "event",
		Event: eventPayload{
			Seq:       evt.Seq,
			Kind:      string(evt.Kind),
			BadgeID:   evt.BadgeID,
			Attendee:  evt.Attendee,
			Recipient: evt.Recipient,
			CreatedAt: evt.CreatedAt.UTC().Format(time.RFC3339),
		},
	}

	h.mu.Lock()
	h.backlog = append(h.backlog, frame)
	if len(h.backlog) > maxBacklogEvents {
		h.backlog = h.backlog[len(h.backlog)-maxBacklogEvents:]
	}
	peers := make([]*wsPeer, 0, len(h.peers))
	for peer := range h.peers {
		peers = append(peers, peer)
	}
	h.mu.Unlock()

	for _, peer := range peers {
		_ = peer.writeFrame(frame)
	}
}

func (h *Hub) join(peer *wsPeer) []eventFrame {
	h.mu.Lock()
	h.peers[peer] = struct{}{}
	backlog := make([]eventFrame, len(h.backlog))
	copy(backlog, h.backlog)
	h.mu.Unlock()
	metrics.FeedSubscribers.Inc()
	return backlog
}

func (h *Hub) leave(peer *wsPeer) {
	h.mu.Lock()
	delete(h.peers, peer)
	h.mu.Unlock()
	metrics.FeedSubscribers.Dec()
}

// Handler returns the websocket endpoint for the event feed.
func (h *Hub) Handler() http.Handler {
	wsHandler := websocket.Handler(func(conn *websocket.Conn) {
		h.handleConn(conn)
	})
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", http.MethodGet)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		wsHandler.ServeHTTP(w, r)
	})
}

func (h *Hub) handleConn(conn *websocket.Conn) {
	defer func() {
		_ = conn.Close()
	}()

	peer := &wsPeer{encoder: json.NewEncoder(conn)}
	backlog := h.join(peer)
	defer h.leave(peer)

	for _, frame := range backlog {
		if err := peer.writeFrame(frame); err != nil {
			return
		}
	}

	// Drain client frames until the peer disconnects. The feed is
	// one-way so inbound payloads are discarded.
	_, _ = io.Copy(io.Discard, conn)
}
