package realtime

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pledgewatch/pledgewatch/internal/domain"
)

const (
	// writeWait bounds a single frame write to a slow peer
	writeWait = 10 * time.Second
	// pongWait is how long a connection may stay silent
	pongWait = 60 * time.Second
	// pingPeriod must be shorter than pongWait
	pingPeriod = 50 * time.Second
	// sendSlack is outbound channel headroom beyond the replay burst
	sendSlack = 64
)

// HubConfig controls hub behavior
type HubConfig struct {
	ReplaySize int
}

// Hub owns the set of open WebSocket sessions and fans events out to
// them. New sessions first receive a replay of the most recent alerts,
// then live events; per-session delivery order matches generation
// order because a single goroutine owns all session membership and
// enqueueing.
type Hub struct {
	replay     *eventRing
	register   chan *session
	unregister chan *session
	events     chan Event
	done       chan struct{}
	sessions   map[*session]struct{}
	upgrader   websocket.Upgrader
	logger     *slog.Logger
}

// NewHub creates a Hub. Run must be started before Handle accepts
// connections.
func NewHub(cfg HubConfig, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		replay:     newEventRing(cfg.ReplaySize),
		register:   make(chan *session),
		unregister: make(chan *session),
		events:     make(chan Event, 256),
		done:       make(chan struct{}),
		sessions:   make(map[*session]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		logger: logger,
	}
}

// session is one subscriber connection. send is drained by exactly one
// writer goroutine so frames leave in enqueue order.
type session struct {
	conn *websocket.Conn
	send chan Event
}

// Run owns session membership and event distribution until ctx is
// canceled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			// done unblocks any register or unregister send that would
			// otherwise wait on this loop forever.
			close(h.done)
			for s := range h.sessions {
				close(s.send)
				delete(h.sessions, s)
			}
			return

		case s := <-h.register:
			// Replay lands in the channel before any live event can,
			// so the subscriber sees history first, in order.
			for _, e := range h.replay.Last(h.replay.size) {
				s.send <- e
			}
			h.sessions[s] = struct{}{}

		case s := <-h.unregister:
			if _, ok := h.sessions[s]; ok {
				delete(h.sessions, s)
				close(s.send)
			}

		case e := <-h.events:
			if e.Type == EventTypeAlert {
				h.replay.Push(e)
			}
			for s := range h.sessions {
				select {
				case s.send <- e:
				default:
					// Slow consumer; drop the session rather than
					// blocking everyone else.
					delete(h.sessions, s)
					close(s.send)
				}
			}
		}
	}
}

// Handle upgrades an HTTP request and attaches the connection to the
// hub.
func (h *Hub) Handle(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	s := &session{
		conn: conn,
		send: make(chan Event, h.replay.size+sendSlack),
	}
	select {
	case h.register <- s:
	case <-h.done:
		conn.Close()
		return
	}

	go h.writePump(s)
	go h.readPump(s)
}

// writePump drains the session's outbound channel. A write failure
// closes the connection; readPump then unregisters the session.
func (h *Hub) writePump(s *session) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.conn.Close()
	}()

	for {
		select {
		case e, ok := <-s.send:
			if !ok {
				s.conn.WriteControl(websocket.CloseMessage, []byte{}, time.Now().Add(writeWait))
				return
			}
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteJSON(e); err != nil {
				return
			}
		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump consumes inbound frames until the peer disconnects.
// Subscribers do not send application messages; the read loop exists to
// process control frames and detect closure.
func (h *Hub) readPump(s *session) {
	defer func() {
		select {
		case h.unregister <- s:
		case <-h.done:
		}
		s.conn.Close()
	}()

	s.conn.SetReadLimit(512)
	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		s.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// Broadcast enqueues an event for every open session. Best effort: if
// the hub's event queue is full the event is dropped and logged, never
// blocking the pipeline.
func (h *Hub) Broadcast(e Event) {
	select {
	case h.events <- e:
	default:
		h.logger.Warn("event queue full, dropping broadcast", "type", e.Type)
	}
}

// AlertCreated implements the pipeline broadcaster contract.
func (h *Hub) AlertCreated(alert *domain.Alert) {
	h.Broadcast(NewAlertEvent(alert))
}

// NewsIngested implements the pipeline broadcaster contract.
func (h *Hub) NewsIngested(article *domain.NewsArticle) {
	h.Broadcast(NewNewsEvent(article))
}

// AnalysisCompleted implements the pipeline broadcaster contract.
func (h *Hub) AnalysisCompleted(result *domain.AnalysisResult) {
	h.Broadcast(NewAnalysisEvent(result))
}
