package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Sigitfad/ocr-reader/internal/session"
	"github.com/Sigitfad/ocr-reader/internal/store"
)

// WebSocket upgrader with reasonable defaults.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Operator dashboards are served from other origins on the shop floor.
		return true
	},
}

// Message types pushed to websocket clients.
const (
	msgInit           = "init_data"
	msgCandidates     = "ocr_text"
	msgDetected       = "code_detected"
	msgRejected       = "code_rejected"
	msgNoMatch        = "no_match"
	msgDailyReset     = "data_reset"
	msgSession        = "session_updated"
	msgRecordsDeleted = "records_deleted"
	msgExportProgress = "export_progress"
)

// sendBuffer is the number of queued messages after which a slow client is
// dropped.
const sendBuffer = 64

// WebSocketMessage represents a message sent over WebSocket.
type WebSocketMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// WebSocketConnWriter is an interface for writing WebSocket messages.
type WebSocketConnWriter interface {
	WriteMessage(messageType int, data []byte) error
}

// InitPayload is the first message every client receives.
type InitPayload struct {
	Session SessionResponse `json:"session"`
	Records []store.Record  `json:"records"`
	Stats   store.Stats     `json:"stats"`
}

type wsClient struct {
	conn WebSocketConnWriter
	send chan []byte
}

// writeLoop forwards queued messages until the queue is closed or done
// fires.
func (c *wsClient) writeLoop(done <-chan struct{}) {
	for {
		select {
		case data, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
			websocketMessagesTotal.WithLabelValues("sent").Inc()
		case <-done:
			return
		}
	}
}

// Hub fans session events out to websocket clients. It implements
// session.Observer.
type Hub struct {
	logger  *slog.Logger
	mu      sync.Mutex
	clients map[*wsClient]struct{}
	closed  bool
}

// NewHub returns an empty hub.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{logger: logger, clients: make(map[*wsClient]struct{})}
}

// Len returns the number of connected clients.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// register adds a client whose queue starts with initial, so nothing
// broadcast afterwards can overtake it.
func (h *Hub) register(conn WebSocketConnWriter, initial []byte) *wsClient {
	c := &wsClient{conn: conn, send: make(chan []byte, sendBuffer)}
	if initial != nil {
		c.send <- initial
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		close(c.send)
		return c
	}
	h.clients[c] = struct{}{}
	return c
}

func (h *Hub) unregister(c *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

// Broadcast queues msg for every client. Clients whose queue is full are
// dropped.
func (h *Hub) Broadcast(msg WebSocketMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("Failed to encode websocket message", "type", msg.Type, "error", err)
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			delete(h.clients, c)
			close(c.send)
			websocketMessagesTotal.WithLabelValues("dropped").Inc()
			h.logger.Warn("Dropping slow websocket client")
		}
	}
}

// Close disconnects all clients; later registrations are closed at once.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
}

func (h *Hub) OnCandidateTexts(texts []string) {
	h.Broadcast(WebSocketMessage{Type: msgCandidates, Payload: texts})
}

func (h *Hub) OnAccepted(d session.Detection) {
	h.Broadcast(WebSocketMessage{Type: msgDetected, Payload: d})
}

func (h *Hub) OnRejected(message string) {
	h.Broadcast(WebSocketMessage{Type: msgRejected, Payload: map[string]string{"message": message}})
}

func (h *Hub) OnNoMatch() {
	h.Broadcast(WebSocketMessage{Type: msgNoMatch})
}

func (h *Hub) OnDailyReset(day time.Time) {
	h.Broadcast(WebSocketMessage{Type: msgDailyReset, Payload: map[string]string{"day": day.Format(dateLayout)}})
}

func (s *Server) initMessage() ([]byte, error) {
	recs := s.session.Records()
	if recs == nil {
		recs = []store.Record{}
	}
	return json.Marshal(WebSocketMessage{Type: msgInit, Payload: InitPayload{
		Session: s.sessionResponse(),
		Records: recs,
		Stats:   s.session.Stats(),
	}})
}

// webSocketHandler streams session events to a dashboard client.
func (s *Server) webSocketHandler(w http.ResponseWriter, r *http.Request) {
	initial, err := s.initMessage()
	if err != nil {
		s.writeErrorResponse(w, "internal_error", err.Error(), http.StatusInternalServerError)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("Failed to upgrade connection to WebSocket", "error", err)
		return
	}
	defer func() {
		_ = conn.Close()
	}()

	websocketConnections.Inc()
	defer websocketConnections.Dec()

	s.logger.Info("WebSocket connection established", "remote_addr", r.RemoteAddr)

	c := s.hub.register(conn, initial)
	defer s.hub.unregister(c)

	done := make(chan struct{})
	defer close(done)
	go c.writeLoop(done)
	go pingLoop(conn, done)

	s.readLoop(conn)
}

// pingLoop keeps the connection alive until done is closed.
func pingLoop(conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(10*time.Second)); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

// readLoop discards client messages until the connection fails.
func (s *Server) readLoop(conn *websocket.Conn) {
	// Set read deadline to prevent hanging connections
	_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				s.logger.Error("WebSocket error", "error", err)
			}
			return
		}
		websocketMessagesTotal.WithLabelValues("received").Inc()
	}
}
