package chatclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"devmate-be/internal/pkg/logger"
)

const (
	wsWriteWait        = 10 * time.Second
	wsReconnectMin     = time.Second
	wsReconnectMax     = 30 * time.Second
	wsHandshakeTimeout = 10 * time.Second
)

// wsFrame is the wire envelope shared with the chat service.
type wsFrame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// WebSocketConfig configures a channel against the chat service endpoint.
// The session cookie (or token) credential rides on the handshake header,
// matching the cookie-based REST session.
type WebSocketConfig struct {
	URL    string
	Header http.Header
	Logger logger.ILogger
}

// WebSocketTransport implements Transport over a gorilla websocket with
// internal reconnection. Connection failures never surface as hard errors;
// the owning session just observes disconnected/connected transitions.
type WebSocketTransport struct {
	cfg    WebSocketConfig
	events chan Event

	mu      sync.Mutex
	conn    *websocket.Conn
	started bool
	closed  bool

	quit chan struct{}
	done chan struct{}
}

func NewWebSocketTransport(cfg WebSocketConfig) *WebSocketTransport {
	return &WebSocketTransport{
		cfg:    cfg,
		events: make(chan Event, 32),
		quit:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

func (t *WebSocketTransport) Connect(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return ErrClosed
	}
	if t.started {
		return nil
	}
	t.started = true
	go t.manage(ctx)
	return nil
}

// manage dials, pumps inbound frames, and redials with backoff until the
// transport is closed.
func (t *WebSocketTransport) manage(ctx context.Context) {
	defer close(t.done)
	defer close(t.events)

	backoff := wsReconnectMin
	dialer := &websocket.Dialer{HandshakeTimeout: wsHandshakeTimeout}

	for {
		conn, _, err := dialer.DialContext(ctx, t.cfg.URL, t.cfg.Header)
		if err != nil {
			t.logWarn("dial failed", map[string]interface{}{"url": t.cfg.URL, "error": err.Error()})
			select {
			case <-time.After(backoff):
			case <-t.quit:
				return
			case <-ctx.Done():
				return
			}
			backoff *= 2
			if backoff > wsReconnectMax {
				backoff = wsReconnectMax
			}
			continue
		}
		backoff = wsReconnectMin

		t.mu.Lock()
		if t.closed {
			t.mu.Unlock()
			conn.Close()
			return
		}
		t.conn = conn
		t.mu.Unlock()

		if !t.push(Event{Kind: EventConnected}) {
			conn.Close()
			return
		}

		t.readLoop(conn)

		t.mu.Lock()
		t.conn = nil
		closed := t.closed
		t.mu.Unlock()
		conn.Close()

		if closed || ctx.Err() != nil {
			return
		}
		if !t.push(Event{Kind: EventDisconnected}) {
			return
		}
	}
}

func (t *WebSocketTransport) readLoop(conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var frame wsFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			t.logWarn("malformed frame", map[string]interface{}{"error": err.Error()})
			continue
		}
		switch frame.Event {
		case eventMessageReceived:
			if !t.push(Event{Kind: EventMessage, Payload: frame.Data}) {
				return
			}
		case eventTyping:
			if !t.push(Event{Kind: EventTyping, Payload: frame.Data}) {
				return
			}
		case eventJoinRejected:
			if !t.push(Event{Kind: EventJoinRejected, Payload: frame.Data}) {
				return
			}
		}
	}
}

func (t *WebSocketTransport) push(ev Event) bool {
	select {
	case t.events <- ev:
		return true
	case <-t.quit:
		return false
	}
}

func (t *WebSocketTransport) Emit(event string, payload interface{}) error {
	t.mu.Lock()
	conn := t.conn
	closed := t.closed
	t.mu.Unlock()
	if closed {
		return ErrClosed
	}
	if conn == nil {
		return ErrNotConnected
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	frame, err := json.Marshal(wsFrame{Event: event, Data: data})
	if err != nil {
		return err
	}

	conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		if errors.Is(err, websocket.ErrCloseSent) {
			return ErrNotConnected
		}
		return err
	}
	return nil
}

func (t *WebSocketTransport) Events() <-chan Event {
	return t.events
}

func (t *WebSocketTransport) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	conn := t.conn
	started := t.started
	t.mu.Unlock()

	close(t.quit)
	if conn != nil {
		conn.Close()
	}
	if started {
		<-t.done
	} else {
		close(t.events)
	}
	return nil
}

func (t *WebSocketTransport) logWarn(msg string, details map[string]interface{}) {
	if t.cfg.Logger != nil {
		t.cfg.Logger.Warn("ChatTransport", msg, details)
	}
}
