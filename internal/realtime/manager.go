package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/omix2003/courierlink/internal/logger"
	"github.com/omix2003/courierlink/internal/model"
	"github.com/omix2003/courierlink/internal/session"
)

// Status enumerates connection manager states.
type Status string

const (
	StatusDisconnected Status = "DISCONNECTED"
	StatusConnecting   Status = "CONNECTING"
	StatusConnected    Status = "CONNECTED"
	StatusError        Status = "ERROR"
)

// Message is one tagged frame on the realtime channel.
type Message struct {
	Event model.EventName `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Conn is a single established realtime connection.
type Conn interface {
	ReadMessage() (Message, error)
	WriteMessage(msg Message) error
	Close() error
}

// Dialer establishes realtime connections bound to an auth token.
type Dialer interface {
	Dial(ctx context.Context, rawURL, token string) (Conn, error)
}

// Config contains connection manager parameters.
type Config struct {
	URL                  string
	MaxReconnectAttempts int
	BaseDelay            time.Duration
	MaxDelay             time.Duration
}

// Handler consumes a decoded event payload.
type Handler func(payload any)

// Manager owns the single realtime connection for an authenticated session:
// token binding at handshake, bounded exponential-backoff reconnection on
// unexpected disconnects, and a pub/sub surface for event subscribers.
// Subscribers attach and detach handlers without owning the connection
// lifecycle.
type Manager struct {
	dialer  Dialer
	cfg     Config
	session *session.Session
	logger  *logger.Logger

	// after is time.AfterFunc, injectable in tests.
	after func(d time.Duration, f func()) *time.Timer

	mu             sync.Mutex
	status         Status
	conn           Conn
	attempts       int
	gen            uint64
	enabled        bool
	reconnectTimer *time.Timer
	handlers       map[model.EventName]map[uint64]Handler
	nextHandlerID  uint64
	onError        func(error)
}

// NewManager creates a connection manager bound to the session's token.
func NewManager(dialer Dialer, sess *session.Session, cfg Config, l *logger.Logger) *Manager {
	return &Manager{
		dialer:   dialer,
		cfg:      cfg,
		session:  sess,
		logger:   l,
		after:    time.AfterFunc,
		status:   StatusDisconnected,
		handlers: make(map[model.EventName]map[uint64]Handler),
	}
}

// SetErrorHandler installs a callback for connection errors. Errors are
// reported via this callback, never thrown to callers.
func (m *Manager) SetErrorHandler(fn func(error)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onError = fn
}

// Status returns the current connection status.
func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// ReconnectAttempts returns the current reconnection attempt counter.
func (m *Manager) ReconnectAttempts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.attempts
}

// Connect opens a connection bound to the session's current token. It is a
// no-op when already connected or connecting, or when no token is present.
// Any previous connection is disposed before the new one opens.
func (m *Manager) Connect(ctx context.Context) {
	m.mu.Lock()
	if m.status == StatusConnected || m.status == StatusConnecting {
		m.mu.Unlock()
		return
	}
	token := m.session.Token()
	if token == "" {
		m.mu.Unlock()
		m.logger.Warn("realtime connect skipped: no auth token")
		return
	}
	m.disposeLocked()
	m.enabled = true
	m.status = StatusConnecting
	gen := m.gen
	m.mu.Unlock()

	go m.dial(ctx, gen, token)
}

func (m *Manager) dial(ctx context.Context, gen uint64, token string) {
	conn, err := m.dialer.Dial(ctx, m.cfg.URL, token)

	m.mu.Lock()
	if gen != m.gen || !m.enabled {
		m.mu.Unlock()
		if err == nil {
			_ = conn.Close()
		}
		return
	}
	if err != nil {
		m.status = StatusError
		m.mu.Unlock()
		m.report(fmt.Errorf("realtime connect: %w", err))
		// a connect error does not stop the schedule; retries continue
		m.scheduleReconnect(ctx)
		return
	}
	m.conn = conn
	m.status = StatusConnected
	m.attempts = 0
	m.mu.Unlock()

	m.logger.Info("realtime connected")
	go m.readLoop(ctx, gen, conn)
}

func (m *Manager) readLoop(ctx context.Context, gen uint64, conn Conn) {
	for {
		msg, err := conn.ReadMessage()
		if err != nil {
			m.mu.Lock()
			stale := gen != m.gen || !m.enabled
			if !stale {
				m.conn = nil
				m.status = StatusDisconnected
			}
			m.mu.Unlock()
			if stale {
				// locally initiated disconnect; no reconnect
				return
			}
			m.logger.Warn("realtime connection lost", "error", err)
			m.scheduleReconnect(ctx)
			return
		}
		m.dispatch(msg)
	}
}

// scheduleReconnect arms the backoff timer for the next dial. Delays follow
// min(base<<attempts, max); no timer is armed once attempts are exhausted,
// the manager was torn down, or the token disappeared.
func (m *Manager) scheduleReconnect(ctx context.Context) {
	m.mu.Lock()
	if !m.enabled || m.session.Token() == "" {
		m.mu.Unlock()
		return
	}
	if m.attempts >= m.cfg.MaxReconnectAttempts {
		m.mu.Unlock()
		m.logger.Warn("realtime reconnect attempts exhausted", "attempts", m.cfg.MaxReconnectAttempts)
		return
	}

	delay := m.cfg.BaseDelay << uint(m.attempts)
	if delay > m.cfg.MaxDelay {
		delay = m.cfg.MaxDelay
	}
	m.attempts++
	attempt := m.attempts

	m.reconnectTimer = m.after(delay, func() {
		m.mu.Lock()
		if !m.enabled {
			m.mu.Unlock()
			return
		}
		token := m.session.Token()
		if token == "" {
			m.mu.Unlock()
			return
		}
		m.status = StatusConnecting
		m.gen++
		gen := m.gen
		m.mu.Unlock()

		m.logger.Info("realtime reconnecting", "attempt", attempt)
		m.dial(ctx, gen, token)
	})
	m.mu.Unlock()
}

// Disconnect cancels any pending reconnect timer, closes the active
// connection, and resets the attempt counter. Idempotent.
func (m *Manager) Disconnect() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enabled = false
	m.disposeLocked()
	m.status = StatusDisconnected
	m.attempts = 0
}

// disposeLocked tears down the current connection and invalidates any
// in-flight dial or read loop. Callers hold m.mu.
func (m *Manager) disposeLocked() {
	if m.reconnectTimer != nil {
		m.reconnectTimer.Stop()
		m.reconnectTimer = nil
	}
	if m.conn != nil {
		_ = m.conn.Close()
		m.conn = nil
	}
	m.gen++
}

// Emit sends an event when connected. It never blocks on connection state:
// when not connected the payload is dropped with a warning and false is
// returned.
func (m *Manager) Emit(event model.EventName, payload any) bool {
	m.mu.Lock()
	conn := m.conn
	connected := m.status == StatusConnected && conn != nil
	m.mu.Unlock()

	if !connected {
		m.logger.Warn("realtime emit dropped: not connected", "event", string(event))
		return false
	}

	data, err := json.Marshal(payload)
	if err != nil {
		m.logger.Warn("realtime emit dropped: bad payload", "event", string(event), "error", err)
		return false
	}
	if err := conn.WriteMessage(Message{Event: event, Data: data}); err != nil {
		m.logger.Warn("realtime emit failed", "event", string(event), "error", err)
		return false
	}
	return true
}

// Subscribe registers a handler for one event and returns a function that
// removes exactly that handler. Multiple subscribers to the same event do
// not interfere with each other's removal.
func (m *Manager) Subscribe(event model.EventName, h Handler) func() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.handlers[event] == nil {
		m.handlers[event] = make(map[uint64]Handler)
	}
	m.nextHandlerID++
	id := m.nextHandlerID
	m.handlers[event][id] = h

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.handlers[event], id)
	}
}

// dispatch validates the payload at the subscribe boundary and fans it out.
// Unknown events and malformed payloads are dropped.
func (m *Manager) dispatch(msg Message) {
	payload, err := model.DecodeEventPayload(msg.Event, msg.Data)
	if err != nil {
		m.logger.Debug("realtime event dropped", "event", string(msg.Event), "error", err)
		return
	}

	m.mu.Lock()
	hs := make([]Handler, 0, len(m.handlers[msg.Event]))
	for _, h := range m.handlers[msg.Event] {
		hs = append(hs, h)
	}
	m.mu.Unlock()

	for _, h := range hs {
		h(payload)
	}
}

func (m *Manager) report(err error) {
	m.mu.Lock()
	fn := m.onError
	m.mu.Unlock()
	if fn != nil {
		fn(err)
	}
}
