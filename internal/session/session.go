package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/omix2003/courierlink/internal/logger"
	"github.com/omix2003/courierlink/internal/model"
	"github.com/omix2003/courierlink/internal/token"
)

// Session holds the process-wide authenticated session state. It replaces
// ambient globals: created once a valid token is available, injected into
// every component that needs the token, and closed on logout. Components
// owning connections register teardown hooks so logout releases them.
type Session struct {
	id     uuid.UUID
	logger *logger.Logger
	now    func() time.Time

	mu        sync.RWMutex
	token     string
	userID    string
	role      string
	teardowns []func()
}

// New creates an unauthenticated session.
func New(l *logger.Logger) *Session {
	return &Session{
		id:     uuid.New(),
		logger: l,
		now:    time.Now,
	}
}

// ID returns the session identity.
func (s *Session) ID() uuid.UUID {
	return s.id
}

// SetToken binds an auth token to the session. Expired tokens are rejected
// so dependents never dial with credentials known to be stale. A session
// holds at most one token: replacing credentials goes through Close, which
// tears down everything bound to the old token, and then a fresh SetToken.
func (s *Session) SetToken(tok string) error {
	insp, err := token.Inspect(tok)
	if err != nil {
		return fmt.Errorf("failed to inspect token: %w", err)
	}
	if insp.Expired(s.now()) {
		return model.ErrTokenExpired
	}

	s.mu.Lock()
	if s.token != "" {
		s.mu.Unlock()
		return model.ErrSessionBound
	}
	s.token = tok
	s.userID = insp.UserID
	s.role = insp.Role
	s.mu.Unlock()

	s.logger.Debug("session token bound", "session_id", s.id, "user_id", insp.UserID)
	return nil
}

// Token returns the current auth token, or empty when logged out.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// UserID returns the user identity carried by the bound token.
func (s *Session) UserID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userID
}

// Authenticated reports whether a token is currently bound.
func (s *Session) Authenticated() bool {
	return s.Token() != ""
}

// OnTeardown registers a hook to run when the session closes.
func (s *Session) OnTeardown(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.teardowns = append(s.teardowns, fn)
}

// Close clears the token and runs teardown hooks in reverse registration
// order. Safe to call more than once; hooks run only on the first call.
func (s *Session) Close() {
	s.mu.Lock()
	hooks := s.teardowns
	s.teardowns = nil
	s.token = ""
	s.userID = ""
	s.role = ""
	s.mu.Unlock()

	for i := len(hooks) - 1; i >= 0; i-- {
		hooks[i]()
	}
	s.logger.Debug("session closed", "session_id", s.id)
}
