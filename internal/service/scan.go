package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/omix2003/courierlink/internal/logger"
	"github.com/omix2003/courierlink/internal/model"
)

// ScanResolver exchanges a decoded or typed code for an order and hands the
// result to caller-supplied continuations. It owns the per-session scan
// state: the single in-flight guard, the last error message, and the most
// recent resolved order. Every attempt is appended to the local scan
// history when a store is present.
type ScanResolver struct {
	id       uuid.UUID
	resolver model.OrderResolver
	history  model.ScanHistoryStore
	logger   *logger.Logger
	now      func() time.Time

	mu       sync.Mutex
	pending  bool
	resolved *model.OrderSummary
	lastErr  string
}

// NewScanResolver creates a resolver for one scan session. history may be
// nil when no local store is configured.
func NewScanResolver(resolver model.OrderResolver, history model.ScanHistoryStore, l *logger.Logger) *ScanResolver {
	return &ScanResolver{
		id:       uuid.New(),
		resolver: resolver,
		history:  history,
		logger:   l,
		now:      time.Now,
	}
}

// ID returns the scan session identity.
func (s *ScanResolver) ID() uuid.UUID {
	return s.id
}

// Pending reports whether a resolution is in flight.
func (s *ScanResolver) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// Resolved returns a copy of the most recent successfully resolved order.
func (s *ScanResolver) Resolved() *model.OrderSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.resolved == nil {
		return nil
	}
	order := *s.resolved
	return &order
}

// LastError returns the user-facing message of the most recent failure.
func (s *ScanResolver) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Resolve trims the code, rejects empty input locally, and otherwise calls
// the scan endpoint for the given kind. Exactly one of onOrder/onError
// fires, exactly once. At most one resolution runs at a time: a second call
// while one is pending is rejected with ErrResolveInFlight rather than
// raced.
func (s *ScanResolver) Resolve(ctx context.Context, code string, kind model.CodeKind, onOrder func(model.OrderSummary), onError func(message string)) error {
	code = strings.TrimSpace(code)
	if code == "" {
		if onError != nil {
			onError("Please enter or scan a code.")
		}
		return model.ErrEmptyCode
	}

	s.mu.Lock()
	if s.pending {
		s.mu.Unlock()
		return model.ErrResolveInFlight
	}
	s.pending = true
	s.mu.Unlock()

	order, err := s.lookup(ctx, code, kind)

	if err != nil {
		msg := userMessage(err)
		s.mu.Lock()
		s.pending = false
		s.resolved = nil
		s.lastErr = msg
		s.mu.Unlock()

		s.recordHistory(ctx, model.ScanRecord{
			ID:        uuid.NewString(),
			Code:      code,
			Kind:      kind,
			Status:    model.ScanStatusFailed,
			ErrorMsg:  msg,
			ScannedAt: s.now(),
		})
		s.logger.Warn("scan resolution failed", "kind", string(kind), "error", err)
		if onError != nil {
			onError(msg)
		}
		return err
	}

	s.mu.Lock()
	s.pending = false
	s.resolved = &order
	s.lastErr = ""
	s.mu.Unlock()

	s.recordHistory(ctx, model.ScanRecord{
		ID:        uuid.NewString(),
		Code:      code,
		Kind:      kind,
		Status:    model.ScanStatusSuccess,
		OrderID:   order.ID,
		ScannedAt: s.now(),
	})
	s.logger.Info("scan resolved", "kind", string(kind), "order_id", order.ID)
	if onOrder != nil {
		onOrder(order)
	}
	return nil
}

func (s *ScanResolver) lookup(ctx context.Context, code string, kind model.CodeKind) (model.OrderSummary, error) {
	if kind == model.CodeKindQR {
		return s.resolver.ResolveQR(ctx, code)
	}
	return s.resolver.ResolveBarcode(ctx, code)
}

// recordHistory is best effort: a broken local store must not break
// scanning.
func (s *ScanResolver) recordHistory(ctx context.Context, rec model.ScanRecord) {
	if s.history == nil {
		return
	}
	if err := s.history.RecordScan(ctx, rec); err != nil {
		s.logger.Warn("failed to record scan history", "error", err)
	}
}

// userMessage maps resolution failures onto operator-readable text. Domain
// messages from the backend pass through verbatim.
func userMessage(err error) string {
	switch {
	case errors.Is(err, model.ErrOrderNotFound):
		return "No order matches this code."
	case errors.Is(err, model.ErrPermissionDenied):
		return "You do not have access to this order."
	case errors.Is(err, model.ErrBackendUnreachable):
		return "Cannot connect to the server. Check your connection and try again."
	default:
		if msg := err.Error(); msg != "" {
			return msg
		}
		return "Something went wrong. Please try again."
	}
}
