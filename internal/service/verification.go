package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/omix2003/courierlink/internal/logger"
	"github.com/omix2003/courierlink/internal/model"
)

// VerificationState names the observable states of the delivery
// verification machine for one order.
type VerificationState string

const (
	VerificationStateNoCodes        VerificationState = "NO_CODES"
	VerificationStateCodesGenerated VerificationState = "CODES_GENERATED"
	VerificationStateCodesExpired   VerificationState = "CODES_EXPIRED"
	VerificationStateVerified       VerificationState = "VERIFIED"
)

// Verification drives the per-order delivery verification state machine:
// NO_CODES -> CODES_GENERATED (unexpired or expired) -> VERIFIED (terminal).
// Expired and already-verified records are rejected locally with no backend
// call; the backend still rejects authoritatively when a stale client slips
// a request through.
type Verification struct {
	api    model.VerificationAPI
	logger *logger.Logger
	now    func() time.Time

	mu     sync.Mutex
	record model.VerificationRecord
}

// NewVerification creates a state machine for one order, seeded with the
// record loaded when the order view opened.
func NewVerification(api model.VerificationAPI, record model.VerificationRecord, l *logger.Logger) *Verification {
	return &Verification{
		api:    api,
		record: record,
		logger: l,
		now:    time.Now,
	}
}

// Record returns a snapshot of the current verification record.
func (v *Verification) Record() model.VerificationRecord {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.record
}

// State derives the current machine state. Expiry is evaluated lazily
// against wall-clock now; there is no background timer.
func (v *Verification) State() VerificationState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return stateOf(v.record, v.now())
}

func stateOf(r model.VerificationRecord, now time.Time) VerificationState {
	switch {
	case r.Verified():
		return VerificationStateVerified
	case !r.HasOTP && !r.HasQRCode:
		return VerificationStateNoCodes
	case r.IsExpired(now):
		return VerificationStateCodesExpired
	default:
		return VerificationStateCodesGenerated
	}
}

// CanVerify reports whether the verify actions should be enabled.
func (v *Verification) CanVerify() bool {
	return v.State() == VerificationStateCodesGenerated
}

// Generate requests a fresh OTP and QR code pair from the backend and
// transitions the record to CODES_GENERATED with the returned expiry.
func (v *Verification) Generate(ctx context.Context) (model.GeneratedCodes, error) {
	v.mu.Lock()
	if v.record.Verified() {
		v.mu.Unlock()
		return model.GeneratedCodes{}, model.ErrAlreadyVerified
	}
	orderID := v.record.OrderID
	v.mu.Unlock()

	codes, err := v.api.GenerateVerification(ctx, orderID)
	if err != nil {
		v.logger.Warn("verification generate failed", "order_id", orderID, "error", err)
		return model.GeneratedCodes{}, fmt.Errorf("failed to generate verification codes: %w", err)
	}

	v.mu.Lock()
	v.record.HasOTP = true
	v.record.HasQRCode = true
	exp := codes.ExpiresAt
	v.record.ExpiresAt = &exp
	v.mu.Unlock()

	v.logger.Info("verification codes generated", "order_id", orderID, "expires_at", codes.ExpiresAt)
	return codes, nil
}

// VerifyWithOTP submits a one-time code. On success the record reaches its
// terminal state and onVerified fires exactly once.
func (v *Verification) VerifyWithOTP(ctx context.Context, code string, onVerified func(model.VerificationRecord)) error {
	return v.verify(ctx, model.MethodOTP, code, onVerified)
}

// VerifyWithQR submits a scanned QR code. On success the record reaches its
// terminal state and onVerified fires exactly once.
func (v *Verification) VerifyWithQR(ctx context.Context, code string, onVerified func(model.VerificationRecord)) error {
	return v.verify(ctx, model.MethodQR, code, onVerified)
}

func (v *Verification) verify(ctx context.Context, method model.VerificationMethod, code string, onVerified func(model.VerificationRecord)) error {
	v.mu.Lock()
	switch {
	case v.record.Verified():
		v.mu.Unlock()
		return model.ErrAlreadyVerified
	case !v.record.HasOTP && !v.record.HasQRCode:
		v.mu.Unlock()
		return model.ErrNoCodes
	case v.record.IsExpired(v.now()):
		v.mu.Unlock()
		return model.ErrCodeExpired
	}
	orderID := v.record.OrderID
	v.mu.Unlock()

	var err error
	switch method {
	case model.MethodQR:
		err = v.api.VerifyQR(ctx, orderID, code)
	default:
		err = v.api.VerifyOTP(ctx, orderID, code)
	}
	if err != nil {
		// record stays CODES_GENERATED so the operator can retry
		v.logger.Warn("verification rejected", "order_id", orderID, "method", string(method), "error", err)
		return fmt.Errorf("verification failed: %w", err)
	}

	v.mu.Lock()
	if v.record.Verified() {
		// a concurrent verify reached the terminal state first
		v.mu.Unlock()
		return model.ErrAlreadyVerified
	}
	now := v.now()
	v.record.VerifiedAt = &now
	m := method
	v.record.VerificationMethod = &m
	rec := v.record
	v.mu.Unlock()

	v.logger.Info("delivery verified", "order_id", orderID, "method", string(method))
	if onVerified != nil {
		onVerified(rec)
	}
	return nil
}
