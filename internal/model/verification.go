package model

import (
	"context"
	"time"
)

// VerificationMethod enumerates how a delivery was confirmed.
type VerificationMethod string

const (
	// MethodOTP is confirmation by a one-time numeric code.
	MethodOTP VerificationMethod = "OTP"
	// MethodQR is confirmation by scanning the recipient's QR code.
	MethodQR VerificationMethod = "QR"
)

// VerificationRecord tracks which delivery confirmation codes exist for one
// order and whether the delivery has been confirmed. The record is owned by
// the backend; the client reads it on page load and mutates it to its
// terminal state through a successful verify call.
type VerificationRecord struct {
	OrderID            string
	HasOTP             bool
	HasQRCode          bool
	ExpiresAt          *time.Time
	VerifiedAt         *time.Time
	VerificationMethod *VerificationMethod
}

// IsExpired reports whether the shared code expiry has passed. Expiry is
// evaluated lazily against wall-clock now; the backend remains authoritative.
func (r VerificationRecord) IsExpired(now time.Time) bool {
	return r.ExpiresAt != nil && now.After(*r.ExpiresAt)
}

// Verified reports whether the record has reached its terminal state.
func (r VerificationRecord) Verified() bool {
	return r.VerifiedAt != nil
}

// GeneratedCodes is the backend response to a generate request. The OTP
// itself is delivered to the recipient out of band and never returned here.
type GeneratedCodes struct {
	QRCode    string
	ExpiresAt time.Time
}

// VerificationAPI defines the backend verification endpoints the delivery
// verification state machine calls.
type VerificationAPI interface {
	GenerateVerification(ctx context.Context, orderID string) (GeneratedCodes, error)
	GetVerification(ctx context.Context, orderID string) (VerificationRecord, error)
	VerifyOTP(ctx context.Context, orderID, code string) error
	VerifyQR(ctx context.Context, orderID, code string) error
}
