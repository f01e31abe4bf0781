package model

import (
	"context"
	"time"
)

// CodeKind enumerates the optical code families the capture engine decodes.
type CodeKind string

const (
	// CodeKindBarcode is a 1-D barcode, typically the tracking number label.
	CodeKindBarcode CodeKind = "barcode"
	// CodeKindQR is a 2-D QR code.
	CodeKindQR CodeKind = "qr"
)

// OrderResolver defines the backend scan endpoints that exchange a decoded
// or typed code for an order. Barcode and QR resolve through distinct
// endpoints even though both yield an order.
type OrderResolver interface {
	ResolveBarcode(ctx context.Context, code string) (OrderSummary, error)
	ResolveQR(ctx context.Context, code string) (OrderSummary, error)
}

// ScanStatus is the outcome of one recorded resolution attempt.
type ScanStatus string

const (
	ScanStatusSuccess ScanStatus = "success"
	ScanStatusFailed  ScanStatus = "failed"
)

// ScanRecord is one resolution attempt persisted in the local scan history.
type ScanRecord struct {
	ID        string
	Code      string
	Kind      CodeKind
	Status    ScanStatus
	OrderID   string
	ErrorMsg  string
	ScannedAt time.Time
}

// ScanHistoryStore persists resolution attempts on the agent's device.
type ScanHistoryStore interface {
	RecordScan(ctx context.Context, rec ScanRecord) error
	Recent(ctx context.Context, limit int) ([]ScanRecord, error)
}
