package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/omix2003/courierlink/internal/model"
)

// ScanHistoryRepository persists resolution attempts in the local database.
type ScanHistoryRepository struct {
	db *sql.DB
}

// NewScanHistoryRepository creates a repository over db.
func NewScanHistoryRepository(db *sql.DB) *ScanHistoryRepository {
	return &ScanHistoryRepository{db: db}
}

// RecordScan appends one resolution attempt.
func (r *ScanHistoryRepository) RecordScan(ctx context.Context, rec model.ScanRecord) error {
	query := `INSERT INTO scan_history (id, code, kind, status, order_id, error_msg, scanned_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		rec.ID, rec.Code, string(rec.Kind), string(rec.Status), rec.OrderID, rec.ErrorMsg, rec.ScannedAt)
	if err != nil {
		return fmt.Errorf("failed to insert scan record: %w", err)
	}
	return nil
}

// Recent returns up to limit attempts, newest first.
func (r *ScanHistoryRepository) Recent(ctx context.Context, limit int) ([]model.ScanRecord, error) {
	query := `SELECT id, code, kind, status, order_id, error_msg, scanned_at
		FROM scan_history ORDER BY scanned_at DESC LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query scan history: %w", err)
	}
	defer rows.Close()

	var records []model.ScanRecord
	for rows.Next() {
		var rec model.ScanRecord
		var kind, status string
		if err := rows.Scan(&rec.ID, &rec.Code, &kind, &status, &rec.OrderID, &rec.ErrorMsg, &rec.ScannedAt); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		rec.Kind = model.CodeKind(kind)
		rec.Status = model.ScanStatus(status)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate scan history: %w", err)
	}
	return records, nil
}
