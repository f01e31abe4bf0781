package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omix2003/courierlink/internal/model"
)

func TestScanHistoryRepository_RecordScan(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now()
	rec := model.ScanRecord{
		ID:        "rec-1",
		Code:      "ABC123",
		Kind:      model.CodeKindBarcode,
		Status:    model.ScanStatusSuccess,
		OrderID:   "o9",
		ScannedAt: now,
	}

	mock.ExpectExec("INSERT INTO scan_history").
		WithArgs("rec-1", "ABC123", "barcode", "success", "o9", "", now).
		WillReturnResult(sqlmock.NewResult(1, 1))

	repo := NewScanHistoryRepository(db)
	require.NoError(t, repo.RecordScan(context.Background(), rec))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestScanHistoryRepository_RecordScan_Error(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO scan_history").
		WillReturnError(assert.AnError)

	repo := NewScanHistoryRepository(db)
	err = repo.RecordScan(context.Background(), model.ScanRecord{ID: "rec-1", ScannedAt: time.Now()})
	require.Error(t, err)
}

func TestScanHistoryRepository_Recent(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "code", "kind", "status", "order_id", "error_msg", "scanned_at"}).
		AddRow("rec-2", "QR-7", "qr", "failed", "", "No order matches this code.", now).
		AddRow("rec-1", "ABC123", "barcode", "success", "o9", "", now.Add(-time.Minute))

	mock.ExpectQuery("SELECT id, code, kind, status, order_id, error_msg, scanned_at").
		WithArgs(10).
		WillReturnRows(rows)

	repo := NewScanHistoryRepository(db)
	records, err := repo.Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, model.CodeKindQR, records[0].Kind)
	assert.Equal(t, model.ScanStatusFailed, records[0].Status)
	assert.Equal(t, "o9", records[1].OrderID)
	require.NoError(t, mock.ExpectationsWereMet())
}
