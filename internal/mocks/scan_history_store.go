package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/omix2003/courierlink/internal/model"
)

// ScanHistoryStore is a mock implementation of model.ScanHistoryStore.
type ScanHistoryStore struct {
	mock.Mock
}

func (m *ScanHistoryStore) RecordScan(ctx context.Context, rec model.ScanRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *ScanHistoryStore) Recent(ctx context.Context, limit int) ([]model.ScanRecord, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ScanRecord), args.Error(1)
}
