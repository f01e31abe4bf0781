package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/omix2003/courierlink/internal/model"
)

// VerificationAPI is a mock implementation of model.VerificationAPI.
type VerificationAPI struct {
	mock.Mock
}

func (m *VerificationAPI) GenerateVerification(ctx context.Context, orderID string) (model.GeneratedCodes, error) {
	args := m.Called(ctx, orderID)
	return args.Get(0).(model.GeneratedCodes), args.Error(1)
}

func (m *VerificationAPI) GetVerification(ctx context.Context, orderID string) (model.VerificationRecord, error) {
	args := m.Called(ctx, orderID)
	return args.Get(0).(model.VerificationRecord), args.Error(1)
}

func (m *VerificationAPI) VerifyOTP(ctx context.Context, orderID, code string) error {
	args := m.Called(ctx, orderID, code)
	return args.Error(0)
}

func (m *VerificationAPI) VerifyQR(ctx context.Context, orderID, code string) error {
	args := m.Called(ctx, orderID, code)
	return args.Error(0)
}
