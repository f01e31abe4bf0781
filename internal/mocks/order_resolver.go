package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/omix2003/courierlink/internal/model"
)

// OrderResolver is a mock implementation of model.OrderResolver.
type OrderResolver struct {
	mock.Mock
}

func (m *OrderResolver) ResolveBarcode(ctx context.Context, code string) (model.OrderSummary, error) {
	args := m.Called(ctx, code)
	return args.Get(0).(model.OrderSummary), args.Error(1)
}

func (m *OrderResolver) ResolveQR(ctx context.Context, code string) (model.OrderSummary, error) {
	args := m.Called(ctx, code)
	return args.Get(0).(model.OrderSummary), args.Error(1)
}
