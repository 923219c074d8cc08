package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"filingapi/internal/service"
)

type MockFinalizeService struct {
	mock.Mock
}

func (m *MockFinalizeService) Finalize(ctx context.Context, filingID, callerID string) (*service.FinalizeResult, error) {
	args := m.Called(ctx, filingID, callerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.FinalizeResult), args.Error(1)
}
