package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"filingapi/internal/model"
)

type MockResultRepository struct {
	mock.Mock
}

func (m *MockResultRepository) Create(ctx context.Context, r *model.ParsedResult) (*model.ParsedResult, error) {
	args := m.Called(ctx, r)
	if fn, ok := args.Get(0).(func(context.Context, *model.ParsedResult) *model.ParsedResult); ok {
		return fn(ctx, r), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ParsedResult), args.Error(1)
}

func (m *MockResultRepository) FindByFiling(ctx context.Context, filingID, ownerID string) (*model.ParsedResult, error) {
	args := m.Called(ctx, filingID, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ParsedResult), args.Error(1)
}

func (m *MockResultRepository) UpsertRiskFlags(ctx context.Context, flags *model.RiskFlags) error {
	args := m.Called(ctx, flags)
	return args.Error(0)
}

func (m *MockResultRepository) FindRiskFlags(ctx context.Context, filingID, ownerID string) (*model.RiskFlags, error) {
	args := m.Called(ctx, filingID, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.RiskFlags), args.Error(1)
}
