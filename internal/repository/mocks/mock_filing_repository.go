package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"filingapi/internal/model"
	"filingapi/internal/repository"
)

type MockFilingRepository struct {
	mock.Mock
}

func (m *MockFilingRepository) Create(ctx context.Context, f *model.Filing) (*model.Filing, error) {
	args := m.Called(ctx, f)
	if fn, ok := args.Get(0).(func(context.Context, *model.Filing) *model.Filing); ok {
		return fn(ctx, f), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Filing), args.Error(1)
}

func (m *MockFilingRepository) FindByID(ctx context.Context, id, ownerID string) (*model.Filing, error) {
	args := m.Called(ctx, id, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Filing), args.Error(1)
}

func (m *MockFilingRepository) UpdateStatus(ctx context.Context, id, ownerID string, status model.FilingStatus) error {
	args := m.Called(ctx, id, ownerID, status)
	return args.Error(0)
}

func (m *MockFilingRepository) AtomicFinalize(ctx context.Context, filingID, ownerID string, c *model.Commitment) (repository.FinalizeOutcome, error) {
	args := m.Called(ctx, filingID, ownerID, c)
	return args.Get(0).(repository.FinalizeOutcome), args.Error(1)
}

func (m *MockFilingRepository) FindCommitment(ctx context.Context, filingID, ownerID string) (*model.Commitment, error) {
	args := m.Called(ctx, filingID, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Commitment), args.Error(1)
}
