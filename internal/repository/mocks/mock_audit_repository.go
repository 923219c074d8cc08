package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"filingapi/internal/model"
)

type MockAuditRepository struct {
	mock.Mock
}

func (m *MockAuditRepository) Append(ctx context.Context, ownerID, eventType string, metadata map[string]any) error {
	args := m.Called(ctx, ownerID, eventType, metadata)
	return args.Error(0)
}

func (m *MockAuditRepository) List(ctx context.Context, limit int) ([]model.AuditEntry, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.AuditEntry), args.Error(1)
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Ensure(ctx context.Context, u *model.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}
