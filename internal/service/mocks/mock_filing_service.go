package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"filingapi/internal/model"
	"filingapi/internal/service"
)

type MockFilingService struct {
	mock.Mock
}

func (m *MockFilingService) InitUser(ctx context.Context, u *model.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *MockFilingService) Create(ctx context.Context, ownerID string, metadata map[string]any) (*model.Filing, error) {
	args := m.Called(ctx, ownerID, metadata)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Filing), args.Error(1)
}

func (m *MockFilingService) Get(ctx context.Context, filingID, ownerID string) (*service.FilingDetail, error) {
	args := m.Called(ctx, filingID, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.FilingDetail), args.Error(1)
}

func (m *MockFilingService) UploadDocument(ctx context.Context, filingID, ownerID string, r io.Reader, contentType string, size int64) (*model.Document, error) {
	args := m.Called(ctx, filingID, ownerID, r, contentType, size)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockFilingService) IngestParsedResult(ctx context.Context, filingID, ownerID string, fields map[string]any, flags map[string]string) (*model.ParsedResult, error) {
	args := m.Called(ctx, filingID, ownerID, fields, flags)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ParsedResult), args.Error(1)
}

func (m *MockFilingService) ListAudit(ctx context.Context, limit int) ([]model.AuditEntry, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.AuditEntry), args.Error(1)
}
