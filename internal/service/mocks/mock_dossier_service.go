package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"filingapi/internal/service"
)

type MockDossierService struct {
	mock.Mock
}

func (m *MockDossierService) Generate(ctx context.Context, filingID, ownerID, callerFullName string) (*service.DossierResult, error) {
	args := m.Called(ctx, filingID, ownerID, callerFullName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.DossierResult), args.Error(1)
}

func (m *MockDossierService) DownloadURL(ctx context.Context, filingID, ownerID string) (string, error) {
	args := m.Called(ctx, filingID, ownerID)
	return args.String(0), args.Error(1)
}
