package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/google/uuid"

	"filingapi/internal/model"
	"filingapi/internal/repository"
	"filingapi/internal/storage"
)

// Allowed source-document content types.
var allowedContentTypes = map[string]bool{
	"application/pdf": true,
	"image/png":       true,
	"image/jpeg":      true,
}

// FilingDetail is the service-level DTO returned for a single filing.
type FilingDetail struct {
	Filing    *model.Filing       `json:"filing"`
	Documents []model.Document    `json:"documents"`
	MLResults *model.ParsedResult `json:"ml_results"`
	RiskFlags *model.RiskFlags    `json:"risk_flags"`
}

// FilingService defines the CRUD use cases of the filing workflow. The
// finalize transition lives in FinalizeService; dossier assembly in
// DossierService.
type FilingService interface {
	// InitUser upserts the caller's identity record and records a login event.
	InitUser(ctx context.Context, u *model.User) error

	// Create starts a new filing in DRAFT with the given client metadata.
	Create(ctx context.Context, ownerID string, metadata map[string]any) (*model.Filing, error)

	// Get returns a filing with its documents, parsed result, and risk flags,
	// scoped by owner.
	Get(ctx context.Context, filingID, ownerID string) (*FilingDetail, error)

	// UploadDocument stores the source document blob, records the document row,
	// and moves the filing to DOCUMENT_UPLOADED. Storage is rolled back if the
	// database write fails.
	UploadDocument(ctx context.Context, filingID, ownerID string, r io.Reader, contentType string, size int64) (*model.Document, error)

	// IngestParsedResult records the machine-extracted fields and optional risk
	// flags, then moves the filing to ML_PARSED.
	IngestParsedResult(ctx context.Context, filingID, ownerID string, fields map[string]any, flags map[string]string) (*model.ParsedResult, error)

	// ListAudit returns up to limit audit entries, newest first.
	ListAudit(ctx context.Context, limit int) ([]model.AuditEntry, error)
}

type filingService struct {
	store          storage.Storage
	bucket         string
	maxUploadBytes int64
	filings        repository.FilingRepository
	documents      repository.DocumentRepository
	results        repository.ResultRepository
	users          repository.UserRepository
	audit          repository.AuditRepository
}

// NewFilingService constructs a new FilingService.
func NewFilingService(
	store storage.Storage,
	bucket string,
	maxUploadMB int,
	filings repository.FilingRepository,
	documents repository.DocumentRepository,
	results repository.ResultRepository,
	users repository.UserRepository,
	audit repository.AuditRepository,
) FilingService {
	return &filingService{
		store:          store,
		bucket:         bucket,
		maxUploadBytes: int64(maxUploadMB) * 1024 * 1024,
		filings:        filings,
		documents:      documents,
		results:        results,
		users:          users,
		audit:          audit,
	}
}

func (s *filingService) InitUser(ctx context.Context, u *model.User) error {
	if err := s.users.Ensure(ctx, u); err != nil {
		return fmt.Errorf("ensure user: %w", err)
	}
	appendAudit(ctx, s.audit, u.ID, model.EventUserLogin, map[string]any{"email": u.Email})
	return nil
}

func (s *filingService) Create(ctx context.Context, ownerID string, metadata map[string]any) (*model.Filing, error) {
	if metadata == nil {
		metadata = map[string]any{}
	}
	filing := &model.Filing{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		Status:    model.StatusDraft,
		Metadata:  metadata,
		CreatedAt: time.Now().UTC(),
	}
	stored, err := s.filings.Create(ctx, filing)
	if err != nil {
		return nil, fmt.Errorf("create filing: %w", err)
	}
	appendAudit(ctx, s.audit, ownerID, model.EventFilingCreated, map[string]any{"filing_id": stored.ID})
	return stored, nil
}

func (s *filingService) Get(ctx context.Context, filingID, ownerID string) (*FilingDetail, error) {
	filing, err := s.filings.FindByID(ctx, filingID, ownerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find filing: %w", err)
	}

	docs, err := s.documents.ListByFiling(ctx, filingID, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}

	detail := &FilingDetail{Filing: filing, Documents: docs}

	result, err := s.results.FindByFiling(ctx, filingID, ownerID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("find parsed result: %w", err)
	}
	detail.MLResults = result

	flags, err := s.results.FindRiskFlags(ctx, filingID, ownerID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("find risk flags: %w", err)
	}
	detail.RiskFlags = flags

	return detail, nil
}

func (s *filingService) UploadDocument(ctx context.Context, filingID, ownerID string, r io.Reader, contentType string, size int64) (*model.Document, error) {
	if !allowedContentTypes[contentType] {
		return nil, ErrInvalidContentType
	}
	if size > s.maxUploadBytes {
		return nil, ErrFileTooLarge
	}

	if _, err := s.filings.FindByID(ctx, filingID, ownerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find filing: %w", err)
	}

	key := path.Join(ownerID, filingID, "form16.pdf")
	if _, err := s.store.Put(ctx, s.bucket, key, r, storage.PutObjectOptions{
		Size:        size,
		ContentType: contentType,
	}); err != nil {
		return nil, fmt.Errorf("upload to storage: %w", err)
	}

	doc := &model.Document{
		ID:           uuid.NewString(),
		FilingID:     filingID,
		OwnerID:      ownerID,
		DocumentType: "FORM16",
		StoragePath:  key,
		ContentType:  contentType,
		CreatedAt:    time.Now().UTC(),
	}
	stored, err := s.documents.Create(ctx, doc)
	if err != nil {
		// Rollback: delete the object from storage
		if delErr := s.store.Delete(ctx, s.bucket, key); delErr != nil {
			return nil, fmt.Errorf("db save failed: %v; rollback delete failed: %v", err, delErr)
		}
		return nil, fmt.Errorf("db save failed: %w", err)
	}

	if err := s.filings.UpdateStatus(ctx, filingID, ownerID, model.StatusDocumentUploaded); err != nil {
		return nil, fmt.Errorf("update filing status: %w", err)
	}

	appendAudit(ctx, s.audit, ownerID, model.EventForm16Uploaded, map[string]any{
		"filing_id":   filingID,
		"document_id": stored.ID,
	})
	return stored, nil
}

func (s *filingService) IngestParsedResult(ctx context.Context, filingID, ownerID string, fields map[string]any, flags map[string]string) (*model.ParsedResult, error) {
	if err := validateRiskFlags(flags); err != nil {
		return nil, err
	}

	if _, err := s.filings.FindByID(ctx, filingID, ownerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find filing: %w", err)
	}

	result := &model.ParsedResult{
		ID:        uuid.NewString(),
		FilingID:  filingID,
		OwnerID:   ownerID,
		Fields:    fields,
		CreatedAt: time.Now().UTC(),
	}
	stored, err := s.results.Create(ctx, result)
	if err != nil {
		return nil, fmt.Errorf("insert parsed result: %w", err)
	}

	if len(flags) > 0 {
		if err := s.results.UpsertRiskFlags(ctx, &model.RiskFlags{
			FilingID: filingID,
			OwnerID:  ownerID,
			Flags:    flags,
		}); err != nil {
			return nil, fmt.Errorf("upsert risk flags: %w", err)
		}
	}

	if err := s.filings.UpdateStatus(ctx, filingID, ownerID, model.StatusMLParsed); err != nil {
		return nil, fmt.Errorf("update filing status: %w", err)
	}

	appendAudit(ctx, s.audit, ownerID, model.EventMLResultReceived, map[string]any{"filing_id": filingID})
	return stored, nil
}

func (s *filingService) ListAudit(ctx context.Context, limit int) ([]model.AuditEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	return s.audit.List(ctx, limit)
}
