package service

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"path"
	"time"

	"filingapi/internal/dossier"
	"filingapi/internal/model"
	"filingapi/internal/repository"
	"filingapi/internal/storage"
)

const signedURLExpiry = time.Hour

// DossierResult points at the stored archive and a time-limited download URL.
type DossierResult struct {
	DossierPath string `json:"dossier_path"`
	SignedURL   string `json:"signed_url"`
}

// DossierService assembles and serves the downloadable dossier for finalized
// filings.
type DossierService interface {
	// Generate builds the dossier archive for a finalized filing, stores it,
	// and returns its path plus a signed download URL.
	Generate(ctx context.Context, filingID, ownerID, callerFullName string) (*DossierResult, error)

	// DownloadURL returns a signed URL for a previously generated dossier.
	DownloadURL(ctx context.Context, filingID, ownerID string) (string, error)
}

type dossierService struct {
	store         storage.Storage
	sourceBucket  string
	dossierBucket string
	filings       repository.FilingRepository
	documents     repository.DocumentRepository
	results       repository.ResultRepository
	audit         repository.AuditRepository
}

// NewDossierService constructs a new DossierService.
func NewDossierService(
	store storage.Storage,
	sourceBucket, dossierBucket string,
	filings repository.FilingRepository,
	documents repository.DocumentRepository,
	results repository.ResultRepository,
	audit repository.AuditRepository,
) DossierService {
	return &dossierService{
		store:         store,
		sourceBucket:  sourceBucket,
		dossierBucket: dossierBucket,
		filings:       filings,
		documents:     documents,
		results:       results,
		audit:         audit,
	}
}

func (s *dossierService) Generate(ctx context.Context, filingID, ownerID, callerFullName string) (*DossierResult, error) {
	filing, err := s.filings.FindByID(ctx, filingID, ownerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find filing: %w", err)
	}
	if filing.Status != model.StatusFinal {
		return nil, ErrNotFinalized
	}

	commitment, err := s.filings.FindCommitment(ctx, filingID, ownerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCommitmentMissing
		}
		return nil, fmt.Errorf("find commitment: %w", err)
	}

	docs, err := s.documents.ListByFiling(ctx, filingID, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	if len(docs) == 0 {
		return nil, ErrDocumentsRequired
	}

	rc, _, err := s.store.Get(ctx, s.sourceBucket, docs[0].StoragePath)
	if err != nil {
		return nil, fmt.Errorf("download form16: %w", err)
	}
	form16, err := io.ReadAll(rc)
	rc.Close()
	if err != nil {
		return nil, fmt.Errorf("read form16: %w", err)
	}

	var riskFlags map[string]string
	if flags, err := s.results.FindRiskFlags(ctx, filingID, ownerID); err == nil {
		riskFlags = flags.Flags
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("find risk flags: %w", err)
	}

	fullName := filing.FullName()
	if fullName == "" {
		fullName = callerFullName
	}
	if fullName == "" {
		fullName = "Unknown"
	}

	archive, err := dossier.Build(form16, []dossier.SummaryField{
		{Label: "filing_id", Value: filingID},
		{Label: "status", Value: string(filing.Status)},
	}, fullName, commitment.CommitmentID, riskFlags)
	if err != nil {
		return nil, fmt.Errorf("build dossier: %w", err)
	}

	key := dossierKey(filingID)
	if _, err := s.store.Put(ctx, s.dossierBucket, key, bytes.NewReader(archive), storage.PutObjectOptions{
		Size:        int64(len(archive)),
		ContentType: "application/zip",
	}); err != nil {
		return nil, fmt.Errorf("store dossier: %w", err)
	}

	appendAudit(ctx, s.audit, ownerID, model.EventDossierGenerated, map[string]any{"filing_id": filingID})

	url, err := s.store.PresignGet(ctx, s.dossierBucket, key, signedURLExpiry)
	if err != nil {
		return nil, fmt.Errorf("sign dossier url: %w", err)
	}
	return &DossierResult{DossierPath: key, SignedURL: url}, nil
}

func (s *dossierService) DownloadURL(ctx context.Context, filingID, ownerID string) (string, error) {
	if _, err := s.filings.FindByID(ctx, filingID, ownerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("find filing: %w", err)
	}

	url, err := s.store.PresignGet(ctx, s.dossierBucket, dossierKey(filingID), signedURLExpiry)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return "", ErrDossierMissing
		}
		return "", fmt.Errorf("sign dossier url: %w", err)
	}
	return url, nil
}

func dossierKey(filingID string) string {
	return path.Join(filingID, "dossier.zip")
}
