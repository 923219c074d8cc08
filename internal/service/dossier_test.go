package service

import (
	"archive/zip"
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"filingapi/internal/model"
	repoMocks "filingapi/internal/repository/mocks"
	"filingapi/internal/storage"
	storageMocks "filingapi/internal/storage/mocks"
)

type dossierTestMocks struct {
	store     *storageMocks.MockStorage
	filings   *repoMocks.MockFilingRepository
	documents *repoMocks.MockDocumentRepository
	results   *repoMocks.MockResultRepository
	audit     *repoMocks.MockAuditRepository
}

func newDossierService(t *testing.T) (DossierService, *dossierTestMocks) {
	t.Helper()
	m := &dossierTestMocks{
		store:     new(storageMocks.MockStorage),
		filings:   new(repoMocks.MockFilingRepository),
		documents: new(repoMocks.MockDocumentRepository),
		results:   new(repoMocks.MockResultRepository),
		audit:     new(repoMocks.MockAuditRepository),
	}
	svc := NewDossierService(m.store, "filings", "dossiers", m.filings, m.documents, m.results, m.audit)
	return svc, m
}

func finalizedFiling() (*model.Filing, []model.Document, *model.Commitment) {
	filing, docs, _ := reviewableFiling()
	filing.Status = model.StatusFinal
	commitment := &model.Commitment{
		ID:             "com-1",
		FilingID:       filing.ID,
		OwnerID:        filing.OwnerID,
		CommitmentHash: "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
		CommitmentID:   "SIMULATED_TX_00112233445566778899aabbccddeeff",
		CreatedAt:      filing.CreatedAt,
	}
	return filing, docs, commitment
}

func TestGenerateDossier(t *testing.T) {
	ctx := context.Background()

	t.Run("builds archive and signs url", func(t *testing.T) {
		svc, m := newDossierService(t)
		filing, docs, commitment := finalizedFiling()
		flags := &model.RiskFlags{FilingID: "filing-1", OwnerID: "user-1", Flags: map[string]string{"income": model.RiskGreen}}

		m.filings.On("FindByID", ctx, "filing-1", "user-1").Return(filing, nil)
		m.filings.On("FindCommitment", ctx, "filing-1", "user-1").Return(commitment, nil)
		m.documents.On("ListByFiling", ctx, "filing-1", "user-1").Return(docs, nil)
		m.store.On("Get", ctx, "filings", "user-1/filing-1/form16.pdf").
			Return(io.NopCloser(bytes.NewReader([]byte("%PDF-1.4 form16"))), storage.ObjectInfo{}, nil)
		m.results.On("FindRiskFlags", ctx, "filing-1", "user-1").Return(flags, nil)

		var archive []byte
		m.store.On("Put", ctx, "dossiers", "filing-1/dossier.zip", mock.MatchedBy(func(r io.Reader) bool {
			data, err := io.ReadAll(r)
			if err != nil {
				return false
			}
			archive = data
			return len(data) > 0
		}), mock.MatchedBy(func(opt storage.PutObjectOptions) bool {
			return opt.ContentType == "application/zip"
		})).Return(storage.ObjectInfo{Bucket: "dossiers", Key: "filing-1/dossier.zip"}, nil)
		m.audit.On("Append", ctx, "user-1", model.EventDossierGenerated, mock.Anything).Return(nil)
		m.store.On("PresignGet", ctx, "dossiers", "filing-1/dossier.zip", time.Hour).
			Return("https://storage.local/dossiers/filing-1/dossier.zip?signed=1", nil)

		res, err := svc.Generate(ctx, "filing-1", "user-1", "Asha Rao")
		require.NoError(t, err)
		assert.Equal(t, "filing-1/dossier.zip", res.DossierPath)
		assert.Contains(t, res.SignedURL, "signed=1")

		zr, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
		require.NoError(t, err)
		names := make([]string, 0, len(zr.File))
		for _, f := range zr.File {
			names = append(names, f.Name)
		}
		assert.ElementsMatch(t, []string{"form16.pdf", "summary.pdf", "heatmap.pdf", "certificate.pdf"}, names)
	})

	t.Run("refuses non-final filing", func(t *testing.T) {
		svc, m := newDossierService(t)
		filing, _, _ := reviewableFiling()
		m.filings.On("FindByID", ctx, "filing-1", "user-1").Return(filing, nil)

		_, err := svc.Generate(ctx, "filing-1", "user-1", "")
		assert.ErrorIs(t, err, ErrNotFinalized)
		m.filings.AssertNotCalled(t, "FindCommitment", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("missing commitment", func(t *testing.T) {
		svc, m := newDossierService(t)
		filing, _, _ := finalizedFiling()
		m.filings.On("FindByID", ctx, "filing-1", "user-1").Return(filing, nil)
		m.filings.On("FindCommitment", ctx, "filing-1", "user-1").Return(nil, sql.ErrNoRows)

		_, err := svc.Generate(ctx, "filing-1", "user-1", "")
		assert.ErrorIs(t, err, ErrCommitmentMissing)
	})

	t.Run("no documents", func(t *testing.T) {
		svc, m := newDossierService(t)
		filing, _, commitment := finalizedFiling()
		m.filings.On("FindByID", ctx, "filing-1", "user-1").Return(filing, nil)
		m.filings.On("FindCommitment", ctx, "filing-1", "user-1").Return(commitment, nil)
		m.documents.On("ListByFiling", ctx, "filing-1", "user-1").Return([]model.Document(nil), nil)

		_, err := svc.Generate(ctx, "filing-1", "user-1", "")
		assert.ErrorIs(t, err, ErrDocumentsRequired)
	})

	t.Run("unknown filing", func(t *testing.T) {
		svc, m := newDossierService(t)
		m.filings.On("FindByID", ctx, "nope", "user-1").Return(nil, sql.ErrNoRows)

		_, err := svc.Generate(ctx, "nope", "user-1", "")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("storage download failure", func(t *testing.T) {
		svc, m := newDossierService(t)
		filing, docs, commitment := finalizedFiling()
		m.filings.On("FindByID", ctx, "filing-1", "user-1").Return(filing, nil)
		m.filings.On("FindCommitment", ctx, "filing-1", "user-1").Return(commitment, nil)
		m.documents.On("ListByFiling", ctx, "filing-1", "user-1").Return(docs, nil)
		m.store.On("Get", ctx, "filings", "user-1/filing-1/form16.pdf").
			Return(nil, storage.ObjectInfo{}, errors.New("object missing"))

		_, err := svc.Generate(ctx, "filing-1", "user-1", "")
		assert.ErrorContains(t, err, "object missing")
	})
}

func TestDossierDownloadURL(t *testing.T) {
	ctx := context.Background()

	t.Run("signs existing dossier", func(t *testing.T) {
		svc, m := newDossierService(t)
		filing, _, _ := finalizedFiling()
		m.filings.On("FindByID", ctx, "filing-1", "user-1").Return(filing, nil)
		m.store.On("PresignGet", ctx, "dossiers", "filing-1/dossier.zip", time.Hour).
			Return("https://storage.local/dossiers/filing-1/dossier.zip?signed=1", nil)

		url, err := svc.DownloadURL(ctx, "filing-1", "user-1")
		require.NoError(t, err)
		assert.Contains(t, url, "dossier.zip")
	})

	t.Run("missing dossier", func(t *testing.T) {
		svc, m := newDossierService(t)
		filing, _, _ := finalizedFiling()
		m.filings.On("FindByID", ctx, "filing-1", "user-1").Return(filing, nil)
		m.store.On("PresignGet", ctx, "dossiers", "filing-1/dossier.zip", time.Hour).
			Return("", fmt.Errorf("stat object: %w", storage.ErrObjectNotFound))

		_, err := svc.DownloadURL(ctx, "filing-1", "user-1")
		assert.ErrorIs(t, err, ErrDossierMissing)
	})

	t.Run("storage fault is not reported as missing", func(t *testing.T) {
		svc, m := newDossierService(t)
		filing, _, _ := finalizedFiling()
		m.filings.On("FindByID", ctx, "filing-1", "user-1").Return(filing, nil)
		m.store.On("PresignGet", ctx, "dossiers", "filing-1/dossier.zip", time.Hour).
			Return("", errors.New("connection reset"))

		_, err := svc.DownloadURL(ctx, "filing-1", "user-1")
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrDossierMissing)
		assert.ErrorContains(t, err, "connection reset")
	})

	t.Run("scoped to owner", func(t *testing.T) {
		svc, m := newDossierService(t)
		m.filings.On("FindByID", ctx, "filing-1", "intruder").Return(nil, sql.ErrNoRows)

		_, err := svc.DownloadURL(ctx, "filing-1", "intruder")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}
