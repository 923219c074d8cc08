package service

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"filingapi/internal/config"
	"filingapi/internal/ledger"
	"filingapi/internal/model"
	"filingapi/internal/repository"
	"filingapi/internal/storage"
)

// memStore is an in-memory state shared by the fake repositories, guarded by a
// single mutex so the atomic finalize region serializes exactly like a
// row-locked transaction.
type memStore struct {
	mu          sync.Mutex
	filings     map[string]*model.Filing
	documents   map[string][]model.Document
	results     map[string]*model.ParsedResult
	riskFlags   map[string]*model.RiskFlags
	commitments map[string]*model.Commitment
	audit       []model.AuditEntry
	users       map[string]*model.User
}

func newMemStore() *memStore {
	return &memStore{
		filings:     make(map[string]*model.Filing),
		documents:   make(map[string][]model.Document),
		results:     make(map[string]*model.ParsedResult),
		riskFlags:   make(map[string]*model.RiskFlags),
		commitments: make(map[string]*model.Commitment),
		users:       make(map[string]*model.User),
	}
}

func (s *memStore) Create(ctx context.Context, f *model.Filing) (*model.Filing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *f
	s.filings[f.ID] = &cp
	return &cp, nil
}

func (s *memStore) FindByID(ctx context.Context, id, ownerID string) (*model.Filing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.filings[id]
	if !ok || f.OwnerID != ownerID {
		return nil, sql.ErrNoRows
	}
	cp := *f
	return &cp, nil
}

func (s *memStore) UpdateStatus(ctx context.Context, id, ownerID string, status model.FilingStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.filings[id]
	if !ok || f.OwnerID != ownerID {
		return sql.ErrNoRows
	}
	f.Status = status
	return nil
}

func (s *memStore) AtomicFinalize(ctx context.Context, filingID, ownerID string, c *model.Commitment) (repository.FinalizeOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.filings[filingID]
	if !ok || f.OwnerID != ownerID {
		return repository.FinalizeNotFound, nil
	}
	if f.Status == model.StatusFinal {
		return repository.FinalizeAlreadyFinal, nil
	}
	cp := *c
	s.commitments[filingID] = &cp
	f.Status = model.StatusFinal
	return repository.FinalizeApplied, nil
}

func (s *memStore) FindCommitment(ctx context.Context, filingID, ownerID string) (*model.Commitment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.commitments[filingID]
	if !ok || c.OwnerID != ownerID {
		return nil, sql.ErrNoRows
	}
	cp := *c
	return &cp, nil
}

func (s *memStore) CreateDocument(ctx context.Context, doc *model.Document) (*model.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents[doc.FilingID] = append(s.documents[doc.FilingID], *doc)
	return doc, nil
}

func (s *memStore) ListByFiling(ctx context.Context, filingID, ownerID string) ([]model.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Document
	for _, d := range s.documents[filingID] {
		if d.OwnerID == ownerID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (s *memStore) CreateResult(ctx context.Context, r *model.ParsedResult) (*model.ParsedResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *r
	s.results[r.FilingID] = &cp
	return &cp, nil
}

func (s *memStore) FindByFiling(ctx context.Context, filingID, ownerID string) (*model.ParsedResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.results[filingID]
	if !ok || r.OwnerID != ownerID {
		return nil, sql.ErrNoRows
	}
	cp := *r
	return &cp, nil
}

func (s *memStore) UpsertRiskFlags(ctx context.Context, flags *model.RiskFlags) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *flags
	s.riskFlags[flags.FilingID] = &cp
	return nil
}

func (s *memStore) FindRiskFlags(ctx context.Context, filingID, ownerID string) (*model.RiskFlags, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rf, ok := s.riskFlags[filingID]
	if !ok || rf.OwnerID != ownerID {
		return nil, sql.ErrNoRows
	}
	cp := *rf
	return &cp, nil
}

func (s *memStore) Append(ctx context.Context, ownerID, eventType string, metadata map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.audit = append(s.audit, model.AuditEntry{
		OwnerID:   ownerID,
		EventType: eventType,
		Metadata:  metadata,
		CreatedAt: time.Now().UTC(),
	})
	return nil
}

func (s *memStore) List(ctx context.Context, limit int) ([]model.AuditEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.AuditEntry, 0, limit)
	for i := len(s.audit) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.audit[i])
	}
	return out, nil
}

func (s *memStore) Ensure(ctx context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.ID]; !ok {
		cp := *u
		s.users[u.ID] = &cp
	}
	return nil
}

// Adapter types so one memStore serves every repository interface without
// method-name collisions.
type memDocuments struct{ *memStore }

func (d memDocuments) Create(ctx context.Context, doc *model.Document) (*model.Document, error) {
	return d.CreateDocument(ctx, doc)
}

type memResults struct{ *memStore }

func (r memResults) Create(ctx context.Context, res *model.ParsedResult) (*model.ParsedResult, error) {
	return r.CreateResult(ctx, res)
}

// memBlobs is a minimal in-memory storage.Storage.
type memBlobs struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newMemBlobs() *memBlobs {
	return &memBlobs{objects: make(map[string][]byte)}
}

func (b *memBlobs) Put(ctx context.Context, bucket, key string, r io.Reader, opt storage.PutObjectOptions) (storage.ObjectInfo, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return storage.ObjectInfo{}, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.objects[bucket+"/"+key] = data
	return storage.ObjectInfo{Bucket: bucket, Key: key, Size: int64(len(data))}, nil
}

func (b *memBlobs) Get(ctx context.Context, bucket, key string) (io.ReadCloser, storage.ObjectInfo, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	data, ok := b.objects[bucket+"/"+key]
	if !ok {
		return nil, storage.ObjectInfo{}, storage.ErrObjectNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), storage.ObjectInfo{Bucket: bucket, Key: key, Size: int64(len(data))}, nil
}

func (b *memBlobs) Delete(ctx context.Context, bucket, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.objects, bucket+"/"+key)
	return nil
}

func (b *memBlobs) PresignGet(ctx context.Context, bucket, key string, expiry time.Duration) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.objects[bucket+"/"+key]; !ok {
		return "", storage.ErrObjectNotFound
	}
	return "https://storage.local/" + bucket + "/" + key + "?signed=1", nil
}

func TestWorkflowEndToEnd(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	blobs := newMemBlobs()
	// No ledger configured: the submitter degrades to simulated ids.
	sub := ledger.NewSubmitter(config.LedgerConfig{})

	filingSvc := NewFilingService(blobs, "filings", 10, store, memDocuments{store}, memResults{store}, store, store)
	finalizeSvc := NewFinalizeService(store, memDocuments{store}, memResults{store}, store, sub)
	dossierSvc := NewDossierService(blobs, "filings", "dossiers", store, memDocuments{store}, memResults{store}, store)

	require.NoError(t, filingSvc.InitUser(ctx, &model.User{ID: "user-1", Email: "asha@example.com", FullName: "Asha Rao"}))

	filing, err := filingSvc.Create(ctx, "user-1", map[string]any{"full_name": "Asha Rao"})
	require.NoError(t, err)
	assert.Equal(t, model.StatusDraft, filing.Status)

	_, err = filingSvc.UploadDocument(ctx, filing.ID, "user-1", strings.NewReader("%PDF-1.4 form16"), "application/pdf", 15)
	require.NoError(t, err)

	_, err = filingSvc.IngestParsedResult(ctx, filing.ID, "user-1",
		map[string]any{"income": "1200000"},
		map[string]string{"income": model.RiskGreen})
	require.NoError(t, err)

	detail, err := filingSvc.Get(ctx, filing.ID, "user-1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusMLParsed, detail.Filing.Status)
	assert.Len(t, detail.Documents, 1)
	require.NotNil(t, detail.RiskFlags)
	assert.Equal(t, model.RiskGreen, detail.RiskFlags.Flags["income"])

	res, err := finalizeSvc.Finalize(ctx, filing.ID, "user-1")
	require.NoError(t, err)
	assert.Len(t, res.CommitmentHash, 64)
	assert.True(t, strings.HasPrefix(res.CommitmentID, ledger.SimulatedPrefix))

	detail, err = filingSvc.Get(ctx, filing.ID, "user-1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusFinal, detail.Filing.Status)

	// A second finalize never double-applies.
	_, err = finalizeSvc.Finalize(ctx, filing.ID, "user-1")
	assert.ErrorIs(t, err, ErrAlreadyFinalized)
	assert.Len(t, store.commitments, 1)

	dossierRes, err := dossierSvc.Generate(ctx, filing.ID, "user-1", "Asha Rao")
	require.NoError(t, err)
	assert.Equal(t, filing.ID+"/dossier.zip", dossierRes.DossierPath)
	assert.Contains(t, dossierRes.SignedURL, "signed=1")

	url, err := dossierSvc.DownloadURL(ctx, filing.ID, "user-1")
	require.NoError(t, err)
	assert.Contains(t, url, "dossier.zip")

	entries, err := filingSvc.ListAudit(ctx, 100)
	require.NoError(t, err)
	types := make([]string, 0, len(entries))
	for _, e := range entries {
		types = append(types, e.EventType)
	}
	assert.Contains(t, types, model.EventFinalized)
	assert.Contains(t, types, model.EventBlockchainWritten)
	assert.Contains(t, types, model.EventDossierGenerated)
}

func TestFinalizeConcurrentExclusivity(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()

	created := time.Now().UTC()
	store.filings["filing-1"] = &model.Filing{
		ID: "filing-1", OwnerID: "user-1", Status: model.StatusMLParsed,
		Metadata: map[string]any{}, CreatedAt: created,
	}
	store.documents["filing-1"] = []model.Document{{
		ID: "doc-1", FilingID: "filing-1", OwnerID: "user-1",
		DocumentType: "FORM16", StoragePath: "user-1/filing-1/form16.pdf",
		ContentType: "application/pdf", CreatedAt: created,
	}}
	store.results["filing-1"] = &model.ParsedResult{
		ID: "res-1", FilingID: "filing-1", OwnerID: "user-1",
		Fields: map[string]any{"income": "1200000"}, CreatedAt: created,
	}

	svc := NewFinalizeService(store, memDocuments{store}, memResults{store}, store, ledger.NewSubmitter(config.LedgerConfig{}))

	const n = 16
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Finalize(ctx, "filing-1", "user-1")
		}(i)
	}
	wg.Wait()

	var succeeded, alreadyFinal int
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, ErrAlreadyFinalized):
			alreadyFinal++
		default:
			t.Fatalf("unexpected finalize error: %v", err)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, n-1, alreadyFinal)
	assert.Len(t, store.commitments, 1)
	assert.Equal(t, model.StatusFinal, store.filings["filing-1"].Status)
}
