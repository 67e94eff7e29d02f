package ingest

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/lcalzada-xor/cveadvisor/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// memVulnRepo is an in-memory VulnerabilityRepository keyed by CVE id.
type memVulnRepo struct {
	mu    sync.Mutex
	byCVE map[string]domain.Vulnerability
}

func newMemVulnRepo() *memVulnRepo {
	return &memVulnRepo{byCVE: make(map[string]domain.Vulnerability)}
}

func (r *memVulnRepo) GetByCVEID(ctx context.Context, cveID string) (*domain.Vulnerability, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.byCVE[cveID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &v, nil
}

func (r *memVulnRepo) InsertIfAbsent(ctx context.Context, v *domain.Vulnerability) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byCVE[v.CVEID]; ok {
		return false, nil
	}
	r.byCVE[v.CVEID] = *v
	return true, nil
}

func (r *memVulnRepo) List(ctx context.Context, f domain.VulnerabilityFilter) ([]domain.Vulnerability, error) {
	return nil, nil
}

func (r *memVulnRepo) Stats(ctx context.Context) (domain.VulnerabilityStats, error) {
	return domain.VulnerabilityStats{}, nil
}

// MockVulnRepo
type MockVulnRepo struct {
	mock.Mock
}

func (m *MockVulnRepo) GetByCVEID(ctx context.Context, cveID string) (*domain.Vulnerability, error) {
	args := m.Called(ctx, cveID)
	if v := args.Get(0); v != nil {
		return v.(*domain.Vulnerability), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockVulnRepo) InsertIfAbsent(ctx context.Context, v *domain.Vulnerability) (bool, error) {
	args := m.Called(ctx, v)
	return args.Bool(0), args.Error(1)
}

func (m *MockVulnRepo) List(ctx context.Context, f domain.VulnerabilityFilter) ([]domain.Vulnerability, error) {
	args := m.Called(ctx, f)
	return args.Get(0).([]domain.Vulnerability), args.Error(1)
}

func (m *MockVulnRepo) Stats(ctx context.Context) (domain.VulnerabilityStats, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.VulnerabilityStats), args.Error(1)
}

func page(ids ...string) []domain.FeedRecord {
	recs := make([]domain.FeedRecord, 0, len(ids))
	for _, id := range ids {
		recs = append(recs, domain.FeedRecord{CVE: domain.FeedCVE{
			ID:           id,
			Published:    "2024-06-01T10:00:00.000",
			Descriptions: []domain.LangString{{Lang: "en", Value: "desc " + id}},
		}})
	}
	return recs
}

func TestIngestPage_Idempotent(t *testing.T) {
	repo := newMemVulnRepo()
	ing := NewIngestor(repo)
	recs := page("CVE-2024-0001", "CVE-2024-0002", "CVE-2024-0003")

	first := ing.IngestPage(context.Background(), recs)
	require.Len(t, first.Inserted, 3)
	assert.Equal(t, 0, first.Skipped)
	assert.Equal(t, "CVE-2024-0001", first.Inserted[0].CVEID)
	assert.NotEmpty(t, first.Inserted[0].ID)
	assert.False(t, first.Inserted[0].IngestedAt.IsZero())

	snapshot := make(map[string]domain.Vulnerability, len(repo.byCVE))
	for k, v := range repo.byCVE {
		snapshot[k] = v
	}

	second := ing.IngestPage(context.Background(), recs)
	assert.Empty(t, second.Inserted)
	assert.Equal(t, 3, second.Skipped)
	assert.Equal(t, snapshot, repo.byCVE, "second run must not modify stored rows")
}

func TestIngestPage_InsertFailureDoesNotAbortPage(t *testing.T) {
	repo := new(MockVulnRepo)
	ing := NewIngestor(repo)
	ctx := context.Background()

	repo.On("GetByCVEID", ctx, mock.Anything).Return(nil, domain.ErrNotFound)
	repo.On("InsertIfAbsent", ctx, mock.MatchedBy(func(v *domain.Vulnerability) bool {
		return v.CVEID == "CVE-2024-0002"
	})).Return(false, errors.New("disk full"))
	repo.On("InsertIfAbsent", ctx, mock.Anything).Return(true, nil)

	res := ing.IngestPage(ctx, page("CVE-2024-0001", "CVE-2024-0002", "CVE-2024-0003"))

	require.Len(t, res.Inserted, 2)
	assert.Equal(t, "CVE-2024-0001", res.Inserted[0].CVEID)
	assert.Equal(t, "CVE-2024-0003", res.Inserted[1].CVEID)
	assert.Equal(t, 1, res.Failed)
}

func TestIngestPage_LostInsertRaceCountsAsSkipped(t *testing.T) {
	repo := new(MockVulnRepo)
	ing := NewIngestor(repo)
	ctx := context.Background()

	repo.On("GetByCVEID", ctx, "CVE-2024-0001").Return(nil, domain.ErrNotFound)
	repo.On("InsertIfAbsent", ctx, mock.Anything).Return(false, nil)

	res := ing.IngestPage(ctx, page("CVE-2024-0001"))

	assert.Empty(t, res.Inserted)
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, 0, res.Failed)
}

func TestIngestPage_LookupErrorAndMalformedID(t *testing.T) {
	repo := new(MockVulnRepo)
	ing := NewIngestor(repo)
	ctx := context.Background()

	repo.On("GetByCVEID", ctx, "CVE-2024-0001").Return(nil, errors.New("connection reset"))

	res := ing.IngestPage(ctx, page("CVE-2024-0001", "not-a-cve", ""))

	assert.Empty(t, res.Inserted)
	assert.Equal(t, 3, res.Failed)
	repo.AssertNotCalled(t, "InsertIfAbsent", mock.Anything, mock.Anything)
}

func TestIngestPage_MissingConfigurationsStillInserted(t *testing.T) {
	repo := newMemVulnRepo()
	ing := NewIngestor(repo)

	res := ing.IngestPage(context.Background(), []domain.FeedRecord{{CVE: domain.FeedCVE{ID: "CVE-2024-0009"}}})

	require.Len(t, res.Inserted, 1)
	assert.Equal(t, domain.UnknownName, res.Inserted[0].Vendor)
	assert.Equal(t, domain.UnknownName, res.Inserted[0].Product)
	assert.Equal(t, 0, res.Failed)
}
