package advisory

import (
	"context"
	"sync"
	"time"

	"github.com/lcalzada-xor/cveadvisor/internal/core/domain"
	"github.com/stretchr/testify/mock"
)

// MockFeedClient
type MockFeedClient struct {
	mock.Mock
}

func (m *MockFeedClient) FetchPage(ctx context.Context, q domain.FeedQuery) (*domain.FeedPage, error) {
	args := m.Called(ctx, q)
	if p := args.Get(0); p != nil {
		return p.(*domain.FeedPage), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockTransport
type MockTransport struct {
	mock.Mock
}

func (m *MockTransport) Send(ctx context.Context, req domain.EmailRequest) (domain.EmailResult, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(domain.EmailResult), args.Error(1)
}

func (m *MockTransport) RequiresMarkup() bool { return true }

// MockAuditService
type MockAuditService struct {
	mock.Mock
}

func (m *MockAuditService) Log(ctx context.Context, action domain.AuditAction, target, details string) error {
	return m.Called(ctx, action, target, details).Error(0)
}

func (m *MockAuditService) GetLogs(ctx context.Context, limit int) ([]domain.AuditLog, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]domain.AuditLog), args.Error(1)
}

// store is an in-memory stand-in for every repository the orchestrator uses.
type store struct {
	mu        sync.Mutex
	vulns     map[string]domain.Vulnerability
	customers []domain.Customer
	ledger    map[string]domain.NotificationRecord
	runs      []domain.SyncRun
}

func newStore(customers ...domain.Customer) *store {
	return &store{
		vulns:     map[string]domain.Vulnerability{},
		customers: customers,
		ledger:    map[string]domain.NotificationRecord{},
	}
}

func (s *store) GetByCVEID(ctx context.Context, cveID string) (*domain.Vulnerability, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.vulns[cveID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &v, nil
}

func (s *store) InsertIfAbsent(ctx context.Context, v *domain.Vulnerability) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.vulns[v.CVEID]; ok {
		return false, nil
	}
	s.vulns[v.CVEID] = *v
	return true, nil
}

func (s *store) List(ctx context.Context, f domain.VulnerabilityFilter) ([]domain.Vulnerability, error) {
	return nil, nil
}

func (s *store) Stats(ctx context.Context) (domain.VulnerabilityStats, error) {
	return domain.VulnerabilityStats{Total: len(s.vulns)}, nil
}

func (s *store) ListWithProducts(ctx context.Context) ([]domain.Customer, error) {
	return s.customers, nil
}

func (s *store) GetCustomer(ctx context.Context, id string) (*domain.Customer, error) {
	for _, c := range s.customers {
		if c.ID == id {
			return &c, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *store) CreateCustomer(ctx context.Context, c *domain.Customer) error {
	s.customers = append(s.customers, *c)
	return nil
}

func (s *store) UpdateCustomer(ctx context.Context, c *domain.Customer) error {
	for i := range s.customers {
		if s.customers[i].ID == c.ID {
			s.customers[i] = *c
			return nil
		}
	}
	return domain.ErrNotFound
}

func (s *store) SetCustomerEnabled(ctx context.Context, id string, enabled bool) error {
	for i := range s.customers {
		if s.customers[i].ID == id {
			s.customers[i].Enabled = enabled
			return nil
		}
	}
	return domain.ErrNotFound
}

func (s *store) AddProduct(ctx context.Context, p *domain.MonitoredProduct) error {
	for i := range s.customers {
		if s.customers[i].ID == p.CustomerID {
			s.customers[i].Products = append(s.customers[i].Products, *p)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (s *store) RemoveProduct(ctx context.Context, customerID, productID string) error {
	for i := range s.customers {
		if s.customers[i].ID != customerID {
			continue
		}
		for j, p := range s.customers[i].Products {
			if p.ID == productID {
				s.customers[i].Products = append(s.customers[i].Products[:j], s.customers[i].Products[j+1:]...)
				return nil
			}
		}
	}
	return domain.ErrNotFound
}

func (s *store) Exists(ctx context.Context, customerID, vulnerabilityID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.ledger[customerID+"|"+vulnerabilityID]
	return ok && r.Status == domain.NotificationSent, nil
}

func (s *store) Claim(ctx context.Context, rec *domain.NotificationRecord, staleAfter time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := rec.CustomerID + "|" + rec.VulnerabilityID
	if _, ok := s.ledger[k]; ok {
		return false, nil
	}
	s.ledger[k] = *rec
	return true, nil
}

func (s *store) MarkSent(ctx context.Context, id string, sentAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, r := range s.ledger {
		if r.ID == id {
			r.Status = domain.NotificationSent
			r.SentAt = &sentAt
			s.ledger[k] = r
		}
	}
	return nil
}

func (s *store) Release(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, r := range s.ledger {
		if r.ID == id {
			delete(s.ledger, k)
		}
	}
	return nil
}

func (s *store) ListNotifications(ctx context.Context, customerID string, limit int) ([]domain.NotificationRecord, error) {
	return nil, nil
}

func (s *store) SaveSyncRun(ctx context.Context, run domain.SyncRun) error {
	s.runs = append(s.runs, run)
	return nil
}

func (s *store) ListSyncRuns(ctx context.Context, limit int) ([]domain.SyncRun, error) {
	return s.runs, nil
}
