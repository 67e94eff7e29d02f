package web

import (
	"context"
	"time"

	"github.com/lcalzada-xor/cveadvisor/internal/core/domain"
	"github.com/lcalzada-xor/cveadvisor/internal/core/services/advisory"
	"github.com/stretchr/testify/mock"
)

// MockSyncService is a mock of ports.SyncService
type MockSyncService struct {
	mock.Mock
}

func (m *MockSyncService) Run(ctx context.Context, trigger domain.SyncTrigger, req domain.SyncRequest) (domain.SyncResult, error) {
	args := m.Called(ctx, trigger, req)
	return args.Get(0).(domain.SyncResult), args.Error(1)
}

func (m *MockSyncService) History(ctx context.Context, limit int) ([]domain.SyncRun, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]domain.SyncRun), args.Error(1)
}

// MockScheduler is a mock of the scheduler controls exposed to the admin API
type MockScheduler struct {
	mock.Mock
}

func (m *MockScheduler) Status() advisory.ScheduleStatus {
	args := m.Called()
	return args.Get(0).(advisory.ScheduleStatus)
}

func (m *MockScheduler) SetIntervalHours(hours int) error {
	args := m.Called(hours)
	return args.Error(0)
}

// MockCustomerService is a mock of ports.CustomerService
type MockCustomerService struct {
	mock.Mock
}

func (m *MockCustomerService) List(ctx context.Context) ([]domain.Customer, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Customer), args.Error(1)
}

func (m *MockCustomerService) Get(ctx context.Context, id string) (*domain.Customer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Customer), args.Error(1)
}

func (m *MockCustomerService) Create(ctx context.Context, in domain.CustomerInput) (*domain.Customer, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Customer), args.Error(1)
}

func (m *MockCustomerService) Update(ctx context.Context, id string, in domain.CustomerInput) (*domain.Customer, error) {
	args := m.Called(ctx, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Customer), args.Error(1)
}

func (m *MockCustomerService) SetEnabled(ctx context.Context, id string, enabled bool) error {
	args := m.Called(ctx, id, enabled)
	return args.Error(0)
}

func (m *MockCustomerService) AddProduct(ctx context.Context, customerID string, in domain.ProductInput) (*domain.MonitoredProduct, error) {
	args := m.Called(ctx, customerID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MonitoredProduct), args.Error(1)
}

func (m *MockCustomerService) RemoveProduct(ctx context.Context, customerID, productID string) error {
	args := m.Called(ctx, customerID, productID)
	return args.Error(0)
}

// MockMailTransport is a mock of ports.MailTransport
type MockMailTransport struct {
	mock.Mock
}

func (m *MockMailTransport) Send(ctx context.Context, req domain.EmailRequest) (domain.EmailResult, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(domain.EmailResult), args.Error(1)
}

func (m *MockMailTransport) RequiresMarkup() bool {
	return true
}

// MockAuditService is a mock of ports.AuditService
type MockAuditService struct {
	mock.Mock
}

func (m *MockAuditService) Log(ctx context.Context, action domain.AuditAction, target, details string) error {
	args := m.Called(ctx, action, target, details)
	return args.Error(0)
}

func (m *MockAuditService) GetLogs(ctx context.Context, limit int) ([]domain.AuditLog, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]domain.AuditLog), args.Error(1)
}

// MockVulnerabilityRepository is a mock of ports.VulnerabilityRepository
type MockVulnerabilityRepository struct {
	mock.Mock
}

func (m *MockVulnerabilityRepository) GetByCVEID(ctx context.Context, cveID string) (*domain.Vulnerability, error) {
	args := m.Called(ctx, cveID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Vulnerability), args.Error(1)
}

func (m *MockVulnerabilityRepository) InsertIfAbsent(ctx context.Context, v *domain.Vulnerability) (bool, error) {
	args := m.Called(ctx, v)
	return args.Bool(0), args.Error(1)
}

func (m *MockVulnerabilityRepository) List(ctx context.Context, filter domain.VulnerabilityFilter) ([]domain.Vulnerability, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Vulnerability), args.Error(1)
}

func (m *MockVulnerabilityRepository) Stats(ctx context.Context) (domain.VulnerabilityStats, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.VulnerabilityStats), args.Error(1)
}

// MockNotificationLedger is a mock of ports.NotificationLedger
type MockNotificationLedger struct {
	mock.Mock
}

func (m *MockNotificationLedger) Exists(ctx context.Context, customerID, vulnerabilityID string) (bool, error) {
	args := m.Called(ctx, customerID, vulnerabilityID)
	return args.Bool(0), args.Error(1)
}

func (m *MockNotificationLedger) Claim(ctx context.Context, rec *domain.NotificationRecord, staleAfter time.Duration) (bool, error) {
	args := m.Called(ctx, rec, staleAfter)
	return args.Bool(0), args.Error(1)
}

func (m *MockNotificationLedger) MarkSent(ctx context.Context, id string, sentAt time.Time) error {
	args := m.Called(ctx, id, sentAt)
	return args.Error(0)
}

func (m *MockNotificationLedger) Release(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockNotificationLedger) ListNotifications(ctx context.Context, customerID string, limit int) ([]domain.NotificationRecord, error) {
	args := m.Called(ctx, customerID, limit)
	return args.Get(0).([]domain.NotificationRecord), args.Error(1)
}
