package matcher

import (
	"context"
	"errors"
	"testing"

	"github.com/lcalzada-xor/cveadvisor/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockCustomerRepository
type MockCustomerRepository struct {
	mock.Mock
}

func (m *MockCustomerRepository) ListWithProducts(ctx context.Context) ([]domain.Customer, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Customer), args.Error(1)
}

func (m *MockCustomerRepository) GetCustomer(ctx context.Context, id string) (*domain.Customer, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(*domain.Customer), args.Error(1)
}

func (m *MockCustomerRepository) CreateCustomer(ctx context.Context, c *domain.Customer) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockCustomerRepository) UpdateCustomer(ctx context.Context, c *domain.Customer) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockCustomerRepository) SetCustomerEnabled(ctx context.Context, id string, enabled bool) error {
	return m.Called(ctx, id, enabled).Error(0)
}

func (m *MockCustomerRepository) AddProduct(ctx context.Context, p *domain.MonitoredProduct) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockCustomerRepository) RemoveProduct(ctx context.Context, customerID, productID string) error {
	return m.Called(ctx, customerID, productID).Error(0)
}

var openssl = domain.Vulnerability{
	ID:       "v-1",
	CVEID:    "CVE-2024-1234",
	Severity: domain.SeverityCritical,
	Vendor:   "openssl",
	Product:  "openssl",
}

func customer(id string, enabled bool, products ...domain.MonitoredProduct) domain.Customer {
	return domain.Customer{ID: id, CompanyName: "Co " + id, Email: id + "@example.com", Enabled: enabled, Products: products}
}

func product(vendor, name string) domain.MonitoredProduct {
	return domain.MonitoredProduct{VendorName: vendor, ProductName: name}
}

func TestProductMatches(t *testing.T) {
	tests := []struct {
		name string
		vuln domain.Vulnerability
		prod domain.MonitoredProduct
		want bool
	}{
		{"Case-insensitive exact", openssl, product("OpenSSL", "OpenSSL"), true},
		{"Product substring", domain.Vulnerability{Vendor: "apache", Product: "http_server"}, product("nobody", "HTTP"), true},
		{"Vendor only", domain.Vulnerability{Vendor: "microsoft", Product: "edge"}, product("Microsoft", "Office"), true},
		{"Neither", openssl, product("Cisco", "IOS"), false},
		{"Monitored name longer than feed field", domain.Vulnerability{Vendor: "ssl", Product: "ssl"}, product("openssl", "openssl"), false},
		{"Unknown feed fields", domain.Vulnerability{Vendor: domain.UnknownName, Product: domain.UnknownName}, product("unknown", "x"), true},
		{"Empty monitored names", openssl, product("", ""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ProductMatches(tt.vuln, tt.prod))
		})
	}
}

func TestAffected_SkipsDisabledAndKeepsOrder(t *testing.T) {
	customers := []domain.Customer{
		customer("c1", true, product("OpenSSL", "OpenSSL")),
		customer("c2", false, product("OpenSSL", "OpenSSL")),
		customer("c3", true, product("Cisco", "IOS"), product("openssl", "libssl")),
		customer("c4", true),
	}

	got := Affected(openssl, customers)

	require.Len(t, got, 2)
	assert.Equal(t, "c1", got[0].ID)
	assert.Equal(t, "c3", got[1].ID)
}

func TestMatcher_Match(t *testing.T) {
	repo := new(MockCustomerRepository)
	m := NewMatcher(repo)
	ctx := context.Background()

	repo.On("ListWithProducts", ctx).Return([]domain.Customer{
		customer("c1", true, product("OpenSSL", "OpenSSL")),
	}, nil).Once()

	unrelated := domain.Vulnerability{ID: "v-2", CVEID: "CVE-2024-9999", Vendor: "cisco", Product: "ios"}
	matches, err := m.Match(ctx, []domain.Vulnerability{openssl, unrelated})

	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "CVE-2024-1234", matches[0].Vulnerability.CVEID)
	assert.Equal(t, "c1", matches[0].Customers[0].ID)
	repo.AssertExpectations(t)
}

func TestMatcher_NoVulnerabilitiesSkipsLookup(t *testing.T) {
	repo := new(MockCustomerRepository)
	m := NewMatcher(repo)

	matches, err := m.Match(context.Background(), nil)

	assert.NoError(t, err)
	assert.Nil(t, matches)
	repo.AssertNotCalled(t, "ListWithProducts", mock.Anything)
}

func TestMatcher_RepositoryError(t *testing.T) {
	repo := new(MockCustomerRepository)
	m := NewMatcher(repo)
	ctx := context.Background()

	repo.On("ListWithProducts", ctx).Return([]domain.Customer(nil), errors.New("db down"))

	_, err := m.Match(ctx, []domain.Vulnerability{openssl})
	assert.Error(t, err)
}
