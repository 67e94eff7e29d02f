package ports

import (
	"context"
	"time"

	"github.com/lcalzada-xor/cveadvisor/internal/core/domain"
)

// VulnerabilityRepository defines the persistence operations on vulnerabilities.
type VulnerabilityRepository interface {
	// GetByCVEID returns domain.ErrNotFound when the CVE has not been ingested.
	GetByCVEID(ctx context.Context, cveID string) (*domain.Vulnerability, error)

	// InsertIfAbsent atomically inserts the record unless its CVE id exists.
	// inserted is false (and err nil) when another writer got there first.
	InsertIfAbsent(ctx context.Context, v *domain.Vulnerability) (inserted bool, err error)

	List(ctx context.Context, filter domain.VulnerabilityFilter) ([]domain.Vulnerability, error)
	Stats(ctx context.Context) (domain.VulnerabilityStats, error)
}

// CustomerRepository defines the persistence operations on customers and
// their monitored products.
type CustomerRepository interface {
	// ListWithProducts is the join-style read used by the matcher.
	ListWithProducts(ctx context.Context) ([]domain.Customer, error)

	GetCustomer(ctx context.Context, id string) (*domain.Customer, error)
	CreateCustomer(ctx context.Context, c *domain.Customer) error
	UpdateCustomer(ctx context.Context, c *domain.Customer) error
	SetCustomerEnabled(ctx context.Context, id string, enabled bool) error
	AddProduct(ctx context.Context, p *domain.MonitoredProduct) error
	RemoveProduct(ctx context.Context, customerID, productID string) error
}

// NotificationLedger enforces at-most-once delivery per (customer, vulnerability).
type NotificationLedger interface {
	// Exists reports whether the pair has been delivered. Pending claims do not
	// count; Claim arbitrates those.
	Exists(ctx context.Context, customerID, vulnerabilityID string) (bool, error)

	// Claim inserts a pending row unless one exists. Pending rows older than
	// staleAfter are taken over. claimed is false when the pair is handled elsewhere.
	Claim(ctx context.Context, rec *domain.NotificationRecord, staleAfter time.Duration) (claimed bool, err error)

	// MarkSent moves a claimed row to the terminal sent state.
	MarkSent(ctx context.Context, id string, sentAt time.Time) error

	// Release drops a pending claim so a later run retries the pair.
	Release(ctx context.Context, id string) error

	ListNotifications(ctx context.Context, customerID string, limit int) ([]domain.NotificationRecord, error)
}

// SyncRunRepository stores the run history.
type SyncRunRepository interface {
	SaveSyncRun(ctx context.Context, run domain.SyncRun) error
	ListSyncRuns(ctx context.Context, limit int) ([]domain.SyncRun, error)
}

// FeedClient fetches one page of the vulnerability feed.
type FeedClient interface {
	FetchPage(ctx context.Context, q domain.FeedQuery) (*domain.FeedPage, error)
}

// MailTransport delivers a rendered advisory.
type MailTransport interface {
	Send(ctx context.Context, req domain.EmailRequest) (domain.EmailResult, error)

	// RequiresMarkup is true when bodies are delivered as HTML.
	RequiresMarkup() bool
}

// SyncService is the entry point used by the HTTP trigger, the scheduler and the CLI.
type SyncService interface {
	Run(ctx context.Context, trigger domain.SyncTrigger, req domain.SyncRequest) (domain.SyncResult, error)
	History(ctx context.Context, limit int) ([]domain.SyncRun, error)
}

// CustomerService is the admin surface for customers and monitored products.
type CustomerService interface {
	List(ctx context.Context) ([]domain.Customer, error)
	Get(ctx context.Context, id string) (*domain.Customer, error)
	Create(ctx context.Context, in domain.CustomerInput) (*domain.Customer, error)
	Update(ctx context.Context, id string, in domain.CustomerInput) (*domain.Customer, error)
	SetEnabled(ctx context.Context, id string, enabled bool) error
	AddProduct(ctx context.Context, customerID string, in domain.ProductInput) (*domain.MonitoredProduct, error)
	RemoveProduct(ctx context.Context, customerID, productID string) error
}
