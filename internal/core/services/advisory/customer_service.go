package advisory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lcalzada-xor/cveadvisor/internal/core/domain"
	"github.com/lcalzada-xor/cveadvisor/internal/core/ports"
)

// CustomerService implements the admin operations on customers and their
// monitored products. Customers are disabled rather than deleted.
type CustomerService struct {
	repo  ports.CustomerRepository
	audit ports.AuditService
	now   func() time.Time
}

func NewCustomerService(repo ports.CustomerRepository, audit ports.AuditService) *CustomerService {
	return &CustomerService{
		repo:  repo,
		audit: audit,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (s *CustomerService) List(ctx context.Context) ([]domain.Customer, error) {
	return s.repo.ListWithProducts(ctx)
}

func (s *CustomerService) Get(ctx context.Context, id string) (*domain.Customer, error) {
	return s.repo.GetCustomer(ctx, id)
}

func (s *CustomerService) Create(ctx context.Context, in domain.CustomerInput) (*domain.Customer, error) {
	in = trimCustomer(in)
	if err := in.Validate(); err != nil {
		return nil, err
	}

	now := s.now()
	c := &domain.Customer{
		ID:          uuid.NewString(),
		CompanyName: in.CompanyName,
		Email:       in.Email,
		Enabled:     in.Enabled == nil || *in.Enabled,
		CreatedAt:   now,
	}
	for _, p := range in.Products {
		c.Products = append(c.Products, s.newProduct(c.ID, p, now))
	}

	if err := s.repo.CreateCustomer(ctx, c); err != nil {
		return nil, fmt.Errorf("create customer: %w", err)
	}
	s.log(ctx, domain.ActionCustomerCreate, c.ID, c.CompanyName)
	return c, nil
}

// Update replaces name and email, and the enabled flag when given.
// Product associations are edited through AddProduct/RemoveProduct.
func (s *CustomerService) Update(ctx context.Context, id string, in domain.CustomerInput) (*domain.Customer, error) {
	in = trimCustomer(in)
	in.Products = nil
	if err := in.Validate(); err != nil {
		return nil, err
	}

	c, err := s.repo.GetCustomer(ctx, id)
	if err != nil {
		return nil, err
	}
	c.CompanyName = in.CompanyName
	c.Email = in.Email
	if in.Enabled != nil {
		c.Enabled = *in.Enabled
	}

	if err := s.repo.UpdateCustomer(ctx, c); err != nil {
		return nil, fmt.Errorf("update customer: %w", err)
	}
	s.log(ctx, domain.ActionCustomerUpdate, c.ID, c.CompanyName)
	return c, nil
}

func (s *CustomerService) SetEnabled(ctx context.Context, id string, enabled bool) error {
	if err := s.repo.SetCustomerEnabled(ctx, id, enabled); err != nil {
		return err
	}
	action := domain.ActionCustomerDisable
	if enabled {
		action = domain.ActionCustomerEnable
	}
	s.log(ctx, action, id, "")
	return nil
}

func (s *CustomerService) AddProduct(ctx context.Context, customerID string, in domain.ProductInput) (*domain.MonitoredProduct, error) {
	in = trimProduct(in)
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.repo.GetCustomer(ctx, customerID); err != nil {
		return nil, err
	}

	p := s.newProduct(customerID, in, s.now())
	if err := s.repo.AddProduct(ctx, &p); err != nil {
		return nil, fmt.Errorf("add product: %w", err)
	}
	s.log(ctx, domain.ActionProductAdd, customerID, p.VendorName+"/"+p.ProductName)
	return &p, nil
}

func (s *CustomerService) RemoveProduct(ctx context.Context, customerID, productID string) error {
	if err := s.repo.RemoveProduct(ctx, customerID, productID); err != nil {
		return err
	}
	s.log(ctx, domain.ActionProductRemove, customerID, productID)
	return nil
}

func (s *CustomerService) newProduct(customerID string, in domain.ProductInput, now time.Time) domain.MonitoredProduct {
	return domain.MonitoredProduct{
		ID:          uuid.NewString(),
		CustomerID:  customerID,
		VendorName:  in.VendorName,
		ProductName: in.ProductName,
		CreatedAt:   now,
	}
}

func (s *CustomerService) log(ctx context.Context, action domain.AuditAction, target, details string) {
	if s.audit == nil {
		return
	}
	// Audit failures never undo an admin change
	_ = s.audit.Log(ctx, action, target, details)
}

func trimCustomer(in domain.CustomerInput) domain.CustomerInput {
	in.CompanyName = strings.TrimSpace(in.CompanyName)
	in.Email = strings.TrimSpace(in.Email)
	products := make([]domain.ProductInput, 0, len(in.Products))
	for _, p := range in.Products {
		products = append(products, trimProduct(p))
	}
	in.Products = products
	return in
}

func trimProduct(in domain.ProductInput) domain.ProductInput {
	in.VendorName = strings.TrimSpace(in.VendorName)
	in.ProductName = strings.TrimSpace(in.ProductName)
	return in
}
