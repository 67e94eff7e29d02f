package storage

import (
	"context"

	"github.com/lcalzada-xor/cveadvisor/internal/core/domain"
	"gorm.io/gorm"
)

func (a *SQLiteAdapter) withProducts(ctx context.Context) *gorm.DB {
	return a.db.WithContext(ctx).Preload("Products", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at, id")
	})
}

func (a *SQLiteAdapter) ListWithProducts(ctx context.Context) ([]domain.Customer, error) {
	var models []CustomerModel
	if err := a.withProducts(ctx).Order("created_at, id").Find(&models).Error; err != nil {
		return nil, err
	}

	customers := make([]domain.Customer, len(models))
	for i, m := range models {
		customers[i] = customerToDomain(m)
	}
	return customers, nil
}

func (a *SQLiteAdapter) GetCustomer(ctx context.Context, id string) (*domain.Customer, error) {
	var m CustomerModel
	if err := a.withProducts(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	c := customerToDomain(m)
	return &c, nil
}

// CreateCustomer inserts the customer and its products in one transaction.
func (a *SQLiteAdapter) CreateCustomer(ctx context.Context, c *domain.Customer) error {
	m := customerToModel(*c)
	return a.db.WithContext(ctx).Create(&m).Error
}

func (a *SQLiteAdapter) UpdateCustomer(ctx context.Context, c *domain.Customer) error {
	res := a.db.WithContext(ctx).Model(&CustomerModel{}).Where("id = ?", c.ID).Updates(map[string]any{
		"company_name": c.CompanyName,
		"email":        c.Email,
		"enabled":      c.Enabled,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (a *SQLiteAdapter) SetCustomerEnabled(ctx context.Context, id string, enabled bool) error {
	res := a.db.WithContext(ctx).Model(&CustomerModel{}).Where("id = ?", id).Update("enabled", enabled)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (a *SQLiteAdapter) AddProduct(ctx context.Context, p *domain.MonitoredProduct) error {
	m := productToModel(*p)
	return a.db.WithContext(ctx).Create(&m).Error
}

func (a *SQLiteAdapter) RemoveProduct(ctx context.Context, customerID, productID string) error {
	res := a.db.WithContext(ctx).
		Where("id = ? AND customer_id = ?", productID, customerID).
		Delete(&MonitoredProductModel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
