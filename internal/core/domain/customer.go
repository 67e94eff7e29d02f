package domain

import "time"

// Customer is an organization receiving advisories for its monitored products.
// Customers are disabled, never hard-deleted.
type Customer struct {
	ID          string             `json:"id"`
	CompanyName string             `json:"company_name"`
	Email       string             `json:"email"`
	Enabled     bool               `json:"enabled"`
	CreatedAt   time.Time          `json:"created_at"`
	Products    []MonitoredProduct `json:"monitored_products"`
}

// MonitoredProduct is a vendor/product pair a customer wants advisories for.
type MonitoredProduct struct {
	ID          string    `json:"id"`
	CustomerID  string    `json:"customer_id"`
	VendorName  string    `json:"vendor_name"`
	ProductName string    `json:"product_name"`
	CreatedAt   time.Time `json:"created_at"`
}

// CustomerInput carries the admin-editable customer fields.
type CustomerInput struct {
	CompanyName string         `json:"company_name"`
	Email       string         `json:"email"`
	Enabled     *bool          `json:"enabled,omitempty"`
	Products    []ProductInput `json:"monitored_products,omitempty"`
}

// ProductInput carries the admin-editable monitored product fields.
type ProductInput struct {
	VendorName  string `json:"vendor_name"`
	ProductName string `json:"product_name"`
}

// Validate checks the customer fields required by the admin screens.
func (in CustomerInput) Validate() error {
	if in.CompanyName == "" {
		return NewValidationError("company_name is required")
	}
	if !IsValidEmail(in.Email) {
		return NewValidationError("a valid email is required")
	}
	for _, p := range in.Products {
		if err := p.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Validate rejects empty names: an empty substring would match every vulnerability.
func (in ProductInput) Validate() error {
	if in.VendorName == "" || in.ProductName == "" {
		return NewValidationError("vendor_name and product_name are required")
	}
	return nil
}
