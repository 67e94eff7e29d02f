package matcher

import (
	"context"
	"fmt"
	"strings"

	"github.com/lcalzada-xor/cveadvisor/internal/core/domain"
	"github.com/lcalzada-xor/cveadvisor/internal/core/ports"
)

// Matcher pairs newly ingested vulnerabilities with the customers they affect.
type Matcher struct {
	customers ports.CustomerRepository
}

func NewMatcher(customers ports.CustomerRepository) *Matcher {
	return &Matcher{customers: customers}
}

// Match loads the customer list once and returns, in input order, every
// vulnerability that affects at least one enabled customer.
func (m *Matcher) Match(ctx context.Context, vulns []domain.Vulnerability) ([]domain.Match, error) {
	if len(vulns) == 0 {
		return nil, nil
	}

	customers, err := m.customers.ListWithProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("load customers: %w", err)
	}

	var matches []domain.Match
	for _, v := range vulns {
		if affected := Affected(v, customers); len(affected) > 0 {
			matches = append(matches, domain.Match{Vulnerability: v, Customers: affected})
		}
	}
	return matches, nil
}

// Affected returns the enabled customers with at least one monitored product
// matching v. Customer order is preserved.
func Affected(v domain.Vulnerability, customers []domain.Customer) []domain.Customer {
	var out []domain.Customer
	for _, c := range customers {
		if !c.Enabled {
			continue
		}
		for _, p := range c.Products {
			if ProductMatches(v, p) {
				out = append(out, c)
				break
			}
		}
	}
	return out
}

// ProductMatches is deliberately permissive: the vulnerability's product
// contains the monitored product name OR its vendor contains the monitored
// vendor name, both case-insensitive. Empty names never match.
func ProductMatches(v domain.Vulnerability, p domain.MonitoredProduct) bool {
	return containsFold(v.Product, p.ProductName) || containsFold(v.Vendor, p.VendorName)
}

func containsFold(haystack, needle string) bool {
	if needle == "" {
		return false
	}
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
