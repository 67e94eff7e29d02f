package normalize

import (
	"strings"

	"github.com/facebookincubator/nvdtools/wfn"
	"github.com/lcalzada-xor/cveadvisor/internal/core/domain"
)

// CPE 2.3 formatted string: cpe:2.3:part:vendor:product:version:...
const (
	cpeVendorField  = 3
	cpeProductField = 4
	cpeMinFields    = 5
)

// ExtractVendorProduct splits a CPE formatted string and returns its vendor and
// product fields. Malformed or short identifiers degrade to Unknown/Unknown.
func ExtractVendorProduct(criteria string) (vendor, product string) {
	parts := strings.Split(criteria, ":")
	if len(parts) < cpeMinFields {
		return domain.UnknownName, domain.UnknownName
	}

	vendor = wfn.StripSlashes(parts[cpeVendorField])
	product = wfn.StripSlashes(parts[cpeProductField])
	if vendor == "" {
		vendor = domain.UnknownName
	}
	if product == "" {
		product = domain.UnknownName
	}
	return vendor, product
}

// PlatformCriteria picks the identifier used for vendor/product: the first
// vulnerable match in document order, else the first non-empty criteria.
func PlatformCriteria(configs []domain.FeedConfig) string {
	var fallback string
	for _, cfg := range configs {
		for _, node := range cfg.Nodes {
			for _, match := range node.CpeMatch {
				if match.Criteria == "" {
					continue
				}
				if match.Vulnerable {
					return match.Criteria
				}
				if fallback == "" {
					fallback = match.Criteria
				}
			}
		}
	}
	return fallback
}
