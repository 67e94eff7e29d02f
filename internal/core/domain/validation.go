package domain

import (
	"regexp"
)

// Validation Helpers

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	cveIDRegex = regexp.MustCompile(`^CVE-\d{4}-\d{4,}$`)
)

// IsValidEmail checks if the string looks like a deliverable mailbox address
func IsValidEmail(email string) bool {
	if len(email) == 0 || len(email) > 254 {
		return false
	}
	return emailRegex.MatchString(email)
}

// IsValidCVEID checks the CVE-YYYY-NNNN form
func IsValidCVEID(id string) bool {
	return cveIDRegex.MatchString(id)
}
