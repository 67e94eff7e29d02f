package domain

import (
	"strconv"
	"strings"
	"time"
)

// Severity is the normalized CVSS severity rating stored with a vulnerability.
type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityHigh     Severity = "HIGH"
	SeverityMedium   Severity = "MEDIUM"
	SeverityLow      Severity = "LOW"
	SeverityUnknown  Severity = "Unknown"
)

const (
	// UnknownName is used for vendor and product when no platform identifier resolves.
	UnknownName = "Unknown"

	// MaxDescriptionLength bounds the stored description, in characters.
	MaxDescriptionLength = 1000

	// DateLayout is the calendar-date granularity used for published/modified dates.
	DateLayout = "2006-01-02"
)

// ParseSeverity maps a feed rating ("critical", "HIGH", ...) onto the closed set.
// Anything else, including the CVSS v3 "NONE" rating, is SeverityUnknown.
func ParseSeverity(s string) Severity {
	switch Severity(strings.ToUpper(strings.TrimSpace(s))) {
	case SeverityCritical:
		return SeverityCritical
	case SeverityHigh:
		return SeverityHigh
	case SeverityMedium:
		return SeverityMedium
	case SeverityLow:
		return SeverityLow
	}
	return SeverityUnknown
}

// Vulnerability is the canonical, normalized CVE record. Once inserted it is
// never updated; re-ingesting the same CVE is a no-op.
type Vulnerability struct {
	ID            string    `json:"id"`
	CVEID         string    `json:"cve_id"` // e.g., "CVE-2024-1234"
	Description   string    `json:"description"`
	Severity      Severity  `json:"severity"`
	CVSSScore     *float64  `json:"cvss_score"`
	Vendor        string    `json:"vendor"`
	Product       string    `json:"product"`
	PublishedDate string    `json:"published_date"` // YYYY-MM-DD
	LastModified  string    `json:"last_modified"`  // YYYY-MM-DD
	IngestedAt    time.Time `json:"ingested_at"`
}

// ScoreString renders the score for templates, "N/A" when absent.
func (v Vulnerability) ScoreString() string {
	if v.CVSSScore == nil {
		return "N/A"
	}
	return strconv.FormatFloat(*v.CVSSScore, 'f', -1, 64)
}

// VulnerabilityFilter narrows vulnerability listings.
type VulnerabilityFilter struct {
	Severity Severity
	Vendor   string
	Product  string
	Limit    int
}

// VulnerabilityStats summarizes the stored vulnerabilities.
type VulnerabilityStats struct {
	Total      int              `json:"total"`
	BySeverity map[Severity]int `json:"by_severity"`
}
