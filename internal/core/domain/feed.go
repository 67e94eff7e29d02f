package domain

import "time"

// FeedPage is one page of the NVD CVE API 2.0 response.
type FeedPage struct {
	ResultsPerPage  int          `json:"resultsPerPage"`
	StartIndex      int          `json:"startIndex"`
	TotalResults    int          `json:"totalResults"`
	Vulnerabilities []FeedRecord `json:"vulnerabilities"`
}

// FeedRecord wraps a single raw CVE item as delivered by the feed.
type FeedRecord struct {
	CVE FeedCVE `json:"cve"`
}

// FeedCVE holds the raw, unnormalized CVE fields consumed by the normalizer.
// Every nested block is optional in practice.
type FeedCVE struct {
	ID             string          `json:"id"`
	Published      string          `json:"published"`
	LastModified   string          `json:"lastModified"`
	VulnStatus     string          `json:"vulnStatus,omitempty"`
	Descriptions   []LangString    `json:"descriptions"`
	Metrics        *FeedMetrics    `json:"metrics,omitempty"`
	Configurations []FeedConfig    `json:"configurations,omitempty"`
	References     []FeedReference `json:"references,omitempty"`
}

// LangString is a language-tagged text value.
type LangString struct {
	Lang  string `json:"lang"`
	Value string `json:"value"`
}

// FeedMetrics may contain a CVSS v3.1 block, a v2 block, both or neither.
type FeedMetrics struct {
	CvssMetricV31 []CVSSMetricV3 `json:"cvssMetricV31,omitempty"`
	CvssMetricV2  []CVSSMetricV2 `json:"cvssMetricV2,omitempty"`
}

// CVSSMetricV3 is one v3.x metric entry.
type CVSSMetricV3 struct {
	Source   string   `json:"source,omitempty"`
	Type     string   `json:"type,omitempty"` // Primary, Secondary
	CvssData CVSSData `json:"cvssData"`
}

// CVSSMetricV2 is one v2 metric entry. The v2 rating lives next to cvssData,
// not inside it.
type CVSSMetricV2 struct {
	Source       string   `json:"source,omitempty"`
	Type         string   `json:"type,omitempty"`
	CvssData     CVSSData `json:"cvssData"`
	BaseSeverity string   `json:"baseSeverity,omitempty"`
}

// CVSSData is shared by the v2 and v3 blocks.
type CVSSData struct {
	Version      string   `json:"version,omitempty"`
	VectorString string   `json:"vectorString,omitempty"`
	BaseScore    *float64 `json:"baseScore,omitempty"`
	BaseSeverity string   `json:"baseSeverity,omitempty"`
}

// FeedConfig is a configuration block listing platform match nodes.
type FeedConfig struct {
	Nodes []FeedNode `json:"nodes"`
}

// FeedNode groups platform matches under a boolean operator.
type FeedNode struct {
	Operator string     `json:"operator,omitempty"`
	Negate   bool       `json:"negate,omitempty"`
	CpeMatch []CPEMatch `json:"cpeMatch"`
}

// CPEMatch carries one CPE 2.3 formatted string in Criteria.
type CPEMatch struct {
	Vulnerable      bool   `json:"vulnerable"`
	Criteria        string `json:"criteria"`
	MatchCriteriaID string `json:"matchCriteriaId,omitempty"`
}

// FeedReference is an advisory or patch link.
type FeedReference struct {
	URL    string `json:"url"`
	Source string `json:"source,omitempty"`
}

// FeedQuery describes one page request against the feed.
type FeedQuery struct {
	APIKey     string
	PubStart   time.Time
	PubEnd     time.Time
	StartIndex int
	PageSize   int
}
