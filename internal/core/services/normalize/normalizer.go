package normalize

import (
	"strings"
	"time"

	"github.com/lcalzada-xor/cveadvisor/internal/core/domain"
)

const englishLang = "en"

// Record converts one raw feed record into the canonical vulnerability shape.
// ID and IngestedAt are left for the ingestor to assign.
func Record(rec domain.FeedRecord) domain.Vulnerability {
	cve := rec.CVE
	severity, score := ExtractSeverity(cve.Metrics)
	vendor, product := ExtractVendorProduct(PlatformCriteria(cve.Configurations))

	return domain.Vulnerability{
		CVEID:         strings.TrimSpace(cve.ID),
		Description:   Truncate(EnglishDescription(cve.Descriptions), domain.MaxDescriptionLength),
		Severity:      severity,
		CVSSScore:     score,
		Vendor:        vendor,
		Product:       product,
		PublishedDate: CalendarDate(cve.Published),
		LastModified:  CalendarDate(cve.LastModified),
	}
}

// EnglishDescription returns the first English description, or "".
func EnglishDescription(descs []domain.LangString) string {
	for _, d := range descs {
		if d.Lang == englishLang {
			return d.Value
		}
	}
	return ""
}

// Truncate cuts s to at most max characters without splitting a rune.
func Truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

// CalendarDate drops the time of day from a feed timestamp
// ("2024-06-01T14:15:10.123" -> "2024-06-01"). Unparseable input yields "".
func CalendarDate(ts string) string {
	ts = strings.TrimSpace(ts)
	if len(ts) < len(domain.DateLayout) {
		return ""
	}
	day := ts[:len(domain.DateLayout)]
	if _, err := time.Parse(domain.DateLayout, day); err != nil {
		return ""
	}
	return day
}
