package normalize

import (
	"github.com/lcalzada-xor/cveadvisor/internal/core/domain"
	gocvss31 "github.com/pandatix/go-cvss/31"
)

// ExtractSeverity derives (severity, score) from whichever metric block is
// present. CVSS v3.1 wins over v2; with neither, the result is (Unknown, nil).
// A missing metrics block is a normal case, not an error.
func ExtractSeverity(m *domain.FeedMetrics) (domain.Severity, *float64) {
	if m == nil {
		return domain.SeverityUnknown, nil
	}

	if len(m.CvssMetricV31) > 0 {
		data := m.CvssMetricV31[0].CvssData
		score := data.BaseScore
		if score == nil {
			score = scoreFromV3Vector(data.VectorString)
		}
		severity := domain.ParseSeverity(data.BaseSeverity)
		if severity == domain.SeverityUnknown && score != nil {
			severity = ratingV3(*score)
		}
		return severity, score
	}

	if len(m.CvssMetricV2) > 0 {
		metric := m.CvssMetricV2[0]
		score := metric.CvssData.BaseScore
		// NVD puts the v2 rating beside cvssData; older payloads nest it.
		rating := metric.BaseSeverity
		if rating == "" {
			rating = metric.CvssData.BaseSeverity
		}
		severity := domain.ParseSeverity(rating)
		if severity == domain.SeverityUnknown && score != nil {
			severity = ratingV2(*score)
		}
		return severity, score
	}

	return domain.SeverityUnknown, nil
}

// scoreFromV3Vector computes the base score when the feed ships a vector only.
func scoreFromV3Vector(vector string) *float64 {
	if vector == "" {
		return nil
	}
	cvss, err := gocvss31.ParseVector(vector)
	if err != nil {
		return nil
	}
	score := cvss.BaseScore()
	return &score
}

// ratingV3 follows the CVSS v3.x qualitative scale. 0.0 (None) stays Unknown.
func ratingV3(score float64) domain.Severity {
	switch {
	case score >= 9.0:
		return domain.SeverityCritical
	case score >= 7.0:
		return domain.SeverityHigh
	case score >= 4.0:
		return domain.SeverityMedium
	case score > 0:
		return domain.SeverityLow
	}
	return domain.SeverityUnknown
}

// ratingV2 follows the NVD CVSS v2 ranges, which have no Critical band.
func ratingV2(score float64) domain.Severity {
	switch {
	case score >= 7.0:
		return domain.SeverityHigh
	case score >= 4.0:
		return domain.SeverityMedium
	}
	return domain.SeverityLow
}
