package notify

import "github.com/lcalzada-xor/cveadvisor/internal/core/domain"

var sampleScore = 9.8

// SampleVulnerability is the advisory rendered into test emails.
var SampleVulnerability = domain.Vulnerability{
	CVEID:         "CVE-2024-0001",
	Description:   "Sample vulnerability used to preview advisory emails.",
	Severity:      domain.SeverityCritical,
	CVSSScore:     &sampleScore,
	Vendor:        "examplevendor",
	Product:       "exampleproduct",
	PublishedDate: "2024-01-01",
	LastModified:  "2024-01-01",
}

// TestMessage renders tpl against the sample advisory for a connectivity check.
func TestMessage(to string, settings domain.EmailSettings, tpl domain.EmailTemplate, markup bool) domain.EmailRequest {
	c := domain.Customer{CompanyName: "Test Customer", Email: to}
	r := Render(tpl, c, SampleVulnerability, markup)

	req := domain.NewEmailRequest(to, settings, "[TEST] "+r.Subject, r.Body)
	req.IsTest = true
	return req
}
