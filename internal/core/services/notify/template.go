package notify

import (
	"html"
	"strings"

	"github.com/lcalzada-xor/cveadvisor/internal/core/domain"
)

// Placeholders understood by Render.
const (
	PlaceholderCustomer    = "$CUSTOMER"
	PlaceholderProduct     = "$PRODUCT"
	PlaceholderCVEID       = "$CVE_ID"
	PlaceholderSeverity    = "$SEVERITY"
	PlaceholderDescription = "$DESCRIPTION"
	PlaceholderCVSSScore   = "$CVSS_SCORE"
)

// Rendered is a template after substitution.
type Rendered struct {
	Subject string
	Body    string
}

// Render substitutes every occurrence of each placeholder. With markup set,
// substituted values are HTML-escaped and body newlines become <br>; plain
// text output is left untouched. Subjects are headers and never carry line
// breaks.
func Render(tpl domain.EmailTemplate, c domain.Customer, v domain.Vulnerability, markup bool) Rendered {
	subject := replacer(c, v, false).Replace(tpl.Subject)
	subject = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(subject)

	body := replacer(c, v, markup).Replace(tpl.Body)
	if markup {
		body = strings.ReplaceAll(body, "\r\n", "\n")
		body = strings.ReplaceAll(body, "\n", "<br>")
	}

	return Rendered{Subject: subject, Body: body}
}

func replacer(c domain.Customer, v domain.Vulnerability, escape bool) *strings.Replacer {
	value := func(s string) string {
		if escape {
			return html.EscapeString(s)
		}
		return s
	}
	return strings.NewReplacer(
		PlaceholderCustomer, value(c.CompanyName),
		PlaceholderProduct, value(v.Product),
		PlaceholderCVEID, value(v.CVEID),
		PlaceholderSeverity, value(string(v.Severity)),
		PlaceholderDescription, value(v.Description),
		PlaceholderCVSSScore, value(v.ScoreString()),
	)
}
