package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// AuthMethod selects the mail authentication variant of EmailSettings.
type AuthMethod string

const (
	AuthSMTP   AuthMethod = "smtp"
	AuthOAuth2 AuthMethod = "oauth2"
)

// Defaults applied when the sender fields are left empty.
const (
	DefaultFromEmail    = "alerts@cveadvisor.com"
	DefaultFromName     = "CVEAdvisor"
	DefaultSMTPPort     = 587
	DefaultSMTPProtocol = "TLS"
)

// EmailSettings is a tagged variant: Method decides which of SMTP or OAuth2 is
// meaningful. It is passed into every sync run rather than held globally.
type EmailSettings struct {
	Method    AuthMethod      `json:"authMethod"`
	FromEmail string          `json:"fromEmail,omitempty"`
	FromName  string          `json:"fromName,omitempty"`
	SMTP      *SMTPSettings   `json:"smtp,omitempty"`
	OAuth2    *OAuth2Settings `json:"oauth2,omitempty"`
}

// SMTPSettings holds password-based SMTP credentials.
type SMTPSettings struct {
	Host     string `json:"host"`
	Port     int    `json:"port,omitempty"`
	User     string `json:"user"`
	Password string `json:"password"`
	Protocol string `json:"protocol,omitempty"` // TLS (STARTTLS) or SSL (implicit TLS)
}

// OAuth2Settings holds the provider registration for OAuth2 mail.
type OAuth2Settings struct {
	Provider     string `json:"provider"` // google, microsoft
	ClientID     string `json:"clientId"`
	ClientSecret string `json:"clientSecret"`
	TenantID     string `json:"tenantId,omitempty"`
}

// flatEmailSettings is the single-object shape sent by the admin client, with
// the SMTP and OAuth2 fields side by side and the port as a string.
type flatEmailSettings struct {
	Method       AuthMethod `json:"method"`
	SMTPHost     string     `json:"smtpHost"`
	SMTPPort     flexPort   `json:"smtpPort"`
	SMTPUser     string     `json:"smtpUser"`
	SMTPPassword string     `json:"smtpPassword"`
	SMTPProtocol string     `json:"smtpProtocol"`
	Provider     string     `json:"provider"`
	ClientID     string     `json:"clientId"`
	ClientSecret string     `json:"clientSecret"`
	TenantID     string     `json:"tenantId"`
}

// UnmarshalJSON accepts both the nested variant ({"authMethod":"smtp","smtp":{...}})
// and the flat admin-client shape. Nested fields win when both are present.
func (s *EmailSettings) UnmarshalJSON(data []byte) error {
	type plain EmailSettings
	var nested plain
	if err := json.Unmarshal(data, &nested); err != nil {
		return err
	}
	var flat flatEmailSettings
	if err := json.Unmarshal(data, &flat); err != nil {
		return err
	}

	*s = EmailSettings(nested)
	if s.Method == "" {
		s.Method = flat.Method
	}
	s.Method = AuthMethod(strings.ToLower(string(s.Method)))

	if s.SMTP == nil && (flat.SMTPHost != "" || flat.SMTPUser != "" || flat.SMTPPassword != "") {
		s.SMTP = &SMTPSettings{
			Host:     flat.SMTPHost,
			Port:     int(flat.SMTPPort),
			User:     flat.SMTPUser,
			Password: flat.SMTPPassword,
			Protocol: flat.SMTPProtocol,
		}
	}
	if s.OAuth2 == nil && (flat.Provider != "" || flat.ClientID != "") {
		s.OAuth2 = &OAuth2Settings{
			Provider:     flat.Provider,
			ClientID:     flat.ClientID,
			ClientSecret: flat.ClientSecret,
			TenantID:     flat.TenantID,
		}
	}
	return nil
}

// flexPort decodes a port given as a JSON number or a numeric string.
type flexPort int

func (p *flexPort) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		return nil
	}
	if unq, err := strconv.Unquote(raw); err == nil {
		raw = strings.TrimSpace(unq)
	}
	if raw == "" {
		*p = 0
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("invalid SMTP port %q", raw)
	}
	*p = flexPort(n)
	return nil
}

// Validate fails fast on incomplete settings, before any I/O happens.
func (s EmailSettings) Validate() error {
	switch s.Method {
	case AuthSMTP:
		if s.SMTP == nil || s.SMTP.Host == "" || s.SMTP.User == "" || s.SMTP.Password == "" {
			return NewConfigError("Missing SMTP configuration")
		}
		if s.SMTP.Port < 0 || s.SMTP.Port > 65535 {
			return NewConfigError("SMTP port out of range")
		}
		if p := strings.ToUpper(s.SMTP.Protocol); p != "" && p != "TLS" && p != "SSL" {
			return NewConfigError("SMTP protocol must be TLS or SSL")
		}
	case AuthOAuth2:
		if s.OAuth2 == nil || s.OAuth2.Provider == "" {
			return NewConfigError("Missing OAuth2 provider configuration")
		}
	default:
		return NewConfigError("unsupported email auth method: " + string(s.Method))
	}
	if s.FromEmail != "" && !IsValidEmail(s.FromEmail) {
		return NewConfigError("invalid from address")
	}
	return nil
}

// Sender returns the from address and display name with defaults applied.
func (s EmailSettings) Sender() (email, name string) {
	email, name = s.FromEmail, s.FromName
	if email == "" {
		email = DefaultFromEmail
	}
	if name == "" {
		name = DefaultFromName
	}
	return email, name
}

// PortOrDefault returns the SMTP port, defaulting to 587.
func (s SMTPSettings) PortOrDefault() int {
	if s.Port == 0 {
		return DefaultSMTPPort
	}
	return s.Port
}

// ProtocolOrDefault returns the upper-cased protocol, defaulting to TLS.
func (s SMTPSettings) ProtocolOrDefault() string {
	if s.Protocol == "" {
		return DefaultSMTPProtocol
	}
	return strings.ToUpper(s.Protocol)
}

// EmailTemplate holds subject and body templates with $PLACEHOLDER tokens.
type EmailTemplate struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// DefaultEmailTemplate is used when a run supplies no template.
var DefaultEmailTemplate = EmailTemplate{
	Subject: "Security Advisory: $CVE_ID affects $PRODUCT",
	Body: "Dear $CUSTOMER,\n\n" +
		"A new vulnerability affecting $PRODUCT has been published.\n\n" +
		"CVE: $CVE_ID\nSeverity: $SEVERITY\nCVSS Score: $CVSS_SCORE\n\n" +
		"$DESCRIPTION\n\n" +
		"Please review your deployments and apply vendor patches where available.",
}

// Validate rejects templates with an empty subject or body.
func (t EmailTemplate) Validate() error {
	if strings.TrimSpace(t.Subject) == "" || strings.TrimSpace(t.Body) == "" {
		return NewConfigError("email template requires a subject and a body")
	}
	return nil
}
