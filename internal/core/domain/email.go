package domain

// EmailRequest is the mail dispatch contract shared by the send-email endpoint
// and the notification dispatcher.
type EmailRequest struct {
	To           string `json:"to"`
	From         string `json:"from"`
	FromName     string `json:"fromName"`
	Subject      string `json:"subject"`
	HTML         string `json:"html"`
	SMTPHost     string `json:"smtpHost"`
	SMTPPort     int    `json:"smtpPort"`
	SMTPUser     string `json:"smtpUser"`
	SMTPPassword string `json:"smtpPassword"`
	SMTPProtocol string `json:"smtpProtocol"`
	IsTest       bool   `json:"isTest,omitempty"`
}

// Validate mirrors the checks performed before any transport is touched.
func (r EmailRequest) Validate() error {
	if r.To == "" || r.Subject == "" || r.HTML == "" {
		return NewConfigError("Missing required email fields: to, subject, or html")
	}
	if !IsValidEmail(r.To) {
		return NewConfigError("invalid recipient address")
	}
	if r.SMTPHost == "" || r.SMTPUser == "" || r.SMTPPassword == "" {
		return NewConfigError("Missing SMTP configuration")
	}
	return nil
}

// EmailResult reports how a message was handled. Simulated is true when no
// real transport was used; such results must never be mistaken for delivery
// in production.
type EmailResult struct {
	Success   bool           `json:"success"`
	Message   string         `json:"message,omitempty"`
	Result    map[string]any `json:"result,omitempty"`
	Error     string         `json:"error,omitempty"`
	Transport string         `json:"transport,omitempty"`
	Simulated bool           `json:"simulated,omitempty"`
}

// NewEmailRequest builds a transport request from SMTP settings and rendered content.
func NewEmailRequest(to string, settings EmailSettings, subject, body string) EmailRequest {
	from, name := settings.Sender()
	req := EmailRequest{
		To:       to,
		From:     from,
		FromName: name,
		Subject:  subject,
		HTML:     body,
	}
	if settings.SMTP != nil {
		req.SMTPHost = settings.SMTP.Host
		req.SMTPPort = settings.SMTP.PortOrDefault()
		req.SMTPUser = settings.SMTP.User
		req.SMTPPassword = settings.SMTP.Password
		req.SMTPProtocol = settings.SMTP.ProtocolOrDefault()
	}
	return req
}
