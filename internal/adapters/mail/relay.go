package mail

import (
	"context"
	"log/slog"

	"github.com/lcalzada-xor/cveadvisor/internal/core/domain"
	"github.com/lcalzada-xor/cveadvisor/internal/core/ports"
	"github.com/lcalzada-xor/cveadvisor/internal/telemetry"
)

// Transport names reported in EmailResult.Transport.
const (
	TransportResend    = "resend"
	TransportSMTP      = "smtp"
	TransportSimulated = "simulated"
)

type sender interface {
	Send(ctx context.Context, req domain.EmailRequest) (map[string]any, error)
}

// Config selects the delivery path. Resend wins when a key is set; otherwise
// SMTP is used unless Simulate is on.
type Config struct {
	ResendAPIKey string
	ResendURL    string
	Simulate     bool
}

// Relay is the mail dispatch boundary shared by the send-email endpoint and
// the advisory dispatcher. It always renders HTML.
type Relay struct {
	resend   sender
	smtp     sender
	simulate bool
}

func NewRelay(cfg Config) *Relay {
	r := &Relay{smtp: NewSMTPSender(), simulate: cfg.Simulate}
	if cfg.ResendAPIKey != "" {
		r.resend = NewResendClient(cfg.ResendAPIKey, cfg.ResendURL)
	}
	if cfg.Simulate {
		slog.Warn("Mail simulation enabled: messages will NOT be delivered")
	}
	return r
}

// Send validates the request before touching any transport. A failed
// delivery returns both an unsuccessful result and the error.
func (r *Relay) Send(ctx context.Context, req domain.EmailRequest) (domain.EmailResult, error) {
	if err := req.Validate(); err != nil {
		return domain.EmailResult{Success: false, Error: err.Error()}, err
	}

	name, s := r.pick()
	if s == nil {
		slog.Warn("Simulated email, nothing delivered", "to", req.To, "subject", req.Subject, "test", req.IsTest)
		telemetry.EmailsSent.WithLabelValues(TransportSimulated, "ok").Inc()
		return domain.EmailResult{
			Success:   true,
			Message:   "Email simulated, no transport configured",
			Transport: TransportSimulated,
			Simulated: true,
		}, nil
	}

	result, err := s.Send(ctx, req)
	if err != nil {
		telemetry.EmailsSent.WithLabelValues(name, "error").Inc()
		return domain.EmailResult{Success: false, Error: err.Error(), Transport: name}, err
	}

	telemetry.EmailsSent.WithLabelValues(name, "ok").Inc()
	slog.Debug("Email sent", "transport", name, "to", req.To, "test", req.IsTest)
	return domain.EmailResult{
		Success:   true,
		Message:   "Email sent successfully",
		Result:    result,
		Transport: name,
	}, nil
}

func (r *Relay) pick() (string, sender) {
	switch {
	case r.resend != nil:
		return TransportResend, r.resend
	case r.simulate:
		return TransportSimulated, nil
	default:
		return TransportSMTP, r.smtp
	}
}

func (r *Relay) RequiresMarkup() bool { return true }

var _ ports.MailTransport = (*Relay)(nil)
