package mail

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"
	"time"

	"github.com/lcalzada-xor/cveadvisor/internal/core/domain"
	gomail "gopkg.in/mail.v2"
)

const defaultSMTPTimeout = 30 * time.Second

// SMTPSender delivers messages through the SMTP server named in each request.
type SMTPSender struct {
	timeout time.Duration
	send    func(d *gomail.Dialer, m *gomail.Message) error
}

func NewSMTPSender() *SMTPSender {
	return &SMTPSender{
		timeout: defaultSMTPTimeout,
		send: func(d *gomail.Dialer, m *gomail.Message) error {
			return d.DialAndSend(m)
		},
	}
}

// Send dials per message; advisory volume is far too low to keep a pool.
func (s *SMTPSender) Send(ctx context.Context, req domain.EmailRequest) (map[string]any, error) {
	m := buildMessage(req)
	d := s.dialer(ctx, req)

	errCh := make(chan error, 1)
	go func() { errCh <- s.send(d, m) }()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case err := <-errCh:
		if err != nil {
			return nil, fmt.Errorf("smtp %s:%d: %w", req.SMTPHost, req.SMTPPort, err)
		}
	}
	return map[string]any{"host": req.SMTPHost, "to": req.To}, nil
}

func buildMessage(req domain.EmailRequest) *gomail.Message {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", req.From, req.FromName)
	m.SetHeader("To", req.To)
	m.SetHeader("Subject", req.Subject)
	m.SetBody("text/html", req.HTML)
	return m
}

func (s *SMTPSender) dialer(ctx context.Context, req domain.EmailRequest) *gomail.Dialer {
	port := req.SMTPPort
	if port == 0 {
		port = domain.DefaultSMTPPort
	}
	d := gomail.NewDialer(req.SMTPHost, port, req.SMTPUser, req.SMTPPassword)
	d.TLSConfig = &tls.Config{ServerName: req.SMTPHost, MinVersion: tls.VersionTLS12}

	// SSL is implicit TLS (usually 465); TLS means STARTTLS, which must succeed.
	if strings.EqualFold(req.SMTPProtocol, "SSL") {
		d.SSL = true
	} else {
		d.StartTLSPolicy = gomail.MandatoryStartTLS
	}

	d.Timeout = s.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left < d.Timeout {
			d.Timeout = left
		}
	}
	return d
}
