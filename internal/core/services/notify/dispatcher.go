package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/lcalzada-xor/cveadvisor/internal/core/domain"
	"github.com/lcalzada-xor/cveadvisor/internal/core/ports"
	"github.com/lcalzada-xor/cveadvisor/internal/telemetry"
)

const (
	DefaultSendTimeout = 30 * time.Second
	DefaultClaimTTL    = 15 * time.Minute
)

// Config tunes the dispatcher. Zero values fall back to the defaults.
type Config struct {
	SendTimeout time.Duration
	// ClaimTTL is how long a pending claim blocks other runs before it is
	// considered abandoned (e.g. a crash between send and ledger update).
	ClaimTTL time.Duration
}

// Summary aggregates outcomes over a batch of matches.
type Summary struct {
	Notified        int
	AlreadyNotified int
	Unsupported     int
	Failed          int
}

// Dispatcher sends each (customer, vulnerability) advisory at most once.
//
// The ledger row is claimed before the transport is called and completed
// after it succeeds. A failed send releases the claim so a later run retries;
// a failed completion leaves the claim pending, which may lead to one
// re-delivery once the claim goes stale.
type Dispatcher struct {
	ledger    ports.NotificationLedger
	transport ports.MailTransport
	cfg       Config
	now       func() time.Time
}

func NewDispatcher(ledger ports.NotificationLedger, transport ports.MailTransport, cfg Config) *Dispatcher {
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = DefaultSendTimeout
	}
	if cfg.ClaimTTL <= 0 {
		cfg.ClaimTTL = DefaultClaimTTL
	}
	return &Dispatcher{
		ledger:    ledger,
		transport: transport,
		cfg:       cfg,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Dispatch handles one pair. The error is non-nil only with OutcomeFailed.
func (d *Dispatcher) Dispatch(ctx context.Context, c domain.Customer, v domain.Vulnerability,
	settings domain.EmailSettings, tpl domain.EmailTemplate) (domain.DeliveryOutcome, error) {

	exists, err := d.ledger.Exists(ctx, c.ID, v.ID)
	if err != nil {
		return domain.OutcomeFailed, fmt.Errorf("ledger lookup: %w", err)
	}
	if exists {
		return domain.OutcomeAlreadyNotified, nil
	}

	if settings.Method == domain.AuthOAuth2 {
		// No OAuth2 transport: never claim delivery, leave the pair unnotified.
		provider := ""
		if settings.OAuth2 != nil {
			provider = settings.OAuth2.Provider
		}
		slog.Info("OAuth2 delivery not supported, advisory not sent",
			"customer_id", c.ID, "cve_id", v.CVEID, "provider", provider)
		return domain.OutcomeUnsupported, nil
	}

	rec := &domain.NotificationRecord{
		ID:              uuid.NewString(),
		CustomerID:      c.ID,
		VulnerabilityID: v.ID,
		CVEID:           v.CVEID,
		Status:          domain.NotificationPending,
		ClaimedAt:       d.now(),
	}
	claimed, err := d.ledger.Claim(ctx, rec, d.cfg.ClaimTTL)
	if err != nil {
		return domain.OutcomeFailed, fmt.Errorf("ledger claim: %w", err)
	}
	if !claimed {
		return domain.OutcomeAlreadyNotified, nil
	}

	msg := Render(tpl, c, v, d.transport.RequiresMarkup())
	req := domain.NewEmailRequest(c.Email, settings, msg.Subject, msg.Body)

	if err := d.send(ctx, req); err != nil {
		// Detached so a cancelled run still frees the pair for the next one.
		if rerr := d.ledger.Release(context.WithoutCancel(ctx), rec.ID); rerr != nil {
			slog.Error("Failed to release notification claim", "id", rec.ID, "error", rerr)
		}
		return domain.OutcomeFailed, err
	}

	if err := d.ledger.MarkSent(context.WithoutCancel(ctx), rec.ID, d.now()); err != nil {
		slog.Error("Advisory sent but ledger update failed, pair may be re-sent",
			"customer_id", c.ID, "cve_id", v.CVEID, "error", err)
	}
	return domain.OutcomeSent, nil
}

func (d *Dispatcher) send(ctx context.Context, req domain.EmailRequest) error {
	sendCtx, cancel := context.WithTimeout(ctx, d.cfg.SendTimeout)
	defer cancel()

	res, err := d.transport.Send(sendCtx, req)
	if err != nil {
		return fmt.Errorf("send: %w", err)
	}
	if !res.Success {
		if res.Error == "" {
			return errors.New("send: transport reported failure")
		}
		return errors.New("send: " + res.Error)
	}
	return nil
}

// DispatchAll walks matches sequentially. Per-pair failures are logged and
// counted; they never stop the batch.
func (d *Dispatcher) DispatchAll(ctx context.Context, matches []domain.Match,
	settings domain.EmailSettings, tpl domain.EmailTemplate) Summary {

	var sum Summary
	for _, m := range matches {
		for _, c := range m.Customers {
			if ctx.Err() != nil {
				return sum
			}
			outcome, err := d.Dispatch(ctx, c, m.Vulnerability, settings, tpl)
			telemetry.Notifications.WithLabelValues(string(outcome)).Inc()

			switch outcome {
			case domain.OutcomeSent:
				sum.Notified++
				slog.Info("Advisory sent", "customer_id", c.ID, "cve_id", m.Vulnerability.CVEID)
			case domain.OutcomeAlreadyNotified:
				sum.AlreadyNotified++
			case domain.OutcomeUnsupported:
				sum.Unsupported++
			default:
				sum.Failed++
				slog.Error("Failed to dispatch advisory",
					"customer_id", c.ID, "cve_id", m.Vulnerability.CVEID, "error", err)
			}
		}
	}
	return sum
}
