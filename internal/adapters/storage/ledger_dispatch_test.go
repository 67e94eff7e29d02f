package storage

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lcalzada-xor/cveadvisor/internal/core/domain"
	"github.com/lcalzada-xor/cveadvisor/internal/core/services/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingTransport struct {
	calls atomic.Int32
}

func (t *countingTransport) Send(ctx context.Context, req domain.EmailRequest) (domain.EmailResult, error) {
	t.calls.Add(1)
	return domain.EmailResult{Success: true}, nil
}

func (t *countingTransport) RequiresMarkup() bool { return true }

func TestDispatcher_RecoversAbandonedClaim(t *testing.T) {
	adapter := setupInMemoryDB(t)
	ctx := context.Background()

	// Claimed two days ago by a process that never sent.
	claimed, err := adapter.Claim(ctx, claimFor("n-old", time.Now().UTC().Add(-48*time.Hour)), 15*time.Minute)
	require.NoError(t, err)
	require.True(t, claimed)

	transport := &countingTransport{}
	d := notify.NewDispatcher(adapter, transport, notify.Config{ClaimTTL: 15 * time.Minute})

	customer := domain.Customer{ID: "c-1", CompanyName: "Acme", Email: "sec@acme.example", Enabled: true}
	v := *vuln("v-1", "CVE-2024-1234")
	settings := domain.EmailSettings{
		Method: domain.AuthSMTP,
		SMTP:   &domain.SMTPSettings{Host: "smtp.example.com", User: "u", Password: "p"},
	}

	outcome, err := d.Dispatch(ctx, customer, v, settings, domain.DefaultEmailTemplate)
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeSent, outcome)
	assert.Equal(t, int32(1), transport.calls.Load())

	// Delivered now; further runs are no-ops.
	outcome, err = d.Dispatch(ctx, customer, v, settings, domain.DefaultEmailTemplate)
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeAlreadyNotified, outcome)
	assert.Equal(t, int32(1), transport.calls.Load())

	rows, err := adapter.ListNotifications(ctx, "c-1", 10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, domain.NotificationSent, rows[0].Status)
	assert.NotEqual(t, "n-old", rows[0].ID)
}
