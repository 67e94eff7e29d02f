package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/lcalzada-xor/cveadvisor/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// memLedger mimics the unique (customer, vulnerability) constraint.
type memLedger struct {
	mu    sync.Mutex
	rows  map[string]domain.NotificationRecord
	byKey map[string]string

	markErr error
}

func newMemLedger() *memLedger {
	return &memLedger{rows: map[string]domain.NotificationRecord{}, byKey: map[string]string{}}
}

func key(c, v string) string { return c + "|" + v }

func (l *memLedger) Exists(ctx context.Context, customerID, vulnerabilityID string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	id, ok := l.byKey[key(customerID, vulnerabilityID)]
	return ok && l.rows[id].Status == domain.NotificationSent, nil
}

func (l *memLedger) Claim(ctx context.Context, rec *domain.NotificationRecord, staleAfter time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	k := key(rec.CustomerID, rec.VulnerabilityID)
	if id, ok := l.byKey[k]; ok {
		existing := l.rows[id]
		if existing.Status == domain.NotificationSent || time.Since(existing.ClaimedAt) < staleAfter {
			return false, nil
		}
		delete(l.rows, id)
	}
	l.rows[rec.ID] = *rec
	l.byKey[k] = rec.ID
	return true, nil
}

func (l *memLedger) MarkSent(ctx context.Context, id string, sentAt time.Time) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.markErr != nil {
		return l.markErr
	}
	rec := l.rows[id]
	rec.Status = domain.NotificationSent
	rec.SentAt = &sentAt
	l.rows[id] = rec
	return nil
}

func (l *memLedger) Release(ctx context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	rec, ok := l.rows[id]
	if !ok || rec.Status != domain.NotificationPending {
		return nil
	}
	delete(l.rows, id)
	delete(l.byKey, key(rec.CustomerID, rec.VulnerabilityID))
	return nil
}

func (l *memLedger) ListNotifications(ctx context.Context, customerID string, limit int) ([]domain.NotificationRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []domain.NotificationRecord
	for _, r := range l.rows {
		out = append(out, r)
	}
	return out, nil
}

// MockTransport
type MockTransport struct {
	mock.Mock
	markup bool
}

func (m *MockTransport) Send(ctx context.Context, req domain.EmailRequest) (domain.EmailResult, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(domain.EmailResult), args.Error(1)
}

func (m *MockTransport) RequiresMarkup() bool { return m.markup }

func smtpSettings() domain.EmailSettings {
	return domain.EmailSettings{
		Method: domain.AuthSMTP,
		SMTP:   &domain.SMTPSettings{Host: "smtp.example.com", User: "u", Password: "p"},
	}
}

func TestDispatch_AtMostOnce(t *testing.T) {
	ledger := newMemLedger()
	transport := &MockTransport{markup: true}
	d := NewDispatcher(ledger, transport, Config{})
	ctx := context.Background()

	transport.On("Send", mock.Anything, mock.MatchedBy(func(r domain.EmailRequest) bool {
		return r.To == "sec@acme.example" && r.SMTPHost == "smtp.example.com" && r.SMTPPort == 587 &&
			r.From == domain.DefaultFromEmail && r.Subject == "Security Advisory: CVE-2024-1234 affects openssl"
	})).Return(domain.EmailResult{Success: true}, nil)

	outcome, err := d.Dispatch(ctx, sampleCustomer(), sampleVuln(), smtpSettings(), domain.DefaultEmailTemplate)
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeSent, outcome)

	for i := 0; i < 3; i++ {
		outcome, err = d.Dispatch(ctx, sampleCustomer(), sampleVuln(), smtpSettings(), domain.DefaultEmailTemplate)
		require.NoError(t, err)
		assert.Equal(t, domain.OutcomeAlreadyNotified, outcome)
	}

	transport.AssertNumberOfCalls(t, "Send", 1)
	require.Len(t, ledger.rows, 1)
	for _, rec := range ledger.rows {
		assert.Equal(t, domain.NotificationSent, rec.Status)
		assert.Equal(t, "CVE-2024-1234", rec.CVEID)
		assert.NotNil(t, rec.SentAt)
	}
}

func TestDispatch_ConcurrentRunsSendOnce(t *testing.T) {
	ledger := newMemLedger()
	transport := &MockTransport{}
	d := NewDispatcher(ledger, transport, Config{})

	transport.On("Send", mock.Anything, mock.Anything).Return(domain.EmailResult{Success: true}, nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = d.Dispatch(context.Background(), sampleCustomer(), sampleVuln(), smtpSettings(), domain.DefaultEmailTemplate)
		}()
	}
	wg.Wait()

	transport.AssertNumberOfCalls(t, "Send", 1)
	assert.Len(t, ledger.rows, 1)
}

func TestDispatch_FailedSendReleasesClaim(t *testing.T) {
	ledger := newMemLedger()
	transport := &MockTransport{}
	d := NewDispatcher(ledger, transport, Config{})
	ctx := context.Background()

	transport.On("Send", mock.Anything, mock.Anything).Return(domain.EmailResult{}, errors.New("connection refused")).Once()
	transport.On("Send", mock.Anything, mock.Anything).Return(domain.EmailResult{Success: false, Error: "mailbox full"}, nil).Once()
	transport.On("Send", mock.Anything, mock.Anything).Return(domain.EmailResult{Success: true}, nil).Once()

	outcome, err := d.Dispatch(ctx, sampleCustomer(), sampleVuln(), smtpSettings(), domain.DefaultEmailTemplate)
	assert.Equal(t, domain.OutcomeFailed, outcome)
	assert.ErrorContains(t, err, "connection refused")
	assert.Empty(t, ledger.rows)

	outcome, err = d.Dispatch(ctx, sampleCustomer(), sampleVuln(), smtpSettings(), domain.DefaultEmailTemplate)
	assert.Equal(t, domain.OutcomeFailed, outcome)
	assert.ErrorContains(t, err, "mailbox full")
	assert.Empty(t, ledger.rows)

	outcome, err = d.Dispatch(ctx, sampleCustomer(), sampleVuln(), smtpSettings(), domain.DefaultEmailTemplate)
	assert.NoError(t, err)
	assert.Equal(t, domain.OutcomeSent, outcome)
	assert.Len(t, ledger.rows, 1)
}

func TestDispatch_OAuth2IsUnsupported(t *testing.T) {
	ledger := newMemLedger()
	transport := &MockTransport{}
	d := NewDispatcher(ledger, transport, Config{})

	settings := domain.EmailSettings{
		Method: domain.AuthOAuth2,
		OAuth2: &domain.OAuth2Settings{Provider: "google", ClientID: "id", ClientSecret: "secret"},
	}

	outcome, err := d.Dispatch(context.Background(), sampleCustomer(), sampleVuln(), settings, domain.DefaultEmailTemplate)

	assert.NoError(t, err)
	assert.Equal(t, domain.OutcomeUnsupported, outcome)
	assert.Empty(t, ledger.rows)
	transport.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestDispatch_LedgerUpdateFailureStillReportsSent(t *testing.T) {
	ledger := newMemLedger()
	ledger.markErr = errors.New("database is locked")
	transport := &MockTransport{}
	d := NewDispatcher(ledger, transport, Config{ClaimTTL: time.Hour})
	ctx := context.Background()

	transport.On("Send", mock.Anything, mock.Anything).Return(domain.EmailResult{Success: true}, nil)

	outcome, err := d.Dispatch(ctx, sampleCustomer(), sampleVuln(), smtpSettings(), domain.DefaultEmailTemplate)
	assert.NoError(t, err)
	assert.Equal(t, domain.OutcomeSent, outcome)

	// The pending claim keeps blocking until it goes stale.
	outcome, _ = d.Dispatch(ctx, sampleCustomer(), sampleVuln(), smtpSettings(), domain.DefaultEmailTemplate)
	assert.Equal(t, domain.OutcomeAlreadyNotified, outcome)
	transport.AssertNumberOfCalls(t, "Send", 1)
}

func TestDispatch_TakesOverAbandonedClaim(t *testing.T) {
	ledger := newMemLedger()
	transport := &MockTransport{}
	d := NewDispatcher(ledger, transport, Config{ClaimTTL: 15 * time.Minute})
	ctx := context.Background()

	// A run that died between claiming and sending two days ago.
	claimed, err := ledger.Claim(ctx, &domain.NotificationRecord{
		ID:              "abandoned",
		CustomerID:      sampleCustomer().ID,
		VulnerabilityID: sampleVuln().ID,
		Status:          domain.NotificationPending,
		ClaimedAt:       time.Now().UTC().Add(-48 * time.Hour),
	}, time.Minute)
	require.NoError(t, err)
	require.True(t, claimed)

	transport.On("Send", mock.Anything, mock.Anything).Return(domain.EmailResult{Success: true}, nil)

	outcome, err := d.Dispatch(ctx, sampleCustomer(), sampleVuln(), smtpSettings(), domain.DefaultEmailTemplate)
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeSent, outcome)
	transport.AssertNumberOfCalls(t, "Send", 1)

	require.Len(t, ledger.rows, 1)
	_, stale := ledger.rows["abandoned"]
	assert.False(t, stale)
}

func TestDispatch_FreshClaimBlocksOtherRuns(t *testing.T) {
	ledger := newMemLedger()
	transport := &MockTransport{}
	d := NewDispatcher(ledger, transport, Config{ClaimTTL: 15 * time.Minute})
	ctx := context.Background()

	_, err := ledger.Claim(ctx, &domain.NotificationRecord{
		ID:              "in-flight",
		CustomerID:      sampleCustomer().ID,
		VulnerabilityID: sampleVuln().ID,
		Status:          domain.NotificationPending,
		ClaimedAt:       time.Now().UTC().Add(-time.Minute),
	}, time.Minute)
	require.NoError(t, err)

	outcome, err := d.Dispatch(ctx, sampleCustomer(), sampleVuln(), smtpSettings(), domain.DefaultEmailTemplate)
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeAlreadyNotified, outcome)
	transport.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestDispatchAll_Summary(t *testing.T) {
	ledger := newMemLedger()
	transport := &MockTransport{}
	d := NewDispatcher(ledger, transport, Config{})
	ctx := context.Background()

	good := sampleCustomer()
	bad := domain.Customer{ID: "c-2", CompanyName: "Broken", Email: "broken@example.com", Enabled: true}

	transport.On("Send", mock.Anything, mock.MatchedBy(func(r domain.EmailRequest) bool { return r.To == bad.Email })).
		Return(domain.EmailResult{}, errors.New("rejected"))
	transport.On("Send", mock.Anything, mock.Anything).Return(domain.EmailResult{Success: true}, nil)

	matches := []domain.Match{{Vulnerability: sampleVuln(), Customers: []domain.Customer{good, bad}}}

	sum := d.DispatchAll(ctx, matches, smtpSettings(), domain.DefaultEmailTemplate)
	assert.Equal(t, Summary{Notified: 1, Failed: 1}, sum)

	sum = d.DispatchAll(ctx, matches, smtpSettings(), domain.DefaultEmailTemplate)
	assert.Equal(t, Summary{AlreadyNotified: 1, Failed: 1}, sum)
}
