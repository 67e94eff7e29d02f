package advisory

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/lcalzada-xor/cveadvisor/internal/core/domain"
	"github.com/lcalzada-xor/cveadvisor/internal/core/ports"
	"github.com/lcalzada-xor/cveadvisor/internal/core/services/ingest"
	"github.com/lcalzada-xor/cveadvisor/internal/core/services/matcher"
	"github.com/lcalzada-xor/cveadvisor/internal/core/services/notify"
	"github.com/lcalzada-xor/cveadvisor/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	DefaultWindowDays   = 30
	DefaultPageSize     = 100
	MaxPageSize         = 2000
	DefaultFetchTimeout = 60 * time.Second
)

// SyncConfig holds the orchestrator knobs. Fallback settings and template are
// used when a run request does not carry its own.
type SyncConfig struct {
	WindowDays    int
	PageSize      int
	FetchTimeout  time.Duration
	EmailSettings *domain.EmailSettings
	EmailTemplate *domain.EmailTemplate
}

// SyncService runs fetch -> ingest -> match -> notify. Steps within a run are
// sequential; concurrent runs are safe because every dedupe decision is made
// by a uniqueness constraint in storage.
type SyncService struct {
	feed       ports.FeedClient
	ingestor   *ingest.Ingestor
	matcher    *matcher.Matcher
	dispatcher *notify.Dispatcher
	runs       ports.SyncRunRepository
	audit      ports.AuditService
	cfg        SyncConfig
	now        func() time.Time
}

func NewSyncService(feed ports.FeedClient, ingestor *ingest.Ingestor, m *matcher.Matcher,
	dispatcher *notify.Dispatcher, runs ports.SyncRunRepository, audit ports.AuditService, cfg SyncConfig) *SyncService {
	if cfg.WindowDays <= 0 {
		cfg.WindowDays = DefaultWindowDays
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	if cfg.PageSize > MaxPageSize {
		cfg.PageSize = MaxPageSize
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = DefaultFetchTimeout
	}
	return &SyncService{
		feed:       feed,
		ingestor:   ingestor,
		matcher:    m,
		dispatcher: dispatcher,
		runs:       runs,
		audit:      audit,
		cfg:        cfg,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Run executes one sync. Configuration errors are returned before any I/O.
// A fetch failure aborts the run; per-record and per-notification failures
// are logged and counted only. Without email settings the run still ingests
// but nobody is notified.
func (s *SyncService) Run(ctx context.Context, trigger domain.SyncTrigger, req domain.SyncRequest) (domain.SyncResult, error) {
	var result domain.SyncResult

	if err := req.Validate(); err != nil {
		return result, err
	}
	settings := req.EmailSettings
	if settings == nil {
		settings = s.cfg.EmailSettings
	}
	if settings != nil {
		if err := settings.Validate(); err != nil {
			return result, err
		}
	}
	tpl := s.template(req)

	ctx, span := telemetry.Tracer().Start(ctx, "sync.run")
	defer span.End()
	span.SetAttributes(attribute.String("sync.trigger", string(trigger)))

	run := domain.SyncRun{ID: uuid.NewString(), Trigger: trigger, StartedAt: s.now()}
	slog.Info("Sync run started", "run_id", run.ID, "trigger", trigger)
	if settings == nil {
		slog.Warn("No email settings configured, new vulnerabilities will be stored without notifications",
			"run_id", run.ID)
	}

	end := run.StartedAt
	query := domain.FeedQuery{
		APIKey:   req.NVDAPIKey,
		PubStart: end.AddDate(0, 0, -s.cfg.WindowDays),
		PubEnd:   end,
		PageSize: s.cfg.PageSize,
	}

	err := s.walk(ctx, query, settings, tpl, &result)

	run.FinishedAt = s.now()
	run.Fetched = result.Fetched
	run.Inserted = result.NewVulnerabilities
	run.Notified = result.Notified
	status := "success"
	if err != nil {
		status = "error"
		run.ErrorMessage = err.Error()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.SetAttributes(
		attribute.Int("sync.fetched", result.Fetched),
		attribute.Int("sync.inserted", result.NewVulnerabilities),
		attribute.Int("sync.notified", result.Notified),
	)
	telemetry.SyncRuns.WithLabelValues(string(trigger), status).Inc()
	telemetry.SyncDuration.Observe(run.FinishedAt.Sub(run.StartedAt).Seconds())

	s.record(ctx, run)

	if err != nil {
		slog.Error("Sync run failed", "run_id", run.ID, "error", err)
		return domain.SyncResult{}, err
	}
	slog.Info("Sync run finished", "run_id", run.ID,
		"fetched", result.Fetched, "new", result.NewVulnerabilities, "notified", result.Notified,
		"failed_records", result.FailedRecords, "failed_notifications", result.FailedNotices)
	return result, nil
}

// walk pages through the window. Each page is matched and notified before the
// next is fetched, so records persisted before a later fetch error are not
// stranded without notifications. A nil settings skips matching entirely.
func (s *SyncService) walk(ctx context.Context, q domain.FeedQuery, settings *domain.EmailSettings,
	tpl domain.EmailTemplate, result *domain.SyncResult) error {

	for {
		page, err := s.fetch(ctx, q)
		if err != nil {
			return err
		}
		result.Pages++
		result.Fetched += len(page.Vulnerabilities)

		pr := s.ingestor.IngestPage(ctx, page.Vulnerabilities)
		result.NewVulnerabilities += len(pr.Inserted)
		result.Processed = result.NewVulnerabilities
		result.FailedRecords += pr.Failed

		if len(pr.Inserted) > 0 && settings != nil {
			matches, err := s.matcher.Match(ctx, pr.Inserted)
			if err != nil {
				// Counted as per-notification failures; the ingested rows stay.
				slog.Error("Customer matching failed", "error", err)
				result.FailedNotices += len(pr.Inserted)
			} else {
				sum := s.dispatcher.DispatchAll(ctx, matches, *settings, tpl)
				result.Notified += sum.Notified
				result.AlreadyNotified += sum.AlreadyNotified
				result.Unsupported += sum.Unsupported
				result.FailedNotices += sum.Failed
			}
		}

		q.StartIndex += len(page.Vulnerabilities)
		if len(page.Vulnerabilities) == 0 || q.StartIndex >= page.TotalResults {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}
}

func (s *SyncService) fetch(ctx context.Context, q domain.FeedQuery) (*domain.FeedPage, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.FetchTimeout)
	defer cancel()

	ctx, span := telemetry.Tracer().Start(ctx, "sync.fetch_page")
	defer span.End()
	span.SetAttributes(attribute.Int("feed.start_index", q.StartIndex))

	page, err := s.feed.FetchPage(ctx, q)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("fetch feed page at %d: %w", q.StartIndex, err)
	}
	return page, nil
}

func (s *SyncService) template(req domain.SyncRequest) domain.EmailTemplate {
	if req.EmailTemplate != nil {
		return *req.EmailTemplate
	}
	if s.cfg.EmailTemplate != nil {
		return *s.cfg.EmailTemplate
	}
	return domain.DefaultEmailTemplate
}

// record persists history and audit entries; failures here never fail the run.
func (s *SyncService) record(ctx context.Context, run domain.SyncRun) {
	ctx = context.WithoutCancel(ctx)
	if s.runs != nil {
		if err := s.runs.SaveSyncRun(ctx, run); err != nil {
			slog.Error("Failed to save sync run", "run_id", run.ID, "error", err)
		}
	}
	if s.audit != nil {
		details := fmt.Sprintf("trigger=%s fetched=%d inserted=%d notified=%d", run.Trigger, run.Fetched, run.Inserted, run.Notified)
		if run.ErrorMessage != "" {
			details += " error=" + run.ErrorMessage
		}
		if err := s.audit.Log(ctx, domain.ActionSyncRun, run.ID, details); err != nil {
			slog.Warn("Failed to audit sync run", "run_id", run.ID, "error", err)
		}
	}
}

// History returns the most recent runs first.
func (s *SyncService) History(ctx context.Context, limit int) ([]domain.SyncRun, error) {
	return s.runs.ListSyncRuns(ctx, limit)
}
