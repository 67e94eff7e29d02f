package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/lcalzada-xor/cveadvisor/internal/core/domain"
	"github.com/lcalzada-xor/cveadvisor/internal/core/ports"
	"github.com/lcalzada-xor/cveadvisor/internal/core/services/normalize"
	"github.com/lcalzada-xor/cveadvisor/internal/telemetry"
)

// PageResult reports what happened to one page of feed records.
// Inserted keeps feed order and is handed straight to the matcher.
type PageResult struct {
	Inserted []domain.Vulnerability
	Skipped  int
	Failed   int
}

// Ingestor normalizes feed records and persists the ones not seen before.
type Ingestor struct {
	repo ports.VulnerabilityRepository
	now  func() time.Time
}

func NewIngestor(repo ports.VulnerabilityRepository) *Ingestor {
	return &Ingestor{
		repo: repo,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// IngestPage handles records sequentially in feed order. A failure on one
// record is logged and counted; it never aborts the page.
func (i *Ingestor) IngestPage(ctx context.Context, records []domain.FeedRecord) PageResult {
	var res PageResult
	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			// Remaining records are picked up by the next run
			slog.Warn("Ingestion interrupted", "remaining", len(records)-len(res.Inserted)-res.Skipped-res.Failed, "error", err)
			break
		}

		v, inserted, err := i.ingest(ctx, rec)
		switch {
		case err != nil:
			res.Failed++
			telemetry.RecordsIngested.WithLabelValues("failed").Inc()
			slog.Error("Failed to ingest record", "cve_id", rec.CVE.ID, "error", err)
		case inserted:
			res.Inserted = append(res.Inserted, v)
			telemetry.RecordsIngested.WithLabelValues("inserted").Inc()
			slog.Debug("Ingested vulnerability", "cve_id", v.CVEID, "severity", v.Severity)
		default:
			res.Skipped++
			telemetry.RecordsIngested.WithLabelValues("skipped").Inc()
		}
	}
	return res
}

func (i *Ingestor) ingest(ctx context.Context, rec domain.FeedRecord) (domain.Vulnerability, bool, error) {
	v := normalize.Record(rec)
	if !domain.IsValidCVEID(v.CVEID) {
		return v, false, domain.NewValidationError(fmt.Sprintf("malformed CVE id %q", v.CVEID))
	}

	// Cheap read first; the steady state is "already ingested".
	if _, err := i.repo.GetByCVEID(ctx, v.CVEID); err == nil {
		return v, false, nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return v, false, err
	}

	v.ID = uuid.NewString()
	v.IngestedAt = i.now()

	// The unique CVE id constraint decides between concurrent runs.
	inserted, err := i.repo.InsertIfAbsent(ctx, &v)
	if err != nil {
		return v, false, err
	}
	return v, inserted, nil
}
