package nvd

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/lcalzada-xor/cveadvisor/internal/core/domain"
	"github.com/lcalzada-xor/cveadvisor/internal/core/ports"
)

// FileFeed serves records from saved NVD API 2.0 responses, for offline
// backfills and air-gapped installs. The publish window in the query is not
// applied: every record in the files is served, paginated in file order.
type FileFeed struct {
	paths []string

	once    sync.Once
	records []domain.FeedRecord
	loadErr error
}

func NewFileFeed(paths ...string) *FileFeed {
	return &FileFeed{paths: paths}
}

func (f *FileFeed) load() {
	for _, path := range f.paths {
		data, err := os.ReadFile(path)
		if err != nil {
			f.loadErr = fmt.Errorf("failed to read feed file: %w", err)
			return
		}

		var page domain.FeedPage
		if err := json.Unmarshal(data, &page); err != nil {
			f.loadErr = fmt.Errorf("failed to parse feed file %s: %w", path, err)
			return
		}
		f.records = append(f.records, page.Vulnerabilities...)
		slog.Info("Loaded feed file", "path", path, "records", len(page.Vulnerabilities))
	}
}

func (f *FileFeed) FetchPage(ctx context.Context, q domain.FeedQuery) (*domain.FeedPage, error) {
	f.once.Do(f.load)
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	total := len(f.records)
	start := min(max(q.StartIndex, 0), total)
	end := total
	if q.PageSize > 0 {
		end = min(start+q.PageSize, total)
	}

	return &domain.FeedPage{
		ResultsPerPage:  end - start,
		StartIndex:      start,
		TotalResults:    total,
		Vulnerabilities: f.records[start:end],
	}, nil
}

var _ ports.FeedClient = (*FileFeed)(nil)
