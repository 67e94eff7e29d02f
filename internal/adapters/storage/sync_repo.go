package storage

import (
	"context"

	"github.com/lcalzada-xor/cveadvisor/internal/core/domain"
)

func (a *SQLiteAdapter) SaveSyncRun(ctx context.Context, run domain.SyncRun) error {
	m := syncRunToModel(run)
	return a.db.WithContext(ctx).Create(&m).Error
}

func (a *SQLiteAdapter) ListSyncRuns(ctx context.Context, limit int) ([]domain.SyncRun, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	var models []SyncRunModel
	if err := a.db.WithContext(ctx).Order("started_at desc").Limit(limit).Find(&models).Error; err != nil {
		return nil, err
	}

	runs := make([]domain.SyncRun, len(models))
	for i, m := range models {
		runs[i] = syncRunToDomain(m)
	}
	return runs, nil
}
