package storage

import (
	"context"

	"github.com/lcalzada-xor/cveadvisor/internal/core/domain"
)

func (a *SQLiteAdapter) SaveAuditLog(ctx context.Context, log domain.AuditLog) error {
	m := auditToModel(log)
	return a.db.WithContext(ctx).Create(&m).Error
}

func (a *SQLiteAdapter) ListAuditLogs(ctx context.Context, limit int) ([]domain.AuditLog, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	var models []AuditLogModel
	if err := a.db.WithContext(ctx).Order("timestamp desc").Limit(limit).Find(&models).Error; err != nil {
		return nil, err
	}

	logs := make([]domain.AuditLog, len(models))
	for i, m := range models {
		logs[i] = auditToDomain(m)
	}
	return logs, nil
}
