package storage

import (
	"context"
	"time"

	"github.com/lcalzada-xor/cveadvisor/internal/core/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Exists only counts delivered rows. Pending claims are left to Claim, which
// knows when one has gone stale.
func (a *SQLiteAdapter) Exists(ctx context.Context, customerID, vulnerabilityID string) (bool, error) {
	var count int64
	err := a.db.WithContext(ctx).Model(&NotificationModel{}).
		Where("customer_id = ? AND vulnerability_id = ? AND status = ?",
			customerID, vulnerabilityID, string(domain.NotificationSent)).
		Count(&count).Error
	return count > 0, err
}

// Claim takes over a stale pending row if there is one, then inserts the new
// claim. The composite unique index decides between concurrent claimers.
func (a *SQLiteAdapter) Claim(ctx context.Context, rec *domain.NotificationRecord, staleAfter time.Duration) (bool, error) {
	m := notificationToModel(*rec)
	cutoff := rec.ClaimedAt.Add(-staleAfter)

	var claimed bool
	err := a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("customer_id = ? AND vulnerability_id = ? AND status = ? AND claimed_at < ?",
			rec.CustomerID, rec.VulnerabilityID, string(domain.NotificationPending), cutoff).
			Delete(&NotificationModel{}).Error
		if err != nil {
			return err
		}

		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "customer_id"}, {Name: "vulnerability_id"}},
			DoNothing: true,
		}).Create(&m)
		if res.Error != nil {
			return res.Error
		}
		claimed = res.RowsAffected == 1
		return nil
	})
	return claimed, err
}

func (a *SQLiteAdapter) MarkSent(ctx context.Context, id string, sentAt time.Time) error {
	res := a.db.WithContext(ctx).Model(&NotificationModel{}).Where("id = ?", id).Updates(map[string]any{
		"status":  string(domain.NotificationSent),
		"sent_at": sentAt,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Release only ever drops pending rows; sent rows are terminal.
func (a *SQLiteAdapter) Release(ctx context.Context, id string) error {
	return a.db.WithContext(ctx).
		Where("id = ? AND status = ?", id, string(domain.NotificationPending)).
		Delete(&NotificationModel{}).Error
}

func (a *SQLiteAdapter) ListNotifications(ctx context.Context, customerID string, limit int) ([]domain.NotificationRecord, error) {
	query := a.db.WithContext(ctx).Model(&NotificationModel{})
	if customerID != "" {
		query = query.Where("customer_id = ?", customerID)
	}
	if limit <= 0 {
		limit = defaultListLimit
	}

	var models []NotificationModel
	if err := query.Order("claimed_at desc").Limit(limit).Find(&models).Error; err != nil {
		return nil, err
	}

	out := make([]domain.NotificationRecord, len(models))
	for i, m := range models {
		out[i] = notificationToDomain(m)
	}
	return out, nil
}
