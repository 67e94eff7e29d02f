package storage

import (
	"context"

	"github.com/lcalzada-xor/cveadvisor/internal/core/domain"
	"gorm.io/gorm/clause"
)

const defaultListLimit = 100

func (a *SQLiteAdapter) GetByCVEID(ctx context.Context, cveID string) (*domain.Vulnerability, error) {
	var m VulnerabilityModel
	if err := a.db.WithContext(ctx).First(&m, "cve_id = ?", cveID).Error; err != nil {
		return nil, notFound(err)
	}
	v := vulnerabilityToDomain(m)
	return &v, nil
}

// InsertIfAbsent relies on the unique cve_id index: a conflicting insert
// affects no rows and is reported as not inserted.
func (a *SQLiteAdapter) InsertIfAbsent(ctx context.Context, v *domain.Vulnerability) (bool, error) {
	m := vulnerabilityToModel(*v)
	res := a.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "cve_id"}},
		DoNothing: true,
	}).Create(&m)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (a *SQLiteAdapter) List(ctx context.Context, filter domain.VulnerabilityFilter) ([]domain.Vulnerability, error) {
	query := a.db.WithContext(ctx).Model(&VulnerabilityModel{})

	if filter.Severity != "" {
		query = query.Where("severity = ?", string(filter.Severity))
	}
	if filter.Vendor != "" {
		query = query.Where("vendor LIKE ?", "%"+filter.Vendor+"%")
	}
	if filter.Product != "" {
		query = query.Where("product LIKE ?", "%"+filter.Product+"%")
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}

	var models []VulnerabilityModel
	if err := query.Order("published_date desc, cve_id desc").Limit(limit).Find(&models).Error; err != nil {
		return nil, err
	}

	out := make([]domain.Vulnerability, len(models))
	for i, m := range models {
		out[i] = vulnerabilityToDomain(m)
	}
	return out, nil
}

func (a *SQLiteAdapter) Stats(ctx context.Context) (domain.VulnerabilityStats, error) {
	var rows []struct {
		Severity string
		Count    int
	}
	err := a.db.WithContext(ctx).Model(&VulnerabilityModel{}).
		Select("severity, COUNT(*) AS count").
		Group("severity").
		Scan(&rows).Error
	if err != nil {
		return domain.VulnerabilityStats{}, err
	}

	stats := domain.VulnerabilityStats{BySeverity: make(map[domain.Severity]int)}
	for _, r := range rows {
		stats.BySeverity[domain.ParseSeverity(r.Severity)] += r.Count
		stats.Total += r.Count
	}
	return stats, nil
}
