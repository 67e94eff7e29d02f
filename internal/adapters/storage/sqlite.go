package storage

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lcalzada-xor/cveadvisor/internal/core/domain"
	"github.com/lcalzada-xor/cveadvisor/internal/core/ports"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/opentelemetry/tracing"
)

// SQLiteAdapter implements every persistence port on one GORM/SQLite handle.
type SQLiteAdapter struct {
	db *gorm.DB
}

// NewSQLiteAdapter opens the database, enables tracing and migrates schema.
func NewSQLiteAdapter(path string) (*SQLiteAdapter, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	if err := db.Use(tracing.NewPlugin(tracing.WithoutMetrics())); err != nil {
		return nil, fmt.Errorf("enable db tracing: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if isMemory(path) {
		// Every pooled connection to :memory: would be a separate database
		sqlDB.SetMaxOpenConns(1)
	} else if err := db.Exec("PRAGMA journal_mode=WAL").Error; err != nil {
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := db.AutoMigrate(
		&CustomerModel{},
		&MonitoredProductModel{},
		&VulnerabilityModel{},
		&NotificationModel{},
		&SyncRunModel{},
		&AuditLogModel{},
	); err != nil {
		return nil, err
	}

	// Listing indices
	db.Exec("CREATE INDEX IF NOT EXISTS idx_vulnerabilities_published ON vulnerabilities(published_date)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_sync_runs_started ON sync_runs(started_at)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_audit_logs_timestamp ON audit_logs(timestamp)")

	return &SQLiteAdapter{db: db}, nil
}

func isMemory(path string) bool {
	return path == ":memory:" || strings.Contains(path, "mode=memory")
}

func (a *SQLiteAdapter) Close() error {
	sqlDB, err := a.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// notFound maps GORM's sentinel onto the domain one.
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrNotFound
	}
	return err
}

// Ensure interface compliance
var (
	_ ports.VulnerabilityRepository = (*SQLiteAdapter)(nil)
	_ ports.CustomerRepository      = (*SQLiteAdapter)(nil)
	_ ports.NotificationLedger      = (*SQLiteAdapter)(nil)
	_ ports.SyncRunRepository       = (*SQLiteAdapter)(nil)
	_ ports.AuditRepository         = (*SQLiteAdapter)(nil)
)
