package storage

import "time"

// CustomerModel is the GORM model for customers.
type CustomerModel struct {
	ID          string `gorm:"primaryKey"`
	CompanyName string `gorm:"not null"`
	Email       string `gorm:"index;not null"`
	Enabled     bool   `gorm:"not null"`
	CreatedAt   time.Time
	Products    []MonitoredProductModel `gorm:"foreignKey:CustomerID;constraint:OnDelete:CASCADE"`
}

func (CustomerModel) TableName() string { return "customers" }

// MonitoredProductModel is the GORM model for monitored vendor/product pairs.
type MonitoredProductModel struct {
	ID          string `gorm:"primaryKey"`
	CustomerID  string `gorm:"index;not null"`
	VendorName  string `gorm:"not null"`
	ProductName string `gorm:"not null"`
	CreatedAt   time.Time
}

func (MonitoredProductModel) TableName() string { return "monitored_products" }

// VulnerabilityModel is the GORM model for ingested vulnerabilities.
// The unique CVE id index is what makes concurrent ingestion safe.
type VulnerabilityModel struct {
	ID            string   `gorm:"primaryKey"`
	CVEID         string   `gorm:"column:cve_id;uniqueIndex;not null"`
	Description   string   `gorm:"size:1000"`
	Severity      string   `gorm:"index"`
	CVSSScore     *float64 `gorm:"column:cvss_score"`
	Vendor        string
	Product       string
	PublishedDate string
	LastModified  string
	IngestedAt    time.Time
}

func (VulnerabilityModel) TableName() string { return "vulnerabilities" }

// NotificationModel is the ledger row. The composite unique index enforces at
// most one row per (customer, vulnerability).
type NotificationModel struct {
	ID              string `gorm:"primaryKey"`
	CustomerID      string `gorm:"uniqueIndex:idx_notification_pair;not null"`
	VulnerabilityID string `gorm:"uniqueIndex:idx_notification_pair;not null"`
	CVEID           string `gorm:"column:cve_id"`
	Status          string `gorm:"size:16;not null"`
	ClaimedAt       time.Time
	SentAt          *time.Time
}

func (NotificationModel) TableName() string { return "vulnerability_notifications" }

// SyncRunModel is the GORM model for run history.
type SyncRunModel struct {
	ID           string `gorm:"primaryKey"`
	Trigger      string `gorm:"size:16"`
	StartedAt    time.Time
	FinishedAt   time.Time
	Fetched      int
	Inserted     int
	Notified     int
	ErrorMessage string
}

func (SyncRunModel) TableName() string { return "sync_runs" }

// AuditLogModel is the GORM model for audit entries.
type AuditLogModel struct {
	ID        uint   `gorm:"primaryKey"`
	Actor     string `gorm:"index"`
	Action    string `gorm:"index"`
	Target    string
	Details   string
	IPAddress string
	Timestamp time.Time
}

func (AuditLogModel) TableName() string { return "audit_logs" }
