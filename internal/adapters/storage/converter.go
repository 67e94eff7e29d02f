package storage

import (
	"github.com/lcalzada-xor/cveadvisor/internal/core/domain"
)

func customerToModel(c domain.Customer) CustomerModel {
	m := CustomerModel{
		ID:          c.ID,
		CompanyName: c.CompanyName,
		Email:       c.Email,
		Enabled:     c.Enabled,
		CreatedAt:   c.CreatedAt,
	}
	for _, p := range c.Products {
		m.Products = append(m.Products, productToModel(p))
	}
	return m
}

func customerToDomain(m CustomerModel) domain.Customer {
	c := domain.Customer{
		ID:          m.ID,
		CompanyName: m.CompanyName,
		Email:       m.Email,
		Enabled:     m.Enabled,
		CreatedAt:   m.CreatedAt,
		Products:    make([]domain.MonitoredProduct, 0, len(m.Products)),
	}
	for _, p := range m.Products {
		c.Products = append(c.Products, productToDomain(p))
	}
	return c
}

func productToModel(p domain.MonitoredProduct) MonitoredProductModel {
	return MonitoredProductModel{
		ID:          p.ID,
		CustomerID:  p.CustomerID,
		VendorName:  p.VendorName,
		ProductName: p.ProductName,
		CreatedAt:   p.CreatedAt,
	}
}

func productToDomain(m MonitoredProductModel) domain.MonitoredProduct {
	return domain.MonitoredProduct{
		ID:          m.ID,
		CustomerID:  m.CustomerID,
		VendorName:  m.VendorName,
		ProductName: m.ProductName,
		CreatedAt:   m.CreatedAt,
	}
}

func vulnerabilityToModel(v domain.Vulnerability) VulnerabilityModel {
	return VulnerabilityModel{
		ID:            v.ID,
		CVEID:         v.CVEID,
		Description:   v.Description,
		Severity:      string(v.Severity),
		CVSSScore:     v.CVSSScore,
		Vendor:        v.Vendor,
		Product:       v.Product,
		PublishedDate: v.PublishedDate,
		LastModified:  v.LastModified,
		IngestedAt:    v.IngestedAt,
	}
}

func vulnerabilityToDomain(m VulnerabilityModel) domain.Vulnerability {
	return domain.Vulnerability{
		ID:            m.ID,
		CVEID:         m.CVEID,
		Description:   m.Description,
		Severity:      domain.ParseSeverity(m.Severity),
		CVSSScore:     m.CVSSScore,
		Vendor:        m.Vendor,
		Product:       m.Product,
		PublishedDate: m.PublishedDate,
		LastModified:  m.LastModified,
		IngestedAt:    m.IngestedAt,
	}
}

func notificationToModel(r domain.NotificationRecord) NotificationModel {
	return NotificationModel{
		ID:              r.ID,
		CustomerID:      r.CustomerID,
		VulnerabilityID: r.VulnerabilityID,
		CVEID:           r.CVEID,
		Status:          string(r.Status),
		ClaimedAt:       r.ClaimedAt,
		SentAt:          r.SentAt,
	}
}

func notificationToDomain(m NotificationModel) domain.NotificationRecord {
	return domain.NotificationRecord{
		ID:              m.ID,
		CustomerID:      m.CustomerID,
		VulnerabilityID: m.VulnerabilityID,
		CVEID:           m.CVEID,
		Status:          domain.NotificationStatus(m.Status),
		ClaimedAt:       m.ClaimedAt,
		SentAt:          m.SentAt,
	}
}

func syncRunToModel(r domain.SyncRun) SyncRunModel {
	return SyncRunModel{
		ID:           r.ID,
		Trigger:      string(r.Trigger),
		StartedAt:    r.StartedAt,
		FinishedAt:   r.FinishedAt,
		Fetched:      r.Fetched,
		Inserted:     r.Inserted,
		Notified:     r.Notified,
		ErrorMessage: r.ErrorMessage,
	}
}

func syncRunToDomain(m SyncRunModel) domain.SyncRun {
	return domain.SyncRun{
		ID:           m.ID,
		Trigger:      domain.SyncTrigger(m.Trigger),
		StartedAt:    m.StartedAt,
		FinishedAt:   m.FinishedAt,
		Fetched:      m.Fetched,
		Inserted:     m.Inserted,
		Notified:     m.Notified,
		ErrorMessage: m.ErrorMessage,
	}
}

func auditToModel(l domain.AuditLog) AuditLogModel {
	return AuditLogModel{
		ID:        l.ID,
		Actor:     l.Actor,
		Action:    string(l.Action),
		Target:    l.Target,
		Details:   l.Details,
		IPAddress: l.IPAddress,
		Timestamp: l.Timestamp,
	}
}

func auditToDomain(m AuditLogModel) domain.AuditLog {
	return domain.AuditLog{
		ID:        m.ID,
		Actor:     m.Actor,
		Action:    domain.AuditAction(m.Action),
		Target:    m.Target,
		Details:   m.Details,
		IPAddress: m.IPAddress,
		Timestamp: m.Timestamp,
	}
}
