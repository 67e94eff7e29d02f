package domain

import (
	"errors"
	"time"
)

// AuditAction represents a type-safe action identifier for the audit log.
type AuditAction string

// System Audit Actions
const (
	ActionSyncRun         AuditAction = "SYNC_RUN"
	ActionCustomerCreate  AuditAction = "CUSTOMER_CREATED"
	ActionCustomerUpdate  AuditAction = "CUSTOMER_UPDATED"
	ActionCustomerEnable  AuditAction = "CUSTOMER_ENABLED"
	ActionCustomerDisable AuditAction = "CUSTOMER_DISABLED"
	ActionProductAdd      AuditAction = "PRODUCT_ADDED"
	ActionProductRemove   AuditAction = "PRODUCT_REMOVED"
	ActionTestEmail       AuditAction = "TEST_EMAIL"
	ActionInfo            AuditAction = "INFO"
)

// Domain Errors
var (
	ErrInvalidAction = errors.New("invalid audit action")
	ErrMissingActor  = errors.New("actor identification is required for auditing")
)

// AuditLog represents a record of an administrative or sync action.
// Persistence-specific metadata lives in the storage adapter.
type AuditLog struct {
	ID        uint        `json:"id"`
	Actor     string      `json:"actor"`
	Action    AuditAction `json:"action"`
	Target    string      `json:"target"` // customer id, CVE id, run id
	Details   string      `json:"details"`
	IPAddress string      `json:"ip_address"`
	Timestamp time.Time   `json:"timestamp"`
}

// NewAuditLog is the designated factory for creating valid AuditLog entities.
func NewAuditLog(actor string, action AuditAction, target, details, ip string) (*AuditLog, error) {
	if actor == "" {
		return nil, ErrMissingActor
	}

	if !isValidAction(action) {
		return nil, ErrInvalidAction
	}

	return &AuditLog{
		Actor:     actor,
		Action:    action,
		Target:    target,
		Details:   details,
		IPAddress: ip,
		Timestamp: time.Now().UTC(),
	}, nil
}

func isValidAction(action AuditAction) bool {
	switch action {
	case ActionSyncRun, ActionCustomerCreate, ActionCustomerUpdate, ActionCustomerEnable,
		ActionCustomerDisable, ActionProductAdd, ActionProductRemove, ActionTestEmail, ActionInfo:
		return true
	}
	return false
}
