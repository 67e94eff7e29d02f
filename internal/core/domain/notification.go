package domain

import "time"

// NotificationStatus tracks a ledger row through Unnotified -> Notified.
// A pending row is a claim held while the mail transport is called.
type NotificationStatus string

const (
	NotificationPending NotificationStatus = "pending"
	NotificationSent    NotificationStatus = "sent"
)

// NotificationRecord is one ledger entry; at most one exists per
// (customer, vulnerability) pair.
type NotificationRecord struct {
	ID              string             `json:"id"`
	CustomerID      string             `json:"customer_id"`
	VulnerabilityID string             `json:"vulnerability_id"`
	CVEID           string             `json:"cve_id"`
	Status          NotificationStatus `json:"status"`
	ClaimedAt       time.Time          `json:"claimed_at"`
	SentAt          *time.Time         `json:"sent_at,omitempty"`
}

// DeliveryOutcome is the result of dispatching one (customer, vulnerability) pair.
type DeliveryOutcome string

const (
	OutcomeSent            DeliveryOutcome = "sent"
	OutcomeAlreadyNotified DeliveryOutcome = "already_notified"
	OutcomeUnsupported     DeliveryOutcome = "unsupported"
	OutcomeFailed          DeliveryOutcome = "failed"
)

// Match pairs a newly ingested vulnerability with the customers it affects.
type Match struct {
	Vulnerability Vulnerability
	Customers     []Customer
}
