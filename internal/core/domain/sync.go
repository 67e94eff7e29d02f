package domain

import "time"

// SyncTrigger records what started a sync run.
type SyncTrigger string

const (
	TriggerManual    SyncTrigger = "manual"
	TriggerScheduled SyncTrigger = "scheduled"
	TriggerCLI       SyncTrigger = "cli"
)

// SyncRequest is the inbound trigger payload. Settings are passed per run.
type SyncRequest struct {
	NVDAPIKey     string         `json:"nvdApiKey"`
	EmailSettings *EmailSettings `json:"emailSettings,omitempty"`
	EmailTemplate *EmailTemplate `json:"emailTemplate,omitempty"`
}

// Validate rejects the run before any I/O when configuration is incomplete.
func (r SyncRequest) Validate() error {
	if r.NVDAPIKey == "" {
		return NewConfigError("NVD API key is required")
	}
	if r.EmailSettings != nil {
		if err := r.EmailSettings.Validate(); err != nil {
			return err
		}
	}
	if r.EmailTemplate != nil {
		if err := r.EmailTemplate.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// SyncResult summarizes one run. Processed and NewVulnerabilities are both the
// number of newly inserted vulnerabilities.
type SyncResult struct {
	Processed          int `json:"processed"`
	NewVulnerabilities int `json:"newVulnerabilities"`
	Fetched            int `json:"fetched"`
	Pages              int `json:"pages"`
	Notified           int `json:"notified"`
	AlreadyNotified    int `json:"alreadyNotified"`
	Unsupported        int `json:"unsupported"`
	FailedRecords      int `json:"failedRecords"`
	FailedNotices      int `json:"failedNotifications"`
}

// SyncRun is the persisted history entry for one orchestrator run.
type SyncRun struct {
	ID           string      `json:"id"`
	Trigger      SyncTrigger `json:"trigger"`
	StartedAt    time.Time   `json:"started_at"`
	FinishedAt   time.Time   `json:"finished_at"`
	Fetched      int         `json:"fetched"`
	Inserted     int         `json:"inserted"`
	Notified     int         `json:"notified"`
	ErrorMessage string      `json:"error_message,omitempty"`
}
