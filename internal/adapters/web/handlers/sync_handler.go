package handlers

import (
	"net/http"

	"github.com/lcalzada-xor/cveadvisor/internal/core/domain"
	"github.com/lcalzada-xor/cveadvisor/internal/core/ports"
	"github.com/lcalzada-xor/cveadvisor/internal/core/services/advisory"
)

// ScheduleController is the part of the scheduler the admin API drives.
type ScheduleController interface {
	Status() advisory.ScheduleStatus
	SetIntervalHours(hours int) error
}

// SyncHandler exposes the sync trigger, run history and schedule.
type SyncHandler struct {
	Service   ports.SyncService
	Scheduler ScheduleController
}

// NewSyncHandler creates a new SyncHandler
func NewSyncHandler(service ports.SyncService, scheduler ScheduleController) *SyncHandler {
	return &SyncHandler{
		Service:   service,
		Scheduler: scheduler,
	}
}

type failure struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// HandleSync runs one sync with the settings carried in the body. Every
// failure, including a malformed body, is a 500 with success=false.
func (h *SyncHandler) HandleSync(w http.ResponseWriter, r *http.Request) {
	var req domain.SyncRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusInternalServerError, failure{Error: "invalid request body: " + err.Error()})
		return
	}

	res, err := h.Service.Run(r.Context(), domain.TriggerManual, req)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, failure{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":            true,
		"processed":          res.Processed,
		"newVulnerabilities": res.NewVulnerabilities,
	})
}

// HandleHistory returns recent sync runs, newest first.
func (h *SyncHandler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	runs, err := h.Service.History(r.Context(), queryLimit(r, 50, 500))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"runs": runs})
}

func (h *SyncHandler) HandleGetSchedule(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Scheduler.Status())
}

// HandleSetSchedule changes the sync interval; 0 disables scheduled runs.
func (h *SyncHandler) HandleSetSchedule(w http.ResponseWriter, r *http.Request) {
	var body struct {
		IntervalHours *int `json:"intervalHours"`
	}
	if err := decodeJSON(w, r, &body); err != nil || body.IntervalHours == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "intervalHours is required"})
		return
	}
	if err := h.Scheduler.SetIntervalHours(*body.IntervalHours); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.Scheduler.Status())
}
