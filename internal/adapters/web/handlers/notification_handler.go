package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/lcalzada-xor/cveadvisor/internal/core/ports"
)

// NotificationHandler lists the notification ledger.
type NotificationHandler struct {
	Ledger ports.NotificationLedger
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(ledger ports.NotificationLedger) *NotificationHandler {
	return &NotificationHandler{Ledger: ledger}
}

// HandleList returns ledger rows, optionally for one customer (path {id} or ?customer=).
func (h *NotificationHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	customerID := mux.Vars(r)["id"]
	if customerID == "" {
		customerID = r.URL.Query().Get("customer")
	}

	records, err := h.Ledger.ListNotifications(r.Context(), customerID, queryLimit(r, 100, 1000))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"notifications": records})
}
