package handlers

import (
	"net/http"
	"strings"

	"github.com/lcalzada-xor/cveadvisor/internal/core/domain"
	"github.com/lcalzada-xor/cveadvisor/internal/core/ports"
)

// VulnerabilityHandler serves the read-only vulnerability views.
type VulnerabilityHandler struct {
	Repo ports.VulnerabilityRepository
}

// NewVulnerabilityHandler creates a new VulnerabilityHandler
func NewVulnerabilityHandler(repo ports.VulnerabilityRepository) *VulnerabilityHandler {
	return &VulnerabilityHandler{Repo: repo}
}

// HandleList supports ?severity=, ?vendor=, ?product= and ?limit=.
func (h *VulnerabilityHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.VulnerabilityFilter{
		Vendor:  q.Get("vendor"),
		Product: q.Get("product"),
		Limit:   queryLimit(r, 100, 1000),
	}
	if s := q.Get("severity"); s != "" {
		filter.Severity = domain.ParseSeverity(s)
		if filter.Severity == domain.SeverityUnknown && !strings.EqualFold(s, string(domain.SeverityUnknown)) {
			http.Error(w, "Invalid severity", http.StatusBadRequest)
			return
		}
	}

	vulns, err := h.Repo.List(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"vulnerabilities": vulns, "count": len(vulns)})
}

func (h *VulnerabilityHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Repo.Stats(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
