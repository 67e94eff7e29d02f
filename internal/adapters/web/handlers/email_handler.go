package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/lcalzada-xor/cveadvisor/internal/core/domain"
	"github.com/lcalzada-xor/cveadvisor/internal/core/ports"
	"github.com/lcalzada-xor/cveadvisor/internal/core/services/notify"
)

// EmailHandler exposes the mail dispatch boundary and the test email.
type EmailHandler struct {
	Transport ports.MailTransport
	Audit     ports.AuditService
}

// NewEmailHandler creates a new EmailHandler
func NewEmailHandler(transport ports.MailTransport, audit ports.AuditService) *EmailHandler {
	return &EmailHandler{
		Transport: transport,
		Audit:     audit,
	}
}

// HandleSendEmail relays one message. Errors are a 500 carrying the
// unsuccessful result.
func (h *EmailHandler) HandleSendEmail(w http.ResponseWriter, r *http.Request) {
	var req domain.EmailRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusInternalServerError, failure{Error: "invalid request body: " + err.Error()})
		return
	}
	if req.IsTest {
		slog.Info("Test email requested", "to", req.To)
	}

	res, err := h.Transport.Send(r.Context(), req)
	if err != nil {
		slog.Error("Email send failed", "to", req.To, "error", err)
		writeJSON(w, http.StatusInternalServerError, res)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type testEmailRequest struct {
	To            string                `json:"to"`
	EmailSettings *domain.EmailSettings `json:"emailSettings"`
	EmailTemplate *domain.EmailTemplate `json:"emailTemplate,omitempty"`
}

// HandleTestEmail renders the template against a sample advisory and sends it
// with the supplied settings.
func (h *EmailHandler) HandleTestEmail(w http.ResponseWriter, r *http.Request) {
	var body testEmailRequest
	if err := decodeJSON(w, r, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, failure{Error: "invalid request body"})
		return
	}
	if body.EmailSettings == nil {
		writeJSON(w, http.StatusBadRequest, failure{Error: "Missing email settings"})
		return
	}
	if err := body.EmailSettings.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, failure{Error: err.Error()})
		return
	}
	if body.EmailSettings.Method == domain.AuthOAuth2 {
		writeJSON(w, http.StatusNotImplemented, failure{Error: "OAuth2 email delivery is not supported"})
		return
	}

	tpl := domain.DefaultEmailTemplate
	if body.EmailTemplate != nil {
		if err := body.EmailTemplate.Validate(); err != nil {
			writeJSON(w, http.StatusBadRequest, failure{Error: err.Error()})
			return
		}
		tpl = *body.EmailTemplate
	}

	req := notify.TestMessage(body.To, *body.EmailSettings, tpl, h.Transport.RequiresMarkup())
	res, err := h.Transport.Send(r.Context(), req)

	status := "sent"
	if err != nil {
		status = "failed: " + err.Error()
	}
	if h.Audit != nil {
		if aerr := h.Audit.Log(context.WithoutCancel(r.Context()), domain.ActionTestEmail, body.To, status); aerr != nil {
			slog.Warn("Failed to audit test email", "error", aerr)
		}
	}

	if err != nil {
		writeJSON(w, http.StatusInternalServerError, res)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
