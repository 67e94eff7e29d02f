package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/lcalzada-xor/cveadvisor/internal/adapters/web/handlers"
	"github.com/lcalzada-xor/cveadvisor/internal/core/ports"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Deps are the services exposed over HTTP.
type Deps struct {
	Sync            ports.SyncService
	Scheduler       handlers.ScheduleController
	Customers       ports.CustomerService
	Vulnerabilities ports.VulnerabilityRepository
	Ledger          ports.NotificationLedger
	Mail            ports.MailTransport
	Audit           ports.AuditService
}

// Server handles the sync trigger, mail relay and admin API.
type Server struct {
	Addr string

	SyncHandler         *handlers.SyncHandler
	EmailHandler        *handlers.EmailHandler
	CustomerHandler     *handlers.CustomerHandler
	VulnHandler         *handlers.VulnerabilityHandler
	NotificationHandler *handlers.NotificationHandler
	AuditHandler        *handlers.AuditHandler
	srv                 *http.Server
}

// NewServer creates a new web server.
func NewServer(addr string, deps Deps) *Server {
	return &Server{
		Addr:                addr,
		SyncHandler:         handlers.NewSyncHandler(deps.Sync, deps.Scheduler),
		EmailHandler:        handlers.NewEmailHandler(deps.Mail, deps.Audit),
		CustomerHandler:     handlers.NewCustomerHandler(deps.Customers),
		VulnHandler:         handlers.NewVulnerabilityHandler(deps.Vulnerabilities),
		NotificationHandler: handlers.NewNotificationHandler(deps.Ledger),
		AuditHandler:        handlers.NewAuditHandler(deps.Audit),
	}
}

// Handler returns the routed handler instrumented with OpenTelemetry.
func (s *Server) Handler() http.Handler {
	return otelhttp.NewHandler(SetupRoutes(s), "cveadvisor-server")
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	s.srv = &http.Server{
		Addr:              s.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		slog.Info("Web server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Web server shutdown error", "error", err)
		}
	}()

	slog.Info("Web server listening", "addr", s.Addr)
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
