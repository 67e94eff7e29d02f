package server

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/lcalzada-xor/cveadvisor/internal/adapters/web/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func SetupRoutes(s *Server) http.Handler {
	r := mux.NewRouter()
	r.Use(middleware.AuditActor)

	// Rate limiters
	syncLimiter := middleware.NewRateLimiter(6, 1*time.Minute)  // a run walks the whole feed window
	mailLimiter := middleware.NewRateLimiter(30, 1*time.Minute) // 30 messages per minute per client
	syncRL := middleware.RateLimitMiddleware(syncLimiter)
	mailRL := middleware.RateLimitMiddleware(mailLimiter)

	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	// Invocation endpoints kept at their function paths
	r.Handle("/functions/sync-nvd", syncRL(http.HandlerFunc(s.SyncHandler.HandleSync))).Methods(http.MethodPost)
	r.Handle("/functions/send-email", mailRL(http.HandlerFunc(s.EmailHandler.HandleSendEmail))).Methods(http.MethodPost)

	api := r.PathPrefix("/api").Subrouter()

	// Sync
	api.Handle("/sync", syncRL(http.HandlerFunc(s.SyncHandler.HandleSync))).Methods(http.MethodPost)
	api.HandleFunc("/sync/runs", s.SyncHandler.HandleHistory).Methods(http.MethodGet)
	api.HandleFunc("/sync/schedule", s.SyncHandler.HandleGetSchedule).Methods(http.MethodGet)
	api.HandleFunc("/sync/schedule", s.SyncHandler.HandleSetSchedule).Methods(http.MethodPut)

	// Mail
	api.Handle("/send-email", mailRL(http.HandlerFunc(s.EmailHandler.HandleSendEmail))).Methods(http.MethodPost)
	api.Handle("/email/test", mailRL(http.HandlerFunc(s.EmailHandler.HandleTestEmail))).Methods(http.MethodPost)

	// Customers and monitored products
	api.HandleFunc("/customers", s.CustomerHandler.HandleList).Methods(http.MethodGet)
	api.HandleFunc("/customers", s.CustomerHandler.HandleCreate).Methods(http.MethodPost)
	api.HandleFunc("/customers/{id}", s.CustomerHandler.HandleGet).Methods(http.MethodGet)
	api.HandleFunc("/customers/{id}", s.CustomerHandler.HandleUpdate).Methods(http.MethodPut)
	api.HandleFunc("/customers/{id}/enabled", s.CustomerHandler.HandleSetEnabled).Methods(http.MethodPut)
	api.HandleFunc("/customers/{id}/products", s.CustomerHandler.HandleAddProduct).Methods(http.MethodPost)
	api.HandleFunc("/customers/{id}/products/{productId}", s.CustomerHandler.HandleRemoveProduct).Methods(http.MethodDelete)
	api.HandleFunc("/customers/{id}/notifications", s.NotificationHandler.HandleList).Methods(http.MethodGet)

	// Vulnerabilities and ledger
	api.HandleFunc("/vulnerabilities", s.VulnHandler.HandleList).Methods(http.MethodGet)
	api.HandleFunc("/vulnerabilities/stats", s.VulnHandler.HandleStats).Methods(http.MethodGet)
	api.HandleFunc("/notifications", s.NotificationHandler.HandleList).Methods(http.MethodGet)

	// Audit Logs
	api.HandleFunc("/audit-logs", s.AuditHandler.HandleGetLogs).Methods(http.MethodGet)

	// CORS wraps the router so preflights never hit method matching.
	return middleware.CORS(r)
}
