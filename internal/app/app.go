package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/lcalzada-xor/cveadvisor/internal/adapters/mail"
	"github.com/lcalzada-xor/cveadvisor/internal/adapters/nvd"
	"github.com/lcalzada-xor/cveadvisor/internal/adapters/storage"
	webserver "github.com/lcalzada-xor/cveadvisor/internal/adapters/web/server"
	"github.com/lcalzada-xor/cveadvisor/internal/config"
	"github.com/lcalzada-xor/cveadvisor/internal/core/domain"
	"github.com/lcalzada-xor/cveadvisor/internal/core/ports"
	"github.com/lcalzada-xor/cveadvisor/internal/core/services/advisory"
	"github.com/lcalzada-xor/cveadvisor/internal/core/services/audit"
	"github.com/lcalzada-xor/cveadvisor/internal/core/services/ingest"
	"github.com/lcalzada-xor/cveadvisor/internal/core/services/matcher"
	"github.com/lcalzada-xor/cveadvisor/internal/core/services/notify"
	"github.com/lcalzada-xor/cveadvisor/internal/telemetry"
)

// Application holds the core components of the application.
// It acts as the Facade for the entire system, orchestrating services and infrastructure.
type Application struct {
	Config          *config.Config
	Store           *storage.SQLiteAdapter
	Feed            ports.FeedClient
	Mail            ports.MailTransport
	AuditService    *audit.AuditService
	CustomerService *advisory.CustomerService
	SyncService     *advisory.SyncService
	Scheduler       *advisory.Scheduler
	WebServer       *webserver.Server

	settings config.RunSettings
}

// Option overrides a collaborator chosen by bootstrap.
type Option func(*Application)

// WithFeed replaces the NVD client, e.g. with a file-backed feed.
func WithFeed(feed ports.FeedClient) Option {
	return func(app *Application) { app.Feed = feed }
}

// WithMailTransport replaces the mail relay.
func WithMailTransport(t ports.MailTransport) Option {
	return func(app *Application) { app.Mail = t }
}

// New creates a new Application instance and bootstraps its components.
func New(cfg *config.Config, opts ...Option) (*Application, error) {
	app := &Application{
		Config: cfg,
	}
	for _, opt := range opts {
		opt(app)
	}

	if err := app.bootstrap(); err != nil {
		return nil, fmt.Errorf("application bootstrap failed: %w", err)
	}

	return app, nil
}

// bootstrap orchestrates the initialization sequence.
func (app *Application) bootstrap() error {
	// 1. Foundation & Infrastructure
	telemetry.InitMetrics()

	store, err := app.initStorage()
	if err != nil {
		return err
	}
	app.Store = store

	settings, err := config.LoadRunSettings(app.Config.SettingsPath)
	if err != nil {
		store.Close()
		return err
	}
	app.settings = settings

	// 2. Outbound adapters
	app.initAdapters()

	// 3. Domain Services
	app.AuditService = audit.NewAuditService(store)
	app.CustomerService = advisory.NewCustomerService(store, app.AuditService)

	dispatcher := notify.NewDispatcher(store, app.Mail, notify.Config{SendTimeout: app.Config.SendTimeout})
	app.SyncService = advisory.NewSyncService(
		app.Feed,
		ingest.NewIngestor(store),
		matcher.NewMatcher(store),
		dispatcher,
		store,
		app.AuditService,
		advisory.SyncConfig{
			WindowDays:    app.Config.WindowDays,
			PageSize:      app.Config.PageSize,
			FetchTimeout:  app.Config.FetchTimeout,
			EmailSettings: settings.EmailSettings,
			EmailTemplate: settings.EmailTemplate,
		},
	)

	app.Scheduler, err = advisory.NewScheduler(app.SyncService, app.ScheduledRequest(), app.Config.SyncIntervalHours)
	if err != nil {
		store.Close()
		return err
	}

	// 4. Servers
	app.WebServer = webserver.NewServer(app.Config.Addr, webserver.Deps{
		Sync:            app.SyncService,
		Scheduler:       app.Scheduler,
		Customers:       app.CustomerService,
		Vulnerabilities: store,
		Ledger:          store,
		Mail:            app.Mail,
		Audit:           app.AuditService,
	})

	return nil
}

func (app *Application) initStorage() (*storage.SQLiteAdapter, error) {
	if dir := filepath.Dir(app.Config.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create DB directory: %w", err)
		}
	}

	store, err := storage.NewSQLiteAdapter(app.Config.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to init system storage: %w", err)
	}
	return store, nil
}

func (app *Application) initAdapters() {
	if app.Feed == nil {
		var opts []nvd.Option
		if app.Config.NVDBaseURL != "" {
			opts = append(opts, nvd.WithBaseURL(app.Config.NVDBaseURL))
		}
		app.Feed = nvd.NewClient(opts...)
	}

	if app.Mail == nil {
		app.Mail = mail.NewRelay(mail.Config{
			ResendAPIKey: app.Config.ResendAPIKey,
			Simulate:     app.Config.MailSimulate,
		})
	}
}

// ScheduledRequest is the request used by scheduled and CLI runs. Email
// settings and template come from the settings file via SyncConfig.
func (app *Application) ScheduledRequest() domain.SyncRequest {
	return domain.SyncRequest{NVDAPIKey: app.Config.NVDAPIKey}
}

// Run starts the scheduler and serves HTTP until ctx is cancelled.
func (app *Application) Run(ctx context.Context) error {
	slog.Info("Starting CVEAdvisor components...")

	if app.Scheduler.Status().Enabled {
		if app.Config.NVDAPIKey == "" {
			slog.Warn("Scheduled sync enabled without an NVD API key; runs will fail until configured")
		}
		if app.settings.EmailSettings == nil {
			slog.Warn("Scheduled sync enabled without email settings; advisories will not be sent")
		}
	}
	app.Scheduler.Start(ctx)

	errChan := make(chan error, 1)
	go func() {
		if err := app.WebServer.Run(ctx); err != nil {
			errChan <- fmt.Errorf("web server error: %w", err)
		}
	}()

	slog.Info("CVEAdvisor Ready. Press Ctrl+C to terminate.")

	select {
	case <-ctx.Done():
		slog.Info("Termination signal received")
		return nil
	case err := <-errChan:
		return err
	}
}

// Close releases the storage connection.
func (app *Application) Close() error {
	if app.Store == nil {
		return nil
	}
	return app.Store.Close()
}
