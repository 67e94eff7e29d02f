package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/lcalzada-xor/cveadvisor/internal/adapters/nvd"
	"github.com/lcalzada-xor/cveadvisor/internal/app"
	"github.com/lcalzada-xor/cveadvisor/internal/config"
	"github.com/lcalzada-xor/cveadvisor/internal/core/domain"
	"github.com/lcalzada-xor/cveadvisor/internal/telemetry"
)

// offlineKey satisfies request validation when records come from files.
const offlineKey = "offline"

func main() {
	feedFiles := flag.String("feed-file", "", "Comma separated NVD API 2.0 JSON files to ingest instead of calling the API")
	cfg := config.Load()

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if cfg.Trace {
		shutdownTracer, err := telemetry.InitTracer(os.Stderr)
		if err != nil {
			slog.Error("Failed to init tracer", "error", err)
		} else {
			defer shutdownTracer(context.Background())
		}
	}

	var opts []app.Option
	if *feedFiles != "" {
		opts = append(opts, app.WithFeed(nvd.NewFileFeed(strings.Split(*feedFiles, ",")...)))
	}

	application, err := app.New(cfg, opts...)
	if err != nil {
		slog.Error("Failed to initialize application", "error", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	req := application.ScheduledRequest()
	if *feedFiles != "" && req.NVDAPIKey == "" {
		req.NVDAPIKey = offlineKey
	}

	slog.Info("=== CVE Sync ===", "db", cfg.DBPath, "window_days", cfg.WindowDays, "feed_files", *feedFiles)
	res, err := application.SyncService.Run(ctx, domain.TriggerCLI, req)
	cancel()
	application.Close()
	if err != nil {
		slog.Error("Sync failed", "error", err)
		os.Exit(1)
	}

	slog.Info("Sync complete",
		"fetched", res.Fetched,
		"new_vulnerabilities", res.NewVulnerabilities,
		"notified", res.Notified,
		"already_notified", res.AlreadyNotified,
		"unsupported", res.Unsupported,
		"failed_records", res.FailedRecords,
		"failed_notifications", res.FailedNotices,
	)
}
