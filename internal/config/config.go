package config

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/lcalzada-xor/cveadvisor/internal/core/domain"
)

// Config holds all application configuration.
type Config struct {
	Addr              string
	DBPath            string
	NVDAPIKey         string
	NVDBaseURL        string
	SyncIntervalHours int // 0 disables the scheduler
	WindowDays        int
	PageSize          int
	FetchTimeout      time.Duration
	SendTimeout       time.Duration
	ResendAPIKey      string
	MailSimulate      bool
	SettingsPath      string
	Debug             bool
	Trace             bool
}

// Load parses command line flags and environment variables to populate Config.
// Flags take precedence over environment variables.
func Load() *Config {
	return Parse(flag.CommandLine, os.Args[1:])
}

// Parse registers the shared flags on fs and parses args. Callers may add
// their own flags to fs beforehand.
func Parse(fs *flag.FlagSet, args []string) *Config {
	cfg := &Config{}

	// Defaults and Environment Variables
	cfg.Addr = getEnv("CVEADVISOR_ADDR", ":8080")
	cfg.DBPath = getEnv("CVEADVISOR_DB", "")
	cfg.NVDAPIKey = getEnv("NVD_API_KEY", "")
	cfg.NVDBaseURL = getEnv("NVD_BASE_URL", "")
	cfg.SyncIntervalHours = getEnvInt("CVEADVISOR_SYNC_INTERVAL", 0)
	cfg.WindowDays = getEnvInt("CVEADVISOR_WINDOW_DAYS", 30)
	cfg.PageSize = getEnvInt("CVEADVISOR_PAGE_SIZE", 100)
	cfg.FetchTimeout = getEnvDuration("CVEADVISOR_FETCH_TIMEOUT", 60*time.Second)
	cfg.SendTimeout = getEnvDuration("CVEADVISOR_SEND_TIMEOUT", 30*time.Second)
	cfg.ResendAPIKey = getEnv("RESEND_API_KEY", "")
	cfg.MailSimulate = getEnvBool("CVEADVISOR_MAIL_SIMULATE", false)
	cfg.SettingsPath = getEnv("CVEADVISOR_SETTINGS", "")
	cfg.Trace = getEnvBool("CVEADVISOR_TRACE", false)

	// Command Line Flags (Override Env)
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "HTTP server address")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "Path to SQLite database")
	fs.StringVar(&cfg.NVDAPIKey, "nvd-key", cfg.NVDAPIKey, "NVD API key used by scheduled and CLI runs")
	fs.StringVar(&cfg.NVDBaseURL, "nvd-url", cfg.NVDBaseURL, "NVD CVE API base URL (empty for the public endpoint)")
	fs.IntVar(&cfg.SyncIntervalHours, "sync-interval", cfg.SyncIntervalHours, "Scheduled sync interval in hours (0 disables)")
	fs.IntVar(&cfg.WindowDays, "window", cfg.WindowDays, "Publication window in days")
	fs.IntVar(&cfg.PageSize, "page-size", cfg.PageSize, "Feed page size (max 2000)")
	fs.DurationVar(&cfg.FetchTimeout, "fetch-timeout", cfg.FetchTimeout, "Timeout for a single feed page request")
	fs.DurationVar(&cfg.SendTimeout, "send-timeout", cfg.SendTimeout, "Timeout for a single email send")
	fs.BoolVar(&cfg.MailSimulate, "mail-simulate", cfg.MailSimulate, "Simulate email delivery when no relay is configured (never in production)")
	fs.StringVar(&cfg.SettingsPath, "settings", cfg.SettingsPath, "JSON file with emailSettings and emailTemplate for scheduled runs")
	fs.BoolVar(&cfg.Debug, "debug", false, "Enable verbose debug logging")
	fs.BoolVar(&cfg.Trace, "trace", cfg.Trace, "Export OpenTelemetry spans to stdout")

	_ = fs.Parse(args)

	if cfg.DBPath == "" {
		cfg.DBPath = getDefaultDBPath()
	}
	return cfg
}

// RunSettings is the on-disk form of the settings used by scheduled and CLI runs.
type RunSettings struct {
	EmailSettings *domain.EmailSettings `json:"emailSettings"`
	EmailTemplate *domain.EmailTemplate `json:"emailTemplate,omitempty"`
}

// LoadRunSettings reads the settings file. An empty path yields empty settings.
func LoadRunSettings(path string) (RunSettings, error) {
	var rs RunSettings
	if path == "" {
		return rs, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return rs, fmt.Errorf("read settings: %w", err)
	}
	if err := json.Unmarshal(data, &rs); err != nil {
		return rs, fmt.Errorf("parse settings %s: %w", path, err)
	}
	if rs.EmailSettings != nil {
		if err := rs.EmailSettings.Validate(); err != nil {
			return rs, fmt.Errorf("settings %s: %w", path, err)
		}
	}
	if rs.EmailTemplate != nil {
		if err := rs.EmailTemplate.Validate(); err != nil {
			return rs, fmt.Errorf("settings %s: %w", path, err)
		}
	}
	return rs, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

// getEnvDuration accepts Go durations ("45s") or a bare number of seconds.
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if s, err := strconv.Atoi(value); err == nil {
		return time.Duration(s) * time.Second
	}
	return fallback
}

// getDefaultDBPath returns the default database path in the user's home
// directory, creating ~/.cveadvisor when needed.
func getDefaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		slog.Warn("Could not get user home directory, using current dir", "error", err)
		return "cveadvisor.db"
	}

	dir := filepath.Join(home, ".cveadvisor")
	if err := os.MkdirAll(dir, 0755); err != nil {
		slog.Warn("Could not create .cveadvisor directory, using current dir", "error", err)
		return "cveadvisor.db"
	}

	return filepath.Join(dir, "cveadvisor.db")
}
