package advisory

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/lcalzada-xor/cveadvisor/internal/core/domain"
	"github.com/lcalzada-xor/cveadvisor/internal/core/ports"
)

// Interval bounds offered by the admin settings.
const (
	MinSyncIntervalHours = 1
	MaxSyncIntervalHours = 24
)

// Scheduler triggers sync runs on a fixed interval using the configured
// credentials. An interval of zero disables it.
type Scheduler struct {
	sync    ports.SyncService
	request domain.SyncRequest
	reset   chan struct{}
	unit    time.Duration

	mu       sync.RWMutex
	interval time.Duration
	lastRun  time.Time
	lastErr  error
}

// ScheduleStatus is the admin view of the scheduler.
type ScheduleStatus struct {
	IntervalHours int       `json:"intervalHours"`
	Enabled       bool      `json:"enabled"`
	LastRun       time.Time `json:"lastRun,omitempty"`
	LastError     string    `json:"lastError,omitempty"`
}

func NewScheduler(svc ports.SyncService, req domain.SyncRequest, intervalHours int) (*Scheduler, error) {
	s := &Scheduler{sync: svc, request: req, reset: make(chan struct{}, 1), unit: time.Hour}
	if err := s.SetIntervalHours(intervalHours); err != nil {
		return nil, err
	}
	return s, nil
}

// SetIntervalHours changes the schedule; the running loop picks it up at once.
func (s *Scheduler) SetIntervalHours(hours int) error {
	if hours != 0 && (hours < MinSyncIntervalHours || hours > MaxSyncIntervalHours) {
		return domain.NewValidationError(fmt.Sprintf("sync interval must be between %d and %d hours, or 0 to disable",
			MinSyncIntervalHours, MaxSyncIntervalHours))
	}
	s.mu.Lock()
	s.interval = time.Duration(hours) * s.unit
	s.mu.Unlock()

	select {
	case s.reset <- struct{}{}:
	default:
	}
	return nil
}

func (s *Scheduler) Status() ScheduleStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := ScheduleStatus{
		IntervalHours: int(s.interval / s.unit),
		Enabled:       s.interval > 0,
		LastRun:       s.lastRun,
	}
	if s.lastErr != nil {
		st.LastError = s.lastErr.Error()
	}
	return st
}

// Start begins the schedule loop in the background. It stops with ctx.
func (s *Scheduler) Start(ctx context.Context) {
	go s.loop(ctx)
}

func (s *Scheduler) loop(ctx context.Context) {
	for {
		s.mu.RLock()
		interval := s.interval
		s.mu.RUnlock()

		var tick <-chan time.Time
		var timer *time.Timer
		if interval > 0 {
			timer = time.NewTimer(interval)
			tick = timer.C
		}

		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return
		case <-s.reset:
			if timer != nil {
				timer.Stop()
			}
		case <-tick:
			s.runOnce(ctx)
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context) {
	res, err := s.sync.Run(ctx, domain.TriggerScheduled, s.request)

	s.mu.Lock()
	s.lastRun = time.Now().UTC()
	s.lastErr = err
	s.mu.Unlock()

	if err != nil {
		slog.Error("Scheduled sync failed", "error", err)
		return
	}
	slog.Info("Scheduled sync complete", "processed", res.Processed)
}
