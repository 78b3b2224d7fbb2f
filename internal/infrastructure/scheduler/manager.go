// Package scheduler provides unified scheduler management using gocron v2.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"

	"averon/internal/application/fleet"
	"averon/internal/shared/logger"
)

// Manager runs the periodic fleet passes on a single gocron scheduler.
// Singleton mode keeps a slow pass from stacking on top of itself; the
// coordinator's own locks handle everything finer grained.
type Manager struct {
	scheduler gocron.Scheduler
	logger    logger.Interface

	started   bool
	startedMu sync.RWMutex
}

// NewManager creates a new scheduler Manager.
func NewManager(log logger.Interface) (*Manager, error) {
	scheduler, err := gocron.NewScheduler(
		gocron.WithLocation(time.UTC),
	)
	if err != nil {
		return nil, err
	}
	return &Manager{
		scheduler: scheduler,
		logger:    log,
	}, nil
}

// RegisterSyncJob schedules the fleet-wide sync pass.
func (m *Manager) RegisterSyncJob(coordinator *fleet.SyncCoordinator, interval time.Duration) error {
	_, err := m.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), interval)
			defer cancel()
			if _, err := coordinator.SyncAll(ctx); err != nil {
				m.logger.Errorw("scheduled sync pass failed", "error", err)
			}
		}),
		gocron.WithStartAt(gocron.WithStartImmediately()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithTags("fleet", "sync"),
		gocron.WithName("fleet-sync"),
	)
	if err != nil {
		return err
	}

	m.logger.Infow("registered sync job", "interval", interval)
	return nil
}

// RegisterHealthJob schedules the fleet-wide health pass.
func (m *Manager) RegisterHealthJob(monitor *fleet.HealthMonitor, interval time.Duration) error {
	_, err := m.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), interval)
			defer cancel()
			if _, err := monitor.RunHealthPass(ctx); err != nil {
				m.logger.Errorw("scheduled health pass failed", "error", err)
			}
		}),
		gocron.WithStartAt(gocron.WithStartImmediately()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithTags("fleet", "health"),
		gocron.WithName("fleet-health"),
	)
	if err != nil {
		return err
	}

	m.logger.Infow("registered health job", "interval", interval)
	return nil
}

// Start starts the scheduler. Safe to call once.
func (m *Manager) Start() {
	m.startedMu.Lock()
	defer m.startedMu.Unlock()
	if m.started {
		return
	}
	m.scheduler.Start()
	m.started = true
	m.logger.Infow("scheduler started", "jobs", len(m.scheduler.Jobs()))
}

// Stop shuts the scheduler down and waits for running jobs to finish.
func (m *Manager) Stop() error {
	m.startedMu.Lock()
	defer m.startedMu.Unlock()
	if !m.started {
		return nil
	}
	m.started = false
	if err := m.scheduler.Shutdown(); err != nil {
		m.logger.Errorw("scheduler shutdown failed", "error", err)
		return err
	}
	m.logger.Infow("scheduler stopped")
	return nil
}
