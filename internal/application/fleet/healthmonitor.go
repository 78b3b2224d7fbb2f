package fleet

import (
	"context"
	"fmt"
	"sync"
	"time"

	"averon/internal/application/fleet/dto"
	"averon/internal/domain/server"
	"averon/internal/shared/goroutine"
	"averon/internal/shared/logger"
)

// Rotator triggers failover for a server that just went down.
type Rotator interface {
	RotateAwayFrom(ctx context.Context, unhealthy *server.Server) (*RotationSummary, error)
}

// HealthSummary counts the per-server outcomes of one health pass.
type HealthSummary struct {
	Total     int `json:"total"`
	Healthy   int `json:"healthy"`
	Degraded  int `json:"degraded"`
	Offline   int `json:"offline"`
	Rotations int `json:"rotations"`
}

// HealthMonitor polls panel resource status, appends a health record per
// observation, and maintains the per-server failure streak. Rotation fires
// exactly once per healthy-to-unhealthy transition; a server that stays down
// is recorded as offline on every poll but never re-triggers rotation.
type HealthMonitor struct {
	serverRepo       server.Repository
	healthRecordRepo server.HealthRecordRepository
	connect          ConnectorFactory
	rotator          Rotator
	notifier         Notifier
	failureThreshold int
	logger           logger.Interface
}

// NewHealthMonitor creates a new HealthMonitor. failureThreshold is the
// consecutive-failure count at which a server is declared unhealthy; values
// below 1 are clamped to 1.
func NewHealthMonitor(
	serverRepo server.Repository,
	healthRecordRepo server.HealthRecordRepository,
	connect ConnectorFactory,
	rotator Rotator,
	notifier Notifier,
	failureThreshold int,
	log logger.Interface,
) *HealthMonitor {
	if failureThreshold < 1 {
		failureThreshold = 1
	}
	return &HealthMonitor{
		serverRepo:       serverRepo,
		healthRecordRepo: healthRecordRepo,
		connect:          connect,
		rotator:          rotator,
		notifier:         notifier,
		failureThreshold: failureThreshold,
		logger:           log,
	}
}

// CheckServer polls one server and returns the recorded observation.
func (m *HealthMonitor) CheckServer(ctx context.Context, srv *server.Server) (*server.HealthRecord, error) {
	checkedAt := time.Now()

	status, pollErr := m.pollStatus(ctx, srv)
	if pollErr != nil {
		return m.recordFailure(ctx, srv, checkedAt, pollErr)
	}

	record, err := server.NewHealthRecord(
		srv.ID(),
		status.CPUPercent,
		status.Memory.Percent(),
		status.Disk.Percent(),
		status.UptimeSeconds,
		status.ActiveConnections(),
		checkedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := m.healthRecordRepo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("persist health record: %w", err)
	}

	srv.RecordHealthSuccess()
	if err := m.serverRepo.Update(ctx, srv); err != nil {
		return nil, fmt.Errorf("persist health state: %w", err)
	}

	if record.Status().IsDegraded() {
		m.logger.Warnw("server degraded",
			"server_id", srv.ID(),
			"server", srv.Name(),
			"status", record.Status(),
			"cpu_percent", record.CPUPercent(),
			"memory_percent", record.MemoryPercent(),
			"disk_percent", record.DiskPercent(),
		)
	}
	return record, nil
}

// RunHealthPass polls every active server concurrently and aggregates the
// outcomes. A failing server never aborts the pass.
func (m *HealthMonitor) RunHealthPass(ctx context.Context) (*HealthSummary, error) {
	servers, err := m.serverRepo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active servers: %w", err)
	}

	summary := &HealthSummary{Total: len(servers)}
	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)

	for _, srv := range servers {
		srv := srv
		wg.Add(1)
		goroutine.SafeGo(m.logger, fmt.Sprintf("health-check-%d", srv.ID()), func() {
			defer wg.Done()
			record, err := m.CheckServer(ctx, srv)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				m.logger.Errorw("health check errored",
					"server_id", srv.ID(),
					"error", err,
				)
				return
			}
			switch {
			case record.Status().IsOffline():
				summary.Offline++
				if !srv.IsHealthy() && srv.ConsecutiveFailures() == m.failureThreshold {
					summary.Rotations++
				}
			case record.Status().IsDegraded():
				summary.Degraded++
			default:
				summary.Healthy++
			}
		})
	}
	wg.Wait()

	m.logger.Infow("health pass finished",
		"total", summary.Total,
		"healthy", summary.Healthy,
		"degraded", summary.Degraded,
		"offline", summary.Offline,
		"rotations", summary.Rotations,
	)
	return summary, nil
}

// pollStatus wraps the status call so the client is closed before any
// rotation work starts.
func (m *HealthMonitor) pollStatus(ctx context.Context, srv *server.Server) (*dto.ServerStatus, error) {
	client, err := m.connect(srv)
	if err != nil {
		return nil, err
	}
	defer client.Close()
	return client.GetStatus(ctx)
}

// recordFailure appends an offline record, bumps the failure streak, and
// fires rotation on the healthy-to-unhealthy transition.
func (m *HealthMonitor) recordFailure(ctx context.Context, srv *server.Server, checkedAt time.Time, cause error) (*server.HealthRecord, error) {
	m.logger.Warnw("health poll failed",
		"server_id", srv.ID(),
		"server", srv.Name(),
		"failures", srv.ConsecutiveFailures()+1,
		"error", cause,
	)

	record, err := server.NewOfflineHealthRecord(srv.ID(), checkedAt)
	if err != nil {
		return nil, err
	}
	if err := m.healthRecordRepo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("persist offline record: %w", err)
	}

	transitioned := srv.RecordHealthFailure(m.failureThreshold)
	if err := m.serverRepo.Update(ctx, srv); err != nil {
		return nil, fmt.Errorf("persist health state: %w", err)
	}

	if transitioned {
		m.logger.Errorw("server went offline, starting failover",
			"server_id", srv.ID(),
			"server", srv.Name(),
		)
		m.notifier.NotifyServerOffline(ctx, srv)
		if _, err := m.rotator.RotateAwayFrom(ctx, srv); err != nil {
			m.logger.Errorw("failover run failed",
				"server_id", srv.ID(),
				"error", err,
			)
		}
	}
	return record, nil
}
