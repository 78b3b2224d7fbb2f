package fleet

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"averon/internal/application/fleet/dto"
	"averon/internal/domain/server"
	"averon/internal/shared/goroutine"
	"averon/internal/shared/logger"
)

// ErrLeaseHeld is returned when another engine instance holds the sync lease
// for the server. The pass is skipped, not failed.
var ErrLeaseHeld = errors.New("sync lease held by another instance")

// SyncSummary counts the per-server outcomes of one fleet-wide pass.
type SyncSummary struct {
	Total   int `json:"total"`
	Success int `json:"success"`
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"`
}

// SyncCoordinator drives sync passes. Passes against the same server are
// serialized twice over: a per-server mutex inside this instance, and an
// optional shared lease across instances. Different servers sync
// concurrently; one server's failure never aborts the others.
type SyncCoordinator struct {
	serverRepo       server.Repository
	healthRecordRepo server.HealthRecordRepository
	reconciler       *Reconciler
	connect          ConnectorFactory
	lease            SyncLease
	logger           logger.Interface

	mu    sync.Mutex
	locks map[uint]*sync.Mutex
}

// NewSyncCoordinator creates a new SyncCoordinator.
func NewSyncCoordinator(
	serverRepo server.Repository,
	healthRecordRepo server.HealthRecordRepository,
	reconciler *Reconciler,
	connect ConnectorFactory,
	lease SyncLease,
	log logger.Interface,
) *SyncCoordinator {
	return &SyncCoordinator{
		serverRepo:       serverRepo,
		healthRecordRepo: healthRecordRepo,
		reconciler:       reconciler,
		connect:          connect,
		lease:            lease,
		logger:           log,
		locks:            make(map[uint]*sync.Mutex),
	}
}

// SyncServer runs one full pass against one server: status, inbound listing,
// per-inbound client stats, reconciliation, a health record from the status
// payload, and the sync markers. Any step failing marks the server
// sync-failed and surfaces the error.
func (c *SyncCoordinator) SyncServer(ctx context.Context, srv *server.Server) error {
	lock := c.serverLock(srv.ID())
	lock.Lock()
	defer lock.Unlock()

	acquired, err := c.lease.Acquire(ctx, srv.ID())
	if err != nil {
		return fmt.Errorf("acquire sync lease for server %d: %w", srv.ID(), err)
	}
	if !acquired {
		c.logger.Infow("sync pass skipped, lease held elsewhere", "server_id", srv.ID())
		return ErrLeaseHeld
	}
	defer func() {
		if err := c.lease.Release(ctx, srv.ID()); err != nil {
			c.logger.Warnw("failed to release sync lease", "server_id", srv.ID(), "error", err)
		}
	}()

	client, err := c.connect(srv)
	if err != nil {
		return c.failSync(ctx, srv, fmt.Errorf("build panel client: %w", err))
	}
	defer client.Close()

	status, err := client.GetStatus(ctx)
	if err != nil {
		return c.failSync(ctx, srv, fmt.Errorf("fetch panel status: %w", err))
	}
	srv.SetActive(true)

	inbounds, err := client.ListInbounds(ctx)
	if err != nil {
		return c.failSync(ctx, srv, fmt.Errorf("list inbounds: %w", err))
	}

	clientsByInbound := make(map[int][]dto.ClientStat, len(inbounds))
	for _, ib := range inbounds {
		stats, err := client.ListClientStats(ctx, ib.ID)
		if err != nil {
			return c.failSync(ctx, srv, fmt.Errorf("list client stats for inbound %d: %w", ib.ID, err))
		}
		clientsByInbound[ib.ID] = stats
	}

	summary, err := c.reconciler.Reconcile(ctx, srv, inbounds, clientsByInbound)
	if err != nil {
		return c.failSync(ctx, srv, fmt.Errorf("reconcile panel state: %w", err))
	}

	record, err := server.NewHealthRecord(srv.ID(), status.CPUPercent,
		status.Memory.Percent(), status.Disk.Percent(),
		status.UptimeSeconds, status.ActiveConnections(), time.Now())
	if err != nil {
		return c.failSync(ctx, srv, fmt.Errorf("build health record: %w", err))
	}
	if err := c.healthRecordRepo.Create(ctx, record); err != nil {
		return c.failSync(ctx, srv, fmt.Errorf("persist health record: %w", err))
	}

	srv.MarkSynced(time.Now())
	if err := c.serverRepo.Update(ctx, srv); err != nil {
		return fmt.Errorf("persist sync markers for server %d: %w", srv.ID(), err)
	}

	c.logger.Infow("server synced",
		"server_id", srv.ID(),
		"server", srv.Name(),
		"inbounds", summary.Inbounds,
		"clients", summary.Clients,
		"cpu_percent", status.CPUPercent,
	)
	return nil
}

// SyncAll fans one pass out over every active server. Each server runs in
// its own goroutine; the summary counts outcomes once they all finish.
func (c *SyncCoordinator) SyncAll(ctx context.Context) (*SyncSummary, error) {
	servers, err := c.serverRepo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active servers: %w", err)
	}

	summary := &SyncSummary{Total: len(servers)}
	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)

	for _, srv := range servers {
		srv := srv
		wg.Add(1)
		goroutine.SafeGo(c.logger, fmt.Sprintf("sync-server-%d", srv.ID()), func() {
			defer wg.Done()
			err := c.SyncServer(ctx, srv)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				summary.Success++
			case errors.Is(err, ErrLeaseHeld):
				summary.Skipped++
			default:
				summary.Failed++
				c.logger.Errorw("sync pass failed",
					"server_id", srv.ID(),
					"server", srv.Name(),
					"error", err,
				)
			}
		})
	}
	wg.Wait()

	c.logger.Infow("fleet sync pass finished",
		"total", summary.Total,
		"success", summary.Success,
		"failed", summary.Failed,
		"skipped", summary.Skipped,
	)
	return summary, nil
}

func (c *SyncCoordinator) failSync(ctx context.Context, srv *server.Server, cause error) error {
	srv.MarkSyncFailed()
	if err := c.serverRepo.Update(ctx, srv); err != nil {
		c.logger.Errorw("failed to persist sync failure",
			"server_id", srv.ID(),
			"error", err,
		)
	}
	return cause
}

func (c *SyncCoordinator) serverLock(serverID uint) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()
	lock, ok := c.locks[serverID]
	if !ok {
		lock = &sync.Mutex{}
		c.locks[serverID] = lock
	}
	return lock
}
