package fleet

import (
	"context"
	"time"

	"averon/internal/application/fleet/dto"
	"averon/internal/domain/panel"
	"averon/internal/domain/server"
	"averon/internal/shared/logger"
)

// ReconcileSummary reports what one reconciliation pass touched.
type ReconcileSummary struct {
	Inbounds    int
	Clients     int
	TrafficUp   uint64
	TrafficDown uint64
}

// Reconciler makes the local mirror match the remote panel listing for one
// server. Remote state is authoritative: every attribute of a listed inbound
// or client is overwritten, and rows the remote no longer reports are kept
// but not stamped, so their last_seen_at marks when they disappeared.
type Reconciler struct {
	inboundRepo panel.InboundRepository
	clientRepo  panel.ClientAccountRepository
	logger      logger.Interface
}

// NewReconciler creates a new Reconciler.
func NewReconciler(
	inboundRepo panel.InboundRepository,
	clientRepo panel.ClientAccountRepository,
	log logger.Interface,
) *Reconciler {
	return &Reconciler{
		inboundRepo: inboundRepo,
		clientRepo:  clientRepo,
		logger:      log,
	}
}

// Reconcile applies one remote listing to the local mirror and updates the
// server's aggregate counters. Running it twice against the same listing
// leaves the database unchanged apart from timestamps.
func (r *Reconciler) Reconcile(
	ctx context.Context,
	srv *server.Server,
	inbounds []dto.Inbound,
	clientsByInbound map[int][]dto.ClientStat,
) (*ReconcileSummary, error) {
	seenAt := time.Now()
	summary := &ReconcileSummary{}

	for _, remote := range inbounds {
		if remote.Port <= 0 || remote.Port > 65535 {
			r.logger.Warnw("skipping inbound with invalid port",
				"server_id", srv.ID(),
				"remote_id", remote.ID,
				"port", remote.Port,
			)
			continue
		}

		local, err := r.upsertInbound(ctx, srv.ID(), remote, seenAt)
		if err != nil {
			return nil, err
		}
		summary.Inbounds++

		for _, stat := range clientsByInbound[remote.ID] {
			if err := r.upsertClient(ctx, local.ID(), stat, seenAt); err != nil {
				return nil, err
			}
			summary.Clients++
			summary.TrafficUp += uint64(max64(stat.Up, 0))
			summary.TrafficDown += uint64(max64(stat.Down, 0))
		}
	}

	srv.SetCurrentUsers(uint(summary.Clients))
	srv.SetTraffic(summary.TrafficUp, summary.TrafficDown)

	r.logger.Debugw("reconciled panel state",
		"server_id", srv.ID(),
		"inbounds", summary.Inbounds,
		"clients", summary.Clients,
	)
	return summary, nil
}

func (r *Reconciler) upsertInbound(ctx context.Context, serverID uint, remote dto.Inbound, seenAt time.Time) (*panel.Inbound, error) {
	inbound, err := panel.NewInbound(
		serverID,
		remote.ID,
		uint16(remote.Port),
		remote.Protocol,
		remote.Remark,
		remote.Listen,
		remote.Settings,
		remote.Enable,
		seenAt,
	)
	if err != nil {
		return nil, err
	}
	if err := r.inboundRepo.Upsert(ctx, inbound); err != nil {
		return nil, err
	}
	return inbound, nil
}

func (r *Reconciler) upsertClient(ctx context.Context, inboundID uint, stat dto.ClientStat, seenAt time.Time) error {
	account, err := panel.NewClientAccount(
		inboundID,
		stat.Email,
		stat.UUID,
		uint64(max64(stat.Up, 0)),
		uint64(max64(stat.Down, 0)),
		uint64(max64(stat.Total, 0)),
		stat.ExpiresAt(),
		stat.Enable,
		seenAt,
	)
	if err != nil {
		return err
	}
	return r.clientRepo.Upsert(ctx, account)
}

func max64(v, floor int64) int64 {
	if v < floor {
		return floor
	}
	return v
}
