// Package fleet implements the synchronization and failover engine: the
// reconciler, sync coordinator, health monitor and rotation engine.
package fleet

import (
	"context"
	"time"

	"averon/internal/application/fleet/dto"
	"averon/internal/domain/server"
	"averon/internal/domain/subscription"
)

// PanelClient is one authenticated session against one remote panel.
// Implementations authenticate lazily and retry a rejected call once after
// re-authenticating; every other failure surfaces as a typed error for the
// caller to handle. Close releases the transport session and must be called
// on every exit path.
type PanelClient interface {
	Authenticate(ctx context.Context) error
	GetStatus(ctx context.Context) (*dto.ServerStatus, error)
	ListInbounds(ctx context.Context) ([]dto.Inbound, error)
	ListClientStats(ctx context.Context, inboundID int) ([]dto.ClientStat, error)
	AddClient(ctx context.Context, inboundID int, email, uuid string, totalBytes uint64, expiresAt time.Time) error
	RemoveClient(ctx context.Context, inboundID int, email string) error
	UpdateClient(ctx context.Context, inboundID int, email string, settings dto.ClientSettings) error
	ResetClientTraffic(ctx context.Context, inboundID int, email string) error
	Close()
}

// ConnectorFactory builds a panel client bound to one server's base URL and
// credentials. Each sync or rotation pass constructs its own client and
// closes it when the pass ends; no sessions are cached across passes.
type ConnectorFactory func(srv *server.Server) (PanelClient, error)

// SyncLease serializes sync passes for one server across engine instances.
// A degenerate always-acquire implementation is used when no shared lock
// backend is configured.
type SyncLease interface {
	// Acquire returns false when another holder owns the lease.
	Acquire(ctx context.Context, serverID uint) (bool, error)
	Release(ctx context.Context, serverID uint) error
}

// Notifier delivers rotation outcomes and health transitions to the outside
// world. Delivery failures are non-fatal and absorbed by implementations.
type Notifier interface {
	NotifyServerOffline(ctx context.Context, srv *server.Server)
	NotifyRotationOutcome(ctx context.Context, log *subscription.RotationLog)
	NotifyNoAlternate(ctx context.Context, srv *server.Server)
}
