package fleet

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"averon/internal/domain/panel"
	"averon/internal/domain/server"
	"averon/internal/domain/subscription"
	"averon/internal/shared/logger"
)

// RotationSummary counts the per-subscription outcomes of one rotation run.
type RotationSummary struct {
	Total    int `json:"total"`
	Migrated int `json:"migrated"`
	Failed   int `json:"failed"`
	Skipped  int `json:"skipped"`
}

// RotationEngine migrates active subscriptions away from an unhealthy server.
// For each subscription the ordering is fixed: create the replacement account
// on the alternate first, rebind the subscription only after that succeeds,
// then remove the old account best-effort. At no point does a subscription
// reference an account that does not exist remotely.
type RotationEngine struct {
	serverRepo       server.Repository
	subscriptionRepo subscription.Repository
	inboundRepo      panel.InboundRepository
	rotationLogRepo  subscription.RotationLogRepository
	connect          ConnectorFactory
	notifier         Notifier
	logger           logger.Interface
}

// NewRotationEngine creates a new RotationEngine.
func NewRotationEngine(
	serverRepo server.Repository,
	subscriptionRepo subscription.Repository,
	inboundRepo panel.InboundRepository,
	rotationLogRepo subscription.RotationLogRepository,
	connect ConnectorFactory,
	notifier Notifier,
	log logger.Interface,
) *RotationEngine {
	return &RotationEngine{
		serverRepo:       serverRepo,
		subscriptionRepo: subscriptionRepo,
		inboundRepo:      inboundRepo,
		rotationLogRepo:  rotationLogRepo,
		connect:          connect,
		notifier:         notifier,
		logger:           log,
	}
}

// RotateAwayFrom migrates every active subscription off the given server.
// Subscriptions are handled independently; one failed migration never stops
// the rest. When no eligible alternate exists nothing is rebound and every
// candidate gets a skipped rotation log.
func (e *RotationEngine) RotateAwayFrom(ctx context.Context, unhealthy *server.Server) (*RotationSummary, error) {
	subs, err := e.subscriptionRepo.ListActiveByServer(ctx, unhealthy.ID())
	if err != nil {
		return nil, fmt.Errorf("list subscriptions on server %d: %w", unhealthy.ID(), err)
	}
	summary := &RotationSummary{Total: len(subs)}
	if len(subs) == 0 {
		e.logger.Infow("no active subscriptions to rotate", "server_id", unhealthy.ID())
		return summary, nil
	}

	alternate, err := e.selectAlternate(ctx, unhealthy.ID())
	if err != nil {
		return nil, err
	}
	if alternate == nil {
		e.logger.Warnw("no healthy alternate available, subscriptions stay put",
			"server_id", unhealthy.ID(),
			"subscriptions", len(subs),
		)
		e.notifier.NotifyNoAlternate(ctx, unhealthy)
		for _, sub := range subs {
			e.recordOutcome(ctx, sub.ID(), unhealthy.ID(), nil, subscription.RotationSkipped, "no healthy alternate available")
			summary.Skipped++
		}
		return summary, nil
	}

	targets, err := e.inboundRepo.ListEnabledByServer(ctx, alternate.ID())
	if err != nil {
		return nil, fmt.Errorf("list inbounds on alternate %d: %w", alternate.ID(), err)
	}
	if len(targets) == 0 {
		e.logger.Warnw("alternate has no enabled inbounds, subscriptions stay put",
			"alternate_id", alternate.ID(),
		)
		e.notifier.NotifyNoAlternate(ctx, unhealthy)
		for _, sub := range subs {
			e.recordOutcome(ctx, sub.ID(), unhealthy.ID(), nil, subscription.RotationSkipped, "alternate has no enabled inbounds")
			summary.Skipped++
		}
		return summary, nil
	}

	client, err := e.connect(alternate)
	if err != nil {
		return nil, fmt.Errorf("build panel client for alternate %d: %w", alternate.ID(), err)
	}
	defer client.Close()

	// One best-effort session against the unhealthy server for old-account
	// cleanup. It is probably unreachable; nil means skip cleanup.
	oldClient, err := e.connect(unhealthy)
	if err != nil {
		e.logger.Warnw("cannot reach unhealthy server for cleanup", "server_id", unhealthy.ID(), "error", err)
		oldClient = nil
	} else {
		defer oldClient.Close()
	}

	migrated := 0
	for _, sub := range subs {
		if err := e.rotateOne(ctx, sub, unhealthy, alternate, targets, client, oldClient); err != nil {
			summary.Failed++
			e.logger.Errorw("subscription rotation failed",
				"subscription_id", sub.ID(),
				"from_server", unhealthy.ID(),
				"to_server", alternate.ID(),
				"error", err,
			)
			continue
		}
		summary.Migrated++
		migrated++
	}

	if migrated > 0 {
		alternate.SetCurrentUsers(alternate.CurrentUsers() + uint(migrated))
		if err := e.serverRepo.Update(ctx, alternate); err != nil {
			e.logger.Warnw("failed to bump alternate load counter", "server_id", alternate.ID(), "error", err)
		}
	}

	e.logger.Infow("rotation run finished",
		"from_server", unhealthy.ID(),
		"to_server", alternate.ID(),
		"total", summary.Total,
		"migrated", summary.Migrated,
		"failed", summary.Failed,
	)
	return summary, nil
}

// selectAlternate returns the active healthy server with the lowest load
// ratio, or nil when none qualifies.
func (e *RotationEngine) selectAlternate(ctx context.Context, unhealthyID uint) (*server.Server, error) {
	candidates, err := e.serverRepo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list alternate candidates: %w", err)
	}
	var best *server.Server
	for _, candidate := range candidates {
		if !candidate.IsEligibleAlternate(unhealthyID) {
			continue
		}
		if best == nil || candidate.LoadRatio() < best.LoadRatio() {
			best = candidate
		}
	}
	return best, nil
}

func (e *RotationEngine) rotateOne(
	ctx context.Context,
	sub *subscription.Subscription,
	unhealthy, alternate *server.Server,
	targets []*panel.Inbound,
	client, oldClient PanelClient,
) error {
	target := pickTargetInbound(targets, e.previousProtocol(ctx, sub))
	toID := alternate.ID()

	email := fmt.Sprintf("sub%d-s%d@rotated.averon", sub.ID(), alternate.ID())
	clientUUID := uuid.NewString()

	expiresAt := sub.ExpiresAt()
	if err := client.AddClient(ctx, target.RemoteID(), email, clientUUID, sub.RemainingBytes(), expiresAt); err != nil {
		e.recordOutcome(ctx, sub.ID(), unhealthy.ID(), &toID, subscription.RotationFailed, err.Error())
		return fmt.Errorf("create replacement account: %w", err)
	}

	oldInboundID := sub.InboundID()
	oldEmail := sub.ClientEmail()

	if err := sub.Rebind(alternate.ID(), target.ID(), email, clientUUID); err != nil {
		e.recordOutcome(ctx, sub.ID(), unhealthy.ID(), &toID, subscription.RotationFailed, err.Error())
		return fmt.Errorf("rebind subscription: %w", err)
	}
	if err := e.subscriptionRepo.UpdateBinding(ctx, sub); err != nil {
		e.recordOutcome(ctx, sub.ID(), unhealthy.ID(), &toID, subscription.RotationFailed, err.Error())
		return fmt.Errorf("persist rebind: %w", err)
	}

	e.cleanupOldAccount(ctx, oldClient, unhealthy.ID(), oldInboundID, oldEmail)

	e.recordOutcome(ctx, sub.ID(), unhealthy.ID(), &toID, subscription.RotationSuccess, "")
	e.logger.Infow("subscription migrated",
		"subscription_id", sub.ID(),
		"from_server", unhealthy.ID(),
		"to_server", alternate.ID(),
		"inbound_id", target.ID(),
	)
	return nil
}

// previousProtocol looks up the protocol of the subscription's current
// inbound so the target can match it. Empty when the mirror has no row.
func (e *RotationEngine) previousProtocol(ctx context.Context, sub *subscription.Subscription) string {
	if sub.InboundID() == 0 {
		return ""
	}
	inbound, err := e.inboundRepo.GetByID(ctx, sub.InboundID())
	if err != nil {
		e.logger.Debugw("previous inbound not in mirror", "inbound_id", sub.InboundID(), "error", err)
		return ""
	}
	return inbound.Protocol()
}

// cleanupOldAccount removes the superseded account from the unhealthy
// server. Strictly best-effort: the server is usually down and the next
// reconciliation pass absorbs any leftover.
func (e *RotationEngine) cleanupOldAccount(ctx context.Context, oldClient PanelClient, serverID, inboundID uint, email string) {
	if oldClient == nil || inboundID == 0 || email == "" {
		return
	}
	inbound, err := e.inboundRepo.GetByID(ctx, inboundID)
	if err != nil {
		e.logger.Debugw("old inbound not in mirror, skipping cleanup", "inbound_id", inboundID)
		return
	}
	if err := oldClient.RemoveClient(ctx, inbound.RemoteID(), email); err != nil {
		e.logger.Warnw("failed to remove old account, leaving for reconciliation",
			"server_id", serverID,
			"inbound_id", inboundID,
			"email", email,
			"error", err,
		)
	}
}

func (e *RotationEngine) recordOutcome(ctx context.Context, subID, fromID uint, toID *uint, outcome subscription.RotationOutcome, message string) {
	log, err := subscription.NewRotationLog(subID, fromID, toID, outcome, message)
	if err != nil {
		e.logger.Errorw("failed to build rotation log", "subscription_id", subID, "error", err)
		return
	}
	if err := e.rotationLogRepo.Create(ctx, log); err != nil {
		e.logger.Errorw("failed to persist rotation log", "subscription_id", subID, "error", err)
		return
	}
	e.notifier.NotifyRotationOutcome(ctx, log)
}

// pickTargetInbound prefers an inbound whose protocol matches the previous
// binding; otherwise the first enabled one wins.
func pickTargetInbound(targets []*panel.Inbound, protocol string) *panel.Inbound {
	if protocol != "" {
		for _, t := range targets {
			if t.Protocol() == protocol {
				return t
			}
		}
	}
	return targets[0]
}
