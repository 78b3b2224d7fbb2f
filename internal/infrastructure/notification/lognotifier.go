package notification

import (
	"context"

	"averon/internal/domain/server"
	"averon/internal/domain/subscription"
	"averon/internal/shared/logger"
)

// LogNotifier writes fleet events to the structured log. Always wired so
// that a disabled mail relay still leaves an audit trail.
type LogNotifier struct {
	logger logger.Interface
}

// NewLogNotifier creates a new LogNotifier.
func NewLogNotifier(log logger.Interface) *LogNotifier {
	return &LogNotifier{logger: log.Named("fleet-events")}
}

func (n *LogNotifier) NotifyServerOffline(ctx context.Context, srv *server.Server) {
	n.logger.Errorw("server offline",
		"server_id", srv.ID(),
		"server", srv.Name(),
		"consecutive_failures", srv.ConsecutiveFailures(),
	)
}

func (n *LogNotifier) NotifyRotationOutcome(ctx context.Context, log *subscription.RotationLog) {
	fields := []interface{}{
		"subscription_id", log.SubscriptionID(),
		"from_server", log.FromServerID(),
		"outcome", log.Outcome(),
	}
	if to := log.ToServerID(); to != nil {
		fields = append(fields, "to_server", *to)
	}
	if log.ErrorMessage() != "" {
		fields = append(fields, "reason", log.ErrorMessage())
	}

	switch log.Outcome() {
	case subscription.RotationSuccess:
		n.logger.Infow("subscription rotated", fields...)
	default:
		n.logger.Warnw("subscription rotation did not complete", fields...)
	}
}

func (n *LogNotifier) NotifyNoAlternate(ctx context.Context, srv *server.Server) {
	n.logger.Errorw("no healthy alternate for offline server",
		"server_id", srv.ID(),
		"server", srv.Name(),
	)
}

// MultiNotifier fans one event out to several sinks.
type MultiNotifier struct {
	sinks []Sink
}

// Sink matches the notifier surface the engine calls into.
type Sink interface {
	NotifyServerOffline(ctx context.Context, srv *server.Server)
	NotifyRotationOutcome(ctx context.Context, log *subscription.RotationLog)
	NotifyNoAlternate(ctx context.Context, srv *server.Server)
}

// NewMultiNotifier creates a notifier that forwards to every given sink.
func NewMultiNotifier(sinks ...Sink) *MultiNotifier {
	return &MultiNotifier{sinks: sinks}
}

func (m *MultiNotifier) NotifyServerOffline(ctx context.Context, srv *server.Server) {
	for _, s := range m.sinks {
		s.NotifyServerOffline(ctx, srv)
	}
}

func (m *MultiNotifier) NotifyRotationOutcome(ctx context.Context, log *subscription.RotationLog) {
	for _, s := range m.sinks {
		s.NotifyRotationOutcome(ctx, log)
	}
}

func (m *MultiNotifier) NotifyNoAlternate(ctx context.Context, srv *server.Server) {
	for _, s := range m.sinks {
		s.NotifyNoAlternate(ctx, srv)
	}
}
