// Package notification delivers fleet events to operators. Delivery is
// asynchronous and best-effort: a dead mail relay never blocks or fails a
// sync, health or rotation pass.
package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"gopkg.in/gomail.v2"

	"averon/internal/domain/server"
	"averon/internal/domain/subscription"
	"averon/internal/shared/config"
	"averon/internal/shared/goroutine"
	"averon/internal/shared/logger"
)

const maxSendAttempts = 3

// EmailNotifier sends operator alerts over SMTP.
type EmailNotifier struct {
	cfg    *config.EmailConfig
	dialer *gomail.Dialer
	logger logger.Interface
}

// NewEmailNotifier creates a new EmailNotifier.
func NewEmailNotifier(cfg *config.EmailConfig, log logger.Interface) *EmailNotifier {
	return &EmailNotifier{
		cfg:    cfg,
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword),
		logger: log,
	}
}

func (n *EmailNotifier) NotifyServerOffline(ctx context.Context, srv *server.Server) {
	subject := fmt.Sprintf("[averon] server %s is offline", srv.Name())
	body := fmt.Sprintf(
		"Server %s (%s:%d) stopped answering health polls after %d consecutive failures.\n"+
			"Failover has started for its active subscriptions.\n",
		srv.Name(), srv.APIURL(), srv.APIPort(), srv.ConsecutiveFailures(),
	)
	n.sendAsync(subject, body)
}

func (n *EmailNotifier) NotifyRotationOutcome(ctx context.Context, log *subscription.RotationLog) {
	// Per-subscription successes would flood the inbox; only failures alert.
	if log.Outcome() == subscription.RotationSuccess {
		return
	}
	subject := fmt.Sprintf("[averon] rotation %s for subscription %d", log.Outcome(), log.SubscriptionID())
	body := fmt.Sprintf(
		"Subscription %d could not be migrated off server %d.\nOutcome: %s\nReason: %s\n",
		log.SubscriptionID(), log.FromServerID(), log.Outcome(), log.ErrorMessage(),
	)
	n.sendAsync(subject, body)
}

func (n *EmailNotifier) NotifyNoAlternate(ctx context.Context, srv *server.Server) {
	subject := fmt.Sprintf("[averon] no alternate for offline server %s", srv.Name())
	body := fmt.Sprintf(
		"Server %s went offline but no healthy alternate is available.\n"+
			"Its subscriptions keep their bindings and remain down until a server recovers.\n",
		srv.Name(),
	)
	n.sendAsync(subject, body)
}

// sendAsync delivers in a background goroutine with bounded retries.
func (n *EmailNotifier) sendAsync(subject, body string) {
	goroutine.SafeGo(n.logger, "email-notify", func() {
		msg := gomail.NewMessage()
		msg.SetAddressHeader("From", n.cfg.FromAddress, n.cfg.FromName)
		msg.SetHeader("To", n.cfg.ToAddress)
		msg.SetHeader("Subject", subject)
		msg.SetBody("text/plain", body)

		bo := backoff.NewExponentialBackOff()
		bo.InitialInterval = 2 * time.Second
		bo.Reset()

		var lastErr error
		for attempt := 1; attempt <= maxSendAttempts; attempt++ {
			lastErr = n.dialer.DialAndSend(msg)
			if lastErr == nil {
				return
			}
			n.logger.Warnw("email delivery failed",
				"subject", subject,
				"attempt", attempt,
				"error", lastErr,
			)
			if attempt < maxSendAttempts {
				time.Sleep(bo.NextBackOff())
			}
		}
		n.logger.Errorw("email notification dropped after retries",
			"subject", subject,
			"error", lastErr,
		)
	})
}
