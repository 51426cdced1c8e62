// Package notification turns auction events into outbound email messages.
package notification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"drop-auction/internal/biddingerrors"
	"drop-auction/internal/metrics"
	"drop-auction/internal/models"
	"drop-auction/internal/repository"
	"drop-auction/utils"
)

// DefaultFrom is the sender used when none is configured
const DefaultFrom = "Dropmaster <dropmaster@4th.host>"

//go:generate mockgen -destination=mock_notifier.go -package=notification drop-auction/internal/notification Notifier

// Notifier delivers a message to a user
type Notifier interface {
	Notify(ctx context.Context, userID, subject, body string) error
}

// Dispatcher resolves users to email addresses and enqueues messages for delivery
type Dispatcher struct {
	users repository.UserStore
	queue repository.MessageQueue
	from  string
	now   func() time.Time
}

var _ Notifier = (*Dispatcher)(nil)

// NewDispatcher creates a Dispatcher sending as from. An empty from uses DefaultFrom.
func NewDispatcher(users repository.UserStore, queue repository.MessageQueue, from string) *Dispatcher {
	if from == "" {
		from = DefaultFrom
	}
	return &Dispatcher{
		users: users,
		queue: queue,
		from:  from,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Notify enqueues an HTML message for userID
func (d *Dispatcher) Notify(ctx context.Context, userID, subject, body string) error {
	user, err := d.users.GetUser(ctx, userID)
	if errors.Is(err, biddingerrors.ErrUserNotFound) || (err == nil && user.Email == "") {
		utils.Warn("no address for recipient, message dropped", map[string]any{"entity": "user", "user_id": userID, "subject": subject})
		return fmt.Errorf("notify %s: %w", userID, biddingerrors.ErrRecipientNotFound)
	}
	if err != nil {
		utils.Error("failed to look up recipient", map[string]any{"entity": "user", "user_id": userID, "error": err.Error()})
		return fmt.Errorf("notify %s: %w", userID, err)
	}

	msg := models.OutboundMessage{
		MessageID:  utils.GenerateID(),
		To:         user.Email,
		From:       d.from,
		Subject:    subject,
		Body:       body,
		EnqueuedAt: d.now(),
	}
	if err := d.queue.Enqueue(ctx, msg); err != nil {
		metrics.StageFailures.WithLabelValues("enqueue_message").Inc()
		utils.Error("failed to enqueue message", map[string]any{"entity": "message", "user_id": userID, "subject": subject, "error": err.Error()})
		return fmt.Errorf("notify %s: %w", userID, err)
	}

	metrics.MessagesEnqueued.WithLabelValues(subject).Inc()
	utils.Info("message enqueued", map[string]any{"entity": "message", "message_id": msg.MessageID, "user_id": userID, "subject": subject})
	return nil
}
