package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"

	"drop-auction/internal/biddingerrors"
	model "drop-auction/internal/models"
	"drop-auction/internal/repository"
)

// SetTimer creates or overwrites the countdown for an item
func (s *Store) SetTimer(ctx context.Context, timer model.CountdownTimer) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO timers (item_id, deadline_at, remaining_seconds, updated_at) VALUES ($1, $2, $3, $4)
		ON CONFLICT (item_id) DO UPDATE SET deadline_at = EXCLUDED.deadline_at,
			remaining_seconds = EXCLUDED.remaining_seconds, updated_at = EXCLUDED.updated_at`,
		timer.ItemID, repository.UnixMillis(timer.DeadlineAt), timer.RemainingSeconds, repository.UnixMillis(timer.UpdatedAt),
	)
	return errors.Wrapf(err, "postgres: set timer %s", timer.ItemID)
}

// GetTimer returns the countdown for an item
func (s *Store) GetTimer(ctx context.Context, itemID string) (model.CountdownTimer, error) {
	return getTimer(ctx, s.pool, itemID)
}

func getTimer(ctx context.Context, q querier, itemID string) (model.CountdownTimer, error) {
	timer, err := scanTimer(q.QueryRow(ctx,
		`SELECT item_id, deadline_at, remaining_seconds, updated_at FROM timers WHERE item_id = $1`, itemID))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.CountdownTimer{}, fmt.Errorf("get timer %s: %w", itemID, biddingerrors.ErrTimerNotFound)
	}
	return timer, errors.Wrapf(err, "postgres: get timer %s", itemID)
}

func scanTimer(row pgx.Row) (model.CountdownTimer, error) {
	var (
		timer               model.CountdownTimer
		deadline, updatedAt int64
	)
	if err := row.Scan(&timer.ItemID, &deadline, &timer.RemainingSeconds, &updatedAt); err != nil {
		return model.CountdownTimer{}, err
	}
	timer.DeadlineAt = repository.FromUnixMillis(deadline)
	timer.UpdatedAt = repository.FromUnixMillis(updatedAt)
	return timer, nil
}

// UpdateTimerRemaining records countdown progress. A deleted timer is not recreated.
func (s *Store) UpdateTimerRemaining(ctx context.Context, itemID string, remainingSeconds int64, at time.Time) error {
	tag, err := s.pool.Exec(ctx, `UPDATE timers SET remaining_seconds = $1, updated_at = $2 WHERE item_id = $3`,
		remainingSeconds, repository.UnixMillis(at), itemID)
	if err != nil {
		return errors.Wrapf(err, "postgres: update timer %s", itemID)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update timer %s: %w", itemID, biddingerrors.ErrTimerNotFound)
	}
	return nil
}

// DeleteTimer drops the countdown for an item
func (s *Store) DeleteTimer(ctx context.Context, itemID string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM timers WHERE item_id = $1`, itemID); err != nil {
		return errors.Wrapf(err, "postgres: delete timer %s", itemID)
	}
	return nil
}

// ListTimers returns every running countdown ordered by deadline
func (s *Store) ListTimers(ctx context.Context) ([]model.CountdownTimer, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT item_id, deadline_at, remaining_seconds, updated_at FROM timers ORDER BY deadline_at, item_id`)
	if err != nil {
		return nil, errors.Wrap(err, "postgres: list timers")
	}
	timers, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.CountdownTimer, error) { return scanTimer(row) })
	return timers, errors.Wrap(err, "postgres: collect timers")
}

// CreateUser stores an identity record
func (s *Store) CreateUser(ctx context.Context, user model.User) error {
	return insertOnce(ctx, s.pool, "user", user.UserID,
		`INSERT INTO users (user_id, email, first_name, last_name) VALUES ($1, $2, $3, $4) ON CONFLICT (user_id) DO NOTHING`,
		user.UserID, user.Email, user.FirstName, user.LastName,
	)
}

// GetUser looks up an identity record
func (s *Store) GetUser(ctx context.Context, userID string) (model.User, error) {
	var user model.User
	err := s.pool.QueryRow(ctx, `SELECT user_id, email, first_name, last_name FROM users WHERE user_id = $1`, userID).
		Scan(&user.UserID, &user.Email, &user.FirstName, &user.LastName)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.User{}, fmt.Errorf("get user %s: %w", userID, biddingerrors.ErrUserNotFound)
	}
	return user, errors.Wrapf(err, "postgres: get user %s", userID)
}

// CreateInvoice stores a pending invoice; its lines are kept as JSONB
func (s *Store) CreateInvoice(ctx context.Context, invoice model.Invoice) error {
	if invoice.Status == "" {
		invoice.Status = model.InvoiceStatusPending
	}
	items := invoice.Items
	if items == nil {
		items = []model.InvoiceLine{}
	}
	return insertOnce(ctx, s.pool, "invoice", invoice.InvoiceID,
		`INSERT INTO invoices (invoice_id, user_id, items, status, created_at, sent_at) VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (invoice_id) DO NOTHING`,
		invoice.InvoiceID, invoice.UserID, items, string(invoice.Status),
		repository.UnixMillis(invoice.CreatedAt), repository.UnixMillis(invoice.SentAt),
	)
}

// GetInvoice returns an invoice by id
func (s *Store) GetInvoice(ctx context.Context, invoiceID string) (model.Invoice, error) {
	var (
		invoice           model.Invoice
		status            string
		createdAt, sentAt int64
	)
	err := s.pool.QueryRow(ctx,
		`SELECT invoice_id, user_id, items, status, created_at, sent_at FROM invoices WHERE invoice_id = $1`, invoiceID,
	).Scan(&invoice.InvoiceID, &invoice.UserID, &invoice.Items, &status, &createdAt, &sentAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Invoice{}, fmt.Errorf("get invoice %s: %w", invoiceID, biddingerrors.ErrInvoiceNotFound)
	}
	if err != nil {
		return model.Invoice{}, errors.Wrapf(err, "postgres: get invoice %s", invoiceID)
	}
	invoice.Status = model.InvoiceStatus(status)
	invoice.CreatedAt = repository.FromUnixMillis(createdAt)
	invoice.SentAt = repository.FromUnixMillis(sentAt)
	return invoice, nil
}

// MarkInvoiceSent flags an invoice as delivered
func (s *Store) MarkInvoiceSent(ctx context.Context, invoiceID string, at time.Time) error {
	tag, err := s.pool.Exec(ctx, `UPDATE invoices SET status = $1, sent_at = $2 WHERE invoice_id = $3`,
		string(model.InvoiceStatusSent), repository.UnixMillis(at), invoiceID)
	if err != nil {
		return errors.Wrapf(err, "postgres: mark invoice %s sent", invoiceID)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("mark invoice %s sent: %w", invoiceID, biddingerrors.ErrInvoiceNotFound)
	}
	return nil
}

// Enqueue appends a message to the outbound queue
func (s *Store) Enqueue(ctx context.Context, msg model.OutboundMessage) error {
	return insertOnce(ctx, s.pool, "message", msg.MessageID,
		`INSERT INTO messages (message_id, recipient, sender, subject, body, enqueued_at) VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (message_id) DO NOTHING`,
		msg.MessageID, msg.To, msg.From, msg.Subject, msg.Body, repository.UnixMillis(msg.EnqueuedAt),
	)
}

// ListMessages returns queued messages in enqueue order
func (s *Store) ListMessages(ctx context.Context) ([]model.OutboundMessage, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT message_id, recipient, sender, subject, body, enqueued_at FROM messages ORDER BY seq`)
	if err != nil {
		return nil, errors.Wrap(err, "postgres: list messages")
	}
	msgs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.OutboundMessage, error) {
		var (
			msg        model.OutboundMessage
			enqueuedAt int64
		)
		err := row.Scan(&msg.MessageID, &msg.To, &msg.From, &msg.Subject, &msg.Body, &enqueuedAt)
		msg.EnqueuedAt = repository.FromUnixMillis(enqueuedAt)
		return msg, err
	})
	return msgs, errors.Wrap(err, "postgres: collect messages")
}
