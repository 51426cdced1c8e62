package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"drop-auction/internal/biddingerrors"
	model "drop-auction/internal/models"
	"drop-auction/internal/repository"
)

// CreateBid records a pending bid
func (s *Store) CreateBid(ctx context.Context, bid model.Bid) error {
	if bid.ItemID == "" {
		return fmt.Errorf("create bid %s: %w", bid.BidID, biddingerrors.ErrInvalidBid)
	}
	if bid.Status == "" {
		bid.Status = model.BidStatusPending
	}
	return insertOnce(ctx, s.db, "bid", bid.BidID,
		`INSERT INTO bids (bid_id, item_id, user_id, amount, status, created_at, processed_at, arrival)
		VALUES (?, ?, ?, ?, ?, ?, ?, (SELECT COALESCE(MAX(arrival), 0) + 1 FROM bids))
		ON CONFLICT(bid_id) DO NOTHING`,
		bid.BidID, bid.ItemID, bid.UserID, bid.Amount.String(), string(bid.Status),
		repository.UnixMillis(bid.CreatedAt), repository.UnixMillis(bid.ProcessedAt),
	)
}

// GetBid returns a bid by id
func (s *Store) GetBid(ctx context.Context, bidID string) (model.Bid, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT bid_id, item_id, user_id, amount, status, created_at, processed_at FROM bids WHERE bid_id = ?`, bidID)
	bid, err := scanBid(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Bid{}, fmt.Errorf("get bid %s: %w", bidID, biddingerrors.ErrBidNotFound)
	}
	return bid, errors.Wrapf(err, "sqlite: get bid %s", bidID)
}

// MarkBidProcessed sets the processed status once; later calls keep the first timestamp
func (s *Store) MarkBidProcessed(ctx context.Context, bidID string, at time.Time) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		var status string
		err := tx.QueryRowContext(ctx, `SELECT status FROM bids WHERE bid_id = ?`, bidID).Scan(&status)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("mark bid %s processed: %w", bidID, biddingerrors.ErrBidNotFound)
		}
		if err != nil {
			return errors.Wrapf(err, "sqlite: read bid %s", bidID)
		}
		if model.BidStatus(status) == model.BidStatusProcessed {
			return nil
		}
		_, err = tx.ExecContext(ctx, `UPDATE bids SET status = ?, processed_at = ? WHERE bid_id = ?`,
			string(model.BidStatusProcessed), repository.UnixMillis(at), bidID)
		return errors.Wrapf(err, "sqlite: mark bid %s processed", bidID)
	})
}

// GetBidsByItem returns all bids for an item in arrival order
func (s *Store) GetBidsByItem(ctx context.Context, itemID string) ([]model.Bid, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT bid_id, item_id, user_id, amount, status, created_at, processed_at
		FROM bids WHERE item_id = ? ORDER BY arrival`, itemID)
	if err != nil {
		return nil, errors.Wrapf(err, "sqlite: list bids for item %s", itemID)
	}
	defer rows.Close()

	var bids []model.Bid
	for rows.Next() {
		bid, err := scanBid(rows)
		if err != nil {
			return nil, errors.Wrap(err, "sqlite: scan bid")
		}
		bids = append(bids, bid)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "sqlite: iterate bids")
	}
	if len(bids) == 0 {
		return nil, fmt.Errorf("get bids for item %s: %w", itemID, biddingerrors.ErrNoBids)
	}
	return bids, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBid(row scanner) (model.Bid, error) {
	var (
		bid                  model.Bid
		amount, status       string
		createdAt, processed int64
	)
	if err := row.Scan(&bid.BidID, &bid.ItemID, &bid.UserID, &amount, &status, &createdAt, &processed); err != nil {
		return model.Bid{}, err
	}
	var err error
	if bid.Amount, err = decimal.NewFromString(amount); err != nil {
		return model.Bid{}, err
	}
	bid.Status = model.BidStatus(status)
	bid.CreatedAt = repository.FromUnixMillis(createdAt)
	bid.ProcessedAt = repository.FromUnixMillis(processed)
	return bid, nil
}

// SetTimer creates or overwrites the countdown for an item
func (s *Store) SetTimer(ctx context.Context, timer model.CountdownTimer) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO timers (item_id, deadline_at, remaining_seconds, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(item_id) DO UPDATE SET deadline_at = excluded.deadline_at,
			remaining_seconds = excluded.remaining_seconds, updated_at = excluded.updated_at`,
		timer.ItemID, repository.UnixMillis(timer.DeadlineAt), timer.RemainingSeconds, repository.UnixMillis(timer.UpdatedAt),
	)
	return errors.Wrapf(err, "sqlite: set timer %s", timer.ItemID)
}

// GetTimer returns the countdown for an item
func (s *Store) GetTimer(ctx context.Context, itemID string) (model.CountdownTimer, error) {
	return getTimer(ctx, s.db, itemID)
}

func getTimer(ctx context.Context, q querier, itemID string) (model.CountdownTimer, error) {
	timer, err := scanTimer(q.QueryRowContext(ctx,
		`SELECT item_id, deadline_at, remaining_seconds, updated_at FROM timers WHERE item_id = ?`, itemID))
	if errors.Is(err, sql.ErrNoRows) {
		return model.CountdownTimer{}, fmt.Errorf("get timer %s: %w", itemID, biddingerrors.ErrTimerNotFound)
	}
	return timer, errors.Wrapf(err, "sqlite: get timer %s", itemID)
}

func scanTimer(row scanner) (model.CountdownTimer, error) {
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
	res, err := s.db.ExecContext(ctx, `UPDATE timers SET remaining_seconds = ?, updated_at = ? WHERE item_id = ?`,
		remainingSeconds, repository.UnixMillis(at), itemID)
	if err != nil {
		return errors.Wrapf(err, "sqlite: update timer %s", itemID)
	}
	if n, err := res.RowsAffected(); err != nil {
		return errors.Wrapf(err, "sqlite: update timer %s", itemID)
	} else if n == 0 {
		return fmt.Errorf("update timer %s: %w", itemID, biddingerrors.ErrTimerNotFound)
	}
	return nil
}

// DeleteTimer drops the countdown for an item
func (s *Store) DeleteTimer(ctx context.Context, itemID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM timers WHERE item_id = ?`, itemID); err != nil {
		return errors.Wrapf(err, "sqlite: delete timer %s", itemID)
	}
	return nil
}

// ListTimers returns every running countdown ordered by deadline
func (s *Store) ListTimers(ctx context.Context) ([]model.CountdownTimer, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT item_id, deadline_at, remaining_seconds, updated_at FROM timers ORDER BY deadline_at, item_id`)
	if err != nil {
		return nil, errors.Wrap(err, "sqlite: list timers")
	}
	defer rows.Close()

	timers := []model.CountdownTimer{}
	for rows.Next() {
		timer, err := scanTimer(rows)
		if err != nil {
			return nil, errors.Wrap(err, "sqlite: scan timer")
		}
		timers = append(timers, timer)
	}
	return timers, errors.Wrap(rows.Err(), "sqlite: iterate timers")
}

// CreateUser stores an identity record
func (s *Store) CreateUser(ctx context.Context, user model.User) error {
	return insertOnce(ctx, s.db, "user", user.UserID,
		`INSERT INTO users (user_id, email, first_name, last_name) VALUES (?, ?, ?, ?) ON CONFLICT(user_id) DO NOTHING`,
		user.UserID, user.Email, user.FirstName, user.LastName,
	)
}

// GetUser looks up an identity record
func (s *Store) GetUser(ctx context.Context, userID string) (model.User, error) {
	var user model.User
	err := s.db.QueryRowContext(ctx, `SELECT user_id, email, first_name, last_name FROM users WHERE user_id = ?`, userID).
		Scan(&user.UserID, &user.Email, &user.FirstName, &user.LastName)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, fmt.Errorf("get user %s: %w", userID, biddingerrors.ErrUserNotFound)
	}
	return user, errors.Wrapf(err, "sqlite: get user %s", userID)
}

// CreateInvoice stores a pending invoice with its lines
func (s *Store) CreateInvoice(ctx context.Context, invoice model.Invoice) error {
	if invoice.Status == "" {
		invoice.Status = model.InvoiceStatusPending
	}
	return s.inTx(ctx, func(tx *sql.Tx) error {
		err := insertOnce(ctx, tx, "invoice", invoice.InvoiceID,
			`INSERT INTO invoices (invoice_id, user_id, status, created_at, sent_at) VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(invoice_id) DO NOTHING`,
			invoice.InvoiceID, invoice.UserID, string(invoice.Status),
			repository.UnixMillis(invoice.CreatedAt), repository.UnixMillis(invoice.SentAt),
		)
		if err != nil {
			return err
		}
		for seq, line := range invoice.Items {
			_, err := tx.ExecContext(ctx, `INSERT INTO invoice_lines (invoice_id, seq, item_id, name) VALUES (?, ?, ?, ?)`,
				invoice.InvoiceID, seq, line.ItemID, line.Name)
			if err != nil {
				return errors.Wrapf(err, "sqlite: insert invoice line %d", seq)
			}
		}
		return nil
	})
}

// GetInvoice returns an invoice with its lines
func (s *Store) GetInvoice(ctx context.Context, invoiceID string) (model.Invoice, error) {
	var (
		invoice           model.Invoice
		status            string
		createdAt, sentAt int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT invoice_id, user_id, status, created_at, sent_at FROM invoices WHERE invoice_id = ?`, invoiceID,
	).Scan(&invoice.InvoiceID, &invoice.UserID, &status, &createdAt, &sentAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Invoice{}, fmt.Errorf("get invoice %s: %w", invoiceID, biddingerrors.ErrInvoiceNotFound)
	}
	if err != nil {
		return model.Invoice{}, errors.Wrapf(err, "sqlite: get invoice %s", invoiceID)
	}
	invoice.Status = model.InvoiceStatus(status)
	invoice.CreatedAt = repository.FromUnixMillis(createdAt)
	invoice.SentAt = repository.FromUnixMillis(sentAt)

	rows, err := s.db.QueryContext(ctx, `SELECT item_id, name FROM invoice_lines WHERE invoice_id = ? ORDER BY seq`, invoiceID)
	if err != nil {
		return model.Invoice{}, errors.Wrapf(err, "sqlite: get lines of invoice %s", invoiceID)
	}
	defer rows.Close()
	for rows.Next() {
		var line model.InvoiceLine
		if err := rows.Scan(&line.ItemID, &line.Name); err != nil {
			return model.Invoice{}, errors.Wrap(err, "sqlite: scan invoice line")
		}
		invoice.Items = append(invoice.Items, line)
	}
	return invoice, errors.Wrap(rows.Err(), "sqlite: iterate invoice lines")
}

// MarkInvoiceSent flags an invoice as delivered
func (s *Store) MarkInvoiceSent(ctx context.Context, invoiceID string, at time.Time) error {
	res, err := s.db.ExecContext(ctx, `UPDATE invoices SET status = ?, sent_at = ? WHERE invoice_id = ?`,
		string(model.InvoiceStatusSent), repository.UnixMillis(at), invoiceID)
	if err != nil {
		return errors.Wrapf(err, "sqlite: mark invoice %s sent", invoiceID)
	}
	if n, err := res.RowsAffected(); err != nil {
		return errors.Wrapf(err, "sqlite: mark invoice %s sent", invoiceID)
	} else if n == 0 {
		return fmt.Errorf("mark invoice %s sent: %w", invoiceID, biddingerrors.ErrInvoiceNotFound)
	}
	return nil
}

// Enqueue appends a message to the outbound queue
func (s *Store) Enqueue(ctx context.Context, msg model.OutboundMessage) error {
	return insertOnce(ctx, s.db, "message", msg.MessageID,
		`INSERT INTO messages (message_id, recipient, sender, subject, body, enqueued_at) VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(message_id) DO NOTHING`,
		msg.MessageID, msg.To, msg.From, msg.Subject, msg.Body, repository.UnixMillis(msg.EnqueuedAt),
	)
}

// ListMessages returns queued messages in enqueue order
func (s *Store) ListMessages(ctx context.Context) ([]model.OutboundMessage, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT message_id, recipient, sender, subject, body, enqueued_at FROM messages ORDER BY seq`)
	if err != nil {
		return nil, errors.Wrap(err, "sqlite: list messages")
	}
	defer rows.Close()

	msgs := []model.OutboundMessage{}
	for rows.Next() {
		var (
			msg        model.OutboundMessage
			enqueuedAt int64
		)
		if err := rows.Scan(&msg.MessageID, &msg.To, &msg.From, &msg.Subject, &msg.Body, &enqueuedAt); err != nil {
			return nil, errors.Wrap(err, "sqlite: scan message")
		}
		msg.EnqueuedAt = repository.FromUnixMillis(enqueuedAt)
		msgs = append(msgs, msg)
	}
	return msgs, errors.Wrap(rows.Err(), "sqlite: iterate messages")
}
