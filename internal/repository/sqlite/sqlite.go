// Package sqlite provides a SQLite-backed implementation of repository.AuctionDB.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"drop-auction/internal/biddingerrors"
	model "drop-auction/internal/models"
	"drop-auction/internal/repository"
)

var _ repository.AuctionDB = (*Store)(nil)

// Store implements repository.AuctionDB on a single SQLite connection, which
// serializes every transaction.
type Store struct {
	db *sql.DB
}

// querier is satisfied by both *sql.DB and *sql.Tx
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// New opens the database at dbPath, creating parent directories and running
// migrations. ":memory:" opens a private in-memory database.
func New(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, errors.Wrap(err, "sqlite: create database directory")
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, errors.Wrap(err, "sqlite: open database")
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "sqlite: enable foreign keys")
	}
	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "sqlite: run migrations")
	}
	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "sqlite: begin transaction")
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return errors.Wrap(tx.Commit(), "sqlite: commit transaction")
}

// insertOnce runs an INSERT ... ON CONFLICT DO NOTHING and reports a conflict as ErrAlreadyExists.
func insertOnce(ctx context.Context, q querier, what, id, query string, args ...any) error {
	res, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return errors.Wrapf(err, "sqlite: insert %s %s", what, id)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrapf(err, "sqlite: insert %s %s", what, id)
	}
	if n == 0 {
		return fmt.Errorf("create %s %s: %w", what, id, biddingerrors.ErrAlreadyExists)
	}
	return nil
}

// CreateItem stores a new item
func (s *Store) CreateItem(ctx context.Context, item model.AuctionItem) error {
	if item.Status == "" {
		item.Status = model.ItemStatusOpen
	}
	return s.inTx(ctx, func(tx *sql.Tx) error {
		err := insertOnce(ctx, tx, "item", item.ItemID,
			`INSERT INTO items (item_id, name, current_price, current_bidder_id, leading_bid_id, status,
				last_activity_at, deadline_at, winner_id, winner_name)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?) ON CONFLICT(item_id) DO NOTHING`,
			item.ItemID, item.Name, item.CurrentPrice.String(), item.CurrentBidderID, item.LeadingBidID, string(item.Status),
			repository.UnixMillis(item.LastActivityAt), repository.UnixMillis(item.DeadlineAt), item.WinnerID, item.WinnerName,
		)
		if err != nil {
			return err
		}
		return writeBidders(ctx, tx, item)
	})
}

// GetItem returns an item with its bidder set
func (s *Store) GetItem(ctx context.Context, itemID string) (model.AuctionItem, error) {
	return getItem(ctx, s.db, itemID)
}

// UpdateItem reads, mutates and writes the item inside one transaction
func (s *Store) UpdateItem(ctx context.Context, itemID string, mutate func(item *model.AuctionItem) error) (model.AuctionItem, error) {
	var after model.AuctionItem
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		before, err := getItem(ctx, tx, itemID)
		if err != nil {
			return err
		}
		after = repository.CloneItem(before)
		if err := mutate(&after); err != nil {
			return err
		}
		if err := repository.CheckItemUpdate(before, after); err != nil {
			return err
		}
		if err := writeItem(ctx, tx, after); err != nil {
			return err
		}
		return writeBidders(ctx, tx, after)
	})
	if err != nil {
		return model.AuctionItem{}, err
	}
	return after, nil
}

// GetItemsByUser returns all items a user has bid on
func (s *Store) GetItemsByUser(ctx context.Context, userID string) ([]model.AuctionItem, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT item_id FROM item_bidders WHERE user_id = ? ORDER BY item_id`, userID)
	if err != nil {
		return nil, errors.Wrapf(err, "sqlite: list items for user %s", userID)
	}
	var itemIDs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, errors.Wrap(err, "sqlite: scan item id")
		}
		itemIDs = append(itemIDs, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "sqlite: iterate item ids")
	}
	if len(itemIDs) == 0 {
		return nil, fmt.Errorf("get items for user %s: %w", userID, biddingerrors.ErrUserNoBids)
	}

	items := make([]model.AuctionItem, 0, len(itemIDs))
	for _, id := range itemIDs {
		item, err := getItem(ctx, s.db, id)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// FinalizeItem closes the item and deletes its countdown in one transaction
func (s *Store) FinalizeItem(ctx context.Context, f repository.Finalization) (model.AuctionItem, error) {
	var after model.AuctionItem
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		item, err := getItem(ctx, tx, f.ItemID)
		if err != nil {
			return err
		}

		var timer *model.CountdownTimer
		t, err := getTimer(ctx, tx, f.ItemID)
		switch {
		case err == nil:
			timer = &t
		case !errors.Is(err, biddingerrors.ErrTimerNotFound):
			return err
		}

		after = item
		if err := repository.ApplyFinalization(&after, timer, f); err != nil {
			return err
		}
		if err := writeItem(ctx, tx, after); err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `DELETE FROM timers WHERE item_id = ?`, f.ItemID)
		return errors.Wrapf(err, "sqlite: delete timer %s", f.ItemID)
	})
	if err != nil {
		return model.AuctionItem{}, err
	}
	return after, nil
}

func getItem(ctx context.Context, q querier, itemID string) (model.AuctionItem, error) {
	var (
		item                   model.AuctionItem
		price, status          string
		lastActivity, deadline int64
	)
	err := q.QueryRowContext(ctx,
		`SELECT item_id, name, current_price, current_bidder_id, leading_bid_id, status,
			last_activity_at, deadline_at, winner_id, winner_name
		FROM items WHERE item_id = ?`, itemID,
	).Scan(&item.ItemID, &item.Name, &price, &item.CurrentBidderID, &item.LeadingBidID, &status,
		&lastActivity, &deadline, &item.WinnerID, &item.WinnerName)
	if errors.Is(err, sql.ErrNoRows) {
		return model.AuctionItem{}, fmt.Errorf("get item %s: %w", itemID, biddingerrors.ErrItemNotFound)
	}
	if err != nil {
		return model.AuctionItem{}, errors.Wrapf(err, "sqlite: get item %s", itemID)
	}

	if item.CurrentPrice, err = decimal.NewFromString(price); err != nil {
		return model.AuctionItem{}, errors.Wrapf(err, "sqlite: parse price of item %s", itemID)
	}
	item.Status = model.ItemStatus(status)
	item.LastActivityAt = repository.FromUnixMillis(lastActivity)
	item.DeadlineAt = repository.FromUnixMillis(deadline)

	rows, err := q.QueryContext(ctx, `SELECT user_id FROM item_bidders WHERE item_id = ? ORDER BY seq`, itemID)
	if err != nil {
		return model.AuctionItem{}, errors.Wrapf(err, "sqlite: get bidders of item %s", itemID)
	}
	defer rows.Close()
	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return model.AuctionItem{}, errors.Wrap(err, "sqlite: scan bidder")
		}
		item.BidderIDs = append(item.BidderIDs, userID)
	}
	return item, errors.Wrap(rows.Err(), "sqlite: iterate bidders")
}

func writeItem(ctx context.Context, q querier, item model.AuctionItem) error {
	_, err := q.ExecContext(ctx,
		`UPDATE items SET name = ?, current_price = ?, current_bidder_id = ?, leading_bid_id = ?, status = ?,
			last_activity_at = ?, deadline_at = ?, winner_id = ?, winner_name = ?
		WHERE item_id = ?`,
		item.Name, item.CurrentPrice.String(), item.CurrentBidderID, item.LeadingBidID, string(item.Status),
		repository.UnixMillis(item.LastActivityAt), repository.UnixMillis(item.DeadlineAt), item.WinnerID, item.WinnerName,
		item.ItemID,
	)
	return errors.Wrapf(err, "sqlite: write item %s", item.ItemID)
}

// writeBidders inserts bidders not yet recorded. The set only grows.
func writeBidders(ctx context.Context, q querier, item model.AuctionItem) error {
	for seq, userID := range item.BidderIDs {
		_, err := q.ExecContext(ctx,
			`INSERT INTO item_bidders (item_id, user_id, seq) VALUES (?, ?, ?) ON CONFLICT(item_id, user_id) DO NOTHING`,
			item.ItemID, userID, seq,
		)
		if err != nil {
			return errors.Wrapf(err, "sqlite: add bidder %s to item %s", userID, item.ItemID)
		}
	}
	return nil
}
