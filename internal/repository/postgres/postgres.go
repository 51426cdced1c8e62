// Package postgres provides a PostgreSQL-backed implementation of repository.AuctionDB.
// Item writes lock the row with SELECT ... FOR UPDATE.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"drop-auction/internal/biddingerrors"
	model "drop-auction/internal/models"
	"drop-auction/internal/repository"
)

var _ repository.AuctionDB = (*Store)(nil)

// Store implements repository.AuctionDB on a pgx connection pool
type Store struct {
	pool *pgxpool.Pool
}

type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// New connects to dsn and creates the schema if needed
func New(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, errors.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, "postgres: ping")
	}
	if err := ensureTables(ctx, pool); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, "postgres: ensure tables")
	}
	return &Store{pool: pool}, nil
}

// Close releases every pooled connection
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

func (s *Store) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	return pgx.BeginFunc(ctx, s.pool, fn)
}

func insertOnce(ctx context.Context, q querier, what, id, sql string, args ...any) error {
	tag, err := q.Exec(ctx, sql, args...)
	if err != nil {
		return errors.Wrapf(err, "postgres: insert %s %s", what, id)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("create %s %s: %w", what, id, biddingerrors.ErrAlreadyExists)
	}
	return nil
}

// CreateItem stores a new item
func (s *Store) CreateItem(ctx context.Context, item model.AuctionItem) error {
	if item.Status == "" {
		item.Status = model.ItemStatusOpen
	}
	return s.inTx(ctx, func(tx pgx.Tx) error {
		err := insertOnce(ctx, tx, "item", item.ItemID,
			`INSERT INTO items (item_id, name, current_price, current_bidder_id, leading_bid_id, status,
				last_activity_at, deadline_at, winner_id, winner_name)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) ON CONFLICT (item_id) DO NOTHING`,
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
	return getItem(ctx, s.pool, itemID, false)
}

// UpdateItem locks the item row, applies mutate and writes the result back
func (s *Store) UpdateItem(ctx context.Context, itemID string, mutate func(item *model.AuctionItem) error) (model.AuctionItem, error) {
	var after model.AuctionItem
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		before, err := getItem(ctx, tx, itemID, true)
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
	rows, err := s.pool.Query(ctx, `SELECT item_id FROM item_bidders WHERE user_id = $1 ORDER BY item_id`, userID)
	if err != nil {
		return nil, errors.Wrapf(err, "postgres: list items for user %s", userID)
	}
	itemIDs, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, errors.Wrap(err, "postgres: collect item ids")
	}
	if len(itemIDs) == 0 {
		return nil, fmt.Errorf("get items for user %s: %w", userID, biddingerrors.ErrUserNoBids)
	}

	items := make([]model.AuctionItem, 0, len(itemIDs))
	for _, id := range itemIDs {
		item, err := getItem(ctx, s.pool, id, false)
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
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		item, err := getItem(ctx, tx, f.ItemID, true)
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
		_, err = tx.Exec(ctx, `DELETE FROM timers WHERE item_id = $1`, f.ItemID)
		return errors.Wrapf(err, "postgres: delete timer %s", f.ItemID)
	})
	if err != nil {
		return model.AuctionItem{}, err
	}
	return after, nil
}

func getItem(ctx context.Context, q querier, itemID string, forUpdate bool) (model.AuctionItem, error) {
	query := `SELECT item_id, name, current_price::text, current_bidder_id, leading_bid_id, status,
			last_activity_at, deadline_at, winner_id, winner_name
		FROM items WHERE item_id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	var (
		item                   model.AuctionItem
		price, status          string
		lastActivity, deadline int64
	)
	err := q.QueryRow(ctx, query, itemID).Scan(&item.ItemID, &item.Name, &price, &item.CurrentBidderID,
		&item.LeadingBidID, &status, &lastActivity, &deadline, &item.WinnerID, &item.WinnerName)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.AuctionItem{}, fmt.Errorf("get item %s: %w", itemID, biddingerrors.ErrItemNotFound)
	}
	if err != nil {
		return model.AuctionItem{}, errors.Wrapf(err, "postgres: get item %s", itemID)
	}
	if item.CurrentPrice, err = decimal.NewFromString(price); err != nil {
		return model.AuctionItem{}, errors.Wrapf(err, "postgres: parse price of item %s", itemID)
	}
	item.Status = model.ItemStatus(status)
	item.LastActivityAt = repository.FromUnixMillis(lastActivity)
	item.DeadlineAt = repository.FromUnixMillis(deadline)

	rows, err := q.Query(ctx, `SELECT user_id FROM item_bidders WHERE item_id = $1 ORDER BY seq`, itemID)
	if err != nil {
		return model.AuctionItem{}, errors.Wrapf(err, "postgres: get bidders of item %s", itemID)
	}
	bidders, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return model.AuctionItem{}, errors.Wrap(err, "postgres: collect bidders")
	}
	if len(bidders) > 0 {
		item.BidderIDs = bidders
	}
	return item, nil
}

func writeItem(ctx context.Context, q querier, item model.AuctionItem) error {
	_, err := q.Exec(ctx,
		`UPDATE items SET name = $1, current_price = $2, current_bidder_id = $3, leading_bid_id = $4, status = $5,
			last_activity_at = $6, deadline_at = $7, winner_id = $8, winner_name = $9
		WHERE item_id = $10`,
		item.Name, item.CurrentPrice.String(), item.CurrentBidderID, item.LeadingBidID, string(item.Status),
		repository.UnixMillis(item.LastActivityAt), repository.UnixMillis(item.DeadlineAt), item.WinnerID, item.WinnerName,
		item.ItemID,
	)
	return errors.Wrapf(err, "postgres: write item %s", item.ItemID)
}

func writeBidders(ctx context.Context, q querier, item model.AuctionItem) error {
	for seq, userID := range item.BidderIDs {
		_, err := q.Exec(ctx,
			`INSERT INTO item_bidders (item_id, user_id, seq) VALUES ($1, $2, $3) ON CONFLICT (item_id, user_id) DO NOTHING`,
			item.ItemID, userID, seq,
		)
		if err != nil {
			return errors.Wrapf(err, "postgres: add bidder %s to item %s", userID, item.ItemID)
		}
	}
	return nil
}

// CreateBid records a pending bid
func (s *Store) CreateBid(ctx context.Context, bid model.Bid) error {
	if bid.ItemID == "" {
		return fmt.Errorf("create bid %s: %w", bid.BidID, biddingerrors.ErrInvalidBid)
	}
	if bid.Status == "" {
		bid.Status = model.BidStatusPending
	}
	return insertOnce(ctx, s.pool, "bid", bid.BidID,
		`INSERT INTO bids (bid_id, item_id, user_id, amount, status, created_at, processed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7) ON CONFLICT (bid_id) DO NOTHING`,
		bid.BidID, bid.ItemID, bid.UserID, bid.Amount.String(), string(bid.Status),
		repository.UnixMillis(bid.CreatedAt), repository.UnixMillis(bid.ProcessedAt),
	)
}

const bidColumns = `bid_id, item_id, user_id, amount::text, status, created_at, processed_at`

// GetBid returns a bid by id
func (s *Store) GetBid(ctx context.Context, bidID string) (model.Bid, error) {
	bid, err := scanBid(s.pool.QueryRow(ctx, `SELECT `+bidColumns+` FROM bids WHERE bid_id = $1`, bidID))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Bid{}, fmt.Errorf("get bid %s: %w", bidID, biddingerrors.ErrBidNotFound)
	}
	return bid, errors.Wrapf(err, "postgres: get bid %s", bidID)
}

// MarkBidProcessed sets the processed status once; later calls keep the first timestamp
func (s *Store) MarkBidProcessed(ctx context.Context, bidID string, at time.Time) error {
	return s.inTx(ctx, func(tx pgx.Tx) error {
		var status string
		err := tx.QueryRow(ctx, `SELECT status FROM bids WHERE bid_id = $1 FOR UPDATE`, bidID).Scan(&status)
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("mark bid %s processed: %w", bidID, biddingerrors.ErrBidNotFound)
		}
		if err != nil {
			return errors.Wrapf(err, "postgres: read bid %s", bidID)
		}
		if model.BidStatus(status) == model.BidStatusProcessed {
			return nil
		}
		_, err = tx.Exec(ctx, `UPDATE bids SET status = $1, processed_at = $2 WHERE bid_id = $3`,
			string(model.BidStatusProcessed), repository.UnixMillis(at), bidID)
		return errors.Wrapf(err, "postgres: mark bid %s processed", bidID)
	})
}

// GetBidsByItem returns all bids for an item in arrival order
func (s *Store) GetBidsByItem(ctx context.Context, itemID string) ([]model.Bid, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+bidColumns+` FROM bids WHERE item_id = $1 ORDER BY arrival`, itemID)
	if err != nil {
		return nil, errors.Wrapf(err, "postgres: list bids for item %s", itemID)
	}
	bids, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Bid, error) { return scanBid(row) })
	if err != nil {
		return nil, errors.Wrap(err, "postgres: collect bids")
	}
	if len(bids) == 0 {
		return nil, fmt.Errorf("get bids for item %s: %w", itemID, biddingerrors.ErrNoBids)
	}
	return bids, nil
}

func scanBid(row pgx.Row) (model.Bid, error) {
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
