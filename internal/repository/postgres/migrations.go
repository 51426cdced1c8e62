package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS items (
    item_id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    current_price NUMERIC NOT NULL,
    current_bidder_id TEXT NOT NULL DEFAULT '',
    leading_bid_id TEXT NOT NULL DEFAULT '',
    status TEXT NOT NULL,
    last_activity_at BIGINT NOT NULL DEFAULT 0,
    deadline_at BIGINT NOT NULL DEFAULT 0,
    winner_id TEXT NOT NULL DEFAULT '',
    winner_name TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS item_bidders (
    item_id TEXT NOT NULL REFERENCES items(item_id) ON DELETE CASCADE,
    user_id TEXT NOT NULL,
    seq INTEGER NOT NULL,
    PRIMARY KEY (item_id, user_id)
);

CREATE TABLE IF NOT EXISTS bids (
    arrival BIGSERIAL,
    bid_id TEXT PRIMARY KEY,
    item_id TEXT NOT NULL,
    user_id TEXT NOT NULL,
    amount NUMERIC NOT NULL,
    status TEXT NOT NULL,
    created_at BIGINT NOT NULL,
    processed_at BIGINT NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS timers (
    item_id TEXT PRIMARY KEY,
    deadline_at BIGINT NOT NULL,
    remaining_seconds BIGINT NOT NULL,
    updated_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS users (
    user_id TEXT PRIMARY KEY,
    email TEXT NOT NULL,
    first_name TEXT NOT NULL,
    last_name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS invoices (
    invoice_id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    items JSONB NOT NULL,
    status TEXT NOT NULL,
    created_at BIGINT NOT NULL,
    sent_at BIGINT NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS messages (
    seq BIGSERIAL PRIMARY KEY,
    message_id TEXT NOT NULL UNIQUE,
    recipient TEXT NOT NULL,
    sender TEXT NOT NULL,
    subject TEXT NOT NULL,
    body TEXT NOT NULL,
    enqueued_at BIGINT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_item_bidders_user_id ON item_bidders(user_id);
CREATE INDEX IF NOT EXISTS idx_bids_item_id ON bids(item_id);
`

func ensureTables(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, schema)
	return err
}
