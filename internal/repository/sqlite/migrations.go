package sqlite

import "database/sql"

// schema is applied on startup. Timestamps are unix milliseconds, 0 meaning unset.
// Amounts are decimal strings.
const schema = `
CREATE TABLE IF NOT EXISTS items (
    item_id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    current_price TEXT NOT NULL,
    current_bidder_id TEXT NOT NULL DEFAULT '',
    leading_bid_id TEXT NOT NULL DEFAULT '',
    status TEXT NOT NULL,
    last_activity_at INTEGER NOT NULL DEFAULT 0,
    deadline_at INTEGER NOT NULL DEFAULT 0,
    winner_id TEXT NOT NULL DEFAULT '',
    winner_name TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS item_bidders (
    item_id TEXT NOT NULL,
    user_id TEXT NOT NULL,
    seq INTEGER NOT NULL,
    PRIMARY KEY (item_id, user_id),
    FOREIGN KEY (item_id) REFERENCES items(item_id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS bids (
    bid_id TEXT PRIMARY KEY,
    item_id TEXT NOT NULL,
    user_id TEXT NOT NULL,
    amount TEXT NOT NULL,
    status TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    processed_at INTEGER NOT NULL DEFAULT 0,
    arrival INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS timers (
    item_id TEXT PRIMARY KEY,
    deadline_at INTEGER NOT NULL,
    remaining_seconds INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
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
    status TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    sent_at INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS invoice_lines (
    invoice_id TEXT NOT NULL,
    seq INTEGER NOT NULL,
    item_id TEXT NOT NULL,
    name TEXT NOT NULL,
    PRIMARY KEY (invoice_id, seq),
    FOREIGN KEY (invoice_id) REFERENCES invoices(invoice_id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS messages (
    seq INTEGER PRIMARY KEY AUTOINCREMENT,
    message_id TEXT NOT NULL UNIQUE,
    recipient TEXT NOT NULL,
    sender TEXT NOT NULL,
    subject TEXT NOT NULL,
    body TEXT NOT NULL,
    enqueued_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_item_bidders_user_id ON item_bidders(user_id);
CREATE INDEX IF NOT EXISTS idx_bids_item_id ON bids(item_id);
`

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
