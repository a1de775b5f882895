package sqlite

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"binflip/internal/application/port"
	"binflip/internal/domain/model"
)

// Repo journals emitted flips in an embedded sqlite database. The flips table
// is keyed by auction id, so the journal enforces the same at-most-once rule
// as the in-memory dedup set.
type Repo struct {
	db *sql.DB
}

func New(path string) (*Repo, error) {
	// ensure directory exists
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		_ = os.MkdirAll(dir, 0o755)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	r := &Repo{db: db}
	if err := r.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return r, nil
}

func (r *Repo) Close() error { return r.db.Close() }

func (r *Repo) GetDB() *sql.DB {
	return r.db
}

func (r *Repo) migrate(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS flips (
  auction_id TEXT PRIMARY KEY,
  canonical_name TEXT NOT NULL,
  raw_name TEXT NOT NULL,
  price INTEGER NOT NULL,
  second_price INTEGER NOT NULL,
  margin INTEGER NOT NULL,
  snapshot_ts INTEGER NOT NULL,
  detected_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_flips_name ON flips(canonical_name);
CREATE INDEX IF NOT EXISTS idx_flips_snapshot ON flips(snapshot_ts);

CREATE TABLE IF NOT EXISTS totals (
  id INTEGER PRIMARY KEY CHECK (id = 1),
  total_value INTEGER NOT NULL,
  total_profit INTEGER NOT NULL,
  updated_at INTEGER NOT NULL
);
`)
	return err
}

func (r *Repo) InsertFlip(ctx context.Context, ev model.FlipEvent) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO flips(auction_id, canonical_name, raw_name, price, second_price, margin, snapshot_ts, detected_at)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(auction_id) DO NOTHING
	`, ev.Cheapest.ID, ev.CanonicalName, ev.Cheapest.RawName, ev.Cheapest.Price, ev.Second.Price, ev.Margin, ev.SnapshotTs, ev.DetectedAt)
	return err
}

func (r *Repo) UpsertTotals(ctx context.Context, ts int64, totals model.RunningTotals) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO totals(id, total_value, total_profit, updated_at)
		VALUES(1, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
		total_value=excluded.total_value, total_profit=excluded.total_profit, updated_at=excluded.updated_at
	`, totals.Value, totals.Profit, ts)
	return err
}

var _ port.Repository = (*Repo)(nil)
