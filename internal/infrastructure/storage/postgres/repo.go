package postgres

import (
	"context"
	"database/sql"

	_ "github.com/jackc/pgx/v5/stdlib"

	"binflip/internal/application/port"
	"binflip/internal/domain/model"
)

// Repo is the postgres flavor of the flip journal, for operators who already
// run a shared database instead of the embedded sqlite file.
type Repo struct {
	db *sql.DB
}

func New(dsn string) (*Repo, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)

	r := &Repo{db: db}
	if err := r.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return r, nil
}

func (r *Repo) Close() error { return r.db.Close() }

func (r *Repo) migrate(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS flips (
  auction_id TEXT PRIMARY KEY,
  canonical_name TEXT NOT NULL,
  raw_name TEXT NOT NULL,
  price BIGINT NOT NULL,
  second_price BIGINT NOT NULL,
  margin BIGINT NOT NULL,
  snapshot_ts BIGINT NOT NULL,
  detected_at BIGINT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_flips_name ON flips(canonical_name);
CREATE INDEX IF NOT EXISTS idx_flips_snapshot ON flips(snapshot_ts);

CREATE TABLE IF NOT EXISTS totals (
  id INT PRIMARY KEY CHECK (id = 1),
  total_value BIGINT NOT NULL,
  total_profit BIGINT NOT NULL,
  updated_at BIGINT NOT NULL
);
`)
	return err
}

func (r *Repo) InsertFlip(ctx context.Context, ev model.FlipEvent) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO flips(auction_id, canonical_name, raw_name, price, second_price, margin, snapshot_ts, detected_at)
		VALUES($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT(auction_id) DO NOTHING
	`, ev.Cheapest.ID, ev.CanonicalName, ev.Cheapest.RawName, ev.Cheapest.Price, ev.Second.Price, ev.Margin, ev.SnapshotTs, ev.DetectedAt)
	return err
}

func (r *Repo) UpsertTotals(ctx context.Context, ts int64, totals model.RunningTotals) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO totals(id, total_value, total_profit, updated_at)
		VALUES(1, $1, $2, $3)
		ON CONFLICT(id) DO UPDATE SET
		total_value=excluded.total_value, total_profit=excluded.total_profit, updated_at=excluded.updated_at
	`, totals.Value, totals.Profit, ts)
	return err
}

var _ port.Repository = (*Repo)(nil)
