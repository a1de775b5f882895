package redis

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"binflip/internal/application/port"
	"binflip/internal/domain/model"
)

// Repo publishes flips to a Redis stream and pubsub channel so other tools
// (buy bots, dashboards) can consume them live, and keeps the running totals
// in a hash.
type Repo struct {
	rdb        *redis.Client
	prefix     string
	ttl        time.Duration
	keyTotals  string
	flipStream string
	flipChan   string
}

func New(rdb *redis.Client, prefix string, ttl time.Duration, flipStream, flipChan string) *Repo {
	if strings.TrimSpace(flipStream) == "" {
		flipStream = prefix + ":flips"
	}
	if strings.TrimSpace(flipChan) == "" {
		flipChan = prefix + ":flips:pub"
	}
	return &Repo{
		rdb:        rdb,
		prefix:     prefix,
		ttl:        ttl,
		keyTotals:  prefix + ":totals",
		flipStream: flipStream,
		flipChan:   flipChan,
	}
}

func (r *Repo) InsertFlip(ctx context.Context, ev model.FlipEvent) error {
	// 1) Stream: XADD <stream> * ...
	_, err := r.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: r.flipStream,
		Values: map[string]any{
			"auction_id":     ev.Cheapest.ID,
			"canonical_name": ev.CanonicalName,
			"price":          ev.Cheapest.Price,
			"second_price":   ev.Second.Price,
			"margin":         ev.Margin,
			"snapshot_ts":    ev.SnapshotTs,
		},
	}).Result()
	if err != nil {
		return err
	}

	// 2) PubSub: PUBLISH <channel> json
	b, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return r.rdb.Publish(ctx, r.flipChan, string(b)).Err()
}

func (r *Repo) UpsertTotals(ctx context.Context, ts int64, totals model.RunningTotals) error {
	pipe := r.rdb.Pipeline()
	pipe.HSet(ctx, r.keyTotals, map[string]any{
		"total_value":  totals.Value,
		"total_profit": totals.Profit,
		"updated_at":   ts,
	})
	if r.ttl > 0 {
		pipe.Expire(ctx, r.keyTotals, r.ttl)
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (r *Repo) Close() error { return r.rdb.Close() }

var _ port.Repository = (*Repo)(nil)
