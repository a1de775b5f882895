package port

import (
	"context"

	"binflip/internal/domain/model"
)

// Repository journals emitted flips and the running totals.
type Repository interface {
	InsertFlip(ctx context.Context, ev model.FlipEvent) error
	UpsertTotals(ctx context.Context, ts int64, totals model.RunningTotals) error
	Close() error
}
