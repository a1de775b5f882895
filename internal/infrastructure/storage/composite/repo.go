package composite

import (
	"context"

	"binflip/internal/application/port"
	"binflip/internal/domain/model"
)

// Repo fans every journal write out to all enabled backends. The first error
// wins but the remaining backends still get the write.
type Repo struct {
	repos []port.Repository
}

func New(repos ...port.Repository) *Repo {
	// nil repos are allowed; filter in constructor for safety
	out := make([]port.Repository, 0, len(repos))
	for _, r := range repos {
		if r != nil {
			out = append(out, r)
		}
	}
	return &Repo{repos: out}
}

func (r *Repo) InsertFlip(ctx context.Context, ev model.FlipEvent) error {
	var firstErr error
	for _, repo := range r.repos {
		if err := repo.InsertFlip(ctx, ev); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (r *Repo) UpsertTotals(ctx context.Context, ts int64, totals model.RunningTotals) error {
	var firstErr error
	for _, repo := range r.repos {
		if err := repo.UpsertTotals(ctx, ts, totals); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (r *Repo) Close() error {
	var firstErr error
	for _, repo := range r.repos {
		if err := repo.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

var _ port.Repository = (*Repo)(nil)
