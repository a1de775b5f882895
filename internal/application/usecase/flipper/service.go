package flipper

import (
	"context"
	"time"

	"binflip/internal/application/port"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog/log"
)

// Service is the top-level poll loop: probe the source's freshness marker,
// re-ingest when it moves, run detection over the finished snapshot and fan
// the events out. Cycles are strictly sequential; only the page fetches
// inside one cycle run in parallel.
type Service struct {
	deps ServiceDeps

	// freshness marker of the last fully ingested snapshot. Advances only
	// after a successful ingest so a failed cycle retries the same generation.
	lastProcessed int64
}

func NewService(deps ServiceDeps) *Service {
	return &Service{deps: deps}
}

// Run loops until ctx is cancelled. A probe failure retries after a short
// fixed pause; an unchanged marker sleeps out the remainder of the source's
// refresh interval; a new marker triggers a full cycle.
func (s *Service) Run(ctx context.Context) error {
	log.Info().Msg("flipper loop started")

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		probe, err := s.deps.Source.FetchPage(ctx, 0)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Warn().Err(err).Msg("market probe failed")
			if !sleep(ctx, s.deps.ProbeRetryWait) {
				return ctx.Err()
			}
			continue
		}

		if probe.LastUpdated == s.lastProcessed {
			elapsed := time.Since(time.UnixMilli(s.lastProcessed))
			if wait := s.deps.RefreshInterval - elapsed; wait > 0 {
				log.Debug().Dur("wait", wait).Msg("market unchanged, sleeping until next expected update")
				if !sleep(ctx, wait) {
					return ctx.Err()
				}
			}
			continue
		}

		s.runCycle(ctx, probe)
	}
}

func (s *Service) runCycle(ctx context.Context, probe *port.AuctionPage) {
	start := time.Now()
	log.Info().Int64("last_updated", probe.LastUpdated).Int("pages", probe.TotalPages+1).Msg("market updated")

	snap, err := s.deps.Ingestor.Ingest(ctx, probe.LastUpdated, probe.TotalPages)
	if err != nil {
		// marker stays put so the next tick retries this same generation
		log.Error().Err(err).Int64("last_updated", probe.LastUpdated).Msg("ingest failed, snapshot discarded")
		return
	}
	s.lastProcessed = probe.LastUpdated

	events := s.deps.Detector.Detect(snap)
	for _, ev := range events {
		s.dispatch(ctx, ev)
	}

	totals := s.deps.Detector.Totals()
	if s.deps.Repo != nil {
		go func() {
			if err := s.deps.Repo.UpsertTotals(ctx, snap.LastUpdated, totals); err != nil {
				log.Warn().Err(err).Msg("totals journal update failed")
			}
		}()
	}

	log.Info().
		Int("groups", len(snap.Groups)).
		Int("flips", len(events)).
		Str("total_value", humanize.Comma(totals.Value)).
		Str("total_profit", humanize.Comma(totals.Profit)).
		Dur("took", time.Since(start)).
		Msg("cycle finished")
}

// sleep waits for d or until ctx is cancelled; false means cancelled.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
