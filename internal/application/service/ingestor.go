package service

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"binflip/internal/application/port"
	"binflip/internal/domain/model"
	domainservice "binflip/internal/domain/service"

	"github.com/rs/zerolog/log"
)

// IngestFilters mirror the operator configuration: only buy-it-now listings
// in an allowed category survive, and canonical names on the exception list
// are dropped entirely.
type IngestFilters struct {
	Categories map[string]struct{}
	Exceptions map[string]struct{}
}

// PageFetchError marks a page that still failed after the source client's
// own retries. A single one aborts the whole ingestion cycle.
type PageFetchError struct {
	Page int
	Err  error
}

func (e *PageFetchError) Error() string {
	return fmt.Sprintf("page %d: %v", e.Page, e.Err)
}

func (e *PageFetchError) Unwrap() error { return e.Err }

// Ingestor rebuilds the full market snapshot from every page of the source
// using a bounded worker pool.
type Ingestor struct {
	src     port.PageSource
	norm    *domainservice.Normalizer
	filters IngestFilters
	workers int
}

func NewIngestor(src port.PageSource, norm *domainservice.Normalizer, filters IngestFilters, workers int) *Ingestor {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Ingestor{
		src:     src,
		norm:    norm,
		filters: filters,
		workers: workers,
	}
}

// Ingest fetches pages 0..pageCount inclusive and merges them into one
// snapshot. All-or-nothing: a page that fails after retries fails the whole
// call, cancels the remaining fetches and discards everything merged so far.
// Group sorting happens single-threaded after every fetch has joined.
func (ing *Ingestor) Ingest(ctx context.Context, lastUpdated int64, pageCount int) (*model.MarketSnapshot, error) {
	start := time.Now()
	snap := model.NewMarketSnapshot(lastUpdated, pageCount)
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(ing.workers)
	for page := 0; page <= pageCount; page++ {
		page := page
		g.Go(func() error {
			p, err := ing.src.FetchPage(ctx, page)
			if err != nil {
				return &PageFetchError{Page: page, Err: err}
			}
			ing.mergePage(snap, &mu, page, p)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, group := range snap.Groups {
		group.Sort()
	}

	log.Debug().
		Int("pages", pageCount+1).
		Int("groups", len(snap.Groups)).
		Dur("took", time.Since(start)).
		Msg("snapshot ingested")
	return snap, nil
}

func (ing *Ingestor) mergePage(snap *model.MarketSnapshot, mu *sync.Mutex, page int, p *port.AuctionPage) {
	kept := 0
	for _, a := range p.Auctions {
		if !a.BIN {
			continue
		}
		if _, ok := ing.filters.Categories[a.Category]; !ok {
			continue
		}
		canonical := ing.norm.Normalize(a.ItemName)
		if _, ok := ing.filters.Exceptions[canonical]; ok {
			continue
		}

		mu.Lock()
		snap.Add(canonical, model.Listing{
			Price:   a.StartingBid,
			ID:      a.UUID,
			RawName: a.ItemName,
		})
		mu.Unlock()
		kept++
	}
	log.Trace().Int("page", page).Int("kept", kept).Int("seen", len(p.Auctions)).Msg("page merged")
}
