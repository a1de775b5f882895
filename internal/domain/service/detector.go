package service

import (
	"time"

	"binflip/internal/domain/model"
)

// DetectorConfig are the thresholds applied to every listing group.
type DetectorConfig struct {
	MinPrice  int64 // cheapest listing must be worth at least this
	MinMargin int64 // absolute floor for second - cheapest
	MinSupply int   // groups with fewer listings are skipped
}

// Detector applies the flip rule to finished snapshots. It owns the
// process-lifetime set of already-reported auction ids and the running
// totals, so the same bargain is alerted at most once even when it stays
// listed across many cycles. Must be driven from a single goroutine.
type Detector struct {
	cfg      DetectorConfig
	reported map[string]struct{}
	totals   model.RunningTotals
}

func NewDetector(cfg DetectorConfig) *Detector {
	return &Detector{
		cfg:      cfg,
		reported: make(map[string]struct{}),
	}
}

// Detect walks every group of the snapshot and emits one event per newly
// found flip. A flip requires the margin to beat both the relative rule
// (more than 10% of the second price) and the configured absolute minimum.
// Side effects per group (dedup entry, totals) are applied atomically with
// the emitted event and are never rolled back.
func (d *Detector) Detect(snap *model.MarketSnapshot) []model.FlipEvent {
	now := time.Now().UnixMilli()

	var events []model.FlipEvent
	for name, group := range snap.Groups {
		listings := group.Listings
		if len(listings) < d.cfg.MinSupply {
			continue
		}

		cheapest := listings[0]
		if _, seen := d.reported[cheapest.ID]; seen || cheapest.Price < d.cfg.MinPrice {
			continue
		}
		if len(listings) < 2 {
			// margin undefined without a second listing
			continue
		}

		second := listings[1]
		margin := second.Price - cheapest.Price

		// margin*10 > price is the exact integer form of margin > price/10
		if margin*10 > second.Price && margin > d.cfg.MinMargin {
			d.reported[cheapest.ID] = struct{}{}
			d.totals.Profit += margin
			d.totals.Value += cheapest.Price

			events = append(events, model.FlipEvent{
				CanonicalName: name,
				Cheapest:      cheapest,
				Second:        second,
				Margin:        margin,
				SnapshotTs:    snap.LastUpdated,
				DetectedAt:    now,
			})
		}
	}
	return events
}

// Totals returns a copy of the running totals.
func (d *Detector) Totals() model.RunningTotals {
	return d.totals
}

// ReportedCount is the size of the dedup set.
func (d *Detector) ReportedCount() int {
	return len(d.reported)
}
