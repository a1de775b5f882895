package model

// RunningTotals accumulate the value and profit of every reported flip over
// the process lifetime. They only ever grow.
type RunningTotals struct {
	Value  int64 `json:"total_value"`
	Profit int64 `json:"total_profit"`
}

// FlipEvent is one detected arbitrage opportunity: the cheapest listing of a
// group priced far below the second cheapest.
type FlipEvent struct {
	CanonicalName string  `json:"canonical_name"`
	Cheapest      Listing `json:"cheapest"`
	Second        Listing `json:"second"`
	Margin        int64   `json:"margin"`
	SnapshotTs    int64   `json:"snapshot_ts"` // freshness marker of the snapshot, unix ms
	DetectedAt    int64   `json:"detected_at"` // unix ms
}

// Reference is the in-game command that opens the winning auction.
func (e FlipEvent) Reference() string {
	return "/viewauction " + e.Cheapest.ID
}
