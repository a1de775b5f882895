package model

import "sort"

// Listing is one fixed-price auction as seen in a single snapshot. Immutable
// once fetched.
type Listing struct {
	Price   int64  `json:"price"`
	ID      string `json:"id"`
	RawName string `json:"raw_name"`
}

// ListingGroup collects every listing sharing one canonical name within one
// snapshot cycle. Listings are sorted ascending by price before detection,
// ties keep arrival order.
type ListingGroup struct {
	CanonicalName string    `json:"canonical_name"`
	Listings      []Listing `json:"listings"`
}

// Sort orders the group ascending by price. Stable so equal prices keep the
// order in which they were merged.
func (g *ListingGroup) Sort() {
	sort.SliceStable(g.Listings, func(i, j int) bool {
		return g.Listings[i].Price < g.Listings[j].Price
	})
}

// MarketSnapshot is one coherent view of the whole market at a single
// freshness marker. It is rebuilt from scratch every cycle and replaced
// wholesale, never merged across cycles.
type MarketSnapshot struct {
	LastUpdated int64 // source freshness marker, unix ms
	PageCount   int
	Groups      map[string]*ListingGroup
}

func NewMarketSnapshot(lastUpdated int64, pageCount int) *MarketSnapshot {
	return &MarketSnapshot{
		LastUpdated: lastUpdated,
		PageCount:   pageCount,
		Groups:      make(map[string]*ListingGroup),
	}
}

// Add appends a listing to its canonical group. Callers merging pages
// concurrently must serialize calls themselves.
func (s *MarketSnapshot) Add(canonicalName string, l Listing) {
	g := s.Groups[canonicalName]
	if g == nil {
		g = &ListingGroup{CanonicalName: canonicalName}
		s.Groups[canonicalName] = g
	}
	g.Listings = append(g.Listings, l)
}
