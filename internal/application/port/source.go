package port

import "context"

// RawAuction is one listing exactly as the source reports it.
type RawAuction struct {
	BIN         bool   `json:"bin"`
	Category    string `json:"category"`
	StartingBid int64  `json:"starting_bid"`
	UUID        string `json:"uuid"`
	ItemName    string `json:"item_name"`
}

// AuctionPage is one page of the paginated market snapshot. Page 0 doubles
// as the freshness probe: the scheduler only reads LastUpdated and TotalPages
// from it.
type AuctionPage struct {
	LastUpdated int64        `json:"lastUpdated"`
	TotalPages  int          `json:"totalPages"`
	Auctions    []RawAuction `json:"auctions"`
}

// PageSource fetches one page of listings from the external market endpoint.
// Implementations retry transient failures themselves; an error returned here
// means the page is definitively missing for this cycle.
type PageSource interface {
	FetchPage(ctx context.Context, page int) (*AuctionPage, error)
}
