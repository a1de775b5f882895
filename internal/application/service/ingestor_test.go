package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"binflip/internal/application/port"
	domainservice "binflip/internal/domain/service"
)

type fakeSource struct {
	mu       sync.Mutex
	pages    map[int]*port.AuctionPage
	failPage int // -1 disables
	fetched  map[int]int
}

func newFakeSource(pages map[int]*port.AuctionPage) *fakeSource {
	return &fakeSource{pages: pages, failPage: -1, fetched: make(map[int]int)}
}

func (f *fakeSource) FetchPage(ctx context.Context, page int) (*port.AuctionPage, error) {
	f.mu.Lock()
	f.fetched[page]++
	f.mu.Unlock()

	if page == f.failPage {
		return nil, errors.New("connection reset")
	}
	p, ok := f.pages[page]
	if !ok {
		return nil, fmt.Errorf("no such page %d", page)
	}
	return p, nil
}

func bin(name, uuid string, price int64) port.RawAuction {
	return port.RawAuction{BIN: true, Category: "weapon", StartingBid: price, UUID: uuid, ItemName: name}
}

func testFilters() IngestFilters {
	return IngestFilters{
		Categories: map[string]struct{}{"weapon": {}},
		Exceptions: map[string]struct{}{"Enchanted Book": {}},
	}
}

func TestIngestGroupsSortedByPrice(t *testing.T) {
	src := newFakeSource(map[int]*port.AuctionPage{
		0: {LastUpdated: 77, TotalPages: 1, Auctions: []port.RawAuction{
			bin("Hyperion", "u3", 9000),
			bin("Sharp Hyperion", "u1", 5000),
		}},
		1: {Auctions: []port.RawAuction{
			bin("Heroic Hyperion ✪✪", "u2", 7000),
		}},
	})

	ing := NewIngestor(src, domainservice.NewNormalizer(), testFilters(), 4)
	snap, err := ing.Ingest(context.Background(), 77, 1)
	if err != nil {
		t.Fatalf("ingest failed: %v", err)
	}

	group := snap.Groups["Hyperion"]
	if group == nil {
		t.Fatal("expected Hyperion group")
	}
	if len(group.Listings) != 3 {
		t.Fatalf("expected 3 listings, got %d", len(group.Listings))
	}
	for i, wantID := range []string{"u1", "u2", "u3"} {
		if group.Listings[i].ID != wantID {
			t.Errorf("position %d: got %s, want %s", i, group.Listings[i].ID, wantID)
		}
	}
}

func TestIngestStableTies(t *testing.T) {
	src := newFakeSource(map[int]*port.AuctionPage{
		0: {Auctions: []port.RawAuction{
			bin("Hyperion", "first", 5000),
			bin("Hyperion", "second", 5000),
			bin("Hyperion", "cheaper", 4000),
		}},
	})

	ing := NewIngestor(src, domainservice.NewNormalizer(), testFilters(), 1)
	snap, err := ing.Ingest(context.Background(), 1, 0)
	if err != nil {
		t.Fatalf("ingest failed: %v", err)
	}

	got := snap.Groups["Hyperion"].Listings
	want := []string{"cheaper", "first", "second"}
	for i := range want {
		if got[i].ID != want[i] {
			t.Errorf("position %d: got %s, want %s", i, got[i].ID, want[i])
		}
	}
}

func TestIngestFilters(t *testing.T) {
	src := newFakeSource(map[int]*port.AuctionPage{
		0: {Auctions: []port.RawAuction{
			{BIN: false, Category: "weapon", StartingBid: 100, UUID: "auction-style", ItemName: "Hyperion"},
			{BIN: true, Category: "pets", StartingBid: 100, UUID: "wrong-category", ItemName: "Hyperion"},
			bin("Sharp Enchanted Book", "excepted", 100),
			bin("Hyperion", "kept", 100),
		}},
	})

	ing := NewIngestor(src, domainservice.NewNormalizer(), testFilters(), 2)
	snap, err := ing.Ingest(context.Background(), 1, 0)
	if err != nil {
		t.Fatalf("ingest failed: %v", err)
	}

	if len(snap.Groups) != 1 {
		t.Fatalf("expected exactly one group, got %d", len(snap.Groups))
	}
	group := snap.Groups["Hyperion"]
	if group == nil || len(group.Listings) != 1 || group.Listings[0].ID != "kept" {
		t.Fatalf("expected only the 'kept' listing, got %+v", snap.Groups)
	}
}

func TestIngestAllOrNothing(t *testing.T) {
	pages := make(map[int]*port.AuctionPage)
	for i := 0; i <= 4; i++ {
		pages[i] = &port.AuctionPage{Auctions: []port.RawAuction{
			bin("Hyperion", fmt.Sprintf("u%d", i), int64(1000*(i+1))),
		}}
	}
	src := newFakeSource(pages)
	src.failPage = 3

	ing := NewIngestor(src, domainservice.NewNormalizer(), testFilters(), 2)
	snap, err := ing.Ingest(context.Background(), 1, 4)
	if err == nil {
		t.Fatal("expected ingest to fail")
	}
	if snap != nil {
		t.Fatal("partial snapshot exposed after page failure")
	}

	var pferr *PageFetchError
	if !errors.As(err, &pferr) {
		t.Fatalf("expected PageFetchError, got %T: %v", err, err)
	}
	if pferr.Page != 3 {
		t.Errorf("expected failing page 3, got %d", pferr.Page)
	}
}

func TestIngestThenDetectExample(t *testing.T) {
	// settings {min_price: 1000, min_flip: 500, min_supply: 2}, one page with
	// two bin listings of one item priced 5000 and 10000
	src := newFakeSource(map[int]*port.AuctionPage{
		0: {LastUpdated: 42, Auctions: []port.RawAuction{
			bin("Hyperion", "cheap", 5000),
			bin("Hyperion", "pricey", 10000),
		}},
	})

	ing := NewIngestor(src, domainservice.NewNormalizer(), testFilters(), 2)
	snap, err := ing.Ingest(context.Background(), 42, 0)
	if err != nil {
		t.Fatalf("ingest failed: %v", err)
	}

	det := domainservice.NewDetector(domainservice.DetectorConfig{
		MinPrice:  1000,
		MinMargin: 500,
		MinSupply: 2,
	})
	events := det.Detect(snap)
	if len(events) != 1 {
		t.Fatalf("expected 1 flip, got %d", len(events))
	}
	ev := events[0]
	if ev.Margin != 5000 || ev.Cheapest.ID != "cheap" || ev.Second.ID != "pricey" {
		t.Errorf("unexpected event: %+v", ev)
	}
	if ev.SnapshotTs != 42 {
		t.Errorf("expected snapshot ts 42, got %d", ev.SnapshotTs)
	}

	totals := det.Totals()
	if totals.Profit != 5000 || totals.Value != 5000 {
		t.Errorf("unexpected totals: %+v", totals)
	}

	// the same listing never fires twice
	if again := det.Detect(snap); len(again) != 0 {
		t.Errorf("duplicate flip on re-detect: %d", len(again))
	}
}
