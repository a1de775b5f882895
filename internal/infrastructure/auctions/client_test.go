package auctions

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

const pageBody = `{
	"lastUpdated": 1700000000000,
	"totalPages": 3,
	"auctions": [
		{"bin": true, "category": "weapon", "starting_bid": 5000, "uuid": "u1", "item_name": "Sharp Hyperion"},
		{"bin": false, "category": "weapon", "starting_bid": 1, "uuid": "u2", "item_name": "Hyperion"}
	]
}`

func TestFetchPageParsesPayload(t *testing.T) {
	var gotPage atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPage.Store(r.URL.Query().Get("page"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(pageBody))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 2*time.Second, 0)
	p, err := c.FetchPage(context.Background(), 2)
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}

	if gotPage.Load() != "2" {
		t.Errorf("expected page=2 query, got %v", gotPage.Load())
	}
	if p.LastUpdated != 1700000000000 || p.TotalPages != 3 {
		t.Errorf("bad header fields: %+v", p)
	}
	if len(p.Auctions) != 2 {
		t.Fatalf("expected 2 auctions, got %d", len(p.Auctions))
	}
	a := p.Auctions[0]
	if !a.BIN || a.Category != "weapon" || a.StartingBid != 5000 || a.UUID != "u1" || a.ItemName != "Sharp Hyperion" {
		t.Errorf("bad auction: %+v", a)
	}
}

func TestFetchPageRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "boom", http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(pageBody))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 2*time.Second, 2)
	if _, err := c.FetchPage(context.Background(), 0); err != nil {
		t.Fatalf("expected retry to recover, got %v", err)
	}
	if calls.Load() != 2 {
		t.Errorf("expected 2 calls, got %d", calls.Load())
	}
}

func TestFetchPageReportsTerminalFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, 1)
	if _, err := c.FetchPage(context.Background(), 0); err == nil {
		t.Fatal("expected error after retries exhausted")
	}
}
