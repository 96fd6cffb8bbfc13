package rates

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func TestStoreSnapshotIsolation(t *testing.T) {
	s := NewStore()
	s.SetTarget("EUR")
	s.SetRates(map[string]float64{"EUR": 0.9}, time.Unix(1700000000, 0))

	snap := s.Snapshot()
	if snap.Target != "EUR" || snap.Rates["EUR"] != 0.9 {
		t.Fatalf("Snapshot() = %+v", snap)
	}

	// A later refresh must not leak into an existing snapshot.
	s.SetRates(map[string]float64{"EUR": 1.1}, time.Unix(1800000000, 0))
	if snap.Rates["EUR"] != 0.9 {
		t.Error("snapshot mutated by a later refresh")
	}

	// Mutating the snapshot must not leak into the store.
	snap.Rates["EUR"] = 42
	if s.Snapshot().Rates["EUR"] != 1.1 {
		t.Error("store mutated through a snapshot")
	}
}

func TestStoreDropsNonPositiveRates(t *testing.T) {
	s := NewStore()
	s.SetRates(map[string]float64{"EUR": 0.9, "BAD": 0, "WORSE": -1}, time.Now())
	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1 (non-positive rates dropped)", s.Len())
	}
}

func TestStoreConcurrentReaders(t *testing.T) {
	s := NewStore()
	s.SetRates(map[string]float64{"EUR": 0.9}, time.Now())

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if snap := s.Snapshot(); snap.Rates["EUR"] <= 0 {
					t.Error("reader observed invalid snapshot")
					return
				}
			}
		}()
	}
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				s.SetRates(map[string]float64{"EUR": 0.9}, time.Now())
			}
		}()
	}
	wg.Wait()
}

func TestFetcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"rates":{"EUR":0.9,"JPY":150}}`))
	}))
	defer srv.Close()

	f := NewFetcher(srv.URL)
	got, err := f.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	if got["EUR"] != 0.9 || got["JPY"] != 150 {
		t.Errorf("Fetch() = %v", got)
	}
}

func TestFetcherErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name:    "server error",
			handler: func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusBadGateway) },
		},
		{
			name:    "empty rates",
			handler: func(w http.ResponseWriter, r *http.Request) { w.Write([]byte(`{"rates":{}}`)) },
		},
		{
			name:    "not json",
			handler: func(w http.ResponseWriter, r *http.Request) { w.Write([]byte(`<html>`)) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()
			if _, err := NewFetcher(srv.URL).Fetch(context.Background()); err == nil {
				t.Error("Fetch() should fail")
			}
		})
	}
}

func TestCacheRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rates.db")
	c, err := OpenCache(path)
	if err != nil {
		t.Fatalf("OpenCache() error: %v", err)
	}
	defer c.Close()

	fetchedAt := time.Unix(1700000000, 0).UTC()
	if err := c.Save(map[string]float64{"EUR": 0.9, "JPY": 150}, fetchedAt); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	got, at, err := c.Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if got["EUR"] != 0.9 || got["JPY"] != 150 {
		t.Errorf("Load() = %v", got)
	}
	if !at.Equal(fetchedAt) {
		t.Errorf("Load() fetchedAt = %v, want %v", at, fetchedAt)
	}

	// A second save replaces, not appends.
	if err := c.Save(map[string]float64{"GBP": 0.8}, fetchedAt); err != nil {
		t.Fatalf("second Save() error: %v", err)
	}
	got, _, err = c.Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(got) != 1 || got["GBP"] != 0.8 {
		t.Errorf("Load() after replace = %v", got)
	}
}

func TestCacheLoadEmpty(t *testing.T) {
	c, err := OpenCache(filepath.Join(t.TempDir(), "rates.db"))
	if err != nil {
		t.Fatalf("OpenCache() error: %v", err)
	}
	defer c.Close()

	if _, _, err := c.Load(); err == nil {
		t.Error("Load() on empty cache should fail")
	}
}

func TestRefreshFallsBackToCache(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rates.db")
	c, err := OpenCache(path)
	if err != nil {
		t.Fatalf("OpenCache() error: %v", err)
	}
	defer c.Close()
	if err := c.Save(map[string]float64{"EUR": 0.9}, time.Unix(1700000000, 0)); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	store := NewStore()
	if err := Refresh(context.Background(), store, NewFetcher(srv.URL), c); err != nil {
		t.Fatalf("Refresh() should fall back to cache, got error: %v", err)
	}
	if store.Snapshot().Rates["EUR"] != 0.9 {
		t.Error("store should carry cached rates after fallback")
	}
}
