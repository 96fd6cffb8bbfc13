// Package rates maintains the process-wide currency exchange table.
// The table is populated at startup (or by an explicit refresh) and
// read-mostly afterwards: request threads take snapshots under a
// reader lock and never block each other, only a refresh in progress.
package rates

import (
	"sync"
	"time"
)

// Store holds currency rates keyed by ISO 4217 code, expressed as
// units per US dollar.
type Store struct {
	mu        sync.RWMutex
	rates     map[string]float64
	target    string
	fetchedAt time.Time
}

// Snapshot is a read-only view of the store resolved once per
// request, so the hot path never reads shared state ambiently.
type Snapshot struct {
	// Rates maps ISO code to units per US dollar.
	Rates map[string]float64
	// Target is the configured target currency, empty for none.
	Target string
	// FetchedAt is when the rates were obtained; zero when none are
	// loaded.
	FetchedAt time.Time
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{rates: make(map[string]float64)}
}

// SetTarget sets the process-wide target currency.
func (s *Store) SetTarget(code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.target = code
}

// SetRates replaces the rate table.
func (s *Store) SetRates(rates map[string]float64, fetchedAt time.Time) {
	cloned := make(map[string]float64, len(rates))
	for code, rate := range rates {
		if rate > 0 {
			cloned[code] = rate
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.rates = cloned
	s.fetchedAt = fetchedAt
}

// Snapshot returns a copy of the current table. The copy is owned by
// the caller; later refreshes do not affect it.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cloned := make(map[string]float64, len(s.rates))
	for code, rate := range s.rates {
		cloned[code] = rate
	}
	return Snapshot{Rates: cloned, Target: s.target, FetchedAt: s.fetchedAt}
}

// Len returns the number of loaded rates.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rates)
}
