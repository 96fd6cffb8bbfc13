package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	apperrors "github.com/tokenlens/tokenlens/core/errors"
	"github.com/tokenlens/tokenlens/internal/logging"
)

// DefaultURL is the public rate endpoint queried when no other source
// is configured. The response shape is {"rates": {"EUR": 0.9, ...}}
// with rates denominated in units per US dollar.
const DefaultURL = "https://open.er-api.com/v6/latest/USD"

// FetchTimeout bounds one rate fetch. Rate retrieval is analyzer-side
// I/O and must carry a provable bound.
const FetchTimeout = 15 * time.Second

// Fetcher retrieves rates over HTTP.
type Fetcher struct {
	URL    string
	Client *http.Client
}

// NewFetcher creates a fetcher for the given endpoint; empty means
// DefaultURL.
func NewFetcher(url string) *Fetcher {
	if url == "" {
		url = DefaultURL
	}
	return &Fetcher{
		URL:    url,
		Client: &http.Client{Timeout: FetchTimeout},
	}
}

// rateResponse is the subset of the endpoint response consumed here.
type rateResponse struct {
	Rates map[string]float64 `json:"rates"`
}

// Fetch retrieves the current rate table.
func (f *Fetcher) Fetch(ctx context.Context) (map[string]float64, error) {
	ctx, cancel := context.WithTimeout(ctx, FetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.URL, nil)
	if err != nil {
		return nil, apperrors.Wrap(err, "building rate request")
	}

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrUnavailable, "rate fetch from %s: %v", f.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.Wrapf(apperrors.ErrUnavailable, "rate endpoint returned %d", resp.StatusCode)
	}

	var decoded rateResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, apperrors.Wrap(err, "decoding rate response")
	}
	if len(decoded.Rates) == 0 {
		return nil, fmt.Errorf("rate response carried no rates: %w", apperrors.ErrUnavailable)
	}
	return decoded.Rates, nil
}

// Refresh fetches fresh rates into the store, persisting them to the
// cache when one is given. On fetch failure it falls back to the last
// cached table; an absent rate is a configuration absence, never an
// error surfaced to interpretation.
func Refresh(ctx context.Context, store *Store, fetcher *Fetcher, cache *Cache) error {
	fetched, err := fetcher.Fetch(ctx)
	if err == nil {
		now := time.Now().UTC()
		store.SetRates(fetched, now)
		logging.RateRefresh(fetcher.URL, len(fetched))
		if cache != nil {
			if cacheErr := cache.Save(fetched, now); cacheErr != nil {
				logging.Warn("rate cache save failed", "error", cacheErr)
			}
		}
		return nil
	}

	if cache != nil {
		cached, fetchedAt, cacheErr := cache.Load()
		if cacheErr == nil && len(cached) > 0 {
			store.SetRates(cached, fetchedAt)
			logging.RateRefresh("cache", len(cached), "stale_since", fetchedAt)
			return nil
		}
	}
	return err
}
