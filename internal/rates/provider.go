// Package rates loads the exchange-rate snapshot produced by the refresh job.
package rates

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"strings"
	"time"

	"sjsage522/pricecontext/helpers"
	"sjsage522/pricecontext/internal/currency"
	"sjsage522/pricecontext/logger"
	"sjsage522/pricecontext/pkg/errors"
	"sjsage522/pricecontext/services/cache"
)

// Snapshot is the document written by the refresh job
type Snapshot struct {
	UpdatedAt time.Time          `json:"updatedAt"`
	Rates     map[string]float64 `json:"rates"`
}

// FetchFunc retrieves raw snapshot bytes from a URL
type FetchFunc func(ctx context.Context, url string) ([]byte, error)

// Provider loads a RateTable from a snapshot location.
// Validated snapshot bytes are cached so that page sessions share one fetch per TTL.
type Provider struct {
	URL      string
	CacheSvc cache.CacheService
	TTL      time.Duration
	fetch    FetchFunc
}

// NewProvider creates a provider for the snapshot at url. The url is either an
// http(s) URL or a local file path.
func NewProvider(url string, cacheSvc cache.CacheService, ttl time.Duration) *Provider {
	return &Provider{
		URL:      url,
		CacheSvc: cacheSvc,
		TTL:      ttl,
		fetch:    helpers.FetchSimplyContext,
	}
}

// Load returns the current rate table. On any failure it returns an empty
// table along with the error, so callers can keep running without conversions.
func (p *Provider) Load(ctx context.Context) (currency.RateTable, error) {
	log := logger.ForRates()
	empty := currency.NewRateTable(nil)

	if table, snapshot, ok := p.cached(); ok {
		log.Debug().Time("updated_at", snapshot.UpdatedAt).Msg("Rate snapshot served from cache")
		return table, nil
	}

	data, err := p.read(ctx)
	if err != nil {
		return empty, err
	}

	table, snapshot, err := Decode(data)
	if err != nil {
		return empty, err
	}
	p.store(data)

	log.Info().
		Int("codes", table.Len()).
		Time("updated_at", snapshot.UpdatedAt).
		Msg("Exchange rates loaded")
	return table, nil
}

// cached returns the cached snapshot if it is present and still decodes
func (p *Provider) cached() (currency.RateTable, Snapshot, bool) {
	if p.CacheSvc == nil {
		return currency.RateTable{}, Snapshot{}, false
	}

	data, err := p.CacheSvc.Get(p.cacheKey())
	if err != nil || len(data) == 0 {
		return currency.RateTable{}, Snapshot{}, false
	}

	table, snapshot, err := Decode(data)
	if err != nil {
		logger.ForRates().Warn().Err(err).Msg("Ignoring unusable cached rate snapshot")
		return currency.RateTable{}, Snapshot{}, false
	}
	return table, snapshot, true
}

func (p *Provider) store(data []byte) {
	if p.CacheSvc == nil || p.TTL <= 0 {
		return
	}
	if err := p.CacheSvc.Set(p.cacheKey(), data, p.TTL); err != nil {
		logger.ForRates().Warn().Err(err).Msg("Failed to cache rate snapshot")
	}
}

func (p *Provider) read(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.NewDataUnavailable("rates", "load cancelled", err)
	}

	if isRemote(p.URL) {
		data, err := p.fetch(ctx, p.URL)
		if err != nil {
			return nil, errors.NewNetwork("rates", "failed to fetch rate snapshot", err)
		}
		return data, nil
	}

	data, err := os.ReadFile(p.URL)
	if err != nil {
		return nil, errors.NewDataUnavailable("rates", "failed to read rate snapshot", err)
	}
	return data, nil
}

func (p *Provider) cacheKey() string {
	sum := sha256.Sum256([]byte(p.URL))
	return "rates:" + hex.EncodeToString(sum[:8])
}

func isRemote(url string) bool {
	return strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://")
}

// Decode parses a snapshot document and builds its rate table.
// A document without a "rates" object, or one without any valid entry, is
// reported as data-unavailable.
func Decode(data []byte) (currency.RateTable, Snapshot, error) {
	var raw struct {
		UpdatedAt string                     `json:"updatedAt"`
		Rates     map[string]json.RawMessage `json:"rates"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return currency.NewRateTable(nil), Snapshot{}, errors.NewParsing("rates", "malformed rate snapshot", err)
	}
	if raw.Rates == nil {
		return currency.NewRateTable(nil), Snapshot{}, errors.NewDataUnavailable("rates", `rate snapshot has no "rates" object`, nil)
	}

	snapshot := Snapshot{Rates: make(map[string]float64, len(raw.Rates))}
	if raw.UpdatedAt != "" {
		if ts, err := time.Parse(time.RFC3339, raw.UpdatedAt); err == nil {
			snapshot.UpdatedAt = ts
		}
	}

	for code, value := range raw.Rates {
		var rate float64
		if err := json.Unmarshal(value, &rate); err != nil {
			continue
		}
		snapshot.Rates[code] = rate
	}

	table := currency.NewRateTable(snapshot.Rates)
	if table.Empty() {
		return table, snapshot, errors.NewDataUnavailable("rates", "rate snapshot has no usable entries", nil)
	}
	return table, snapshot, nil
}
