package currency

import (
	"context"
	"log/slog"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/splitplan/splitplan/internal/metrics"
)

// DefaultTTL is how long a fetched rate table stays valid.
const DefaultTTL = 6 * time.Hour

// Conversion is the result of normalizing an amount into a base currency.
type Conversion struct {
	// Amount is the normalized amount, rounded to 2 decimal places. When
	// Converted is false it is the original amount unchanged.
	Amount float64

	// Rate is the rate applied: units of source currency per one unit of
	// base currency. 1 for same-currency conversions, 0 when no rate was
	// available.
	Rate float64

	// Converted is false when the rate table was unavailable or missing
	// the source currency and the amount fell back unchanged.
	Converted bool
}

type cachedTable struct {
	rates     map[string]float64
	fetchedAt time.Time
}

// Converter normalizes amounts into a base currency using a process-wide
// rate cache, one table per base currency, refreshed lazily on expiry.
// Safe for concurrent use; concurrent refreshers race benignly and the last
// writer wins, since each table is fetched atomically.
type Converter struct {
	provider RateProvider
	ttl      time.Duration
	now      func() time.Time

	mu    sync.Mutex
	cache map[string]cachedTable
}

// NewConverter creates a Converter with the given provider and cache TTL.
func NewConverter(provider RateProvider, ttl time.Duration) *Converter {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Converter{
		provider: provider,
		ttl:      ttl,
		now:      time.Now,
		cache:    make(map[string]cachedTable),
	}
}

// ToBase converts amount from the source currency into the base currency.
// The conversion rule matches a base-denominated rate table: if 1 EUR buys
// 150 JPY then 1500 JPY normalizes to 1500/150 = 10 EUR.
//
// Failure degrades: if no rate is available the original amount is returned
// with Converted=false, never an error. Callers must surface the flag rather
// than claim an accurate conversion.
func (c *Converter) ToBase(ctx context.Context, amount float64, source, base string) Conversion {
	source = strings.ToUpper(source)
	base = strings.ToUpper(base)

	if source == base {
		return Conversion{Amount: amount, Rate: 1, Converted: true}
	}

	rates := c.ratesFor(ctx, base)
	rate, ok := rates[source]
	if !ok || rate <= 0 {
		slog.Warn("Currency conversion unavailable, keeping original amount",
			"source", source,
			"base", base,
			"amount", amount,
		)
		return Conversion{Amount: amount, Rate: 0, Converted: false}
	}

	return Conversion{
		Amount:    math.Round(amount/rate*100) / 100,
		Rate:      rate,
		Converted: true,
	}
}

// ratesFor returns the cached table for base, refreshing it when stale.
// Returns nil when no table could be fetched.
func (c *Converter) ratesFor(ctx context.Context, base string) map[string]float64 {
	c.mu.Lock()
	cached, ok := c.cache[base]
	c.mu.Unlock()

	if ok && c.now().Sub(cached.fetchedAt) < c.ttl {
		metrics.CurrencyCacheHits.Inc()
		return cached.rates
	}
	metrics.CurrencyCacheMisses.Inc()

	rates, err := c.provider.FetchRates(ctx, base)
	if err != nil {
		metrics.CurrencyFetchFailures.Inc()
		slog.Warn("Rate table fetch failed", "base", base, "error", err)
		// Serve the stale table if there is one; stale beats unconverted.
		if ok {
			return cached.rates
		}
		return nil
	}

	c.mu.Lock()
	c.cache[base] = cachedTable{rates: rates, fetchedAt: c.now()}
	c.mu.Unlock()
	return rates
}
