package service

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"gold_price/internal/domain"
	"gold_price/internal/infra"

	"golang.org/x/sync/singleflight"
)

const refreshKey = "gold"

// PriceCache owns the single cached gold quote.
// The record and its timestamp live in one immutable value swapped atomically,
// so readers never see a price paired with another fetch's timestamp.
type PriceCache struct {
	provider domain.QuoteProvider
	metrics  *infra.Metrics
	onUpdate func(domain.PriceRecord)
	now      func() time.Time

	current atomic.Pointer[domain.PriceRecord]

	// sf guarantees at most one upstream fetch in flight; late callers share its result
	sf singleflight.Group
}

// NewPriceCache creates an empty (cold) cache. onUpdate, if not nil, is called
// after every successful refresh with the new record.
func NewPriceCache(provider domain.QuoteProvider, metrics *infra.Metrics, onUpdate func(domain.PriceRecord)) *PriceCache {
	if metrics == nil {
		metrics = infra.NewMetrics()
	}
	return &PriceCache{
		provider: provider,
		metrics:  metrics,
		onUpdate: onUpdate,
		now:      time.Now,
	}
}

// Initialize performs the blocking first fetch
func (c *PriceCache) Initialize(ctx context.Context) error {
	slog.Info("Fetching initial gold price...")

	if err := c.Refresh(ctx); err != nil {
		return &domain.InitializationError{Err: err}
	}

	rec, _ := c.CachedData()
	slog.Info("Gold price cache initialized",
		slog.String("price", rec.Price.String()),
		slog.Time("fetched_at", rec.FetchedAt),
	)
	return nil
}

// Refresh fetches a fresh quote and replaces the cached record on success.
// On failure the cache is left untouched and a *domain.UpstreamFetchError is returned.
// Callers arriving while a fetch is in flight wait for it and get its result.
func (c *PriceCache) Refresh(ctx context.Context) error {
	led := false
	_, err, shared := c.sf.Do(refreshKey, func() (any, error) {
		led = true
		// A caller giving up must not fail the fetch for the others waiting on it
		return nil, c.fetch(context.WithoutCancel(ctx))
	})
	if shared && !led {
		c.metrics.RecordCoalesced()
	}
	return err
}

func (c *PriceCache) fetch(ctx context.Context) error {
	err := c.doFetch(ctx)
	c.metrics.RecordRefresh(err)
	return err
}

func (c *PriceCache) doFetch(ctx context.Context) error {
	q, err := c.provider.FetchQuote(ctx)
	if err != nil {
		var upstream *domain.UpstreamFetchError
		if !errors.As(err, &upstream) {
			err = &domain.UpstreamFetchError{Op: domain.OpRequest, Err: err}
		}
		return err
	}

	rec, err := domain.NewPriceRecord(q, c.now())
	if err != nil {
		return &domain.UpstreamFetchError{Op: domain.OpValidate, Err: err}
	}

	old := c.current.Swap(&rec)

	attrs := []any{slog.String("price", rec.Price.String())}
	if old != nil {
		attrs = append(attrs, slog.String("old_price", old.Price.String()))
	}
	slog.Info("Gold price updated", attrs...)

	if c.onUpdate != nil {
		c.onUpdate(rec)
	}
	return nil
}

// CachedData returns the current record, or false if the cache is still cold
func (c *PriceCache) CachedData() (domain.PriceRecord, bool) {
	rec := c.current.Load()
	if rec == nil {
		return domain.PriceRecord{}, false
	}
	return *rec, true
}

// LastUpdated returns when the cached record was fetched
func (c *PriceCache) LastUpdated() (time.Time, bool) {
	rec := c.current.Load()
	if rec == nil {
		return time.Time{}, false
	}
	return rec.FetchedAt, true
}

// TimeSinceLastUpdate returns the age of the cached record in fractional minutes
func (c *PriceCache) TimeSinceLastUpdate() (float64, bool) {
	rec := c.current.Load()
	if rec == nil {
		return 0, false
	}
	return c.age(rec), true
}

// Snapshot returns the cached record and its age, both taken from one load
func (c *PriceCache) Snapshot() (domain.PriceRecord, float64, bool) {
	rec := c.current.Load()
	if rec == nil {
		return domain.PriceRecord{}, 0, false
	}
	return *rec, c.age(rec), true
}

func (c *PriceCache) age(rec *domain.PriceRecord) float64 {
	elapsed := c.now().Sub(rec.FetchedAt)
	if elapsed < 0 {
		elapsed = 0
	}
	return elapsed.Minutes()
}
