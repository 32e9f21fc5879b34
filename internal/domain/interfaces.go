package domain

import (
	"context"
	"time"
)

// QuoteProvider fetches a single gold quote from an upstream source.
// Implementations must issue at most one outbound request per call.
type QuoteProvider interface {
	FetchQuote(ctx context.Context) (Quote, error)
}

// PriceReader is the read side of the price cache as seen by the transport layer.
// Snapshot returns a record and its age in minutes from a single read; use it
// whenever both are needed together.
type PriceReader interface {
	Snapshot() (PriceRecord, float64, bool)
	CachedData() (PriceRecord, bool)
	TimeSinceLastUpdate() (float64, bool)
	LastUpdated() (time.Time, bool)
}

// PriceRefresher triggers an on-demand refresh
type PriceRefresher interface {
	Refresh(ctx context.Context) error
}
