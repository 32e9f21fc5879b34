package domain

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

const (
	// CurrencyUSD is the only quote currency served by this deployment
	CurrencyUSD = "USD"
	// UnitTroyOunce is the unit the upstream quotes gold in
	UnitTroyOunce = "troy_ounce"
	// GoldFuturesSymbol is the Yahoo Finance ticker for COMEX gold futures
	GoldFuturesSymbol = "GC=F"
)

// gramsPerTroyOunce is exact by definition of the troy ounce.
var gramsPerTroyOunce = decimal.RequireFromString("31.1034768")

// Quote is a raw upstream answer before validation
type Quote struct {
	Price         float64 // Price per troy ounce as reported upstream
	PreviousClose float64 // 0 when the upstream does not report it
	Currency      string
	Symbol        string
}

// PriceRecord is one validated gold quote. Values are immutable once built.
type PriceRecord struct {
	Price         decimal.Decimal `json:"price"`
	PreviousClose decimal.Decimal `json:"previous_close"`
	Currency      string          `json:"currency"`
	Unit          string          `json:"unit"`
	Symbol        string          `json:"symbol"`
	FetchedAt     time.Time       `json:"fetched_at"`
}

// NewPriceRecord validates q and stamps it with fetchedAt.
// Zero, negative, NaN and infinite prices are rejected with ErrInvalidPrice.
func NewPriceRecord(q Quote, fetchedAt time.Time) (PriceRecord, error) {
	if !ValidPrice(q.Price) {
		return PriceRecord{}, ErrInvalidPrice
	}
	if q.Currency != "" && q.Currency != CurrencyUSD {
		return PriceRecord{}, ErrUnexpectedCurrency
	}

	rec := PriceRecord{
		Price:     decimal.NewFromFloat(q.Price),
		Currency:  CurrencyUSD,
		Unit:      UnitTroyOunce,
		Symbol:    q.Symbol,
		FetchedAt: fetchedAt,
	}
	if rec.Symbol == "" {
		rec.Symbol = GoldFuturesSymbol
	}
	if ValidPrice(q.PreviousClose) {
		rec.PreviousClose = decimal.NewFromFloat(q.PreviousClose)
	}
	return rec, nil
}

// ValidPrice reports whether p is a finite positive number
func ValidPrice(p float64) bool {
	return !math.IsNaN(p) && !math.IsInf(p, 0) && p > 0
}

// PricePerGram converts the ounce price to grams
func (r PriceRecord) PricePerGram() decimal.Decimal {
	return r.Price.DivRound(gramsPerTroyOunce, 4)
}

// Change returns price minus previous close, or nil if the previous close is unknown
func (r PriceRecord) Change() *decimal.Decimal {
	if r.PreviousClose.IsZero() {
		return nil
	}
	change := r.Price.Sub(r.PreviousClose)
	return &change
}

// ChangePercent: 100 * (Price - PreviousClose) / PreviousClose
func (r PriceRecord) ChangePercent() *decimal.Decimal {
	change := r.Change()
	if change == nil {
		return nil
	}
	pct := change.Div(r.PreviousClose).Mul(decimal.NewFromInt(100)).Round(4)
	return &pct
}
