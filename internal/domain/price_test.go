package domain

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestNewPriceRecord(t *testing.T) {
	at := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)

	t.Run("Valid Quote", func(t *testing.T) {
		rec, err := NewPriceRecord(Quote{Price: 2000.0, PreviousClose: 1980.0, Symbol: "GC=F"}, at)
		if err != nil {
			t.Fatalf("NewPriceRecord failed: %v", err)
		}
		if !rec.Price.Equal(decimal.NewFromInt(2000)) {
			t.Errorf("Expected price 2000, got %v", rec.Price)
		}
		if rec.Currency != CurrencyUSD || rec.Unit != UnitTroyOunce {
			t.Errorf("Unexpected currency/unit: %s/%s", rec.Currency, rec.Unit)
		}
		if !rec.FetchedAt.Equal(at) {
			t.Errorf("FetchedAt = %v, want %v", rec.FetchedAt, at)
		}
	})

	t.Run("Default Symbol", func(t *testing.T) {
		rec, err := NewPriceRecord(Quote{Price: 1}, at)
		if err != nil {
			t.Fatalf("NewPriceRecord failed: %v", err)
		}
		if rec.Symbol != GoldFuturesSymbol {
			t.Errorf("Symbol = %q, want %q", rec.Symbol, GoldFuturesSymbol)
		}
	})

	t.Run("Rejects Foreign Currency", func(t *testing.T) {
		_, err := NewPriceRecord(Quote{Price: 2000, Currency: "EUR"}, at)
		if !errors.Is(err, ErrUnexpectedCurrency) {
			t.Errorf("Expected ErrUnexpectedCurrency, got %v", err)
		}
	})

	invalid := []struct {
		name  string
		price float64
	}{
		{"zero", 0},
		{"negative", -5},
		{"NaN", math.NaN()},
		{"+Inf", math.Inf(1)},
		{"-Inf", math.Inf(-1)},
	}
	for _, tc := range invalid {
		t.Run("Rejects "+tc.name, func(t *testing.T) {
			_, err := NewPriceRecord(Quote{Price: tc.price}, at)
			if !errors.Is(err, ErrInvalidPrice) {
				t.Errorf("Expected ErrInvalidPrice, got %v", err)
			}
		})
	}
}

func TestPriceRecord_PricePerGram(t *testing.T) {
	rec := PriceRecord{Price: decimal.RequireFromString("3110.34768")}

	got := rec.PricePerGram()
	if !got.Equal(decimal.NewFromInt(100)) {
		t.Errorf("Expected 100 per gram, got %v", got)
	}
}

func TestPriceRecord_Change(t *testing.T) {
	t.Run("Normal Calculation", func(t *testing.T) {
		rec := PriceRecord{
			Price:         decimal.NewFromInt(2100),
			PreviousClose: decimal.NewFromInt(2000),
		}

		change := rec.Change()
		if change == nil || !change.Equal(decimal.NewFromInt(100)) {
			t.Errorf("Expected change 100, got %v", change)
		}
		pct := rec.ChangePercent()
		if pct == nil || !pct.Equal(decimal.NewFromInt(5)) {
			t.Errorf("Expected 5%%, got %v", pct)
		}
	})

	t.Run("Unknown Previous Close", func(t *testing.T) {
		rec := PriceRecord{Price: decimal.NewFromInt(2100)}
		if rec.Change() != nil || rec.ChangePercent() != nil {
			t.Error("Should return nil when previous close is missing")
		}
	})
}
