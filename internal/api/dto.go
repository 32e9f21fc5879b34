package api

import (
	"time"

	"gold_price/internal/domain"
)

const source = "Yahoo Finance API (Cached)"

// priceData is the JSON shape of a cached record on the wire
type priceData struct {
	GoldPricePerOunceUSD float64   `json:"goldPricePerOunceUSD"`
	GoldPricePerGramUSD  float64   `json:"goldPricePerGramUSD"`
	PreviousCloseUSD     *float64  `json:"previousCloseUSD,omitempty"`
	Change               *float64  `json:"change,omitempty"`
	ChangePercent        *float64  `json:"changePercent,omitempty"`
	Currency             string    `json:"currency"`
	Unit                 string    `json:"unit"`
	Symbol               string    `json:"symbol"`
	Timestamp            time.Time `json:"timestamp"`
}

func newPriceData(rec domain.PriceRecord) priceData {
	d := priceData{
		GoldPricePerOunceUSD: rec.Price.InexactFloat64(),
		GoldPricePerGramUSD:  rec.PricePerGram().InexactFloat64(),
		Currency:             rec.Currency,
		Unit:                 rec.Unit,
		Symbol:               rec.Symbol,
		Timestamp:            rec.FetchedAt,
	}
	if change := rec.Change(); change != nil {
		prev := rec.PreviousClose.InexactFloat64()
		c := change.InexactFloat64()
		d.PreviousCloseUSD = &prev
		d.Change = &c
	}
	if pct := rec.ChangePercent(); pct != nil {
		p := pct.InexactFloat64()
		d.ChangePercent = &p
	}
	return d
}

type priceMeta struct {
	LastUpdated         time.Time `json:"lastUpdated"`
	TimeSinceLastUpdate float64   `json:"timeSinceLastUpdate"`
	NextUpdateIn        float64   `json:"nextUpdateIn"`
	Source              string    `json:"source"`
}

type priceResponse struct {
	Success bool      `json:"success"`
	Data    priceData `json:"data"`
	Meta    priceMeta `json:"meta"`
}

type updateResponse struct {
	Success bool      `json:"success"`
	Data    priceData `json:"data"`
	Message string    `json:"message"`
}

type errorResponse struct {
	Success   bool       `json:"success"`
	Error     string     `json:"error"`
	Message   string     `json:"message"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

// streamMessage is pushed to WebSocket subscribers
type streamMessage struct {
	Type string    `json:"type"` // "price"
	Data priceData `json:"data"`
}
