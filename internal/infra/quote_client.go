package infra

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"gold_price/internal/domain"
)

// maxBodyBytes caps how much of an upstream response is read
const maxBodyBytes = 1 << 20

// rateAPIResponse represents the Yahoo Finance chart API response
type rateAPIResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Currency           string  `json:"currency"`
				Symbol             string  `json:"symbol"`
				RegularMarketPrice float64 `json:"regularMarketPrice"`
				PreviousClose      float64 `json:"previousClose"`
			} `json:"meta"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// QuoteClient fetches the gold futures quote from the Yahoo Finance chart API.
// Each FetchQuote issues exactly one HTTP request; retrying is the caller's business.
type QuoteClient struct {
	apiURL     string
	symbol     string
	userAgent  string
	httpClient *http.Client
	metrics    *Metrics
}

// NewQuoteClient creates a client with the default endpoint and a 10s timeout
func NewQuoteClient(metrics *Metrics) *QuoteClient {
	return &QuoteClient{
		apiURL:    DefaultQuoteURL,
		symbol:    domain.GoldFuturesSymbol,
		userAgent: DefaultUserAgent,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		metrics: metrics,
	}
}

// NewQuoteClientWithConfig creates a client from the upstream section of cfg
func NewQuoteClientWithConfig(cfg *Config, metrics *Metrics) *QuoteClient {
	client := NewQuoteClient(metrics)
	if cfg.Upstream.URL != "" {
		client.apiURL = cfg.Upstream.URL
	}
	if cfg.Upstream.Symbol != "" {
		client.symbol = cfg.Upstream.Symbol
	}
	if cfg.Upstream.UserAgent != "" {
		client.userAgent = cfg.Upstream.UserAgent
	}
	if cfg.Upstream.TimeoutSec > 0 {
		client.httpClient.Timeout = cfg.UpstreamTimeout()
	}
	return client
}

// endpoint builds {apiURL}/{symbol}?interval=1d&range=1d
func (c *QuoteClient) endpoint() string {
	return strings.TrimRight(c.apiURL, "/") + "/" + url.PathEscape(c.symbol) + "?interval=1d&range=1d"
}

// FetchQuote performs one request and extracts regularMarketPrice.
// Errors are *domain.UpstreamFetchError; the price itself is validated by the caller.
func (c *QuoteClient) FetchQuote(ctx context.Context) (domain.Quote, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(), nil)
	if err != nil {
		return domain.Quote{}, &domain.UpstreamFetchError{Op: domain.OpRequest, Err: domain.NewFatalNetworkError("build request", err)}
	}

	// Add browser-like User-Agent to avoid bot detection
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if c.metrics != nil {
		c.metrics.RecordUpstreamCall(time.Since(start))
	}
	if err != nil {
		return domain.Quote{}, &domain.UpstreamFetchError{Op: domain.OpRequest, Err: domain.NewNetworkError("get", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.Quote{}, &domain.UpstreamFetchError{
			Op:  domain.OpStatus,
			Err: fmt.Errorf("unexpected status code: %d", resp.StatusCode),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return domain.Quote{}, &domain.UpstreamFetchError{Op: domain.OpRequest, Err: domain.NewNetworkError("read", err)}
	}

	var data rateAPIResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return domain.Quote{}, &domain.UpstreamFetchError{Op: domain.OpDecode, Err: err}
	}

	if data.Chart.Error != nil {
		return domain.Quote{}, &domain.UpstreamFetchError{
			Op:  domain.OpDecode,
			Err: errors.New(data.Chart.Error.Code + ": " + data.Chart.Error.Description),
		}
	}
	if len(data.Chart.Result) == 0 {
		return domain.Quote{}, &domain.UpstreamFetchError{Op: domain.OpDecode, Err: domain.ErrEmptyQuote}
	}

	meta := data.Chart.Result[0].Meta
	return domain.Quote{
		Price:         meta.RegularMarketPrice,
		PreviousClose: meta.PreviousClose,
		Currency:      meta.Currency,
		Symbol:        meta.Symbol,
	}, nil
}
