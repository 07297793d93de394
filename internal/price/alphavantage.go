package price

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bettertrack/bettertrack/internal/buildinfo"
	"github.com/bettertrack/bettertrack/internal/logger"
	"github.com/bettertrack/bettertrack/internal/model"
)

// DefaultBaseURL is the Alpha Vantage query endpoint.
const DefaultBaseURL = "https://www.alphavantage.co/query"

// AlphaVantage fetches quotes from the GLOBAL_QUOTE endpoint.
type AlphaVantage struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

var _ model.PriceLookup = (*AlphaVantage)(nil)

// NewAlphaVantage creates a client. An empty apiKey is accepted here and
// reported as ErrMissingCredential on the first lookup, so portfolios that
// hold only cash never need a key.
func NewAlphaVantage(apiKey, baseURL string, timeout time.Duration) *AlphaVantage {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &AlphaVantage{
		apiKey:  strings.TrimSpace(apiKey),
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

type globalQuoteResponse struct {
	Quote        map[string]string `json:"Global Quote"`
	ErrorMessage string            `json:"Error Message"`
	Note         string            `json:"Note"`
	Information  string            `json:"Information"`
}

// Price returns the latest traded price of ticker.
func (c *AlphaVantage) Price(ctx context.Context, ticker string) (decimal.Decimal, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if c.apiKey == "" {
		return decimal.Zero, ErrMissingCredential
	}
	if ticker == "" {
		return decimal.Zero, fmt.Errorf("%w: empty ticker", ErrInvalidTicker)
	}

	params := url.Values{
		"function": {"GLOBAL_QUOTE"},
		"symbol":   {ticker},
		"apikey":   {c.apiKey},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: building request for %s: %v", ErrTransport, ticker, err)
	}
	req.Header.Set("User-Agent", buildinfo.UserAgent())

	logger.Get().Debugw("fetching quote", "ticker", ticker)
	resp, err := c.client.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: fetching %s: %v", ErrTransport, ticker, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("%w: fetching %s: http %d", ErrTransport, ticker, resp.StatusCode)
	}

	var body globalQuoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return decimal.Zero, fmt.Errorf("%w: decoding quote for %s: %v", ErrTransport, ticker, err)
	}

	switch {
	case body.ErrorMessage != "":
		return decimal.Zero, fmt.Errorf("%w: %s", ErrInvalidTicker, ticker)
	case body.Note != "":
		return decimal.Zero, fmt.Errorf("%w: %s", ErrRateLimited, body.Note)
	case body.Information != "":
		return decimal.Zero, fmt.Errorf("%w: %s", ErrRateLimited, body.Information)
	case len(body.Quote) == 0:
		return decimal.Zero, fmt.Errorf("%w: no price data for %s", ErrInvalidTicker, ticker)
	}

	raw := body.Quote["05. price"]
	if raw == "" {
		return decimal.Zero, fmt.Errorf("%w: no price field for %s", ErrInvalidTicker, ticker)
	}
	p, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: parsing price %q for %s: %v", ErrTransport, raw, ticker, err)
	}
	if !p.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: non-positive price %s for %s", ErrInvalidTicker, p, ticker)
	}
	return p, nil
}
