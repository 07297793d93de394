// Package price looks up current security prices.
package price

import "errors"

var (
	ErrMissingCredential = errors.New("ALPHAVANTAGE_API_KEY not set")
	ErrInvalidTicker     = errors.New("invalid ticker")
	ErrRateLimited       = errors.New("alpha vantage rate limit reached")
	ErrTransport         = errors.New("price request failed")
)
