package price

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quoteServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "GLOBAL_QUOTE", r.URL.Query().Get("function"))
		assert.Equal(t, "test-key", r.URL.Query().Get("apikey"))
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestAlphaVantage_Price(t *testing.T) {
	srv := quoteServer(t, http.StatusOK, `{"Global Quote": {"01. symbol": "VTI", "05. price": "287.1500", "07. latest trading day": "2025-10-06"}}`)
	c := NewAlphaVantage("test-key", srv.URL, time.Second)

	p, err := c.Price(context.Background(), "vti")
	require.NoError(t, err)
	assert.True(t, p.Equal(decimal.RequireFromString("287.15")))
}

func TestAlphaVantage_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"invalid ticker", http.StatusOK, `{"Error Message": "Invalid API call."}`, ErrInvalidTicker},
		{"empty quote", http.StatusOK, `{"Global Quote": {}}`, ErrInvalidTicker},
		{"missing price", http.StatusOK, `{"Global Quote": {"01. symbol": "VTI"}}`, ErrInvalidTicker},
		{"zero price", http.StatusOK, `{"Global Quote": {"05. price": "0.0000"}}`, ErrInvalidTicker},
		{"rate limit note", http.StatusOK, `{"Note": "Thank you for using Alpha Vantage!"}`, ErrRateLimited},
		{"rate limit information", http.StatusOK, `{"Information": "daily limit"}`, ErrRateLimited},
		{"server error", http.StatusInternalServerError, `oops`, ErrTransport},
		{"bad json", http.StatusOK, `{not json`, ErrTransport},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := quoteServer(t, tt.status, tt.body)
			c := NewAlphaVantage("test-key", srv.URL, time.Second)
			_, err := c.Price(context.Background(), "VTI")
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestAlphaVantage_MissingCredential(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true }))
	defer srv.Close()

	c := NewAlphaVantage("  ", srv.URL, time.Second)
	_, err := c.Price(context.Background(), "VTI")
	assert.ErrorIs(t, err, ErrMissingCredential)
	assert.False(t, called, "no request without a key")
}

func TestAlphaVantage_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := NewAlphaVantage("test-key", url, time.Second)
	_, err := c.Price(context.Background(), "VTI")
	assert.ErrorIs(t, err, ErrTransport)
}
