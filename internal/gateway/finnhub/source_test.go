package finnhub

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSource(t *testing.T, handler http.HandlerFunc, name string) *Source {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	s, err := New(Config{
		Name:     name,
		APIKey:   "test-key",
		Endpoint: srv.URL,
		Symbol:   "AAPL",
	})
	require.NoError(t, err)
	return s
}

func TestNewRequiresCredentials(t *testing.T) {
	_, err := New(Config{Endpoint: "https://example.com"})
	assert.Error(t, err)
	_, err = New(Config{APIKey: "k"})
	assert.Error(t, err)
}

func TestFetchMapsFinnhubPayload(t *testing.T) {
	var gotToken, gotSymbol string
	s := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.Header.Get("X-Finnhub-Token")
		gotSymbol = r.URL.Query().Get("symbol")
		w.Write([]byte(`{"data":[
			{"symbol":"AAPL","transactionCode":"38","change":1000,"transactionPrice":150.5,"filingDate":"2024-01-15"},
			{"symbol":"MSFT","transactionCode":"S","change":-500,"transactionPrice":400,"filingDate":"2024-01-16"}
		]}`))
	}, "finnhub")

	records, err := s.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "test-key", gotToken)
	assert.Equal(t, "AAPL", gotSymbol)

	buy := records[0]
	assert.Equal(t, "AAPL", buy["symbol"])
	assert.Equal(t, "PURCHASE", buy["transaction_type"])
	assert.Equal(t, 1000.0, buy["shares"])
	assert.Equal(t, 150.5, buy["price"])
	assert.Equal(t, 150500.0, buy["value"])
	assert.Equal(t, "2024-01-15", buy["filing_date"])

	sell := records[1]
	assert.Equal(t, "SALE", sell["transaction_type"])
	// Negative change becomes absolute share count.
	assert.Equal(t, 500.0, sell["shares"])
	assert.Equal(t, 200000.0, sell["value"])
}

func TestFetchEmptyData(t *testing.T) {
	s := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}, "finnhub")
	records, err := s.Fetch(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestFetchRejectsNonArrayData(t *testing.T) {
	s := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"symbol":"AAPL"}}`))
	}, "finnhub")
	_, err := s.Fetch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not an array")
}

func TestFetchRejectsInvalidJSON(t *testing.T) {
	s := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}, "finnhub")
	_, err := s.Fetch(context.Background())
	assert.Error(t, err)
}

func TestFetchHTTPError(t *testing.T) {
	s := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}, "finnhub")
	_, err := s.Fetch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 429")
}

func TestFetchTradefeedsHoldings(t *testing.T) {
	var gotKey string
	s := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.URL.Query().Get("key")
		w.Write([]byte(`{"results":{"output":{"holdings":[
			{"symbol":"AAPL","transaction_type":"PURCHASE","shares":1000,"price":150,"value":150000,"filing_date":"2024-01-15"}
		]}}}`))
	}, "tradefeeds")

	records, err := s.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "test-key", gotKey)
	assert.Equal(t, "AAPL", records[0]["symbol"])
	assert.Equal(t, 150000.0, records[0]["value"])
}

func TestPing(t *testing.T) {
	s := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-RateLimit-Remaining", "59")
		w.Write([]byte(`{"data":[]}`))
	}, "finnhub")

	probe := s.Ping(context.Background())
	assert.Equal(t, "success", probe.Status)
	assert.Equal(t, "59", probe.RateLimitRemaining)
	assert.False(t, probe.Timestamp.IsZero())
}

func TestPingReportsHTTPError(t *testing.T) {
	s := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusUnauthorized)
	}, "finnhub")

	probe := s.Ping(context.Background())
	assert.Equal(t, "error", probe.Status)
	assert.Contains(t, probe.Error, "HTTP 401")
}
