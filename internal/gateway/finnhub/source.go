package finnhub

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"

	"mirror/internal/feed"
	"mirror/internal/logger"
)

// Config describes access to the insider-filings REST API.
type Config struct {
	Name     string // "finnhub" | "tradefeeds"
	APIKey   string
	Endpoint string
	Symbol   string
	Timeout  time.Duration
}

func (c Config) withDefaults() Config {
	if c.Name == "" {
		c.Name = "finnhub"
	}
	if c.Timeout <= 0 {
		c.Timeout = 15 * time.Second
	}
	return c
}

// Source implements feed.Source over the Finnhub insider-transactions API
// (and the tradefeeds holdings API as a secondary mode).
type Source struct {
	cfg    Config
	client *resty.Client
}

func New(cfg Config) (*Source, error) {
	final := cfg.withDefaults()
	if strings.TrimSpace(final.APIKey) == "" || strings.TrimSpace(final.Endpoint) == "" {
		return nil, fmt.Errorf("api key and endpoint are required")
	}
	client := resty.New().
		SetTimeout(final.Timeout).
		SetHeader("Content-Type", "application/json")
	return &Source{cfg: final, client: client}, nil
}

var _ feed.Source = (*Source)(nil)
var _ feed.Prober = (*Source)(nil)

func (s *Source) request(ctx context.Context) *resty.Request {
	req := s.client.R().SetContext(ctx)
	if s.cfg.Name == "tradefeeds" {
		req.SetQueryParam("key", s.cfg.APIKey)
	} else {
		req.SetHeader("X-Finnhub-Token", s.cfg.APIKey)
	}
	if sym := strings.TrimSpace(s.cfg.Symbol); sym != "" {
		req.SetQueryParam("symbol", sym)
	}
	return req
}

// Fetch retrieves and maps the provider's current batch. The mapped records
// stay untyped; the validator owns schema decisions.
func (s *Source) Fetch(ctx context.Context) ([]feed.RawRecord, error) {
	resp, err := s.request(ctx).Get(s.cfg.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("provider request failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("provider returned HTTP %d: %s", resp.StatusCode(), truncate(resp.String(), 200))
	}
	body := resp.String()
	if !gjson.Valid(body) {
		return nil, fmt.Errorf("provider returned invalid JSON")
	}
	if s.cfg.Name == "tradefeeds" {
		return extractArray(gjson.Get(body, "results.output.holdings"))
	}
	return mapFinnhub(gjson.Get(body, "data"))
}

// Ping checks connectivity and measures response time.
func (s *Source) Ping(ctx context.Context) feed.ProbeResult {
	start := time.Now()
	resp, err := s.request(ctx).Get(s.cfg.Endpoint)
	elapsed := time.Since(start).Milliseconds()
	now := time.Now().UTC()
	if err != nil {
		return feed.ProbeResult{Status: "error", Error: err.Error(), Timestamp: now}
	}
	if resp.IsError() {
		return feed.ProbeResult{
			Status:       "error",
			Error:        fmt.Sprintf("HTTP %d: %s", resp.StatusCode(), truncate(resp.String(), 200)),
			ResponseTime: elapsed,
			Timestamp:    now,
		}
	}
	rateLimit := resp.Header().Get("X-RateLimit-Remaining")
	if s.cfg.Name == "tradefeeds" {
		rateLimit = gjson.Get(resp.String(), "status.rate_limit_remaining").String()
	}
	logger.Infof("provider ping ok name=%s response_time=%dms", s.cfg.Name, elapsed)
	return feed.ProbeResult{
		Status:             "success",
		ResponseTime:       elapsed,
		RateLimitRemaining: rateLimit,
		Timestamp:          now,
	}
}

// mapFinnhub translates the Finnhub insider-transactions payload into the
// canonical raw shape: transactionCode 38 is a purchase, everything else a
// sale; shares is |change| and value is |change|*transactionPrice.
func mapFinnhub(data gjson.Result) ([]feed.RawRecord, error) {
	if !data.Exists() {
		return []feed.RawRecord{}, nil
	}
	if !data.IsArray() {
		return nil, fmt.Errorf("provider payload malformed: data is not an array")
	}
	out := make([]feed.RawRecord, 0, len(data.Array()))
	data.ForEach(func(_, rec gjson.Result) bool {
		change := math.Abs(rec.Get("change").Float())
		price := rec.Get("transactionPrice").Float()
		txType := "SALE"
		if rec.Get("transactionCode").String() == "38" {
			txType = "PURCHASE"
		}
		out = append(out, feed.RawRecord{
			"symbol":           rec.Get("symbol").String(),
			"transaction_type": txType,
			"shares":           change,
			"price":            price,
			"value":            change * price,
			"filing_date":      rec.Get("filingDate").String(),
		})
		return true
	})
	return out, nil
}

func extractArray(node gjson.Result) ([]feed.RawRecord, error) {
	if !node.Exists() {
		return []feed.RawRecord{}, nil
	}
	if !node.IsArray() {
		return nil, fmt.Errorf("provider payload malformed: holdings is not an array")
	}
	out := make([]feed.RawRecord, 0, len(node.Array()))
	node.ForEach(func(_, rec gjson.Result) bool {
		if m, ok := rec.Value().(map[string]any); ok {
			out = append(out, feed.RawRecord(m))
		}
		return true
	})
	return out, nil
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
