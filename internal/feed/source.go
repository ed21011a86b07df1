package feed

import (
	"context"
	"time"
)

// RawRecord is one untyped record as returned by the provider. Shape is not
// trusted; the validator decides what survives.
type RawRecord map[string]any

// Source abstracts the insider-filings data provider.
type Source interface {
	// Fetch returns the provider's current batch of raw records. A non-array
	// payload or transport failure is an error and fails the whole cycle.
	Fetch(ctx context.Context) ([]RawRecord, error)
}

// ProbeResult reports provider connectivity from a Ping.
type ProbeResult struct {
	Status             string    `json:"status"`
	Error              string    `json:"error,omitempty"`
	ResponseTime       int64     `json:"response_time_ms"`
	RateLimitRemaining string    `json:"rate_limit_remaining,omitempty"`
	Timestamp          time.Time `json:"timestamp"`
}

// Prober is implemented by sources that support a connectivity check.
type Prober interface {
	Ping(ctx context.Context) ProbeResult
}
