// Package ratelimit provides token-bucket limiters for the two data sources
// and windowed call budgets for the MCP tool surface.
package ratelimit

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/time/rate"
)

// Source names understood by SourceLimiter.
const (
	SourceAPI = "api" // Ops Manager REST requests
	SourceCLI = "cli" // mongocli subprocess launches
)

// SourceRates configures per-source request rates (requests per second).
type SourceRates struct {
	API float64
	CLI float64
}

// DefaultSourceRates returns the rates used against shared Ops Manager test
// instances: 5 rps for the REST API, 2 rps for mongocli launches.
func DefaultSourceRates() SourceRates {
	return SourceRates{
		API: 5,
		CLI: 2,
	}
}

// SourceLimiter rate-limits data-source access using per-source token buckets.
type SourceLimiter struct {
	mu       sync.RWMutex
	limiters map[string]*rate.Limiter
}

// NewSourceLimiter creates a limiter with the given per-source rates.
func NewSourceLimiter(rates SourceRates) *SourceLimiter {
	limiters := map[string]*rate.Limiter{
		SourceAPI: rate.NewLimiter(rate.Limit(rates.API), burstFor(rates.API)),
		SourceCLI: rate.NewLimiter(rate.Limit(rates.CLI), burstFor(rates.CLI)),
	}
	return &SourceLimiter{limiters: limiters}
}

// A zero rate still needs a burst of one or Wait can never succeed.
func burstFor(rps float64) int {
	if rps < 1 {
		return 1
	}
	return int(rps)
}

// Wait blocks until a token is available for the named source, or ctx is
// cancelled.
func (sl *SourceLimiter) Wait(ctx context.Context, source string) error {
	sl.mu.RLock()
	limiter, ok := sl.limiters[source]
	sl.mu.RUnlock()
	if !ok {
		return nil // unknown source = no limit
	}
	if err := limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit %s: %w", source, err)
	}
	return nil
}
