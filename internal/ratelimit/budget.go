package ratelimit

import (
	"fmt"
	"sync"
	"time"
)

// CallBudget tracks per-scope call counts within time windows. The MCP
// server uses it to cap tool invocations per session.
type CallBudget struct {
	mu     sync.Mutex
	counts map[string]*windowCounter

	maxPerWindow int
	windowSize   time.Duration
	now          func() time.Time
}

type windowCounter struct {
	count     int
	windowEnd time.Time
}

// NewCallBudget creates a budget limiter.
// maxPerWindow limits calls per (scope, call) within windowSize.
func NewCallBudget(maxPerWindow int, windowSize time.Duration) *CallBudget {
	return &CallBudget{
		counts:       make(map[string]*windowCounter),
		maxPerWindow: maxPerWindow,
		windowSize:   windowSize,
		now:          time.Now,
	}
}

func budgetKey(scope, call string) string {
	return scope + "|" + call
}

// Check returns an error if the scope has exceeded the budget for the call.
func (b *CallBudget) Check(scope, call string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	key := budgetKey(scope, call)
	wc, ok := b.counts[key]
	if !ok || b.now().After(wc.windowEnd) {
		return nil // no window or expired window
	}
	if wc.count >= b.maxPerWindow {
		return fmt.Errorf("call budget exceeded: scope %s call %s (%d/%d in window)",
			scope, call, wc.count, b.maxPerWindow)
	}
	return nil
}

// Record records a call for the scope.
func (b *CallBudget) Record(scope, call string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	key := budgetKey(scope, call)
	wc, ok := b.counts[key]
	if !ok || b.now().After(wc.windowEnd) {
		b.counts[key] = &windowCounter{
			count:     1,
			windowEnd: b.now().Add(b.windowSize),
		}
		return
	}
	wc.count++
}
