package listeners

import (
	"context"
	"fmt"
	"sync"

	"github.com/marcelojr/awards/internal/domain"
)

// LiveCounters tracks ballot activity per (event, category) in process-local
// memory. It is not persisted, resets with the process, and is never a
// source of truth: Rebuild re-derives every value from the ledger. Resets
// bump under an empty event slot so the dashboard can tell activity kinds
// apart.
type LiveCounters struct {
	mu     sync.Mutex
	counts map[string]int64
}

func NewLiveCounters() *LiveCounters {
	return &LiveCounters{counts: make(map[string]int64)}
}

func (c *LiveCounters) Name() string { return "live_counters" }

func (c *LiveCounters) Handle(_ context.Context, n domain.Notification) error {
	switch e := n.(type) {
	case domain.VoteCast:
		c.Bump(e.EventID, e.CategoryID)
	case domain.VoteReset:
		c.Bump("", e.CategoryID)
	}
	return nil
}

// Bump atomically increments the bump count for the pair and returns the new
// value.
func (c *LiveCounters) Bump(eventID domain.EventID, categoryID domain.CategoryID) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := counterKey(eventID, categoryID)
	c.counts[key]++
	return c.counts[key]
}

func (c *LiveCounters) Get(eventID domain.EventID, categoryID domain.CategoryID) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counts[counterKey(eventID, categoryID)]
}

// Snapshot copies the current counts keyed "eventID:categoryID".
func (c *LiveCounters) Snapshot() map[string]int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]int64, len(c.counts))
	for k, v := range c.counts {
		out[k] = v
	}
	return out
}

// Rebuild discards the in-memory counts and re-aggregates them from the
// ballot ledger, e.g. after a restart when a dashboard needs baselines.
func (c *LiveCounters) Rebuild(ctx context.Context, ballots domain.BallotRepository) error {
	grouped, err := ballots.GroupByEventCategory(ctx)
	if err != nil {
		return fmt.Errorf("live counters: rebuild: %w", err)
	}

	fresh := make(map[string]int64)
	for eventID, perCategory := range grouped {
		for categoryID, total := range perCategory {
			fresh[counterKey(eventID, categoryID)] = total
		}
	}

	c.mu.Lock()
	c.counts = fresh
	c.mu.Unlock()
	return nil
}

func counterKey(eventID domain.EventID, categoryID domain.CategoryID) string {
	return fmt.Sprintf("%s:%s", eventID, categoryID)
}
