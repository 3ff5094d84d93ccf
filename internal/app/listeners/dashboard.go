package listeners

import (
	"context"
	"sync"
	"time"

	"github.com/marcelojr/awards/internal/app/results"
	"github.com/marcelojr/awards/internal/domain"
)

// Snapshot is a cached leaderboard for one event plus when it was computed.
type Snapshot struct {
	EventID     domain.EventID
	Leaderboard []domain.NomineeCount
	RefreshedAt time.Time
}

// Dashboard keeps a per-event leaderboard snapshot warm by recomputing it on
// every VoteCast. Resets do not trigger a recalc; the next cast refreshes
// the snapshot.
type Dashboard struct {
	tally *results.Tally
	clock domain.Clock
	limit int

	mu        sync.RWMutex
	snapshots map[domain.EventID]Snapshot
}

func NewDashboard(tally *results.Tally, clock domain.Clock, limit int) *Dashboard {
	return &Dashboard{
		tally:     tally,
		clock:     clock,
		limit:     limit,
		snapshots: make(map[domain.EventID]Snapshot),
	}
}

func (d *Dashboard) Name() string { return "dashboard_recalc" }

func (d *Dashboard) Handle(ctx context.Context, n domain.Notification) error {
	cast, ok := n.(domain.VoteCast)
	if !ok {
		return nil
	}
	return d.Recalc(ctx, cast.EventID)
}

// Recalc recomputes and caches the event's leaderboard.
func (d *Dashboard) Recalc(ctx context.Context, eventID domain.EventID) error {
	leaderboard, err := d.tally.EventLeaderboard(ctx, eventID, d.limit)
	if err != nil {
		return err
	}

	d.mu.Lock()
	d.snapshots[eventID] = Snapshot{
		EventID:     eventID,
		Leaderboard: leaderboard,
		RefreshedAt: d.clock.Now(),
	}
	d.mu.Unlock()
	return nil
}

// Snapshot returns the cached leaderboard for the event, if one exists yet.
func (d *Dashboard) Snapshot(eventID domain.EventID) (Snapshot, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	s, ok := d.snapshots[eventID]
	return s, ok
}
