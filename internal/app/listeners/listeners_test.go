package listeners

import (
	"context"
	"testing"
	"time"

	"github.com/marcelojr/awards/internal/app/results"
	"github.com/marcelojr/awards/internal/domain"
)

func TestLiveCountersBumpOnCastAndReset(t *testing.T) {
	counters := NewLiveCounters()
	ctx := context.Background()

	cast := domain.VoteCast{EventID: "evt-1", CategoryID: "cat-1", NomineeID: "nom-1", VoterID: "v-1"}
	if err := counters.Handle(ctx, cast); err != nil {
		t.Fatalf("handle cast failed: %v", err)
	}
	if err := counters.Handle(ctx, cast); err != nil {
		t.Fatalf("handle cast failed: %v", err)
	}
	if got := counters.Get("evt-1", "cat-1"); got != 2 {
		t.Fatalf("expected 2 bumps for the pair, got %d", got)
	}

	// Resets bump under the empty event slot, not under the event.
	if err := counters.Handle(ctx, domain.VoteReset{CategoryID: "cat-1", VoterID: "v-1"}); err != nil {
		t.Fatalf("handle reset failed: %v", err)
	}
	if got := counters.Get("evt-1", "cat-1"); got != 2 {
		t.Fatalf("reset must not bump the event slot, got %d", got)
	}
	if got := counters.Get("", "cat-1"); got != 1 {
		t.Fatalf("expected 1 reset bump, got %d", got)
	}
}

func TestLiveCountersSnapshotCopies(t *testing.T) {
	counters := NewLiveCounters()
	counters.Bump("evt-1", "cat-1")

	snap := counters.Snapshot()
	snap["evt-1:cat-1"] = 99

	if got := counters.Get("evt-1", "cat-1"); got != 1 {
		t.Fatalf("snapshot must be a copy, live value changed to %d", got)
	}
}

func TestLiveCountersRebuildReplacesCounts(t *testing.T) {
	counters := NewLiveCounters()
	counters.Bump("evt-stale", "cat-stale")

	ballots := &stubBallots{grouped: map[domain.EventID]map[domain.CategoryID]int64{
		"evt-1": {"cat-1": 7, "cat-2": 3},
	}}
	if err := counters.Rebuild(context.Background(), ballots); err != nil {
		t.Fatalf("rebuild failed: %v", err)
	}

	if got := counters.Get("evt-1", "cat-1"); got != 7 {
		t.Fatalf("expected rebuilt count 7, got %d", got)
	}
	if got := counters.Get("evt-stale", "cat-stale"); got != 0 {
		t.Fatalf("stale counts must be discarded, got %d", got)
	}
}

func TestDashboardRecalcsOnCastOnly(t *testing.T) {
	events := &stubEvents{known: "evt-1"}
	ballots := &stubBallots{top: []domain.NomineeCount{{NomineeID: "nom-1", CategoryID: "cat-1", Name: "Alice", Votes: 5}}}
	tally := results.NewTally(events, stubCategories{}, stubNominees{}, ballots, time.UTC)

	clk := stubClock{now: time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)}
	dashboard := NewDashboard(tally, clk, 5)
	ctx := context.Background()

	if _, ok := dashboard.Snapshot("evt-1"); ok {
		t.Fatal("no snapshot expected before the first cast")
	}

	if err := dashboard.Handle(ctx, domain.VoteReset{CategoryID: "cat-1"}); err != nil {
		t.Fatalf("handle reset failed: %v", err)
	}
	if _, ok := dashboard.Snapshot("evt-1"); ok {
		t.Fatal("a reset must not warm the snapshot")
	}

	if err := dashboard.Handle(ctx, domain.VoteCast{EventID: "evt-1", CategoryID: "cat-1"}); err != nil {
		t.Fatalf("handle cast failed: %v", err)
	}

	snap, ok := dashboard.Snapshot("evt-1")
	if !ok {
		t.Fatal("expected a snapshot after the cast")
	}
	if len(snap.Leaderboard) != 1 || snap.Leaderboard[0].NomineeID != "nom-1" {
		t.Fatalf("unexpected leaderboard: %+v", snap.Leaderboard)
	}
	if !snap.RefreshedAt.Equal(clk.now) {
		t.Fatalf("unexpected refresh time %v", snap.RefreshedAt)
	}
}

func TestDashboardRecalcPropagatesTallyErrors(t *testing.T) {
	tally := results.NewTally(&stubEvents{known: "evt-1"}, stubCategories{}, stubNominees{}, &stubBallots{}, time.UTC)
	dashboard := NewDashboard(tally, stubClock{}, 5)

	err := dashboard.Handle(context.Background(), domain.VoteCast{EventID: "evt-missing"})
	if err == nil {
		t.Fatal("expected an error for an unknown event")
	}
	if _, ok := dashboard.Snapshot("evt-missing"); ok {
		t.Fatal("a failed recalc must not cache a snapshot")
	}
}

// --- stubs ------------------------------------------------------------------

type stubEvents struct {
	known domain.EventID
}

func (s *stubEvents) Create(_ context.Context, _ domain.Event) error { return nil }

func (s *stubEvents) FindByID(_ context.Context, id domain.EventID) (domain.Event, error) {
	if id != s.known {
		return domain.Event{}, domain.ErrNotFound
	}
	return domain.Event{ID: id}, nil
}

func (s *stubEvents) ListOpen(_ context.Context, _ time.Time) ([]domain.Event, error) {
	return nil, nil
}

type stubCategories struct{}

func (stubCategories) Create(_ context.Context, _ domain.Category) error { return nil }

func (stubCategories) FindByID(_ context.Context, _ domain.CategoryID) (domain.Category, error) {
	return domain.Category{}, domain.ErrNotFound
}

func (stubCategories) ListByEvent(_ context.Context, _ domain.EventID) ([]domain.Category, error) {
	return nil, nil
}

type stubNominees struct{}

func (stubNominees) BulkCreate(_ context.Context, _ domain.CategoryID, _ []domain.Nominee) error {
	return nil
}

func (stubNominees) FindByID(_ context.Context, _ domain.NomineeID) (domain.Nominee, error) {
	return domain.Nominee{}, domain.ErrNotFound
}

func (stubNominees) ListByCategory(_ context.Context, _ domain.CategoryID) ([]domain.Nominee, error) {
	return nil, nil
}

type stubBallots struct {
	top     []domain.NomineeCount
	grouped map[domain.EventID]map[domain.CategoryID]int64
}

func (s *stubBallots) Insert(_ context.Context, _ domain.Ballot) error { return nil }

func (s *stubBallots) ReplaceNominee(_ context.Context, _ domain.BallotID, _ domain.NomineeID, _ time.Time) error {
	return nil
}

func (s *stubBallots) FindByVoterAndCategory(_ context.Context, _ domain.VoterID, _ domain.CategoryID) (domain.Ballot, error) {
	return domain.Ballot{}, domain.ErrNotFound
}

func (s *stubBallots) DeleteByVoterAndCategory(_ context.Context, _ domain.VoterID, _ domain.CategoryID) (bool, error) {
	return false, nil
}

func (s *stubBallots) ListByVoter(_ context.Context, _ domain.VoterID) ([]domain.Ballot, error) {
	return nil, nil
}

func (s *stubBallots) CountByNominee(_ context.Context, _ domain.CategoryID) (map[domain.NomineeID]int64, error) {
	return nil, nil
}

func (s *stubBallots) CountByCategory(_ context.Context, _ domain.CategoryID) (int64, error) {
	return 0, nil
}

func (s *stubBallots) TopNominees(_ context.Context, _ domain.EventID, _ int) ([]domain.NomineeCount, error) {
	return s.top, nil
}

func (s *stubBallots) CountByDay(_ context.Context, _ domain.EventID, _ *time.Location) ([]domain.DailyCount, error) {
	return nil, nil
}

func (s *stubBallots) GroupByEventCategory(_ context.Context) (map[domain.EventID]map[domain.CategoryID]int64, error) {
	return s.grouped, nil
}

type stubClock struct {
	now time.Time
}

func (c stubClock) Now() time.Time { return c.now }
