package results

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/marcelojr/awards/internal/domain"
)

func TestCategoryTotalsIncludesZeroCounts(t *testing.T) {
	fix := newFixture(t)
	fix.addBallot("v1", fix.nomineeA)
	fix.addBallot("v2", fix.nomineeA)
	fix.addBallot("v3", fix.nomineeB)

	standing, err := fix.tally().CategoryTotals(context.Background(), fix.category)
	if err != nil {
		t.Fatalf("category totals failed: %v", err)
	}

	if len(standing.Rows) != 3 {
		t.Fatalf("expected one row per nominee, got %d", len(standing.Rows))
	}
	if standing.Rows[0].NomineeID != fix.nomineeA || standing.Rows[0].Votes != 2 {
		t.Fatalf("unexpected top row: %+v", standing.Rows[0])
	}
	if standing.Rows[2].NomineeID != fix.nomineeC || standing.Rows[2].Votes != 0 {
		t.Fatalf("nominee without votes must appear with zero, got %+v", standing.Rows[2])
	}

	var total int64
	for _, row := range standing.Rows {
		total += row.Votes
	}
	if total != 3 {
		t.Fatalf("row counts must sum to the ballots, got %d", total)
	}
}

func TestCategoryTotalsWinnerTieGoesToLowestNomineeID(t *testing.T) {
	fix := newFixture(t)
	fix.addBallot("v1", fix.nomineeA)
	fix.addBallot("v2", fix.nomineeB)

	standing, err := fix.tally().CategoryTotals(context.Background(), fix.category)
	if err != nil {
		t.Fatalf("category totals failed: %v", err)
	}

	if standing.Winner == nil {
		t.Fatal("expected a winner")
	}
	want := fix.nomineeA
	if fix.nomineeB < fix.nomineeA {
		want = fix.nomineeB
	}
	if standing.Winner.NomineeID != want {
		t.Fatalf("tie must resolve to the lowest nominee id %s, got %s", want, standing.Winner.NomineeID)
	}
}

func TestCategoryTotalsNoNomineesHasNoWinner(t *testing.T) {
	fix := newFixture(t)
	empty := domain.CategoryID("cat-empty")
	fix.categories.data[empty] = domain.Category{ID: empty, EventID: fix.event}

	standing, err := fix.tally().CategoryTotals(context.Background(), empty)
	if err != nil {
		t.Fatalf("category totals failed: %v", err)
	}
	if standing.Winner != nil {
		t.Fatalf("category without nominees must have a nil winner, got %+v", standing.Winner)
	}
	if len(standing.Rows) != 0 {
		t.Fatalf("expected no rows, got %d", len(standing.Rows))
	}
}

func TestCategoryTotalsUnknownCategory(t *testing.T) {
	fix := newFixture(t)

	_, err := fix.tally().CategoryTotals(context.Background(), "missing")
	if !errors.Is(err, ErrCategoryNotFound) {
		t.Fatalf("expected ErrCategoryNotFound, got %v", err)
	}
}

func TestEventLeaderboardLimitsAndOrders(t *testing.T) {
	fix := newFixture(t)
	fix.addBallot("v1", fix.nomineeA)
	fix.addBallot("v2", fix.nomineeA)
	fix.addBallot("v3", fix.nomineeB)
	fix.addBallot("v4", fix.nomineeC)

	top, err := fix.tally().EventLeaderboard(context.Background(), fix.event, 2)
	if err != nil {
		t.Fatalf("leaderboard failed: %v", err)
	}

	if len(top) != 2 {
		t.Fatalf("expected limit of 2, got %d", len(top))
	}
	if top[0].NomineeID != fix.nomineeA || top[0].Votes != 2 {
		t.Fatalf("unexpected leader: %+v", top[0])
	}
	if top[1].Votes != 1 {
		t.Fatalf("unexpected runner-up: %+v", top[1])
	}
}

func TestEventLeaderboardUnknownEvent(t *testing.T) {
	fix := newFixture(t)

	_, err := fix.tally().EventLeaderboard(context.Background(), "missing", 5)
	if !errors.Is(err, ErrEventNotFound) {
		t.Fatalf("expected ErrEventNotFound, got %v", err)
	}
}

func TestDailyTotalsBucketsInConfiguredTimezone(t *testing.T) {
	fix := newFixture(t)
	fix.loc = time.FixedZone("UTC-3", -3*60*60)

	// 01:00 UTC is still the previous day at UTC-3.
	fix.addBallotAt("v1", fix.nomineeA, time.Date(2025, 1, 10, 1, 0, 0, 0, time.UTC))
	fix.addBallotAt("v2", fix.nomineeB, time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC))

	days, err := fix.tally().DailyTotals(context.Background(), fix.event)
	if err != nil {
		t.Fatalf("daily totals failed: %v", err)
	}

	if len(days) != 2 {
		t.Fatalf("expected 2 buckets across the zone boundary, got %d", len(days))
	}
	if days[0].Day.Day() != 9 || days[0].Total != 1 {
		t.Fatalf("unexpected first bucket: %+v", days[0])
	}
	if days[1].Day.Day() != 10 || days[1].Total != 1 {
		t.Fatalf("unexpected second bucket: %+v", days[1])
	}
}

// --- fixtures ---------------------------------------------------------------

type fixture struct {
	events     *memEvents
	categories *memCategories
	nominees   *memNominees
	ballots    *memBallots
	loc        *time.Location

	event    domain.EventID
	category domain.CategoryID
	nomineeA domain.NomineeID
	nomineeB domain.NomineeID
	nomineeC domain.NomineeID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	fix := &fixture{
		events:     &memEvents{data: map[domain.EventID]domain.Event{}},
		categories: &memCategories{data: map[domain.CategoryID]domain.Category{}},
		nominees:   &memNominees{data: map[domain.NomineeID]domain.Nominee{}},
		loc:        time.UTC,
		event:      "evt-1",
		category:   "cat-1",
		nomineeA:   "nom-a",
		nomineeB:   "nom-b",
		nomineeC:   "nom-c",
	}
	fix.ballots = &memBallots{nominees: fix.nominees}

	fix.events.data[fix.event] = domain.Event{ID: fix.event, Name: "Gala", StartAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	fix.categories.data[fix.category] = domain.Category{ID: fix.category, EventID: fix.event, Name: "Best Performance"}
	fix.nominees.data[fix.nomineeA] = domain.Nominee{ID: fix.nomineeA, CategoryID: fix.category, Name: "Alice"}
	fix.nominees.data[fix.nomineeB] = domain.Nominee{ID: fix.nomineeB, CategoryID: fix.category, Name: "Bruno"}
	fix.nominees.data[fix.nomineeC] = domain.Nominee{ID: fix.nomineeC, CategoryID: fix.category, Name: "Carla"}
	return fix
}

func (f *fixture) tally() *Tally {
	return NewTally(f.events, f.categories, f.nominees, f.ballots, f.loc)
}

func (f *fixture) addBallot(voter string, nomineeID domain.NomineeID) {
	f.addBallotAt(voter, nomineeID, time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC))
}

func (f *fixture) addBallotAt(voter string, nomineeID domain.NomineeID, createdAt time.Time) {
	f.ballots.rows = append(f.ballots.rows, domain.Ballot{
		ID:         domain.BallotID("ballot-" + voter),
		EventID:    f.event,
		CategoryID: f.nominees.data[nomineeID].CategoryID,
		NomineeID:  nomineeID,
		VoterID:    domain.VoterID(voter),
		CreatedAt:  createdAt,
	})
}

type memEvents struct {
	data map[domain.EventID]domain.Event
}

func (m *memEvents) Create(_ context.Context, e domain.Event) error {
	m.data[e.ID] = e
	return nil
}

func (m *memEvents) FindByID(_ context.Context, id domain.EventID) (domain.Event, error) {
	e, ok := m.data[id]
	if !ok {
		return domain.Event{}, domain.ErrNotFound
	}
	return e, nil
}

func (m *memEvents) ListOpen(_ context.Context, _ time.Time) ([]domain.Event, error) {
	return nil, nil
}

type memCategories struct {
	data map[domain.CategoryID]domain.Category
}

func (m *memCategories) Create(_ context.Context, c domain.Category) error {
	m.data[c.ID] = c
	return nil
}

func (m *memCategories) FindByID(_ context.Context, id domain.CategoryID) (domain.Category, error) {
	c, ok := m.data[id]
	if !ok {
		return domain.Category{}, domain.ErrNotFound
	}
	return c, nil
}

func (m *memCategories) ListByEvent(_ context.Context, _ domain.EventID) ([]domain.Category, error) {
	return nil, nil
}

type memNominees struct {
	data map[domain.NomineeID]domain.Nominee
}

func (m *memNominees) BulkCreate(_ context.Context, categoryID domain.CategoryID, nominees []domain.Nominee) error {
	for _, n := range nominees {
		n.CategoryID = categoryID
		m.data[n.ID] = n
	}
	return nil
}

func (m *memNominees) FindByID(_ context.Context, id domain.NomineeID) (domain.Nominee, error) {
	n, ok := m.data[id]
	if !ok {
		return domain.Nominee{}, domain.ErrNotFound
	}
	return n, nil
}

func (m *memNominees) ListByCategory(_ context.Context, categoryID domain.CategoryID) ([]domain.Nominee, error) {
	var nominees []domain.Nominee
	for _, n := range m.data {
		if n.CategoryID == categoryID {
			nominees = append(nominees, n)
		}
	}
	sort.Slice(nominees, func(i, j int) bool { return nominees[i].ID < nominees[j].ID })
	return nominees, nil
}

// memBallots mirrors the aggregation contract of the persisted ledger closely
// enough for the read-side math to be exercised against it.
type memBallots struct {
	rows     []domain.Ballot
	nominees *memNominees
}

func (m *memBallots) Insert(_ context.Context, b domain.Ballot) error {
	m.rows = append(m.rows, b)
	return nil
}

func (m *memBallots) ReplaceNominee(_ context.Context, _ domain.BallotID, _ domain.NomineeID, _ time.Time) error {
	return nil
}

func (m *memBallots) FindByVoterAndCategory(_ context.Context, _ domain.VoterID, _ domain.CategoryID) (domain.Ballot, error) {
	return domain.Ballot{}, domain.ErrNotFound
}

func (m *memBallots) DeleteByVoterAndCategory(_ context.Context, _ domain.VoterID, _ domain.CategoryID) (bool, error) {
	return false, nil
}

func (m *memBallots) ListByVoter(_ context.Context, _ domain.VoterID) ([]domain.Ballot, error) {
	return nil, nil
}

func (m *memBallots) CountByNominee(_ context.Context, categoryID domain.CategoryID) (map[domain.NomineeID]int64, error) {
	counts := make(map[domain.NomineeID]int64)
	for _, b := range m.rows {
		if b.CategoryID == categoryID {
			counts[b.NomineeID]++
		}
	}
	return counts, nil
}

func (m *memBallots) CountByCategory(_ context.Context, categoryID domain.CategoryID) (int64, error) {
	var total int64
	for _, b := range m.rows {
		if b.CategoryID == categoryID {
			total++
		}
	}
	return total, nil
}

func (m *memBallots) TopNominees(_ context.Context, eventID domain.EventID, limit int) ([]domain.NomineeCount, error) {
	counts := make(map[domain.NomineeID]*domain.NomineeCount)
	for _, b := range m.rows {
		if b.EventID != eventID {
			continue
		}
		entry, ok := counts[b.NomineeID]
		if !ok {
			entry = &domain.NomineeCount{
				NomineeID:  b.NomineeID,
				CategoryID: b.CategoryID,
				Name:       m.nominees.data[b.NomineeID].Name,
			}
			counts[b.NomineeID] = entry
		}
		entry.Votes++
	}

	top := make([]domain.NomineeCount, 0, len(counts))
	for _, entry := range counts {
		top = append(top, *entry)
	}
	sort.Slice(top, func(i, j int) bool {
		if top[i].Votes != top[j].Votes {
			return top[i].Votes > top[j].Votes
		}
		return top[i].NomineeID < top[j].NomineeID
	})
	if len(top) > limit {
		top = top[:limit]
	}
	return top, nil
}

func (m *memBallots) CountByDay(_ context.Context, eventID domain.EventID, loc *time.Location) ([]domain.DailyCount, error) {
	perDay := make(map[time.Time]int64)
	for _, b := range m.rows {
		if b.EventID != eventID {
			continue
		}
		local := b.CreatedAt.In(loc)
		day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
		perDay[day]++
	}

	days := make([]domain.DailyCount, 0, len(perDay))
	for day, total := range perDay {
		days = append(days, domain.DailyCount{Day: day, Total: total})
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Day.Before(days[j].Day) })
	return days, nil
}

func (m *memBallots) GroupByEventCategory(_ context.Context) (map[domain.EventID]map[domain.CategoryID]int64, error) {
	grouped := make(map[domain.EventID]map[domain.CategoryID]int64)
	for _, b := range m.rows {
		if grouped[b.EventID] == nil {
			grouped[b.EventID] = make(map[domain.CategoryID]int64)
		}
		grouped[b.EventID][b.CategoryID]++
	}
	return grouped, nil
}
