// Package results is the read side of the election: aggregations over the
// ballot ledger for leaderboards, winners and activity charts. Nothing here
// mutates state; reads run concurrently with casts at whatever isolation the
// storage engine provides.
package results

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/marcelojr/awards/internal/domain"
)

var ErrCategoryNotFound = errors.New("category not found")

var ErrEventNotFound = errors.New("event not found")

// CategoryStanding is a category's full result table plus its winner.
type CategoryStanding struct {
	CategoryID domain.CategoryID
	Rows       []domain.CategoryResultRow
	// Winner is nil when the category has no nominees. Ties resolve to the
	// lowest nominee id; ULIDs are time-ordered, so the earliest-created
	// nominee wins a tie.
	Winner *domain.CategoryResultRow
}

type Tally struct {
	events     domain.EventRepository
	categories domain.CategoryRepository
	nominees   domain.NomineeRepository
	ballots    domain.BallotRepository
	loc        *time.Location
}

func NewTally(
	events domain.EventRepository,
	categories domain.CategoryRepository,
	nominees domain.NomineeRepository,
	ballots domain.BallotRepository,
	loc *time.Location,
) *Tally {
	if loc == nil {
		loc = time.Local
	}
	return &Tally{
		events:     events,
		categories: categories,
		nominees:   nominees,
		ballots:    ballots,
		loc:        loc,
	}
}

// CategoryTotals counts every nominee of the category, zero counts included.
func (t *Tally) CategoryTotals(ctx context.Context, categoryID domain.CategoryID) (CategoryStanding, error) {
	if _, err := t.categories.FindByID(ctx, categoryID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return CategoryStanding{}, ErrCategoryNotFound
		}
		return CategoryStanding{}, err
	}

	nominees, err := t.nominees.ListByCategory(ctx, categoryID)
	if err != nil {
		return CategoryStanding{}, fmt.Errorf("tally: list nominees: %w", err)
	}
	counts, err := t.ballots.CountByNominee(ctx, categoryID)
	if err != nil {
		return CategoryStanding{}, fmt.Errorf("tally: count ballots: %w", err)
	}

	rows := make([]domain.CategoryResultRow, len(nominees))
	for i, n := range nominees {
		rows[i] = domain.CategoryResultRow{
			NomineeID: n.ID,
			Name:      n.Name,
			Votes:     counts[n.ID],
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Votes != rows[j].Votes {
			return rows[i].Votes > rows[j].Votes
		}
		return rows[i].NomineeID < rows[j].NomineeID
	})

	standing := CategoryStanding{CategoryID: categoryID, Rows: rows}
	if len(rows) > 0 {
		standing.Winner = &rows[0]
	}
	return standing, nil
}

// EventLeaderboard returns the event's top nominees by vote count across all
// of its categories.
func (t *Tally) EventLeaderboard(ctx context.Context, eventID domain.EventID, limit int) ([]domain.NomineeCount, error) {
	if _, err := t.events.FindByID(ctx, eventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	if limit <= 0 {
		limit = 10
	}

	top, err := t.ballots.TopNominees(ctx, eventID, limit)
	if err != nil {
		return nil, fmt.Errorf("tally: top nominees: %w", err)
	}
	return top, nil
}

// DailyTotals buckets the event's ballots by creation date in the tally's
// configured timezone. Buckets follow the deployment calendar, not UTC.
func (t *Tally) DailyTotals(ctx context.Context, eventID domain.EventID) ([]domain.DailyCount, error) {
	if _, err := t.events.FindByID(ctx, eventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}

	days, err := t.ballots.CountByDay(ctx, eventID, t.loc)
	if err != nil {
		return nil, fmt.Errorf("tally: count by day: %w", err)
	}
	return days, nil
}
