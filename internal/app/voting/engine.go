// Package voting implements the election engine: window resolution, ballot
// casting and reset, and the per-voter/per-category single-ballot invariant.
package voting

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/marcelojr/awards/internal/domain"
	"github.com/marcelojr/awards/internal/platform/ids"
)

var (
	ErrEventNotFound    = errors.New("event not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrNomineeNotFound  = errors.New("nominee not found")
	ErrVoterNotFound    = errors.New("voter not found")

	ErrCategoryNotInEvent   = errors.New("category does not belong to event")
	ErrNomineeNotInCategory = errors.New("nominee does not belong to category")

	ErrVotingNotStarted = errors.New("voting not started")
	ErrVotingClosed     = errors.New("voting closed")
)

// CastReceipt reports the outcome of a successful cast.
type CastReceipt struct {
	BallotID domain.BallotID
	Updated  bool
}

// Engine orchestrates cast/reset against the ballot ledger. It holds no
// in-process lock: concurrent casts for the same (voter, category) race to
// the ledger's unique index and the loser is converted into an update.
type Engine struct {
	events     domain.EventRepository
	categories domain.CategoryRepository
	nominees   domain.NomineeRepository
	voters     domain.VoterRepository
	ballots    domain.BallotRepository
	limiter    domain.RateLimiter
	clock      domain.Clock
	bus        domain.Publisher
	ids        *ids.Generator
}

func NewEngine(
	events domain.EventRepository,
	categories domain.CategoryRepository,
	nominees domain.NomineeRepository,
	voters domain.VoterRepository,
	ballots domain.BallotRepository,
	limiter domain.RateLimiter,
	clock domain.Clock,
	bus domain.Publisher,
	idsGen *ids.Generator,
) *Engine {
	if idsGen == nil {
		idsGen = ids.DefaultGenerator()
	}
	return &Engine{
		events:     events,
		categories: categories,
		nominees:   nominees,
		voters:     voters,
		ballots:    ballots,
		limiter:    limiter,
		clock:      clock,
		bus:        bus,
		ids:        idsGen,
	}
}

// Cast records or replaces the voter's ballot in the category. The window is
// re-resolved from wall-clock time on every call; mutability is governed
// purely by the effective window, never by ballot state.
func (e *Engine) Cast(ctx context.Context, voterID domain.VoterID, eventID domain.EventID, categoryID domain.CategoryID, nomineeID domain.NomineeID) (CastReceipt, error) {
	if _, err := e.voters.FindByID(ctx, voterID); err != nil {
		return CastReceipt{}, mapNotFound(err, ErrVoterNotFound)
	}
	event, err := e.events.FindByID(ctx, eventID)
	if err != nil {
		return CastReceipt{}, mapNotFound(err, ErrEventNotFound)
	}
	category, err := e.categories.FindByID(ctx, categoryID)
	if err != nil {
		return CastReceipt{}, mapNotFound(err, ErrCategoryNotFound)
	}
	nominee, err := e.nominees.FindByID(ctx, nomineeID)
	if err != nil {
		return CastReceipt{}, mapNotFound(err, ErrNomineeNotFound)
	}

	if category.EventID != event.ID {
		return CastReceipt{}, ErrCategoryNotInEvent
	}
	if nominee.CategoryID != category.ID {
		return CastReceipt{}, ErrNomineeNotInCategory
	}

	if e.limiter != nil {
		if err := e.limiter.Allow(ctx, voterID, categoryID); err != nil {
			return CastReceipt{}, err
		}
	}

	now := e.clock.Now()
	if err := ResolveWindow(now, event, category).Contains(now); err != nil {
		return CastReceipt{}, err
	}

	receipt, err := e.upsertBallot(ctx, voterID, eventID, categoryID, nomineeID)
	if err != nil {
		return CastReceipt{}, err
	}

	e.bus.Publish(ctx, domain.VoteCast{
		EventID:    eventID,
		CategoryID: categoryID,
		NomineeID:  nomineeID,
		VoterID:    voterID,
		Updated:    receipt.Updated,
		BallotID:   receipt.BallotID,
	})
	return receipt, nil
}

func (e *Engine) upsertBallot(ctx context.Context, voterID domain.VoterID, eventID domain.EventID, categoryID domain.CategoryID, nomineeID domain.NomineeID) (CastReceipt, error) {
	now := e.clock.Now()

	existing, err := e.ballots.FindByVoterAndCategory(ctx, voterID, categoryID)
	switch {
	case err == nil:
		if err := e.ballots.ReplaceNominee(ctx, existing.ID, nomineeID, now); err != nil {
			return CastReceipt{}, fmt.Errorf("voting: replace nominee: %w", err)
		}
		return CastReceipt{BallotID: existing.ID, Updated: true}, nil
	case !errors.Is(err, domain.ErrNotFound):
		return CastReceipt{}, fmt.Errorf("voting: load ballot: %w", err)
	}

	ballot := domain.Ballot{
		ID:         domain.BallotID(e.ids.New()),
		EventID:    eventID,
		CategoryID: categoryID,
		NomineeID:  nomineeID,
		VoterID:    voterID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	err = e.ballots.Insert(ctx, ballot)
	if err == nil {
		return CastReceipt{BallotID: ballot.ID, Updated: false}, nil
	}
	if !errors.Is(err, domain.ErrDuplicateBallot) {
		return CastReceipt{}, fmt.Errorf("voting: insert ballot: %w", err)
	}

	// A concurrent cast won the insert race. The unique index already holds
	// the invariant, so fall through to the update path against the row that
	// beat us; the caller never sees the conflict.
	winner, err := e.ballots.FindByVoterAndCategory(ctx, voterID, categoryID)
	if err != nil {
		return CastReceipt{}, fmt.Errorf("voting: reload ballot after conflict: %w", err)
	}
	if err := e.ballots.ReplaceNominee(ctx, winner.ID, nomineeID, now); err != nil {
		return CastReceipt{}, fmt.Errorf("voting: replace nominee after conflict: %w", err)
	}
	return CastReceipt{BallotID: winner.ID, Updated: true}, nil
}

// Reset deletes the voter's ballot in the category, gated by the same
// effective window as Cast. Resetting a category with no ballot succeeds as
// a no-op and still publishes VoteReset.
func (e *Engine) Reset(ctx context.Context, voterID domain.VoterID, categoryID domain.CategoryID) error {
	category, err := e.categories.FindByID(ctx, categoryID)
	if err != nil {
		return mapNotFound(err, ErrCategoryNotFound)
	}
	event, err := e.events.FindByID(ctx, category.EventID)
	if err != nil {
		return mapNotFound(err, ErrEventNotFound)
	}

	now := e.clock.Now()
	if err := ResolveWindow(now, event, category).Contains(now); err != nil {
		return err
	}

	if _, err := e.ballots.DeleteByVoterAndCategory(ctx, voterID, categoryID); err != nil {
		return fmt.Errorf("voting: delete ballot: %w", err)
	}

	e.bus.Publish(ctx, domain.VoteReset{CategoryID: categoryID, VoterID: voterID})
	return nil
}

// MyBallots lists the voter's current ballots across all categories.
func (e *Engine) MyBallots(ctx context.Context, voterID domain.VoterID) ([]domain.BallotRef, error) {
	ballots, err := e.ballots.ListByVoter(ctx, voterID)
	if err != nil {
		return nil, fmt.Errorf("voting: list ballots: %w", err)
	}

	refs := make([]domain.BallotRef, len(ballots))
	for i, b := range ballots {
		refs[i] = domain.BallotRef{
			EventID:    b.EventID,
			CategoryID: b.CategoryID,
			NomineeID:  b.NomineeID,
		}
	}
	return refs, nil
}

// CategoryResults returns one row per nominee of the category, zero counts
// included, ordered by votes descending. Ties break on ascending nominee id
// so equal counts always render in a stable order.
func (e *Engine) CategoryResults(ctx context.Context, categoryID domain.CategoryID) ([]domain.CategoryResultRow, error) {
	if _, err := e.categories.FindByID(ctx, categoryID); err != nil {
		return nil, mapNotFound(err, ErrCategoryNotFound)
	}

	nominees, err := e.nominees.ListByCategory(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("voting: list nominees: %w", err)
	}
	counts, err := e.ballots.CountByNominee(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("voting: count ballots: %w", err)
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
	return rows, nil
}

func mapNotFound(err, sentinel error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return sentinel
	}
	return err
}
