package domain

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned by repositories when the requested row is absent.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateBallot is returned by the ledger when an insert hits the
	// (voter_id, category_id) unique index. The voting engine absorbs it and
	// retries as an update; it never reaches callers.
	ErrDuplicateBallot = errors.New("ballot already exists for voter and category")
)

type EventRepository interface {
	Create(ctx context.Context, e Event) error
	FindByID(ctx context.Context, id EventID) (Event, error)
	ListOpen(ctx context.Context, now time.Time) ([]Event, error)
}

type CategoryRepository interface {
	Create(ctx context.Context, c Category) error
	FindByID(ctx context.Context, id CategoryID) (Category, error)
	ListByEvent(ctx context.Context, eventID EventID) ([]Category, error)
}

type NomineeRepository interface {
	BulkCreate(ctx context.Context, categoryID CategoryID, nominees []Nominee) error
	FindByID(ctx context.Context, id NomineeID) (Nominee, error)
	ListByCategory(ctx context.Context, categoryID CategoryID) ([]Nominee, error)
}

type VoterRepository interface {
	Create(ctx context.Context, v Voter) error
	FindByID(ctx context.Context, id VoterID) (Voter, error)
}

// BallotRepository is the vote ledger. Writes go exclusively through the
// voting engine; the aggregate reads back ResultsTally.
type BallotRepository interface {
	Insert(ctx context.Context, b Ballot) error
	ReplaceNominee(ctx context.Context, id BallotID, nomineeID NomineeID, updatedAt time.Time) error
	FindByVoterAndCategory(ctx context.Context, voterID VoterID, categoryID CategoryID) (Ballot, error)
	DeleteByVoterAndCategory(ctx context.Context, voterID VoterID, categoryID CategoryID) (bool, error)
	ListByVoter(ctx context.Context, voterID VoterID) ([]Ballot, error)
	CountByNominee(ctx context.Context, categoryID CategoryID) (map[NomineeID]int64, error)
	CountByCategory(ctx context.Context, categoryID CategoryID) (int64, error)
	TopNominees(ctx context.Context, eventID EventID, limit int) ([]NomineeCount, error)
	CountByDay(ctx context.Context, eventID EventID, loc *time.Location) ([]DailyCount, error)
	GroupByEventCategory(ctx context.Context) (map[EventID]map[CategoryID]int64, error)
}

// RateLimiter gates cast attempts before the ledger is touched.
type RateLimiter interface {
	Allow(ctx context.Context, voterID VoterID, categoryID CategoryID) error
}

type Clock interface {
	Now() time.Time
}

// Publisher is the engine-facing side of the event bus. Publish blocks until
// every registered listener has returned; listener failures never surface.
type Publisher interface {
	Publish(ctx context.Context, n Notification)
}
