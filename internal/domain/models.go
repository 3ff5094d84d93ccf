package domain

import (
	"time"
)

type (
	EventID    string
	CategoryID string
	NomineeID  string
	VoterID    string
	BallotID   string
)

// Event is a top-level election occasion bounding one or more categories.
// EndAt nil means the event is open-ended.
type Event struct {
	ID         EventID    `gorm:"column:id;type:char(26);primaryKey"`
	Name       string     `gorm:"column:name;type:text;not null"`
	StartAt    time.Time  `gorm:"column:start_at;not null"`
	EndAt      *time.Time `gorm:"column:end_at"`
	Categories []Category `gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

// Category is a contest within an event. VotingStart/VotingEnd, when both
// set, override the event window for this category only.
type Category struct {
	ID          CategoryID `gorm:"column:id;type:char(26);primaryKey"`
	EventID     EventID    `gorm:"column:event_id;type:char(26);not null;index"`
	Name        string     `gorm:"column:name;type:text;not null"`
	VotingStart *time.Time `gorm:"column:voting_start"`
	VotingEnd   *time.Time `gorm:"column:voting_end"`
	Nominees    []Nominee  `gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

type Nominee struct {
	ID         NomineeID  `gorm:"column:id;type:char(26);primaryKey"`
	CategoryID CategoryID `gorm:"column:category_id;type:char(26);not null;index"`
	Name       string     `gorm:"column:name;type:text;not null"`
	PhotoURL   string     `gorm:"column:photo_url;type:text"`
	CreatedAt  time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

type Voter struct {
	ID        VoterID   `gorm:"column:id;type:char(26);primaryKey"`
	Name      string    `gorm:"column:name;type:text;not null"`
	Active    bool      `gorm:"column:active;not null;default:true"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// Ballot is a voter's single current choice within one category. The unique
// index on (voter_id, category_id) is the backstop for the one-ballot
// invariant under concurrent casts.
type Ballot struct {
	ID         BallotID   `gorm:"column:id;type:char(26);primaryKey"`
	EventID    EventID    `gorm:"column:event_id;type:char(26);not null;index:idx_ballots_event"`
	CategoryID CategoryID `gorm:"column:category_id;type:char(26);not null;uniqueIndex:idx_ballots_voter_category,priority:2"`
	NomineeID  NomineeID  `gorm:"column:nominee_id;type:char(26);not null;index:idx_ballots_nominee"`
	VoterID    VoterID    `gorm:"column:voter_id;type:char(26);not null;uniqueIndex:idx_ballots_voter_category,priority:1"`
	CreatedAt  time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

// BallotRef is the read-side projection returned by MyBallots.
type BallotRef struct {
	EventID    EventID
	CategoryID CategoryID
	NomineeID  NomineeID
}

// CategoryResultRow is one nominee's standing inside a category.
type CategoryResultRow struct {
	NomineeID NomineeID
	Name      string
	Votes     int64
}

// NomineeCount is an event-wide leaderboard entry.
type NomineeCount struct {
	NomineeID  NomineeID
	CategoryID CategoryID
	Name       string
	Votes      int64
}

// DailyCount buckets ballot creations by calendar day in the deployment's
// configured timezone.
type DailyCount struct {
	Day   time.Time
	Total int64
}

func (Event) TableName() string { return "events" }

func (Category) TableName() string { return "categories" }

func (Nominee) TableName() string { return "nominees" }

func (Voter) TableName() string { return "voters" }

func (Ballot) TableName() string { return "ballots" }
