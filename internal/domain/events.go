package domain

// Notification is a domain event fanned out by the bus after a ledger write.
type Notification interface {
	Kind() string
}

// VoteCast is published after every successful cast. Updated distinguishes a
// first vote from a replaced nominee on the same ballot.
type VoteCast struct {
	EventID    EventID
	CategoryID CategoryID
	NomineeID  NomineeID
	VoterID    VoterID
	Updated    bool
	BallotID   BallotID
}

// VoteReset is published after every reset call inside the voting window,
// including resets that found no ballot to delete.
type VoteReset struct {
	CategoryID CategoryID
	VoterID    VoterID
}

func (VoteCast) Kind() string { return "vote_cast" }

func (VoteReset) Kind() string { return "vote_reset" }
