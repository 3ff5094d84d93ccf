package voting

import (
	"time"

	"github.com/marcelojr/awards/internal/domain"
)

// Window holds the resolved open/close instants enforced for a single cast
// or reset call. End nil means the window never closes.
type Window struct {
	Start time.Time
	End   *time.Time
}

// Contains reports how now relates to the window. Both bounds are inclusive.
func (w Window) Contains(now time.Time) error {
	if now.Before(w.Start) {
		return ErrVotingNotStarted
	}
	if w.End != nil && now.After(*w.End) {
		return ErrVotingClosed
	}
	return nil
}

// coerceInclusiveEnd makes end dates cover their whole calendar day: an end
// timestamp at exactly midnight becomes 23:59:59.999 of the same day.
func coerceInclusiveEnd(end *time.Time) *time.Time {
	if end == nil {
		return nil
	}
	h, m, s := end.Clock()
	if h != 0 || m != 0 || s != 0 || end.Nanosecond() != 0 {
		return end
	}
	coerced := time.Date(end.Year(), end.Month(), end.Day(), 23, 59, 59, 999_000_000, end.Location())
	return &coerced
}

// ResolveWindow computes the effective voting window for a category inside
// its event at the given instant.
//
// A category window only takes effect when it is complete (both bounds set,
// end not before start). Even then it is ignored when it has already elapsed
// while the event is still open: voting falls back to the broader event
// window, re-opening the category for the remainder of the event.
func ResolveWindow(now time.Time, event domain.Event, category domain.Category) Window {
	eff := Window{
		Start: event.StartAt,
		End:   coerceInclusiveEnd(event.EndAt),
	}

	catStart := category.VotingStart
	catEnd := coerceInclusiveEnd(category.VotingEnd)

	categoryComplete := catStart != nil && catEnd != nil && !catEnd.Before(*catStart)
	if !categoryComplete {
		return eff
	}

	eventStillOpen := eff.End == nil || !now.After(*eff.End)
	if catEnd.Before(now) && eventStillOpen {
		return eff
	}

	return Window{Start: *catStart, End: catEnd}
}
