package waitinglist

import "time"

// transitionTable maps a target status to the statuses it may be reached
// from. Terminal statuses never appear as a source.
var transitionTable = map[Status][]Status{
	StatusWaiting:   {StatusScheduled},
	StatusAttending: {StatusWaiting},
	StatusCompleted: {StatusAttending},
	StatusCancelled: {StatusScheduled, StatusWaiting, StatusAttending},
	StatusNoShow:    {StatusScheduled, StatusWaiting},
}

// CanTransition reports whether from → to is a legal transition.
// A no-op request (from == to) is always accepted.
func CanTransition(from, to Status) bool {
	if from == to {
		return true
	}
	for _, allowed := range transitionTable[to] {
		if allowed == from {
			return true
		}
	}
	return false
}

// ApplyTransition moves e to the target status and stamps the timestamp the
// transition owns. A no-op request leaves the entry untouched. An illegal
// transition returns ErrInvalidTransition without modifying e.
func ApplyTransition(e *Entry, to Status, now time.Time) error {
	if e.Status == to {
		return nil
	}
	if !CanTransition(e.Status, to) {
		return ErrInvalidTransition
	}

	switch {
	case to == StatusWaiting:
		if e.CheckedInAt == nil {
			e.CheckedInAt = &now
		}
	case to == StatusAttending:
		e.AttendingAt = &now
	case to.Terminal():
		e.CompletedAt = &now
	}
	e.Status = to
	e.UpdatedAt = now
	return nil
}
