package waitinglist

import "time"

// WaitingTime computes whole minutes spent waiting. The end bound is
// attendingAt when set, otherwise now. Returns ok=false when the entry has
// never checked in. Clock skew never produces a negative result.
func WaitingTime(checkedInAt, attendingAt *time.Time, now time.Time) (int, bool) {
	if checkedInAt == nil {
		return 0, false
	}
	end := now
	if attendingAt != nil {
		end = *attendingAt
	}
	return clampMinutes(end.Sub(*checkedInAt)), true
}

// TurnaroundTime computes whole minutes spent in the exam room. The end bound
// is completedAt when set, otherwise now.
func TurnaroundTime(attendingAt, completedAt *time.Time, now time.Time) (int, bool) {
	if attendingAt == nil {
		return 0, false
	}
	end := now
	if completedAt != nil {
		end = *completedAt
	}
	return clampMinutes(end.Sub(*attendingAt)), true
}

// WaitingLive reports whether the waiting timer is still advancing.
func WaitingLive(status Status) bool {
	return status == StatusWaiting
}

// TurnaroundLive reports whether the turnaround timer is still advancing.
func TurnaroundLive(status Status) bool {
	return status == StatusAttending
}

func clampMinutes(d time.Duration) int {
	if d < 0 {
		return 0
	}
	return int(d / time.Minute)
}
