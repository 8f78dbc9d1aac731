package followups

import "slices"

// Status is the position of a follow-up in its lifecycle.
type Status string

const (
	PendingSchedule   Status = "pending_schedule"
	Scheduled         Status = "scheduled"
	AssignmentCreated Status = "assignment_created"
	Completed         Status = "completed"
	Overdue           Status = "overdue"
	Cancelled         Status = "cancelled"
)

// transitions is the complete set of allowed moves. Terminal statuses have no
// entry.
var transitions = map[Status][]Status{
	PendingSchedule:   {Scheduled, Cancelled},
	Scheduled:         {AssignmentCreated, Overdue, Cancelled},
	AssignmentCreated: {Completed, Overdue, Cancelled},
	Overdue:           {Completed, Cancelled},
}

// overdueEligible lists the statuses examined by the overdue sweep. Records
// already overdue are included so escalation repeats while they stay open.
var overdueEligible = []Status{Scheduled, AssignmentCreated, Overdue}

// Statuses returns every status.
func Statuses() []Status {
	return []Status{PendingSchedule, Scheduled, AssignmentCreated, Completed, Overdue, Cancelled}
}

// CanTransition reports whether a follow-up may move from one status to another.
func CanTransition(from, to Status) bool {
	return slices.Contains(transitions[from], to)
}

// Terminal reports whether no transition leaves s.
func (s Status) Terminal() bool {
	return s == Completed || s == Cancelled
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	return slices.Contains(Statuses(), s)
}
