package domain

import "sort"

// Status of a route within the delivery lifecycle.
type Status string

const (
	StatusPending    Status = "pending"
	StatusAssigned   Status = "assigned"
	StatusDelivering Status = "delivering"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
	StatusFailed     Status = "failed"
)

// transitions is the single authority for legal status changes.
// delivered and cancelled are terminal; failed re-enters the pool via pending.
var transitions = map[Status][]Status{
	StatusPending:    {StatusAssigned, StatusCancelled},
	StatusAssigned:   {StatusDelivering, StatusCancelled},
	StatusDelivering: {StatusDelivered, StatusFailed},
	StatusDelivered:  {},
	StatusCancelled:  {},
	StatusFailed:     {StatusPending},
}

// workerTransitions is the subset of edges a delivery worker may take on
// a route assigned to them. Everything else is an administrator action.
var workerTransitions = map[Status][]Status{
	StatusAssigned:   {StatusDelivering},
	StatusDelivering: {StatusDelivered, StatusFailed},
}

func (s Status) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// Terminal reports whether no further transitions exist from s.
func (s Status) Terminal() bool {
	return s.Valid() && len(transitions[s]) == 0
}

// Active reports whether a route in this status counts toward a
// worker's active-route capacity.
func (s Status) Active() bool {
	return s == StatusAssigned || s == StatusDelivering
}

// Deletable reports whether a route in this status may be deleted.
// Assigned, delivering and delivered routes are kept as delivery history.
func (s Status) Deletable() bool {
	return s == StatusPending || s == StatusCancelled || s == StatusFailed
}

func CanTransition(from, to Status) bool {
	for _, t := range transitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

func WorkerMayTransition(from, to Status) bool {
	for _, t := range workerTransitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

// AllowedNext returns the legal targets from s, sorted for deterministic
// error reporting.
func AllowedNext(s Status) []Status {
	out := make([]Status, len(transitions[s]))
	copy(out, transitions[s])
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func AllStatuses() []Status {
	return []Status{
		StatusPending,
		StatusAssigned,
		StatusDelivering,
		StatusDelivered,
		StatusCancelled,
		StatusFailed,
	}
}
