package models

import "fmt"

// Status is the lifecycle state of an order.
type Status string

const (
	StatusPending    Status = "pending"
	StatusPreparing  Status = "preparing"
	StatusDelivering Status = "delivering"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// Orders move forward one step at a time. Cancellation is only possible
// before preparation starts.
var transitions = map[Status][]Status{
	StatusPending:    {StatusPreparing, StatusCancelled},
	StatusPreparing:  {StatusDelivering},
	StatusDelivering: {StatusCompleted},
	StatusCompleted:  {},
	StatusCancelled:  {},
}

// stages ranks statuses by how far along the lifecycle they are. A status
// change always moves an order to a higher stage.
var stages = map[Status]int{
	StatusPending:    0,
	StatusPreparing:  1,
	StatusCancelled:  1,
	StatusDelivering: 2,
	StatusCompleted:  3,
}

// AllStatuses lists every status in lifecycle order.
func AllStatuses() []Status {
	return []Status{StatusPending, StatusPreparing, StatusDelivering, StatusCompleted, StatusCancelled}
}

func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.Valid() {
		return "", fmt.Errorf("unknown order status %q", s)
	}
	return st, nil
}

func (s Status) String() string {
	return string(s)
}

func (s Status) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// Stage is the position of s in the lifecycle. Unknown statuses rank lowest.
func (s Status) Stage() int {
	if st, ok := stages[s]; ok {
		return st
	}
	return -1
}

func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// AllowedNext returns a copy of the statuses reachable from s. Unknown
// statuses have no successors.
func (s Status) AllowedNext() []Status {
	next := transitions[s]
	out := make([]Status, len(next))
	copy(out, next)
	return out
}

func (s Status) CanTransitionTo(next Status) bool {
	for _, n := range transitions[s] {
		if n == next {
			return true
		}
	}
	return false
}
