// Package lifecycle holds the shutdown state machine shared by applications
// and servers. Everything here is pure: no storage, no logging.
package lifecycle

import (
	"fmt"
	"strings"
)

// Status is the shutdown state of an application or server
type Status string

const (
	Active           Status = "active"
	ShutdownPending  Status = "shutdown_pending"
	ShutdownVerified Status = "shutdown_verified"
)

// Initial is the status every new entity starts in
const Initial = Active

var ranks = map[Status]int{
	Active:           0,
	ShutdownPending:  1,
	ShutdownVerified: 2,
}

// Valid reports whether s is one of the known statuses
func (s Status) Valid() bool {
	_, ok := ranks[s]
	return ok
}

func (s Status) String() string {
	return string(s)
}

// ParseStatus converts a raw value into a Status. Surrounding whitespace and
// case are ignored.
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToLower(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", fmt.Errorf("unknown status %q", raw)
	}
	return s, nil
}

// Rank orders statuses along the shutdown progression. Unknown statuses rank -1.
func Rank(s Status) int {
	r, ok := ranks[s]
	if !ok {
		return -1
	}
	return r
}

// CanTransition reports whether moving from one status to another is allowed.
// Skipping shutdown_pending is allowed, moving backwards is not, and staying
// put is a legal no-op.
func CanTransition(from, to Status) bool {
	if !from.Valid() || !to.Valid() {
		return false
	}
	return Rank(to) >= Rank(from)
}

// IllegalTransitionError is returned when a status change would move an
// entity backwards along the lifecycle.
type IllegalTransitionError struct {
	Entity string
	Id     string
	From   Status
	To     Status
}

func (e *IllegalTransitionError) Error() string {
	if e.Entity == "" {
		return fmt.Sprintf("illegal status transition %s -> %s", e.From, e.To)
	}
	return fmt.Sprintf("illegal status transition for %s %s: %s -> %s", e.Entity, e.Id, e.From, e.To)
}

// CheckTransition returns an *IllegalTransitionError when from -> to is not allowed
func CheckTransition(from, to Status) error {
	if CanTransition(from, to) {
		return nil
	}
	return &IllegalTransitionError{From: from, To: to}
}

// Summary is the fleet-readiness view over a set of statuses
type Summary struct {
	Total           int `json:"total"`
	Verified        int `json:"verified"`
	Pending         int `json:"pending"`
	Active          int `json:"active"`
	ShutdownPending int `json:"shutdown_pending"`
}

// Tally counts statuses. Pending covers everything not yet verified, so
// Verified + Pending always equals Total.
func Tally(statuses []Status) Summary {
	var sum Summary
	for _, s := range statuses {
		sum.Total++
		switch s {
		case ShutdownVerified:
			sum.Verified++
		case ShutdownPending:
			sum.ShutdownPending++
		default:
			sum.Active++
		}
	}
	sum.Pending = sum.Total - sum.Verified
	return sum
}
