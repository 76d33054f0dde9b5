package round

import (
	"fmt"
	"time"
)

// Status represents the lifecycle stage of a round. Transitions are
// forward-only: draft -> open -> locked -> settled.
type Status string

const (
	StatusDraft   Status = "draft"
	StatusOpen    Status = "open"
	StatusLocked  Status = "locked"
	StatusSettled Status = "settled"
)

var AllStatuses = map[Status]struct{}{
	StatusDraft:   {},
	StatusOpen:    {},
	StatusLocked:  {},
	StatusSettled: {},
}

var statusOrder = map[Status]int{
	StatusDraft:   0,
	StatusOpen:    1,
	StatusLocked:  2,
	StatusSettled: 3,
}

// CanTransition reports whether moving from one status to the next is allowed.
// Only strictly forward moves are valid; settled is terminal.
func CanTransition(from, to Status) bool {
	fromOrder, ok := statusOrder[from]
	if !ok {
		return false
	}
	toOrder, ok := statusOrder[to]
	if !ok {
		return false
	}
	return toOrder > fromOrder
}

// Round is a weekly competition window with its own budget and stake rules.
type Round struct {
	ID                string
	Name              string
	Status            Status
	OpensAt           time.Time
	ClosesAt          time.Time
	StartingCredits   int
	StakeStep         int
	MinStake          int
	MaxStake          int
	EnforceFullBudget bool
}

func (r Round) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("round id is required")
	}
	if _, ok := AllStatuses[r.Status]; !ok {
		return fmt.Errorf("invalid round status: %s", r.Status)
	}
	if r.StartingCredits < 0 {
		return fmt.Errorf("starting credits must be >= 0")
	}
	if r.StakeStep <= 0 {
		return fmt.Errorf("stake step must be > 0")
	}
	if r.MinStake > r.MaxStake {
		return fmt.Errorf("min stake %d exceeds max stake %d", r.MinStake, r.MaxStake)
	}
	if r.MaxStake > r.StartingCredits {
		return fmt.Errorf("max stake %d exceeds starting credits %d", r.MaxStake, r.StartingCredits)
	}
	if !r.ClosesAt.IsZero() && !r.OpensAt.IsZero() && r.ClosesAt.Before(r.OpensAt) {
		return fmt.Errorf("round closes before it opens")
	}
	return nil
}

// AcceptsChanges reports whether selection changes are still allowed.
func (r Round) AcceptsChanges(now time.Time) bool {
	if r.Status != StatusOpen {
		return false
	}
	return now.Before(r.ClosesAt)
}
