package entry

import (
	"fmt"
	"time"
)

// Status represents an entry's lifecycle stage. Building and locked alternate
// freely while the round is open; settled is terminal.
type Status string

const (
	StatusBuilding Status = "building"
	StatusLocked   Status = "locked"
	StatusSettled  Status = "settled"
)

var AllStatuses = map[Status]struct{}{
	StatusBuilding: {},
	StatusLocked:   {},
	StatusSettled:  {},
}

// Entry is one user's pick portfolio for a round.
type Entry struct {
	ID           string
	RoundID      string
	UserID       string
	Username     string
	Status       Status
	CreditsStart int
	CreditsEnd   *int
	LockedAt     *time.Time
}

func (e Entry) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("entry id is required")
	}
	if e.RoundID == "" {
		return fmt.Errorf("entry round id is required")
	}
	if e.UserID == "" {
		return fmt.Errorf("entry user id is required")
	}
	if _, ok := AllStatuses[e.Status]; !ok {
		return fmt.Errorf("invalid entry status: %s", e.Status)
	}
	if e.CreditsStart < 0 {
		return fmt.Errorf("entry starting credits must be >= 0")
	}
	return nil
}

// Selection is one chosen pick option plus its stake. At most one selection
// exists per (entry, pick); repositories upsert on that key.
type Selection struct {
	ID           string
	EntryID      string
	PickID       string
	PickOptionID string
	Stake        int
	Payout       *int
}
