package entry

import (
	"fmt"
	"time"

	"github.com/riskibarqy/pick-portfolio/internal/domain/pick"
	"github.com/riskibarqy/pick-portfolio/internal/domain/round"
)

// ViolationCode identifies one validation rule failure.
type ViolationCode string

const (
	CodeRoundClosed        ViolationCode = "ROUND_CLOSED"
	CodePickAlreadyStarted ViolationCode = "PICK_ALREADY_STARTED"
	CodeStakeOutOfRange    ViolationCode = "STAKE_OUT_OF_RANGE"
	CodeTotalStakeExceeded ViolationCode = "TOTAL_STAKE_EXCEEDED"
	CodeFullBudgetRequired ViolationCode = "FULL_BUDGET_REQUIRED"
)

type Violation struct {
	Code    ViolationCode
	PickID  string
	Message string
}

// ValidationResult carries every rule failure at once. Totals are populated
// even when validation fails so callers can always render them.
type ValidationResult struct {
	OK               bool
	TotalStake       int
	RemainingCredits int
	Violations       []Violation
}

func (r ValidationResult) HasCode(code ViolationCode) bool {
	for _, v := range r.Violations {
		if v.Code == code {
			return true
		}
	}
	return false
}

// ValidateEntry checks a full selection set ahead of a lock or commit.
// Violations accumulate; nothing short-circuits. Per-pick freeze checks are
// out of scope here since an entry legitimately keeps selections on picks
// that started mid-round; those apply to changes via ValidateSelection.
func ValidateEntry(rnd round.Round, picks []pick.Pick, selections []Selection, creditsAvailable int, now time.Time) ValidationResult {
	result := ValidationResult{}

	if !now.Before(rnd.ClosesAt) {
		result.Violations = append(result.Violations, Violation{
			Code:    CodeRoundClosed,
			Message: "round is closed for changes",
		})
	}

	totalStake := 0
	for _, selection := range selections {
		totalStake += selection.Stake
		if selection.Stake < rnd.MinStake || selection.Stake > rnd.MaxStake {
			result.Violations = append(result.Violations, Violation{
				Code:    CodeStakeOutOfRange,
				PickID:  selection.PickID,
				Message: fmt.Sprintf("stake %d outside [%d, %d]", selection.Stake, rnd.MinStake, rnd.MaxStake),
			})
		}
	}

	result.TotalStake = totalStake
	result.RemainingCredits = creditsAvailable - totalStake

	if totalStake > creditsAvailable {
		result.Violations = append(result.Violations, Violation{
			Code:    CodeTotalStakeExceeded,
			Message: fmt.Sprintf("total stake %d exceeds available credits %d", totalStake, creditsAvailable),
		})
	}

	if rnd.EnforceFullBudget && creditsAvailable-totalStake != 0 {
		result.Violations = append(result.Violations, Violation{
			Code:    CodeFullBudgetRequired,
			Message: fmt.Sprintf("round requires the full budget to be staked, %d credits left", creditsAvailable-totalStake),
		})
	}

	result.OK = len(result.Violations) == 0
	return result
}

// ValidateSelection checks one selection change against the resulting set.
// The candidate replaces any existing selection on the same pick; totals are
// computed over the replaced set. Full-budget enforcement is a lock-time
// concern and stays in ValidateEntry.
func ValidateSelection(rnd round.Round, picks []pick.Pick, otherSelections []Selection, candidate Selection, creditsAvailable int, now time.Time) ValidationResult {
	result := ValidationResult{}

	if !now.Before(rnd.ClosesAt) {
		result.Violations = append(result.Violations, Violation{
			Code:    CodeRoundClosed,
			Message: "round is closed for changes",
		})
	}

	if target, ok := pickByID(picks, candidate.PickID); ok && target.Started(now) {
		result.Violations = append(result.Violations, Violation{
			Code:    CodePickAlreadyStarted,
			PickID:  candidate.PickID,
			Message: "pick event already started",
		})
	}

	if candidate.Stake < rnd.MinStake || candidate.Stake > rnd.MaxStake {
		result.Violations = append(result.Violations, Violation{
			Code:    CodeStakeOutOfRange,
			PickID:  candidate.PickID,
			Message: fmt.Sprintf("stake %d outside [%d, %d]", candidate.Stake, rnd.MinStake, rnd.MaxStake),
		})
	}

	totalStake := candidate.Stake
	for _, selection := range otherSelections {
		if selection.PickID == candidate.PickID {
			continue
		}
		totalStake += selection.Stake
	}

	result.TotalStake = totalStake
	result.RemainingCredits = creditsAvailable - totalStake

	if totalStake > creditsAvailable {
		result.Violations = append(result.Violations, Violation{
			Code:    CodeTotalStakeExceeded,
			Message: fmt.Sprintf("total stake %d exceeds available credits %d", totalStake, creditsAvailable),
		})
	}

	result.OK = len(result.Violations) == 0
	return result
}

func pickByID(picks []pick.Pick, id string) (pick.Pick, bool) {
	for _, item := range picks {
		if item.ID == id {
			return item, true
		}
	}
	return pick.Pick{}, false
}
