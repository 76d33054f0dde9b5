package settlement

import (
	"math"

	"github.com/cockroachdb/errors"

	"github.com/riskibarqy/pick-portfolio/internal/domain/pick"
)

// Malformed inputs are programming errors: they abort the enclosing write
// instead of being folded into a validation result.
var (
	ErrInvalidStake   = errors.New("stake must be a non-negative integer")
	ErrInvalidOdds    = errors.New("odds must be greater than zero")
	ErrInvalidCredits = errors.New("starting credits must be a non-negative integer")
	ErrPendingResult  = errors.New("cannot settle a pending result")
)

// CalculatePayout applies the payout law for one selection: floor(stake*odds)
// on a win, zero on a loss, the stake back on a void.
func CalculatePayout(stake int, odds float64, result pick.Result) (int, error) {
	if stake < 0 {
		return 0, errors.Wrapf(ErrInvalidStake, "stake=%d", stake)
	}
	if odds <= 0 || math.IsNaN(odds) || math.IsInf(odds, 0) {
		return 0, errors.Wrapf(ErrInvalidOdds, "odds=%v", odds)
	}

	switch result {
	case pick.ResultWin:
		return int(math.Floor(float64(stake) * odds)), nil
	case pick.ResultLose:
		return 0, nil
	case pick.ResultVoid:
		return stake, nil
	case pick.ResultPending:
		return 0, errors.Wrapf(ErrPendingResult, "stake=%d odds=%v", stake, odds)
	default:
		return 0, errors.Newf("unknown pick result %q", result)
	}
}

// SelectionStake is the settlement view of one stored selection.
type SelectionStake struct {
	SelectionID string
	Stake       int
	Odds        float64
	Result      pick.Result
}

// SettledSelection is the computed payout for one selection.
type SettledSelection struct {
	SelectionID string
	Payout      int
}

// EntryResult is the outcome of settling one entry.
type EntryResult struct {
	Selections    []SettledSelection
	TotalStake    int
	CashRemaining int
	CreditsEnd    int
}

// SettleEntry computes final credits for one entry. It is pure and
// idempotent: a crashed batch can recompute from the same stored rows without
// double-paying.
func SettleEntry(selections []SelectionStake, creditsStart int) (EntryResult, error) {
	if creditsStart < 0 {
		return EntryResult{}, errors.Wrapf(ErrInvalidCredits, "credits_start=%d", creditsStart)
	}

	totalStake := 0
	for _, selection := range selections {
		if selection.Stake < 0 {
			return EntryResult{}, errors.Wrapf(ErrInvalidStake, "selection=%s stake=%d", selection.SelectionID, selection.Stake)
		}
		totalStake += selection.Stake
	}

	cashRemaining := creditsStart - totalStake
	if cashRemaining < 0 {
		cashRemaining = 0
	}

	settled := make([]SettledSelection, 0, len(selections))
	payoutTotal := 0
	for _, selection := range selections {
		payout, err := CalculatePayout(selection.Stake, selection.Odds, selection.Result)
		if err != nil {
			return EntryResult{}, errors.Wrapf(err, "selection=%s", selection.SelectionID)
		}
		payoutTotal += payout
		settled = append(settled, SettledSelection{
			SelectionID: selection.SelectionID,
			Payout:      payout,
		})
	}

	return EntryResult{
		Selections:    settled,
		TotalStake:    totalStake,
		CashRemaining: cashRemaining,
		CreditsEnd:    cashRemaining + payoutTotal,
	}, nil
}
