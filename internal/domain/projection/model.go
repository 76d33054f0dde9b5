package projection

import (
	"math"
	"time"

	"github.com/riskibarqy/pick-portfolio/internal/domain/pick"
)

// Selection is the projector's view of one stored selection joined with its
// pick option and market.
type Selection struct {
	PickID     string
	SportSlug  string
	Stake      int
	Odds       float64
	MarketOdds []float64
	Result     pick.Result
	// Editable is true while the round accepts changes and the pick has not
	// started.
	Editable bool
}

// Entry is one user's portfolio before settlement.
type Entry struct {
	EntryID      string
	UserID       string
	Username     string
	LockedAt     *time.Time
	CreditsStart int
	Selections   []Selection
}

// TotalStake sums the stakes across the whole portfolio.
func (e Entry) TotalStake() int {
	total := 0
	for _, selection := range e.Selections {
		total += selection.Stake
	}
	return total
}

// CashRemaining is the unstaked part of the starting budget.
func (e Entry) CashRemaining() int {
	remaining := e.CreditsStart - e.TotalStake()
	if remaining < 0 {
		return 0
	}
	return remaining
}

// payoutBounds are the floor/expected/ceiling payouts for one selection.
// Certain outcomes collapse all three to the realized payout.
type payoutBounds struct {
	min  int
	base int
	max  int
}

func maxPayout(stake int, odds float64) int {
	if stake <= 0 || odds <= 0 {
		return 0
	}
	return int(math.Floor(float64(stake) * odds))
}

func boundsFor(sel Selection) payoutBounds {
	ceiling := maxPayout(sel.Stake, sel.Odds)
	switch sel.Result {
	case pick.ResultWin:
		return payoutBounds{min: ceiling, base: ceiling, max: ceiling}
	case pick.ResultLose:
		return payoutBounds{}
	case pick.ResultVoid:
		return payoutBounds{min: sel.Stake, base: sel.Stake, max: sel.Stake}
	case pick.ResultPending:
		base := roundHalf(float64(ceiling) * ImpliedProbability(sel.Odds, sel.MarketOdds))
		return payoutBounds{min: 0, base: base, max: ceiling}
	default:
		return payoutBounds{}
	}
}

func roundHalf(v float64) int {
	return int(math.Round(v))
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
