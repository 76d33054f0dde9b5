package pick

import (
	"time"

	"github.com/riskibarqy/pick-portfolio/internal/domain/sport"
)

// Result represents the settlement outcome of one pick option.
type Result string

const (
	ResultPending Result = "pending"
	ResultWin     Result = "win"
	ResultLose    Result = "lose"
	ResultVoid    Result = "void"
)

var AllResults = map[Result]struct{}{
	ResultPending: {},
	ResultWin:     {},
	ResultLose:    {},
	ResultVoid:    {},
}

func (r Result) Valid() bool {
	_, ok := AllResults[r]
	return ok
}

// Resolved reports whether the outcome is final. Unknown variants count as
// unresolved so settlement refuses them instead of paying out.
func (r Result) Resolved() bool {
	switch r {
	case ResultWin, ResultLose, ResultVoid:
		return true
	case ResultPending:
		return false
	default:
		return false
	}
}

// Option is one outcome of a pick's market with decimal odds.
type Option struct {
	ID     string
	PickID string
	Label  string
	Odds   float64
	Result Result
}

// Pick is a single market inside a round. Options together form the market;
// their odds feed implied-probability normalization.
type Pick struct {
	ID        string
	RoundID   string
	SportSlug string
	// Board records which board published the pick; analytics groups by it.
	Board     sport.BoardType
	Label     string
	StartTime time.Time
	Options   []Option
}

// Started reports whether the underlying event kicked off, which freezes the
// pick against selection changes.
func (p Pick) Started(now time.Time) bool {
	return !now.Before(p.StartTime)
}

// MarketOdds returns the positive odds of every option in the pick's market.
func (p Pick) MarketOdds() []float64 {
	out := make([]float64, 0, len(p.Options))
	for _, option := range p.Options {
		if option.Odds > 0 {
			out = append(out, option.Odds)
		}
	}
	return out
}

// OptionByID returns the option with the given id within the pick.
func (p Pick) OptionByID(optionID string) (Option, bool) {
	for _, option := range p.Options {
		if option.ID == optionID {
			return option, true
		}
	}
	return Option{}, false
}
