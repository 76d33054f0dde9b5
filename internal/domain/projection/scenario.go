package projection

import (
	"sort"
	"time"

	"github.com/riskibarqy/pick-portfolio/internal/domain/pick"
)

// Scenario weights for pending selections. Conservative keeps 72% of the
// expected payout; aggressive moves 62% of the way from expected to ceiling.
const (
	conservativeWeight = 0.72
	aggressiveWeight   = 0.62
)

// SelectionRange holds the five scenario payouts for one selection.
type SelectionRange struct {
	Min          int
	Conservative int
	Base         int
	Aggressive   int
	Max          int
}

// ProjectSelectionRange computes scenario payouts for one selection. Resolved
// selections collapse every scenario to the realized payout.
func ProjectSelectionRange(sel Selection) SelectionRange {
	bounds := boundsFor(sel)
	if sel.Result != pick.ResultPending {
		return SelectionRange{
			Min:          bounds.base,
			Conservative: bounds.base,
			Base:         bounds.base,
			Aggressive:   bounds.base,
			Max:          bounds.base,
		}
	}

	conservative := clampInt(roundHalf(float64(bounds.base)*conservativeWeight), 0, bounds.max)
	aggressive := clampInt(roundHalf(float64(bounds.base)+float64(bounds.max-bounds.base)*aggressiveWeight), 0, bounds.max)

	return SelectionRange{
		Min:          bounds.min,
		Conservative: conservative,
		Base:         bounds.base,
		Aggressive:   aggressive,
		Max:          bounds.max,
	}
}

// EntryProjection is the scenario view of one entry's final credits.
type EntryProjection struct {
	EntryID                string
	UserID                 string
	Username               string
	LockedAt               *time.Time
	CashRemaining          int
	MinCreditsEnd          int
	ConservativeCreditsEnd int
	BaseCreditsEnd         int
	AggressiveCreditsEnd   int
	MaxCreditsEnd          int
	VolatilityRange        int
}

// ProjectEntryRange sums per-selection scenario payouts into projected final
// credits per scenario.
func ProjectEntryRange(item Entry) EntryProjection {
	cash := item.CashRemaining()
	out := EntryProjection{
		EntryID:                item.EntryID,
		UserID:                 item.UserID,
		Username:               item.Username,
		LockedAt:               item.LockedAt,
		CashRemaining:          cash,
		MinCreditsEnd:          cash,
		ConservativeCreditsEnd: cash,
		BaseCreditsEnd:         cash,
		AggressiveCreditsEnd:   cash,
		MaxCreditsEnd:          cash,
	}

	for _, selection := range item.Selections {
		ranged := ProjectSelectionRange(selection)
		out.MinCreditsEnd += ranged.Min
		out.ConservativeCreditsEnd += ranged.Conservative
		out.BaseCreditsEnd += ranged.Base
		out.AggressiveCreditsEnd += ranged.Aggressive
		out.MaxCreditsEnd += ranged.Max
	}

	out.VolatilityRange = out.MaxCreditsEnd - out.MinCreditsEnd
	return out
}

// ProjectedRow is one base-scenario standing around the acting user.
type ProjectedRow struct {
	Rank           int
	EntryID        string
	UserID         string
	Username       string
	BaseCreditsEnd int
}

// ProjectedRankRange bounds the user's possible finish per scenario. Each
// rank is an independent envelope estimate against the declared opposing
// scenario, not a joint probability bound.
type ProjectedRankRange struct {
	CurrentRank      int
	ConservativeRank int
	AggressiveRank   int
	BestRank         int
	WorstRank        int
	Around           []ProjectedRow
}

const aroundWindow = 5

// ComputeProjectedRankRange ranks entries by base projected credits and
// derives scenario ranks for the acting user. Returns nil when the user has
// no entry.
func ComputeProjectedRankRange(entries []Entry, currentUserID string) *ProjectedRankRange {
	if len(entries) == 0 || currentUserID == "" {
		return nil
	}

	projections := make([]EntryProjection, 0, len(entries))
	for _, item := range entries {
		projections = append(projections, ProjectEntryRange(item))
	}

	sort.SliceStable(projections, func(i, j int) bool {
		return compareProjected(projections[i], projections[i].BaseCreditsEnd, projections[j], projections[j].BaseCreditsEnd) < 0
	})

	userIdx := -1
	for idx, item := range projections {
		if item.UserID == currentUserID {
			userIdx = idx
			break
		}
	}
	if userIdx < 0 {
		return nil
	}
	user := projections[userIdx]

	out := &ProjectedRankRange{
		CurrentRank:      userIdx + 1,
		ConservativeRank: substitutedRank(projections, userIdx, user.ConservativeCreditsEnd, func(p EntryProjection) int { return p.BaseCreditsEnd }),
		AggressiveRank:   substitutedRank(projections, userIdx, user.AggressiveCreditsEnd, func(p EntryProjection) int { return p.BaseCreditsEnd }),
		BestRank:         substitutedRank(projections, userIdx, user.MaxCreditsEnd, func(p EntryProjection) int { return p.ConservativeCreditsEnd }),
		WorstRank:        substitutedRank(projections, userIdx, user.ConservativeCreditsEnd, func(p EntryProjection) int { return p.AggressiveCreditsEnd }),
		Around:           aroundRows(projections, userIdx),
	}
	return out
}

func compareProjected(a EntryProjection, aScore int, b EntryProjection, bScore int) int {
	return compareScored(
		Row{LockedAt: a.LockedAt, Username: a.Username}, aScore,
		Row{LockedAt: b.LockedAt, Username: b.Username}, bScore,
	)
}

// substitutedRank replaces the user's score with a scenario value while every
// other entry scores via the opposing scenario.
func substitutedRank(projections []EntryProjection, userIdx, userScore int, otherScore func(EntryProjection) int) int {
	rank := 1
	user := projections[userIdx]
	for idx, other := range projections {
		if idx == userIdx {
			continue
		}
		if compareProjected(other, otherScore(other), user, userScore) < 0 {
			rank++
		}
	}
	return rank
}

// aroundRows returns up to five base-ranked rows centered on the user, two
// above and two below, clamped at the edges.
func aroundRows(projections []EntryProjection, userIdx int) []ProjectedRow {
	start := userIdx - 2
	if start+aroundWindow > len(projections) {
		start = len(projections) - aroundWindow
	}
	if start < 0 {
		start = 0
	}
	end := start + aroundWindow
	if end > len(projections) {
		end = len(projections)
	}

	out := make([]ProjectedRow, 0, end-start)
	for idx := start; idx < end; idx++ {
		item := projections[idx]
		out = append(out, ProjectedRow{
			Rank:           idx + 1,
			EntryID:        item.EntryID,
			UserID:         item.UserID,
			Username:       item.Username,
			BaseCreditsEnd: item.BaseCreditsEnd,
		})
	}
	return out
}
