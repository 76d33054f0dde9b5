package projection

import (
	"sort"
	"time"

	"github.com/riskibarqy/pick-portfolio/internal/domain/leaderboard"
)

// SportAll selects credits mode: every selection counts and scores are
// projected final credits. A concrete sport slug switches to net mode where
// only that sport's selections count and scores are net payout.
const SportAll = "all"

type Mode string

const (
	ModeCredits Mode = "credits"
	ModeNet     Mode = "net"
)

type Options struct {
	CurrentUserID string
	SportSlug     string
}

// Row is one live leaderboard line. MinScore and MaxScore are the row's
// certain floor and ceiling given its unresolved selections.
type Row struct {
	EntryID  string
	UserID   string
	Username string
	LockedAt *time.Time
	Score    int
	MinScore int
	MaxScore int
}

type RankedLiveRow struct {
	Rank int
	Row
}

// RankRange bounds where the acting user can still land. Best and worst are
// independent one-sided envelopes, not a joint probability bound.
type RankRange struct {
	CurrentRank int
	BestRank    int
	WorstRank   int
}

type LiveResult struct {
	Rows    []RankedLiveRow
	MyRange *RankRange
	Mode    Mode
}

// ComputeLiveLeaderboard scores not-yet-settled entries and ranks them with
// the settled-leaderboard comparator.
func ComputeLiveLeaderboard(entries []Entry, opts Options) LiveResult {
	slug := opts.SportSlug
	if slug == "" {
		slug = SportAll
	}
	mode := ModeCredits
	if slug != SportAll {
		mode = ModeNet
	}

	rows := make([]Row, 0, len(entries))
	for _, item := range entries {
		score, minScore, maxScore := scoreEntry(item, slug)
		rows = append(rows, Row{
			EntryID:  item.EntryID,
			UserID:   item.UserID,
			Username: item.Username,
			LockedAt: item.LockedAt,
			Score:    score,
			MinScore: minScore,
			MaxScore: maxScore,
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return compareScored(rows[i], rows[i].Score, rows[j], rows[j].Score) < 0
	})

	ranked := make([]RankedLiveRow, 0, len(rows))
	for idx, row := range rows {
		ranked = append(ranked, RankedLiveRow{Rank: idx + 1, Row: row})
	}

	return LiveResult{
		Rows:    ranked,
		MyRange: computeMyRange(rows, opts.CurrentUserID),
		Mode:    mode,
	}
}

func scoreEntry(item Entry, slug string) (score, minScore, maxScore int) {
	if slug == SportAll {
		cash := item.CashRemaining()
		score, minScore, maxScore = cash, cash, cash
		for _, selection := range item.Selections {
			bounds := boundsFor(selection)
			score += bounds.base
			minScore += bounds.min
			maxScore += bounds.max
		}
		return score, minScore, maxScore
	}

	for _, selection := range item.Selections {
		if selection.SportSlug != slug {
			continue
		}
		bounds := boundsFor(selection)
		score += bounds.base - selection.Stake
		minScore += bounds.min - selection.Stake
		maxScore += bounds.max - selection.Stake
	}
	return score, minScore, maxScore
}

// compareScored applies the shared leaderboard order with a substituted score.
func compareScored(a Row, aScore int, b Row, bScore int) int {
	return leaderboard.Compare(
		leaderboard.Row{CreditsEnd: aScore, LockedAt: a.LockedAt, Username: a.Username},
		leaderboard.Row{CreditsEnd: bScore, LockedAt: b.LockedAt, Username: b.Username},
	)
}

func computeMyRange(rows []Row, userID string) *RankRange {
	if userID == "" {
		return nil
	}

	userIdx := -1
	for idx, row := range rows {
		if row.UserID == userID {
			userIdx = idx
			break
		}
	}
	if userIdx < 0 {
		return nil
	}

	user := rows[userIdx]
	best := 1
	worst := 1
	for idx, other := range rows {
		if idx == userIdx {
			continue
		}
		// Best case: the user hits their ceiling while everyone else
		// bottoms out. Worst case is the inversion.
		if compareScored(other, other.MinScore, user, user.MaxScore) < 0 {
			best++
		}
		if compareScored(other, other.MaxScore, user, user.MinScore) < 0 {
			worst++
		}
	}

	return &RankRange{
		CurrentRank: userIdx + 1,
		BestRank:    best,
		WorstRank:   worst,
	}
}
