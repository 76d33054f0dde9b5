package leaderboard

import (
	"sort"
	"time"
)

// Row is one settled entry as seen by the ranking.
type Row struct {
	EntryID    string
	UserID     string
	Username   string
	CreditsEnd int
	LockedAt   *time.Time
}

// RankedRow is a leaderboard row with its 1-based position.
type RankedRow struct {
	Rank int
	Row
}

// Compare is the total order for settled rows: credits descending, earlier
// lock first (never-locked entries sort last), username ascending. It returns
// a negative value when a ranks ahead of b.
func Compare(a, b Row) int {
	if a.CreditsEnd != b.CreditsEnd {
		if a.CreditsEnd > b.CreditsEnd {
			return -1
		}
		return 1
	}
	if c := compareLockedAt(a.LockedAt, b.LockedAt); c != 0 {
		return c
	}
	switch {
	case a.Username < b.Username:
		return -1
	case a.Username > b.Username:
		return 1
	default:
		return 0
	}
}

func compareLockedAt(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	case a.Before(*b):
		return -1
	case b.Before(*a):
		return 1
	default:
		return 0
	}
}

// ComputeLeaderboard orders settled rows into the final table. Rank is the
// 1-based position after a stable sort; full ties share order of input.
func ComputeLeaderboard(rows []Row) []RankedRow {
	sorted := append([]Row(nil), rows...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return Compare(sorted[i], sorted[j]) < 0
	})

	out := make([]RankedRow, 0, len(sorted))
	for idx, row := range sorted {
		out = append(out, RankedRow{Rank: idx + 1, Row: row})
	}
	return out
}
