package projection

import (
	"testing"
	"time"

	"github.com/riskibarqy/pick-portfolio/internal/domain/pick"
)

func liveLockAt(hour int) *time.Time {
	at := time.Date(2025, 3, 8, hour, 0, 0, 0, time.UTC)
	return &at
}

func liveEntries() []Entry {
	return []Entry{
		{
			EntryID:      "e-alice",
			UserID:       "u-alice",
			Username:     "alice",
			LockedAt:     liveLockAt(10),
			CreditsStart: 10000,
			Selections: []Selection{
				{PickID: "p1", SportSlug: "soccer", Stake: 500, Odds: 2.0, MarketOdds: []float64{2.0, 2.0}, Result: pick.ResultPending},
			},
		},
		{
			EntryID:      "e-bob",
			UserID:       "u-bob",
			Username:     "bob",
			LockedAt:     liveLockAt(11),
			CreditsStart: 10000,
			Selections: []Selection{
				{PickID: "p2", SportSlug: "basketball", Stake: 400, Odds: 3.0, MarketOdds: []float64{3.0, 1.5}, Result: pick.ResultWin},
			},
		},
	}
}

func TestComputeLiveLeaderboard_CreditsMode(t *testing.T) {
	got := ComputeLiveLeaderboard(liveEntries(), Options{CurrentUserID: "u-alice", SportSlug: SportAll})

	if got.Mode != ModeCredits {
		t.Fatalf("Mode = %s, want credits", got.Mode)
	}
	if len(got.Rows) != 2 {
		t.Fatalf("row count = %d, want 2", len(got.Rows))
	}

	// bob: cash 9600 + certain 1200 = 10800 on every bound.
	if got.Rows[0].EntryID != "e-bob" || got.Rows[0].Score != 10800 {
		t.Fatalf("top row = %s score %d, want e-bob 10800", got.Rows[0].EntryID, got.Rows[0].Score)
	}
	// alice: cash 9500 + expected 500, floor 0, ceiling 1000.
	alice := got.Rows[1]
	if alice.Score != 10000 || alice.MinScore != 9500 || alice.MaxScore != 10500 {
		t.Fatalf("alice scores = %d/%d/%d, want 10000/9500/10500", alice.Score, alice.MinScore, alice.MaxScore)
	}
	if alice.Rank != 2 {
		t.Fatalf("alice rank = %d, want 2", alice.Rank)
	}

	if got.MyRange == nil {
		t.Fatal("expected MyRange for acting user")
	}
	// Even at her ceiling alice stays below bob's floor.
	if got.MyRange.CurrentRank != 2 || got.MyRange.BestRank != 2 || got.MyRange.WorstRank != 2 {
		t.Fatalf("MyRange = %+v, want 2/2/2", got.MyRange)
	}
}

func TestComputeLiveLeaderboard_NetMode(t *testing.T) {
	got := ComputeLiveLeaderboard(liveEntries(), Options{CurrentUserID: "u-bob", SportSlug: "basketball"})

	if got.Mode != ModeNet {
		t.Fatalf("Mode = %s, want net", got.Mode)
	}
	// bob: payout 1200 - stake 400 = 800 net; alice has no basketball
	// selections so her net is zero.
	if got.Rows[0].EntryID != "e-bob" || got.Rows[0].Score != 800 {
		t.Fatalf("top row = %s score %d, want e-bob 800", got.Rows[0].EntryID, got.Rows[0].Score)
	}
	if got.Rows[1].Score != 0 {
		t.Fatalf("alice net = %d, want 0", got.Rows[1].Score)
	}
	if got.MyRange == nil || got.MyRange.CurrentRank != 1 {
		t.Fatalf("MyRange = %+v, want current rank 1", got.MyRange)
	}
}

func TestComputeLiveLeaderboard_RangeCanOverlap(t *testing.T) {
	entries := []Entry{
		{
			EntryID: "e1", UserID: "u1", Username: "u1", LockedAt: liveLockAt(9), CreditsStart: 1000,
			Selections: []Selection{
				{PickID: "p1", SportSlug: "soccer", Stake: 500, Odds: 2.0, MarketOdds: []float64{2.0, 2.0}, Result: pick.ResultPending},
			},
		},
		{
			EntryID: "e2", UserID: "u2", Username: "u2", LockedAt: liveLockAt(10), CreditsStart: 1000,
			Selections: []Selection{
				{PickID: "p2", SportSlug: "soccer", Stake: 500, Odds: 2.0, MarketOdds: []float64{2.0, 2.0}, Result: pick.ResultPending},
			},
		},
	}

	got := ComputeLiveLeaderboard(entries, Options{CurrentUserID: "u2", SportSlug: SportAll})
	if got.MyRange == nil {
		t.Fatal("expected MyRange")
	}
	// u2 can still win the round outright or lose it outright.
	if got.MyRange.BestRank != 1 {
		t.Fatalf("BestRank = %d, want 1", got.MyRange.BestRank)
	}
	if got.MyRange.WorstRank != 2 {
		t.Fatalf("WorstRank = %d, want 2", got.MyRange.WorstRank)
	}
}

func TestComputeLiveLeaderboard_Empty(t *testing.T) {
	got := ComputeLiveLeaderboard(nil, Options{CurrentUserID: "nobody"})
	if len(got.Rows) != 0 {
		t.Fatalf("expected no rows, got %d", len(got.Rows))
	}
	if got.MyRange != nil {
		t.Fatalf("expected nil MyRange, got %+v", got.MyRange)
	}
}

func TestComputeLiveLeaderboard_NullLockedAtSortsLast(t *testing.T) {
	entries := []Entry{
		{EntryID: "e1", UserID: "u1", Username: "zoe", CreditsStart: 1000},
		{EntryID: "e2", UserID: "u2", Username: "amy", LockedAt: liveLockAt(10), CreditsStart: 1000},
	}

	got := ComputeLiveLeaderboard(entries, Options{})
	if got.Rows[0].EntryID != "e2" {
		t.Fatalf("locked entry should rank ahead of unlocked on equal score, got %s first", got.Rows[0].EntryID)
	}
}
