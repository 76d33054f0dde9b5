package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/riskibarqy/pick-portfolio/internal/domain/entry"
	"github.com/riskibarqy/pick-portfolio/internal/domain/round"
)

func TestAnalyticsService_Dashboard(t *testing.T) {
	t.Parallel()

	rounds := newStubRoundRepository(testRound(round.StatusSettled))
	picks := newStubPickRepository(resolvedPicks()...)
	entries := newStubEntryRepository()

	creditsEnd := 10100
	entries.entries["e-alice"] = entry.Entry{
		ID: "e-alice", RoundID: "round-12", UserID: "u-alice", Username: "alice",
		Status: entry.StatusSettled, CreditsStart: 10000, CreditsEnd: &creditsEnd,
	}
	winPayout := 800
	losePayout := 0
	entries.selections["e-alice::p1"] = entry.Selection{
		ID: "s1", EntryID: "e-alice", PickID: "p1", PickOptionID: "p1-home", Stake: 400, Payout: &winPayout,
	}
	entries.selections["e-alice::p2"] = entry.Selection{
		ID: "s2", EntryID: "e-alice", PickID: "p2", PickOptionID: "p2-home", Stake: 300, Payout: &losePayout,
	}

	service := NewAnalyticsService(rounds, picks, entries)

	got, err := service.Dashboard(context.Background(), "u-alice")
	if err != nil {
		t.Fatalf("Dashboard error: %v", err)
	}
	if got.Summary.Selections != 2 {
		t.Fatalf("Selections = %d, want 2", got.Summary.Selections)
	}
	if got.Summary.TotalStake != 700 || got.Summary.TotalPayout != 800 || got.Summary.TotalNet != 100 {
		t.Fatalf("totals = %d/%d/%d, want 700/800/100", got.Summary.TotalStake, got.Summary.TotalPayout, got.Summary.TotalNet)
	}
	if got.Summary.WinCount != 1 || got.Summary.LossCount != 1 {
		t.Fatalf("counts = %d win / %d loss, want 1/1", got.Summary.WinCount, got.Summary.LossCount)
	}
	if len(got.BySport) != 2 || got.BySport[0].Key != "soccer" {
		t.Fatalf("sport breakdown = %+v", got.BySport)
	}
}

func TestAnalyticsService_Dashboard_SkipsUnsettledRounds(t *testing.T) {
	t.Parallel()

	rounds := newStubRoundRepository(testRound(round.StatusLocked))
	entries := newStubEntryRepository()
	entries.entries["e-alice"] = entry.Entry{
		ID: "e-alice", RoundID: "round-12", UserID: "u-alice", Username: "alice",
		Status: entry.StatusLocked, CreditsStart: 10000,
	}

	service := NewAnalyticsService(rounds, newStubPickRepository(), entries)

	got, err := service.Dashboard(context.Background(), "u-alice")
	if err != nil {
		t.Fatalf("Dashboard error: %v", err)
	}
	if got.Summary.Selections != 0 {
		t.Fatalf("expected empty dashboard, got %+v", got.Summary)
	}
}

func TestAnalyticsService_Dashboard_RequiresUserID(t *testing.T) {
	t.Parallel()

	service := NewAnalyticsService(newStubRoundRepository(), newStubPickRepository(), newStubEntryRepository())

	_, err := service.Dashboard(context.Background(), "  ")
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}
