package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/pick-portfolio/internal/domain/entry"
	"github.com/riskibarqy/pick-portfolio/internal/domain/round"
)

func newTestEntryService(rounds *stubRoundRepository, picks *stubPickRepository, entries *stubEntryRepository) *EntryService {
	service := NewEntryService(rounds, picks, entries, &seqIDGenerator{prefix: "id"})
	service.now = func() time.Time { return testNow }
	return service
}

func TestEntryService_GetOrCreate(t *testing.T) {
	t.Parallel()

	rounds := newStubRoundRepository(testRound(round.StatusOpen))
	picks := newStubPickRepository(testPicks()...)
	entries := newStubEntryRepository()
	service := newTestEntryService(rounds, picks, entries)

	created, err := service.GetOrCreate(context.Background(), "round-12", "u-alice", "alice")
	if err != nil {
		t.Fatalf("GetOrCreate error: %v", err)
	}
	if created.Status != entry.StatusBuilding {
		t.Fatalf("Status = %s, want building", created.Status)
	}
	if created.CreditsStart != 10000 {
		t.Fatalf("CreditsStart = %d, want 10000", created.CreditsStart)
	}

	again, err := service.GetOrCreate(context.Background(), "round-12", "u-alice", "alice")
	if err != nil {
		t.Fatalf("second GetOrCreate error: %v", err)
	}
	if again.ID != created.ID {
		t.Fatalf("second call created a new entry: %s vs %s", again.ID, created.ID)
	}
}

func TestEntryService_GetOrCreate_RoundNotOpen(t *testing.T) {
	t.Parallel()

	rounds := newStubRoundRepository(testRound(round.StatusLocked))
	service := newTestEntryService(rounds, newStubPickRepository(), newStubEntryRepository())

	_, err := service.GetOrCreate(context.Background(), "round-12", "u-alice", "alice")
	if !errors.Is(err, ErrRoundNotOpen) {
		t.Fatalf("err = %v, want ErrRoundNotOpen", err)
	}
}

func TestEntryService_UpsertSelection(t *testing.T) {
	t.Parallel()

	rounds := newStubRoundRepository(testRound(round.StatusOpen))
	picks := newStubPickRepository(testPicks()...)
	entries := newStubEntryRepository()
	service := newTestEntryService(rounds, picks, entries)

	created, err := service.GetOrCreate(context.Background(), "round-12", "u-alice", "alice")
	if err != nil {
		t.Fatalf("GetOrCreate error: %v", err)
	}

	result, err := service.UpsertSelection(context.Background(), UpsertSelectionInput{
		RoundID:      "round-12",
		UserID:       "u-alice",
		PickID:       "p1",
		PickOptionID: "p1-home",
		Stake:        400,
	})
	if err != nil {
		t.Fatalf("UpsertSelection error: %v", err)
	}
	if !result.OK {
		t.Fatalf("expected valid selection, got %+v", result.Violations)
	}
	if result.TotalStake != 400 || result.RemainingCredits != 9600 {
		t.Fatalf("totals = %d/%d, want 400/9600", result.TotalStake, result.RemainingCredits)
	}

	stored, err := entries.ListSelectionsByEntry(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("ListSelectionsByEntry error: %v", err)
	}
	if len(stored) != 1 || stored[0].Stake != 400 {
		t.Fatalf("stored selections = %+v", stored)
	}
	firstID := stored[0].ID

	// Restaking the same pick keeps the selection id.
	result, err = service.UpsertSelection(context.Background(), UpsertSelectionInput{
		RoundID:      "round-12",
		UserID:       "u-alice",
		PickID:       "p1",
		PickOptionID: "p1-away",
		Stake:        600,
	})
	if err != nil {
		t.Fatalf("restake error: %v", err)
	}
	if !result.OK || result.TotalStake != 600 {
		t.Fatalf("restake result = %+v", result)
	}
	stored, _ = entries.ListSelectionsByEntry(context.Background(), created.ID)
	if len(stored) != 1 || stored[0].ID != firstID || stored[0].PickOptionID != "p1-away" {
		t.Fatalf("restaked selection = %+v, want id %s on p1-away", stored, firstID)
	}
}

func TestEntryService_UpsertSelection_ViolationSkipsWrite(t *testing.T) {
	t.Parallel()

	rounds := newStubRoundRepository(testRound(round.StatusOpen))
	picks := newStubPickRepository(testPicks()...)
	entries := newStubEntryRepository()
	service := newTestEntryService(rounds, picks, entries)

	created, err := service.GetOrCreate(context.Background(), "round-12", "u-alice", "alice")
	if err != nil {
		t.Fatalf("GetOrCreate error: %v", err)
	}

	result, err := service.UpsertSelection(context.Background(), UpsertSelectionInput{
		RoundID:      "round-12",
		UserID:       "u-alice",
		PickID:       "p1",
		PickOptionID: "p1-home",
		Stake:        100,
	})
	if err != nil {
		t.Fatalf("UpsertSelection error: %v", err)
	}
	if result.OK || !result.HasCode(entry.CodeStakeOutOfRange) {
		t.Fatalf("expected STAKE_OUT_OF_RANGE, got %+v", result)
	}

	stored, _ := entries.ListSelectionsByEntry(context.Background(), created.ID)
	if len(stored) != 0 {
		t.Fatalf("invalid selection must not be written, got %+v", stored)
	}
}

func TestEntryService_UpsertSelection_UnknownOption(t *testing.T) {
	t.Parallel()

	rounds := newStubRoundRepository(testRound(round.StatusOpen))
	picks := newStubPickRepository(testPicks()...)
	service := newTestEntryService(rounds, picks, newStubEntryRepository())

	if _, err := service.GetOrCreate(context.Background(), "round-12", "u-alice", "alice"); err != nil {
		t.Fatalf("GetOrCreate error: %v", err)
	}

	_, err := service.UpsertSelection(context.Background(), UpsertSelectionInput{
		RoundID:      "round-12",
		UserID:       "u-alice",
		PickID:       "p1",
		PickOptionID: "p9-draw",
		Stake:        400,
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestEntryService_LockAndUnlock(t *testing.T) {
	t.Parallel()

	rounds := newStubRoundRepository(testRound(round.StatusOpen))
	picks := newStubPickRepository(testPicks()...)
	entries := newStubEntryRepository()
	service := newTestEntryService(rounds, picks, entries)

	created, err := service.GetOrCreate(context.Background(), "round-12", "u-alice", "alice")
	if err != nil {
		t.Fatalf("GetOrCreate error: %v", err)
	}
	if _, err := service.UpsertSelection(context.Background(), UpsertSelectionInput{
		RoundID: "round-12", UserID: "u-alice", PickID: "p1", PickOptionID: "p1-home", Stake: 400,
	}); err != nil {
		t.Fatalf("UpsertSelection error: %v", err)
	}

	result, err := service.Lock(context.Background(), "round-12", "u-alice")
	if err != nil {
		t.Fatalf("Lock error: %v", err)
	}
	if !result.OK {
		t.Fatalf("lock rejected: %+v", result.Violations)
	}

	locked, _, _ := entries.GetByID(context.Background(), created.ID)
	if locked.Status != entry.StatusLocked || locked.LockedAt == nil || !locked.LockedAt.Equal(testNow) {
		t.Fatalf("locked entry = %+v", locked)
	}

	if err := service.Unlock(context.Background(), "round-12", "u-alice"); err != nil {
		t.Fatalf("Unlock error: %v", err)
	}
	unlocked, _, _ := entries.GetByID(context.Background(), created.ID)
	if unlocked.Status != entry.StatusBuilding || unlocked.LockedAt != nil {
		t.Fatalf("unlocked entry = %+v", unlocked)
	}
}

func TestEntryService_Lock_FullBudgetRequired(t *testing.T) {
	t.Parallel()

	rnd := testRound(round.StatusOpen)
	rnd.EnforceFullBudget = true
	rounds := newStubRoundRepository(rnd)
	picks := newStubPickRepository(testPicks()...)
	service := newTestEntryService(rounds, picks, newStubEntryRepository())

	if _, err := service.GetOrCreate(context.Background(), "round-12", "u-alice", "alice"); err != nil {
		t.Fatalf("GetOrCreate error: %v", err)
	}
	if _, err := service.UpsertSelection(context.Background(), UpsertSelectionInput{
		RoundID: "round-12", UserID: "u-alice", PickID: "p1", PickOptionID: "p1-home", Stake: 400,
	}); err != nil {
		t.Fatalf("UpsertSelection error: %v", err)
	}

	result, err := service.Lock(context.Background(), "round-12", "u-alice")
	if err != nil {
		t.Fatalf("Lock error: %v", err)
	}
	if result.OK || !result.HasCode(entry.CodeFullBudgetRequired) {
		t.Fatalf("expected FULL_BUDGET_REQUIRED, got %+v", result)
	}
}

func TestEntryService_RemoveSelection_FrozenPick(t *testing.T) {
	t.Parallel()

	rounds := newStubRoundRepository(testRound(round.StatusOpen))
	allPicks := testPicks()
	// First kickoff moved before the frozen clock.
	allPicks[0].StartTime = testNow.Add(-time.Hour)
	picks := newStubPickRepository(allPicks...)
	service := newTestEntryService(rounds, picks, newStubEntryRepository())

	if _, err := service.GetOrCreate(context.Background(), "round-12", "u-alice", "alice"); err != nil {
		t.Fatalf("GetOrCreate error: %v", err)
	}

	err := service.RemoveSelection(context.Background(), "round-12", "u-alice", "p1")
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput for started pick", err)
	}
}
