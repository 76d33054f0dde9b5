package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/pick-portfolio/internal/domain/entry"
	"github.com/riskibarqy/pick-portfolio/internal/domain/pick"
	"github.com/riskibarqy/pick-portfolio/internal/domain/round"
	"github.com/riskibarqy/pick-portfolio/internal/platform/id"
)

type EntryService struct {
	roundRepo round.Repository
	pickRepo  pick.Repository
	entryRepo entry.Repository
	idGen     id.Generator
	now       func() time.Time
}

func NewEntryService(
	roundRepo round.Repository,
	pickRepo pick.Repository,
	entryRepo entry.Repository,
	idGen id.Generator,
) *EntryService {
	return &EntryService{
		roundRepo: roundRepo,
		pickRepo:  pickRepo,
		entryRepo: entryRepo,
		idGen:     idGen,
		now:       time.Now,
	}
}

// GetOrCreate returns the user's entry for the round, creating a fresh
// building entry with the round's full starting budget when none exists yet.
func (s *EntryService) GetOrCreate(ctx context.Context, roundID, userID, username string) (entry.Entry, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.EntryService.GetOrCreate")
	defer span.End()

	rnd, err := s.getRound(ctx, roundID)
	if err != nil {
		return entry.Entry{}, err
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return entry.Entry{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	existing, ok, err := s.entryRepo.GetByRoundAndUser(ctx, rnd.ID, userID)
	if err != nil {
		return entry.Entry{}, fmt.Errorf("get entry: %w", err)
	}
	if ok {
		return existing, nil
	}

	if !rnd.AcceptsChanges(s.now()) {
		return entry.Entry{}, fmt.Errorf("%w: round=%s status=%s", ErrRoundNotOpen, rnd.ID, rnd.Status)
	}

	entryID, err := s.idGen.NewID()
	if err != nil {
		return entry.Entry{}, fmt.Errorf("generate entry id: %w", err)
	}

	created := entry.Entry{
		ID:           entryID,
		RoundID:      rnd.ID,
		UserID:       userID,
		Username:     strings.TrimSpace(username),
		Status:       entry.StatusBuilding,
		CreditsStart: rnd.StartingCredits,
	}
	if err := created.Validate(); err != nil {
		return entry.Entry{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := s.entryRepo.Upsert(ctx, created); err != nil {
		return entry.Entry{}, fmt.Errorf("upsert entry: %w", err)
	}

	return created, nil
}

type UpsertSelectionInput struct {
	RoundID      string
	UserID       string
	PickID       string
	PickOptionID string
	Stake        int
}

// UpsertSelection places or restakes one pick selection. The write happens
// only when validation passes; the validation result is returned either way so
// callers can surface every violation at once.
func (s *EntryService) UpsertSelection(ctx context.Context, input UpsertSelectionInput) (entry.ValidationResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.EntryService.UpsertSelection")
	defer span.End()

	rnd, err := s.getRound(ctx, input.RoundID)
	if err != nil {
		return entry.ValidationResult{}, err
	}
	item, err := s.getBuildingEntry(ctx, rnd.ID, input.UserID)
	if err != nil {
		return entry.ValidationResult{}, err
	}

	picks, err := s.pickRepo.ListByRound(ctx, rnd.ID)
	if err != nil {
		return entry.ValidationResult{}, fmt.Errorf("list picks: %w", err)
	}
	target, option, err := resolvePickOption(picks, input.PickID, input.PickOptionID)
	if err != nil {
		return entry.ValidationResult{}, err
	}

	selections, err := s.entryRepo.ListSelectionsByEntry(ctx, item.ID)
	if err != nil {
		return entry.ValidationResult{}, fmt.Errorf("list selections: %w", err)
	}

	candidate := entry.Selection{
		EntryID:      item.ID,
		PickID:       target.ID,
		PickOptionID: option.ID,
		Stake:        input.Stake,
	}
	result := entry.ValidateSelection(rnd, picks, selections, candidate, item.CreditsStart, s.now())
	if !result.OK {
		return result, nil
	}

	// Keep the selection id stable when restaking the same pick.
	for _, existing := range selections {
		if existing.PickID == target.ID {
			candidate.ID = existing.ID
			break
		}
	}
	if candidate.ID == "" {
		selectionID, idErr := s.idGen.NewID()
		if idErr != nil {
			return entry.ValidationResult{}, fmt.Errorf("generate selection id: %w", idErr)
		}
		candidate.ID = selectionID
	}

	if err := s.entryRepo.UpsertSelection(ctx, candidate); err != nil {
		return entry.ValidationResult{}, fmt.Errorf("upsert selection: %w", err)
	}

	return result, nil
}

// RemoveSelection drops one selection from a building entry. Started picks
// stay frozen even for removal.
func (s *EntryService) RemoveSelection(ctx context.Context, roundID, userID, pickID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.EntryService.RemoveSelection")
	defer span.End()

	rnd, err := s.getRound(ctx, roundID)
	if err != nil {
		return err
	}
	if !rnd.AcceptsChanges(s.now()) {
		return fmt.Errorf("%w: round=%s status=%s", ErrRoundNotOpen, rnd.ID, rnd.Status)
	}
	item, err := s.getBuildingEntry(ctx, rnd.ID, userID)
	if err != nil {
		return err
	}

	target, ok, err := s.pickRepo.GetByID(ctx, pickID)
	if err != nil {
		return fmt.Errorf("get pick: %w", err)
	}
	if !ok || target.RoundID != rnd.ID {
		return fmt.Errorf("%w: pick=%s", ErrNotFound, pickID)
	}
	if target.Started(s.now()) {
		return fmt.Errorf("%w: pick=%s already started", ErrInvalidInput, pickID)
	}

	if err := s.entryRepo.DeleteSelection(ctx, item.ID, target.ID); err != nil {
		return fmt.Errorf("delete selection: %w", err)
	}

	return nil
}

// Lock commits the portfolio for settlement. The full selection set is
// revalidated; a failing set is returned without a write.
func (s *EntryService) Lock(ctx context.Context, roundID, userID string) (entry.ValidationResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.EntryService.Lock")
	defer span.End()

	rnd, err := s.getRound(ctx, roundID)
	if err != nil {
		return entry.ValidationResult{}, err
	}
	item, err := s.getBuildingEntry(ctx, rnd.ID, userID)
	if err != nil {
		return entry.ValidationResult{}, err
	}

	picks, err := s.pickRepo.ListByRound(ctx, rnd.ID)
	if err != nil {
		return entry.ValidationResult{}, fmt.Errorf("list picks: %w", err)
	}
	selections, err := s.entryRepo.ListSelectionsByEntry(ctx, item.ID)
	if err != nil {
		return entry.ValidationResult{}, fmt.Errorf("list selections: %w", err)
	}

	result := entry.ValidateEntry(rnd, picks, selections, item.CreditsStart, s.now())
	if !result.OK {
		return result, nil
	}

	lockedAt := s.now()
	item.Status = entry.StatusLocked
	item.LockedAt = &lockedAt
	if err := s.entryRepo.Upsert(ctx, item); err != nil {
		return entry.ValidationResult{}, fmt.Errorf("upsert entry: %w", err)
	}

	return result, nil
}

// Unlock reopens a locked entry for edits while the round still accepts
// changes. The lock timestamp is cleared so a relock restarts the tiebreak.
func (s *EntryService) Unlock(ctx context.Context, roundID, userID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.EntryService.Unlock")
	defer span.End()

	rnd, err := s.getRound(ctx, roundID)
	if err != nil {
		return err
	}
	if !rnd.AcceptsChanges(s.now()) {
		return fmt.Errorf("%w: round=%s status=%s", ErrRoundNotOpen, rnd.ID, rnd.Status)
	}

	item, ok, err := s.entryRepo.GetByRoundAndUser(ctx, rnd.ID, strings.TrimSpace(userID))
	if err != nil {
		return fmt.Errorf("get entry: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: entry for user=%s round=%s", ErrNotFound, userID, roundID)
	}
	if item.Status != entry.StatusLocked {
		return fmt.Errorf("%w: entry=%s status=%s is not locked", ErrInvalidInput, item.ID, item.Status)
	}

	item.Status = entry.StatusBuilding
	item.LockedAt = nil
	if err := s.entryRepo.Upsert(ctx, item); err != nil {
		return fmt.Errorf("upsert entry: %w", err)
	}

	return nil
}

// Validate runs the full-entry rule set without writing anything, so clients
// can show lock readiness while the user is still building.
func (s *EntryService) Validate(ctx context.Context, roundID, userID string) (entry.ValidationResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.EntryService.Validate")
	defer span.End()

	rnd, err := s.getRound(ctx, roundID)
	if err != nil {
		return entry.ValidationResult{}, err
	}
	item, ok, err := s.entryRepo.GetByRoundAndUser(ctx, rnd.ID, strings.TrimSpace(userID))
	if err != nil {
		return entry.ValidationResult{}, fmt.Errorf("get entry: %w", err)
	}
	if !ok {
		return entry.ValidationResult{}, fmt.Errorf("%w: entry for user=%s round=%s", ErrNotFound, userID, roundID)
	}

	picks, err := s.pickRepo.ListByRound(ctx, rnd.ID)
	if err != nil {
		return entry.ValidationResult{}, fmt.Errorf("list picks: %w", err)
	}
	selections, err := s.entryRepo.ListSelectionsByEntry(ctx, item.ID)
	if err != nil {
		return entry.ValidationResult{}, fmt.Errorf("list selections: %w", err)
	}

	return entry.ValidateEntry(rnd, picks, selections, item.CreditsStart, s.now()), nil
}

func (s *EntryService) getRound(ctx context.Context, roundID string) (round.Round, error) {
	roundID = strings.TrimSpace(roundID)
	if roundID == "" {
		return round.Round{}, fmt.Errorf("%w: round id is required", ErrInvalidInput)
	}
	rnd, ok, err := s.roundRepo.GetByID(ctx, roundID)
	if err != nil {
		return round.Round{}, fmt.Errorf("get round: %w", err)
	}
	if !ok {
		return round.Round{}, fmt.Errorf("%w: round=%s", ErrNotFound, roundID)
	}
	return rnd, nil
}

func (s *EntryService) getBuildingEntry(ctx context.Context, roundID, userID string) (entry.Entry, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return entry.Entry{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	item, ok, err := s.entryRepo.GetByRoundAndUser(ctx, roundID, userID)
	if err != nil {
		return entry.Entry{}, fmt.Errorf("get entry: %w", err)
	}
	if !ok {
		return entry.Entry{}, fmt.Errorf("%w: entry for user=%s round=%s", ErrNotFound, userID, roundID)
	}
	if item.Status != entry.StatusBuilding {
		return entry.Entry{}, fmt.Errorf("%w: entry=%s status=%s does not accept changes", ErrInvalidInput, item.ID, item.Status)
	}
	return item, nil
}

func resolvePickOption(picks []pick.Pick, pickID, optionID string) (pick.Pick, pick.Option, error) {
	for _, item := range picks {
		if item.ID != pickID {
			continue
		}
		option, ok := item.OptionByID(optionID)
		if !ok {
			return pick.Pick{}, pick.Option{}, fmt.Errorf("%w: option=%s on pick=%s", ErrNotFound, optionID, pickID)
		}
		if option.Odds <= 0 {
			return pick.Pick{}, pick.Option{}, fmt.Errorf("%w: option=%s has no odds", ErrInvalidInput, optionID)
		}
		return item, option, nil
	}
	return pick.Pick{}, pick.Option{}, fmt.Errorf("%w: pick=%s", ErrNotFound, pickID)
}
