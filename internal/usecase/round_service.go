package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/pick-portfolio/internal/domain/pick"
	"github.com/riskibarqy/pick-portfolio/internal/domain/round"
	"github.com/riskibarqy/pick-portfolio/internal/domain/sport"
	"github.com/riskibarqy/pick-portfolio/internal/domain/stake"
	"github.com/riskibarqy/pick-portfolio/internal/platform/id"
)

type RoundService struct {
	roundRepo round.Repository
	pickRepo  pick.Repository
	idGen     id.Generator
}

func NewRoundService(roundRepo round.Repository, pickRepo pick.Repository, idGen id.Generator) *RoundService {
	return &RoundService{
		roundRepo: roundRepo,
		pickRepo:  pickRepo,
		idGen:     idGen,
	}
}

type CreateRoundInput struct {
	Name            string
	OpensAt         time.Time
	ClosesAt        time.Time
	StartingCredits int
	StakeStep       int
	// MinStake and MaxStake of zero derive the default window from the
	// starting budget.
	MinStake          int
	MaxStake          int
	EnforceFullBudget bool
}

// Create registers a draft round. An unset stake window falls back to the
// budget-derived default, aligned to the stake step.
func (s *RoundService) Create(ctx context.Context, input CreateRoundInput) (round.Round, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RoundService.Create")
	defer span.End()

	step := stake.SanitizeStakeStep(input.StakeStep, 1)
	minStake := input.MinStake
	maxStake := input.MaxStake
	if minStake == 0 && maxStake == 0 {
		derived := stake.DeriveStakeRange(input.StartingCredits, step)
		minStake = derived.Min
		maxStake = derived.Max
	}

	roundID, err := s.idGen.NewID()
	if err != nil {
		return round.Round{}, fmt.Errorf("generate round id: %w", err)
	}

	item := round.Round{
		ID:                roundID,
		Name:              strings.TrimSpace(input.Name),
		Status:            round.StatusDraft,
		OpensAt:           input.OpensAt,
		ClosesAt:          input.ClosesAt,
		StartingCredits:   input.StartingCredits,
		StakeStep:         step,
		MinStake:          minStake,
		MaxStake:          maxStake,
		EnforceFullBudget: input.EnforceFullBudget,
	}
	if err := item.Validate(); err != nil {
		return round.Round{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := s.roundRepo.Upsert(ctx, item); err != nil {
		return round.Round{}, fmt.Errorf("upsert round: %w", err)
	}

	return item, nil
}

// AddPick publishes one market into a draft or open round.
func (s *RoundService) AddPick(ctx context.Context, item pick.Pick) (pick.Pick, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RoundService.AddPick")
	defer span.End()

	rnd, ok, err := s.roundRepo.GetByID(ctx, item.RoundID)
	if err != nil {
		return pick.Pick{}, fmt.Errorf("get round: %w", err)
	}
	if !ok {
		return pick.Pick{}, fmt.Errorf("%w: round=%s", ErrNotFound, item.RoundID)
	}
	if rnd.Status != round.StatusDraft && rnd.Status != round.StatusOpen {
		return pick.Pick{}, fmt.Errorf("%w: round=%s status=%s no longer accepts picks", ErrInvalidInput, rnd.ID, rnd.Status)
	}

	if _, ok := sport.BySlug(item.SportSlug); !ok {
		return pick.Pick{}, fmt.Errorf("%w: unknown sport %q", ErrInvalidInput, item.SportSlug)
	}
	if len(item.Options) == 0 {
		return pick.Pick{}, fmt.Errorf("%w: pick needs at least one option", ErrInvalidInput)
	}

	if item.ID == "" {
		pickID, idErr := s.idGen.NewID()
		if idErr != nil {
			return pick.Pick{}, fmt.Errorf("generate pick id: %w", idErr)
		}
		item.ID = pickID
	}
	if _, ok := sport.AllBoardTypes[item.Board]; !ok {
		item.Board = sport.BoardOther
	}
	for idx := range item.Options {
		option := &item.Options[idx]
		option.PickID = item.ID
		if option.Odds <= 0 {
			return pick.Pick{}, fmt.Errorf("%w: option %q needs positive odds", ErrInvalidInput, option.Label)
		}
		if option.Result == "" {
			option.Result = pick.ResultPending
		}
		if option.ID == "" {
			optionID, idErr := s.idGen.NewID()
			if idErr != nil {
				return pick.Pick{}, fmt.Errorf("generate option id: %w", idErr)
			}
			option.ID = optionID
		}
	}

	if err := s.pickRepo.Upsert(ctx, item); err != nil {
		return pick.Pick{}, fmt.Errorf("upsert pick: %w", err)
	}

	return item, nil
}

// Transition moves a round forward through its lifecycle.
func (s *RoundService) Transition(ctx context.Context, roundID string, to round.Status) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.RoundService.Transition")
	defer span.End()

	rnd, ok, err := s.roundRepo.GetByID(ctx, roundID)
	if err != nil {
		return fmt.Errorf("get round: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: round=%s", ErrNotFound, roundID)
	}
	if !round.CanTransition(rnd.Status, to) {
		return fmt.Errorf("%w: round=%s cannot move %s -> %s", ErrInvalidInput, rnd.ID, rnd.Status, to)
	}

	moved, err := s.roundRepo.TransitionStatus(ctx, rnd.ID, rnd.Status, to)
	if err != nil {
		return fmt.Errorf("transition round: %w", err)
	}
	if !moved {
		return fmt.Errorf("%w: round=%s changed status concurrently", ErrInvalidInput, rnd.ID)
	}

	return nil
}

// ResolveOption records a market outcome as events finish. Results may land
// while the round is open or locked; settled rounds are immutable.
func (s *RoundService) ResolveOption(ctx context.Context, roundID, pickID, optionID string, result pick.Result) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.RoundService.ResolveOption")
	defer span.End()

	rnd, ok, err := s.roundRepo.GetByID(ctx, roundID)
	if err != nil {
		return fmt.Errorf("get round: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: round=%s", ErrNotFound, roundID)
	}
	if rnd.Status == round.StatusSettled {
		return fmt.Errorf("%w: round=%s", ErrAlreadySettled, rnd.ID)
	}
	if !result.Valid() {
		return fmt.Errorf("%w: unknown result %q", ErrInvalidInput, result)
	}

	target, ok, err := s.pickRepo.GetByID(ctx, pickID)
	if err != nil {
		return fmt.Errorf("get pick: %w", err)
	}
	if !ok || target.RoundID != rnd.ID {
		return fmt.Errorf("%w: pick=%s", ErrNotFound, pickID)
	}
	if _, ok := target.OptionByID(optionID); !ok {
		return fmt.Errorf("%w: option=%s on pick=%s", ErrNotFound, optionID, pickID)
	}

	if err := s.pickRepo.SetOptionResult(ctx, pickID, optionID, result); err != nil {
		return fmt.Errorf("set option result: %w", err)
	}

	return nil
}

// List returns every round.
func (s *RoundService) List(ctx context.Context) ([]round.Round, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RoundService.List")
	defer span.End()

	items, err := s.roundRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list rounds: %w", err)
	}
	return items, nil
}
