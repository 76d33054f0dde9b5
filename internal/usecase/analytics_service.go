package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/riskibarqy/pick-portfolio/internal/domain/analytics"
	"github.com/riskibarqy/pick-portfolio/internal/domain/entry"
	"github.com/riskibarqy/pick-portfolio/internal/domain/pick"
	"github.com/riskibarqy/pick-portfolio/internal/domain/round"
	"github.com/riskibarqy/pick-portfolio/internal/domain/sport"
)

type AnalyticsService struct {
	roundRepo round.Repository
	pickRepo  pick.Repository
	entryRepo entry.Repository
}

func NewAnalyticsService(
	roundRepo round.Repository,
	pickRepo pick.Repository,
	entryRepo entry.Repository,
) *AnalyticsService {
	return &AnalyticsService{
		roundRepo: roundRepo,
		pickRepo:  pickRepo,
		entryRepo: entryRepo,
	}
}

// Dashboard rolls a user's settled history across every settled round into
// the analytics dashboard. Selections without a recorded payout are excluded;
// they belong to rounds that have not finished settling.
func (s *AnalyticsService) Dashboard(ctx context.Context, userID string) (analytics.Dashboard, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AnalyticsService.Dashboard")
	defer span.End()

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return analytics.Dashboard{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	rounds, err := s.roundRepo.List(ctx)
	if err != nil {
		return analytics.Dashboard{}, fmt.Errorf("list rounds: %w", err)
	}

	rows := make([]analytics.SettledSelection, 0)
	for _, rnd := range rounds {
		if rnd.Status != round.StatusSettled {
			continue
		}

		item, ok, err := s.entryRepo.GetByRoundAndUser(ctx, rnd.ID, userID)
		if err != nil {
			return analytics.Dashboard{}, fmt.Errorf("get entry round=%s: %w", rnd.ID, err)
		}
		if !ok || item.Status != entry.StatusSettled {
			continue
		}

		roundRows, err := s.collectEntryRows(ctx, rnd.ID, item.ID)
		if err != nil {
			return analytics.Dashboard{}, err
		}
		rows = append(rows, roundRows...)
	}

	return analytics.Build(rows), nil
}

func (s *AnalyticsService) collectEntryRows(ctx context.Context, roundID, entryID string) ([]analytics.SettledSelection, error) {
	selections, err := s.entryRepo.ListSelectionsByEntry(ctx, entryID)
	if err != nil {
		return nil, fmt.Errorf("list selections entry=%s: %w", entryID, err)
	}
	if len(selections) == 0 {
		return nil, nil
	}

	picks, err := s.pickRepo.ListByRound(ctx, roundID)
	if err != nil {
		return nil, fmt.Errorf("list picks round=%s: %w", roundID, err)
	}
	pickByID := make(map[string]pick.Pick, len(picks))
	for _, item := range picks {
		pickByID[item.ID] = item
	}

	out := make([]analytics.SettledSelection, 0, len(selections))
	for _, selection := range selections {
		if selection.Payout == nil {
			continue
		}
		target, ok := pickByID[selection.PickID]
		if !ok {
			return nil, fmt.Errorf("%w: pick=%s for selection=%s", ErrNotFound, selection.PickID, selection.ID)
		}
		out = append(out, analytics.SettledSelection{
			SportSlug:      target.SportSlug,
			SportName:      sport.DisplayName(target.SportSlug),
			BoardType:      target.Board,
			Stake:          selection.Stake,
			Payout:         *selection.Payout,
			EventStartTime: target.StartTime,
		})
	}

	return out, nil
}
