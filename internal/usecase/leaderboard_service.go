package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/riskibarqy/pick-portfolio/internal/domain/entry"
	"github.com/riskibarqy/pick-portfolio/internal/domain/leaderboard"
	"github.com/riskibarqy/pick-portfolio/internal/domain/pick"
	"github.com/riskibarqy/pick-portfolio/internal/domain/projection"
	"github.com/riskibarqy/pick-portfolio/internal/domain/round"
	"github.com/riskibarqy/pick-portfolio/internal/platform/cache"
)

type LeaderboardService struct {
	roundRepo round.Repository
	pickRepo  pick.Repository
	entryRepo entry.Repository
	cache     *cache.Store
	now       func() time.Time
}

func NewLeaderboardService(
	roundRepo round.Repository,
	pickRepo pick.Repository,
	entryRepo entry.Repository,
	cacheStore *cache.Store,
) *LeaderboardService {
	return &LeaderboardService{
		roundRepo: roundRepo,
		pickRepo:  pickRepo,
		entryRepo: entryRepo,
		cache:     cacheStore,
		now:       time.Now,
	}
}

// Settled returns the final table for a settled round. The table never changes
// once the round settles, so it is served through the cache.
func (s *LeaderboardService) Settled(ctx context.Context, roundID string) ([]leaderboard.RankedRow, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeaderboardService.Settled")
	defer span.End()

	rnd, err := s.getRound(ctx, roundID)
	if err != nil {
		return nil, err
	}
	if rnd.Status != round.StatusSettled {
		return nil, fmt.Errorf("%w: round=%s status=%s is not settled", ErrInvalidInput, rnd.ID, rnd.Status)
	}

	load := func(ctx context.Context) (any, error) {
		return s.loadSettledRows(ctx, rnd.ID)
	}

	if s.cache == nil {
		value, loadErr := load(ctx)
		if loadErr != nil {
			return nil, loadErr
		}
		return value.([]leaderboard.RankedRow), nil
	}

	value, err := s.cache.GetOrLoad(ctx, "leaderboard:settled:"+rnd.ID, load)
	if err != nil {
		return nil, err
	}
	rows, ok := value.([]leaderboard.RankedRow)
	if !ok {
		return nil, fmt.Errorf("unexpected cached leaderboard type %T", value)
	}
	return rows, nil
}

func (s *LeaderboardService) loadSettledRows(ctx context.Context, roundID string) ([]leaderboard.RankedRow, error) {
	entries, err := s.entryRepo.ListByRound(ctx, roundID)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}

	rows := make([]leaderboard.Row, 0, len(entries))
	for _, item := range entries {
		if item.Status != entry.StatusSettled || item.CreditsEnd == nil {
			continue
		}
		rows = append(rows, leaderboard.Row{
			EntryID:    item.ID,
			UserID:     item.UserID,
			Username:   item.Username,
			CreditsEnd: *item.CreditsEnd,
			LockedAt:   item.LockedAt,
		})
	}

	return leaderboard.ComputeLeaderboard(rows), nil
}

// Live computes the in-round standings from current market results.
func (s *LeaderboardService) Live(ctx context.Context, roundID string, opts projection.Options) (projection.LiveResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeaderboardService.Live")
	defer span.End()

	rnd, err := s.getRound(ctx, roundID)
	if err != nil {
		return projection.LiveResult{}, err
	}

	entries, err := s.buildProjectionEntries(ctx, rnd)
	if err != nil {
		return projection.LiveResult{}, err
	}

	return projection.ComputeLiveLeaderboard(entries, opts), nil
}

// ProjectionView pairs a user's scenario projection with their possible
// finishing positions.
type ProjectionView struct {
	Entry     projection.EntryProjection
	RankRange *projection.ProjectedRankRange
}

// Projected computes scenario credits and rank envelopes for one user.
func (s *LeaderboardService) Projected(ctx context.Context, roundID, userID string) (ProjectionView, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeaderboardService.Projected")
	defer span.End()

	rnd, err := s.getRound(ctx, roundID)
	if err != nil {
		return ProjectionView{}, err
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return ProjectionView{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	entries, err := s.buildProjectionEntries(ctx, rnd)
	if err != nil {
		return ProjectionView{}, err
	}

	var mine *projection.Entry
	for idx := range entries {
		if entries[idx].UserID == userID {
			mine = &entries[idx]
			break
		}
	}
	if mine == nil {
		return ProjectionView{}, fmt.Errorf("%w: entry for user=%s round=%s", ErrNotFound, userID, roundID)
	}

	return ProjectionView{
		Entry:     projection.ProjectEntryRange(*mine),
		RankRange: projection.ComputeProjectedRankRange(entries, userID),
	}, nil
}

// Suggestions builds stake advice for one user's current portfolio.
func (s *LeaderboardService) Suggestions(ctx context.Context, roundID, userID string) ([]projection.Suggestion, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeaderboardService.Suggestions")
	defer span.End()

	rnd, err := s.getRound(ctx, roundID)
	if err != nil {
		return nil, err
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	entries, err := s.buildProjectionEntries(ctx, rnd)
	if err != nil {
		return nil, err
	}

	for _, item := range entries {
		if item.UserID != userID {
			continue
		}
		return projection.BuildStakeSuggestions(rnd, item.Selections, item.CreditsStart), nil
	}

	return nil, fmt.Errorf("%w: entry for user=%s round=%s", ErrNotFound, userID, roundID)
}

// buildProjectionEntries joins every not-yet-settled entry with its selections
// and the pick market behind each one. Picks and entries load concurrently.
func (s *LeaderboardService) buildProjectionEntries(ctx context.Context, rnd round.Round) ([]projection.Entry, error) {
	var (
		picks             []pick.Pick
		entries           []entry.Entry
		selectionsByEntry map[string][]entry.Selection
	)

	loaders := pool.New().WithContext(ctx).WithCancelOnError()
	loaders.Go(func(ctx context.Context) error {
		items, err := s.pickRepo.ListByRound(ctx, rnd.ID)
		if err != nil {
			return fmt.Errorf("list picks: %w", err)
		}
		picks = items
		return nil
	})
	loaders.Go(func(ctx context.Context) error {
		items, err := s.entryRepo.ListByRound(ctx, rnd.ID)
		if err != nil {
			return fmt.Errorf("list entries: %w", err)
		}
		entries = items
		return nil
	})
	loaders.Go(func(ctx context.Context) error {
		items, err := s.entryRepo.ListSelectionsByRound(ctx, rnd.ID)
		if err != nil {
			return fmt.Errorf("list selections: %w", err)
		}
		selectionsByEntry = items
		return nil
	})
	if err := loaders.Wait(); err != nil {
		return nil, err
	}

	now := s.now()
	pickByID := make(map[string]pick.Pick, len(picks))
	optionByID := make(map[string]pick.Option)
	for _, item := range picks {
		pickByID[item.ID] = item
		for _, option := range item.Options {
			optionByID[option.ID] = option
		}
	}

	out := make([]projection.Entry, 0, len(entries))
	for _, item := range entries {
		if item.Status == entry.StatusSettled {
			continue
		}

		selections := make([]projection.Selection, 0, len(selectionsByEntry[item.ID]))
		for _, selection := range selectionsByEntry[item.ID] {
			target, ok := pickByID[selection.PickID]
			if !ok {
				return nil, fmt.Errorf("%w: pick=%s for selection=%s", ErrNotFound, selection.PickID, selection.ID)
			}
			option, ok := optionByID[selection.PickOptionID]
			if !ok {
				return nil, fmt.Errorf("%w: option=%s for selection=%s", ErrNotFound, selection.PickOptionID, selection.ID)
			}

			editable := item.Status == entry.StatusBuilding &&
				rnd.AcceptsChanges(now) &&
				!target.Started(now)

			selections = append(selections, projection.Selection{
				PickID:     target.ID,
				SportSlug:  target.SportSlug,
				Stake:      selection.Stake,
				Odds:       option.Odds,
				MarketOdds: target.MarketOdds(),
				Result:     option.Result,
				Editable:   editable,
			})
		}

		out = append(out, projection.Entry{
			EntryID:      item.ID,
			UserID:       item.UserID,
			Username:     item.Username,
			LockedAt:     item.LockedAt,
			CreditsStart: item.CreditsStart,
			Selections:   selections,
		})
	}

	return out, nil
}

func (s *LeaderboardService) getRound(ctx context.Context, roundID string) (round.Round, error) {
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
