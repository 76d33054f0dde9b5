// Command simulator plays a full round end to end against the in-memory
// repositories: publish picks, build and lock entries, resolve results, settle,
// and print the final leaderboard and per-user analytics. It exists to exercise
// the whole engine without a transport in front of it.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/bytedance/sonic"

	"github.com/riskibarqy/pick-portfolio/internal/config"
	"github.com/riskibarqy/pick-portfolio/internal/domain/pick"
	"github.com/riskibarqy/pick-portfolio/internal/domain/projection"
	"github.com/riskibarqy/pick-portfolio/internal/domain/round"
	"github.com/riskibarqy/pick-portfolio/internal/domain/sport"
	"github.com/riskibarqy/pick-portfolio/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/pick-portfolio/internal/platform/cache"
	"github.com/riskibarqy/pick-portfolio/internal/platform/id"
	"github.com/riskibarqy/pick-portfolio/internal/platform/logging"
	"github.com/riskibarqy/pick-portfolio/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewJSON(cfg.LogLevel).With(
		"service", cfg.ServiceName,
		"version", cfg.ServiceVersion,
		"env", cfg.AppEnv,
	)
	defer logger.Sync() //nolint:errcheck

	if err := run(context.Background(), cfg, logger); err != nil {
		logger.Error("simulation failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger *logging.Logger) error {
	fix, err := loadFixture(cfg.FixturePath)
	if err != nil {
		return err
	}

	roundRepo := memory.NewRoundRepository()
	pickRepo := memory.NewPickRepository()
	entryRepo := memory.NewEntryRepository()
	idGen := id.NewRandomGenerator()

	var cacheStore *cache.Store
	if cfg.CacheEnabled {
		cacheStore = cache.NewStore(cfg.CacheTTL)
	}

	rounds := usecase.NewRoundService(roundRepo, pickRepo, idGen)
	entries := usecase.NewEntryService(roundRepo, pickRepo, entryRepo, idGen)
	settler := usecase.NewSettlementService(roundRepo, pickRepo, entryRepo, logger, cfg.SettlementWorkers)
	boards := usecase.NewLeaderboardService(roundRepo, pickRepo, entryRepo, cacheStore)
	analytics := usecase.NewAnalyticsService(roundRepo, pickRepo, entryRepo)

	now := time.Now()

	rnd, err := rounds.Create(ctx, usecase.CreateRoundInput{
		Name:              fix.Round.Name,
		OpensAt:           now,
		ClosesAt:          now.Add(time.Duration(fix.Round.DurationHours) * time.Hour),
		StartingCredits:   fix.Round.StartingCredits,
		StakeStep:         fix.Round.StakeStep,
		EnforceFullBudget: fix.Round.EnforceFullBudget,
	})
	if err != nil {
		return fmt.Errorf("create round: %w", err)
	}
	logger.Info("round created",
		"round_id", rnd.ID,
		"name", rnd.Name,
		"min_stake", rnd.MinStake,
		"max_stake", rnd.MaxStake,
	)

	// Publish the fixture's markets. Fixture keys map to generated ids so
	// user selections can reference picks by key.
	pickIDs := make(map[string]string, len(fix.Picks))
	optionIDs := make(map[string]string)
	resultByOption := make(map[string]pick.Result)
	for _, fp := range fix.Picks {
		published, err := rounds.AddPick(ctx, pick.Pick{
			RoundID:   rnd.ID,
			SportSlug: fp.Sport,
			Board:     sport.BoardType(fp.Board),
			Label:     fp.Label,
			StartTime: now.Add(time.Duration(fp.StartOffsetHours) * time.Hour),
			Options:   fixtureOptions(fp.Options),
		})
		if err != nil {
			return fmt.Errorf("publish pick %q: %w", fp.Key, err)
		}

		pickIDs[fp.Key] = published.ID
		for idx, option := range published.Options {
			key := fp.Key + "/" + fp.Options[idx].Key
			optionIDs[key] = option.ID
			if fp.Options[idx].Result != "" {
				resultByOption[key] = pick.Result(fp.Options[idx].Result)
			}
		}
	}

	if err := rounds.Transition(ctx, rnd.ID, round.StatusOpen); err != nil {
		return fmt.Errorf("open round: %w", err)
	}

	// Every user builds a portfolio and locks it.
	for _, user := range fix.Users {
		if _, err := entries.GetOrCreate(ctx, rnd.ID, user.ID, user.Username); err != nil {
			return fmt.Errorf("create entry for %s: %w", user.Username, err)
		}

		for _, selection := range user.Selections {
			result, err := entries.UpsertSelection(ctx, usecase.UpsertSelectionInput{
				RoundID:      rnd.ID,
				UserID:       user.ID,
				PickID:       pickIDs[selection.Pick],
				PickOptionID: optionIDs[selection.Pick+"/"+selection.Option],
				Stake:        selection.Stake,
			})
			if err != nil {
				return fmt.Errorf("place stake for %s on %s: %w", user.Username, selection.Pick, err)
			}
			if !result.OK {
				logger.Warn("selection rejected",
					"user", user.Username,
					"pick", selection.Pick,
					"violations", result.Violations,
				)
			}
		}

		lock, err := entries.Lock(ctx, rnd.ID, user.ID)
		if err != nil {
			return fmt.Errorf("lock entry for %s: %w", user.Username, err)
		}
		logger.Info("entry locked", "user", user.Username, "ok", lock.OK)
	}

	// Mid-round reads: live standings, projections, suggestions.
	live, err := boards.Live(ctx, rnd.ID, projection.Options{CurrentUserID: fix.Users[0].ID})
	if err != nil {
		return fmt.Errorf("live leaderboard: %w", err)
	}
	logJSON(logger, "live leaderboard", live)

	for _, user := range fix.Users {
		view, err := boards.Projected(ctx, rnd.ID, user.ID)
		if err != nil {
			return fmt.Errorf("projection for %s: %w", user.Username, err)
		}
		logJSON(logger, "projection "+user.Username, view)

		suggestions, err := boards.Suggestions(ctx, rnd.ID, user.ID)
		if err != nil {
			return fmt.Errorf("suggestions for %s: %w", user.Username, err)
		}
		logJSON(logger, "suggestions "+user.Username, suggestions)
	}

	// The round closes, results land, settlement runs.
	if err := rounds.Transition(ctx, rnd.ID, round.StatusLocked); err != nil {
		return fmt.Errorf("lock round: %w", err)
	}
	for key, result := range resultByOption {
		pickKey, _, _ := strings.Cut(key, "/")
		if err := rounds.ResolveOption(ctx, rnd.ID, pickIDs[pickKey], optionIDs[key], result); err != nil {
			return fmt.Errorf("resolve %s: %w", key, err)
		}
	}

	outcome, err := settler.SettleRound(ctx, rnd.ID)
	if err != nil {
		return fmt.Errorf("settle round: %w", err)
	}
	logJSON(logger, "settlement", outcome)

	table, err := boards.Settled(ctx, rnd.ID)
	if err != nil {
		return fmt.Errorf("settled leaderboard: %w", err)
	}
	logJSON(logger, "final leaderboard", table)

	for _, user := range fix.Users {
		dashboard, err := analytics.Dashboard(ctx, user.ID)
		if err != nil {
			return fmt.Errorf("dashboard for %s: %w", user.Username, err)
		}
		logJSON(logger, "dashboard "+user.Username, dashboard)
	}

	return nil
}

func fixtureOptions(options []fixtureOption) []pick.Option {
	out := make([]pick.Option, 0, len(options))
	for _, option := range options {
		out = append(out, pick.Option{
			Label: option.Label,
			Odds:  option.Odds,
		})
	}
	return out
}

func logJSON(logger *logging.Logger, msg string, value any) {
	raw, err := sonic.Marshal(value)
	if err != nil {
		logger.Error("marshal result", "msg", msg, "error", err)
		return
	}
	logger.Info(msg, "payload", string(raw))
}
