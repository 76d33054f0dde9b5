package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/riskibarqy/pick-portfolio/internal/domain/entry"
	"github.com/riskibarqy/pick-portfolio/internal/domain/pick"
	"github.com/riskibarqy/pick-portfolio/internal/domain/round"
	"github.com/riskibarqy/pick-portfolio/internal/domain/settlement"
	"github.com/riskibarqy/pick-portfolio/internal/platform/logging"
)

const (
	settleStatusSettled = "settled"
	settleStatusSkipped = "skipped"
	settleStatusFailed  = "failed"

	defaultSettleWorkers = 4
)

type SettlementService struct {
	roundRepo round.Repository
	pickRepo  pick.Repository
	entryRepo entry.Repository
	logger    *logging.Logger
	workers   int
}

func NewSettlementService(
	roundRepo round.Repository,
	pickRepo pick.Repository,
	entryRepo entry.Repository,
	logger *logging.Logger,
	workers int,
) *SettlementService {
	if logger == nil {
		logger = logging.NewNop()
	}
	if workers <= 0 {
		workers = defaultSettleWorkers
	}
	return &SettlementService{
		roundRepo: roundRepo,
		pickRepo:  pickRepo,
		entryRepo: entryRepo,
		logger:    logger,
		workers:   workers,
	}
}

type SettleRoundResult struct {
	RoundID      string            `json:"round_id"`
	EntryCount   int               `json:"entry_count"`
	SettledCount int               `json:"settled_count"`
	SkippedCount int               `json:"skipped_count"`
	FailedCount  int               `json:"failed_count"`
	WorkerCount  int               `json:"worker_count"`
	RoundSettled bool              `json:"round_settled"`
	Tasks        []SettleTaskResult `json:"tasks"`
}

type SettleTaskResult struct {
	EntryID    string `json:"entry_id"`
	UserID     string `json:"user_id"`
	Status     string `json:"status"`
	CreditsEnd int    `json:"credits_end"`
	DurationMs int64  `json:"duration_ms"`
	Message    string `json:"message,omitempty"`
}

// SettleRound settles every entry in a locked round and, once the batch is
// clean, moves the round to settled through the repository's atomic
// transition. Per-entry settlement is idempotent, so a batch that failed
// part-way can simply be rerun while the round is still locked.
func (s *SettlementService) SettleRound(ctx context.Context, roundID string) (SettleRoundResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SettlementService.SettleRound")
	defer span.End()

	roundID = strings.TrimSpace(roundID)
	if roundID == "" {
		return SettleRoundResult{}, fmt.Errorf("%w: round id is required", ErrInvalidInput)
	}

	rnd, ok, err := s.roundRepo.GetByID(ctx, roundID)
	if err != nil {
		return SettleRoundResult{}, fmt.Errorf("get round: %w", err)
	}
	if !ok {
		return SettleRoundResult{}, fmt.Errorf("%w: round=%s", ErrNotFound, roundID)
	}
	switch rnd.Status {
	case round.StatusLocked:
	case round.StatusSettled:
		return SettleRoundResult{}, fmt.Errorf("%w: round=%s", ErrAlreadySettled, roundID)
	default:
		return SettleRoundResult{}, fmt.Errorf("%w: round=%s status=%s", ErrRoundNotLocked, roundID, rnd.Status)
	}

	options, err := s.loadResolvedOptions(ctx, rnd.ID)
	if err != nil {
		return SettleRoundResult{}, err
	}

	entries, err := s.entryRepo.ListByRound(ctx, rnd.ID)
	if err != nil {
		return SettleRoundResult{}, fmt.Errorf("list entries: %w", err)
	}
	selectionsByEntry, err := s.entryRepo.ListSelectionsByRound(ctx, rnd.ID)
	if err != nil {
		return SettleRoundResult{}, fmt.Errorf("list selections: %w", err)
	}

	workerCount := s.workers
	if workerCount > len(entries) && len(entries) > 0 {
		workerCount = len(entries)
	}

	result := SettleRoundResult{
		RoundID:     rnd.ID,
		EntryCount:  len(entries),
		WorkerCount: workerCount,
		Tasks:       make([]SettleTaskResult, 0, len(entries)),
	}
	if len(entries) == 0 {
		return s.finishRound(ctx, rnd.ID, result)
	}

	rows := make(chan SettleTaskResult, len(entries))

	var settledCount atomic.Int32
	var skippedCount atomic.Int32
	var failedCount atomic.Int32

	pool, err := ants.NewPool(workerCount)
	if err != nil {
		return SettleRoundResult{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var workers sync.WaitGroup
	for _, item := range entries {
		item := item
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			start := time.Now()
			row := s.settleEntry(ctx, item, selectionsByEntry[item.ID], options)
			row.DurationMs = time.Since(start).Milliseconds()

			switch row.Status {
			case settleStatusSettled:
				settledCount.Add(1)
			case settleStatusSkipped:
				skippedCount.Add(1)
			default:
				failedCount.Add(1)
			}

			rows <- row
		}); err != nil {
			workers.Done()
			return SettleRoundResult{}, fmt.Errorf("submit entry to worker pool: %w", err)
		}
	}

	workers.Wait()
	close(rows)

	for row := range rows {
		result.Tasks = append(result.Tasks, row)
	}
	sort.SliceStable(result.Tasks, func(i, j int) bool {
		return result.Tasks[i].EntryID < result.Tasks[j].EntryID
	})

	result.SettledCount = int(settledCount.Load())
	result.SkippedCount = int(skippedCount.Load())
	result.FailedCount = int(failedCount.Load())

	if result.FailedCount > 0 {
		s.logger.WarnContext(ctx, "settlement batch left failed entries",
			"round_id", rnd.ID,
			"failed", result.FailedCount,
			"settled", result.SettledCount,
		)
		return result, nil
	}

	return s.finishRound(ctx, rnd.ID, result)
}

// settleEntry recomputes one entry's final credits and persists payouts. An
// already settled entry is recorded as skipped so reruns stay idempotent.
func (s *SettlementService) settleEntry(ctx context.Context, item entry.Entry, selections []entry.Selection, options map[string]pick.Option) SettleTaskResult {
	row := SettleTaskResult{
		EntryID: item.ID,
		UserID:  item.UserID,
	}

	if item.Status == entry.StatusSettled && item.CreditsEnd != nil {
		row.Status = settleStatusSkipped
		row.CreditsEnd = *item.CreditsEnd
		return row
	}

	stakes := make([]settlement.SelectionStake, 0, len(selections))
	for _, selection := range selections {
		option, ok := options[selection.PickOptionID]
		if !ok {
			row.Status = settleStatusFailed
			row.Message = fmt.Sprintf("option %s not found for selection %s", selection.PickOptionID, selection.ID)
			return row
		}
		stakes = append(stakes, settlement.SelectionStake{
			SelectionID: selection.ID,
			Stake:       selection.Stake,
			Odds:        option.Odds,
			Result:      option.Result,
		})
	}

	outcome, err := settlement.SettleEntry(stakes, item.CreditsStart)
	if err != nil {
		row.Status = settleStatusFailed
		row.Message = err.Error()
		return row
	}

	payoutBySelection := make(map[string]int, len(outcome.Selections))
	for _, settled := range outcome.Selections {
		payoutBySelection[settled.SelectionID] = settled.Payout
	}
	for _, selection := range selections {
		payout := payoutBySelection[selection.ID]
		selection.Payout = &payout
		if err := s.entryRepo.UpsertSelection(ctx, selection); err != nil {
			row.Status = settleStatusFailed
			row.Message = fmt.Sprintf("persist payout for selection %s: %v", selection.ID, err)
			return row
		}
	}

	creditsEnd := outcome.CreditsEnd
	item.Status = entry.StatusSettled
	item.CreditsEnd = &creditsEnd
	if err := s.entryRepo.Upsert(ctx, item); err != nil {
		row.Status = settleStatusFailed
		row.Message = fmt.Sprintf("persist entry: %v", err)
		return row
	}

	row.Status = settleStatusSettled
	row.CreditsEnd = creditsEnd
	return row
}

// finishRound flips the round to settled exactly once. Losing the transition
// race means another settler finished first; the batch result still stands.
func (s *SettlementService) finishRound(ctx context.Context, roundID string, result SettleRoundResult) (SettleRoundResult, error) {
	moved, err := s.roundRepo.TransitionStatus(ctx, roundID, round.StatusLocked, round.StatusSettled)
	if err != nil {
		return result, fmt.Errorf("transition round to settled: %w", err)
	}
	result.RoundSettled = moved
	if !moved {
		s.logger.InfoContext(ctx, "round was settled concurrently", "round_id", roundID)
	}
	return result, nil
}

// loadResolvedOptions indexes every option in the round and rejects the batch
// up front while any market is still unresolved.
func (s *SettlementService) loadResolvedOptions(ctx context.Context, roundID string) (map[string]pick.Option, error) {
	picks, err := s.pickRepo.ListByRound(ctx, roundID)
	if err != nil {
		return nil, fmt.Errorf("list picks: %w", err)
	}

	out := make(map[string]pick.Option)
	for _, item := range picks {
		for _, option := range item.Options {
			if !option.Result.Resolved() {
				return nil, fmt.Errorf("%w: option=%s on pick=%s is unresolved", ErrInvalidInput, option.ID, item.ID)
			}
			out[option.ID] = option
		}
	}
	return out, nil
}
