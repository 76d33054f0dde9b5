package settlement

import (
	"testing"

	"github.com/cockroachdb/errors"

	"github.com/riskibarqy/pick-portfolio/internal/domain/pick"
)

func TestCalculatePayout(t *testing.T) {
	tests := []struct {
		name      string
		stake     int
		odds      float64
		result    pick.Result
		want      int
		targetErr error
	}{
		{name: "win floors the product", stake: 3333, odds: 2.11, result: pick.ResultWin, want: 7032},
		{name: "win exact product", stake: 4000, odds: 2.0, result: pick.ResultWin, want: 8000},
		{name: "lose pays zero", stake: 3000, odds: 1.8, result: pick.ResultLose, want: 0},
		{name: "void refunds stake", stake: 3000, odds: 1.5, result: pick.ResultVoid, want: 3000},
		{name: "zero stake win", stake: 0, odds: 5.5, result: pick.ResultWin, want: 0},
		{name: "negative stake", stake: -1, odds: 2.0, result: pick.ResultWin, targetErr: ErrInvalidStake},
		{name: "zero odds", stake: 100, odds: 0, result: pick.ResultWin, targetErr: ErrInvalidOdds},
		{name: "negative odds", stake: 100, odds: -1.5, result: pick.ResultLose, targetErr: ErrInvalidOdds},
		{name: "pending result", stake: 100, odds: 2.0, result: pick.ResultPending, targetErr: ErrPendingResult},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CalculatePayout(tt.stake, tt.odds, tt.result)
			if tt.targetErr != nil {
				if !errors.Is(err, tt.targetErr) {
					t.Fatalf("expected %v, got %v", tt.targetErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("CalculatePayout(%d, %v, %s) = %d, want %d", tt.stake, tt.odds, tt.result, got, tt.want)
			}
		})
	}
}

func TestCalculatePayout_UnknownResult(t *testing.T) {
	if _, err := CalculatePayout(100, 2.0, pick.Result("cancelled")); err == nil {
		t.Fatal("expected error for unknown result")
	}
}

func TestSettleEntry(t *testing.T) {
	t.Run("zero starting credits", func(t *testing.T) {
		selections := []SelectionStake{
			{SelectionID: "s1", Stake: 4000, Odds: 2.0, Result: pick.ResultWin},
			{SelectionID: "s2", Stake: 3000, Odds: 1.8, Result: pick.ResultLose},
			{SelectionID: "s3", Stake: 3000, Odds: 1.5, Result: pick.ResultVoid},
		}

		got, err := SettleEntry(selections, 0)
		if err != nil {
			t.Fatalf("settle entry: %v", err)
		}
		wantPayouts := []int{8000, 0, 3000}
		for i, settled := range got.Selections {
			if settled.Payout != wantPayouts[i] {
				t.Fatalf("payout[%d] = %d, want %d", i, settled.Payout, wantPayouts[i])
			}
		}
		if got.TotalStake != 10000 {
			t.Fatalf("TotalStake = %d, want 10000", got.TotalStake)
		}
		if got.CashRemaining != 0 {
			t.Fatalf("CashRemaining = %d, want 0", got.CashRemaining)
		}
		if got.CreditsEnd != 11000 {
			t.Fatalf("CreditsEnd = %d, want 11000", got.CreditsEnd)
		}
	})

	t.Run("partial budget keeps cash", func(t *testing.T) {
		selections := []SelectionStake{
			{SelectionID: "s1", Stake: 500, Odds: 2.0, Result: pick.ResultWin},
			{SelectionID: "s2", Stake: 200, Odds: 1.8, Result: pick.ResultLose},
		}

		got, err := SettleEntry(selections, 10000)
		if err != nil {
			t.Fatalf("settle entry: %v", err)
		}
		if got.CashRemaining != 9300 {
			t.Fatalf("CashRemaining = %d, want 9300", got.CashRemaining)
		}
		if got.CreditsEnd != 10300 {
			t.Fatalf("CreditsEnd = %d, want 10300", got.CreditsEnd)
		}
	})

	t.Run("idempotent", func(t *testing.T) {
		selections := []SelectionStake{
			{SelectionID: "s1", Stake: 500, Odds: 2.35, Result: pick.ResultWin},
			{SelectionID: "s2", Stake: 300, Odds: 3.1, Result: pick.ResultLose},
		}

		first, err := SettleEntry(selections, 2000)
		if err != nil {
			t.Fatalf("first settle: %v", err)
		}
		second, err := SettleEntry(selections, 2000)
		if err != nil {
			t.Fatalf("second settle: %v", err)
		}
		if first.CreditsEnd != second.CreditsEnd || first.CashRemaining != second.CashRemaining {
			t.Fatalf("settlement not idempotent: %+v vs %+v", first, second)
		}
		for i := range first.Selections {
			if first.Selections[i] != second.Selections[i] {
				t.Fatalf("payouts differ at %d: %+v vs %+v", i, first.Selections[i], second.Selections[i])
			}
		}
	})

	t.Run("negative starting credits", func(t *testing.T) {
		if _, err := SettleEntry(nil, -1); !errors.Is(err, ErrInvalidCredits) {
			t.Fatalf("expected ErrInvalidCredits, got %v", err)
		}
	})

	t.Run("pending selection aborts", func(t *testing.T) {
		selections := []SelectionStake{
			{SelectionID: "s1", Stake: 500, Odds: 2.0, Result: pick.ResultPending},
		}
		if _, err := SettleEntry(selections, 1000); !errors.Is(err, ErrPendingResult) {
			t.Fatalf("expected ErrPendingResult, got %v", err)
		}
	})

	t.Run("empty selections", func(t *testing.T) {
		got, err := SettleEntry(nil, 5000)
		if err != nil {
			t.Fatalf("settle entry: %v", err)
		}
		if got.CreditsEnd != 5000 || got.CashRemaining != 5000 || got.TotalStake != 0 {
			t.Fatalf("unexpected result for empty selections: %+v", got)
		}
	})
}
