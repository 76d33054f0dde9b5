package stake

// Stake amounts are whole credits. All helpers keep values aligned to the
// round's stake step so persisted stakes never carry fractional steps.

const (
	minStakeShare = 0.02
	maxStakeShare = 0.08
)

// SanitizeStakeStep returns a usable positive step. Non-positive input falls
// back to max(1, fallback).
func SanitizeStakeStep(value, fallback int) int {
	if value > 0 {
		return value
	}
	if fallback > 0 {
		return fallback
	}
	return 1
}

// RoundToStep rounds value to the nearest multiple of step, half up.
func RoundToStep(value, step int) int {
	step = SanitizeStakeStep(step, 1)
	if value <= 0 {
		return 0
	}
	remainder := value % step
	if remainder*2 >= step {
		return value + step - remainder
	}
	return value - remainder
}

// NormalizeStakeToStep rounds value to the step, then clamps it into
// [min, max].
func NormalizeStakeToStep(value, min, max, step int) int {
	out := RoundToStep(value, step)
	if out < min {
		return min
	}
	if out > max {
		return max
	}
	return out
}

// Range is the allowed per-selection stake window for a round.
type Range struct {
	Min int
	Max int
}

// DeriveStakeRange computes the default stake window from the round budget:
// min is ~2% of starting credits, max ~8%, both aligned to the step. Min never
// drops below one step; max never drops below min nor exceeds the budget.
func DeriveStakeRange(startingCredits, stakeStep int) Range {
	step := SanitizeStakeStep(stakeStep, 1)
	if startingCredits <= 0 {
		return Range{Min: step, Max: step}
	}

	min := RoundToStep(int(float64(startingCredits)*minStakeShare), step)
	if min < step {
		min = step
	}

	max := RoundToStep(int(float64(startingCredits)*maxStakeShare), step)
	if max < min {
		max = min
	}
	if max > startingCredits {
		max = startingCredits
	}

	return Range{Min: min, Max: max}
}
