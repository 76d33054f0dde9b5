package projection

// ImpliedProbability converts decimal odds into a win probability with the
// bookmaker margin removed: the inverse odds are normalized across every
// positive price in the market. Non-positive odds yield probability zero.
func ImpliedProbability(odds float64, marketOdds []float64) float64 {
	if odds <= 0 {
		return 0
	}

	inverseSum := 0.0
	for _, price := range marketOdds {
		if price <= 0 {
			continue
		}
		inverseSum += 1 / price
	}
	if inverseSum <= 0 {
		return 0
	}

	return (1 / odds) / inverseSum
}
