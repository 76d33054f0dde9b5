package projection

import (
	"fmt"

	"github.com/riskibarqy/pick-portfolio/internal/domain/pick"
	"github.com/riskibarqy/pick-portfolio/internal/domain/round"
	"github.com/riskibarqy/pick-portfolio/internal/domain/sport"
	"github.com/riskibarqy/pick-portfolio/internal/domain/stake"
)

type SuggestionType string

const (
	SuggestionInfo    SuggestionType = "info"
	SuggestionWarning SuggestionType = "warning"
	SuggestionTrim    SuggestionType = "trim"
	SuggestionBoost   SuggestionType = "boost"
)

// Suggestion is one deterministic stake advice item.
type Suggestion struct {
	ID             string
	Type           SuggestionType
	Confidence     float64
	Title          string
	Description    string
	PickID         string
	CurrentStake   int
	SuggestedStake int
}

// Thresholds for the advice rules.
const (
	concentrationShare = 0.60
	trimMinOdds        = 3.0
	trimStakeMargin    = 50
	boostMinOdds       = 1.45
	boostMaxOdds       = 2.25
)

// BuildStakeSuggestions evaluates the advice rules in fixed order and returns
// at most four items. Every suggested stake is step-aligned inside the
// round's stake window.
func BuildStakeSuggestions(rnd round.Round, selections []Selection, creditsStart int) []Suggestion {
	step := stake.SanitizeStakeStep(rnd.StakeStep, 1)

	totalStake := 0
	for _, selection := range selections {
		totalStake += selection.Stake
	}
	unusedCash := creditsStart - totalStake

	out := make([]Suggestion, 0, 4)

	if unusedCash >= rnd.MinStake {
		out = append(out, Suggestion{
			ID:          "unused-cash",
			Type:        SuggestionInfo,
			Confidence:  0.9,
			Title:       "Credits left on the table",
			Description: fmt.Sprintf("%d credits are unstaked; the minimum stake is %d.", unusedCash, rnd.MinStake),
		})
	}

	if slug, share, ok := dominantSport(selections, totalStake); ok && share >= concentrationShare {
		out = append(out, Suggestion{
			ID:          "sport-concentration",
			Type:        SuggestionWarning,
			Confidence:  0.7,
			Title:       "Portfolio leans on one sport",
			Description: fmt.Sprintf("%s holds %.0f%% of your total stake.", sport.DisplayName(slug), share*100),
		})
	}

	if candidate, ok := trimCandidate(selections, rnd.MinStake); ok {
		suggested := stake.NormalizeStakeToStep(candidate.Stake-step, rnd.MinStake, rnd.MaxStake, step)
		if suggested < candidate.Stake {
			out = append(out, Suggestion{
				ID:             "trim-long-shot",
				Type:           SuggestionTrim,
				Confidence:     0.6,
				Title:          "Trim your biggest long shot",
				Description:    fmt.Sprintf("Odds of %.2f carry real downside; stepping the stake down keeps the upside.", candidate.Odds),
				PickID:         candidate.PickID,
				CurrentStake:   candidate.Stake,
				SuggestedStake: suggested,
			})
		}
	}

	if candidate, ok := boostCandidate(selections); ok {
		suggested := stake.NormalizeStakeToStep(candidate.Stake+step, rnd.MinStake, rnd.MaxStake, step)
		increase := suggested - candidate.Stake
		if increase > 0 && unusedCash >= increase {
			out = append(out, Suggestion{
				ID:             "boost-favourite",
				Type:           SuggestionBoost,
				Confidence:     0.55,
				Title:          "Back your strongest pick harder",
				Description:    fmt.Sprintf("Odds of %.2f with the best implied probability in your portfolio.", candidate.Odds),
				PickID:         candidate.PickID,
				CurrentStake:   candidate.Stake,
				SuggestedStake: suggested,
			})
		}
	}

	return out
}

func dominantSport(selections []Selection, totalStake int) (string, float64, bool) {
	if totalStake <= 0 {
		return "", 0, false
	}

	stakeBySport := make(map[string]int)
	for _, selection := range selections {
		stakeBySport[selection.SportSlug] += selection.Stake
	}

	topSlug := ""
	topStake := 0
	for slug, staked := range stakeBySport {
		if staked > topStake || (staked == topStake && slug < topSlug) {
			topSlug = slug
			topStake = staked
		}
	}
	if topSlug == "" {
		return "", 0, false
	}

	return topSlug, float64(topStake) / float64(totalStake), true
}

// trimCandidate picks the highest-stake pending long shot worth stepping
// down. Ties resolve by pick id for determinism.
func trimCandidate(selections []Selection, minStake int) (Selection, bool) {
	best := Selection{}
	found := false
	for _, selection := range selections {
		if selection.Result != pick.ResultPending {
			continue
		}
		if selection.Odds < trimMinOdds || selection.Stake <= minStake+trimStakeMargin {
			continue
		}
		if !found || selection.Stake > best.Stake || (selection.Stake == best.Stake && selection.PickID < best.PickID) {
			best = selection
			found = true
		}
	}
	return best, found
}

// boostCandidate picks the editable pending selection in the favourite odds
// band with the highest implied probability.
func boostCandidate(selections []Selection) (Selection, bool) {
	best := Selection{}
	bestProb := 0.0
	found := false
	for _, selection := range selections {
		if selection.Result != pick.ResultPending || !selection.Editable {
			continue
		}
		if selection.Odds < boostMinOdds || selection.Odds > boostMaxOdds {
			continue
		}
		prob := ImpliedProbability(selection.Odds, selection.MarketOdds)
		if !found || prob > bestProb || (prob == bestProb && selection.PickID < best.PickID) {
			best = selection
			bestProb = prob
			found = true
		}
	}
	return best, found
}
