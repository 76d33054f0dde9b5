package main

import (
	"fmt"
	"os"

	"github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
)

// roundFixture describes one simulated round: the market board, the players,
// and the results that land during the week.
type roundFixture struct {
	Round fixtureRound  `json:"round" validate:"required"`
	Picks []fixturePick `json:"picks" validate:"required,min=1,dive"`
	Users []fixtureUser `json:"users" validate:"required,min=1,dive"`
}

type fixtureRound struct {
	Name              string `json:"name" validate:"required"`
	StartingCredits   int    `json:"starting_credits" validate:"gt=0"`
	StakeStep         int    `json:"stake_step" validate:"gt=0"`
	DurationHours     int    `json:"duration_hours" validate:"gt=0"`
	EnforceFullBudget bool   `json:"enforce_full_budget"`
}

type fixturePick struct {
	Key              string          `json:"key" validate:"required"`
	Sport            string          `json:"sport" validate:"required"`
	Board            string          `json:"board" validate:"omitempty,oneof=daily weekly other"`
	Label            string          `json:"label" validate:"required"`
	StartOffsetHours int             `json:"start_offset_hours" validate:"gte=0"`
	Options          []fixtureOption `json:"options" validate:"required,min=2,dive"`
}

type fixtureOption struct {
	Key   string  `json:"key" validate:"required"`
	Label string  `json:"label" validate:"required"`
	Odds  float64 `json:"odds" validate:"gt=1"`
	// Result is the outcome that lands once the event finishes.
	Result string `json:"result" validate:"omitempty,oneof=win lose void"`
}

type fixtureUser struct {
	ID         string             `json:"id" validate:"required"`
	Username   string             `json:"username" validate:"required"`
	Selections []fixtureSelection `json:"selections" validate:"dive"`
}

type fixtureSelection struct {
	Pick   string `json:"pick" validate:"required"`
	Option string `json:"option" validate:"required"`
	Stake  int    `json:"stake" validate:"gt=0"`
}

func loadFixture(path string) (roundFixture, error) {
	if path == "" {
		return defaultFixture(), nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return roundFixture{}, fmt.Errorf("read fixture: %w", err)
	}

	var out roundFixture
	if err := sonic.Unmarshal(raw, &out); err != nil {
		return roundFixture{}, fmt.Errorf("decode fixture: %w", err)
	}
	if err := validator.New().Struct(out); err != nil {
		return roundFixture{}, fmt.Errorf("validate fixture: %w", err)
	}

	return out, nil
}

// defaultFixture is a small but complete week: three markets across two
// sports, three players, every outcome class represented.
func defaultFixture() roundFixture {
	return roundFixture{
		Round: fixtureRound{
			Name:            "Week 12",
			StartingCredits: 10000,
			StakeStep:       50,
			DurationHours:   168,
		},
		Picks: []fixturePick{
			{
				Key: "derby", Sport: "soccer", Board: "weekly",
				Label: "North London Derby", StartOffsetHours: 24,
				Options: []fixtureOption{
					{Key: "home", Label: "Home win", Odds: 2.11, Result: "win"},
					{Key: "draw", Label: "Draw", Odds: 3.4, Result: "lose"},
					{Key: "away", Label: "Away win", Odds: 3.1, Result: "lose"},
				},
			},
			{
				Key: "nba", Sport: "basketball", Board: "daily",
				Label: "Lakers @ Celtics", StartOffsetHours: 30,
				Options: []fixtureOption{
					{Key: "home", Label: "Celtics", Odds: 1.8, Result: "lose"},
					{Key: "away", Label: "Lakers", Odds: 2.1, Result: "win"},
				},
			},
			{
				Key: "open", Sport: "tennis", Board: "daily",
				Label: "Quarter final", StartOffsetHours: 48,
				Options: []fixtureOption{
					{Key: "p1", Label: "Seed 1", Odds: 1.5, Result: "void"},
					{Key: "p2", Label: "Challenger", Odds: 2.6, Result: "void"},
				},
			},
		},
		Users: []fixtureUser{
			{
				ID: "u-alice", Username: "alice",
				Selections: []fixtureSelection{
					{Pick: "derby", Option: "home", Stake: 400},
					{Pick: "nba", Option: "home", Stake: 300},
					{Pick: "open", Option: "p1", Stake: 250},
				},
			},
			{
				ID: "u-bob", Username: "bob",
				Selections: []fixtureSelection{
					{Pick: "derby", Option: "away", Stake: 800},
					{Pick: "nba", Option: "away", Stake: 500},
				},
			},
			{
				ID: "u-carol", Username: "carol",
				Selections: []fixtureSelection{
					{Pick: "open", Option: "p2", Stake: 200},
				},
			},
		},
	}
}
