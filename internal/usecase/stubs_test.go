package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/riskibarqy/pick-portfolio/internal/domain/entry"
	"github.com/riskibarqy/pick-portfolio/internal/domain/pick"
	"github.com/riskibarqy/pick-portfolio/internal/domain/round"
)

type stubRoundRepository struct {
	items map[string]round.Round
}

func newStubRoundRepository(items ...round.Round) *stubRoundRepository {
	repo := &stubRoundRepository{items: make(map[string]round.Round)}
	for _, item := range items {
		repo.items[item.ID] = item
	}
	return repo
}

func (s *stubRoundRepository) GetByID(_ context.Context, id string) (round.Round, bool, error) {
	item, ok := s.items[id]
	return item, ok, nil
}

func (s *stubRoundRepository) List(_ context.Context) ([]round.Round, error) {
	out := make([]round.Round, 0, len(s.items))
	for _, item := range s.items {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *stubRoundRepository) Upsert(_ context.Context, item round.Round) error {
	s.items[item.ID] = item
	return nil
}

func (s *stubRoundRepository) TransitionStatus(_ context.Context, id string, from, to round.Status) (bool, error) {
	item, ok := s.items[id]
	if !ok || item.Status != from {
		return false, nil
	}
	item.Status = to
	s.items[id] = item
	return true, nil
}

type stubPickRepository struct {
	items map[string]pick.Pick
}

func newStubPickRepository(items ...pick.Pick) *stubPickRepository {
	repo := &stubPickRepository{items: make(map[string]pick.Pick)}
	for _, item := range items {
		repo.items[item.ID] = item
	}
	return repo
}

func (s *stubPickRepository) ListByRound(_ context.Context, roundID string) ([]pick.Pick, error) {
	out := make([]pick.Pick, 0)
	for _, item := range s.items {
		if item.RoundID == roundID {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *stubPickRepository) GetByID(_ context.Context, id string) (pick.Pick, bool, error) {
	item, ok := s.items[id]
	return item, ok, nil
}

func (s *stubPickRepository) Upsert(_ context.Context, item pick.Pick) error {
	s.items[item.ID] = item
	return nil
}

func (s *stubPickRepository) SetOptionResult(_ context.Context, pickID, optionID string, result pick.Result) error {
	item, ok := s.items[pickID]
	if !ok {
		return fmt.Errorf("pick %s not found", pickID)
	}
	for idx := range item.Options {
		if item.Options[idx].ID == optionID {
			item.Options[idx].Result = result
			s.items[pickID] = item
			return nil
		}
	}
	return fmt.Errorf("option %s not found", optionID)
}

type stubEntryRepository struct {
	entries    map[string]entry.Entry
	selections map[string]entry.Selection
}

func newStubEntryRepository() *stubEntryRepository {
	return &stubEntryRepository{
		entries:    make(map[string]entry.Entry),
		selections: make(map[string]entry.Selection),
	}
}

func (s *stubEntryRepository) GetByID(_ context.Context, id string) (entry.Entry, bool, error) {
	item, ok := s.entries[id]
	return item, ok, nil
}

func (s *stubEntryRepository) GetByRoundAndUser(_ context.Context, roundID, userID string) (entry.Entry, bool, error) {
	for _, item := range s.entries {
		if item.RoundID == roundID && item.UserID == userID {
			return item, true, nil
		}
	}
	return entry.Entry{}, false, nil
}

func (s *stubEntryRepository) ListByRound(_ context.Context, roundID string) ([]entry.Entry, error) {
	out := make([]entry.Entry, 0)
	for _, item := range s.entries {
		if item.RoundID == roundID {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *stubEntryRepository) Upsert(_ context.Context, item entry.Entry) error {
	s.entries[item.ID] = item
	return nil
}

func (s *stubEntryRepository) ListSelectionsByEntry(_ context.Context, entryID string) ([]entry.Selection, error) {
	out := make([]entry.Selection, 0)
	for _, item := range s.selections {
		if item.EntryID == entryID {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PickID < out[j].PickID })
	return out, nil
}

func (s *stubEntryRepository) ListSelectionsByRound(_ context.Context, roundID string) (map[string][]entry.Selection, error) {
	entryIDs := make(map[string]struct{})
	for _, item := range s.entries {
		if item.RoundID == roundID {
			entryIDs[item.ID] = struct{}{}
		}
	}
	out := make(map[string][]entry.Selection)
	for _, item := range s.selections {
		if _, ok := entryIDs[item.EntryID]; ok {
			out[item.EntryID] = append(out[item.EntryID], item)
		}
	}
	for entryID := range out {
		rows := out[entryID]
		sort.Slice(rows, func(i, j int) bool { return rows[i].PickID < rows[j].PickID })
		out[entryID] = rows
	}
	return out, nil
}

func (s *stubEntryRepository) UpsertSelection(_ context.Context, item entry.Selection) error {
	s.selections[item.EntryID+"::"+item.PickID] = item
	return nil
}

func (s *stubEntryRepository) DeleteSelection(_ context.Context, entryID, pickID string) error {
	delete(s.selections, entryID+"::"+pickID)
	return nil
}

type seqIDGenerator struct {
	prefix string
	n      int
}

func (g *seqIDGenerator) NewID() (string, error) {
	g.n++
	return fmt.Sprintf("%s-%d", g.prefix, g.n), nil
}

// Shared fixture: an open weekly round with two pending markets. The frozen
// clock sits between the round opening and the first kickoff.
var testNow = time.Date(2025, 3, 7, 12, 0, 0, 0, time.UTC)

func testRound(status round.Status) round.Round {
	return round.Round{
		ID:              "round-12",
		Name:            "Week 12",
		Status:          status,
		OpensAt:         time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC),
		ClosesAt:        time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		StartingCredits: 10000,
		StakeStep:       50,
		MinStake:        200,
		MaxStake:        800,
	}
}

func testPicks() []pick.Pick {
	return []pick.Pick{
		{
			ID:        "p1",
			RoundID:   "round-12",
			SportSlug: "soccer",
			Board:     "weekly",
			Label:     "Arsenal v Spurs",
			StartTime: time.Date(2025, 3, 8, 15, 0, 0, 0, time.UTC),
			Options: []pick.Option{
				{ID: "p1-home", PickID: "p1", Label: "Home", Odds: 2.0, Result: pick.ResultPending},
				{ID: "p1-away", PickID: "p1", Label: "Away", Odds: 2.0, Result: pick.ResultPending},
			},
		},
		{
			ID:        "p2",
			RoundID:   "round-12",
			SportSlug: "basketball",
			Board:     "daily",
			Label:     "Lakers v Celtics",
			StartTime: time.Date(2025, 3, 9, 1, 0, 0, 0, time.UTC),
			Options: []pick.Option{
				{ID: "p2-home", PickID: "p2", Label: "Home", Odds: 1.8, Result: pick.ResultPending},
				{ID: "p2-away", PickID: "p2", Label: "Away", Odds: 2.1, Result: pick.ResultPending},
			},
		},
	}
}
