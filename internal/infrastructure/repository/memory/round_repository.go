package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/riskibarqy/pick-portfolio/internal/domain/round"
)

type RoundRepository struct {
	mu    sync.RWMutex
	items map[string]round.Round
}

func NewRoundRepository() *RoundRepository {
	return &RoundRepository{items: make(map[string]round.Round)}
}

func (r *RoundRepository) GetByID(_ context.Context, id string) (round.Round, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[id]
	return item, ok, nil
}

func (r *RoundRepository) List(_ context.Context) ([]round.Round, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]round.Round, 0, len(r.items))
	for _, item := range r.items {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OpensAt.Before(out[j].OpensAt) })
	return out, nil
}

func (r *RoundRepository) Upsert(_ context.Context, item round.Round) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[item.ID] = item
	return nil
}

// TransitionStatus performs the compare-and-swap under the write lock so two
// settlers cannot both win the locked -> settled move.
func (r *RoundRepository) TransitionStatus(_ context.Context, id string, from, to round.Status) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[id]
	if !ok || item.Status != from {
		return false, nil
	}

	item.Status = to
	r.items[id] = item
	return true, nil
}
