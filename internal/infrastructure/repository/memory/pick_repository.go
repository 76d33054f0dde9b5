package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/riskibarqy/pick-portfolio/internal/domain/pick"
)

type PickRepository struct {
	mu    sync.RWMutex
	items map[string]pick.Pick
}

func NewPickRepository() *PickRepository {
	return &PickRepository{items: make(map[string]pick.Pick)}
}

func (r *PickRepository) ListByRound(_ context.Context, roundID string) ([]pick.Pick, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]pick.Pick, 0)
	for _, item := range r.items {
		if item.RoundID != roundID {
			continue
		}
		out = append(out, clonePick(item))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartTime.Equal(out[j].StartTime) {
			return out[i].StartTime.Before(out[j].StartTime)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *PickRepository) GetByID(_ context.Context, id string) (pick.Pick, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[id]
	if !ok {
		return pick.Pick{}, false, nil
	}
	return clonePick(item), true, nil
}

func (r *PickRepository) Upsert(_ context.Context, item pick.Pick) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[item.ID] = clonePick(item)
	return nil
}

func (r *PickRepository) SetOptionResult(_ context.Context, pickID, optionID string, result pick.Result) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[pickID]
	if !ok {
		return fmt.Errorf("pick %s not found", pickID)
	}
	for idx := range item.Options {
		if item.Options[idx].ID != optionID {
			continue
		}
		item.Options[idx].Result = result
		r.items[pickID] = item
		return nil
	}
	return fmt.Errorf("option %s not found on pick %s", optionID, pickID)
}

func clonePick(item pick.Pick) pick.Pick {
	copied := item
	copied.Options = append([]pick.Option(nil), item.Options...)
	return copied
}
