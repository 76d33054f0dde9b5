package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/riskibarqy/pick-portfolio/internal/domain/entry"
)

type EntryRepository struct {
	mu      sync.RWMutex
	entries map[string]entry.Entry
	// selections are keyed by (entry, pick) so restaking replaces in place.
	selections map[string]entry.Selection
}

func NewEntryRepository() *EntryRepository {
	return &EntryRepository{
		entries:    make(map[string]entry.Entry),
		selections: make(map[string]entry.Selection),
	}
}

func (r *EntryRepository) GetByID(_ context.Context, id string) (entry.Entry, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.entries[id]
	if !ok {
		return entry.Entry{}, false, nil
	}
	return cloneEntry(item), true, nil
}

func (r *EntryRepository) GetByRoundAndUser(_ context.Context, roundID, userID string) (entry.Entry, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, item := range r.entries {
		if item.RoundID == roundID && item.UserID == userID {
			return cloneEntry(item), true, nil
		}
	}
	return entry.Entry{}, false, nil
}

func (r *EntryRepository) ListByRound(_ context.Context, roundID string) ([]entry.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]entry.Entry, 0)
	for _, item := range r.entries {
		if item.RoundID != roundID {
			continue
		}
		out = append(out, cloneEntry(item))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *EntryRepository) Upsert(_ context.Context, item entry.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries[item.ID] = cloneEntry(item)
	return nil
}

func (r *EntryRepository) ListSelectionsByEntry(_ context.Context, entryID string) ([]entry.Selection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]entry.Selection, 0)
	for _, item := range r.selections {
		if item.EntryID != entryID {
			continue
		}
		out = append(out, cloneSelection(item))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PickID < out[j].PickID })
	return out, nil
}

func (r *EntryRepository) ListSelectionsByRound(_ context.Context, roundID string) (map[string][]entry.Selection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entryIDs := make(map[string]struct{})
	for _, item := range r.entries {
		if item.RoundID == roundID {
			entryIDs[item.ID] = struct{}{}
		}
	}

	out := make(map[string][]entry.Selection, len(entryIDs))
	for _, item := range r.selections {
		if _, ok := entryIDs[item.EntryID]; !ok {
			continue
		}
		out[item.EntryID] = append(out[item.EntryID], cloneSelection(item))
	}
	for entryID := range out {
		rows := out[entryID]
		sort.Slice(rows, func(i, j int) bool { return rows[i].PickID < rows[j].PickID })
		out[entryID] = rows
	}
	return out, nil
}

func (r *EntryRepository) UpsertSelection(_ context.Context, item entry.Selection) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.selections[selectionKey(item.EntryID, item.PickID)] = cloneSelection(item)
	return nil
}

func (r *EntryRepository) DeleteSelection(_ context.Context, entryID, pickID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.selections, selectionKey(entryID, pickID))
	return nil
}

func selectionKey(entryID, pickID string) string {
	return entryID + "::" + pickID
}

func cloneEntry(item entry.Entry) entry.Entry {
	copied := item
	if item.CreditsEnd != nil {
		creditsEnd := *item.CreditsEnd
		copied.CreditsEnd = &creditsEnd
	}
	if item.LockedAt != nil {
		lockedAt := *item.LockedAt
		copied.LockedAt = &lockedAt
	}
	return copied
}

func cloneSelection(item entry.Selection) entry.Selection {
	copied := item
	if item.Payout != nil {
		payout := *item.Payout
		copied.Payout = &payout
	}
	return copied
}
