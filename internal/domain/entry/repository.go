package entry

import "context"

type Repository interface {
	GetByID(ctx context.Context, id string) (Entry, bool, error)
	GetByRoundAndUser(ctx context.Context, roundID, userID string) (Entry, bool, error)
	ListByRound(ctx context.Context, roundID string) ([]Entry, error)
	Upsert(ctx context.Context, item Entry) error

	ListSelectionsByEntry(ctx context.Context, entryID string) ([]Selection, error)
	ListSelectionsByRound(ctx context.Context, roundID string) (map[string][]Selection, error)
	// UpsertSelection inserts or replaces the selection keyed by
	// (entry, pick).
	UpsertSelection(ctx context.Context, item Selection) error
	DeleteSelection(ctx context.Context, entryID, pickID string) error
}
