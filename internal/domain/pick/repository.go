package pick

import "context"

type Repository interface {
	ListByRound(ctx context.Context, roundID string) ([]Pick, error)
	GetByID(ctx context.Context, id string) (Pick, bool, error)
	Upsert(ctx context.Context, item Pick) error
	// SetOptionResult records the resolved outcome of one option.
	SetOptionResult(ctx context.Context, pickID, optionID string, result Result) error
}
