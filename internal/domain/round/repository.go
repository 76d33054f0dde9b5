package round

import "context"

type Repository interface {
	GetByID(ctx context.Context, id string) (Round, bool, error)
	List(ctx context.Context) ([]Round, error)
	Upsert(ctx context.Context, item Round) error
	// TransitionStatus atomically moves a round from one status to another.
	// It returns false without error when the round is not in the expected
	// status, which callers use as a settle-once guard.
	TransitionStatus(ctx context.Context, id string, from, to Status) (bool, error)
}
