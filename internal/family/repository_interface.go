package family

import "context"

type Repository interface {
	// Upsert creates a pending link or reactivates a deactivated one as
	// pending. An active link keeps its confirmation.
	Upsert(ctx context.Context, parentID, athleteID int, rel Relationship) (*Link, error)
	GetByID(ctx context.Context, id int) (*Link, error)
	ListByParent(ctx context.Context, parentID int) ([]Link, error)
	ListPendingForAthlete(ctx context.Context, athleteID int) ([]Link, error)
	ConfirmedAthleteIDs(ctx context.Context, parentID int) ([]int, error)
	IsLinked(ctx context.Context, parentID, athleteID int) (bool, error)
	// Confirm stamps a pending active link. It fails with
	// apperr.ErrConflictingUpdate if the link changed underneath.
	Confirm(ctx context.Context, id int) (*Link, error)
	Deactivate(ctx context.Context, parentID, athleteID int) error
}
