package training

import "context"

type Repository interface {
	Create(ctx context.Context, r *Request) (*Request, error)
	GetByID(ctx context.Context, id int) (*Request, error)
	ListByAthletes(ctx context.Context, athleteIDs []int) ([]Request, error)
	ListByCoach(ctx context.Context, coachID int) ([]Request, error)

	// Transition writes to only if the request is still in from.
	Transition(ctx context.Context, id int, from, to Status, reason *string) (*Request, error)
	// AcceptIfFree moves a pending request to accepted with sched, failing
	// with apperr.ErrScheduleConflict when the coach already has an
	// accepted session overlapping it.
	AcceptIfFree(ctx context.Context, id, coachID int, sched Schedule) (*Request, error)
}
