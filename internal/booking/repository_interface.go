package booking

import (
	"context"
	"time"

	"github.com/w4xxwrld/aiga-connect-sub000/internal/capacity"
)

type Repository interface {
	Create(ctx context.Context, b *Booking) (*Booking, error)
	GetByID(ctx context.Context, id int) (*Booking, error)
	ListByAthletes(ctx context.Context, athleteIDs []int) ([]Booking, error)
	ListByCoach(ctx context.Context, coachID int) ([]Booking, error)
	ListByOccurrence(ctx context.Context, classID int, date time.Time) ([]RosterEntry, error)
	ListConfirmedBefore(ctx context.Context, date time.Time, limit int) ([]Booking, error)
	CountConfirmed(ctx context.Context, classID int, date time.Time) (int, error)
	HasActiveBooking(ctx context.Context, athleteID, classID int, date time.Time) (bool, error)

	// Transition writes to only if the booking is still in from.
	Transition(ctx context.Context, id int, from, to Status, reason *string) (*Booking, error)
	// ConfirmWithinCapacity moves a pending booking to confirmed while the
	// slot is locked. A booking no longer pending fails with
	// apperr.ErrConflictingUpdate before seats are counted; a full slot
	// fails with capacity.ErrCapacityExceeded.
	ConfirmWithinCapacity(ctx context.Context, id int, slot capacity.Slot, maxCapacity int) (*Booking, error)
}
