package booking

import (
	"fmt"
	"strings"
	"time"

	"github.com/w4xxwrld/aiga-connect-sub000/internal/apperr"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

func (s Status) Terminal() bool {
	switch s {
	case StatusCancelled, StatusCompleted:
		return true
	case StatusPending, StatusConfirmed:
		return false
	default:
		return false
	}
}

type Kind string

const (
	KindRegular Kind = "regular"
	KindTrial   Kind = "trial"
	KindMakeup  Kind = "makeup"
)

// ParseKind defaults an empty kind to regular.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case "":
		return KindRegular, nil
	case KindRegular, KindTrial, KindMakeup:
		return k, nil
	default:
		return "", fmt.Errorf("%w: booking kind %q", apperr.ErrInvalidBookingType, s)
	}
}

type Booking struct {
	ID                 int       `db:"id" json:"id"`
	AthleteID          int       `db:"athlete_id" json:"athlete_id"`
	ClassID            int       `db:"class_id" json:"class_id"`
	ParentID           *int      `db:"parent_id" json:"parent_id,omitempty"`
	Kind               Kind      `db:"kind" json:"kind"`
	Status             Status    `db:"status" json:"status"`
	OccurrenceDate     time.Time `db:"occurrence_date" json:"occurrence_date"`
	IsPaid             bool      `db:"is_paid" json:"is_paid"`
	AmountCents        int64     `db:"amount_cents" json:"amount_cents"`
	Notes              *string   `db:"notes" json:"notes,omitempty"`
	CancellationReason *string   `db:"cancellation_reason" json:"cancellation_reason,omitempty"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time `db:"updated_at" json:"updated_at"`
}

// RosterEntry is a booking on a coach's occurrence list.
type RosterEntry struct {
	Booking
	AthleteName string `db:"athlete_name" json:"athlete_name"`
}

type CreateBookingRequest struct {
	AthleteID      int     `json:"athlete_id" validate:"required,gt=0"`
	ClassID        int     `json:"class_id" validate:"required,gt=0"`
	Kind           string  `json:"kind" validate:"omitempty,oneof=regular trial makeup" example:"regular"`
	OccurrenceDate string  `json:"occurrence_date" validate:"required,datetime=2006-01-02" example:"2026-03-07"`
	Notes          *string `json:"notes" validate:"omitempty,max=1000"`
}

type ReasonRequest struct {
	Reason string `json:"reason" validate:"max=500" example:"injury"`
}
