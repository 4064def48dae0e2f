package training

import (
	"time"

	"github.com/w4xxwrld/aiga-connect-sub000/internal/schedule"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusAccepted  Status = "accepted"
	StatusDeclined  Status = "declined"
	StatusCompleted Status = "completed"
)

func (s Status) Terminal() bool {
	switch s {
	case StatusDeclined, StatusCompleted:
		return true
	case StatusPending, StatusAccepted:
		return false
	default:
		return false
	}
}

// Request is a one-on-one session an athlete asks a coach for. The
// scheduled fields stay empty until the coach accepts.
type Request struct {
	ID             int        `db:"id" json:"id"`
	AthleteID      int        `db:"athlete_id" json:"athlete_id"`
	CoachID        int        `db:"coach_id" json:"coach_id"`
	ParentID       *int       `db:"parent_id" json:"parent_id,omitempty"`
	RequestedDate  time.Time  `db:"requested_date" json:"requested_date"`
	PreferredStart *string    `db:"preferred_start" json:"preferred_start,omitempty"`
	PreferredEnd   *string    `db:"preferred_end" json:"preferred_end,omitempty"`
	Status         Status     `db:"status" json:"status"`
	ScheduledDate  *time.Time `db:"scheduled_date" json:"scheduled_date,omitempty"`
	ScheduledStart *string    `db:"scheduled_start" json:"scheduled_start,omitempty"`
	ScheduledEnd   *string    `db:"scheduled_end" json:"scheduled_end,omitempty"`
	IsPaid         bool       `db:"is_paid" json:"is_paid"`
	AmountCents    int64      `db:"amount_cents" json:"amount_cents"`
	AthleteNotes   *string    `db:"athlete_notes" json:"athlete_notes,omitempty"`
	CoachNotes     *string    `db:"coach_notes" json:"coach_notes,omitempty"`
	DeclineReason  *string    `db:"decline_reason" json:"decline_reason,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
}

// PreferredWindow is nil unless both ends were given.
func (r *Request) PreferredWindow() *schedule.Window {
	return window(r.PreferredStart, r.PreferredEnd)
}

func (r *Request) ScheduledWindow() *schedule.Window {
	return window(r.ScheduledStart, r.ScheduledEnd)
}

func window(start, end *string) *schedule.Window {
	if start == nil || end == nil {
		return nil
	}
	return &schedule.Window{Start: *start, End: *end}
}

// Schedule is what a coach commits to on accept.
type Schedule struct {
	Date        time.Time
	Window      schedule.Window
	AmountCents *int64
	IsPaid      *bool
	CoachNotes  *string
}

type CreateTrainingRequest struct {
	AthleteID      int     `json:"athlete_id" validate:"required,gt=0"`
	CoachID        int     `json:"coach_id" validate:"required,gt=0"`
	RequestedDate  string  `json:"requested_date" validate:"required,datetime=2006-01-02" example:"2026-03-10"`
	PreferredStart *string `json:"preferred_start" validate:"omitempty,datetime=15:04" example:"17:00"`
	PreferredEnd   *string `json:"preferred_end" validate:"omitempty,datetime=15:04" example:"18:00"`
	Notes          *string `json:"notes" validate:"omitempty,max=1000"`
}

// AcceptTrainingRequest fields left out fall back to what the athlete asked for.
type AcceptTrainingRequest struct {
	ScheduledDate  *string `json:"scheduled_date" validate:"omitempty,datetime=2006-01-02" example:"2026-03-10"`
	ScheduledStart *string `json:"scheduled_start" validate:"omitempty,datetime=15:04" example:"17:00"`
	ScheduledEnd   *string `json:"scheduled_end" validate:"omitempty,datetime=15:04" example:"18:00"`
	AmountCents    *int64  `json:"amount_cents" validate:"omitempty,gte=0" example:"1500000"`
	IsPaid         *bool   `json:"is_paid"`
	CoachNotes     *string `json:"coach_notes" validate:"omitempty,max=1000"`
}

type ReasonRequest struct {
	Reason string `json:"reason" validate:"max=500" example:"schedule conflict"`
}
