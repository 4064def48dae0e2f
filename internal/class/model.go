package class

import (
	"time"

	"github.com/w4xxwrld/aiga-connect-sub000/internal/schedule"
)

type Status string

const (
	StatusActive    Status = "active"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

// Class is a recurring weekly offering owned by one coach.
type Class struct {
	ID               int                 `db:"id" json:"id"`
	Name             string              `db:"name" json:"name"`
	Description      string              `db:"description" json:"description"`
	CoachID          int                 `db:"coach_id" json:"coach_id"`
	Weekdays         schedule.WeekdaySet `db:"weekdays" json:"weekdays" swaggertype:"array,string"`
	StartTime        string              `db:"start_time" json:"start_time" example:"18:00"`
	EndTime          string              `db:"end_time" json:"end_time" example:"19:30"`
	AgeMin           int                 `db:"age_min" json:"age_min"`
	AgeMax           int                 `db:"age_max" json:"age_max"`
	MaxCapacity      int                 `db:"max_capacity" json:"max_capacity"`
	PriceCents       int64               `db:"price_cents" json:"price_cents"`
	IsTrialAvailable bool                `db:"is_trial_available" json:"is_trial_available"`
	Status           Status              `db:"status" json:"status"`
	CreatedAt        time.Time           `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time           `db:"updated_at" json:"updated_at"`
}

func (c *Class) Window() schedule.Window {
	return schedule.Window{Start: c.StartTime, End: c.EndTime}
}

// Occurrence is one concrete date of a class with its seat usage.
type Occurrence struct {
	ClassID   int    `json:"class_id"`
	Date      string `json:"date" example:"2025-03-08"`
	Weekday   string `json:"weekday" example:"суббота"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Confirmed int    `json:"confirmed"`
	Remaining int    `json:"remaining"`
	IsFull    bool   `json:"is_full"`
}

type ListFilter struct {
	CoachID    *int
	ActiveOnly bool
}

type CreateClassRequest struct {
	Name             string   `json:"name" validate:"required,min=2,max=200"`
	Description      string   `json:"description" validate:"max=2000"`
	Weekdays         []string `json:"weekdays" validate:"required,min=1,max=7"`
	StartTime        string   `json:"start_time" validate:"required"`
	EndTime          string   `json:"end_time" validate:"required"`
	AgeMin           int      `json:"age_min" validate:"gte=0,lte=100"`
	AgeMax           int      `json:"age_max" validate:"gte=0,lte=100"`
	MaxCapacity      int      `json:"max_capacity" validate:"required,gt=0"`
	PriceCents       int64    `json:"price_cents" validate:"gte=0"`
	IsTrialAvailable bool     `json:"is_trial_available"`
}

// UpdateClassRequest changes only the fields that are present.
type UpdateClassRequest struct {
	Name             *string  `json:"name" validate:"omitempty,min=2,max=200"`
	Description      *string  `json:"description" validate:"omitempty,max=2000"`
	Weekdays         []string `json:"weekdays" validate:"omitempty,min=1,max=7"`
	StartTime        *string  `json:"start_time"`
	EndTime          *string  `json:"end_time"`
	AgeMin           *int     `json:"age_min" validate:"omitempty,gte=0,lte=100"`
	AgeMax           *int     `json:"age_max" validate:"omitempty,gte=0,lte=100"`
	MaxCapacity      *int     `json:"max_capacity" validate:"omitempty,gt=0"`
	PriceCents       *int64   `json:"price_cents" validate:"omitempty,gte=0"`
	IsTrialAvailable *bool    `json:"is_trial_available"`
}
