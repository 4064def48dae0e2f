// Package class manages recurring class templates and resolves their
// concrete occurrences.
package class

import (
	"context"
	"fmt"
	"time"

	"github.com/w4xxwrld/aiga-connect-sub000/internal/apperr"
	"github.com/w4xxwrld/aiga-connect-sub000/internal/auth"
	"github.com/w4xxwrld/aiga-connect-sub000/internal/capacity"
	"github.com/w4xxwrld/aiga-connect-sub000/internal/schedule"
)

const maxUpcoming = 12

// SeatCounter reports how many confirmed bookings an occurrence holds.
type SeatCounter interface {
	CountConfirmed(ctx context.Context, classID int, date time.Time) (int, error)
}

type Service interface {
	Create(ctx context.Context, actor auth.Actor, req CreateClassRequest) (*Class, error)
	Get(ctx context.Context, id int) (*Class, error)
	List(ctx context.Context, filter ListFilter) ([]Class, error)
	Update(ctx context.Context, actor auth.Actor, id int, req UpdateClassRequest) (*Class, error)
	Close(ctx context.Context, actor auth.Actor, id int, to Status) (*Class, error)
	NextOccurrence(ctx context.Context, id int) (*Occurrence, error)
	Upcoming(ctx context.Context, id int, count int) ([]Occurrence, error)
}

type service struct {
	repo  Repository
	seats SeatCounter
	calc  schedule.Calculator
	now   func() time.Time
}

func NewService(repo Repository, seats SeatCounter, calc schedule.Calculator) Service {
	return &service{
		repo:  repo,
		seats: seats,
		calc:  calc,
		now:   time.Now,
	}
}

func (s *service) Create(ctx context.Context, actor auth.Actor, req CreateClassRequest) (*Class, error) {
	if !actor.Is(auth.RoleCoach) {
		return nil, apperr.ErrUnauthorized
	}

	days, err := schedule.ParseWeekdays(req.Weekdays)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrInvalidInput, err)
	}

	c := &Class{
		Name:             req.Name,
		Description:      req.Description,
		CoachID:          actor.ID,
		Weekdays:         days,
		StartTime:        req.StartTime,
		EndTime:          req.EndTime,
		AgeMin:           req.AgeMin,
		AgeMax:           req.AgeMax,
		MaxCapacity:      req.MaxCapacity,
		PriceCents:       req.PriceCents,
		IsTrialAvailable: req.IsTrialAvailable,
	}
	if err := validate(c); err != nil {
		return nil, err
	}

	return s.repo.Create(ctx, c)
}

func (s *service) Get(ctx context.Context, id int) (*Class, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, filter ListFilter) ([]Class, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) Update(ctx context.Context, actor auth.Actor, id int, req UpdateClassRequest) (*Class, error) {
	c, err := s.ownedClass(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if c.Status != StatusActive {
		return nil, apperr.ErrClassNotActive
	}

	if req.Name != nil {
		c.Name = *req.Name
	}
	if req.Description != nil {
		c.Description = *req.Description
	}
	if req.Weekdays != nil {
		days, err := schedule.ParseWeekdays(req.Weekdays)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", apperr.ErrInvalidInput, err)
		}
		c.Weekdays = days
	}
	if req.StartTime != nil {
		c.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		c.EndTime = *req.EndTime
	}
	if req.AgeMin != nil {
		c.AgeMin = *req.AgeMin
	}
	if req.AgeMax != nil {
		c.AgeMax = *req.AgeMax
	}
	if req.MaxCapacity != nil {
		c.MaxCapacity = *req.MaxCapacity
	}
	if req.PriceCents != nil {
		c.PriceCents = *req.PriceCents
	}
	if req.IsTrialAvailable != nil {
		c.IsTrialAvailable = *req.IsTrialAvailable
	}
	if err := validate(c); err != nil {
		return nil, err
	}

	return s.repo.Update(ctx, c)
}

// Close soft-deletes a class by moving it to cancelled or completed.
// Existing bookings keep pointing at it.
func (s *service) Close(ctx context.Context, actor auth.Actor, id int, to Status) (*Class, error) {
	switch to {
	case StatusCancelled, StatusCompleted:
	case StatusActive:
		return nil, apperr.ErrInvalidTransition
	default:
		return nil, fmt.Errorf("%w: class status %q", apperr.ErrInvalidInput, to)
	}

	c, err := s.ownedClass(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if c.Status != StatusActive {
		return nil, apperr.ErrInvalidTransition
	}

	ok, err := s.repo.SetStatus(ctx, id, StatusActive, to)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.ErrConflictingUpdate
	}

	c.Status = to
	return c, nil
}

func (s *service) NextOccurrence(ctx context.Context, id int) (*Occurrence, error) {
	c, err := s.activeClass(ctx, id)
	if err != nil {
		return nil, err
	}

	date, err := s.calc.Next(c.Weekdays, c.StartTime, s.now())
	if err != nil {
		return nil, err
	}
	return s.occurrence(ctx, c, date)
}

func (s *service) Upcoming(ctx context.Context, id int, count int) ([]Occurrence, error) {
	if count < 1 {
		count = 1
	}
	if count > maxUpcoming {
		count = maxUpcoming
	}

	c, err := s.activeClass(ctx, id)
	if err != nil {
		return nil, err
	}

	first, err := s.calc.Next(c.Weekdays, c.StartTime, s.now())
	if err != nil {
		return nil, err
	}
	dates, err := schedule.Occurrences(c.Weekdays, first, count)
	if err != nil {
		return nil, err
	}

	out := make([]Occurrence, 0, len(dates))
	for _, d := range dates {
		occ, err := s.occurrence(ctx, c, d)
		if err != nil {
			return nil, err
		}
		out = append(out, *occ)
	}
	return out, nil
}

func (s *service) occurrence(ctx context.Context, c *Class, date time.Time) (*Occurrence, error) {
	confirmed, err := s.seats.CountConfirmed(ctx, c.ID, date)
	if err != nil {
		return nil, err
	}
	remaining := capacity.Remaining(confirmed, c.MaxCapacity)
	return &Occurrence{
		ClassID:   c.ID,
		Date:      date.Format(schedule.DateLayout),
		Weekday:   schedule.DisplayName(date.Weekday()),
		StartTime: c.StartTime,
		EndTime:   c.EndTime,
		Confirmed: confirmed,
		Remaining: remaining,
		IsFull:    remaining == 0,
	}, nil
}

func (s *service) activeClass(ctx context.Context, id int) (*Class, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.Status != StatusActive {
		return nil, apperr.ErrClassNotActive
	}
	return c, nil
}

func (s *service) ownedClass(ctx context.Context, actor auth.Actor, id int) (*Class, error) {
	if !actor.Is(auth.RoleCoach) {
		return nil, apperr.ErrUnauthorized
	}
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.CoachID != actor.ID {
		return nil, apperr.ErrUnauthorized
	}
	return c, nil
}

func validate(c *Class) error {
	if len(c.Weekdays) == 0 {
		return fmt.Errorf("%w: %v", apperr.ErrInvalidInput, schedule.ErrNoWeekdays)
	}
	if err := c.Window().Validate(); err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrInvalidInput, err)
	}
	if c.AgeMax > 0 && c.AgeMin > c.AgeMax {
		return fmt.Errorf("%w: age_min is greater than age_max", apperr.ErrInvalidInput)
	}
	if c.MaxCapacity <= 0 {
		return fmt.Errorf("%w: max_capacity must be positive", apperr.ErrInvalidInput)
	}
	return nil
}
