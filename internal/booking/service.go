// Package booking runs the class booking lifecycle: creation against a
// class occurrence, coach approval under the seat limit, cancellation and
// completion.
package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/w4xxwrld/aiga-connect-sub000/internal/apperr"
	"github.com/w4xxwrld/aiga-connect-sub000/internal/auth"
	"github.com/w4xxwrld/aiga-connect-sub000/internal/capacity"
	"github.com/w4xxwrld/aiga-connect-sub000/internal/class"
	"github.com/w4xxwrld/aiga-connect-sub000/internal/email"
	"github.com/w4xxwrld/aiga-connect-sub000/internal/logger"
	"github.com/w4xxwrld/aiga-connect-sub000/internal/metrics"
	"github.com/w4xxwrld/aiga-connect-sub000/internal/policy"
	"github.com/w4xxwrld/aiga-connect-sub000/internal/schedule"
	"github.com/w4xxwrld/aiga-connect-sub000/internal/user"
)

type ClassFinder interface {
	GetByID(ctx context.Context, id int) (*class.Class, error)
}

type LinkChecker interface {
	IsLinked(ctx context.Context, parentID, athleteID int) (bool, error)
	AthleteIDs(ctx context.Context, parentID int) ([]int, error)
}

type UserFinder interface {
	FindByID(ctx context.Context, id int) (*user.User, error)
}

type Notifier interface {
	SendBookingStatus(ctx context.Context, to, name string, n email.StatusNotice) error
}

type Service interface {
	CreateBooking(ctx context.Context, actor auth.Actor, req CreateBookingRequest) (*Booking, error)
	GetBooking(ctx context.Context, actor auth.Actor, id int) (*Booking, error)
	ApproveBooking(ctx context.Context, actor auth.Actor, id int) (*Booking, error)
	DeclineBooking(ctx context.Context, actor auth.Actor, id int, reason string) (*Booking, error)
	CancelBooking(ctx context.Context, actor auth.Actor, id int, reason string) (*Booking, error)
	CompleteBooking(ctx context.Context, actor auth.Actor, id int) (*Booking, error)
	ListBookingsForActor(ctx context.Context, actor auth.Actor) ([]Booking, error)
	Roster(ctx context.Context, actor auth.Actor, classID int, date string) ([]RosterEntry, error)
}

type service struct {
	repo     Repository
	classes  ClassFinder
	links    LinkChecker
	users    UserFinder
	notifier Notifier
	calc     schedule.Calculator
	now      func() time.Time
}

// NewService wires the booking service. notifier may be nil.
func NewService(
	repo Repository,
	classes ClassFinder,
	links LinkChecker,
	users UserFinder,
	notifier Notifier,
	calc schedule.Calculator,
) Service {
	return &service{
		repo:     repo,
		classes:  classes,
		links:    links,
		users:    users,
		notifier: notifier,
		calc:     calc,
		now:      time.Now,
	}
}

func (s *service) CreateBooking(ctx context.Context, actor auth.Actor, req CreateBookingRequest) (*Booking, error) {
	b, err := s.create(ctx, actor, req)
	metrics.RecordBookingTransition("create", err)
	return b, err
}

func (s *service) create(ctx context.Context, actor auth.Actor, req CreateBookingRequest) (*Booking, error) {
	kind, err := ParseKind(req.Kind)
	if err != nil {
		return nil, err
	}

	if err := s.authorizeFor(ctx, actor, req.AthleteID); err != nil {
		return nil, err
	}

	c, err := s.classes.GetByID(ctx, req.ClassID)
	if err != nil {
		return nil, err
	}
	if c.Status != class.StatusActive {
		return nil, apperr.ErrClassNotActive
	}
	if kind == KindTrial && !c.IsTrialAvailable {
		return nil, fmt.Errorf("%w: class %q does not offer trial sessions", apperr.ErrInvalidBookingType, c.Name)
	}

	date, err := s.occurrenceDate(c, req.OccurrenceDate)
	if err != nil {
		return nil, err
	}

	dup, err := s.repo.HasActiveBooking(ctx, req.AthleteID, c.ID, date)
	if err != nil {
		return nil, err
	}
	if dup {
		return nil, apperr.ErrDuplicateBooking
	}

	b := &Booking{
		AthleteID:      req.AthleteID,
		ClassID:        c.ID,
		Kind:           kind,
		OccurrenceDate: date,
		Notes:          req.Notes,
	}
	if actor.Is(auth.RoleParent) {
		parentID := actor.ID
		b.ParentID = &parentID
	}
	switch kind {
	case KindRegular:
		b.AmountCents = c.PriceCents
	case KindTrial, KindMakeup:
		b.AmountCents = 0
	}

	created, err := s.repo.Create(ctx, b)
	if err != nil {
		return nil, err
	}

	logger.WithContext(ctx).Info("booking created",
		"booking_id", created.ID, "class_id", c.ID, "athlete_id", created.AthleteID,
		"date", day(created.OccurrenceDate), "kind", created.Kind)
	return created, nil
}

// authorizeFor applies the create rule: athletes book for themselves,
// parents for athletes they are actively linked to.
func (s *service) authorizeFor(ctx context.Context, actor auth.Actor, athleteID int) error {
	linked := false
	if actor.Is(auth.RoleParent) {
		var err error
		linked, err = s.links.IsLinked(ctx, actor.ID, athleteID)
		if err != nil {
			return err
		}
	}
	if !policy.CanActFor(actor, athleteID, linked) {
		return apperr.ErrUnauthorized
	}
	return nil
}

// occurrenceDate parses raw and checks it is a class day that has not
// already gone by under the configured same-day policy.
func (s *service) occurrenceDate(c *class.Class, raw string) (time.Time, error) {
	date, err := schedule.ParseDate(raw, s.calc.Location)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q is not a YYYY-MM-DD date", apperr.ErrInvalidDate, raw)
	}

	now := s.now()
	if s.calc.InPast(date, now) {
		return time.Time{}, fmt.Errorf("%w: %s is in the past", apperr.ErrInvalidDate, raw)
	}
	if !schedule.IsOccurrence(c.Weekdays, date) {
		return time.Time{}, fmt.Errorf("%w: %q does not meet on %s", apperr.ErrInvalidDate, c.Name, schedule.DisplayName(date.Weekday()))
	}

	next, err := s.calc.Next(c.Weekdays, c.StartTime, now)
	if err != nil {
		return time.Time{}, err
	}
	if date.Before(next) {
		return time.Time{}, fmt.Errorf("%w: today's session has already started", apperr.ErrInvalidDate)
	}
	return date, nil
}

func (s *service) GetBooking(ctx context.Context, actor auth.Actor, id int) (*Booking, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c, err := s.classes.GetByID(ctx, b.ClassID)
	if err != nil {
		return nil, err
	}

	if policy.CanBooking(actor, policy.ActionView, subjectOf(b, c)) {
		return b, nil
	}
	if actor.Is(auth.RoleParent) {
		linked, err := s.links.IsLinked(ctx, actor.ID, b.AthleteID)
		if err != nil {
			return nil, err
		}
		if linked {
			return b, nil
		}
	}
	return nil, apperr.ErrUnauthorized
}

func (s *service) ApproveBooking(ctx context.Context, actor auth.Actor, id int) (*Booking, error) {
	return s.transition(ctx, actor, id, EventApprove, "")
}

func (s *service) DeclineBooking(ctx context.Context, actor auth.Actor, id int, reason string) (*Booking, error) {
	return s.transition(ctx, actor, id, EventDecline, reason)
}

func (s *service) CancelBooking(ctx context.Context, actor auth.Actor, id int, reason string) (*Booking, error) {
	return s.transition(ctx, actor, id, EventCancel, reason)
}

// CompleteBooking is reserved for the system actor used by the sweep.
func (s *service) CompleteBooking(ctx context.Context, actor auth.Actor, id int) (*Booking, error) {
	return s.transition(ctx, actor, id, EventComplete, "")
}

func (s *service) transition(ctx context.Context, actor auth.Actor, id int, ev Event, reason string) (*Booking, error) {
	b, c, err := s.apply(ctx, actor, id, ev, reason)
	metrics.RecordBookingTransition(string(ev), err)
	if err != nil {
		if errors.Is(err, capacity.ErrCapacityExceeded) {
			metrics.RecordCapacityRejection()
		}
		return nil, err
	}
	if c != nil {
		s.notify(ctx, b, c)
	}
	return b, nil
}

// apply returns a nil class when nothing was written.
func (s *service) apply(ctx context.Context, actor auth.Actor, id int, ev Event, reason string) (*Booking, *class.Class, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	c, err := s.classes.GetByID(ctx, b.ClassID)
	if err != nil {
		return nil, nil, err
	}

	if !policy.CanBooking(actor, ev.Action(), subjectOf(b, c)) {
		return nil, nil, apperr.ErrUnauthorized
	}

	to, changed, err := Next(b.Status, ev)
	if err != nil {
		return nil, nil, err
	}
	if !changed {
		return b, nil, nil
	}

	var why *string
	if ev.RequiresReason() {
		r := strings.TrimSpace(reason)
		if r == "" {
			return nil, nil, apperr.ErrEmptyReason
		}
		why = &r
	}

	var updated *Booking
	switch ev {
	case EventApprove:
		if c.Status != class.StatusActive {
			return nil, nil, apperr.ErrClassNotActive
		}
		slot := capacity.Slot{ClassID: c.ID, Date: b.OccurrenceDate}
		updated, err = s.repo.ConfirmWithinCapacity(ctx, b.ID, slot, c.MaxCapacity)
	case EventDecline, EventCancel, EventComplete:
		updated, err = s.repo.Transition(ctx, b.ID, b.Status, to, why)
	}
	if err != nil {
		return nil, nil, err
	}

	logger.WithContext(ctx).Info("booking transitioned",
		"booking_id", b.ID, "event", ev, "from", b.Status, "to", updated.Status, "actor_id", actor.ID, "actor_role", actor.Role)
	return updated, c, nil
}

func (s *service) ListBookingsForActor(ctx context.Context, actor auth.Actor) ([]Booking, error) {
	switch actor.Role {
	case auth.RoleAthlete:
		return s.repo.ListByAthletes(ctx, []int{actor.ID})
	case auth.RoleParent:
		ids, err := s.links.AthleteIDs(ctx, actor.ID)
		if err != nil {
			return nil, err
		}
		return s.repo.ListByAthletes(ctx, ids)
	case auth.RoleCoach:
		return s.repo.ListByCoach(ctx, actor.ID)
	case auth.RoleSystem:
		return nil, apperr.ErrUnauthorized
	default:
		return nil, apperr.ErrUnauthorized
	}
}

func (s *service) Roster(ctx context.Context, actor auth.Actor, classID int, date string) ([]RosterEntry, error) {
	c, err := s.classes.GetByID(ctx, classID)
	if err != nil {
		return nil, err
	}
	if !actor.Is(auth.RoleCoach) || actor.ID != c.CoachID {
		return nil, apperr.ErrUnauthorized
	}

	d, err := schedule.ParseDate(date, s.calc.Location)
	if err != nil {
		return nil, fmt.Errorf("%w: %q is not a YYYY-MM-DD date", apperr.ErrInvalidDate, date)
	}
	return s.repo.ListByOccurrence(ctx, c.ID, d)
}

func subjectOf(b *Booking, c *class.Class) policy.BookingSubject {
	return policy.BookingSubject{
		AthleteID:    b.AthleteID,
		ParentID:     b.ParentID,
		ClassCoachID: c.CoachID,
	}
}

// notify is best effort; a failed enqueue never fails the transition.
func (s *service) notify(ctx context.Context, b *Booking, c *class.Class) {
	if s.notifier == nil || s.users == nil {
		return
	}

	notice := email.StatusNotice{
		What:   c.Name,
		When:   b.OccurrenceDate,
		Status: string(b.Status),
	}
	if b.CancellationReason != nil {
		notice.Reason = *b.CancellationReason
	}

	recipients := []int{b.AthleteID}
	if b.ParentID != nil {
		recipients = append(recipients, *b.ParentID)
	}
	for _, id := range recipients {
		u, err := s.users.FindByID(ctx, id)
		if err != nil {
			logger.WithContext(ctx).Warn("booking notification skipped", "booking_id", b.ID, "user_id", id, "error", err)
			continue
		}
		if err := s.notifier.SendBookingStatus(ctx, u.Email, u.Name, notice); err != nil {
			logger.WithContext(ctx).Warn("booking notification failed", "booking_id", b.ID, "user_id", id, "error", err)
		}
	}
}
