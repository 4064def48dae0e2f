// Package training handles one-on-one session requests between an athlete
// and a coach: creation, acceptance with a schedule, decline and completion.
package training

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/w4xxwrld/aiga-connect-sub000/internal/apperr"
	"github.com/w4xxwrld/aiga-connect-sub000/internal/auth"
	"github.com/w4xxwrld/aiga-connect-sub000/internal/email"
	"github.com/w4xxwrld/aiga-connect-sub000/internal/logger"
	"github.com/w4xxwrld/aiga-connect-sub000/internal/metrics"
	"github.com/w4xxwrld/aiga-connect-sub000/internal/policy"
	"github.com/w4xxwrld/aiga-connect-sub000/internal/schedule"
	"github.com/w4xxwrld/aiga-connect-sub000/internal/user"
)

var (
	ErrCoachAbsent = fmt.Errorf("%w: coach", apperr.ErrEntityNotFound)
	ErrNotACoach   = fmt.Errorf("%w: requested user is not a coach", apperr.ErrInvalidInput)
)

type LinkChecker interface {
	IsLinked(ctx context.Context, parentID, athleteID int) (bool, error)
	AthleteIDs(ctx context.Context, parentID int) ([]int, error)
}

type UserFinder interface {
	FindByID(ctx context.Context, id int) (*user.User, error)
}

type Notifier interface {
	SendTrainingStatus(ctx context.Context, to, name string, n email.StatusNotice) error
}

type Service interface {
	CreateRequest(ctx context.Context, actor auth.Actor, req CreateTrainingRequest) (*Request, error)
	GetRequest(ctx context.Context, actor auth.Actor, id int) (*Request, error)
	AcceptRequest(ctx context.Context, actor auth.Actor, id int, req AcceptTrainingRequest) (*Request, error)
	DeclineRequest(ctx context.Context, actor auth.Actor, id int, reason string) (*Request, error)
	CompleteRequest(ctx context.Context, actor auth.Actor, id int) (*Request, error)
	ListRequestsForActor(ctx context.Context, actor auth.Actor) ([]Request, error)
}

type service struct {
	repo     Repository
	links    LinkChecker
	users    UserFinder
	notifier Notifier
	calc     schedule.Calculator
	now      func() time.Time
}

// NewService wires the training service. notifier may be nil.
func NewService(repo Repository, links LinkChecker, users UserFinder, notifier Notifier, calc schedule.Calculator) Service {
	return &service{
		repo:     repo,
		links:    links,
		users:    users,
		notifier: notifier,
		calc:     calc,
		now:      time.Now,
	}
}

func (s *service) CreateRequest(ctx context.Context, actor auth.Actor, req CreateTrainingRequest) (*Request, error) {
	r, err := s.create(ctx, actor, req)
	metrics.RecordTrainingTransition("create", err)
	return r, err
}

func (s *service) create(ctx context.Context, actor auth.Actor, req CreateTrainingRequest) (*Request, error) {
	linked := false
	if actor.Is(auth.RoleParent) {
		var err error
		linked, err = s.links.IsLinked(ctx, actor.ID, req.AthleteID)
		if err != nil {
			return nil, err
		}
	}
	if !policy.CanActFor(actor, req.AthleteID, linked) {
		return nil, apperr.ErrUnauthorized
	}

	coach, err := s.users.FindByID(ctx, req.CoachID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, ErrCoachAbsent
		}
		return nil, err
	}
	if coach.Role != auth.RoleCoach {
		return nil, ErrNotACoach
	}

	date, err := s.futureDate(req.RequestedDate)
	if err != nil {
		return nil, err
	}

	if (req.PreferredStart == nil) != (req.PreferredEnd == nil) {
		return nil, fmt.Errorf("%w: preferred window needs both start and end", apperr.ErrInvalidInput)
	}
	r := &Request{
		AthleteID:      req.AthleteID,
		CoachID:        coach.ID,
		RequestedDate:  date,
		PreferredStart: req.PreferredStart,
		PreferredEnd:   req.PreferredEnd,
		AthleteNotes:   req.Notes,
	}
	if w := r.PreferredWindow(); w != nil {
		if err := w.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", apperr.ErrInvalidInput, err)
		}
	}
	if actor.Is(auth.RoleParent) {
		parentID := actor.ID
		r.ParentID = &parentID
	}

	created, err := s.repo.Create(ctx, r)
	if err != nil {
		return nil, err
	}

	logger.WithContext(ctx).Info("training request created",
		"request_id", created.ID, "coach_id", created.CoachID, "athlete_id", created.AthleteID,
		"date", day(created.RequestedDate))
	return created, nil
}

// futureDate parses raw and rejects days before today.
func (s *service) futureDate(raw string) (time.Time, error) {
	date, err := schedule.ParseDate(raw, s.calc.Location)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q is not a YYYY-MM-DD date", apperr.ErrInvalidDate, raw)
	}
	if s.calc.InPast(date, s.now()) {
		return time.Time{}, fmt.Errorf("%w: %s is in the past", apperr.ErrInvalidDate, raw)
	}
	return date, nil
}

func (s *service) GetRequest(ctx context.Context, actor auth.Actor, id int) (*Request, error) {
	r, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if policy.CanTraining(actor, policy.ActionView, subjectOf(r)) {
		return r, nil
	}
	if actor.Is(auth.RoleParent) {
		linked, err := s.links.IsLinked(ctx, actor.ID, r.AthleteID)
		if err != nil {
			return nil, err
		}
		if linked {
			return r, nil
		}
	}
	return nil, apperr.ErrUnauthorized
}

func (s *service) AcceptRequest(ctx context.Context, actor auth.Actor, id int, req AcceptTrainingRequest) (*Request, error) {
	return s.transition(ctx, actor, id, EventAccept, func(r *Request) (*Request, error) {
		sched, err := s.resolveSchedule(r, req)
		if err != nil {
			return nil, err
		}
		return s.repo.AcceptIfFree(ctx, r.ID, r.CoachID, sched)
	})
}

func (s *service) DeclineRequest(ctx context.Context, actor auth.Actor, id int, reason string) (*Request, error) {
	return s.transition(ctx, actor, id, EventDecline, func(r *Request) (*Request, error) {
		why := strings.TrimSpace(reason)
		if why == "" {
			return nil, apperr.ErrEmptyReason
		}
		return s.repo.Transition(ctx, r.ID, r.Status, StatusDeclined, &why)
	})
}

func (s *service) CompleteRequest(ctx context.Context, actor auth.Actor, id int) (*Request, error) {
	return s.transition(ctx, actor, id, EventComplete, func(r *Request) (*Request, error) {
		return s.repo.Transition(ctx, r.ID, r.Status, StatusCompleted, nil)
	})
}

// write persists an already authorized and legal transition.
type write func(r *Request) (*Request, error)

func (s *service) transition(ctx context.Context, actor auth.Actor, id int, ev Event, fn write) (*Request, error) {
	r, changed, err := s.apply(ctx, actor, id, ev, fn)
	metrics.RecordTrainingTransition(string(ev), err)
	if err != nil {
		return nil, err
	}
	if changed && ev != EventComplete {
		s.notify(ctx, r)
	}
	return r, nil
}

func (s *service) apply(ctx context.Context, actor auth.Actor, id int, ev Event, fn write) (*Request, bool, error) {
	r, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, false, err
	}
	if !policy.CanTraining(actor, ev.Action(), subjectOf(r)) {
		return nil, false, apperr.ErrUnauthorized
	}

	_, changed, err := Next(r.Status, ev)
	if err != nil {
		return nil, false, err
	}
	if !changed {
		return r, false, nil
	}

	updated, err := fn(r)
	if err != nil {
		return nil, false, err
	}

	logger.WithContext(ctx).Info("training request transitioned",
		"request_id", r.ID, "event", ev, "from", r.Status, "to", updated.Status, "actor_id", actor.ID)
	return updated, true, nil
}

// resolveSchedule fills what the coach left out from the athlete's request.
func (s *service) resolveSchedule(r *Request, req AcceptTrainingRequest) (Schedule, error) {
	sched := Schedule{
		Date:        r.RequestedDate,
		AmountCents: req.AmountCents,
		IsPaid:      req.IsPaid,
		CoachNotes:  req.CoachNotes,
	}
	if req.ScheduledDate != nil {
		date, err := s.futureDate(*req.ScheduledDate)
		if err != nil {
			return Schedule{}, err
		}
		sched.Date = date
	} else if s.calc.InPast(sched.Date, s.now()) {
		return Schedule{}, fmt.Errorf("%w: requested date %s has passed, pick a new one", apperr.ErrInvalidDate, day(sched.Date))
	}

	w := window(req.ScheduledStart, req.ScheduledEnd)
	if w == nil && req.ScheduledStart == nil && req.ScheduledEnd == nil {
		w = r.PreferredWindow()
	}
	if w == nil {
		return Schedule{}, apperr.ErrMissingSchedule
	}
	if err := w.Validate(); err != nil {
		return Schedule{}, fmt.Errorf("%w: %v", apperr.ErrInvalidInput, err)
	}
	sched.Window = *w
	return sched, nil
}

func (s *service) ListRequestsForActor(ctx context.Context, actor auth.Actor) ([]Request, error) {
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

func subjectOf(r *Request) policy.TrainingSubject {
	return policy.TrainingSubject{
		AthleteID: r.AthleteID,
		CoachID:   r.CoachID,
		ParentID:  r.ParentID,
	}
}

// notify is best effort; a failed enqueue never fails the transition.
func (s *service) notify(ctx context.Context, r *Request) {
	if s.notifier == nil || s.users == nil {
		return
	}

	coachName := "тренер"
	if coach, err := s.users.FindByID(ctx, r.CoachID); err == nil {
		coachName = coach.Name
	}
	notice := email.StatusNotice{
		What:   "Индивидуальная тренировка: " + coachName,
		When:   r.RequestedDate,
		Status: string(r.Status),
	}
	if r.ScheduledDate != nil {
		notice.When = *r.ScheduledDate
	}
	if r.DeclineReason != nil {
		notice.Reason = *r.DeclineReason
	}

	recipients := []int{r.AthleteID}
	if r.ParentID != nil {
		recipients = append(recipients, *r.ParentID)
	}
	for _, id := range recipients {
		u, err := s.users.FindByID(ctx, id)
		if err != nil {
			logger.WithContext(ctx).Warn("training notification skipped", "request_id", r.ID, "user_id", id, "error", err)
			continue
		}
		if err := s.notifier.SendTrainingStatus(ctx, u.Email, u.Name, notice); err != nil {
			logger.WithContext(ctx).Warn("training notification failed", "request_id", r.ID, "user_id", id, "error", err)
		}
	}
}
