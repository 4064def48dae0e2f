// Package family manages parent-athlete links. A parent asks for a link,
// the athlete confirms it, and only confirmed active links let the parent
// act for the athlete.
package family

import (
	"context"
	"errors"
	"fmt"

	"github.com/w4xxwrld/aiga-connect-sub000/internal/apperr"
	"github.com/w4xxwrld/aiga-connect-sub000/internal/auth"
	"github.com/w4xxwrld/aiga-connect-sub000/internal/logger"
	"github.com/w4xxwrld/aiga-connect-sub000/internal/user"
)

var (
	ErrLinkNotFound  = fmt.Errorf("%w: parent-child link", apperr.ErrEntityNotFound)
	ErrNotAnAthlete  = fmt.Errorf("%w: linked user must be an athlete", apperr.ErrInvalidInput)
	ErrAthleteAbsent = fmt.Errorf("%w: athlete", apperr.ErrEntityNotFound)
)

// UserFinder is the part of the user repository linking needs.
type UserFinder interface {
	FindByID(ctx context.Context, id int) (*user.User, error)
}

type Service interface {
	Link(ctx context.Context, actor auth.Actor, req CreateLinkRequest) (*Link, error)
	List(ctx context.Context, actor auth.Actor) ([]Link, error)
	Unlink(ctx context.Context, actor auth.Actor, athleteID int) error
	PendingRequests(ctx context.Context, actor auth.Actor) ([]Link, error)
	Confirm(ctx context.Context, actor auth.Actor, linkID int) (*Link, error)
	Reject(ctx context.Context, actor auth.Actor, linkID int) error
	IsLinked(ctx context.Context, parentID, athleteID int) (bool, error)
	AthleteIDs(ctx context.Context, parentID int) ([]int, error)
}

type service struct {
	repo  Repository
	users UserFinder
}

func NewService(repo Repository, users UserFinder) Service {
	return &service{repo: repo, users: users}
}

func (s *service) Link(ctx context.Context, actor auth.Actor, req CreateLinkRequest) (*Link, error) {
	if !actor.Is(auth.RoleParent) {
		return nil, apperr.ErrUnauthorized
	}
	rel := Relationship(req.Relationship)
	if !rel.Valid() {
		return nil, fmt.Errorf("%w: relationship %q", apperr.ErrInvalidInput, req.Relationship)
	}

	athlete, err := s.users.FindByID(ctx, req.AthleteID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, ErrAthleteAbsent
		}
		return nil, err
	}
	if athlete.Role != auth.RoleAthlete {
		return nil, ErrNotAnAthlete
	}

	link, err := s.repo.Upsert(ctx, actor.ID, athlete.ID, rel)
	if err != nil {
		return nil, err
	}
	link.AthleteName = athlete.Name
	if !link.Confirmed() {
		logger.WithContext(ctx).Info("family link requested",
			"link_id", link.ID, "parent_id", link.ParentID, "athlete_id", link.AthleteID)
	}
	return link, nil
}

func (s *service) List(ctx context.Context, actor auth.Actor) ([]Link, error) {
	if !actor.Is(auth.RoleParent) {
		return nil, apperr.ErrUnauthorized
	}
	return s.repo.ListByParent(ctx, actor.ID)
}

func (s *service) Unlink(ctx context.Context, actor auth.Actor, athleteID int) error {
	if !actor.Is(auth.RoleParent) {
		return apperr.ErrUnauthorized
	}
	return s.repo.Deactivate(ctx, actor.ID, athleteID)
}

func (s *service) PendingRequests(ctx context.Context, actor auth.Actor) ([]Link, error) {
	if !actor.Is(auth.RoleAthlete) {
		return nil, apperr.ErrUnauthorized
	}
	return s.repo.ListPendingForAthlete(ctx, actor.ID)
}

// Confirm is done by the athlete the link points at. Confirming an already
// confirmed link returns it unchanged.
func (s *service) Confirm(ctx context.Context, actor auth.Actor, linkID int) (*Link, error) {
	link, err := s.addressedTo(ctx, actor, linkID)
	if err != nil {
		return nil, err
	}
	if link.Confirmed() {
		return link, nil
	}

	confirmed, err := s.repo.Confirm(ctx, link.ID)
	if err != nil {
		return nil, err
	}
	logger.WithContext(ctx).Info("family link confirmed",
		"link_id", confirmed.ID, "parent_id", confirmed.ParentID, "athlete_id", confirmed.AthleteID)
	return confirmed, nil
}

// Reject lets the athlete turn down a request or withdraw a confirmed link.
func (s *service) Reject(ctx context.Context, actor auth.Actor, linkID int) error {
	link, err := s.addressedTo(ctx, actor, linkID)
	if err != nil {
		return err
	}
	return s.repo.Deactivate(ctx, link.ParentID, link.AthleteID)
}

func (s *service) addressedTo(ctx context.Context, actor auth.Actor, linkID int) (*Link, error) {
	if !actor.Is(auth.RoleAthlete) {
		return nil, apperr.ErrUnauthorized
	}
	link, err := s.repo.GetByID(ctx, linkID)
	if err != nil {
		return nil, err
	}
	if link.AthleteID != actor.ID {
		return nil, apperr.ErrUnauthorized
	}
	if !link.IsActive {
		return nil, ErrLinkNotFound
	}
	return link, nil
}

func (s *service) IsLinked(ctx context.Context, parentID, athleteID int) (bool, error) {
	return s.repo.IsLinked(ctx, parentID, athleteID)
}

func (s *service) AthleteIDs(ctx context.Context, parentID int) ([]int, error) {
	return s.repo.ConfirmedAthleteIDs(ctx, parentID)
}
