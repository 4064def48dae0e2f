// Package policy decides which actor may trigger which lifecycle
// transition. Everything here is a pure function of its arguments.
package policy

import "github.com/w4xxwrld/aiga-connect-sub000/internal/auth"

type Action string

const (
	ActionCreate   Action = "create"
	ActionApprove  Action = "approve"
	ActionDecline  Action = "decline"
	ActionCancel   Action = "cancel"
	ActionComplete Action = "complete"
	ActionAccept   Action = "accept"
	ActionView     Action = "view"
)

// BookingSubject carries the ownership facts of a booking.
type BookingSubject struct {
	AthleteID    int
	ParentID     *int
	ClassCoachID int
}

// TrainingSubject carries the ownership facts of an individual training request.
type TrainingSubject struct {
	AthleteID int
	CoachID   int
	ParentID  *int
}

// CanActFor reports whether actor may create something on behalf of
// athleteID. linked says whether actor holds an active parent link to the
// athlete; it is ignored for other roles.
func CanActFor(actor auth.Actor, athleteID int, linked bool) bool {
	switch actor.Role {
	case auth.RoleAthlete:
		return actor.ID == athleteID
	case auth.RoleParent:
		return linked
	case auth.RoleCoach, auth.RoleSystem:
		return false
	default:
		return false
	}
}

// CanBooking reports whether actor may perform action on a booking.
func CanBooking(actor auth.Actor, action Action, s BookingSubject) bool {
	isOwnerCoach := actor.Role == auth.RoleCoach && actor.ID == s.ClassCoachID
	isAthlete := actor.Role == auth.RoleAthlete && actor.ID == s.AthleteID
	isBookingParent := actor.Role == auth.RoleParent && s.ParentID != nil && *s.ParentID == actor.ID

	switch action {
	case ActionApprove, ActionDecline:
		return isOwnerCoach
	case ActionCancel, ActionView:
		return isAthlete || isBookingParent || isOwnerCoach
	case ActionComplete:
		return actor.Role == auth.RoleSystem
	case ActionCreate, ActionAccept:
		return false
	default:
		return false
	}
}

// CanTraining reports whether actor may perform action on a training request.
func CanTraining(actor auth.Actor, action Action, s TrainingSubject) bool {
	isCoach := actor.Role == auth.RoleCoach && actor.ID == s.CoachID

	switch action {
	case ActionAccept, ActionDecline, ActionComplete:
		return isCoach
	case ActionView:
		isAthlete := actor.Role == auth.RoleAthlete && actor.ID == s.AthleteID
		isParent := actor.Role == auth.RoleParent && s.ParentID != nil && *s.ParentID == actor.ID
		return isCoach || isAthlete || isParent
	case ActionCreate, ActionApprove, ActionCancel:
		return false
	default:
		return false
	}
}
