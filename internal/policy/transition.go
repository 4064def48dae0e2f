package policy

import "github.com/w4xxwrld/aiga-connect-sub000/internal/auth"

// Entity is either a BookingSubject or a TrainingSubject.
type Entity interface {
	isEntity()
}

func (BookingSubject) isEntity()  {}
func (TrainingSubject) isEntity() {}

// CanTransition answers the question in terms of states: may actor move
// entity from one status to another. Pairs that are not edges of the
// entity's lifecycle are never allowed.
func CanTransition(actor auth.Actor, entity Entity, from, to string) bool {
	switch e := entity.(type) {
	case BookingSubject:
		action, ok := bookingEdge(from, to)
		return ok && CanBooking(actor, action, e)
	case TrainingSubject:
		action, ok := trainingEdge(from, to)
		return ok && CanTraining(actor, action, e)
	default:
		return false
	}
}

func bookingEdge(from, to string) (Action, bool) {
	switch {
	case from == "pending" && to == "confirmed":
		return ActionApprove, true
	case from == "pending" && to == "cancelled":
		// decline and cancel share this edge; cancel is the wider rule
		return ActionCancel, true
	case from == "confirmed" && to == "cancelled":
		return ActionCancel, true
	case from == "confirmed" && to == "completed":
		return ActionComplete, true
	default:
		return "", false
	}
}

func trainingEdge(from, to string) (Action, bool) {
	switch {
	case from == "pending" && to == "accepted":
		return ActionAccept, true
	case from == "pending" && to == "declined":
		return ActionDecline, true
	case from == "accepted" && to == "completed":
		return ActionComplete, true
	default:
		return "", false
	}
}
