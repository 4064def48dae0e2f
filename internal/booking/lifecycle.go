package booking

import (
	"fmt"

	"github.com/w4xxwrld/aiga-connect-sub000/internal/apperr"
	"github.com/w4xxwrld/aiga-connect-sub000/internal/policy"
)

type Event string

const (
	EventApprove  Event = "approve"
	EventDecline  Event = "decline"
	EventCancel   Event = "cancel"
	EventComplete Event = "complete"
)

func (e Event) Action() policy.Action {
	switch e {
	case EventApprove:
		return policy.ActionApprove
	case EventDecline:
		return policy.ActionDecline
	case EventCancel:
		return policy.ActionCancel
	case EventComplete:
		return policy.ActionComplete
	default:
		return ""
	}
}

func (e Event) RequiresReason() bool {
	switch e {
	case EventDecline, EventCancel:
		return true
	case EventApprove, EventComplete:
		return false
	default:
		return false
	}
}

// Next returns the status a booking in from moves to on ev. changed is
// false only for completing an already completed booking, which is a no-op.
func Next(from Status, ev Event) (to Status, changed bool, err error) {
	switch from {
	case StatusPending:
		switch ev {
		case EventApprove:
			return StatusConfirmed, true, nil
		case EventDecline, EventCancel:
			return StatusCancelled, true, nil
		case EventComplete:
			return from, false, invalid(from, ev)
		}
	case StatusConfirmed:
		switch ev {
		case EventCancel:
			return StatusCancelled, true, nil
		case EventComplete:
			return StatusCompleted, true, nil
		case EventApprove, EventDecline:
			return from, false, invalid(from, ev)
		}
	case StatusCompleted:
		switch ev {
		case EventComplete:
			return from, false, nil
		case EventApprove, EventDecline, EventCancel:
			return from, false, invalid(from, ev)
		}
	case StatusCancelled:
		switch ev {
		case EventApprove, EventDecline, EventCancel, EventComplete:
			return from, false, invalid(from, ev)
		}
	}
	return from, false, invalid(from, ev)
}

func invalid(from Status, ev Event) error {
	return fmt.Errorf("%w: cannot %s a %s booking", apperr.ErrInvalidTransition, ev, from)
}
