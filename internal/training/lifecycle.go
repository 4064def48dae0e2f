package training

import (
	"fmt"

	"github.com/w4xxwrld/aiga-connect-sub000/internal/apperr"
	"github.com/w4xxwrld/aiga-connect-sub000/internal/policy"
)

type Event string

const (
	EventAccept   Event = "accept"
	EventDecline  Event = "decline"
	EventComplete Event = "complete"
)

func (e Event) Action() policy.Action {
	switch e {
	case EventAccept:
		return policy.ActionAccept
	case EventDecline:
		return policy.ActionDecline
	case EventComplete:
		return policy.ActionComplete
	default:
		return ""
	}
}

// Next returns the state ev leads to from from. changed is false only for
// complete on an already completed request.
func Next(from Status, ev Event) (Status, bool, error) {
	switch from {
	case StatusPending:
		switch ev {
		case EventAccept:
			return StatusAccepted, true, nil
		case EventDecline:
			return StatusDeclined, true, nil
		case EventComplete:
			return from, false, invalid(from, ev)
		default:
			return from, false, invalid(from, ev)
		}
	case StatusAccepted:
		switch ev {
		case EventComplete:
			return StatusCompleted, true, nil
		case EventAccept, EventDecline:
			return from, false, invalid(from, ev)
		default:
			return from, false, invalid(from, ev)
		}
	case StatusCompleted:
		if ev == EventComplete {
			return StatusCompleted, false, nil
		}
		return from, false, invalid(from, ev)
	case StatusDeclined:
		return from, false, invalid(from, ev)
	default:
		return from, false, invalid(from, ev)
	}
}

func invalid(from Status, ev Event) error {
	return fmt.Errorf("%w: cannot %s a %s training request", apperr.ErrInvalidTransition, ev, from)
}
