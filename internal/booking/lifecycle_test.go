package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/w4xxwrld/aiga-connect-sub000/internal/apperr"
	"github.com/w4xxwrld/aiga-connect-sub000/internal/auth"
	"github.com/w4xxwrld/aiga-connect-sub000/internal/policy"
)

var allEvents = []Event{EventApprove, EventDecline, EventCancel, EventComplete}

func TestNext_Edges(t *testing.T) {
	tests := []struct {
		from Status
		ev   Event
		want Status
	}{
		{StatusPending, EventApprove, StatusConfirmed},
		{StatusPending, EventDecline, StatusCancelled},
		{StatusPending, EventCancel, StatusCancelled},
		{StatusConfirmed, EventCancel, StatusCancelled},
		{StatusConfirmed, EventComplete, StatusCompleted},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"/"+string(tt.ev), func(t *testing.T) {
			to, changed, err := Next(tt.from, tt.ev)
			require.NoError(t, err)
			assert.True(t, changed)
			assert.Equal(t, tt.want, to)
		})
	}
}

func TestNext_IllegalFromLiveStates(t *testing.T) {
	for _, c := range []struct {
		from Status
		ev   Event
	}{
		{StatusPending, EventComplete},
		{StatusConfirmed, EventApprove},
		{StatusConfirmed, EventDecline},
	} {
		_, changed, err := Next(c.from, c.ev)
		assert.ErrorIs(t, err, apperr.ErrInvalidTransition, "%s/%s", c.from, c.ev)
		assert.False(t, changed)
	}
}

func TestNext_TerminalStates(t *testing.T) {
	for _, from := range []Status{StatusCancelled, StatusCompleted} {
		for _, ev := range allEvents {
			to, changed, err := Next(from, ev)
			assert.False(t, changed)
			assert.Equal(t, from, to)

			if from == StatusCompleted && ev == EventComplete {
				assert.NoError(t, err)
				continue
			}
			assert.ErrorIs(t, err, apperr.ErrInvalidTransition, "%s/%s", from, ev)
		}
	}
}

func TestNext_UnknownValues(t *testing.T) {
	_, _, err := Next(Status("archived"), EventCancel)
	assert.ErrorIs(t, err, apperr.ErrInvalidTransition)

	_, _, err = Next(StatusPending, Event("resurrect"))
	assert.ErrorIs(t, err, apperr.ErrInvalidTransition)
}

func TestEvent_RequiresReason(t *testing.T) {
	assert.True(t, EventDecline.RequiresReason())
	assert.True(t, EventCancel.RequiresReason())
	assert.False(t, EventApprove.RequiresReason())
	assert.False(t, EventComplete.RequiresReason())
}

// Every legal edge must also be an edge the policy knows about.
func TestNext_AgreesWithPolicyEdges(t *testing.T) {
	coach := auth.Actor{ID: 3, Role: auth.RoleCoach}
	subject := policy.BookingSubject{AthleteID: 7, ClassCoachID: 3}

	for _, from := range []Status{StatusPending, StatusConfirmed} {
		for _, ev := range allEvents {
			to, changed, err := Next(from, ev)
			if err != nil || !changed {
				continue
			}
			actor := coach
			if ev == EventComplete {
				actor = auth.SystemActor
			}
			assert.True(t, policy.CanTransition(actor, subject, string(from), string(to)), "%s -> %s", from, to)
		}
	}
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("")
	require.NoError(t, err)
	assert.Equal(t, KindRegular, k)

	k, err = ParseKind(" Trial ")
	require.NoError(t, err)
	assert.Equal(t, KindTrial, k)

	_, err = ParseKind("vip")
	assert.ErrorIs(t, err, apperr.ErrInvalidBookingType)
}

func TestStatus_Terminal(t *testing.T) {
	assert.False(t, StatusPending.Terminal())
	assert.False(t, StatusConfirmed.Terminal())
	assert.True(t, StatusCancelled.Terminal())
	assert.True(t, StatusCompleted.Terminal())
}
