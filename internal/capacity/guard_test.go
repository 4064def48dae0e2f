package capacity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAdmit(t *testing.T) {
	tests := []struct {
		name      string
		confirmed int
		max       int
		wantErr   error
	}{
		{"empty class", 0, 2, nil},
		{"one seat left", 1, 2, nil},
		{"full", 2, 2, ErrCapacityExceeded},
		{"over full", 3, 2, ErrCapacityExceeded},
		{"zero capacity", 0, 0, ErrCapacityExceeded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantErr, Admit(tt.confirmed, tt.max))
		})
	}
}

func TestRemaining(t *testing.T) {
	assert.Equal(t, 2, Remaining(0, 2))
	assert.Equal(t, 0, Remaining(2, 2))
	assert.Equal(t, 0, Remaining(5, 2))
}

func TestSlot_LockKeys(t *testing.T) {
	almaty := time.FixedZone("ALMT", 5*3600)

	a := Slot{ClassID: 7, Date: time.Date(2026, 3, 7, 0, 0, 0, 0, time.UTC)}
	b := Slot{ClassID: 7, Date: time.Date(2026, 3, 7, 23, 30, 0, 0, almaty)}
	c := Slot{ClassID: 7, Date: time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)}

	ka1, ka2 := a.LockKeys()
	kb1, kb2 := b.LockKeys()
	_, kc2 := c.LockKeys()

	assert.Equal(t, int32(7), ka1)
	assert.Equal(t, ka1, kb1)
	assert.Equal(t, ka2, kb2, "same calendar date in any zone shares a lock")
	assert.Equal(t, ka2+7, kc2)
}
