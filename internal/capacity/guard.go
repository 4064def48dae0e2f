// Package capacity admits or rejects confirmations against a class's
// seat limit. Only confirmed bookings consume seats.
package capacity

import (
	"errors"
	"time"
)

var ErrCapacityExceeded = errors.New("class capacity exceeded")

// Slot identifies one class occurrence.
type Slot struct {
	ClassID int
	Date    time.Time
}

// Admit reports whether one more confirmation fits.
func Admit(confirmed, max int) error {
	if confirmed < max {
		return nil
	}
	return ErrCapacityExceeded
}

// Remaining returns the number of free seats, never negative.
func Remaining(confirmed, max int) int {
	if confirmed >= max {
		return 0
	}
	return max - confirmed
}

// LockKeys returns the two keys for pg_advisory_xact_lock(int4, int4):
// the class id and the occurrence date as days since the Unix epoch.
func (s Slot) LockKeys() (int32, int32) {
	y, m, d := s.Date.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400
	return int32(s.ClassID), int32(day)
}
