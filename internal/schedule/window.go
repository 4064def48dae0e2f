package schedule

import (
	"fmt"
	"strings"
	"time"
)

// ParseClock parses HH:MM (or HH:MM:SS as returned by Postgres TIME) into
// minutes since midnight.
func ParseClock(s string) (int, error) {
	s = strings.TrimSpace(s)
	layout := "15:04"
	if strings.Count(s, ":") == 2 {
		layout = "15:04:05"
	}
	t, err := time.Parse(layout, s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeSpan, s)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// DurationMinutes returns the minutes between start and end on the same
// day. Overnight spans are rejected.
func DurationMinutes(start, end string) (int, error) {
	s, err := ParseClock(start)
	if err != nil {
		return 0, err
	}
	e, err := ParseClock(end)
	if err != nil {
		return 0, err
	}
	if e <= s {
		return 0, fmt.Errorf("%w: %s-%s does not end after it starts", ErrInvalidTimeSpan, start, end)
	}
	return e - s, nil
}

// Window is a same-day time range.
type Window struct {
	Start string `json:"start" db:"start"`
	End   string `json:"end" db:"end"`
}

func (w Window) Validate() error {
	_, err := DurationMinutes(w.Start, w.End)
	return err
}

// Overlaps reports whether two valid windows share any minute.
func (w Window) Overlaps(o Window) bool {
	ws, err1 := ParseClock(w.Start)
	we, err2 := ParseClock(w.End)
	os, err3 := ParseClock(o.Start)
	oe, err4 := ParseClock(o.End)
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
		return false
	}
	return ws < oe && os < we
}
