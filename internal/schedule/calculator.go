// Package schedule turns recurring weekly class templates into concrete
// calendar occurrences.
package schedule

import (
	"fmt"
	"strings"
	"time"
)

// SameDayPolicy decides whether today still counts as the next occurrence
// once the class has started.
type SameDayPolicy int

const (
	// SameDayInclude picks today whenever today is a class day.
	SameDayInclude SameDayPolicy = iota
	// SameDaySkipStarted moves on to the following class day once today's
	// start time has passed.
	SameDaySkipStarted
)

func ParseSameDayPolicy(s string) (SameDayPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "include":
		return SameDayInclude, nil
	case "skip_started":
		return SameDaySkipStarted, nil
	default:
		return 0, fmt.Errorf("unknown same-day policy %q", s)
	}
}

// DateLayout is the wire format of calendar dates.
const DateLayout = "2006-01-02"

// ParseDate reads a YYYY-MM-DD date as midnight in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	return time.ParseInLocation(DateLayout, strings.TrimSpace(s), loc)
}

// DateOf truncates t to midnight in its own location.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// NextOccurrence returns the earliest date on or after ref's date that
// falls on one of days. A same-day match is returned even if the class has
// already started; use Calculator for the stricter policy.
func NextOccurrence(days WeekdaySet, ref time.Time) (time.Time, error) {
	if len(days) == 0 {
		return time.Time{}, ErrNoWeekdays
	}
	start := DateOf(ref)
	for i := 0; i < 7; i++ {
		candidate := start.AddDate(0, 0, i)
		if days.Contains(candidate.Weekday()) {
			return candidate, nil
		}
	}
	// unreachable for a non-empty set
	return time.Time{}, ErrNoWeekdays
}

// Occurrences lists the next count occurrences starting at from.
func Occurrences(days WeekdaySet, from time.Time, count int) ([]time.Time, error) {
	out := make([]time.Time, 0, count)
	next := from
	for len(out) < count {
		d, err := NextOccurrence(days, next)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
		next = d.AddDate(0, 0, 1)
	}
	return out, nil
}

// IsOccurrence reports whether date falls on one of days.
func IsOccurrence(days WeekdaySet, date time.Time) bool {
	return days.Contains(date.Weekday())
}

type Calculator struct {
	Policy   SameDayPolicy
	Location *time.Location
}

func NewCalculator(policy SameDayPolicy, loc *time.Location) Calculator {
	if loc == nil {
		loc = time.UTC
	}
	return Calculator{Policy: policy, Location: loc}
}

// Next resolves the next occurrence of a class that starts at startTime
// (HH:MM) on days, as seen from now in the calculator's location.
func (c Calculator) Next(days WeekdaySet, startTime string, now time.Time) (time.Time, error) {
	local := now.In(c.location())
	next, err := NextOccurrence(days, local)
	if err != nil {
		return time.Time{}, err
	}
	if c.Policy == SameDaySkipStarted && next.Equal(DateOf(local)) {
		start, err := ParseClock(startTime)
		if err != nil {
			return time.Time{}, err
		}
		if local.Hour()*60+local.Minute() >= start {
			return NextOccurrence(days, next.AddDate(0, 0, 1))
		}
	}
	return next, nil
}

// Today is the calendar date of now in the calculator's location.
func (c Calculator) Today(now time.Time) time.Time {
	return DateOf(now.In(c.location()))
}

// InPast reports whether date is strictly before today.
func (c Calculator) InPast(date, now time.Time) bool {
	y, m, d := date.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, c.location())
	return day.Before(c.Today(now))
}

func (c Calculator) location() *time.Location {
	if c.Location == nil {
		return time.UTC
	}
	return c.Location
}
