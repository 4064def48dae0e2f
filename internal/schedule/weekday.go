package schedule

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/lib/pq"
)

var (
	ErrNoWeekdays      = errors.New("weekday set is empty")
	ErrInvalidWeekday  = errors.New("unknown weekday")
	ErrInvalidTimeSpan = errors.New("invalid time window")
)

// canonical names are what gets stored; display names are what the mobile
// client shows.
var (
	canonicalNames = [7]string{"sunday", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday"}
	displayNames   = [7]string{"воскресенье", "понедельник", "вторник", "среда", "четверг", "пятница", "суббота"}
)

var weekdayAliases = map[string]time.Weekday{
	"sunday": time.Sunday, "sun": time.Sunday, "воскресенье": time.Sunday, "вс": time.Sunday,
	"monday": time.Monday, "mon": time.Monday, "понедельник": time.Monday, "пн": time.Monday,
	"tuesday": time.Tuesday, "tue": time.Tuesday, "вторник": time.Tuesday, "вт": time.Tuesday,
	"wednesday": time.Wednesday, "wed": time.Wednesday, "среда": time.Wednesday, "ср": time.Wednesday,
	"thursday": time.Thursday, "thu": time.Thursday, "четверг": time.Thursday, "чт": time.Thursday,
	"friday": time.Friday, "fri": time.Friday, "пятница": time.Friday, "пт": time.Friday,
	"saturday": time.Saturday, "sat": time.Saturday, "суббота": time.Saturday, "сб": time.Saturday,
}

// ParseWeekday accepts english or russian names and short forms, in any case.
func ParseWeekday(name string) (time.Weekday, error) {
	d, ok := weekdayAliases[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidWeekday, name)
	}
	return d, nil
}

func CanonicalName(d time.Weekday) string {
	return canonicalNames[d%7]
}

func DisplayName(d time.Weekday) string {
	return displayNames[d%7]
}

// WeekdaySet is the set of days a class meets on. It is stored as a
// text[] of canonical names and serialized to JSON the same way.
type WeekdaySet []time.Weekday

func ParseWeekdays(names []string) (WeekdaySet, error) {
	set := make(WeekdaySet, 0, len(names))
	for _, n := range names {
		d, err := ParseWeekday(n)
		if err != nil {
			return nil, err
		}
		set = append(set, d)
	}
	return set.normalize(), nil
}

func (s WeekdaySet) Contains(d time.Weekday) bool {
	for _, w := range s {
		if w == d {
			return true
		}
	}
	return false
}

func (s WeekdaySet) Names() []string {
	names := make([]string, len(s))
	for i, d := range s {
		names[i] = CanonicalName(d)
	}
	return names
}

func (s WeekdaySet) DisplayNames() []string {
	names := make([]string, len(s))
	for i, d := range s {
		names[i] = DisplayName(d)
	}
	return names
}

func (s WeekdaySet) normalize() WeekdaySet {
	seen := make(map[time.Weekday]bool, len(s))
	out := make(WeekdaySet, 0, len(s))
	for _, d := range s {
		if !seen[d] {
			seen[d] = true
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (s WeekdaySet) Value() (driver.Value, error) {
	return pq.StringArray(s.Names()).Value()
}

func (s *WeekdaySet) Scan(src interface{}) error {
	var names pq.StringArray
	if err := names.Scan(src); err != nil {
		return err
	}
	set, err := ParseWeekdays(names)
	if err != nil {
		return err
	}
	*s = set
	return nil
}

func (s WeekdaySet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Names())
}

func (s *WeekdaySet) UnmarshalJSON(data []byte) error {
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return err
	}
	set, err := ParseWeekdays(names)
	if err != nil {
		return err
	}
	*s = set
	return nil
}
