package booking

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/w4xxwrld/aiga-connect-sub000/internal/apperr"
	"github.com/w4xxwrld/aiga-connect-sub000/internal/capacity"
)

// fakeRepo keeps bookings in memory. ConfirmWithinCapacity holds the mutex
// across count and write, the way the SQL version holds the advisory lock.
type fakeRepo struct {
	mu       sync.Mutex
	nextID   int
	bookings map[int]*Booking
	coachOf  map[int]int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{bookings: map[int]*Booking{}, coachOf: map[int]int{}}
}

func sameDay(a, b time.Time) bool {
	return day(a) == day(b)
}

func live(s Status) bool {
	return s == StatusPending || s == StatusConfirmed
}

func (r *fakeRepo) put(b Booking) *Booking {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	b.ID = r.nextID
	r.bookings[b.ID] = &b
	cp := b
	return &cp
}

func (r *fakeRepo) Create(ctx context.Context, b *Booking) (*Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.bookings {
		if existing.AthleteID == b.AthleteID && existing.ClassID == b.ClassID &&
			sameDay(existing.OccurrenceDate, b.OccurrenceDate) && live(existing.Status) {
			return nil, apperr.ErrDuplicateBooking
		}
	}

	r.nextID++
	created := *b
	created.ID = r.nextID
	created.Status = StatusPending
	created.CreatedAt = time.Now()
	created.UpdatedAt = created.CreatedAt
	r.bookings[created.ID] = &created

	cp := created
	return &cp, nil
}

func (r *fakeRepo) GetByID(ctx context.Context, id int) (*Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.bookings[id]
	if !ok {
		return nil, ErrBookingNotFound
	}
	cp := *b
	return &cp, nil
}

func (r *fakeRepo) filter(keep func(*Booking) bool) []Booking {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := []Booking{}
	for _, b := range r.bookings {
		if keep(b) {
			out = append(out, *b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *fakeRepo) ListByAthletes(ctx context.Context, athleteIDs []int) ([]Booking, error) {
	ids := map[int]bool{}
	for _, id := range athleteIDs {
		ids[id] = true
	}
	return r.filter(func(b *Booking) bool { return ids[b.AthleteID] }), nil
}

func (r *fakeRepo) ListByCoach(ctx context.Context, coachID int) ([]Booking, error) {
	return r.filter(func(b *Booking) bool { return r.coachOf[b.ClassID] == coachID }), nil
}

func (r *fakeRepo) ListByOccurrence(ctx context.Context, classID int, date time.Time) ([]RosterEntry, error) {
	bookings := r.filter(func(b *Booking) bool { return b.ClassID == classID && sameDay(b.OccurrenceDate, date) })
	out := make([]RosterEntry, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, RosterEntry{Booking: b})
	}
	return out, nil
}

func (r *fakeRepo) ListConfirmedBefore(ctx context.Context, date time.Time, limit int) ([]Booking, error) {
	out := r.filter(func(b *Booking) bool {
		return b.Status == StatusConfirmed && day(b.OccurrenceDate) < day(date)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeRepo) CountConfirmed(ctx context.Context, classID int, date time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.countConfirmedLocked(classID, date), nil
}

func (r *fakeRepo) countConfirmedLocked(classID int, date time.Time) int {
	n := 0
	for _, b := range r.bookings {
		if b.ClassID == classID && sameDay(b.OccurrenceDate, date) && b.Status == StatusConfirmed {
			n++
		}
	}
	return n
}

func (r *fakeRepo) HasActiveBooking(ctx context.Context, athleteID, classID int, date time.Time) (bool, error) {
	found := r.filter(func(b *Booking) bool {
		return b.AthleteID == athleteID && b.ClassID == classID && sameDay(b.OccurrenceDate, date) && live(b.Status)
	})
	return len(found) > 0, nil
}

func (r *fakeRepo) Transition(ctx context.Context, id int, from, to Status, reason *string) (*Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.bookings[id]
	if !ok || b.Status != from {
		return nil, apperr.ErrConflictingUpdate
	}
	b.Status = to
	if reason != nil {
		why := *reason
		b.CancellationReason = &why
	}
	b.UpdatedAt = time.Now()

	cp := *b
	return &cp, nil
}

func (r *fakeRepo) ConfirmWithinCapacity(ctx context.Context, id int, slot capacity.Slot, maxCapacity int) (*Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.bookings[id]
	if !ok {
		return nil, ErrBookingNotFound
	}
	if b.Status != StatusPending {
		return nil, apperr.ErrConflictingUpdate
	}
	if err := capacity.Admit(r.countConfirmedLocked(slot.ClassID, slot.Date), maxCapacity); err != nil {
		return nil, err
	}
	b.Status = StatusConfirmed
	b.UpdatedAt = time.Now()

	cp := *b
	return &cp, nil
}
