package training

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/w4xxwrld/aiga-connect-sub000/internal/apperr"
)

type fakeRepo struct {
	mu       sync.Mutex
	nextID   int
	requests map[int]*Request
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{requests: map[int]*Request{}}
}

func (r *fakeRepo) put(req Request) *Request {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	req.ID = r.nextID
	r.requests[req.ID] = &req
	cp := req
	return &cp
}

func (r *fakeRepo) Create(ctx context.Context, req *Request) (*Request, error) {
	created := *req
	created.Status = StatusPending
	created.CreatedAt = time.Now()
	created.UpdatedAt = created.CreatedAt
	return r.put(created), nil
}

func (r *fakeRepo) GetByID(ctx context.Context, id int) (*Request, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	req, ok := r.requests[id]
	if !ok {
		return nil, ErrRequestNotFound
	}
	cp := *req
	return &cp, nil
}

func (r *fakeRepo) filter(keep func(*Request) bool) []Request {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := []Request{}
	for _, req := range r.requests {
		if keep(req) {
			out = append(out, *req)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *fakeRepo) ListByAthletes(ctx context.Context, athleteIDs []int) ([]Request, error) {
	ids := map[int]bool{}
	for _, id := range athleteIDs {
		ids[id] = true
	}
	return r.filter(func(req *Request) bool { return ids[req.AthleteID] }), nil
}

func (r *fakeRepo) ListByCoach(ctx context.Context, coachID int) ([]Request, error) {
	return r.filter(func(req *Request) bool { return req.CoachID == coachID }), nil
}

func (r *fakeRepo) Transition(ctx context.Context, id int, from, to Status, reason *string) (*Request, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	req, ok := r.requests[id]
	if !ok || req.Status != from {
		return nil, apperr.ErrConflictingUpdate
	}
	req.Status = to
	if reason != nil {
		why := *reason
		req.DeclineReason = &why
	}
	cp := *req
	return &cp, nil
}

func (r *fakeRepo) AcceptIfFree(ctx context.Context, id, coachID int, sched Schedule) (*Request, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, other := range r.requests {
		if other.ID == id || other.CoachID != coachID || other.Status != StatusAccepted || other.ScheduledDate == nil {
			continue
		}
		if day(*other.ScheduledDate) != day(sched.Date) {
			continue
		}
		if w := other.ScheduledWindow(); w != nil && w.Overlaps(sched.Window) {
			return nil, apperr.ErrScheduleConflict
		}
	}

	req, ok := r.requests[id]
	if !ok || req.Status != StatusPending {
		return nil, apperr.ErrConflictingUpdate
	}
	date := sched.Date
	start, end := sched.Window.Start, sched.Window.End
	req.Status = StatusAccepted
	req.ScheduledDate = &date
	req.ScheduledStart = &start
	req.ScheduledEnd = &end
	if sched.AmountCents != nil {
		req.AmountCents = *sched.AmountCents
	}
	if sched.IsPaid != nil {
		req.IsPaid = *sched.IsPaid
	}
	if sched.CoachNotes != nil {
		req.CoachNotes = sched.CoachNotes
	}
	cp := *req
	return &cp, nil
}
