package training

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/w4xxwrld/aiga-connect-sub000/internal/apperr"
	"github.com/w4xxwrld/aiga-connect-sub000/internal/schedule"
)

var ErrRequestNotFound = fmt.Errorf("%w: training request", apperr.ErrEntityNotFound)

const requestColumns = `
	id, athlete_id, coach_id, parent_id, requested_date,
	to_char(preferred_start, 'HH24:MI') AS preferred_start,
	to_char(preferred_end, 'HH24:MI') AS preferred_end,
	status, scheduled_date,
	to_char(scheduled_start, 'HH24:MI') AS scheduled_start,
	to_char(scheduled_end, 'HH24:MI') AS scheduled_end,
	is_paid, amount_cents, athlete_notes, coach_notes, decline_reason, created_at, updated_at`

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func day(t time.Time) string {
	return t.Format(schedule.DateLayout)
}

func (r *repository) Create(ctx context.Context, req *Request) (*Request, error) {
	query := `
		INSERT INTO training_requests (athlete_id, coach_id, parent_id, requested_date,
			preferred_start, preferred_end, status, athlete_notes)
		VALUES ($1, $2, $3, $4::date, $5::time, $6::time, $7, $8)
		RETURNING` + requestColumns

	var created Request
	err := r.db.GetContext(ctx, &created, query,
		req.AthleteID, req.CoachID, req.ParentID, day(req.RequestedDate),
		req.PreferredStart, req.PreferredEnd, StatusPending, req.AthleteNotes)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *repository) GetByID(ctx context.Context, id int) (*Request, error) {
	query := `SELECT` + requestColumns + ` FROM training_requests WHERE id = $1`

	var req Request
	if err := r.db.GetContext(ctx, &req, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}
	return &req, nil
}

func (r *repository) ListByAthletes(ctx context.Context, athleteIDs []int) ([]Request, error) {
	requests := []Request{}
	if len(athleteIDs) == 0 {
		return requests, nil
	}

	ids := make(pq.Int64Array, len(athleteIDs))
	for i, id := range athleteIDs {
		ids[i] = int64(id)
	}

	query := `SELECT` + requestColumns + `
		FROM training_requests
		WHERE athlete_id = ANY($1)
		ORDER BY requested_date DESC, created_at DESC`

	if err := r.db.SelectContext(ctx, &requests, query, ids); err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *repository) ListByCoach(ctx context.Context, coachID int) ([]Request, error) {
	query := `SELECT` + requestColumns + `
		FROM training_requests
		WHERE coach_id = $1
		ORDER BY requested_date DESC, created_at DESC`

	requests := []Request{}
	if err := r.db.SelectContext(ctx, &requests, query, coachID); err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *repository) Transition(ctx context.Context, id int, from, to Status, reason *string) (*Request, error) {
	query := `
		UPDATE training_requests
		SET status = $3, decline_reason = COALESCE($4, decline_reason), updated_at = NOW()
		WHERE id = $1 AND status = $2
		RETURNING` + requestColumns

	var req Request
	if err := r.db.GetContext(ctx, &req, query, id, from, to, reason); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrConflictingUpdate
		}
		return nil, err
	}
	return &req, nil
}

func (r *repository) AcceptIfFree(ctx context.Context, id, coachID int, sched Schedule) (*Request, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1::bigint)`, int64(coachID)); err != nil {
		return nil, err
	}

	var booked []schedule.Window
	err = tx.SelectContext(ctx, &booked, `
		SELECT to_char(scheduled_start, 'HH24:MI') AS start, to_char(scheduled_end, 'HH24:MI') AS "end"
		FROM training_requests
		WHERE coach_id = $1 AND status = 'accepted' AND scheduled_date = $2::date AND id <> $3`,
		coachID, day(sched.Date), id)
	if err != nil {
		return nil, err
	}
	for _, w := range booked {
		if w.Overlaps(sched.Window) {
			return nil, fmt.Errorf("%w: %s-%s on %s", apperr.ErrScheduleConflict, w.Start, w.End, day(sched.Date))
		}
	}

	var req Request
	err = tx.GetContext(ctx, &req, `
		UPDATE training_requests
		SET status = 'accepted',
			scheduled_date = $2::date,
			scheduled_start = $3::time,
			scheduled_end = $4::time,
			amount_cents = COALESCE($5, amount_cents),
			is_paid = COALESCE($6, is_paid),
			coach_notes = COALESCE($7, coach_notes),
			updated_at = NOW()
		WHERE id = $1 AND status = 'pending'
		RETURNING`+requestColumns,
		id, day(sched.Date), sched.Window.Start, sched.Window.End, sched.AmountCents, sched.IsPaid, sched.CoachNotes)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrConflictingUpdate
		}
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &req, nil
}
