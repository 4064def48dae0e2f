package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/w4xxwrld/aiga-connect-sub000/internal/apperr"
	"github.com/w4xxwrld/aiga-connect-sub000/internal/capacity"
	"github.com/w4xxwrld/aiga-connect-sub000/internal/db"
	"github.com/w4xxwrld/aiga-connect-sub000/internal/schedule"
)

var ErrBookingNotFound = fmt.Errorf("%w: booking", apperr.ErrEntityNotFound)

const bookingColumns = `
	b.id, b.athlete_id, b.class_id, b.parent_id, b.kind, b.status, b.occurrence_date,
	b.is_paid, b.amount_cents, b.notes, b.cancellation_reason, b.created_at, b.updated_at`

const returningColumns = `
	RETURNING id, athlete_id, class_id, parent_id, kind, status, occurrence_date,
	is_paid, amount_cents, notes, cancellation_reason, created_at, updated_at`

// uniqueViolation is the postgres error code raised by the partial unique
// index on live bookings.
const uniqueViolation = "23505"

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func day(t time.Time) string {
	return t.Format(schedule.DateLayout)
}

func (r *repository) Create(ctx context.Context, b *Booking) (*Booking, error) {
	query := `
		INSERT INTO bookings (athlete_id, class_id, parent_id, kind, status, occurrence_date,
			is_paid, amount_cents, notes)
		VALUES ($1, $2, $3, $4, $5, $6::date, $7, $8, $9)` + returningColumns

	var created Booking
	err := r.db.GetContext(ctx, &created, query,
		b.AthleteID, b.ClassID, b.ParentID, b.Kind, StatusPending, day(b.OccurrenceDate),
		b.IsPaid, b.AmountCents, b.Notes)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return nil, apperr.ErrDuplicateBooking
		}
		return nil, err
	}

	return &created, nil
}

func (r *repository) GetByID(ctx context.Context, id int) (*Booking, error) {
	query := `SELECT` + bookingColumns + ` FROM bookings b WHERE b.id = $1`

	var b Booking
	if err := r.db.GetContext(ctx, &b, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return &b, nil
}

func (r *repository) ListByAthletes(ctx context.Context, athleteIDs []int) ([]Booking, error) {
	bookings := []Booking{}
	if len(athleteIDs) == 0 {
		return bookings, nil
	}

	ids := make(pq.Int64Array, len(athleteIDs))
	for i, id := range athleteIDs {
		ids[i] = int64(id)
	}

	query := `SELECT` + bookingColumns + `
		FROM bookings b
		WHERE b.athlete_id = ANY($1)
		ORDER BY b.occurrence_date DESC, b.created_at DESC`

	if err := r.db.SelectContext(ctx, &bookings, query, ids); err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *repository) ListByCoach(ctx context.Context, coachID int) ([]Booking, error) {
	query := `SELECT` + bookingColumns + `
		FROM bookings b
		JOIN classes c ON c.id = b.class_id
		WHERE c.coach_id = $1
		ORDER BY b.occurrence_date DESC, b.created_at DESC`

	bookings := []Booking{}
	if err := r.db.SelectContext(ctx, &bookings, query, coachID); err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *repository) ListByOccurrence(ctx context.Context, classID int, date time.Time) ([]RosterEntry, error) {
	query := `SELECT` + bookingColumns + `, u.name AS athlete_name
		FROM bookings b
		JOIN users u ON u.id = b.athlete_id
		WHERE b.class_id = $1 AND b.occurrence_date = $2::date
		ORDER BY b.created_at ASC`

	roster := []RosterEntry{}
	if err := r.db.SelectContext(ctx, &roster, query, classID, day(date)); err != nil {
		return nil, err
	}
	return roster, nil
}

func (r *repository) ListConfirmedBefore(ctx context.Context, date time.Time, limit int) ([]Booking, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `SELECT` + bookingColumns + `
		FROM bookings b
		WHERE b.status = 'confirmed' AND b.occurrence_date < $1::date
		ORDER BY b.occurrence_date ASC, b.id ASC
		LIMIT $2`

	bookings := []Booking{}
	if err := r.db.SelectContext(ctx, &bookings, query, day(date), limit); err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *repository) CountConfirmed(ctx context.Context, classID int, date time.Time) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM bookings
		WHERE class_id = $1 AND occurrence_date = $2::date AND status = 'confirmed'
	`

	var count int
	if err := r.db.GetContext(ctx, &count, query, classID, day(date)); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *repository) HasActiveBooking(ctx context.Context, athleteID, classID int, date time.Time) (bool, error) {
	query := `
		SELECT 1 FROM bookings
		WHERE athlete_id = $1 AND class_id = $2 AND occurrence_date = $3::date
		  AND status IN ('pending', 'confirmed')`

	return db.Exists(ctx, r.db, query, athleteID, classID, day(date))
}

func (r *repository) Transition(ctx context.Context, id int, from, to Status, reason *string) (*Booking, error) {
	query := `
		UPDATE bookings
		SET status = $3, cancellation_reason = COALESCE($4, cancellation_reason), updated_at = NOW()
		WHERE id = $1 AND status = $2` + returningColumns

	var b Booking
	if err := r.db.GetContext(ctx, &b, query, id, from, to, reason); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrConflictingUpdate
		}
		return nil, err
	}
	return &b, nil
}

func (r *repository) ConfirmWithinCapacity(ctx context.Context, id int, slot capacity.Slot, maxCapacity int) (*Booking, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	classKey, dayKey := slot.LockKeys()
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1::int4, $2::int4)`, classKey, dayKey); err != nil {
		return nil, err
	}

	// A booking that left pending is a lost race, whatever the seat count.
	var status Status
	err = tx.GetContext(ctx, &status, `SELECT status FROM bookings WHERE id = $1 FOR UPDATE`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	if status != StatusPending {
		return nil, apperr.ErrConflictingUpdate
	}

	var confirmed int
	err = tx.GetContext(ctx, &confirmed,
		`SELECT COUNT(*) FROM bookings WHERE class_id = $1 AND occurrence_date = $2::date AND status = 'confirmed'`,
		slot.ClassID, day(slot.Date))
	if err != nil {
		return nil, err
	}

	if err := capacity.Admit(confirmed, maxCapacity); err != nil {
		return nil, err
	}

	var b Booking
	err = tx.GetContext(ctx, &b, `
		UPDATE bookings
		SET status = 'confirmed', updated_at = NOW()
		WHERE id = $1 AND status = 'pending'`+returningColumns, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrConflictingUpdate
		}
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &b, nil
}
