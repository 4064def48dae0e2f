package booking

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/w4xxwrld/aiga-connect-sub000/internal/apperr"
	"github.com/w4xxwrld/aiga-connect-sub000/internal/capacity"
)

var bookingRowColumns = []string{
	"id", "athlete_id", "class_id", "parent_id", "kind", "status", "occurrence_date",
	"is_paid", "amount_cents", "notes", "cancellation_reason", "created_at", "updated_at",
}

var march7 = time.Date(2026, 3, 7, 0, 0, 0, 0, time.UTC)

func setupBookingMock(t *testing.T) (Repository, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRepository(sqlx.NewDb(db, "sqlmock")), mock
}

func bookingRow(id int, status Status) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(bookingRowColumns).
		AddRow(id, 21, 1, nil, "regular", string(status), march7, false, 500000, nil, nil, now, now)
}

func TestRepositoryCreate(t *testing.T) {
	repo, mock := setupBookingMock(t)

	mock.ExpectQuery(`INSERT INTO bookings .* RETURNING`).
		WithArgs(21, 1, nil, "regular", "pending", "2026-03-07", false, int64(500000), nil).
		WillReturnRows(bookingRow(1, StatusPending))

	b, err := repo.Create(context.Background(), &Booking{
		AthleteID:      21,
		ClassID:        1,
		Kind:           KindRegular,
		OccurrenceDate: march7,
		AmountCents:    500000,
	})

	require.NoError(t, err)
	assert.Equal(t, 1, b.ID)
	assert.Equal(t, StatusPending, b.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryCreate_Duplicate(t *testing.T) {
	repo, mock := setupBookingMock(t)

	mock.ExpectQuery(`INSERT INTO bookings`).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "bookings_live_unique"})

	_, err := repo.Create(context.Background(), &Booking{AthleteID: 21, ClassID: 1, Kind: KindRegular, OccurrenceDate: march7})

	assert.ErrorIs(t, err, apperr.ErrDuplicateBooking)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryGetByID_NotFound(t *testing.T) {
	repo, mock := setupBookingMock(t)

	mock.ExpectQuery(`SELECT .* FROM bookings b WHERE b.id = \$1`).
		WithArgs(99).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), 99)

	assert.ErrorIs(t, err, ErrBookingNotFound)
	assert.ErrorIs(t, err, apperr.ErrEntityNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryListByAthletes(t *testing.T) {
	repo, mock := setupBookingMock(t)

	got, err := repo.ListByAthletes(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, got)

	mock.ExpectQuery(`WHERE b.athlete_id = ANY\(\$1\)`).
		WithArgs(pq.Int64Array{21, 22}).
		WillReturnRows(bookingRow(4, StatusConfirmed))

	got, err = repo.ListByAthletes(context.Background(), []int{21, 22})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, StatusConfirmed, got[0].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryListByOccurrence(t *testing.T) {
	repo, mock := setupBookingMock(t)
	now := time.Now()

	cols := append(append([]string{}, bookingRowColumns...), "athlete_name")
	mock.ExpectQuery(`JOIN users u ON u.id = b.athlete_id`).
		WithArgs(1, "2026-03-07").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(1, 21, 1, nil, "trial", "pending", march7, false, 0, nil, nil, now, now, "Timur"))

	roster, err := repo.ListByOccurrence(context.Background(), 1, march7)

	require.NoError(t, err)
	require.Len(t, roster, 1)
	assert.Equal(t, "Timur", roster[0].AthleteName)
	assert.Equal(t, KindTrial, roster[0].Kind)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryListConfirmedBefore_DefaultLimit(t *testing.T) {
	repo, mock := setupBookingMock(t)

	mock.ExpectQuery(`WHERE b.status = 'confirmed' AND b.occurrence_date < \$1::date`).
		WithArgs("2026-03-07", 100).
		WillReturnRows(sqlmock.NewRows(bookingRowColumns))

	got, err := repo.ListConfirmedBefore(context.Background(), march7, 0)

	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryTransition(t *testing.T) {
	repo, mock := setupBookingMock(t)
	reason := "sick"

	mock.ExpectQuery(`UPDATE bookings SET status = \$3`).
		WithArgs(1, "pending", "cancelled", reason).
		WillReturnRows(bookingRow(1, StatusCancelled))

	b, err := repo.Transition(context.Background(), 1, StatusPending, StatusCancelled, &reason)

	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, b.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryTransition_StaleStatus(t *testing.T) {
	repo, mock := setupBookingMock(t)

	mock.ExpectQuery(`UPDATE bookings`).
		WithArgs(1, "confirmed", "completed", nil).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Transition(context.Background(), 1, StatusConfirmed, StatusCompleted, nil)

	assert.ErrorIs(t, err, apperr.ErrConflictingUpdate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryConfirmWithinCapacity(t *testing.T) {
	slot := capacity.Slot{ClassID: 1, Date: march7}

	t.Run("seat available", func(t *testing.T) {
		repo, mock := setupBookingMock(t)

		mock.ExpectBegin()
		mock.ExpectExec(`SELECT pg_advisory_xact_lock`).
			WithArgs(int32(1), int32(20519)).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`SELECT status FROM bookings WHERE id = \$1 FOR UPDATE`).
			WithArgs(5).
			WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("pending"))
		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM bookings`).
			WithArgs(1, "2026-03-07").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
		mock.ExpectQuery(`UPDATE bookings SET status = 'confirmed'`).
			WithArgs(5).
			WillReturnRows(bookingRow(5, StatusConfirmed))
		mock.ExpectCommit()

		b, err := repo.ConfirmWithinCapacity(context.Background(), 5, slot, 2)

		require.NoError(t, err)
		assert.Equal(t, StatusConfirmed, b.Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("class full", func(t *testing.T) {
		repo, mock := setupBookingMock(t)

		mock.ExpectBegin()
		mock.ExpectExec(`SELECT pg_advisory_xact_lock`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`SELECT status FROM bookings WHERE id = \$1 FOR UPDATE`).
			WithArgs(5).
			WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("pending"))
		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM bookings`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
		mock.ExpectRollback()

		_, err := repo.ConfirmWithinCapacity(context.Background(), 5, slot, 2)

		assert.ErrorIs(t, err, apperr.ErrCapacityExceeded)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("approved by someone else while the slot is full", func(t *testing.T) {
		repo, mock := setupBookingMock(t)

		mock.ExpectBegin()
		mock.ExpectExec(`SELECT pg_advisory_xact_lock`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`SELECT status FROM bookings WHERE id = \$1 FOR UPDATE`).
			WithArgs(5).
			WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("confirmed"))
		mock.ExpectRollback()

		_, err := repo.ConfirmWithinCapacity(context.Background(), 5, slot, 2)

		assert.ErrorIs(t, err, apperr.ErrConflictingUpdate)
		assert.NotErrorIs(t, err, apperr.ErrCapacityExceeded)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("booking gone", func(t *testing.T) {
		repo, mock := setupBookingMock(t)

		mock.ExpectBegin()
		mock.ExpectExec(`SELECT pg_advisory_xact_lock`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`SELECT status FROM bookings WHERE id = \$1 FOR UPDATE`).
			WithArgs(5).
			WillReturnRows(sqlmock.NewRows([]string{"status"}))
		mock.ExpectRollback()

		_, err := repo.ConfirmWithinCapacity(context.Background(), 5, slot, 2)

		assert.ErrorIs(t, err, ErrBookingNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("status update lost", func(t *testing.T) {
		repo, mock := setupBookingMock(t)

		mock.ExpectBegin()
		mock.ExpectExec(`SELECT pg_advisory_xact_lock`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`SELECT status FROM bookings WHERE id = \$1 FOR UPDATE`).
			WithArgs(5).
			WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("pending"))
		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM bookings`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectQuery(`UPDATE bookings`).
			WillReturnError(sql.ErrNoRows)
		mock.ExpectRollback()

		_, err := repo.ConfirmWithinCapacity(context.Background(), 5, slot, 2)

		assert.ErrorIs(t, err, apperr.ErrConflictingUpdate)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
