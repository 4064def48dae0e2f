package training

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/w4xxwrld/aiga-connect-sub000/internal/apperr"
	"github.com/w4xxwrld/aiga-connect-sub000/internal/schedule"
)

var requestRowColumns = []string{
	"id", "athlete_id", "coach_id", "parent_id", "requested_date", "preferred_start", "preferred_end",
	"status", "scheduled_date", "scheduled_start", "scheduled_end",
	"is_paid", "amount_cents", "athlete_notes", "coach_notes", "decline_reason", "created_at", "updated_at",
}

var march10 = time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

func setupRequestMock(t *testing.T) (Repository, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRepository(sqlx.NewDb(db, "sqlmock")), mock
}

func pendingRow(id int) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(requestRowColumns).
		AddRow(id, 21, 3, nil, march10, "17:00", "18:00", "pending", nil, nil, nil, false, 0, nil, nil, nil, now, now)
}

func TestRepositoryCreate(t *testing.T) {
	repo, mock := setupRequestMock(t)
	start, end := "17:00", "18:00"

	mock.ExpectQuery(`INSERT INTO training_requests .* RETURNING`).
		WithArgs(21, 3, nil, "2026-03-10", start, end, "pending", nil).
		WillReturnRows(pendingRow(1))

	r, err := repo.Create(context.Background(), &Request{
		AthleteID: 21, CoachID: 3, RequestedDate: march10, PreferredStart: &start, PreferredEnd: &end,
	})

	require.NoError(t, err)
	assert.Equal(t, 1, r.ID)
	assert.Equal(t, &schedule.Window{Start: "17:00", End: "18:00"}, r.PreferredWindow())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryGetByID_NotFound(t *testing.T) {
	repo, mock := setupRequestMock(t)

	mock.ExpectQuery(`FROM training_requests WHERE id = \$1`).
		WithArgs(5).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), 5)

	assert.ErrorIs(t, err, ErrRequestNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryTransition_Stale(t *testing.T) {
	repo, mock := setupRequestMock(t)
	reason := "schedule conflict"

	mock.ExpectQuery(`UPDATE training_requests SET status = \$3`).
		WithArgs(1, "pending", "declined", reason).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Transition(context.Background(), 1, StatusPending, StatusDeclined, &reason)

	assert.ErrorIs(t, err, apperr.ErrConflictingUpdate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryAcceptIfFree(t *testing.T) {
	sched := Schedule{Date: march10, Window: schedule.Window{Start: "17:00", End: "18:00"}}

	t.Run("free", func(t *testing.T) {
		repo, mock := setupRequestMock(t)
		now := time.Now()

		mock.ExpectBegin()
		mock.ExpectExec(`SELECT pg_advisory_xact_lock\(\$1::bigint\)`).
			WithArgs(int64(3)).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`WHERE coach_id = \$1 AND status = 'accepted'`).
			WithArgs(3, "2026-03-10", 1).
			WillReturnRows(sqlmock.NewRows([]string{"start", "end"}).AddRow("18:00", "19:00"))
		mock.ExpectQuery(`UPDATE training_requests SET status = 'accepted'`).
			WithArgs(1, "2026-03-10", "17:00", "18:00", nil, nil, nil).
			WillReturnRows(sqlmock.NewRows(requestRowColumns).
				AddRow(1, 21, 3, nil, march10, nil, nil, "accepted", march10, "17:00", "18:00", false, 0, nil, nil, nil, now, now))
		mock.ExpectCommit()

		r, err := repo.AcceptIfFree(context.Background(), 1, 3, sched)

		require.NoError(t, err)
		assert.Equal(t, StatusAccepted, r.Status)
		assert.Equal(t, "17:00", *r.ScheduledStart)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("overlap", func(t *testing.T) {
		repo, mock := setupRequestMock(t)

		mock.ExpectBegin()
		mock.ExpectExec(`SELECT pg_advisory_xact_lock`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`WHERE coach_id = \$1 AND status = 'accepted'`).
			WillReturnRows(sqlmock.NewRows([]string{"start", "end"}).AddRow("16:30", "17:30"))
		mock.ExpectRollback()

		_, err := repo.AcceptIfFree(context.Background(), 1, 3, sched)

		assert.ErrorIs(t, err, apperr.ErrScheduleConflict)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
