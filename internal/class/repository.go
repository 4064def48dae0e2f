package class

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/w4xxwrld/aiga-connect-sub000/internal/apperr"
)

const classColumns = `
	id, name, description, coach_id, weekdays,
	to_char(start_time, 'HH24:MI') AS start_time,
	to_char(end_time, 'HH24:MI') AS end_time,
	age_min, age_max, max_capacity, price_cents, is_trial_available,
	status, created_at, updated_at`

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, c *Class) (*Class, error) {
	query := `
		INSERT INTO classes (name, description, coach_id, weekdays, start_time, end_time,
			age_min, age_max, max_capacity, price_cents, is_trial_available, status)
		VALUES ($1, $2, $3, $4, $5::time, $6::time, $7, $8, $9, $10, $11, $12)
		RETURNING` + classColumns

	var created Class
	err := r.db.GetContext(ctx, &created, query,
		c.Name, c.Description, c.CoachID, c.Weekdays, c.StartTime, c.EndTime,
		c.AgeMin, c.AgeMax, c.MaxCapacity, c.PriceCents, c.IsTrialAvailable, StatusActive)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *repository) GetByID(ctx context.Context, id int) (*Class, error) {
	query := `SELECT` + classColumns + ` FROM classes WHERE id = $1`

	var c Class
	if err := r.db.GetContext(ctx, &c, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrClassNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]Class, error) {
	query := `SELECT` + classColumns + ` FROM classes WHERE 1=1`
	args := []interface{}{}

	if filter.CoachID != nil {
		args = append(args, *filter.CoachID)
		query += fmt.Sprintf(" AND coach_id = $%d", len(args))
	}
	if filter.ActiveOnly {
		args = append(args, StatusActive)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}

	query += " ORDER BY start_time ASC, id ASC"

	classes := []Class{}
	if err := r.db.SelectContext(ctx, &classes, query, args...); err != nil {
		return nil, err
	}
	return classes, nil
}

func (r *repository) Update(ctx context.Context, c *Class) (*Class, error) {
	query := `
		UPDATE classes
		SET name = $2, description = $3, weekdays = $4, start_time = $5::time, end_time = $6::time,
			age_min = $7, age_max = $8, max_capacity = $9, price_cents = $10,
			is_trial_available = $11, updated_at = NOW()
		WHERE id = $1 AND status = 'active'
		RETURNING` + classColumns

	var updated Class
	err := r.db.GetContext(ctx, &updated, query,
		c.ID, c.Name, c.Description, c.Weekdays, c.StartTime, c.EndTime,
		c.AgeMin, c.AgeMax, c.MaxCapacity, c.PriceCents, c.IsTrialAvailable)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrClassNotActive
		}
		return nil, err
	}
	return &updated, nil
}

func (r *repository) SetStatus(ctx context.Context, id int, from, to Status) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE classes SET status = $3, updated_at = NOW() WHERE id = $1 AND status = $2`,
		id, from, to)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
