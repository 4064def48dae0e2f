package family

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/w4xxwrld/aiga-connect-sub000/internal/apperr"
	"github.com/w4xxwrld/aiga-connect-sub000/internal/db"
)

const linkColumns = `
	id, parent_id, athlete_id, relationship, is_active, confirmed_at, created_at`

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Upsert(ctx context.Context, parentID, athleteID int, rel Relationship) (*Link, error) {
	query := `
		INSERT INTO parent_child_links (parent_id, athlete_id, relationship)
		VALUES ($1, $2, $3)
		ON CONFLICT (parent_id, athlete_id)
		DO UPDATE SET relationship = EXCLUDED.relationship,
			confirmed_at = CASE WHEN parent_child_links.is_active THEN parent_child_links.confirmed_at END,
			is_active = TRUE
		RETURNING` + linkColumns

	var link Link
	if err := r.db.GetContext(ctx, &link, query, parentID, athleteID, rel); err != nil {
		return nil, err
	}
	return &link, nil
}

func (r *repository) GetByID(ctx context.Context, id int) (*Link, error) {
	var link Link
	err := r.db.GetContext(ctx, &link, `SELECT`+linkColumns+` FROM parent_child_links WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLinkNotFound
		}
		return nil, err
	}
	return &link, nil
}

func (r *repository) ListByParent(ctx context.Context, parentID int) ([]Link, error) {
	query := `
		SELECT l.id, l.parent_id, l.athlete_id, u.name AS athlete_name,
		       l.relationship, l.is_active, l.confirmed_at, l.created_at
		FROM parent_child_links l
		JOIN users u ON u.id = l.athlete_id
		WHERE l.parent_id = $1 AND l.is_active
		ORDER BY l.created_at
	`

	links := []Link{}
	if err := r.db.SelectContext(ctx, &links, query, parentID); err != nil {
		return nil, err
	}
	return links, nil
}

func (r *repository) ListPendingForAthlete(ctx context.Context, athleteID int) ([]Link, error) {
	query := `
		SELECT l.id, l.parent_id, u.name AS parent_name, l.athlete_id,
		       l.relationship, l.is_active, l.confirmed_at, l.created_at
		FROM parent_child_links l
		JOIN users u ON u.id = l.parent_id
		WHERE l.athlete_id = $1 AND l.is_active AND l.confirmed_at IS NULL
		ORDER BY l.created_at
	`

	links := []Link{}
	if err := r.db.SelectContext(ctx, &links, query, athleteID); err != nil {
		return nil, err
	}
	return links, nil
}

func (r *repository) ConfirmedAthleteIDs(ctx context.Context, parentID int) ([]int, error) {
	ids := []int{}
	err := r.db.SelectContext(ctx, &ids, `
		SELECT athlete_id FROM parent_child_links
		WHERE parent_id = $1 AND is_active AND confirmed_at IS NOT NULL
		ORDER BY athlete_id`, parentID)
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *repository) IsLinked(ctx context.Context, parentID, athleteID int) (bool, error) {
	return db.Exists(ctx, r.db,
		`SELECT 1 FROM parent_child_links WHERE parent_id = $1 AND athlete_id = $2 AND is_active AND confirmed_at IS NOT NULL`,
		parentID, athleteID)
}

func (r *repository) Confirm(ctx context.Context, id int) (*Link, error) {
	query := `
		UPDATE parent_child_links SET confirmed_at = NOW()
		WHERE id = $1 AND is_active AND confirmed_at IS NULL
		RETURNING` + linkColumns

	var link Link
	if err := r.db.GetContext(ctx, &link, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrConflictingUpdate
		}
		return nil, err
	}
	return &link, nil
}

func (r *repository) Deactivate(ctx context.Context, parentID, athleteID int) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE parent_child_links SET is_active = FALSE WHERE parent_id = $1 AND athlete_id = $2 AND is_active`,
		parentID, athleteID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrLinkNotFound
	}
	return nil
}
