package family

import "time"

type Relationship string

const (
	RelationshipFather   Relationship = "father"
	RelationshipMother   Relationship = "mother"
	RelationshipGuardian Relationship = "guardian"
)

func (r Relationship) Valid() bool {
	switch r {
	case RelationshipFather, RelationshipMother, RelationshipGuardian:
		return true
	default:
		return false
	}
}

// Link lets a parent act on behalf of an athlete once the athlete has
// confirmed it, and only while it stays active.
type Link struct {
	ID           int          `db:"id" json:"id"`
	ParentID     int          `db:"parent_id" json:"parent_id"`
	ParentName   string       `db:"parent_name" json:"parent_name,omitempty"`
	AthleteID    int          `db:"athlete_id" json:"athlete_id"`
	AthleteName  string       `db:"athlete_name" json:"athlete_name,omitempty"`
	Relationship Relationship `db:"relationship" json:"relationship"`
	IsActive     bool         `db:"is_active" json:"is_active"`
	ConfirmedAt  *time.Time   `db:"confirmed_at" json:"confirmed_at,omitempty"`
	CreatedAt    time.Time    `db:"created_at" json:"created_at"`
}

// Confirmed reports whether the link currently grants the parent access.
func (l *Link) Confirmed() bool {
	return l.IsActive && l.ConfirmedAt != nil
}

type CreateLinkRequest struct {
	AthleteID    int    `json:"athlete_id" validate:"required,gt=0"`
	Relationship string `json:"relationship" validate:"required,oneof=father mother guardian"`
}
