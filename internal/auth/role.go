package auth

import (
	"errors"
	"fmt"
	"strings"
)

type Role string

const (
	RoleParent  Role = "parent"
	RoleAthlete Role = "athlete"
	RoleCoach   Role = "coach"

	// RoleSystem is used by background jobs such as the completion sweep.
	// It is never issued in a token.
	RoleSystem Role = "system"
)

var ErrInvalidRole = errors.New("invalid role")

// ParseRole accepts only roles that may appear in a token.
func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case RoleParent, RoleAthlete, RoleCoach:
		return r, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidRole, s)
	}
}

func (r Role) Valid() bool {
	switch r {
	case RoleParent, RoleAthlete, RoleCoach:
		return true
	case RoleSystem:
		return false
	default:
		return false
	}
}

// Actor is the authenticated identity attempting an operation. It is passed
// explicitly to every service call.
type Actor struct {
	ID   int  `json:"id"`
	Role Role `json:"role"`
}

// SystemActor is the identity background jobs act as.
var SystemActor = Actor{ID: 0, Role: RoleSystem}

func (a Actor) Is(role Role) bool {
	return a.Role == role
}
