package actor

import (
	"errors"

	"github.com/google/uuid"
)

var ErrInvalidRole = errors.New("invalid role")

type Role string

const (
	RoleGuest    Role = "guest"
	RoleSupport  Role = "support"
	RoleOperator Role = "operator"
)

func (r Role) String() string {
	return string(r)
}

func (r Role) IsValid() bool {
	switch r {
	case RoleGuest, RoleSupport, RoleOperator:
		return true
	default:
		return false
	}
}

func NewRole(s string) (Role, error) {
	role := Role(s)
	if !role.IsValid() {
		return "", ErrInvalidRole
	}
	return role, nil
}

// Actor is whoever triggers a command: a guest, support staff or an operator.
type Actor struct {
	ID   uuid.UUID
	Role Role
}

// CanActOnBehalf reports whether a holds staff privileges over other guests' bookings.
func (a Actor) CanActOnBehalf() bool {
	return a.Role == RoleSupport || a.Role == RoleOperator
}
