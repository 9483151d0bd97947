package domain

import "errors"

// Common domain errors
var ErrNotFound = errors.New("resource not found")

// Role identifies the actor requesting an operation. Roles are supplied by
// the identity layer (JWT claims) and trusted by the core.
type Role string

const (
	RoleProjectLeader Role = "project_leader"
	RoleHR            Role = "hr"
	RoleExecutive     Role = "executive"
	RoleCandidate     Role = "candidate"

	// RoleSystem is never carried by a request; it is assumed internally for
	// time-driven events such as posting expiry.
	RoleSystem Role = "system"
)

func ValidRoles() []Role {
	return []Role{RoleProjectLeader, RoleHR, RoleExecutive, RoleCandidate}
}

func (r Role) IsValid() bool {
	for _, valid := range ValidRoles() {
		if r == valid {
			return true
		}
	}
	return false
}
