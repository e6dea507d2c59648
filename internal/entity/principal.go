package entity

import "github.com/google/uuid"

// Principal is the authenticated caller handed to every workflow operation.
type Principal struct {
	UserID uuid.UUID
	Role   Role
}

func (p Principal) Is(roles ...Role) bool {
	for _, r := range roles {
		if p.Role == r {
			return true
		}
	}
	return false
}
