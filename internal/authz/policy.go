package authz

import (
	"fmt"
	"slices"

	"asafe-api/internal/domain"
)

// Principal is the decoded identity of an authenticated caller.
type Principal struct {
	ID    domain.UserID
	Email string
	Role  domain.Role
}

func (p Principal) IsAdmin() bool { return p.Role == domain.RoleAdmin }

// Policy returns nil to allow and an error wrapping domain.ErrForbidden to deny.
type Policy func(p Principal) error

func RoleIn(roles ...domain.Role) Policy {
	return func(p Principal) error {
		if slices.Contains(roles, p.Role) {
			return nil
		}
		return fmt.Errorf("%w: role %s not permitted", domain.ErrForbidden, p.Role)
	}
}

func AdminOnly() Policy { return RoleIn(domain.RoleAdmin) }

// SelfOrAdmin allows the owner of the target account or an admin.
func SelfOrAdmin(target domain.UserID) Policy {
	return func(p Principal) error {
		if p.ID == target || p.IsAdmin() {
			return nil
		}
		return fmt.Errorf("%w: not the account owner", domain.ErrForbidden)
	}
}

// Check evaluates every policy and returns the first denial.
func Check(p Principal, policies ...Policy) error {
	for _, policy := range policies {
		if err := policy(p); err != nil {
			return err
		}
	}
	return nil
}
