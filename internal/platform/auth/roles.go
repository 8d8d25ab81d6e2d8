package auth

import (
	"context"
	"fmt"
	"strings"
)

// Role is an account's portal role.
type Role string

const (
	RoleAdmin       Role = "admin"
	RoleFacility    Role = "facility"
	RoleBeneficiary Role = "beneficiary"
)

// roleAliases maps the portal's Indonesian role names onto canonical roles.
var roleAliases = map[string]Role{
	"admin":       RoleAdmin,
	"admin-bpjs":  RoleAdmin,
	"facility":    RoleFacility,
	"faskes":      RoleFacility,
	"beneficiary": RoleBeneficiary,
	"peserta":     RoleBeneficiary,
}

// ParseRole accepts a canonical role name or one of its aliases,
// case-insensitively.
func ParseRole(s string) (Role, error) {
	if r, ok := roleAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return r, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

func (r Role) String() string { return string(r) }

// Principal is the authenticated caller of a request.
type Principal struct {
	UserID string
	Roles  []string
}

func (p Principal) Has(role Role) bool {
	for _, r := range p.Roles {
		if r == string(role) {
			return true
		}
	}
	return false
}

func (p Principal) IsAdmin() bool { return p.Has(RoleAdmin) }

// PrincipalFromContext builds the caller from values set by JWTMiddleware.
func PrincipalFromContext(ctx context.Context) Principal {
	return Principal{UserID: UserIDFromContext(ctx), Roles: RolesFromContext(ctx)}
}
