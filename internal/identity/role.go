package identity

import (
	"strings"

	"github.com/dippreneurlab/new-salt/internal/domain"
)

// RoleClaimKey is the custom claim under which the provider stores a role.
const RoleClaimKey = "role"

// RoleFromClaims extracts a valid role claim if one is present.
func RoleFromClaims(claims map[string]any) (domain.Role, bool) {
	raw, ok := claims[RoleClaimKey].(string)
	if !ok {
		return "", false
	}
	role := domain.Role(strings.ToLower(strings.TrimSpace(raw)))
	if !role.Valid() {
		return "", false
	}
	return role, true
}

// ResolveRole derives the effective role for a verified identity. A stored
// role claim wins; otherwise membership of the lowercased email in the admin
// allow-list grants admin; otherwise the role defaults to user.
func ResolveRole(claims map[string]any, email string, adminEmails []string) domain.Role {
	if role, ok := RoleFromClaims(claims); ok {
		return role
	}
	normalized := strings.ToLower(strings.TrimSpace(email))
	if normalized != "" {
		for _, admin := range adminEmails {
			if strings.ToLower(strings.TrimSpace(admin)) == normalized {
				return domain.RoleAdmin
			}
		}
	}
	return domain.RoleUser
}
