package identity_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dippreneurlab/new-salt/internal/domain"
	"github.com/dippreneurlab/new-salt/internal/identity"
)

func TestResolveRole(t *testing.T) {
	admins := []string{"boss@ilovesalt.com", "Second@ilovesalt.com"}

	tests := []struct {
		name   string
		claims map[string]any
		email  string
		want   domain.Role
	}{
		{
			name:   "stored claim wins over allow-list",
			claims: map[string]any{"role": "pm"},
			email:  "boss@ilovesalt.com",
			want:   domain.RolePM,
		},
		{
			name:  "allow-list member without claim is admin",
			email: "boss@ilovesalt.com",
			want:  domain.RoleAdmin,
		},
		{
			name:  "allow-list comparison is case-insensitive",
			email: "SECOND@ilovesalt.com",
			want:  domain.RoleAdmin,
		},
		{
			name:  "unknown email defaults to user",
			email: "someone@ilovesalt.com",
			want:  domain.RoleUser,
		},
		{
			name: "no claim and no email defaults to user",
			want: domain.RoleUser,
		},
		{
			name:   "invalid claim value falls through to allow-list",
			claims: map[string]any{"role": "superuser"},
			email:  "boss@ilovesalt.com",
			want:   domain.RoleAdmin,
		},
		{
			name:   "non-string claim is ignored",
			claims: map[string]any{"role": 42},
			email:  "someone@ilovesalt.com",
			want:   domain.RoleUser,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := identity.ResolveRole(tt.claims, tt.email, admins)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestRoleFromClaims(t *testing.T) {
	role, ok := identity.RoleFromClaims(map[string]any{"role": "Admin"})
	require.True(t, ok)
	require.Equal(t, domain.RoleAdmin, role)

	_, ok = identity.RoleFromClaims(map[string]any{"role": "root"})
	require.False(t, ok)

	_, ok = identity.RoleFromClaims(nil)
	require.False(t, ok)
}
