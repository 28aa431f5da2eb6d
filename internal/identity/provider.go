package identity

import (
	"context"
	"time"
)

// Token is the result of verifying a bearer credential.
type Token struct {
	SubjectID string
	Email     string
	Claims    map[string]any
}

// Record is a user entry in the provider's directory.
type Record struct {
	SubjectID   string
	Email       string
	DisplayName string
	PhoneNumber string
	Disabled    bool
	Claims      map[string]any
	CreatedAt   *time.Time
	LastLogin   *time.Time
}

// CreateParams carries the fields for a new directory entry. The password is
// handed to the provider and never stored locally.
type CreateParams struct {
	Email       string
	Password    string
	DisplayName string
	PhoneNumber string
}

// Provider is the external system of record for authentication and role
// claims. Not-found lookups wrap domain.ErrNotFound; every other failure
// wraps domain.ErrProvider.
type Provider interface {
	VerifyToken(ctx context.Context, token string) (Token, error)
	ListUsers(ctx context.Context, pageSize int, pageToken string) ([]Record, string, error)
	GetUser(ctx context.Context, subjectID string) (Record, error)
	CreateUser(ctx context.Context, params CreateParams) (Record, error)
	SetRoleClaim(ctx context.Context, subjectID string, claims map[string]any) error
	DeleteUser(ctx context.Context, subjectID string) error
}
