package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"go.uber.org/zap"

	"github.com/dippreneurlab/new-salt/internal/config"
	"github.com/dippreneurlab/new-salt/internal/domain"
	"github.com/dippreneurlab/new-salt/internal/identity"
)

// DirectoryService proxies user CRUD against the identity provider,
// translating between provider records and the internal role model. All of
// its operations are admin-gated at the router.
type DirectoryService struct {
	provider     identity.Provider
	emailPattern *regexp.Regexp
	minPassword  int
	pageSize     int
	logger       *zap.Logger
}

// CreateUserInput carries the fields of a directory create request.
type CreateUserInput struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
	PhoneNumber string `json:"phoneNumber"`
	Role        string `json:"role"`
}

func NewDirectoryService(provider identity.Provider, cfg config.Config, logger *zap.Logger) (*DirectoryService, error) {
	pattern, err := regexp.Compile(cfg.UserEmailPattern)
	if err != nil {
		return nil, fmt.Errorf("compile user email pattern: %w", err)
	}
	return &DirectoryService{
		provider:     provider,
		emailPattern: pattern,
		minPassword:  cfg.MinPasswordLength,
		pageSize:     cfg.ProviderPageSize,
		logger:       logger,
	}, nil
}

// List pages through the provider's entire user set. A failed page aborts
// the whole listing; a partial result is never returned as if complete.
func (s *DirectoryService) List(ctx context.Context) ([]domain.ManagedUser, error) {
	var users []domain.ManagedUser
	pageToken := ""
	for {
		records, nextToken, err := s.provider.ListUsers(ctx, s.pageSize, pageToken)
		if err != nil {
			return nil, err
		}
		for _, rec := range records {
			users = append(users, managedUserFromRecord(rec))
		}
		if nextToken == "" {
			return users, nil
		}
		pageToken = nextToken
	}
}

// Create validates the input, creates the identity, attaches the role claim
// and returns the canonical re-fetched record. If claim attachment fails the
// fresh identity is deleted so the failure leaves no half-configured user.
func (s *DirectoryService) Create(ctx context.Context, input CreateUserInput) (domain.ManagedUser, error) {
	role, err := s.validateCreate(input)
	if err != nil {
		return domain.ManagedUser{}, err
	}

	created, err := s.provider.CreateUser(ctx, identity.CreateParams{
		Email:       input.Email,
		Password:    input.Password,
		DisplayName: input.DisplayName,
		PhoneNumber: input.PhoneNumber,
	})
	if err != nil {
		return domain.ManagedUser{}, err
	}

	if err := s.provider.SetRoleClaim(ctx, created.SubjectID, map[string]any{identity.RoleClaimKey: string(role)}); err != nil {
		if delErr := s.provider.DeleteUser(ctx, created.SubjectID); delErr != nil && !errors.Is(delErr, domain.ErrNotFound) {
			s.logger.Error("compensating delete after claim failure failed",
				zap.String("subject_id", created.SubjectID),
				zap.Error(delErr),
			)
		}
		return domain.ManagedUser{}, err
	}

	final, err := s.provider.GetUser(ctx, created.SubjectID)
	if err != nil {
		return domain.ManagedUser{}, err
	}
	return managedUserFromRecord(final), nil
}

// UpdateRole merges the new role into the subject's existing claim set,
// preserving unrelated claim keys, and returns the post-mutation record.
func (s *DirectoryService) UpdateRole(ctx context.Context, subjectID, rawRole string) (domain.ManagedUser, error) {
	role := domain.Role(rawRole)
	if !role.Valid() {
		return domain.ManagedUser{}, domain.Invalid("role", "role must be admin, pm, or user")
	}

	record, err := s.provider.GetUser(ctx, subjectID)
	if err != nil {
		return domain.ManagedUser{}, err
	}

	claims := make(map[string]any, len(record.Claims)+1)
	for k, v := range record.Claims {
		claims[k] = v
	}
	claims[identity.RoleClaimKey] = string(role)

	if err := s.provider.SetRoleClaim(ctx, subjectID, claims); err != nil {
		return domain.ManagedUser{}, err
	}

	updated, err := s.provider.GetUser(ctx, subjectID)
	if err != nil {
		return domain.ManagedUser{}, err
	}
	return managedUserFromRecord(updated), nil
}

// Delete removes the subject from the provider. A missing subject counts as
// success, so repeated deletes are idempotent for callers.
func (s *DirectoryService) Delete(ctx context.Context, subjectID string) error {
	if err := s.provider.DeleteUser(ctx, subjectID); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	return nil
}

func (s *DirectoryService) validateCreate(input CreateUserInput) (domain.Role, error) {
	if input.Email == "" || !s.emailPattern.MatchString(input.Email) {
		return "", domain.Invalid("email", "email must match the organization domain")
	}
	if len(input.Password) < s.minPassword {
		return "", domain.Invalid("password", "password must be at least %d characters", s.minPassword)
	}
	role := domain.RoleUser
	if input.Role != "" {
		role = domain.Role(input.Role)
		if !role.Valid() {
			return "", domain.Invalid("role", "role must be admin, pm, or user")
		}
	}
	return role, nil
}

// managedUserFromRecord builds the listing view. The role comes from the
// stored claim alone; the admin allow-list applies only to live sessions.
func managedUserFromRecord(rec identity.Record) domain.ManagedUser {
	role, ok := identity.RoleFromClaims(rec.Claims)
	if !ok {
		role = domain.RoleUser
	}
	return domain.ManagedUser{
		SubjectID:   rec.SubjectID,
		Email:       rec.Email,
		DisplayName: rec.DisplayName,
		PhoneNumber: rec.PhoneNumber,
		Role:        role,
		Disabled:    rec.Disabled,
		CreatedAt:   rec.CreatedAt,
		LastLogin:   rec.LastLogin,
	}
}
