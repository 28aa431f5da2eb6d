// Package firebase adapts the Firebase Admin SDK to the identity.Provider
// contract consumed by the rest of the service.
package firebase

import (
	"context"
	"fmt"
	"time"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/dippreneurlab/new-salt/internal/domain"
	"github.com/dippreneurlab/new-salt/internal/identity"
)

var _ identity.Provider = (*Provider)(nil)

// Provider talks to Firebase Authentication.
type Provider struct {
	client *auth.Client
}

// New initializes the Admin SDK client. When credentialsFile is empty the
// SDK falls back to application default credentials.
func New(ctx context.Context, projectID, credentialsFile string) (*Provider, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	var cfg *firebase.Config
	if projectID != "" {
		cfg = &firebase.Config{ProjectID: projectID}
	}

	app, err := firebase.NewApp(ctx, cfg, opts...)
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("init firebase auth: %w", err)
	}
	return &Provider{client: client}, nil
}

func (p *Provider) VerifyToken(ctx context.Context, token string) (identity.Token, error) {
	decoded, err := p.client.VerifyIDToken(ctx, token)
	if err != nil {
		return identity.Token{}, providerErr("verify token", err)
	}
	email, _ := decoded.Claims["email"].(string)
	return identity.Token{
		SubjectID: decoded.UID,
		Email:     email,
		Claims:    decoded.Claims,
	}, nil
}

func (p *Provider) ListUsers(ctx context.Context, pageSize int, pageToken string) ([]identity.Record, string, error) {
	pager := iterator.NewPager(p.client.Users(ctx, ""), pageSize, pageToken)

	var page []*auth.ExportedUserRecord
	nextToken, err := pager.NextPage(&page)
	if err != nil {
		return nil, "", providerErr("list users", err)
	}

	records := make([]identity.Record, 0, len(page))
	for _, u := range page {
		records = append(records, recordFromUser(u.UserRecord))
	}
	return records, nextToken, nil
}

func (p *Provider) GetUser(ctx context.Context, subjectID string) (identity.Record, error) {
	u, err := p.client.GetUser(ctx, subjectID)
	if err != nil {
		return identity.Record{}, providerErr("get user", err)
	}
	return recordFromUser(u), nil
}

func (p *Provider) CreateUser(ctx context.Context, params identity.CreateParams) (identity.Record, error) {
	toCreate := (&auth.UserToCreate{}).
		Email(params.Email).
		Password(params.Password).
		EmailVerified(true)
	if params.DisplayName != "" {
		toCreate = toCreate.DisplayName(params.DisplayName)
	}
	if params.PhoneNumber != "" {
		toCreate = toCreate.PhoneNumber(params.PhoneNumber)
	}

	u, err := p.client.CreateUser(ctx, toCreate)
	if err != nil {
		return identity.Record{}, providerErr("create user", err)
	}
	return recordFromUser(u), nil
}

func (p *Provider) SetRoleClaim(ctx context.Context, subjectID string, claims map[string]any) error {
	if err := p.client.SetCustomUserClaims(ctx, subjectID, claims); err != nil {
		return providerErr("set role claim", err)
	}
	return nil
}

func (p *Provider) DeleteUser(ctx context.Context, subjectID string) error {
	if err := p.client.DeleteUser(ctx, subjectID); err != nil {
		return providerErr("delete user", err)
	}
	return nil
}

func recordFromUser(u *auth.UserRecord) identity.Record {
	rec := identity.Record{
		SubjectID:   u.UID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		PhoneNumber: u.PhoneNumber,
		Disabled:    u.Disabled,
		Claims:      u.CustomClaims,
	}
	if u.UserMetadata != nil {
		rec.CreatedAt = millisTime(u.UserMetadata.CreationTimestamp)
		rec.LastLogin = millisTime(u.UserMetadata.LastLogInTimestamp)
	}
	return rec
}

func millisTime(ms int64) *time.Time {
	if ms <= 0 {
		return nil
	}
	t := time.UnixMilli(ms).UTC()
	return &t
}

// providerErr folds SDK failures into the domain taxonomy. The upstream
// detail stays in the message for server-side logs; callers branch only on
// the wrapped sentinel.
func providerErr(op string, err error) error {
	if auth.IsUserNotFound(err) {
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	}
	return fmt.Errorf("%s: %v: %w", op, err, domain.ErrProvider)
}
