package middleware_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dippreneurlab/new-salt/internal/domain"
	"github.com/dippreneurlab/new-salt/internal/http/middleware"
	"github.com/dippreneurlab/new-salt/internal/identity"
)

func newTestRouter(provider identity.Provider, adminEmails []string) (*gin.Engine, *int) {
	gin.SetMode(gin.TestMode)
	auth := middleware.NewAuth(provider, adminEmails, zap.NewNop())

	hits := 0
	r := gin.New()
	r.GET("/me", auth.Authenticate, func(c *gin.Context) {
		id, _ := middleware.GetIdentity(c)
		c.JSON(http.StatusOK, gin.H{"uid": id.SubjectID, "role": id.Role})
	})
	r.GET("/admin", auth.Authenticate, auth.RequireAdmin, func(c *gin.Context) {
		hits++
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r, &hits
}

func doRequest(r *gin.Engine, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthenticateRejectsMissingHeader(t *testing.T) {
	r, hits := newTestRouter(&tokenVerifier{}, nil)

	w := doRequest(r, "")
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Zero(t, *hits)
}

func TestAuthenticateRejectsMalformedHeader(t *testing.T) {
	r, hits := newTestRouter(&tokenVerifier{}, nil)

	for _, header := range []string{"tok", "Basic tok", "Bearer ", "Bearer"} {
		w := doRequest(r, header)
		require.Equal(t, http.StatusUnauthorized, w.Code, "header %q", header)
	}
	require.Zero(t, *hits)
}

func TestAuthenticateRejectsFailedVerification(t *testing.T) {
	provider := &tokenVerifier{err: fmt.Errorf("verify token: %w", domain.ErrProvider)}
	r, hits := newTestRouter(provider, nil)

	w := doRequest(r, "Bearer bad-token")
	require.Equal(t, http.StatusUnauthorized, w.Code)
	// The verifier's error detail never reaches the response body.
	require.JSONEq(t, `{"error":"Unauthorized"}`, w.Body.String())
	require.Zero(t, *hits)
}

func TestRequireAdminRejectsNonAdminWithoutSideEffect(t *testing.T) {
	provider := &tokenVerifier{token: identity.Token{SubjectID: "u1", Email: "u1@ilovesalt.com"}}
	r, hits := newTestRouter(provider, nil)

	w := doRequest(r, "Bearer ok")
	require.Equal(t, http.StatusForbidden, w.Code)
	require.Zero(t, *hits)
}

func TestRequireAdminAllowsClaimAdmin(t *testing.T) {
	provider := &tokenVerifier{token: identity.Token{
		SubjectID: "u1",
		Email:     "u1@ilovesalt.com",
		Claims:    map[string]any{"role": "admin"},
	}}
	r, hits := newTestRouter(provider, nil)

	w := doRequest(r, "Bearer ok")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 1, *hits)
}

func TestRequireAdminAllowsAllowListAdmin(t *testing.T) {
	provider := &tokenVerifier{token: identity.Token{SubjectID: "u1", Email: "Boss@ilovesalt.com"}}
	r, hits := newTestRouter(provider, []string{"boss@ilovesalt.com"})

	w := doRequest(r, "Bearer ok")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 1, *hits)
}

func TestAuthenticateAttachesResolvedIdentity(t *testing.T) {
	provider := &tokenVerifier{token: identity.Token{
		SubjectID: "u7",
		Email:     "pm@ilovesalt.com",
		Claims:    map[string]any{"role": "pm"},
	}}
	r, _ := newTestRouter(provider, nil)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer ok")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"uid":"u7","role":"pm"}`, w.Body.String())
}

// tokenVerifier implements only the verification half of the provider.
type tokenVerifier struct {
	token identity.Token
	err   error
}

var _ identity.Provider = (*tokenVerifier)(nil)

func (v *tokenVerifier) VerifyToken(ctx context.Context, token string) (identity.Token, error) {
	if v.err != nil {
		return identity.Token{}, v.err
	}
	return v.token, nil
}

func (v *tokenVerifier) ListUsers(ctx context.Context, pageSize int, pageToken string) ([]identity.Record, string, error) {
	return nil, "", nil
}

func (v *tokenVerifier) GetUser(ctx context.Context, subjectID string) (identity.Record, error) {
	return identity.Record{}, domain.ErrNotFound
}

func (v *tokenVerifier) CreateUser(ctx context.Context, params identity.CreateParams) (identity.Record, error) {
	return identity.Record{}, domain.ErrProvider
}

func (v *tokenVerifier) SetRoleClaim(ctx context.Context, subjectID string, claims map[string]any) error {
	return nil
}

func (v *tokenVerifier) DeleteUser(ctx context.Context, subjectID string) error {
	return nil
}
