package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dippreneurlab/new-salt/internal/domain"
	"github.com/dippreneurlab/new-salt/internal/identity"
)

const identityKey = "identity"

// Auth resolves the caller's identity from the Authorization header and
// gates routes on role.
type Auth struct {
	Provider    identity.Provider
	AdminEmails []string
	Logger      *zap.Logger
}

func NewAuth(provider identity.Provider, adminEmails []string, logger *zap.Logger) *Auth {
	if logger == nil {
		logger = zap.L()
	}
	return &Auth{Provider: provider, AdminEmails: adminEmails, Logger: logger}
}

// Authenticate verifies the bearer token and attaches the resolved identity.
// Verifier failures are logged server-side only; the caller always sees the
// same generic unauthorized response.
func (m *Auth) Authenticate(c *gin.Context) {
	header := c.GetHeader("Authorization")
	if header == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	token, err := m.Provider.VerifyToken(c.Request.Context(), parts[1])
	if err != nil {
		m.Logger.Warn("token verification failed", zap.Error(err))
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	c.Set(identityKey, domain.Identity{
		SubjectID: token.SubjectID,
		Email:     token.Email,
		Role:      identity.ResolveRole(token.Claims, token.Email, m.AdminEmails),
	})
	c.Next()
}

// RequireAdmin rejects non-admin callers. It runs strictly after
// Authenticate; role requirements are never revealed to unauthenticated
// callers.
func (m *Auth) RequireAdmin(c *gin.Context) {
	id, ok := GetIdentity(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	if id.Role != domain.RoleAdmin {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		return
	}
	c.Next()
}

// GetIdentity exposes the authenticated identity to handlers.
func GetIdentity(c *gin.Context) (domain.Identity, bool) {
	value, ok := c.Get(identityKey)
	if !ok {
		return domain.Identity{}, false
	}
	id, ok := value.(domain.Identity)
	return id, ok
}
