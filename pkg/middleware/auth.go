package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jobportal/jobportal-api/internal/models"
	"github.com/jobportal/jobportal-api/internal/sessions"
)

// CookieName is the session cookie carrying the access token.
const CookieName = "token"

// userKey is the context key the authenticated principal is stored under.
const userKey = "user"

// Verifier is the minimal token-validation interface the middleware depends on.
// It returns the token subject (user id hex).
type Verifier interface {
	Verify(ctx context.Context, raw string) (string, error)
}

// UserLoader resolves a subject id to a user record.
type UserLoader interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}

const notAuthorizedMsg = "Not authorized to access this route"

// ExtractToken pulls the credential from the session cookie or, as a backup
// for API clients, the Authorization: Bearer header. Cookie takes precedence.
// Exported so the logout handler can blacklist the presented token.
func ExtractToken(c *gin.Context) string {
	if v, err := c.Cookie(CookieName); err == nil && v != "" {
		return v
	}
	auth := c.GetHeader("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	return ""
}

// Protect returns a Gin middleware that authenticates the request and attaches
// the principal to the context. The subject must still resolve to a user;
// tokens for deleted users are rejected.
func Protect(ver Verifier, users UserLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := ExtractToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": notAuthorizedMsg})
			return
		}

		// logout blacklist (no-op unless Redis is configured)
		if black, err := sessions.IsAccessTokenBlacklisted(c.Request.Context(), token); err == nil && black {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": notAuthorizedMsg})
			return
		}

		sub, err := ver.Verify(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": notAuthorizedMsg})
			return
		}

		u, err := users.GetByID(c.Request.Context(), sub)
		if err != nil || u == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": notAuthorizedMsg})
			return
		}

		c.Set(userKey, u)
		c.Next()
	}
}

// RequireRoles returns a role-gate middleware. It must run after Protect.
// Pure and stateless: it only inspects the attached principal.
func RequireRoles(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		u := CurrentUser(c)
		if u == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": notAuthorizedMsg})
			return
		}
		for _, r := range roles {
			if u.Role == r {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"message": fmt.Sprintf("User role %s is not authorized to access this route", u.Role),
		})
	}
}

// CurrentUser returns the principal attached by Protect, or nil.
func CurrentUser(c *gin.Context) *models.User {
	v, ok := c.Get(userKey)
	if !ok {
		return nil
	}
	u, _ := v.(*models.User)
	return u
}
