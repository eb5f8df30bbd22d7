package middleware

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"storefront/internal/auth"
	"storefront/internal/delivery/response"
	"storefront/internal/domain"
)

const (
	AccessTokenCookie = "access_token"
	APIKeyHeader      = "X-API-Key"
	TenantHeader      = "X-Tenant-ID"
	TenantPrefix      = "tenant-"

	currentUserKey = "current_user"
	tenantKey      = "tenant_id"

	minAPIKeyLen = 10
	maxAPIKeyLen = 100
)

var (
	errNotAuthenticated = errors.New("Not authenticated")
	errBadAuthHeader    = errors.New("Invalid authorization header format. Expected: Bearer <token>")
)

// UserLoader resolves the subject of a verified token.
type UserLoader interface {
	GetUser(ctx context.Context, id int) (*domain.User, error)
}

// Authenticate accepts a bearer token from the Authorization header, falling
// back to the access_token cookie, and stores the active user on the context.
func Authenticate(tokens *auth.TokenManager, users UserLoader, log *logrus.Entry) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := extractToken(c)
		if err != nil {
			log.Warnf("Middleware: %v", err)
			c.Header("WWW-Authenticate", "Bearer")
			response.Abort(c, http.StatusUnauthorized, err.Error())
			return
		}

		claims, err := tokens.Parse(raw)
		if err != nil {
			msg := "Could not validate credentials"
			if errors.Is(err, domain.ErrTokenExpired) {
				msg = "Token has expired"
			}
			log.Warnf("Middleware: Token rejected: %v", err)
			c.Header("WWW-Authenticate", "Bearer")
			response.Abort(c, http.StatusUnauthorized, msg)
			return
		}

		user, err := users.GetUser(c.Request.Context(), claims.UserID)
		if err != nil {
			var notFound *domain.NotFoundError
			if errors.As(err, &notFound) {
				log.Warnf("Middleware: Token subject %d no longer exists", claims.UserID)
				response.Abort(c, http.StatusUnauthorized, "User not found")
				return
			}
			log.Errorf("Middleware: Failed to load user %d: %v", claims.UserID, err)
			response.Abort(c, http.StatusInternalServerError, "An unexpected error occurred")
			return
		}
		if !user.IsActive {
			log.Warnf("Middleware: Inactive user %d attempted access", user.ID)
			response.Abort(c, http.StatusForbidden, "Inactive user")
			return
		}

		c.Set(currentUserKey, user)
		c.Next()
	}
}

func extractToken(c *gin.Context) (string, error) {
	if header := c.GetHeader("Authorization"); header != "" {
		if !strings.HasPrefix(header, "Bearer ") {
			return "", errBadAuthHeader
		}
		token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		if token == "" {
			return "", errNotAuthenticated
		}
		return token, nil
	}
	if cookie, err := c.Cookie(AccessTokenCookie); err == nil && cookie != "" {
		return strings.TrimPrefix(cookie, "Bearer "), nil
	}
	return "", errNotAuthenticated
}

// CurrentUser returns the user stored by Authenticate.
func CurrentUser(c *gin.Context) (*domain.User, bool) {
	v, ok := c.Get(currentUserKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*domain.User)
	return user, ok
}

// RequireRoles must run after Authenticate.
func RequireRoles(log *logrus.Entry, roles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			response.Abort(c, http.StatusUnauthorized, errNotAuthenticated.Error())
			return
		}
		if !user.HasRole(roles...) {
			log.Warnf("Middleware: User %d with role %s denied, requires %v", user.ID, user.Role, roles)
			response.Abort(c, http.StatusForbidden, fmt.Sprintf("Access denied. Required roles: %v", roles))
			return
		}
		c.Next()
	}
}

// APIKey admits partner requests carrying one of the configured keys.
func APIKey(keys []string, log *logrus.Entry) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(APIKeyHeader)
		if key == "" {
			log.Warn("Middleware: API key is missing")
			response.Abort(c, http.StatusUnauthorized, "API key required")
			return
		}
		if len(key) < minAPIKeyLen || len(key) > maxAPIKeyLen || !knownKey(keys, key) {
			log.Warnf("Middleware: Invalid API key ending in %s", lastFour(key))
			response.Abort(c, http.StatusForbidden, "Invalid API key")
			return
		}
		c.Next()
	}
}

func knownKey(keys []string, key string) bool {
	found := false
	for _, k := range keys {
		if subtle.ConstantTimeCompare([]byte(k), []byte(key)) == 1 {
			found = true
		}
	}
	return found
}

func lastFour(s string) string {
	if len(s) <= 4 {
		return "****"
	}
	return s[len(s)-4:]
}

// Tenant requires an X-Tenant-ID of the form tenant-<name>.
func Tenant(log *logrus.Entry) gin.HandlerFunc {
	return func(c *gin.Context) {
		tenant := c.GetHeader(TenantHeader)
		if tenant == "" {
			response.Abort(c, http.StatusBadRequest, "X-Tenant-ID header required")
			return
		}
		if !strings.HasPrefix(tenant, TenantPrefix) || len(tenant) == len(TenantPrefix) {
			log.Warnf("Middleware: Invalid tenant id %q", tenant)
			response.Abort(c, http.StatusBadRequest, "Invalid tenant ID format")
			return
		}
		c.Set(tenantKey, tenant)
		c.Next()
	}
}

func TenantID(c *gin.Context) string {
	return c.GetString(tenantKey)
}
