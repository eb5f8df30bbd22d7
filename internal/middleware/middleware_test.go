package middleware

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/auth"
	"storefront/internal/delivery/response"
	"storefront/internal/domain"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

type stubUsers map[int]*domain.User

func (s stubUsers) GetUser(_ context.Context, id int) (*domain.User, error) {
	if u, ok := s[id]; ok {
		return u, nil
	}
	return nil, domain.NewNotFound("user", id)
}

func decode(t *testing.T, w *httptest.ResponseRecorder) response.Envelope {
	t.Helper()
	var env response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func okHandler(c *gin.Context) { c.String(http.StatusOK, "ok") }

func TestRequestIDGeneratedAndPropagated(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), RequestLogger(quietLogger()))
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, GetRequestID(c)) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	generated := w.Header().Get(RequestIDHeader)
	assert.Len(t, generated, 36)
	assert.Equal(t, generated, w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}

func TestRequestLoggerRecordsCaller(t *testing.T) {
	log, hook := logtest.NewNullLogger()
	r := gin.New()
	r.Use(RequestID(), RequestLogger(log))
	r.GET("/orders/:id", func(c *gin.Context) {
		c.Set(currentUserKey, &domain.User{ID: 7, Role: domain.RoleModerator})
		c.Set(tenantKey, "tenant-acme")
		c.Status(http.StatusConflict)
	})

	req := httptest.NewRequest(http.MethodGet, "/orders/42", nil)
	req.Header.Set(RequestIDHeader, "req-1")
	r.ServeHTTP(httptest.NewRecorder(), req)

	done := hook.LastEntry()
	require.NotNil(t, done)
	assert.Equal(t, logrus.WarnLevel, done.Level)
	assert.Equal(t, "req-1", done.Data["request_id"])
	assert.Equal(t, "/orders/:id", done.Data["route"])
	assert.Equal(t, "/orders/42", done.Data["path"])
	assert.Equal(t, http.StatusConflict, done.Data["status"])
	assert.Equal(t, 7, done.Data["user_id"])
	assert.Equal(t, domain.RoleModerator, done.Data["role"])
	assert.Equal(t, "tenant-acme", done.Data["tenant_id"])

	hook.Reset()
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing", nil))
	done = hook.LastEntry()
	require.NotNil(t, done)
	assert.Equal(t, "", done.Data["route"])
	assert.NotContains(t, done.Data, "user_id")
	assert.NotContains(t, done.Data, "tenant_id")
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), Recovery(quietLogger()))
	r.GET("/boom", func(c *gin.Context) { panic("kaboom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	env := decode(t, w)
	assert.Equal(t, response.StatusFail, env.Status)
	assert.Equal(t, "An unexpected error occurred", env.Message)
	assert.NotContains(t, w.Body.String(), "kaboom")
}

func TestMetricsExposeRequests(t *testing.T) {
	m := NewMetrics()
	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/items/:id", okHandler)
	r.GET("/metrics", gin.WrapH(m.Handler()))

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/items/7", nil))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `storefront_http_requests_total{method="GET",route="/items/:id",status="200"} 1`)
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(1, 2)
	fixed := time.Now()
	rl.now = func() time.Time { return fixed }

	assert.True(t, rl.Allow("a"))
	assert.True(t, rl.Allow("a"))
	assert.False(t, rl.Allow("a"))
	assert.True(t, rl.Allow("b"))

	fixed = fixed.Add(time.Second)
	assert.True(t, rl.Allow("a"))

	fixed = fixed.Add(2 * limiterIdleTTL)
	rl.Allow("c")
	assert.Len(t, rl.clients, 1)

	r := gin.New()
	r.Use(NewRateLimiter(0.001, 1).Middleware(quietLogger().WithField("logger", "test")))
	r.GET("/", okHandler)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
}

func TestAuthenticate(t *testing.T) {
	tokens, err := auth.NewTokenManager("test-secret")
	require.NoError(t, err)
	active := &domain.User{ID: 1, Username: "alice", Role: domain.RoleUser, IsActive: true}
	inactive := &domain.User{ID: 2, Username: "bob", Role: domain.RoleUser}
	ghost := &domain.User{ID: 3, Role: domain.RoleUser}
	users := stubUsers{1: active, 2: inactive}
	log := quietLogger().WithField("logger", "test")

	r := gin.New()
	r.GET("/me", Authenticate(tokens, users, log), func(c *gin.Context) {
		u, ok := CurrentUser(c)
		require.True(t, ok)
		c.String(http.StatusOK, u.Username)
	})
	r.GET("/admin", Authenticate(tokens, users, log), RequireRoles(log, domain.RoleAdmin), okHandler)

	issue := func(u *domain.User) string {
		tok, _, err := tokens.Issue(u, time.Minute)
		require.NoError(t, err)
		return tok
	}

	cases := []struct {
		name   string
		path   string
		header string
		cookie string
		status int
		msg    string
	}{
		{"no credentials", "/me", "", "", http.StatusUnauthorized, "Not authenticated"},
		{"wrong scheme", "/me", "Token abc", "", http.StatusUnauthorized, "Invalid authorization header format. Expected: Bearer <token>"},
		{"garbage token", "/me", "Bearer abc", "", http.StatusUnauthorized, "Could not validate credentials"},
		{"unknown user", "/me", "Bearer " + issue(ghost), "", http.StatusUnauthorized, "User not found"},
		{"inactive user", "/me", "Bearer " + issue(inactive), "", http.StatusForbidden, "Inactive user"},
		{"header token", "/me", "Bearer " + issue(active), "", http.StatusOK, ""},
		{"cookie token", "/me", "", issue(active), http.StatusOK, ""},
		{"missing role", "/admin", "Bearer " + issue(active), "", http.StatusForbidden, "Access denied. Required roles: [admin]"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			if tc.cookie != "" {
				req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: tc.cookie})
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tc.status, w.Code)
			if tc.msg != "" {
				assert.Equal(t, tc.msg, decode(t, w).Message)
			} else {
				assert.Equal(t, "alice", w.Body.String())
			}
		})
	}
}

func TestExpiredToken(t *testing.T) {
	tokens, err := auth.NewTokenManager("test-secret")
	require.NoError(t, err)
	tok, _, err := tokens.Issue(&domain.User{ID: 1, Role: domain.RoleUser}, -time.Minute)
	require.NoError(t, err)

	r := gin.New()
	r.GET("/me", Authenticate(tokens, stubUsers{}, quietLogger().WithField("logger", "test")), okHandler)
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Token has expired", decode(t, w).Message)
}

func TestAPIKeyAndTenant(t *testing.T) {
	log := quietLogger().WithField("logger", "test")
	r := gin.New()
	r.GET("/partner", APIKey([]string{"partner-key-0001"}, log), Tenant(log), func(c *gin.Context) {
		c.String(http.StatusOK, TenantID(c))
	})

	send := func(key, tenant string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/partner", nil)
		if key != "" {
			req.Header.Set(APIKeyHeader, key)
		}
		if tenant != "" {
			req.Header.Set(TenantHeader, tenant)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusUnauthorized, send("", "tenant-acme").Code)
	assert.Equal(t, http.StatusForbidden, send("short", "tenant-acme").Code)
	assert.Equal(t, http.StatusForbidden, send("partner-key-9999", "tenant-acme").Code)
	assert.Equal(t, http.StatusForbidden, send(strings.Repeat("k", 101), "tenant-acme").Code)
	assert.Equal(t, http.StatusBadRequest, send("partner-key-0001", "").Code)
	assert.Equal(t, http.StatusBadRequest, send("partner-key-0001", "acme").Code)

	w := send("partner-key-0001", "tenant-acme")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "tenant-acme", w.Body.String())
}
