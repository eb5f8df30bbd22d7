package delivery

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"storefront/internal/auth"
	"storefront/internal/delivery/response"
	"storefront/internal/domain"
	"storefront/internal/logger"
	"storefront/internal/middleware"
	"storefront/internal/validation"
)

// SessionSettings controls token lifetime and the access token cookie.
type SessionSettings struct {
	AccessTTL     time.Duration
	RememberMeTTL time.Duration
	CookieSecure  bool
}

type AuthHandler struct {
	users    domain.UserUseCase
	tokens   *auth.TokenManager
	settings SessionSettings
	log      *logrus.Entry
}

func NewAuthHandler(users domain.UserUseCase, tokens *auth.TokenManager, settings SessionSettings, log *logrus.Logger) *AuthHandler {
	return &AuthHandler{
		users:    users,
		tokens:   tokens,
		settings: settings,
		log:      logger.Named(log, "routes.auth"),
	}
}

func (h *AuthHandler) RegisterRoutes(router gin.IRouter, authenticated gin.HandlerFunc) {
	router.POST("/login", h.Login)
	router.POST("/logout", h.Logout)
	router.GET("/me", authenticated, h.Me)
	router.POST("/password", authenticated, h.ChangePassword)
}

// Login accepts JSON or form credentials and sets the token as an http-only cookie.
func (h *AuthHandler) Login(c *gin.Context) {
	var in domain.LoginRequest
	if err := c.ShouldBind(&in); err != nil {
		handleError(c, h.log, validation.AsValidationError(err), "Login failed")
		return
	}

	user, err := h.users.Authenticate(c.Request.Context(), in.Username, in.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			c.Header("WWW-Authenticate", "Bearer")
		}
		handleError(c, h.log, err, "Login failed")
		return
	}

	ttl := h.settings.AccessTTL
	if in.RememberMe {
		ttl = h.settings.RememberMeTTL
	}
	token, _, err := h.tokens.Issue(user, ttl)
	if err != nil {
		handleError(c, h.log, err, "Login failed")
		return
	}

	maxAge := int(ttl.Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.AccessTokenCookie, token, maxAge, "/", "", h.settings.CookieSecure, true)

	h.log.Infof("User %s logged in (remember_me=%t)", user.Username, in.RememberMe)
	response.SuccessResponse(c, http.StatusOK, "Login successful", domain.TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   maxAge,
	})
}

// Logout only drops the cookie; issued tokens stay valid until they expire.
func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.AccessTokenCookie, "", -1, "/", "", h.settings.CookieSecure, true)
	response.SuccessResponse(c, http.StatusOK, "Logged out successfully", nil)
}

func (h *AuthHandler) Me(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	profile, err := h.users.GetProfile(c.Request.Context(), user, user.ID)
	if err != nil {
		handleError(c, h.log, err, "Failed to retrieve profile")
		return
	}
	response.SuccessResponse(c, http.StatusOK, "Profile retrieved successfully", domain.NewUserProfileResponse(profile))
}

func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var in domain.PasswordReset
	if err := bindJSON(c, &in); err != nil {
		handleError(c, h.log, err, "Failed to change password")
		return
	}
	user, _ := middleware.CurrentUser(c)

	if err := h.users.ChangePassword(c.Request.Context(), user, in); err != nil {
		handleError(c, h.log, err, "Failed to change password")
		return
	}
	h.log.Infof("User %d changed password", user.ID)
	response.SuccessResponse(c, http.StatusOK, "Password changed successfully", nil)
}
