package delivery

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"storefront/internal/delivery/response"
	"storefront/internal/logger"
)

const (
	ThemeCookie    = "theme"
	LanguageCookie = "language"
	TimezoneCookie = "timezone"
	CartCookie     = "cart_id"

	themeMaxAge = 365 * 24 * 60 * 60
	cartMaxAge  = 30 * 24 * 60 * 60
)

// PreferenceHandler keeps client preferences in cookies only.
type PreferenceHandler struct {
	cookieSecure bool
	log          *logrus.Entry
}

func NewPreferenceHandler(cookieSecure bool, log *logrus.Logger) *PreferenceHandler {
	return &PreferenceHandler{cookieSecure: cookieSecure, log: logger.Named(log, "routes.preferences")}
}

func (h *PreferenceHandler) RegisterRoutes(api gin.IRouter) {
	api.GET("/preferences", h.GetPreferences)
	api.GET("/preferences/theme", h.GetTheme)
	api.POST("/preferences/theme", h.SetTheme)
	api.GET("/cart", h.GetCart)
}

func cookieOr(c *gin.Context, name, fallback string) string {
	if v, err := c.Cookie(name); err == nil && v != "" {
		return v
	}
	return fallback
}

type preferences struct {
	Theme    string `json:"theme"`
	Language string `json:"language"`
	Timezone string `json:"timezone"`
}

func (h *PreferenceHandler) GetPreferences(c *gin.Context) {
	response.SuccessResponse(c, http.StatusOK, "Preferences retrieved successfully", preferences{
		Theme:    cookieOr(c, ThemeCookie, "light"),
		Language: cookieOr(c, LanguageCookie, "en"),
		Timezone: cookieOr(c, TimezoneCookie, "UTC"),
	})
}

func (h *PreferenceHandler) GetTheme(c *gin.Context) {
	theme := cookieOr(c, ThemeCookie, "light")
	response.SuccessResponse(c, http.StatusOK, "Theme retrieved successfully", gin.H{
		"theme":        theme,
		"is_dark_mode": theme == "dark",
	})
}

type themeQuery struct {
	Theme string `form:"theme" binding:"required,oneof=light dark"`
}

// SetTheme stores the theme for a year; scripts may read it.
func (h *PreferenceHandler) SetTheme(c *gin.Context) {
	var q themeQuery
	if err := bindQuery(c, &q); err != nil {
		handleError(c, h.log, err, "Failed to set theme")
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(ThemeCookie, q.Theme, themeMaxAge, "/", "", h.cookieSecure, false)
	response.SuccessResponse(c, http.StatusOK, "Theme set to "+q.Theme, gin.H{"theme": q.Theme})
}

func (h *PreferenceHandler) GetCart(c *gin.Context) {
	cartID := cookieOr(c, CartCookie, "")
	if _, err := uuid.Parse(cartID); err != nil {
		cartID = uuid.NewString()
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(CartCookie, cartID, cartMaxAge, "/", "", h.cookieSecure, true)
		h.log.Debugf("Issued new cart %s", cartID)
	}
	response.SuccessResponse(c, http.StatusOK, "Cart retrieved successfully", gin.H{
		"cart_id": cartID,
		"items":   []interface{}{},
	})
}
