package delivery

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"storefront/internal/delivery/response"
	"storefront/internal/domain"
	"storefront/internal/logger"
	"storefront/internal/middleware"
)

// ClientHandler echoes what the caller sent in its request headers.
type ClientHandler struct {
	log *logrus.Entry
}

func NewClientHandler(log *logrus.Logger) *ClientHandler {
	return &ClientHandler{log: logger.Named(log, "routes.client")}
}

func (h *ClientHandler) RegisterRoutes(client gin.IRouter) {
	client.GET("/user-agent", h.UserAgent)
	client.GET("/headers", h.Headers)
}

type userAgentInfo struct {
	UserAgent string `json:"user_agent"`
	IsMobile  bool   `json:"is_mobile"`
	IsBot     bool   `json:"is_bot"`
}

func (h *ClientHandler) UserAgent(c *gin.Context) {
	ua := c.GetHeader("User-Agent")
	if ua == "" {
		handleError(c, h.log, domain.NewFieldValidation("User-Agent", "User-Agent header is required"), "Failed to parse user agent")
		return
	}
	response.SuccessResponse(c, http.StatusOK, "User agent parsed", userAgentInfo{
		UserAgent: ua,
		IsMobile:  strings.Contains(ua, "Mobile"),
		IsBot:     strings.Contains(strings.ToLower(ua), "bot"),
	})
}

type headerInfo struct {
	UserAgent string  `json:"user_agent"`
	Referer   *string `json:"referer"`
	RequestID *string `json:"request_id"`
}

func optionalHeader(c *gin.Context, name string) *string {
	if v := c.GetHeader(name); v != "" {
		return &v
	}
	return nil
}

// Headers reports the request id the client sent, not the generated one.
func (h *ClientHandler) Headers(c *gin.Context) {
	ua := c.GetHeader("User-Agent")
	if ua == "" {
		ua = "Unknown"
	}
	response.SuccessResponse(c, http.StatusOK, "Headers retrieved", headerInfo{
		UserAgent: ua,
		Referer:   optionalHeader(c, "Referer"),
		RequestID: optionalHeader(c, middleware.RequestIDHeader),
	})
}
