package delivery

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"storefront/internal/delivery/response"
	"storefront/internal/domain"
	"storefront/internal/middleware"
	"storefront/internal/validation"
)

// HTTPError already carries its status and is written as is.
type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string { return e.Message }

func NewHTTPError(status int, format string, args ...interface{}) *HTTPError {
	return &HTTPError{Status: status, Message: fmt.Sprintf(format, args...)}
}

// mapErrorToStatus resolves err to a status and a client-safe message. The
// message is empty for errors whose text must not leave the service.
func mapErrorToStatus(err error) (int, string) {
	var (
		httpErr   *HTTPError
		validErr  *domain.ValidationError
		invalidID *domain.InvalidIDError
		notFound  *domain.NotFoundError
		stockErr  *domain.InsufficientStockError
		conflict  *domain.ConflictError
		forbidden *domain.ForbiddenError
	)
	switch {
	case errors.As(err, &httpErr):
		return httpErr.Status, httpErr.Message
	case errors.As(err, &validErr):
		return http.StatusBadRequest, validErr.Message
	case errors.As(err, &invalidID):
		return http.StatusBadRequest, invalidID.Error()
	case errors.As(err, &notFound):
		return http.StatusNotFound, capitalize(notFound.Error())
	case errors.As(err, &stockErr):
		return http.StatusConflict, fmt.Sprintf("Insufficient stock for product %s. Available: %d, requested: %d",
			domain.FormatSKU(stockErr.ProductID), stockErr.Available, stockErr.Requested)
	case errors.As(err, &conflict):
		return http.StatusConflict, conflict.Message
	case errors.As(err, &forbidden):
		return http.StatusForbidden, forbidden.Message
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Incorrect username or password"
	case errors.Is(err, domain.ErrInactiveAccount):
		return http.StatusForbidden, "Inactive user"
	case errors.Is(err, domain.ErrTokenExpired):
		return http.StatusUnauthorized, "Token has expired"
	case errors.Is(err, domain.ErrTokenInvalid):
		return http.StatusUnauthorized, "Could not validate credentials"
	case errors.Is(err, domain.ErrPaymentDeclined):
		return http.StatusPaymentRequired, "Payment was declined"
	case errors.Is(err, domain.ErrUpstreamTimeout):
		return http.StatusGatewayTimeout, "Upstream service timed out"
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		return http.StatusServiceUnavailable, "Upstream service is unavailable"
	case errors.Is(err, domain.ErrUpstreamBadResponse):
		return http.StatusBadGateway, "Upstream service returned an invalid response"
	default:
		return http.StatusInternalServerError, ""
	}
}

// handleError writes the failure envelope for err. Unexpected errors are
// logged with request context and answered with fallback.
func handleError(c *gin.Context, log *logrus.Entry, err error, fallback string) {
	status, message := mapErrorToStatus(err)
	entry := log.WithFields(logrus.Fields{
		"method":     c.Request.Method,
		"path":       c.Request.URL.Path,
		"request_id": middleware.GetRequestID(c),
		"status":     status,
	})

	if message == "" {
		entry.Errorf("%s: %v", fallback, err)
		response.ErrorResponse(c, status, fallback)
		return
	}
	if status >= http.StatusInternalServerError {
		entry.Errorf("Upstream failure: %v", err)
	} else {
		entry.Warnf("Request rejected: %v", err)
	}

	var validErr *domain.ValidationError
	if errors.As(err, &validErr) && len(validErr.Details) > 0 {
		response.ValidationResponse(c, status, message, validErr.Details)
		return
	}
	response.ErrorResponse(c, status, message)
}

// bindJSON decodes and validates the body into obj.
func bindJSON(c *gin.Context, obj interface{}) error {
	if err := c.ShouldBindJSON(obj); err != nil {
		return validation.AsValidationError(err)
	}
	return nil
}

// bindQuery decodes and validates query parameters into obj.
func bindQuery(c *gin.Context, obj interface{}) error {
	if err := c.ShouldBindQuery(obj); err != nil {
		return validation.AsValidationError(err)
	}
	return nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	if s[0] >= 'a' && s[0] <= 'z' {
		return string(s[0]-'a'+'A') + s[1:]
	}
	return s
}
