// Package response writes the JSON envelope shared by every endpoint.
package response

import (
	"github.com/gin-gonic/gin"

	"storefront/internal/domain"
)

const (
	StatusSuccess = "Success"
	StatusFail    = "Fail"
)

type Envelope struct {
	Status  string               `json:"Status"`
	Message string               `json:"Message"`
	Data    interface{}          `json:"Data,omitempty"`
	Details []domain.ErrorDetail `json:"Details,omitempty"`
}

func SuccessResponse(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, Envelope{Status: StatusSuccess, Message: message, Data: data})
}

func ErrorResponse(c *gin.Context, status int, message string) {
	c.JSON(status, Envelope{Status: StatusFail, Message: message})
}

func ValidationResponse(c *gin.Context, status int, message string, details []domain.ErrorDetail) {
	c.JSON(status, Envelope{Status: StatusFail, Message: message, Details: details})
}

// Abort writes a failure envelope and stops the handler chain.
func Abort(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, Envelope{Status: StatusFail, Message: message})
}
