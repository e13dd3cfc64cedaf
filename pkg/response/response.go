package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appErrors "github.com/mfreeman481/paysheet-api/pkg/errors"
)

// Envelope represents the common response contract.
type Envelope struct {
	Data     interface{}      `json:"data,omitempty"`
	Error    *appErrors.Error `json:"error,omitempty"`
	Warnings []string         `json:"warnings,omitempty"`
}

// JSON sends a success response with the pipeline warnings, if any.
func JSON(c *gin.Context, status int, data interface{}, warnings []string) {
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
	c.JSON(status, Envelope{Data: data, Warnings: warnings})
}

// Error sends an error response converting the error to the common structure.
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
	c.JSON(appErr.Status, Envelope{Error: appErr})
}

// NoContent sends a 204 response.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
