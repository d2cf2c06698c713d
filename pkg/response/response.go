// Package response writes the JSON envelope every AutoCare endpoint returns.
package response

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/autocare/autocare-api/internal/models"
	appErrors "github.com/autocare/autocare-api/pkg/errors"
)

// Envelope is {data, pagination, meta} on success and {error} on failure.
type Envelope struct {
	Data       interface{}            `json:"data,omitempty"`
	Error      *appErrors.Error       `json:"error,omitempty"`
	Pagination *models.Pagination     `json:"pagination,omitempty"`
	Meta       map[string]interface{} `json:"meta,omitempty"`
}

func noStore(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
}

// JSON writes data with an optional page descriptor and at most one meta map.
func JSON(c *gin.Context, status int, data interface{}, pagination *models.Pagination, meta ...map[string]interface{}) {
	body := Envelope{Data: data, Pagination: pagination}
	for _, m := range meta {
		if m != nil {
			body.Meta = m
			break
		}
	}
	noStore(c)
	c.JSON(status, body)
}

// Created responds with HTTP 201 Created.
func Created(c *gin.Context, data interface{}) {
	JSON(c, http.StatusCreated, data, nil)
}

// Error maps err to its status. Server-side failures are attached to the
// gin context for the request logger and expose their cause under details.
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	if appErr.Status >= http.StatusInternalServerError {
		_ = c.Error(err)
		if appErr.Err != nil && appErr.Details == nil {
			appErr = appErrors.WithDetails(appErr, map[string]interface{}{"cause": appErr.Err.Error()})
		}
	}
	noStore(c)
	c.AbortWithStatusJSON(appErr.Status, Envelope{Error: appErr})
}

// NoContent sends a 204 response.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
	c.Writer.WriteHeaderNow()
}

var quoteEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// Attachment sends data as a file download named filename.
func Attachment(c *gin.Context, contentType, filename string, data []byte) {
	c.Header("Content-Disposition", `attachment; filename="`+quoteEscaper.Replace(filename)+`"`)
	noStore(c)
	c.Data(http.StatusOK, contentType, data)
}
