package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/autocare/autocare-api/internal/models"
	appErrors "github.com/autocare/autocare-api/pkg/errors"
	"github.com/autocare/autocare-api/pkg/response"
)

// RequireCapability rejects users whose role lacks any of the capabilities.
func RequireCapability(caps ...models.Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		for _, capability := range caps {
			if !user.Role.Can(capability) {
				response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "action not allowed for role "+user.Role.String()))
				c.Abort()
				return
			}
		}
		c.Next()
	}
}
