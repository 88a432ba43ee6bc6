package middleware

import (
	"github.com/gin-gonic/gin"

	apperrors "centavo/internal/errors"
	"centavo/internal/services"
)

// organizationHeader names the active organization for a request. Tenant
// selection is always explicit: there is no server-side "current
// organization" session state.
const organizationHeader = "X-Organization-ID"

// OrganizationMiddleware resolves the active organization from the request
// header and verifies the authenticated user's membership before any handler
// runs. Requires AuthMiddleware earlier in the chain.
func OrganizationMiddleware(orgSvc services.OrganizationServicer) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("userID")
		if userID == "" {
			abortWithAppError(c, apperrors.ErrUnauthorized)
			return
		}

		organizationID := c.GetHeader(organizationHeader)
		if organizationID == "" {
			abortWithAppError(c, apperrors.ErrNoOrganization)
			return
		}

		member, err := orgSvc.IsMember(userID, organizationID)
		if err != nil {
			abortWithAppError(c, apperrors.ErrInternalServer)
			return
		}
		if !member {
			abortWithAppError(c, apperrors.ErrNotMember)
			return
		}

		c.Set("organizationID", organizationID)
		c.Next()
	}
}

func abortWithAppError(c *gin.Context, appErr *apperrors.AppError) {
	c.AbortWithStatusJSON(appErr.StatusCode, gin.H{
		"error": gin.H{
			"code":    appErr.Code,
			"message": appErr.Message,
		},
	})
}
