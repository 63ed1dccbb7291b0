package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vaibhavvyavahare/railtrace/logger"
	"github.com/vaibhavvyavahare/railtrace/middleware"
	"github.com/vaibhavvyavahare/railtrace/services"
	"github.com/vaibhavvyavahare/railtrace/utils"
)

// respondError renders err as {"success":false,"code","message","detail"?}.
// Errors that are not AppErrors become 500 INTERNAL_ERROR.
func respondError(c *gin.Context, err error) {
	appErr, ok := utils.AsAppError(err)
	if !ok {
		appErr = utils.Internal("INTERNAL_ERROR", "Internal server error", err)
	}

	if appErr.Status >= http.StatusInternalServerError {
		logger.FromContext(c.Request.Context()).Error().
			Err(err).
			Str("code", appErr.Code).
			Msg(appErr.Message)
	}
	_ = c.Error(err)

	body := gin.H{
		"success": false,
		"code":    appErr.Code,
		"message": appErr.Message,
	}
	if appErr.Detail != "" {
		body["detail"] = appErr.Detail
	}
	c.AbortWithStatusJSON(appErr.Status, body)
}

// bindJSON decodes the request body into dest, rendering a VALIDATION_ERROR on failure
func bindJSON(c *gin.Context, dest interface{}) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		respondError(c, utils.ValidationError(err))
		return false
	}
	return true
}

// requireSelf checks that the token subject owns the resource identified by id
func requireSelf(c *gin.Context, id string) bool {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		respondError(c, utils.Unauthorized("UNAUTHORIZED", "Could not extract user information"))
		return false
	}
	if userID != id {
		respondError(c, utils.Forbidden("FORBIDDEN", "You can only act on your own account"))
		return false
	}
	return true
}

// vendorOwner returns the caller's vendor id when the caller is a vendor and
// "" for other roles. Vendors only see their own records.
func vendorOwner(c *gin.Context) (string, bool) {
	role, err := middleware.GetRole(c)
	if err != nil {
		respondError(c, utils.Unauthorized("UNAUTHORIZED", "Could not extract user information"))
		return "", false
	}
	if role != services.RoleVendor {
		return "", true
	}
	return currentUser(c)
}

// scopeToOwner narrows a vendor_id filter to the calling vendor. A vendor
// asking for another vendor's records gets 403.
func scopeToOwner(c *gin.Context, vendorID *string) bool {
	owner, ok := vendorOwner(c)
	if !ok {
		return false
	}
	if owner == "" {
		return true
	}
	if *vendorID != "" && *vendorID != owner {
		respondError(c, utils.Forbidden("FORBIDDEN", "You can only act on your own account"))
		return false
	}
	*vendorID = owner
	return true
}

// currentUser returns the token subject, rendering 401 when absent
func currentUser(c *gin.Context) (string, bool) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		respondError(c, utils.Unauthorized("UNAUTHORIZED", "Could not extract user information"))
		return "", false
	}
	return userID, true
}

// withSuccess merges "success": true into a JSON object
func withSuccess(fields gin.H) gin.H {
	fields["success"] = true
	return fields
}
