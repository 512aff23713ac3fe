package middleware

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"hotel-ops/models"
	"hotel-ops/services"
	"hotel-ops/utils"
)

const (
	PropertyIDKey    = "propertyID"
	StaffUsernameKey = "staffUsername"
	StaffRoleKey     = "staffRole"

	PropertyHeader = "X-Hotel-ID"
)

// PropertyScope reads the X-Hotel-ID header. Handlers behind it always see
// a non-zero property id.
func PropertyScope() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader(PropertyHeader))
		if raw == "" {
			utils.JSONError(c, http.StatusBadRequest, "error.missingPropertyId",
				"X-Hotel-ID header is required", gin.H{"field": "X-Hotel-ID"})
			return
		}
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || id == 0 {
			utils.JSONError(c, http.StatusBadRequest, "error.invalidPropertyId",
				"X-Hotel-ID must be a positive integer", gin.H{"field": "X-Hotel-ID"})
			return
		}
		c.Set(PropertyIDKey, uint(id))
		c.Next()
	}
}

// Auth checks HTTP basic credentials against staff accounts.
type Auth struct {
	Service  *services.AuthService
	Disabled bool
}

// RequireRoles lets the request through when the caller's role is one of
// roles. Admins pass every check. Staff bound to a property may only act on
// that property.
func (a *Auth) RequireRoles(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if a == nil || a.Disabled {
			c.Next()
			return
		}

		username, password, ok := c.Request.BasicAuth()
		if !ok {
			c.Header("WWW-Authenticate", `Basic realm="hotel-ops"`)
			utils.JSONError(c, http.StatusUnauthorized, "error.unauthorized", "authentication required", nil)
			return
		}
		staff, err := a.Service.Authenticate(c.Request.Context(), username, password)
		if err != nil {
			if !errors.Is(err, services.ErrInvalidCredentials) {
				log.Printf("❌ auth lookup failed for %s: %v", username, err)
				utils.JSONError(c, http.StatusInternalServerError, "error.internal", "authentication failed", nil)
				return
			}
			c.Header("WWW-Authenticate", `Basic realm="hotel-ops"`)
			utils.JSONError(c, http.StatusUnauthorized, "error.unauthorized", "invalid username or password", nil)
			return
		}

		if staff.Role != models.RoleAdmin {
			if !hasRole(staff.Role, roles) {
				utils.JSONError(c, http.StatusForbidden, "error.forbidden",
					"role "+staff.Role+" cannot perform this action", nil)
				return
			}
			if pid, ok := c.Get(PropertyIDKey); ok && staff.PropertyID != nil && *staff.PropertyID != pid.(uint) {
				utils.JSONError(c, http.StatusForbidden, "error.forbidden", "staff account belongs to another property", nil)
				return
			}
		}

		c.Set(StaffUsernameKey, staff.Username)
		c.Set(StaffRoleKey, staff.Role)
		c.Next()
	}
}

func hasRole(role string, allowed []string) bool {
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}
