package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/examroom/internal/model"
	"github.com/stemsi/examroom/internal/response"
)

// RequireRole rejects tokens of any other role. Must run after Authenticate.
func RequireRole(role model.UserRole) gin.HandlerFunc {
	denied := response.ErrForbidden
	switch role {
	case model.RoleAdmin:
		denied = response.ErrAdminAccessOnly
	case model.RoleStudent:
		denied = response.ErrStudentAccessOnly
	}

	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}
		if claims.Role != role {
			response.AbortFail(c, http.StatusForbidden, denied)
			return
		}
		c.Next()
	}
}
