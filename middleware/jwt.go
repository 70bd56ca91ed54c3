package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/silicus-edu/ta-backend/types"
	"github.com/silicus-edu/ta-backend/utils"
)

const adminContextKey = "admin"

// AdminAuthMiddleware guards the instructor routes. It requires a Bearer
// token issued by the login endpoint and stores the parsed claims on the
// request context.
func AdminAuthMiddleware(c *gin.Context) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, types.DataResponse{
			Status:  "error",
			Message: "Authorization header is required",
		})
		return
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, types.DataResponse{
			Status:  "error",
			Message: "Authorization header format must be Bearer {token}",
		})
		return
	}

	claims, err := utils.ParseAdminToken(parts[1])
	if err != nil || claims.Role != "admin" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, types.DataResponse{
			Status:  "error",
			Message: "Invalid admin token",
		})
		return
	}

	c.Set(adminContextKey, claims)
	c.Next()
}
