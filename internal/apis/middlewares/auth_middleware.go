package middlewares

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/hq040506/DL-student-assistant/internal/apis/dtos"
	"github.com/hq040506/DL-student-assistant/internal/di"
	"github.com/hq040506/DL-student-assistant/internal/utils"
)

func AuthMiddleware() gin.HandlerFunc {
	var jwtService utils.JWTService
	if err := di.DiContainer.Invoke(func(service utils.JWTService) {
		jwtService = service
	}); err != nil {
		log.Fatalf("Failed to get JWT service: %v", err)
	}
	return NewAuthMiddleware(jwtService)
}

// NewAuthMiddleware checks the Bearer token and sets userID on the context.
func NewAuthMiddleware(jwtService utils.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			errorMsg := "Authorization header is required"
			c.JSON(http.StatusUnauthorized, dtos.Response{
				Success: false,
				Error:   &errorMsg,
			})
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			errorMsg := "Invalid authorization format. Use: Bearer <token>"
			c.JSON(http.StatusUnauthorized, dtos.Response{
				Success: false,
				Error:   &errorMsg,
			})
			c.Abort()
			return
		}

		userID, err := jwtService.ValidateToken(parts[1])
		if err != nil {
			errorMsg := "Invalid or expired token"
			c.JSON(http.StatusUnauthorized, dtos.Response{
				Success: false,
				Error:   &errorMsg,
			})
			c.Abort()
			return
		}

		// Set userID in context for later use
		c.Set("userID", userID)
		c.Next()
	}
}
