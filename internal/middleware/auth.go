package middleware

import (
	"net/http"
	"strings"

	"anoa.com/droneanalytics/internal/entity"
	userRepo "anoa.com/droneanalytics/internal/modules/user/repository"
	"anoa.com/droneanalytics/pkg/credential"
	"anoa.com/droneanalytics/pkg/response"
	"github.com/gin-gonic/gin"
)

// ContextUserKey holds the *entity.User loaded by RequireRole.
const ContextUserKey = "user"

type AuthMiddleware struct {
	userRepo    userRepo.UserRepository
	credentials *credential.Manager
}

func NewAuthMiddleware(userRepo userRepo.UserRepository, credentials *credential.Manager) *AuthMiddleware {
	return &AuthMiddleware{
		userRepo:    userRepo,
		credentials: credentials,
	}
}

// RequireAuth admits requests carrying a valid "Authorization: Bearer" token
// and stores the caller's id under response.ContextUserIDKey.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c.GetHeader("Authorization"))
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Access token required"})
			return
		}

		userID, err := m.credentials.VerifyToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Invalid or expired token"})
			return
		}

		c.Set(response.ContextUserIDKey, userID.String())
		c.Next()
	}
}

// RequireRole must run after RequireAuth.
func (m *AuthMiddleware) RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := response.GetUserID(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Access token required"})
			return
		}

		user, err := m.userRepo.FindByID(c.Request.Context(), userID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "User not found"})
			return
		}

		if user.Role != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": role + " access required"})
			return
		}

		c.Set(ContextUserKey, user)
		c.Next()
	}
}

// RequireAdmin is RequireRole(entity.RoleAdmin).
func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return m.RequireRole(entity.RoleAdmin)
}

func bearerToken(header string) string {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
