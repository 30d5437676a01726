package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/unifiedmentor/appointment-portal/internal/auth"
	"github.com/unifiedmentor/appointment-portal/internal/model"
)

const claimsKey = "session_claims"

// sessionRequired validates the bearer token and stores the session claims on
// the request context.
func (s *Server) sessionRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization"})
			return
		}

		parts := strings.Fields(header)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization format"})
			return
		}

		claims, err := auth.ParseSessionToken(s.jwtSecret, parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		c.Set(claimsKey, claims)
		c.Next()
	}
}

// roleRequired refuses sessions that do not hold the given role.
func (s *Server) roleRequired(role model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		if sessionClaims(c).Role != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient role"})
			return
		}
		c.Next()
	}
}

// approvedStudentRequired guards the booking surface: students only, and only
// after admin approval.
func (s *Server) approvedStudentRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := sessionClaims(c)
		if claims.Role != model.RoleStudent {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient role"})
			return
		}
		if !claims.Approved {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "account is pending approval from an administrator"})
			return
		}
		c.Next()
	}
}

func sessionClaims(c *gin.Context) *auth.Claims {
	return c.MustGet(claimsKey).(*auth.Claims)
}
