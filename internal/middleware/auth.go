package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/crm-api/pkg/auth"
)

const (
	// ContextUserID and ContextOrganizationID are the identity keys set
	// by Authenticate and read by every handler.
	ContextUserID         = "user_id"
	ContextOrganizationID = "organization_id"
)

type AuthMiddleware struct {
	validator *auth.TokenValidator
}

func NewAuthMiddleware(validator *auth.TokenValidator) *AuthMiddleware {
	return &AuthMiddleware{validator: validator}
}

// Authenticate verifies the bearer token and sets the acting user and
// tenant scope in context.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Code:    http.StatusUnauthorized,
				Message: "missing authorization header",
			})
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Code:    http.StatusUnauthorized,
				Message: "invalid authorization format",
			})
			return
		}

		claims, err := m.validator.ValidateToken(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Code:    http.StatusUnauthorized,
				Message: "invalid token",
			})
			return
		}

		c.Set(ContextUserID, claims.UserID.String())
		c.Set(ContextOrganizationID, claims.OrganizationID.String())
		c.Next()
	}
}

// CurrentUserID reads the authenticated user id from context.
func CurrentUserID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.GetString(ContextUserID))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// CurrentOrganizationID reads the tenant scope from context.
func CurrentOrganizationID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.GetString(ContextOrganizationID))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
