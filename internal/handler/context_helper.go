package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/sapta-dev/bimbel-admin-api/internal/middleware"
	"github.com/sapta-dev/bimbel-admin-api/internal/models"
	"github.com/sapta-dev/bimbel-admin-api/internal/service"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

// actorFromContext derives the audit actor from the request. Works with or
// without authentication so tests can exercise handlers directly.
func actorFromContext(c *gin.Context) service.Actor {
	actor := service.Actor{
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}
	if claims := claimsFromContext(c); claims != nil {
		actor.UserID = claims.UserID
	}
	return actor
}
