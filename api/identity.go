package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// IdentityResolver verifies a caller credential and yields the account id.
// Verification is owned by the external auth service; the engine never
// derives identity from a raw header value.
type IdentityResolver interface {
	Resolve(ctx context.Context, credential string) (int64, error)
}

const identityKey = "verifiedIdentity"

func RequireIdentity(resolver IdentityResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		credential, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !ok || credential == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing credentials"})
			return
		}
		id, err := resolver.Resolve(c.Request.Context(), credential)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		c.Set(identityKey, id)
		c.Next()
	}
}

func callerID(c *gin.Context) int64 {
	v, _ := c.Get(identityKey)
	id, _ := v.(int64)
	return id
}
