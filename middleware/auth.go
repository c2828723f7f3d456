package middleware

import (
	"net/http"
	"strings"

	"clinicbook/utils"

	"github.com/gin-gonic/gin"
)

// SubjectAuthMiddleware validates the bearer identity token and stores the
// authenticated subject id in the request context. Validated tokens are
// cached by hash so repeated requests skip signature verification.
func SubjectAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid Authorization header"})
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		cacheKey := utils.AuthCachePrefix + utils.HashToken(tokenString)
		authCache := utils.GetAuthCacheClient()
		if cached, err := authCache.Get(c.Request.Context(), cacheKey).Result(); err == nil && cached != "" {
			c.Set("subjectID", cached)
			c.Next()
			return
		}

		token, err := utils.ValidateIdentityToken(tokenString)
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		subjectID, err := utils.ExtractSubjectFromToken(tokenString)
		if err != nil || subjectID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token carries no subject"})
			return
		}

		// TTL is short relative to token validity, so a revoked secret ages
		// out of the cache quickly.
		authCache.Set(c.Request.Context(), cacheKey, subjectID, utils.AuthCacheTTL)

		c.Set("subjectID", subjectID)
		c.Next()
	}
}

// SubjectFromContext returns the authenticated subject id set by
// SubjectAuthMiddleware.
func SubjectFromContext(c *gin.Context) string {
	if v, ok := c.Get("subjectID"); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
