package main

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const ctxClaimsKey = "claims"

// bearerToken extracts the credential from "Authorization: Bearer <token>".
func bearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if h == "" {
		return ""
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// requireAccessToken guards protected routes. A missing token answers 401,
// a token that fails verification (any reason) answers 403; on success the
// decoded claims ride the gin context for downstream handlers.
func requireAccessToken(codec *TokenCodec) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c)
		if raw == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "access denied: no access token"})
			c.Abort()
			return
		}
		claims, err := codec.VerifyAccess(raw)
		if err != nil {
			c.JSON(http.StatusForbidden, gin.H{"error": "access token invalid or expired"})
			c.Abort()
			return
		}
		c.Set(ctxClaimsKey, claims)
		c.Next()
	}
}

// requireSelf only lets the authenticated identity through to its own
// resources: the :id path parameter must equal claims.UserID.
func requireSelf() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := claimsFromContext(c)
		if claims == nil {
			c.JSON(http.StatusForbidden, gin.H{"error": "no permission to access this data"})
			c.Abort()
			return
		}
		id, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil || uint(id) != claims.UserID {
			c.JSON(http.StatusForbidden, gin.H{"error": "no permission to access this data"})
			c.Abort()
			return
		}
		c.Next()
	}
}

func claimsFromContext(c *gin.Context) *Claims {
	v, ok := c.Get(ctxClaimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*Claims)
	return claims
}

// requestLogger tags each request with a uuid and logs its outcome.
// Authorization content never reaches the log.
func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := uuid.NewString()
		c.Writer.Header().Set("X-Request-ID", reqID)

		ts := time.Now()
		c.Next()

		log.Info("request completed",
			zap.String("request_id", reqID),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(ts)),
		)
	}
}
