package server

import (
	"strconv"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/pausalko/pausalko/internal/scope"
	"go.uber.org/zap"
)

const scopeKey = "tenant_scope"

// ScopeMiddleware resolves the tenant scope for the request from the
// X-Firma-ID header. Admin tooling sends X-Admin-Unscoped instead; regular
// tenant routes reject requests without a concrete firma.
func ScopeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("X-Admin-Unscoped") == "true" {
			c.Set(scopeKey, scope.Unscoped())
			c.Next()
			return
		}

		raw := c.GetHeader("X-Firma-ID")
		if raw == "" {
			c.Next()
			return
		}
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id == 0 {
			AbortWithError(c, ErrInvalidRequest)
			return
		}
		c.Set(scopeKey, scope.ForFirma(snowflake.ID(id)))
		c.Next()
	}
}

// scopeFrom returns the resolved scope; the zero Scope fails every service
// call with the scope sentinel, which maps to a validation error.
func scopeFrom(c *gin.Context) scope.Scope {
	value, ok := c.Get(scopeKey)
	if !ok {
		return scope.Scope{}
	}
	sc, ok := value.(scope.Scope)
	if !ok {
		return scope.Scope{}
	}
	return sc
}

// RequestLogger logs one line per request with latency and status.
func RequestLogger(log *zap.Logger) gin.HandlerFunc {
	log = log.Named("http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}
