package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	walletlink "github.com/layer-3/walletlink"
	"github.com/rs/zerolog"
)

const accountKey = "walletAccount"

// RequireSession rejects requests while no wallet is connected
func RequireSession(client walletlink.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		state := client.State()
		if !state.Connected || state.Session == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "No active wallet session"})
			return
		}

		// Set the session account in the context
		c.Set(accountKey, state.Session.Account)

		c.Next()
	}
}

// RequestLogger logs one line per request
func RequestLogger(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		ev := logger.Debug()
		if c.Writer.Status() >= http.StatusInternalServerError {
			ev = logger.Error()
		}
		ev.Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("http request")
	}
}
