package middleware

import (
	"time"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
)

// SentryMiddleware captures panics and attaches a hub to each request.
// It is a no-op when Sentry is not configured.
func SentryMiddleware(enabled bool) gin.HandlerFunc {
	if !enabled {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	return sentrygin.New(sentrygin.Options{
		Repanic:         true,
		WaitForDelivery: false,
		Timeout:         2 * time.Second,
	})
}

// SentryUserMiddleware tags the request scope with the authenticated principal
func SentryUserMiddleware(c *gin.Context) {
	if hub := sentrygin.GetHubFromContext(c); hub != nil {
		if userID := PrincipalID(c); userID != "" {
			hub.Scope().SetTag("user_id", userID)
		}
	}
	c.Next()
}
