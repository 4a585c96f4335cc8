package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"payment-api/internal/config"
	"payment-api/internal/middleware"
	"payment-api/internal/response"
)

// Handlers groups the HTTP handlers wired by SetupRoutes. Uploads may be nil
// when no bucket is configured.
type Handlers struct {
	Notifications  *NotificationHandler
	Payments       *PaymentHandler
	Uploads        *UploadHandler
	Reconciliation *ReconciliationHandler
}

// SetupRoutes sets up all routes
func SetupRoutes(r *gin.Engine, h Handlers, cfg *config.Config) {
	api := r.Group("/api")
	{
		// MoMo calls this; it is authenticated by the body signature
		api.POST("/payments/momo/ipn", h.Notifications.HandleMoMoIPN)

		// Customer routes
		customer := api.Group("")
		customer.Use(middleware.ClaimsMiddleware(cfg.AuthJWTSecret), middleware.SentryUserMiddleware)
		{
			customer.POST("/payments/momo", h.Payments.CreateMoMoPayment)

			if h.Uploads != nil {
				customer.POST("/files/upload-url", h.Uploads.CreateUploadURL)
			} else {
				customer.POST("/files/upload-url", func(c *gin.Context) {
					response.ErrorJSON(c, http.StatusServiceUnavailable, "File uploads are not configured")
				})
			}
		}

		// Operator routes
		admin := api.Group("/admin")
		admin.Use(middleware.AdminAuthMiddleware(cfg.AdminAPIKey))
		{
			admin.GET("/reconciliations", h.Reconciliation.ListReconciliations)
			admin.GET("/reconciliations/:id", h.Reconciliation.GetReconciliation)
			admin.POST("/reconciliations/:id/resolve", h.Reconciliation.ResolveReconciliation)
		}
	}

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "payment-api",
		})
	})
}
