package api

import (
	"context"
	"io"
	"time"

	"github.com/gin-gonic/gin"

	"payment-api/internal/response"
	"payment-api/internal/services"
	"payment-api/pkg/logging"
)

// maxNotificationBytes caps the IPN body read from the gateway
const maxNotificationBytes = 64 << 10

// NotificationProcessor runs one IPN body through verification and dispatch
type NotificationProcessor interface {
	Process(ctx context.Context, body []byte) services.VerificationOutcome
}

// NotificationHandler receives MoMo IPN callbacks
type NotificationHandler struct {
	processor NotificationProcessor
	timeout   time.Duration
}

// NewNotificationHandler creates the IPN handler; timeout bounds the whole invocation
func NewNotificationHandler(processor NotificationProcessor, timeout time.Duration) *NotificationHandler {
	return &NotificationHandler{processor: processor, timeout: timeout}
}

// HandleMoMoIPN always answers 204 with an empty body. Any other status makes
// the gateway redeliver, so rejection reasons only go to the logs.
func (h *NotificationHandler) HandleMoMoIPN(c *gin.Context) {
	startTime := time.Now()

	defer func() {
		if r := recover(); r != nil {
			logging.Errorw("panic while processing momo notification", "panic", r)
		}
		response.NoContent(c)
	}()

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxNotificationBytes))
	if err != nil {
		logging.Errorw("failed to read momo notification body", "error", err)
		return
	}

	ctx := c.Request.Context()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	out := h.processor.Process(ctx, body)

	fields := []interface{}{
		"state", out.State,
		"duplicate", out.Duplicate,
		"duration_ms", time.Since(startTime).Milliseconds(),
	}
	if out.Notification != nil {
		fields = append(fields, "trans_id", out.Notification.TransID.String())
	}
	if out.Entitlement != nil {
		fields = append(fields, "settled", out.Entitlement.Settled())
	}
	logging.Infow("momo notification processed", fields...)
}
