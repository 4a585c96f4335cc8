package api

import (
	"context"
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"

	ierr "payment-api/internal/errors"
	"payment-api/internal/middleware"
	"payment-api/internal/models"
	"payment-api/internal/momo"
	"payment-api/internal/response"
	"payment-api/internal/services"
	"payment-api/pkg/logging"
)

// PaymentCreator issues signed create-payment requests
type PaymentCreator interface {
	Create(ctx context.Context, in services.CreatePaymentInput) (*momo.CreatePaymentResponse, error)
}

// PaymentHandler serves the customer-facing payment creation endpoint
type PaymentHandler struct {
	creator PaymentCreator
}

// NewPaymentHandler creates the payment handler
func NewPaymentHandler(creator PaymentCreator) *PaymentHandler {
	return &PaymentHandler{creator: creator}
}

// CreatePaymentRequest is the body of POST /api/payments/momo
type CreatePaymentRequest struct {
	PackageType string  `json:"packageType"`
	Amount      *int64  `json:"amount"`
	ProgramID   *string `json:"programId"`
}

// CreatePaymentResponse is returned when the gateway accepted the order
type CreatePaymentResponse struct {
	ResultCode int    `json:"resultCode"`
	PayURL     string `json:"payUrl"`
	OrderID    string `json:"orderId"`
	RequestID  string `json:"requestId"`
	Message    string `json:"message"`
}

// CreateMoMoPayment handles POST /api/payments/momo
func (h *PaymentHandler) CreateMoMoPayment(c *gin.Context) {
	principalID := middleware.PrincipalID(c)
	if principalID == "" {
		response.PaymentErrorJSON(c, http.StatusUnauthorized, http.StatusUnauthorized,
			"Unauthorized - User ID not found", nil)
		return
	}

	var req CreatePaymentRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.PaymentErrorJSON(c, http.StatusBadRequest, http.StatusBadRequest, "Invalid request body", nil)
			return
		}
	}

	resp, err := h.creator.Create(c.Request.Context(), services.CreatePaymentInput{
		PrincipalID:     principalID,
		Package:         models.PackageType(req.PackageType),
		Amount:          req.Amount,
		UpgradeTargetID: req.ProgramID,
	})
	if err != nil {
		_ = c.Error(err)
		writePaymentError(c, err)
		return
	}

	c.JSON(http.StatusOK, CreatePaymentResponse{
		ResultCode: resp.ResultCode,
		PayURL:     resp.PayURL,
		OrderID:    resp.OrderID,
		RequestID:  resp.RequestID,
		Message:    resp.Message,
	})
}

func writePaymentError(c *gin.Context, err error) {
	var gwErr *momo.GatewayError
	if errors.As(err, &gwErr) {
		status := gwErr.StatusCode
		if status < http.StatusInternalServerError {
			status = http.StatusBadGateway
		}
		var details interface{} = gwErr.Body
		if gwErr.Body == nil {
			details = gwErr.RawBody
		}
		response.PaymentErrorJSON(c, status, gwErr.ResultCode(gwErr.StatusCode), gwErr.Message("MoMo API Error"), details)
		return
	}

	status := ierr.HTTPStatus(err)
	switch {
	case ierr.Is(err, ierr.ErrTimeout):
		response.PaymentErrorJSON(c, http.StatusGatewayTimeout, http.StatusGatewayTimeout,
			"Request timeout - MoMo API did not respond in time", nil)
	case status < http.StatusInternalServerError:
		message := ierr.Hint(err)
		if message == "" {
			message = http.StatusText(status)
		}
		response.PaymentErrorJSON(c, status, status, message, nil)
	case ierr.Is(err, ierr.ErrDownstream):
		response.PaymentErrorJSON(c, http.StatusBadGateway, http.StatusBadGateway, "MoMo API Error", nil)
	default:
		logging.Errorw("payment creation failed", "error", err)
		response.PaymentErrorJSON(c, http.StatusInternalServerError, http.StatusInternalServerError,
			"Internal server error", nil)
	}
}
