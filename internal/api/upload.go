package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"

	ierr "payment-api/internal/errors"
	"payment-api/internal/middleware"
	"payment-api/internal/response"
	"payment-api/internal/services"
)

// UploadIssuer issues presigned upload URLs
type UploadIssuer interface {
	IssueUploadURL(ctx context.Context, req services.UploadRequest) (*services.UploadCredential, error)
}

// UploadHandler serves presigned upload URLs to authenticated users
type UploadHandler struct {
	issuer UploadIssuer
}

// NewUploadHandler creates the upload handler
func NewUploadHandler(issuer UploadIssuer) *UploadHandler {
	return &UploadHandler{issuer: issuer}
}

type uploadURLRequest struct {
	ContentType string      `json:"contentType"`
	FileSize    json.Number `json:"fileSize"`
	FileName    string      `json:"fileName"`
}

type uploadMetadata struct {
	ContentType string `json:"contentType"`
	FileSize    *int64 `json:"fileSize"`
	Bucket      string `json:"bucket"`
}

type uploadURLResponse struct {
	Success   bool           `json:"success"`
	UploadURL string         `json:"uploadUrl"`
	PublicURL string         `json:"publicUrl"`
	Key       string         `json:"key"`
	ExpiresIn int            `json:"expiresIn"`
	Metadata  uploadMetadata `json:"metadata"`
}

// CreateUploadURL handles POST /api/files/upload-url
func (h *UploadHandler) CreateUploadURL(c *gin.Context) {
	if middleware.PrincipalID(c) == "" {
		response.ErrorJSON(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var body uploadURLRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.ValidationErrorJSON(c, []string{"Invalid JSON body"})
		return
	}

	req := services.UploadRequest{
		ContentType: body.ContentType,
		FileName:    body.FileName,
	}
	if body.FileSize != "" {
		size, err := body.FileSize.Int64()
		if err != nil {
			response.ValidationErrorJSON(c, []string{"fileSize must be a number"})
			return
		}
		req.FileSize = &size
	}

	cred, err := h.issuer.IssueUploadURL(c.Request.Context(), req)
	if err != nil {
		_ = c.Error(err)
		var verr *services.UploadValidationError
		if errors.As(err, &verr) {
			response.ValidationErrorJSON(c, verr.Details)
			return
		}
		message := ierr.Hint(err)
		if message == "" {
			message = "Internal server error"
		}
		response.ErrorJSON(c, http.StatusInternalServerError, message)
		return
	}

	c.JSON(http.StatusOK, uploadURLResponse{
		Success:   true,
		UploadURL: cred.UploadURL,
		PublicURL: cred.PublicURL,
		Key:       cred.Key,
		ExpiresIn: cred.ExpiresIn,
		Metadata: uploadMetadata{
			ContentType: cred.ContentType,
			FileSize:    cred.FileSize,
			Bucket:      cred.Bucket,
		},
	})
}
