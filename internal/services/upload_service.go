package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"payment-api/internal/config"
	ierr "payment-api/internal/errors"
	"payment-api/pkg/logging"
)

var mimeExtensions = map[string]string{
	"image/jpeg":    "jpg",
	"image/jpg":     "jpg",
	"image/png":     "png",
	"image/gif":     "gif",
	"image/webp":    "webp",
	"image/svg+xml": "svg",
	"image/bmp":     "bmp",
	"image/tiff":    "tiff",

	"application/pdf":               "pdf",
	"application/msword":            "doc",
	"application/vnd.ms-excel":      "xls",
	"application/vnd.ms-powerpoint": "ppt",

	"application/vnd.openxmlformats-officedocument.wordprocessingml.document":   "docx",
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":         "xlsx",
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": "pptx",

	"text/plain":       "txt",
	"text/html":        "html",
	"text/css":         "css",
	"text/javascript":  "js",
	"text/csv":         "csv",
	"text/markdown":    "md",
	"text/x-markdown":  "md",
	"application/json": "json",
	"application/xml":  "xml",

	"audio/mpeg": "mp3",
	"audio/mp3":  "mp3",
	"audio/wav":  "wav",
	"audio/webm": "webm",
	"audio/ogg":  "ogg",
	"audio/aac":  "aac",
	"audio/flac": "flac",
	"audio/m4a":  "m4a",

	"video/mp4":        "mp4",
	"video/mpeg":       "mpeg",
	"video/webm":       "webm",
	"video/ogg":        "ogv",
	"video/quicktime":  "mov",
	"video/x-msvideo":  "avi",
	"video/x-matroska": "mkv",

	"application/zip":              "zip",
	"application/x-rar-compressed": "rar",
	"application/x-7z-compressed":  "7z",
	"application/x-tar":            "tar",
	"application/gzip":             "gz",
}

var unsafeFileNameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// ObjectPresigner issues presigned PUT requests
type ObjectPresigner interface {
	PresignPutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// UploadRequest asks for a time-boxed upload credential
type UploadRequest struct {
	ContentType string
	FileSize    *int64
	FileName    string
}

// UploadCredential is a presigned PUT URL and where the object will be readable
type UploadCredential struct {
	UploadURL   string
	PublicURL   string
	Key         string
	ExpiresIn   int
	ContentType string
	FileSize    *int64
	Bucket      string
}

// UploadValidationError lists every problem found in an UploadRequest
type UploadValidationError struct {
	Details []string
}

func (e *UploadValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Details, "; ")
}

// UploadService issues presigned S3 upload URLs
type UploadService struct {
	presigner ObjectPresigner
	bucket    string
	region    string
	expiry    time.Duration
	maxBytes  int64
	maxMB     int
	now       func() time.Time
	newID     func() string
}

// NewUploadService loads AWS credentials from the environment and creates the presigner
func NewUploadService(ctx context.Context, cfg config.UploadConfig) (*UploadService, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	presigner := s3.NewPresignClient(s3.NewFromConfig(awsCfg))
	return NewUploadServiceWithPresigner(presigner, cfg), nil
}

// NewUploadServiceWithPresigner creates the service around an existing presigner
func NewUploadServiceWithPresigner(presigner ObjectPresigner, cfg config.UploadConfig) *UploadService {
	return &UploadService{
		presigner: presigner,
		bucket:    cfg.Bucket,
		region:    cfg.Region,
		expiry:    cfg.URLExpiry,
		maxBytes:  int64(cfg.MaxFileSizeMB) * 1024 * 1024,
		maxMB:     cfg.MaxFileSizeMB,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// Validate returns the list of problems with req, empty when it is acceptable
func (s *UploadService) Validate(req UploadRequest) []string {
	var details []string
	if req.ContentType == "" {
		details = append(details, "contentType is required")
	}
	if req.FileSize != nil && *req.FileSize != 0 {
		switch {
		case *req.FileSize < 0:
			details = append(details, "fileSize must be greater than 0")
		case *req.FileSize > s.maxBytes:
			details = append(details, fmt.Sprintf("fileSize must not exceed %dMB", s.maxMB))
		}
	}
	return details
}

// IssueUploadURL presigns a PUT for a freshly generated object key
func (s *UploadService) IssueUploadURL(ctx context.Context, req UploadRequest) (*UploadCredential, error) {
	if details := s.Validate(req); len(details) > 0 {
		return nil, ierr.WithError(&UploadValidationError{Details: details}).Mark(ierr.ErrValidation)
	}
	if s.bucket == "" {
		return nil, ierr.NewError("S3_BUCKET_NAME is not set").Mark(ierr.ErrConfiguration)
	}

	key := s.objectKey(req.ContentType, req.FileName)
	original := req.FileName
	if original == "" {
		original = key
	}

	presigned, err := s.presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(req.ContentType),
		Metadata: map[string]string{
			"upload-timestamp":  s.now().UTC().Format(time.RFC3339),
			"original-filename": original,
		},
	}, s3.WithPresignExpires(s.expiry))
	if err != nil {
		logging.Errorw("failed to presign upload", "key", key, "error", err)
		return nil, ierr.WithError(err).
			WithHint("Failed to generate upload URL").
			Mark(ierr.ErrInternal)
	}

	logging.Infow("upload URL generated", "key", key, "content_type", req.ContentType)

	return &UploadCredential{
		UploadURL:   presigned.URL,
		PublicURL:   fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key),
		Key:         key,
		ExpiresIn:   int(s.expiry / time.Second),
		ContentType: req.ContentType,
		FileSize:    req.FileSize,
		Bucket:      s.bucket,
	}, nil
}

// objectKey derives the S3 key from the caller's file name, or a random one
func (s *UploadService) objectKey(contentType, fileName string) string {
	if fileName != "" {
		sanitized := unsafeFileNameChars.ReplaceAllString(fileName, "_")
		if len(sanitized) > 100 {
			sanitized = sanitized[:100]
		}
		prefix := strings.SplitN(s.newID(), "-", 2)[0]
		return prefix + "_" + sanitized
	}
	return s.newID() + "." + extensionFor(contentType)
}

// extensionFor maps a MIME type to a file extension, falling back to its subtype
func extensionFor(contentType string) string {
	if contentType == "" {
		return "bin"
	}
	if ext, ok := mimeExtensions[strings.ToLower(contentType)]; ok {
		return ext
	}
	parts := strings.Split(contentType, "/")
	if len(parts) == 2 {
		return strings.SplitN(parts[1], ";", 2)[0]
	}
	return "bin"
}
