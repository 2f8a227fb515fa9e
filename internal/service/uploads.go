package service

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/cuide-se/cuidese-api/internal/domain"
	"github.com/cuide-se/cuidese-api/internal/port"
)

var uploadTracer = otel.Tracer("service/uploads")

var allowedUploadTypes = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"image/webp":      ".webp",
	"application/pdf": ".pdf",
}

// UploadService stores client documents and expense receipts in blob
// storage. Object names are generated, never taken from the caller, so
// a hostile filename cannot escape its folder.
type UploadService struct {
	blobs  port.BlobStore
	logger *zap.Logger
}

// NewUploadService creates a new upload service.
func NewUploadService(blobs port.BlobStore, logger *zap.Logger) *UploadService {
	return &UploadService{blobs: blobs, logger: logger}
}

// Upload stores one file under the given folder and returns its stored
// path. The folder is a logical area ("clients", "receipts"), not a
// caller-controlled path.
func (s *UploadService) Upload(ctx context.Context, folder, contentType string, body io.Reader) (string, error) {
	ctx, span := uploadTracer.Start(ctx, "UploadService.Upload")
	defer span.End()

	folder = strings.Trim(folder, "/")
	if folder == "" || strings.Contains(folder, "/") {
		return "", domain.NewFieldError("folder", "must be a single folder name")
	}
	ext, ok := allowedUploadTypes[contentType]
	if !ok {
		return "", domain.NewFieldError("content_type", fmt.Sprintf("%s is not accepted", contentType))
	}

	objectPath := path.Join(folder, uuid.New().String()+ext)
	stored, err := s.blobs.Upload(ctx, objectPath, contentType, body)
	if err != nil {
		s.logger.Error("upload failed", zap.String("path", objectPath), zap.Error(err))
		return "", err
	}

	s.logger.Info("file uploaded", zap.String("path", stored))
	return stored, nil
}
