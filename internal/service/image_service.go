package service

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appErrors "github.com/autocare/autocare-api/pkg/errors"
	"github.com/autocare/autocare-api/pkg/jobs"
)

// DefaultMaxImageBytes caps uploads when no limit is configured.
const DefaultMaxImageBytes int64 = 2 << 20

var allowedImageExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".webp": {},
}

// ImageCleanupKind tags background jobs that delete a stored image.
const ImageCleanupKind = "image.delete"

type cleanupQueue interface {
	Enqueue(job jobs.Job) error
}

type imageStore interface {
	SaveStream(filename string, r io.Reader) (string, error)
	Delete(publicPath string) error
}

// ImageService validates uploaded pictures and stores them under random names.
type ImageService struct {
	store    imageStore
	maxBytes int64
	cleanup  cleanupQueue
	logger   *zap.Logger
}

// NewImageService constructs an ImageService.
func NewImageService(store imageStore, maxBytes int64, logger *zap.Logger) *ImageService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxImageBytes
	}
	return &ImageService{store: store, maxBytes: maxBytes, logger: logger}
}

// Validate checks the extension and size of an upload.
func (s *ImageService) Validate(field string, file *multipart.FileHeader) error {
	if file == nil {
		return nil
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if _, ok := allowedImageExtensions[ext]; !ok {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%s must be a jpg, jpeg, png or webp image", field))
	}
	if file.Size > s.maxBytes {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%s exceeds the %d byte limit", field, s.maxBytes))
	}
	return nil
}

// Save stores the upload and returns its public path. A nil file yields nil.
func (s *ImageService) Save(field string, file *multipart.FileHeader) (*string, error) {
	if file == nil {
		return nil, nil
	}
	if err := s.Validate(field, file); err != nil {
		return nil, err
	}
	src, err := file.Open()
	if err != nil {
		return nil, appErrors.Internal(err, "failed to read upload")
	}
	defer src.Close()

	name := uuid.NewString() + strings.ToLower(filepath.Ext(file.Filename))
	path, err := s.store.SaveStream(name, io.LimitReader(src, s.maxBytes+1))
	if err != nil {
		return nil, appErrors.Internal(err, "failed to store upload")
	}
	return &path, nil
}

// UseCleanupQueue makes Remove hand deletions to q instead of deleting inline.
func (s *ImageService) UseCleanupQueue(q cleanupQueue) {
	s.cleanup = q
}

// Remove deletes a stored image. Failures are logged and swallowed.
func (s *ImageService) Remove(path *string) {
	if path == nil || *path == "" {
		return
	}
	if s.cleanup != nil {
		err := s.cleanup.Enqueue(jobs.Job{Kind: ImageCleanupKind, Target: *path})
		if err == nil {
			return
		}
		s.logger.Warn("image cleanup queue rejected job, deleting inline", zap.String("path", *path), zap.Error(err))
	}
	if err := s.store.Delete(*path); err != nil {
		s.logger.Warn("failed to remove image", zap.String("path", *path), zap.Error(err))
	}
}

// HandleCleanup is the queue handler for ImageCleanupKind jobs.
func (s *ImageService) HandleCleanup(ctx context.Context, job jobs.Job) error {
	if job.Kind != ImageCleanupKind {
		s.logger.Warn("ignoring unknown job", zap.String("kind", job.Kind))
		return nil
	}
	return s.store.Delete(job.Target)
}
