package uploads

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/filmschedule/filmschedule-backend/internal/apperr"
	"github.com/filmschedule/filmschedule-backend/internal/logging"
)

// DefaultMaxLogoBytes is the logo size limit when none is configured.
const DefaultMaxLogoBytes = 5 * 1024 * 1024

var allowedLogoTypes = map[string]string{
	"image/jpeg": "image/jpeg",
	"image/jpg":  "image/jpeg",
	"image/png":  "image/png",
}

// LogoResult describes a stored logo.
type LogoResult struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
}

// LogoService validates and stores project logos.
type LogoService struct {
	blobs     BlobStore
	maxBytes  int64
	urlPrefix string
	newName   func() string
}

// NewLogoService serves stored logos under urlPrefix, e.g. "/api/media".
func NewLogoService(blobs BlobStore, maxBytes int64, urlPrefix string) *LogoService {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxLogoBytes
	}
	return &LogoService{
		blobs:     blobs,
		maxBytes:  maxBytes,
		urlPrefix: strings.TrimRight(urlPrefix, "/"),
		newName:   uuid.NewString,
	}
}

// Upload checks the declared content type and size, then stores the bytes
// under a fresh name that keeps the image extension.
func (s *LogoService) Upload(ctx context.Context, declaredType string, r io.Reader) (*LogoResult, error) {
	contentType, ok := allowedLogoTypes[mediaType(declaredType)]
	if !ok {
		return nil, apperr.Validation("Only JPG and PNG files are allowed")
	}

	data, err := io.ReadAll(io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		return nil, apperr.Internal("failed to read upload", err)
	}
	if int64(len(data)) > s.maxBytes {
		return nil, apperr.Validation("File size must be less than " + sizeLabel(s.maxBytes))
	}

	filename := s.newName() + extensionFor(contentType)
	if err := s.blobs.Put(ctx, filename, contentType, data); err != nil {
		return nil, apperr.Internal("failed to store logo", err)
	}

	url := s.urlPrefix + "/" + filename
	logging.FromContext(ctx).WithFields(map[string]interface{}{
		"url":   url,
		"bytes": len(data),
	}).Info("logo uploaded")

	return &LogoResult{URL: url, Filename: filename}, nil
}

// Open returns a stored logo for streaming.
func (s *LogoService) Open(ctx context.Context, filename string) (*Object, error) {
	if !validObjectName(filename) {
		return nil, apperr.NotFound("file not found")
	}

	obj, err := s.blobs.Open(ctx, filename)
	if errors.Is(err, ErrObjectNotFound) {
		return nil, apperr.NotFound("file not found")
	}
	if err != nil {
		return nil, apperr.Internal("failed to open file", err)
	}
	return obj, nil
}

// validObjectName accepts a single path element that is not a directory
// reference.
func validObjectName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return filepath.Base(name) == name && !strings.ContainsAny(name, `/\`) && !strings.Contains(name, "..")
}

func mediaType(declared string) string {
	mt, _, _ := strings.Cut(declared, ";")
	return strings.ToLower(strings.TrimSpace(mt))
}

func sizeLabel(n int64) string {
	const mib = 1024 * 1024
	if n >= mib && n%mib == 0 {
		return fmt.Sprintf("%dMB", n/mib)
	}
	if n >= 1024 && n%1024 == 0 {
		return fmt.Sprintf("%dKB", n/1024)
	}
	return fmt.Sprintf("%d bytes", n)
}

func extensionFor(contentType string) string {
	if m := mimetype.Lookup(contentType); m != nil && m.Extension() != "" {
		return m.Extension()
	}
	return ".bin"
}
