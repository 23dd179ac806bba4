package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	apperrors "tripmate-backend/errors"
)

// Storage abstracts object storage for receipt images and trip documents.
type Storage interface {
	Upload(ctx context.Context, bucket, objectPath string, contentType string, body io.Reader) (string, error)
	Delete(ctx context.Context, bucket, objectPath string) error
	PublicURL(bucket, objectPath string) string
}

const MaxUploadBytes = 10 << 20 // 10 MiB

var imageContentTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

var documentContentTypes = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"image/webp":      ".webp",
	"image/gif":       ".gif",
	"application/pdf": ".pdf",
}

// ValidateImageType returns the canonical file extension for an allowed
// receipt image content type.
func ValidateImageType(contentType string) (string, error) {
	ext, ok := imageContentTypes[normalizeContentType(contentType)]
	if !ok {
		return "", apperrors.InvalidRequest(fmt.Sprintf("unsupported image type %q (allowed: jpeg, png, webp, gif)", contentType))
	}
	return ext, nil
}

// ValidateDocumentType is like ValidateImageType but also accepts PDFs.
func ValidateDocumentType(contentType string) (string, error) {
	ext, ok := documentContentTypes[normalizeContentType(contentType)]
	if !ok {
		return "", apperrors.InvalidRequest(fmt.Sprintf("unsupported document type %q (allowed: jpeg, png, webp, gif, pdf)", contentType))
	}
	return ext, nil
}

func normalizeContentType(contentType string) string {
	if idx := strings.Index(contentType, ";"); idx >= 0 {
		contentType = contentType[:idx]
	}
	return strings.ToLower(strings.TrimSpace(contentType))
}

// ObjectPath builds a collision-free object key scoped to a group.
func ObjectPath(groupID, ext string) string {
	return fmt.Sprintf("%s/%s%s", groupID, uuid.NewString(), ext)
}

// ObjectPathFromURL recovers the bucket-relative object key from a public URL,
// so stored URLs can be deleted later.
func ObjectPathFromURL(publicURL, bucket string) (string, bool) {
	marker := "/object/public/" + bucket + "/"
	idx := strings.Index(publicURL, marker)
	if idx < 0 {
		return "", false
	}
	objectPath := publicURL[idx+len(marker):]
	if objectPath == "" || filepath.IsAbs(objectPath) {
		return "", false
	}
	return objectPath, true
}
