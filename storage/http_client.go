package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	apperrors "tripmate-backend/errors"
)

// SupabaseStorage talks to the Supabase storage REST API directly.
type SupabaseStorage struct {
	baseURL        string
	serviceRoleKey string
	client         *http.Client
}

func NewSupabaseStorage(baseURL, serviceRoleKey string) *SupabaseStorage {
	return &SupabaseStorage{
		baseURL:        strings.TrimSuffix(baseURL, "/"),
		serviceRoleKey: serviceRoleKey,
		client:         &http.Client{Timeout: 30 * time.Second},
	}
}

func (s *SupabaseStorage) Upload(ctx context.Context, bucket, objectPath, contentType string, body io.Reader) (string, error) {
	url := fmt.Sprintf("%s/object/%s/%s", s.baseURL, bucket, objectPath)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return "", apperrors.StorageError("building upload request", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.serviceRoleKey)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("x-upsert", "false")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", apperrors.StorageError("uploading object", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		zap.L().Error("Storage upload failed",
			zap.String("bucket", bucket),
			zap.String("path", objectPath),
			zap.Int("status", resp.StatusCode),
			zap.ByteString("response", respBody))
		return "", apperrors.StorageError("uploading object",
			fmt.Errorf("storage returned status %d", resp.StatusCode))
	}

	return s.PublicURL(bucket, objectPath), nil
}

func (s *SupabaseStorage) Delete(ctx context.Context, bucket, objectPath string) error {
	url := fmt.Sprintf("%s/object/%s/%s", s.baseURL, bucket, objectPath)

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return apperrors.StorageError("building delete request", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.serviceRoleKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return apperrors.StorageError("deleting object", err)
	}
	defer resp.Body.Close()

	// Missing objects are fine; the caller only cares the object is gone.
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNotFound {
		return apperrors.StorageError("deleting object",
			fmt.Errorf("storage returned status %d", resp.StatusCode))
	}
	return nil
}

func (s *SupabaseStorage) PublicURL(bucket, objectPath string) string {
	return fmt.Sprintf("%s/object/public/%s/%s", s.baseURL, bucket, objectPath)
}
