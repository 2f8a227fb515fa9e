package supabase

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"
)

// ============================================================
// Storage — document/receipt uploads
// ============================================================

// Storage implements the blob storage boundary against the Supabase
// storage API. It shares the client's auth and breaker.
type Storage struct {
	client *Client
	bucket string
}

// NewStorage creates a storage handle bound to one bucket.
func NewStorage(client *Client, bucket string) *Storage {
	return &Storage{client: client, bucket: bucket}
}

// Upload stores a blob at path inside the bucket and returns the stored
// object path.
func (s *Storage) Upload(ctx context.Context, path string, contentType string, body io.Reader) (string, error) {
	ctx, span := tracer.Start(ctx, "Supabase.Storage.Upload")
	defer span.End()

	_, err := s.client.execute(ctx, func() ([]byte, error) {
		url := fmt.Sprintf("%s/storage/v1/object/%s/%s", s.client.baseURL, s.bucket, path)
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
		if err != nil {
			return nil, err
		}
		req.Header.Set("apikey", s.client.apiKey)
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", s.client.serviceRoleKey))
		if contentType != "" {
			req.Header.Set("Content-Type", contentType)
		}

		resp, err := s.client.httpClient.Do(req)
		if err != nil {
			s.client.logger.Error("supabase: upload failed", zap.String("path", path), zap.Error(err))
			return nil, err
		}
		defer resp.Body.Close()

		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			s.client.logger.Warn("supabase: upload non-2xx",
				zap.String("path", path),
				zap.Int("status", resp.StatusCode),
				zap.String("body", string(respBody)),
			)
			return nil, fmt.Errorf("supabase upload %s returned %d: %s", path, resp.StatusCode, string(respBody))
		}
		return respBody, nil
	})
	if err != nil {
		return "", err
	}

	stored := fmt.Sprintf("%s/%s", s.bucket, path)
	s.client.logger.Info("supabase: object uploaded", zap.String("path", stored))
	return stored, nil
}
