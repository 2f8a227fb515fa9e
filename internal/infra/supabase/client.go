// Package supabase provides the client for the Supabase backend
// (PostgREST + RPC + storage). It is the single configured handle to the
// remote relational store; every table-scoped operation goes through it.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/cuide-se/cuidese-api/internal/domain"
	"github.com/cuide-se/cuidese-api/internal/infra/observability"
	"github.com/cuide-se/cuidese-api/internal/infra/resilience"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("supabase")

// Client wraps HTTP calls to the Supabase PostgREST API. Failures are
// surfaced once (through the breaker); there is deliberately no retry
// loop here — callers present the error and the user retries manually.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	apiKey         string
	serviceRoleKey string
	cb             *gobreaker.CircuitBreaker
	bulkhead       *resilience.Bulkhead
	metrics        *observability.Metrics
	logger         *zap.Logger
}

// NewClient creates a Supabase client.
func NewClient(httpClient *http.Client, baseURL, apiKey, serviceRoleKey string, cb *gobreaker.CircuitBreaker, bulkhead *resilience.Bulkhead, metrics *observability.Metrics, logger *zap.Logger) *Client {
	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		apiKey:         apiKey,
		serviceRoleKey: serviceRoleKey,
		cb:             cb,
		bulkhead:       bulkhead,
		metrics:        metrics,
		logger:         logger,
	}
}

func (c *Client) setHeaders(req *http.Request, prefer string) {
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.serviceRoleKey))
	req.Header.Set("Content-Type", "application/json")
	if prefer != "" {
		req.Header.Set("Prefer", prefer)
	}
}

// execute runs fn through the bulkhead and the circuit breaker,
// translating an open breaker into the domain error the handler layer
// maps to 503.
func (c *Client) execute(ctx context.Context, fn func() ([]byte, error)) ([]byte, error) {
	if c.bulkhead != nil {
		if err := c.bulkhead.Acquire(ctx); err != nil {
			return nil, err
		}
		defer c.bulkhead.Release()
	}
	out, err := c.cb.Execute(func() (any, error) {
		return fn()
	})
	if err != nil && c.metrics != nil {
		c.metrics.IncrExternalError("supabase")
	}
	if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
		return nil, &domain.ErrCircuitOpen{Service: "supabase"}
	}
	if err != nil {
		return nil, err
	}
	body, _ := out.([]byte)
	return body, nil
}

// doGet executes an authenticated GET against PostgREST. A nil body with
// a nil error means "no data" (204/404).
func (c *Client) doGet(ctx context.Context, path string) ([]byte, error) {
	return c.execute(ctx, func() ([]byte, error) {
		url := fmt.Sprintf("%s/rest/v1/%s", c.baseURL, path)
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		c.setHeaders(req, "")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			c.logger.Error("supabase: GET failed", zap.String("path", path), zap.Error(err))
			return nil, err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}

		if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusNoContent {
			return nil, nil
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			c.logger.Warn("supabase: GET non-2xx",
				zap.String("path", path),
				zap.Int("status", resp.StatusCode),
				zap.String("body", string(body)),
			)
			return nil, fmt.Errorf("supabase GET %s returned %d: %s", path, resp.StatusCode, string(body))
		}

		c.logger.Debug("supabase: GET OK", zap.String("path", path), zap.Int("status", resp.StatusCode))
		return body, nil
	})
}

// doPost inserts a row and returns the created representation.
func (c *Client) doPost(ctx context.Context, table string, data map[string]any) ([]byte, error) {
	return c.execute(ctx, func() ([]byte, error) {
		url := fmt.Sprintf("%s/rest/v1/%s", c.baseURL, table)
		jsonBody, err := json.Marshal(data)
		if err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
		if err != nil {
			return nil, err
		}
		c.setHeaders(req, "return=representation")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			c.logger.Error("supabase: POST failed", zap.String("table", table), zap.Error(err))
			return nil, err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			c.logger.Warn("supabase: POST non-2xx",
				zap.String("table", table),
				zap.Int("status", resp.StatusCode),
				zap.String("body", string(body)),
			)
			return nil, fmt.Errorf("supabase POST %s returned %d: %s", table, resp.StatusCode, string(body))
		}

		c.logger.Debug("supabase: POST OK", zap.String("table", table), zap.Int("status", resp.StatusCode))
		return body, nil
	})
}

// doPatch applies a partial update to the rows matched by path and
// returns the updated representation.
func (c *Client) doPatch(ctx context.Context, path string, data map[string]any) ([]byte, error) {
	return c.execute(ctx, func() ([]byte, error) {
		url := fmt.Sprintf("%s/rest/v1/%s", c.baseURL, path)
		jsonBody, err := json.Marshal(data)
		if err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPatch, url, bytes.NewReader(jsonBody))
		if err != nil {
			return nil, err
		}
		c.setHeaders(req, "return=representation")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			c.logger.Error("supabase: PATCH failed", zap.String("path", path), zap.Error(err))
			return nil, err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			c.logger.Warn("supabase: PATCH non-2xx",
				zap.String("path", path),
				zap.Int("status", resp.StatusCode),
				zap.String("body", string(body)),
			)
			return nil, fmt.Errorf("supabase PATCH %s returned %d: %s", path, resp.StatusCode, string(body))
		}

		c.logger.Debug("supabase: PATCH OK", zap.String("path", path))
		return body, nil
	})
}

// doDelete deletes the rows matched by path and returns the deleted
// representation so callers can detect a no-op delete.
func (c *Client) doDelete(ctx context.Context, path string) ([]byte, error) {
	return c.execute(ctx, func() ([]byte, error) {
		url := fmt.Sprintf("%s/rest/v1/%s", c.baseURL, path)

		req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
		if err != nil {
			return nil, err
		}
		c.setHeaders(req, "return=representation")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			c.logger.Error("supabase: DELETE failed", zap.String("path", path), zap.Error(err))
			return nil, err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			c.logger.Warn("supabase: DELETE non-2xx",
				zap.String("path", path),
				zap.Int("status", resp.StatusCode),
				zap.String("body", string(body)),
			)
			return nil, fmt.Errorf("supabase DELETE %s returned %d: %s", path, resp.StatusCode, string(body))
		}

		c.logger.Debug("supabase: DELETE OK", zap.String("path", path))
		return body, nil
	})
}

// deleteByID deletes one row by id and reports ErrNotFound when nothing
// matched. Deleting a non-existent identifier must not silently succeed.
func (c *Client) deleteByID(ctx context.Context, table, resource, id string) error {
	body, err := c.doDelete(ctx, fmt.Sprintf("%s?id=eq.%s", table, id))
	if err != nil {
		return err
	}
	var rows []json.RawMessage
	if len(body) > 0 {
		if err := json.Unmarshal(body, &rows); err != nil {
			return fmt.Errorf("decode delete response: %w", err)
		}
	}
	if len(rows) == 0 {
		return &domain.ErrNotFound{Resource: resource, ID: id}
	}
	return nil
}
