package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"
)

// ============================================================
// RPC — Postgres functions exposed through PostgREST
// ============================================================

// callRPC invokes a database function with the given arguments and
// returns the raw JSON result. The function bodies (stock adjustment,
// balance calculation, referral rewards) live in the database.
func (c *Client) callRPC(ctx context.Context, fn string, args map[string]any) ([]byte, error) {
	ctx, span := tracer.Start(ctx, "Supabase.RPC."+fn)
	defer span.End()

	return c.execute(ctx, func() ([]byte, error) {
		url := fmt.Sprintf("%s/rest/v1/rpc/%s", c.baseURL, fn)
		jsonBody, err := json.Marshal(args)
		if err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
		if err != nil {
			return nil, err
		}
		c.setHeaders(req, "")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			c.logger.Error("supabase: RPC failed", zap.String("fn", fn), zap.Error(err))
			return nil, err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			c.logger.Warn("supabase: RPC non-2xx",
				zap.String("fn", fn),
				zap.Int("status", resp.StatusCode),
				zap.String("body", string(body)),
			)
			return nil, fmt.Errorf("supabase RPC %s returned %d: %s", fn, resp.StatusCode, string(body))
		}

		c.logger.Debug("supabase: RPC OK", zap.String("fn", fn))
		return body, nil
	})
}
