package supabase

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cuide-se/cuidese-api/internal/domain"
)

// Generic row helpers shared by every entity store. Each admin screen
// repeats the same fetch/decode/mutate cycle; centralizing it here keeps
// the per-entity stores down to query construction and field mapping.

// selectRows fetches and decodes the rows matched by q. No data decodes
// to an empty slice, never nil-with-no-error ambiguity for callers.
func selectRows[T any](ctx context.Context, c *Client, q *Query) ([]T, error) {
	body, err := c.doGet(ctx, q.Encode())
	if err != nil {
		return nil, err
	}
	if len(body) == 0 {
		return []T{}, nil
	}
	var rows []T
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode %s: %w", q.table, err)
	}
	return rows, nil
}

// selectOne fetches a single row by id, reporting ErrNotFound when the
// result set is empty.
func selectOne[T any](ctx context.Context, c *Client, table, resource, id string) (*T, error) {
	q := NewQuery(table).Eq("id", id).Limit(1)
	rows, err := selectRows[T](ctx, c, q)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, &domain.ErrNotFound{Resource: resource, ID: id}
	}
	return &rows[0], nil
}

// insertRow inserts data and decodes the server-returned representation
// (the server assigns id and timestamps).
func insertRow[T any](ctx context.Context, c *Client, table string, data map[string]any) (*T, error) {
	body, err := c.doPost(ctx, table, data)
	if err != nil {
		return nil, err
	}
	var rows []T
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode inserted %s: %w", table, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("insert into %s returned no representation", table)
	}
	return &rows[0], nil
}

// updateRow overwrites the editable fields of one row by id. The payload
// never carries id or created_at; those are immutable. An empty match
// reports ErrNotFound.
func updateRow[T any](ctx context.Context, c *Client, table, resource, id string, data map[string]any) (*T, error) {
	delete(data, "id")
	delete(data, "created_at")
	body, err := c.doPatch(ctx, fmt.Sprintf("%s?id=eq.%s", table, id), data)
	if err != nil {
		return nil, err
	}
	var rows []T
	if len(body) > 0 {
		if err := json.Unmarshal(body, &rows); err != nil {
			return nil, fmt.Errorf("decode updated %s: %w", table, err)
		}
	}
	if len(rows) == 0 {
		return nil, &domain.ErrNotFound{Resource: resource, ID: id}
	}
	return &rows[0], nil
}
