package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/meilisearch/meilisearch-go"
)

const meiliPrimaryKey = "id"

// MeiliAdapter serves queries from Meilisearch.
type MeiliAdapter struct {
	client meilisearch.ServiceManager
}

// NewMeiliAdapter returns nil when host is empty.
func NewMeiliAdapter(host, apiKey string) *MeiliAdapter {
	if host == "" {
		return nil
	}
	return &MeiliAdapter{client: meilisearch.New(host, meilisearch.WithAPIKey(apiKey))}
}

func (a *MeiliAdapter) Type() Engine { return Meilisearch }

func (a *MeiliAdapter) Search(ctx context.Context, req *Request) (*Response, error) {
	if a == nil || a.client == nil {
		return nil, errors.New("meilisearch client not available")
	}

	resp, err := a.client.Index(req.Index).SearchWithContext(ctx, req.Query, &meilisearch.SearchRequest{
		Limit: int64(req.Size),
	})
	if err != nil {
		return nil, fmt.Errorf("meilisearch search error: %w", err)
	}

	hits := make([]Hit, 0, len(resp.Hits))
	for _, hit := range resp.Hits {
		source := make(map[string]any, len(hit))
		for k, v := range hit {
			source[k] = v
		}
		hits = append(hits, Hit{ID: stringify(source[meiliPrimaryKey]), Score: 1, Source: source})
	}
	return &Response{Total: int64(resp.EstimatedTotalHits), Hits: hits}, nil
}

func (a *MeiliAdapter) BulkIndex(_ context.Context, index string, documents []any) error {
	if a == nil || a.client == nil {
		return errors.New("meilisearch client not available")
	}
	pk := meiliPrimaryKey
	if _, err := a.client.Index(index).AddDocuments(documents, &meilisearch.DocumentOptions{PrimaryKey: &pk}); err != nil {
		return fmt.Errorf("meilisearch add documents error: %w", err)
	}
	return nil
}

func (a *MeiliAdapter) Health(context.Context) error {
	if a == nil || a.client == nil {
		return errors.New("meilisearch client not available")
	}
	if _, err := a.client.Health(); err != nil {
		return fmt.Errorf("meilisearch health check error: %w", err)
	}
	return nil
}

// stringify renders a decoded or raw JSON scalar as a plain string.
func stringify(v any) string {
	if v == nil {
		return ""
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	var s string
	if json.Unmarshal(b, &s) == nil {
		return s
	}
	return strings.Trim(string(b), `"`)
}
