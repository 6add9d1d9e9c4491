package search

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/opensearch-project/opensearch-go/v4"
	"github.com/opensearch-project/opensearch-go/v4/opensearchapi"
)

// OpenSearchAdapter serves queries from OpenSearch.
type OpenSearchAdapter struct {
	client *opensearchapi.Client
}

// NewOpenSearchAdapter returns nil when no address is configured.
func NewOpenSearchAdapter(addresses []string, username, password string, insecure bool) (*OpenSearchAdapter, error) {
	if len(addresses) == 0 {
		return nil, nil
	}
	client, err := opensearchapi.NewClient(opensearchapi.Config{
		Client: opensearch.Config{
			Addresses: addresses,
			Username:  username,
			Password:  password,
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{InsecureSkipVerify: insecure},
			},
			MaxRetries: 3,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("opensearch client creation error: %w", err)
	}
	return &OpenSearchAdapter{client: client}, nil
}

func (a *OpenSearchAdapter) Type() Engine { return OpenSearch }

func (a *OpenSearchAdapter) Search(ctx context.Context, req *Request) (*Response, error) {
	if a == nil || a.client == nil {
		return nil, errors.New("opensearch client not available")
	}
	body, err := fuzzyQuery(req)
	if err != nil {
		return nil, err
	}

	resp, err := a.client.Search(ctx, &opensearchapi.SearchReq{
		Indices: []string{req.Index},
		Body:    bytes.NewReader(body),
	})
	if err != nil {
		return nil, fmt.Errorf("opensearch search error: %w", err)
	}

	hits := make([]Hit, 0, len(resp.Hits.Hits))
	for _, hit := range resp.Hits.Hits {
		var source map[string]any
		if err := json.Unmarshal(hit.Source, &source); err != nil {
			continue
		}
		hits = append(hits, Hit{ID: hit.ID, Score: float64(hit.Score), Source: source})
	}
	return &Response{Total: int64(resp.Hits.Total.Value), Hits: hits}, nil
}

func (a *OpenSearchAdapter) BulkIndex(ctx context.Context, index string, documents []any) error {
	if a == nil || a.client == nil {
		return errors.New("opensearch client not available")
	}
	body, err := bulkBody(documents)
	if err != nil {
		return err
	}
	if _, err := a.client.Bulk(ctx, opensearchapi.BulkReq{Index: index, Body: bytes.NewReader(body)}); err != nil {
		return fmt.Errorf("opensearch bulk index error: %w", err)
	}
	return nil
}

func (a *OpenSearchAdapter) Health(ctx context.Context) error {
	if a == nil || a.client == nil {
		return errors.New("opensearch client not available")
	}
	if _, err := a.client.Cluster.Health(ctx, &opensearchapi.ClusterHealthReq{}); err != nil {
		return fmt.Errorf("opensearch health check error: %w", err)
	}
	return nil
}
