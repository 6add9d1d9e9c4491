package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/elastic/go-elasticsearch/v8"
)

// ElasticAdapter serves queries from Elasticsearch.
type ElasticAdapter struct {
	client *elasticsearch.Client
}

// NewElasticAdapter returns nil when no address is configured.
func NewElasticAdapter(addresses []string, username, password string) (*ElasticAdapter, error) {
	if len(addresses) == 0 {
		return nil, nil
	}
	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: addresses,
		Username:  username,
		Password:  password,
	})
	if err != nil {
		return nil, fmt.Errorf("elasticsearch client creation error: %w", err)
	}
	return &ElasticAdapter{client: es}, nil
}

func (a *ElasticAdapter) Type() Engine { return Elasticsearch }

func (a *ElasticAdapter) Search(ctx context.Context, req *Request) (*Response, error) {
	if a == nil || a.client == nil {
		return nil, errors.New("elasticsearch client not available")
	}
	body, err := fuzzyQuery(req)
	if err != nil {
		return nil, err
	}

	res, err := a.client.Search(
		a.client.Search.WithContext(ctx),
		a.client.Search.WithIndex(req.Index),
		a.client.Search.WithBody(bytes.NewReader(body)),
		a.client.Search.WithTrackTotalHits(true),
	)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("elasticsearch returned status: %d", res.StatusCode)
	}
	return decodeHits(res.Body)
}

func (a *ElasticAdapter) BulkIndex(ctx context.Context, index string, documents []any) error {
	if a == nil || a.client == nil {
		return errors.New("elasticsearch client not available")
	}
	body, err := bulkBody(documents)
	if err != nil {
		return err
	}

	res, err := a.client.Bulk(bytes.NewReader(body),
		a.client.Bulk.WithContext(ctx),
		a.client.Bulk.WithIndex(index),
		a.client.Bulk.WithRefresh("true"))
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("bulk index error: %s", res.Status())
	}
	return nil
}

func (a *ElasticAdapter) Health(ctx context.Context) error {
	if a == nil || a.client == nil {
		return errors.New("elasticsearch client not available")
	}
	res, err := a.client.Info(a.client.Info.WithContext(ctx))
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("elasticsearch health check failed: %s", res.Status())
	}
	return nil
}

// fuzzyQuery builds the query DSL shared by Elasticsearch and OpenSearch.
func fuzzyQuery(req *Request) ([]byte, error) {
	q := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     req.Query,
				"fields":    searchFields,
				"fuzziness": "AUTO",
			},
		},
	}
	if req.Size > 0 {
		q["size"] = req.Size
	}
	return json.Marshal(q)
}

// bulkBody renders index actions in NDJSON, keyed by document id when the
// document carries one.
func bulkBody(documents []any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, doc := range documents {
		raw, err := json.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("error encoding document: %w", err)
		}
		var ident struct {
			ID string `json:"id"`
		}
		_ = json.Unmarshal(raw, &ident)

		action := map[string]any{}
		if ident.ID != "" {
			action["_id"] = ident.ID
		}
		if err := enc.Encode(map[string]any{"index": action}); err != nil {
			return nil, err
		}
		buf.Write(raw)
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}

func decodeHits(r io.Reader) (*Response, error) {
	var esResp struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				ID     string         `json:"_id"`
				Score  float64        `json:"_score"`
				Source map[string]any `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(r).Decode(&esResp); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	hits := make([]Hit, len(esResp.Hits.Hits))
	for i, hit := range esResp.Hits.Hits {
		hits[i] = Hit{ID: hit.ID, Score: hit.Score, Source: hit.Source}
	}
	return &Response{Total: esResp.Hits.Total.Value, Hits: hits}, nil
}
