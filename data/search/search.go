// Package search wraps the full-text engines holding the course index.
package search

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

var (
	ErrNoEngineAvailable = errors.New("no search engine available")
	ErrEngineNotFound    = errors.New("search engine not found")
)

// Engine names a search backend.
type Engine string

const (
	Meilisearch   Engine = "meilisearch"
	Elasticsearch Engine = "elasticsearch"
	OpenSearch    Engine = "opensearch"
)

// enginePriority is the fallback order when the default engine is down.
var enginePriority = []Engine{Meilisearch, Elasticsearch, OpenSearch}

// Request is a fuzzy query over the searchable course fields.
type Request struct {
	Index string `json:"index"`
	Query string `json:"query"`
	Size  int    `json:"size,omitempty"`
}

// Response holds ranked hits.
type Response struct {
	Total    int64         `json:"total"`
	Hits     []Hit         `json:"hits"`
	Duration time.Duration `json:"duration"`
	Engine   Engine        `json:"engine"`
}

// Hit is one matching document.
type Hit struct {
	ID     string         `json:"id"`
	Score  float64        `json:"score"`
	Source map[string]any `json:"source"`
}

// Adapter is implemented by every engine backend.
type Adapter interface {
	Search(ctx context.Context, req *Request) (*Response, error)
	BulkIndex(ctx context.Context, index string, documents []any) error
	Health(ctx context.Context) error
	Type() Engine
}

// Client dispatches to the preferred healthy adapter.
type Client struct {
	mu        sync.RWMutex
	adapters  map[Engine]Adapter
	engine    Engine
	preferred Engine
}

// NewClient creates a client preferring the named engine.
func NewClient(preferred string, adapters ...Adapter) *Client {
	c := &Client{
		adapters:  make(map[Engine]Adapter, len(adapters)),
		preferred: Engine(preferred),
	}
	for _, a := range adapters {
		if a != nil {
			c.adapters[a.Type()] = a
		}
	}
	return c
}

// SelectEngine picks the preferred engine when healthy, otherwise the
// first healthy one in priority order.
func (c *Client) SelectEngine(ctx context.Context) (Engine, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	candidates := append([]Engine{c.preferred}, enginePriority...)
	for _, eng := range candidates {
		a, ok := c.adapters[eng]
		if !ok {
			continue
		}
		if err := a.Health(ctx); err == nil {
			c.engine = eng
			return eng, nil
		}
	}
	c.engine = ""
	return "", ErrNoEngineAvailable
}

func (c *Client) adapter(ctx context.Context) (Adapter, error) {
	c.mu.RLock()
	eng := c.engine
	a, ok := c.adapters[eng]
	c.mu.RUnlock()
	if ok {
		return a, nil
	}

	eng, err := c.SelectEngine(ctx)
	if err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.adapters[eng], nil
}

// Engine returns the engine in use, empty before the first selection.
func (c *Client) Engine() Engine {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.engine
}

// Search runs req against the active engine.
func (c *Client) Search(ctx context.Context, req *Request) (*Response, error) {
	a, err := c.adapter(ctx)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := a.Search(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%s search: %w", a.Type(), err)
	}
	resp.Duration = time.Since(start)
	resp.Engine = a.Type()
	return resp, nil
}

// BulkIndex writes documents to every configured engine so a fallback
// engine serves the same data.
func (c *Client) BulkIndex(ctx context.Context, index string, documents []any) error {
	c.mu.RLock()
	adapters := make([]Adapter, 0, len(c.adapters))
	for _, a := range c.adapters {
		adapters = append(adapters, a)
	}
	c.mu.RUnlock()

	if len(adapters) == 0 {
		return ErrNoEngineAvailable
	}
	var errs []error
	for _, a := range adapters {
		if err := a.BulkIndex(ctx, index, documents); err != nil {
			errs = append(errs, fmt.Errorf("%s bulk index: %w", a.Type(), err))
		}
	}
	return errors.Join(errs...)
}

// Health reports the health of each configured engine.
func (c *Client) Health(ctx context.Context) map[Engine]error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[Engine]error, len(c.adapters))
	for eng, a := range c.adapters {
		out[eng] = a.Health(ctx)
	}
	return out
}

// searchFields are the course fields matched by engines that need them
// listed explicitly.
var searchFields = []string{"nomeCorso^3", "discipline.name", "university.name", "location.name"}
