package logo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/ncobase/unicourse/logging/logger"
	"golang.org/x/sync/singleflight"
)

// AliasLoader fetches the alias map.
type AliasLoader func(ctx context.Context) (Aliases, error)

// HTTPAliasLoader loads a JSON alias file from url.
func HTTPAliasLoader(url string, hc *http.Client) AliasLoader {
	if hc == nil {
		hc = http.DefaultClient
	}
	return func(ctx context.Context) (Aliases, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		resp, err := hc.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("failed to load aliases: %d", resp.StatusCode)
		}
		var a Aliases
		if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&a); err != nil {
			return nil, fmt.Errorf("decode aliases: %w", err)
		}
		return a, nil
	}
}

// AliasCache loads the alias map once. Concurrent first callers share one
// load; a failed load settles on FallbackAliases.
type AliasCache struct {
	load  AliasLoader
	group singleflight.Group
	log   *logger.Logger

	mu      sync.RWMutex
	aliases Aliases
}

// NewAliasCache creates a cache over load. A nil loader always yields the
// fallback aliases.
func NewAliasCache(load AliasLoader, l *logger.Logger) *AliasCache {
	if l == nil {
		l = logger.StdLogger()
	}
	return &AliasCache{load: load, log: l}
}

// Get returns the alias map, loading it on first use.
func (c *AliasCache) Get(ctx context.Context) Aliases {
	c.mu.RLock()
	a := c.aliases
	c.mu.RUnlock()
	if a != nil {
		return a
	}

	v, _, _ := c.group.Do("aliases", func() (any, error) {
		c.mu.RLock()
		if c.aliases != nil {
			defer c.mu.RUnlock()
			return c.aliases, nil
		}
		c.mu.RUnlock()

		loaded := FallbackAliases
		if c.load != nil {
			a, err := c.load(ctx)
			if err != nil {
				c.log.Warnf(ctx, "failed to load university aliases: %v", err)
			} else if a != nil {
				loaded = a
			}
		}

		c.mu.Lock()
		c.aliases = loaded
		c.mu.Unlock()
		return loaded, nil
	})
	return v.(Aliases)
}
