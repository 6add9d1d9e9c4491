package logo

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// Prober reports whether an asset path exists.
type Prober interface {
	Exists(ctx context.Context, assetPath string) bool
}

// DirProber checks files under a local root.
type DirProber struct {
	Root string
}

func (p DirProber) Exists(_ context.Context, assetPath string) bool {
	fi, err := os.Stat(filepath.Join(p.Root, filepath.FromSlash(strings.TrimPrefix(assetPath, "/"))))
	return err == nil && !fi.IsDir()
}

// HTTPProber issues HEAD requests against a base URL.
type HTTPProber struct {
	Base   string
	Client *http.Client
}

func (p HTTPProber) Exists(ctx context.Context, assetPath string) bool {
	hc := p.Client
	if hc == nil {
		hc = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, strings.TrimRight(p.Base, "/")+assetPath, nil)
	if err != nil {
		return false
	}
	resp, err := hc.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// Resolver picks the first existing logo candidate.
type Resolver struct {
	base     string
	fallback string
	aliases  *AliasCache
	probe    Prober
}

// NewResolver creates a resolver. Empty base and fallback use the defaults.
func NewResolver(base, fallback string, aliases *AliasCache, probe Prober) *Resolver {
	if base == "" {
		base = DefaultBase
	}
	if fallback == "" {
		fallback = DefaultLogo
	}
	return &Resolver{base: base, fallback: fallback, aliases: aliases, probe: probe}
}

// Resolve returns the logo path for a university.
func (r *Resolver) Resolve(ctx context.Context, id, name string) string {
	var aliases Aliases
	if r.aliases != nil {
		aliases = r.aliases.Get(ctx)
	}
	candidates := Candidates(r.base, id, name, aliases)
	for _, c := range candidates[:len(candidates)-1] {
		if r.probe == nil || r.probe.Exists(ctx, c) {
			return c
		}
	}
	return r.fallback
}
