package data

import (
	"context"
	"time"
)

// Health checks every configured backend. Unconfigured backends are
// reported as "disabled" and do not degrade the overall status.
func (d *Data) Health(ctx context.Context) map[string]any {
	services := map[string]any{}
	healthy := true

	check := func(name string, configured bool, ping func() error) {
		if !configured {
			services[name] = map[string]any{"status": "disabled"}
			return
		}
		start := time.Now()
		err := ping()
		entry := map[string]any{"latency_ms": time.Since(start).Milliseconds()}
		if err != nil {
			healthy = false
			entry["status"] = "unhealthy"
			entry["error"] = err.Error()
		} else {
			entry["status"] = "healthy"
		}
		services[name] = entry
	}

	check("mongodb", d.Mongo != nil, func() error { return d.Mongo.Health(ctx) })
	check("redis", d.Redis != nil, func() error { return d.Redis.Ping(ctx).Err() })

	if d.Search != nil {
		for eng, err := range d.Search.Health(ctx) {
			check(string(eng), true, func() error { return err })
		}
	}

	status := "healthy"
	if !healthy {
		status = "degraded"
	}
	return map[string]any{
		"status":    status,
		"timestamp": time.Now(),
		"services":  services,
	}
}
