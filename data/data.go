// Package data owns the connections to MongoDB, Redis and the search
// engines, and exposes them to repositories.
package data

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ncobase/unicourse/data/config"
	"github.com/ncobase/unicourse/data/mongodb"
	"github.com/ncobase/unicourse/data/search"
	"github.com/redis/go-redis/v9"
)

const connectTimeout = 10 * time.Second

// Data holds the shared backend clients. Any of them may be nil when the
// matching section is not configured.
type Data struct {
	Conf   *config.Config
	Mongo  *mongodb.Manager
	Redis  *redis.Client
	Search *search.Client
}

// New opens every configured backend and returns a cleanup function that
// closes them.
func New(cfg *config.Config) (*Data, func(), error) {
	if cfg == nil {
		return nil, nil, errors.New("data config is nil")
	}
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	d := &Data{Conf: cfg}

	if cfg.MongoDB != nil && cfg.MongoDB.Master != nil && cfg.MongoDB.Master.URI != "" {
		m, err := mongodb.NewManager(ctx, cfg.MongoDB)
		if err != nil {
			return nil, nil, fmt.Errorf("mongodb: %w", err)
		}
		d.Mongo = m
	}

	d.Redis = newRedis(cfg.Redis)

	sc, err := search.NewFromConfig(cfg.Search)
	if err != nil {
		_ = d.Close()
		return nil, nil, fmt.Errorf("search: %w", err)
	}
	d.Search = sc

	cleanup := func() {
		if err := d.Close(); err != nil {
			fmt.Printf("cleanup errors: %v\n", err)
		}
	}
	return d, cleanup, nil
}

func newRedis(cfg *config.Redis) *redis.Client {
	if cfg == nil || cfg.Addr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.Db,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		DialTimeout:  cfg.DialTimeout,
	})
}

// Close releases every open client.
func (d *Data) Close() error {
	var errs []error
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	if d.Mongo != nil {
		if err := d.Mongo.Close(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if d.Redis != nil {
		if err := d.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis close: %w", err))
		}
	}
	return errors.Join(errs...)
}
