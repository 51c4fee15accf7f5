// Package cache keeps the result of an expensive call in a JSON file of a
// store namespace until its TTL runs out.
package cache

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"github.com/GriffinCanCode/dirstore/internal/storage"
	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
)

// Cache stores one value of type T under a key.
type Cache[T any] struct {
	file   *storage.JSONFile[entry[T]]
	ttl    time.Duration
	get    func(context.Context) (T, error)
	now    func() time.Time
	logger *zap.Logger
}

type entry[T any] struct {
	CreatedAt int64 `json:"createdAt"` // unix milliseconds
	Value     T     `json:"value"`
}

// Option configures a Cache.
type Option func(*options)

type options struct {
	now    func() time.Time
	logger *zap.Logger
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithLogger sets the logger for hit/miss events.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// New returns a cache stored at <dir>/<sanitized key>.json. get produces a
// fresh value whenever the stored one is missing, stale or zero.
func New[T any](dir storage.Dir, key string, ttl time.Duration, get func(context.Context) (T, error), opts ...Option) *Cache[T] {
	o := options{now: time.Now, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	return &Cache[T]{
		file:   storage.JSONOf[entry[T]](dir.File(key)),
		ttl:    ttl,
		get:    get,
		now:    o.now,
		logger: o.logger,
	}
}

// Path returns the cache file path.
func (c *Cache[T]) Path() string {
	return c.file.Path()
}

// Get returns the stored value while it is fresh, otherwise it refreshes.
// A zero value never counts as a hit.
func (c *Cache[T]) Get(ctx context.Context) (T, error) {
	stored, ok, err := c.file.Read()
	if err != nil {
		var zero T
		return zero, fmt.Errorf("failed to read cache: %w", err)
	}

	if ok && stored.CreatedAt > 0 && !isZero(stored.Value) {
		created := time.UnixMilli(stored.CreatedAt)
		if created.Add(c.ttl).After(c.now()) {
			c.logger.Debug("cache hit",
				zap.String("path", c.Path()),
				zap.String("age", humanize.RelTime(created, c.now(), "old", "from now")))
			return stored.Value, nil
		}
	}

	c.logger.Debug("cache miss", zap.String("path", c.Path()), zap.Bool("stored", ok))
	return c.Refresh(ctx)
}

// Refresh calls get and stores its result. When the store fails the fresh
// value is still returned together with the error.
func (c *Cache[T]) Refresh(ctx context.Context) (T, error) {
	value, err := c.get(ctx)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("failed to get cache value: %w", err)
	}

	if err := c.file.Write(entry[T]{CreatedAt: c.now().UnixMilli(), Value: value}); err != nil {
		return value, fmt.Errorf("failed to write cache: %w", err)
	}
	return value, nil
}

// Invalidate removes the stored value.
func (c *Cache[T]) Invalidate() error {
	return c.file.Delete()
}

func isZero(v interface{}) bool {
	if v == nil {
		return true
	}
	return reflect.ValueOf(v).IsZero()
}
