package dsm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

// CacheType selects where capability snapshots are kept.
type CacheType string

const (
	// CacheTypeNone disables snapshots: every client discovers on first use.
	CacheTypeNone CacheType = "none"

	// CacheTypeMemory keeps snapshots in process.
	CacheTypeMemory CacheType = "memory"

	// CacheTypeNATS shares snapshots through a JetStream key-value bucket.
	CacheTypeNATS CacheType = "nats"

	// CacheTypeLayered reads through memory first and falls back to NATS.
	CacheTypeLayered CacheType = "memory+nats"
)

// CacheConfig selects the capability snapshot store. The CLI reads it from
// the "cache" section of its config file.
type CacheConfig struct {
	Type CacheType `mapstructure:"type" yaml:"type"`

	// MaxSize bounds the memory store; one entry is kept per endpoint.
	MaxSize int `mapstructure:"max_size" yaml:"max_size,omitempty"`

	// NATSURL, Bucket and TTL configure the NATS store.
	NATSURL string        `mapstructure:"nats_url" yaml:"nats_url,omitempty"`
	Bucket  string        `mapstructure:"bucket"   yaml:"bucket,omitempty"`
	TTL     time.Duration `mapstructure:"ttl"      yaml:"ttl,omitempty"`

	NATSOptions []nats.Option `mapstructure:"-" yaml:"-"`
}

// NewCacheFromConfig opens the configured store. A nil config or the "none"
// type returns a nil Cache, which disables snapshots.
func NewCacheFromConfig(config *CacheConfig) (Cache, error) {
	if config == nil {
		return nil, nil //nolint:nilnil // a nil cache is the disabled state
	}

	switch config.Type {
	case CacheTypeNone, "":
		return nil, nil //nolint:nilnil // a nil cache is the disabled state

	case CacheTypeMemory:
		return NewMemoryCache(config.MaxSize), nil

	case CacheTypeNATS:
		return NewNATSKVCache(config.natsConfig())

	case CacheTypeLayered:
		shared, err := NewNATSKVCache(config.natsConfig())
		if err != nil {
			return nil, err
		}

		return NewCacheChain(NewMemoryCache(config.MaxSize), shared), nil

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedCache, config.Type)
	}
}

func (c *CacheConfig) natsConfig() *NATSKVConfig {
	return &NATSKVConfig{
		URL:     c.NATSURL,
		Bucket:  c.Bucket,
		TTL:     c.TTL,
		Options: c.NATSOptions,
	}
}

// CacheChain reads through its layers in order. A hit in a later layer is
// copied into the earlier ones; writes go to every layer.
type CacheChain struct {
	layers []Cache
}

// NewCacheChain creates a chain, fastest layer first.
func NewCacheChain(layers ...Cache) *CacheChain {
	return &CacheChain{layers: layers}
}

// Get returns the entry from the first layer holding it.
func (c *CacheChain) Get(ctx context.Context, key string) (*CacheEntry, error) {
	for i, layer := range c.layers {
		entry, err := layer.Get(ctx, key)
		if err != nil {
			continue
		}

		for _, faster := range c.layers[:i] {
			_ = faster.Set(ctx, key, entry)
		}

		return entry, nil
	}

	return nil, fmt.Errorf("%w: %s", ErrKeyNotFoundInChain, key)
}

// Set stores the entry in every layer. Failures of individual layers are
// joined.
func (c *CacheChain) Set(ctx context.Context, key string, entry *CacheEntry) error {
	return c.each(func(layer Cache) error { return layer.Set(ctx, key, entry) })
}

// Delete removes the entry from every layer.
func (c *CacheChain) Delete(ctx context.Context, key string) error {
	return c.each(func(layer Cache) error { return layer.Delete(ctx, key) })
}

// Clear empties every layer.
func (c *CacheChain) Clear(ctx context.Context) error {
	return c.each(func(layer Cache) error { return layer.Clear(ctx) })
}

// Has reports whether any layer holds a live entry.
func (c *CacheChain) Has(ctx context.Context, key string) bool {
	for _, layer := range c.layers {
		if layer.Has(ctx, key) {
			return true
		}
	}

	return false
}

func (c *CacheChain) each(fn func(Cache) error) error {
	var errs []error

	for _, layer := range c.layers {
		if err := fn(layer); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
