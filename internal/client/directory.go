package client

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fivetwenty-io/dsm/internal/constants"
	"github.com/fivetwenty-io/dsm/pkg/dsm"
	"golang.org/x/sync/singleflight"
)

const refreshKey = "refresh"

// Fetcher performs one discovery call.
type Fetcher func(ctx context.Context) (dsm.CapabilityMap, error)

// Bootstrap returns the directory a client starts with: only the discovery
// API itself.
func Bootstrap() dsm.CapabilityMap {
	return dsm.CapabilityMap{
		constants.InfoAPI: {
			Path:       constants.InfoPath,
			MinVersion: 1,
			MaxVersion: 1,
		},
	}
}

// Directory holds the capabilities the server advertised. It is replaced
// as a whole on every successful refresh.
type Directory struct {
	mutex   sync.RWMutex
	entries dsm.CapabilityMap

	fetch     Fetcher
	group     singleflight.Group
	refreshes atomic.Int64
	timeout   time.Duration

	cache    dsm.Cache
	cacheKey string
	ttl      time.Duration
	logger   dsm.Logger
}

// DirectoryOption configures a Directory.
type DirectoryOption func(*Directory)

// WithDirectoryCache stores snapshots in cache under key for ttl.
func WithDirectoryCache(cache dsm.Cache, key string, ttl time.Duration) DirectoryOption {
	return func(d *Directory) {
		d.cache = cache
		d.cacheKey = key

		if ttl > 0 {
			d.ttl = ttl
		}
	}
}

// WithDirectoryLogger sets the logger.
func WithDirectoryLogger(logger dsm.Logger) DirectoryOption {
	return func(d *Directory) {
		d.logger = logger
	}
}

// WithRefreshTimeout bounds one shared discovery call.
func WithRefreshTimeout(timeout time.Duration) DirectoryOption {
	return func(d *Directory) {
		if timeout > 0 {
			d.timeout = timeout
		}
	}
}

// NewDirectory returns a directory holding the bootstrap entry.
func NewDirectory(fetch Fetcher, opts ...DirectoryOption) *Directory {
	d := &Directory{
		entries: Bootstrap(),
		fetch:   fetch,
		timeout: constants.DiscoveryTimeout,
		ttl:     constants.DefaultCapabilityTTL,
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Lookup returns the capability advertised for api.
func (d *Directory) Lookup(api string) (dsm.Capability, error) {
	d.mutex.RLock()
	defer d.mutex.RUnlock()

	capability, ok := d.entries[api]
	if !ok {
		return dsm.Capability{}, fmt.Errorf("%w: %s", dsm.ErrAPINotFound, api)
	}

	return capability, nil
}

// Snapshot returns a copy of the current entries.
func (d *Directory) Snapshot() dsm.CapabilityMap {
	d.mutex.RLock()
	defer d.mutex.RUnlock()

	return maps.Clone(d.entries)
}

// Refreshes returns how many discovery calls were made.
func (d *Directory) Refreshes() int64 {
	return d.refreshes.Load()
}

// Refresh fetches the directory from the server and replaces the current
// entries. Concurrent callers share one fetch, which is not cancelled when
// one of them gives up. On failure the entries are left untouched.
func (d *Directory) Refresh(ctx context.Context) (dsm.CapabilityMap, error) {
	results := d.group.DoChan(refreshKey, func() (interface{}, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.timeout)
		defer cancel()

		return d.refresh(fetchCtx)
	})

	select {
	case result := <-results:
		if result.Err != nil {
			return nil, result.Err
		}

		entries, _ := result.Val.(dsm.CapabilityMap)

		return maps.Clone(entries), nil
	case <-ctx.Done():
		return nil, fmt.Errorf("waiting for capability refresh: %w", ctx.Err())
	}
}

func (d *Directory) refresh(ctx context.Context) (dsm.CapabilityMap, error) {
	d.refreshes.Add(1)

	fetched, err := d.fetch(ctx)
	if err != nil {
		d.log(func(l dsm.Logger) {
			l.Warn("Capability refresh failed", map[string]interface{}{"error": err.Error()})
		})

		return nil, fmt.Errorf("refreshing capabilities: %w", err)
	}

	entries := d.replace(fetched)

	d.log(func(l dsm.Logger) {
		l.Info("Capabilities refreshed", map[string]interface{}{"apis": len(entries)})
	})

	d.store(ctx, entries)

	return entries, nil
}

func (d *Directory) replace(fetched dsm.CapabilityMap) dsm.CapabilityMap {
	entries, dropped := fetched.Valid()

	for _, name := range dropped {
		capability := fetched[name]

		d.log(func(l dsm.Logger) {
			l.Warn("Dropping invalid capability", map[string]interface{}{
				"api":         name,
				"path":        capability.Path,
				"min_version": capability.MinVersion,
				"max_version": capability.MaxVersion,
			})
		})
	}

	d.mutex.Lock()
	d.entries = entries
	d.mutex.Unlock()

	return entries
}

// Warm loads a cached snapshot. It reports whether one was used.
func (d *Directory) Warm(ctx context.Context) bool {
	if d.cache == nil {
		return false
	}

	entry, err := d.cache.Get(ctx, d.cacheKey)
	if err != nil {
		return false
	}

	var cached dsm.CapabilityMap

	err = json.Unmarshal(entry.Data, &cached)
	if err != nil || len(cached) == 0 {
		d.log(func(l dsm.Logger) {
			l.Warn("Ignoring unreadable capability snapshot", map[string]interface{}{"key": d.cacheKey})
		})

		return false
	}

	entries := d.replace(cached)

	d.log(func(l dsm.Logger) {
		l.Debug("Capabilities loaded from cache", map[string]interface{}{"apis": len(entries)})
	})

	return true
}

func (d *Directory) store(ctx context.Context, entries dsm.CapabilityMap) {
	if d.cache == nil {
		return
	}

	data, err := json.Marshal(entries)
	if err != nil {
		return
	}

	err = d.cache.Set(ctx, d.cacheKey, &dsm.CacheEntry{
		Data:      data,
		ExpiresAt: time.Now().Add(d.ttl),
	})
	if err != nil {
		d.log(func(l dsm.Logger) {
			l.Warn("Storing capability snapshot failed", map[string]interface{}{"error": err.Error()})
		})
	}
}

func (d *Directory) log(fn func(dsm.Logger)) {
	if d.logger != nil {
		fn(d.logger)
	}
}
