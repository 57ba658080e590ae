package client_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	. "github.com/fivetwenty-io/dsm/internal/client"
	"github.com/fivetwenty-io/dsm/pkg/dsm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errFetch = errors.New("fetch failed")

func staticFetcher(capabilities dsm.CapabilityMap) Fetcher {
	return func(context.Context) (dsm.CapabilityMap, error) {
		return capabilities, nil
	}
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestDirectory(t *testing.T) {
	t.Parallel()

	t.Run("starts with the bootstrap entry", func(t *testing.T) {
		t.Parallel()

		directory := NewDirectory(staticFetcher(nil))

		capability, err := directory.Lookup("SYNO.API.Info")
		require.NoError(t, err)
		assert.Equal(t, "query.cgi", capability.Path)
		assert.Equal(t, dsm.Versions(1, 1), capability.Versions())
		assert.Len(t, directory.Snapshot(), 1)

		_, err = directory.Lookup("SYNO.FileStation.List")
		require.ErrorIs(t, err, dsm.ErrAPINotFound)
	})

	t.Run("refresh replaces the whole map", func(t *testing.T) {
		t.Parallel()

		directory := NewDirectory(staticFetcher(dsm.CapabilityMap{
			"SYNO.FileStation.List": {Path: "entry.cgi", MinVersion: 1, MaxVersion: 2},
		}))

		entries, err := directory.Refresh(context.Background())
		require.NoError(t, err)
		assert.Len(t, entries, 1)

		_, err = directory.Lookup("SYNO.API.Info")
		require.ErrorIs(t, err, dsm.ErrAPINotFound)

		capability, err := directory.Lookup("SYNO.FileStation.List")
		require.NoError(t, err)
		assert.Equal(t, "entry.cgi", capability.Path)
		assert.Equal(t, int64(1), directory.Refreshes())
	})

	t.Run("failure leaves the map untouched", func(t *testing.T) {
		t.Parallel()

		directory := NewDirectory(func(context.Context) (dsm.CapabilityMap, error) {
			return nil, errFetch
		})

		_, err := directory.Refresh(context.Background())
		require.ErrorIs(t, err, errFetch)

		_, err = directory.Lookup("SYNO.API.Info")
		require.NoError(t, err)
	})

	t.Run("drops invalid entries", func(t *testing.T) {
		t.Parallel()

		logger := &MockLogger{}
		directory := NewDirectory(staticFetcher(dsm.CapabilityMap{
			"SYNO.Good": {Path: "entry.cgi", MinVersion: 1, MaxVersion: 2},
			"SYNO.Bad":  {Path: "entry.cgi", MinVersion: 3, MaxVersion: 2},
		}), WithDirectoryLogger(logger))

		entries, err := directory.Refresh(context.Background())
		require.NoError(t, err)
		assert.Contains(t, entries, "SYNO.Good")
		assert.NotContains(t, entries, "SYNO.Bad")
		assert.True(t, logger.Has("Dropping invalid capability"))
		assert.True(t, logger.Has("Capabilities refreshed"))
	})

	t.Run("snapshot is a copy", func(t *testing.T) {
		t.Parallel()

		directory := NewDirectory(staticFetcher(nil))
		snapshot := directory.Snapshot()
		delete(snapshot, "SYNO.API.Info")

		_, err := directory.Lookup("SYNO.API.Info")
		require.NoError(t, err)
	})
}

func TestDirectory_ConcurrentRefreshSharesOneFetch(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32

	release := make(chan struct{})
	directory := NewDirectory(func(context.Context) (dsm.CapabilityMap, error) {
		calls.Add(1)
		<-release

		return dsm.CapabilityMap{"SYNO.X": {Path: "x.cgi", MinVersion: 1, MaxVersion: 1}}, nil
	})

	const callers = 8

	var (
		started sync.WaitGroup
		done    sync.WaitGroup
	)

	errs := make(chan error, callers)

	for range callers {
		started.Add(1)
		done.Add(1)

		go func() {
			defer done.Done()

			started.Done()

			_, err := directory.Refresh(context.Background())
			errs <- err
		}()
	}

	started.Wait()
	// Give every caller time to join the in-flight fetch.
	time.Sleep(50 * time.Millisecond)
	close(release)
	done.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, int64(1), directory.Refreshes())
}

func TestDirectory_RefreshHonoursContext(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	defer close(release)

	directory := NewDirectory(func(context.Context) (dsm.CapabilityMap, error) {
		<-release

		return nil, nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := directory.Refresh(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestDirectory_Cache(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	cache := dsm.NewMemoryCache(10)
	capabilities := dsm.CapabilityMap{
		"SYNO.FileStation.List": {Path: "entry.cgi", MinVersion: 1, MaxVersion: 2},
	}

	first := NewDirectory(staticFetcher(capabilities), WithDirectoryCache(cache, "capabilities.test", time.Hour))
	assert.False(t, first.Warm(ctx))

	_, err := first.Refresh(ctx)
	require.NoError(t, err)

	entry, err := cache.Get(ctx, "capabilities.test")
	require.NoError(t, err)

	var stored dsm.CapabilityMap

	require.NoError(t, json.Unmarshal(entry.Data, &stored))
	assert.Equal(t, capabilities, stored)

	second := NewDirectory(func(context.Context) (dsm.CapabilityMap, error) {
		return nil, errFetch
	}, WithDirectoryCache(cache, "capabilities.test", time.Hour))

	assert.True(t, second.Warm(ctx))

	capability, err := second.Lookup("SYNO.FileStation.List")
	require.NoError(t, err)
	assert.Equal(t, "entry.cgi", capability.Path)
	assert.Equal(t, int64(0), second.Refreshes())
}

func TestDirectory_WarmIgnoresUnreadableSnapshot(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	cache := dsm.NewMemoryCache(10)
	require.NoError(t, cache.Set(ctx, "key", &dsm.CacheEntry{Data: []byte("not json")}))

	directory := NewDirectory(staticFetcher(nil), WithDirectoryCache(cache, "key", time.Hour))
	assert.False(t, directory.Warm(ctx))
	assert.Len(t, directory.Snapshot(), 1)
}
