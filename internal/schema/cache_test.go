package schema_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/fleetops/fleetquery/internal/config"
	"github.com/fleetops/fleetquery/internal/domain/entity"
	"github.com/fleetops/fleetquery/internal/domain/repo/tables"
	"github.com/fleetops/fleetquery/internal/fleet"
	"github.com/fleetops/fleetquery/internal/fleet/mock"
	"github.com/fleetops/fleetquery/internal/schema"
)

const upstreamDocument = `[
  {
    "name": "processes",
    "description": "All running processes",
    "platforms": ["darwin", "linux", "windows"],
    "columns": [{"name": "pid", "type": "BIGINT"}, {"name": "name"}]
  },
  {
    "name": "rpm_packages",
    "description": "Installed RPM packages",
    "platforms": ["linux"],
    "columns": [{"name": "name"}, {"name": "version"}]
  },
  {
    "name": "launchd",
    "description": "LaunchDaemons and LaunchAgents",
    "platforms": ["darwin"],
    "columns": [{"name": "path"}, {"name": "label"}]
  }
]`

// Helper

type upstreamServer struct {
	*httptest.Server

	hits atomic.Int32
	fail atomic.Bool
}

func startUpstream(t *testing.T) *upstreamServer {
	ret := &upstreamServer{}

	ret.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ret.hits.Add(1)

		if ret.fail.Load() {
			w.WriteHeader(http.StatusInternalServerError)

			return
		}

		_, err := w.Write([]byte(upstreamDocument))
		require.NoError(t, err, "failed to write upstream response")
	}))

	t.Cleanup(ret.Close)

	return ret
}

type cacheEnv struct {
	cache    *schema.Cache
	store    *tables.MemoryStore
	client   *mock.MockClient
	clock    clockwork.FakeClock
	upstream *upstreamServer
	cacheDir string
}

func newCacheEnv(t *testing.T) cacheEnv {
	ctrl := gomock.NewController(t)

	ret := cacheEnv{
		store:    tables.NewMemoryStore(),
		client:   mock.NewMockClient(ctrl),
		clock:    clockwork.NewFakeClockAt(time.Now()),
		upstream: startUpstream(t),
		cacheDir: t.TempDir(),
	}

	conf := config.Schema{
		SourceURL: ret.upstream.URL,
		CacheDir:  ret.cacheDir,
	}

	ret.cache = schema.NewCache(ret.client, ret.store, conf, logr.Discard()).WithClock(ret.clock)

	return ret
}

func (e cacheEnv) cacheFilePath() string {
	return filepath.Join(e.cacheDir, "osquery_fleet_schema.json")
}

// seedDiskCache writes the upstream document to disk with the given age
// relative to the fake clock.
func (e cacheEnv) seedDiskCache(t *testing.T, age time.Duration) {
	err := os.WriteFile(e.cacheFilePath(), []byte(upstreamDocument), 0o644)
	require.NoError(t, err, "failed to seed disk cache")

	mtime := e.clock.Now().Add(-age)

	err = os.Chtimes(e.cacheFilePath(), mtime, mtime)
	require.NoError(t, err, "failed to set disk cache mtime")
}

// Test

func TestInitializeDownloadsAndPersists(t *testing.T) {
	t.Parallel()

	env := newCacheEnv(t)
	ctx := context.Background()

	env.cache.Initialize(ctx, false)

	assert.EqualValues(t, 1, env.upstream.hits.Load(), "expected one download")
	assert.FileExists(t, env.cacheFilePath(), "cache file not persisted")

	info := env.cache.Info(ctx)
	assert.True(t, info.FileExists, "cache file missing from info")
	assert.True(t, info.Valid, "fresh cache file should be valid")
	assert.Equal(t, 3, info.TableCount, "unexpected registry size")

	// Subsequent calls are no-ops.
	env.cache.Initialize(ctx, false)
	assert.EqualValues(t, 1, env.upstream.hits.Load(), "initialize downloaded twice")
}

func TestInitializeUsesFreshDiskCache(t *testing.T) {
	t.Parallel()

	env := newCacheEnv(t)
	ctx := context.Background()

	env.seedDiskCache(t, time.Hour)

	env.cache.Initialize(ctx, false)

	assert.EqualValues(t, 0, env.upstream.hits.Load(), "fresh disk cache should avoid the network")
	assert.Equal(t, 3, env.cache.Info(ctx).TableCount, "unexpected registry size")
}

func TestInitializeRejectsExpiredDiskCache(t *testing.T) {
	t.Parallel()

	env := newCacheEnv(t)
	ctx := context.Background()

	// Exactly at the TTL boundary the file is already expired.
	env.seedDiskCache(t, 24*time.Hour)

	env.cache.Initialize(ctx, false)

	assert.EqualValues(t, 1, env.upstream.hits.Load(), "expired disk cache should trigger a download")
}

func TestRefreshBypassesFreshDiskCache(t *testing.T) {
	t.Parallel()

	env := newCacheEnv(t)
	ctx := context.Background()

	env.seedDiskCache(t, time.Hour)

	fromNetwork := env.cache.Refresh(ctx)

	assert.True(t, fromNetwork, "refresh should report network success")
	assert.EqualValues(t, 1, env.upstream.hits.Load(), "refresh should ignore disk freshness")
}

func TestRefreshFallsBackToStaleDiskCache(t *testing.T) {
	t.Parallel()

	env := newCacheEnv(t)
	ctx := context.Background()

	env.seedDiskCache(t, 48*time.Hour)
	env.upstream.fail.Store(true)

	fromNetwork := env.cache.Refresh(ctx)

	assert.False(t, fromNetwork, "refresh did not reach the network source")
	assert.Equal(t, 3, env.cache.Info(ctx).TableCount, "stale disk cache should still load")
}

func TestInitializeFallsBackToBundledTables(t *testing.T) {
	t.Parallel()

	env := newCacheEnv(t)
	ctx := context.Background()

	env.upstream.fail.Store(true)

	env.cache.Initialize(ctx, false)

	info := env.cache.Info(ctx)
	assert.False(t, info.FileExists, "no cache file should exist")
	assert.Equal(t, 2, info.TableCount, "expected the bundled fallback tables")
}

func TestConcurrentInitializeSharesOneDownload(t *testing.T) {
	t.Parallel()

	env := newCacheEnv(t)
	ctx := context.Background()

	var wg sync.WaitGroup

	for i := 0; i < 10; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			env.cache.Initialize(ctx, false)
		}()
	}

	wg.Wait()

	assert.EqualValues(t, 1, env.upstream.hits.Load(), "concurrent initialize should share one download")
}

func TestTablesForHostDiscoveryAndEnrichment(t *testing.T) {
	t.Parallel()

	env := newCacheEnv(t)
	ctx := context.Background()

	env.client.EXPECT().
		Post(gomock.Any(), "/hosts/42/query", gomock.Any()).
		Return(fleet.Response{
			Success: true,
			Data:    []byte(`{"rows": [{"name": "custom_ext"}, {"name": "processes"}]}`),
		}, nil).
		Times(1)

	res := env.cache.TablesForHost(ctx, 42, "linux")

	require.Len(t, res, 2, "unexpected number of tables")

	custom := res[0]
	assert.Equal(t, "custom_ext", custom.Name, "different table name")
	assert.True(t, custom.IsCustom, "unknown table should be custom")
	assert.Equal(t, entity.MetadataSourceLiveDiscovery, custom.MetadataSource, "different metadata source")
	assert.Equal(t, []string{"linux"}, custom.Platforms, "custom table platform should match the host")

	known := res[1]
	assert.Equal(t, "processes", known.Name, "different table name")
	assert.False(t, known.IsCustom, "known table should not be custom")
	assert.Equal(t, entity.MetadataSourceRepository, known.MetadataSource, "different metadata source")
	assert.Equal(t, "All running processes", known.Description, "registry metadata missing")

	// A second call within the host TTL is served from the store.
	again := env.cache.TablesForHost(ctx, 42, "linux")
	assert.Equal(t, res, again, "cached result differs")
}

func TestTablesForHostExpiredEntryTriggersRediscovery(t *testing.T) {
	t.Parallel()

	env := newCacheEnv(t)
	ctx := context.Background()

	env.client.EXPECT().
		Post(gomock.Any(), "/hosts/42/query", gomock.Any()).
		Return(fleet.Response{Success: true, Data: []byte(`{"rows": [{"name": "processes"}]}`)}, nil).
		Times(2)

	env.cache.TablesForHost(ctx, 42, "linux")

	env.clock.Advance(time.Hour)

	env.cache.TablesForHost(ctx, 42, "linux")
}

func TestTablesForHostStaleFallbackOnDiscoveryFailure(t *testing.T) {
	t.Parallel()

	env := newCacheEnv(t)
	ctx := context.Background()

	stale := entity.HostTableEntry{
		HostID:   42,
		Platform: "linux",
		Tables: []entity.EnrichedTable{
			{TableSchema: entity.TableSchema{Name: "processes"}, MetadataSource: entity.MetadataSourceRepository},
		},
		FetchedAt: env.clock.Now().Add(-2 * time.Hour),
	}

	err := env.store.WriteHostTables(ctx, stale)
	require.NoError(t, err, "failed to seed store")

	env.client.EXPECT().
		Post(gomock.Any(), "/hosts/42/query", gomock.Any()).
		Return(fleet.Response{Success: false, Message: "host is offline"}, nil).
		Times(1)

	res := env.cache.TablesForHost(ctx, 42, "linux")

	assert.Equal(t, stale.Tables, res, "stale entry should be returned when discovery fails")
}

func TestTablesForHostRegistryFallback(t *testing.T) {
	t.Parallel()

	env := newCacheEnv(t)
	ctx := context.Background()

	env.client.EXPECT().
		Post(gomock.Any(), "/hosts/42/query", gomock.Any()).
		Return(fleet.Response{Success: false, Message: "host is offline"}, nil).
		Times(1)

	res := env.cache.TablesForHost(ctx, 42, "linux")

	// Only the linux tables from the registry, sorted by name.
	require.Len(t, res, 2, "unexpected number of tables")
	assert.Equal(t, "processes", res[0].Name, "different first table")
	assert.Equal(t, "rpm_packages", res[1].Name, "different second table")

	for _, table := range res {
		assert.Equal(t, entity.MetadataSourceRepositoryOnly, table.MetadataSource, "different metadata source")
		assert.False(t, table.IsCustom, "registry tables are not custom")
	}
}

func TestInvalidateHostForcesRediscovery(t *testing.T) {
	t.Parallel()

	env := newCacheEnv(t)
	ctx := context.Background()

	env.client.EXPECT().
		Post(gomock.Any(), "/hosts/42/query", gomock.Any()).
		Return(fleet.Response{Success: true, Data: []byte(`{"rows": [{"name": "processes"}]}`)}, nil).
		Times(2)

	env.cache.TablesForHost(ctx, 42, "linux")

	env.cache.InvalidateHost(ctx, 42)

	env.cache.TablesForHost(ctx, 42, "linux")
}

func TestInfoCountsCachedHosts(t *testing.T) {
	t.Parallel()

	env := newCacheEnv(t)
	ctx := context.Background()

	env.client.EXPECT().
		Post(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(fleet.Response{Success: true, Data: []byte(`{"rows": [{"name": "processes"}]}`)}, nil).
		Times(2)

	env.cache.TablesForHost(ctx, 42, "linux")
	env.cache.TablesForHost(ctx, 43, "darwin")

	info := env.cache.Info(ctx)
	assert.Equal(t, 2, info.HostCount, "unexpected host count")
}
