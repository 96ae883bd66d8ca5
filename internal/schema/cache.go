package schema

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/go-logr/logr"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/singleflight"

	"github.com/fleetops/fleetquery/internal/config"
	"github.com/fleetops/fleetquery/internal/domain/entity"
	"github.com/fleetops/fleetquery/internal/domain/repo"
	"github.com/fleetops/fleetquery/internal/fleet"
)

const (
	cacheFileName = "osquery_fleet_schema.json"

	defaultCacheTTL        = 24 * time.Hour
	defaultHostCacheTTL    = time.Hour
	defaultDownloadTimeout = 30 * time.Second

	// Asks a live host which tables its agent has registered.
	introspectionQuery = "SELECT name FROM osquery_registry WHERE registry = 'table' ORDER BY name;"
)

type loadSource int

const (
	sourceNone loadSource = iota
	sourceDiskCache
	sourceDownload
	sourceStaleDisk
	sourceBundled
)

// Cache resolves the set of queryable tables for a platform or a live
// host, hiding the cost and unreliability of the upstream schema
// repository. Public methods never fail: every path returns a usable,
// possibly degraded, value.
type Cache struct {
	client fleet.Client
	store  repo.TableStore
	clock  clockwork.Clock
	logger logr.Logger

	httpClient *http.Client

	sourceURL       string
	cachePath       string
	cacheTTL        time.Duration
	hostCacheTTL    time.Duration
	downloadTimeout time.Duration

	group singleflight.Group

	mu       sync.RWMutex
	registry map[string]entity.TableSchema
	loaded   bool
	loadedAt time.Time
}

func NewCache(client fleet.Client, store repo.TableStore, conf config.Schema, logger logr.Logger) *Cache {
	cacheTTL := conf.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = defaultCacheTTL
	}

	hostCacheTTL := conf.HostCacheTTL
	if hostCacheTTL == 0 {
		hostCacheTTL = defaultHostCacheTTL
	}

	downloadTimeout := conf.DownloadTimeout
	if downloadTimeout == 0 {
		downloadTimeout = defaultDownloadTimeout
	}

	return &Cache{
		client:          client,
		store:           store,
		clock:           clockwork.NewRealClock(),
		logger:          logger,
		httpClient:      &http.Client{},
		sourceURL:       conf.SourceURL,
		cachePath:       filepath.Join(conf.CacheDir, cacheFileName),
		cacheTTL:        cacheTTL,
		hostCacheTTL:    hostCacheTTL,
		downloadTimeout: downloadTimeout,
		registry:        map[string]entity.TableSchema{},
	}
}

// WithClock replaces the cache clock. Meant for tests.
func (c *Cache) WithClock(clock clockwork.Clock) *Cache {
	c.clock = clock

	return c
}

// Initialize loads the registry on first call (or again when
// forceRefresh is set). Concurrent first calls share a single load
// attempt. It never fails observably: the worst case is an empty
// registry, which callers must treat as "no metadata available".
func (c *Cache) Initialize(ctx context.Context, forceRefresh bool) {
	if c.isLoaded() && !forceRefresh {
		return
	}

	c.group.Do("load", func() (interface{}, error) { //nolint:errcheck // load never fails
		if c.isLoaded() && !forceRefresh {
			return sourceNone, nil
		}

		return c.load(ctx, forceRefresh), nil
	})
}

// Refresh forces a registry reload, bypassing the disk cache validity
// check. It reports whether the network source specifically produced
// the registry, as opposed to a fallback tier.
func (c *Cache) Refresh(ctx context.Context) bool {
	v, _, _ := c.group.Do("load", func() (interface{}, error) {
		return c.load(ctx, true), nil
	})

	source, ok := v.(loadSource)

	return ok && source == sourceDownload
}

// load runs the fallback chain: valid disk cache, download, stale disk
// cache, bundled tables. Every tier's failure is logged and absorbed.
func (c *Cache) load(ctx context.Context, forceRefresh bool) loadSource {
	c.logger.V(1).Info("Loading table schema registry", "force", forceRefresh)

	if !forceRefresh {
		registry, ok := c.parseDiskCache(true)
		if ok {
			c.setRegistry(registry)
			c.logger.V(1).Info("Loaded registry from disk cache", "tables", len(registry))

			return sourceDiskCache
		}
	}

	raw, err := c.download(ctx)
	if err == nil {
		registry, parseErr := ParseDocument(raw)

		switch {
		case parseErr != nil:
			c.logger.Error(parseErr, "Failed to parse downloaded schema document")
		case len(registry) == 0:
			c.logger.V(0).Info("Downloaded schema document contains no tables")
		default:
			c.persist(raw)
			c.setRegistry(registry)
			c.logger.V(1).Info("Downloaded schema registry", "tables", len(registry))

			return sourceDownload
		}
	} else {
		c.logger.Error(err, "Failed to download schema document")
	}

	registry, ok := c.parseDiskCache(false)
	if ok {
		c.setRegistry(registry)
		c.logger.V(0).Info("Using stale disk cache, download failed", "tables", len(registry))

		return sourceStaleDisk
	}

	bundled := bundledTables()
	c.setRegistry(bundled)
	c.logger.V(0).Info("Using bundled fallback tables, no cache available", "tables", len(bundled))

	return sourceBundled
}

func (c *Cache) download(ctx context.Context) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.downloadTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.sourceURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}

	return raw, nil
}

// persist writes the raw upstream document to disk. Write-to-temp then
// rename, so a concurrent reader never sees a partial file. The file
// mtime is the cache-age signal.
func (c *Cache) persist(raw []byte) {
	err := os.MkdirAll(filepath.Dir(c.cachePath), 0o755)
	if err != nil {
		c.logger.Error(err, "Failed to create cache directory")

		return
	}

	tmpPath := c.cachePath + ".tmp"

	err = os.WriteFile(tmpPath, raw, 0o644)
	if err != nil {
		c.logger.Error(err, "Failed to write schema cache")

		return
	}

	err = os.Rename(tmpPath, c.cachePath)
	if err != nil {
		c.logger.Error(err, "Failed to move schema cache in place")
	}
}

// parseDiskCache reads and parses the on-disk document. With
// requireFresh, a file aged at or beyond the cache TTL is rejected.
func (c *Cache) parseDiskCache(requireFresh bool) (map[string]entity.TableSchema, bool) {
	fi, err := os.Stat(c.cachePath)
	if err != nil {
		return nil, false
	}

	if requireFresh && c.clock.Since(fi.ModTime()) >= c.cacheTTL {
		return nil, false
	}

	raw, err := os.ReadFile(c.cachePath)
	if err != nil {
		c.logger.Error(err, "Failed to read schema cache")

		return nil, false
	}

	registry, err := ParseDocument(raw)
	if err != nil {
		c.logger.Error(err, "Failed to parse schema cache")

		return nil, false
	}

	if len(registry) == 0 {
		return nil, false
	}

	return registry, true
}

func (c *Cache) setRegistry(registry map[string]entity.TableSchema) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.registry = registry
	c.loaded = true
	c.loadedAt = c.clock.Now()
}

func (c *Cache) isLoaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.loaded
}

// TablesForHost returns the enriched table list for one host. Order of
// preference: fresh cached entry, live discovery, stale cached entry,
// registry filtered by platform. Discovery failures are absorbed; the
// result is possibly empty, never an error.
func (c *Cache) TablesForHost(ctx context.Context, hostID uint, platform string) []entity.EnrichedTable {
	c.Initialize(ctx, false)

	entry, found, err := c.store.GetHostTables(ctx, hostID, platform)
	if err != nil {
		c.logger.Error(err, "Failed to read table store", "host", hostID, "platform", platform)

		found = false
	}

	if found && c.clock.Since(entry.FetchedAt) < c.hostCacheTTL {
		c.logger.V(2).Info("Returning cached tables", "host", hostID, "platform", platform)

		return entry.Tables
	}

	tables, err := c.discoverTables(ctx, hostID, platform)
	if err == nil {
		newEntry := entity.HostTableEntry{
			HostID:    hostID,
			Platform:  platform,
			Tables:    tables,
			FetchedAt: c.clock.Now(),
		}

		err = c.store.WriteHostTables(ctx, newEntry)
		if err != nil {
			c.logger.Error(err, "Failed to write table store", "host", hostID, "platform", platform)
		}

		return tables
	}

	c.logger.Error(err, "Failed to discover tables", "host", hostID, "platform", platform)

	if found {
		c.logger.V(0).Info("Returning stale cached tables", "host", hostID, "platform", platform)

		return entry.Tables
	}

	return c.registryByPlatform(platform)
}

// discoverTables asks the live host for its registered table names and
// enriches each name against the registry.
func (c *Cache) discoverTables(ctx context.Context, hostID uint, platform string) ([]entity.EnrichedTable, error) {
	resp, err := c.client.Post(ctx, fmt.Sprintf("/hosts/%d/query", hostID), fleet.HostQueryRequest{Query: introspectionQuery})
	if err != nil {
		return nil, fmt.Errorf("introspection query failed: %w", err)
	}

	if !resp.Success {
		return nil, fmt.Errorf("introspection query rejected: %s", resp.Message)
	}

	var body fleet.HostQueryResponse

	err = json.Unmarshal(resp.Data, &body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode introspection response: %w", err)
	}

	names := make([]string, 0, len(body.Rows))

	for _, row := range body.Rows {
		if name := row["name"]; name != "" {
			names = append(names, name)
		}
	}

	c.logger.V(1).Info("Discovered tables", "host", hostID, "platform", platform, "count", len(names))

	return c.enrich(names, platform), nil
}

func (c *Cache) enrich(names []string, platform string) []entity.EnrichedTable {
	c.mu.RLock()
	defer c.mu.RUnlock()

	ret := make([]entity.EnrichedTable, 0, len(names))

	for _, name := range names {
		known, ok := c.registry[name]
		if ok {
			ret = append(ret, entity.EnrichedTable{
				TableSchema:    known,
				IsCustom:       false,
				MetadataSource: entity.MetadataSourceRepository,
			})

			continue
		}

		ret = append(ret, entity.EnrichedTable{
			TableSchema: entity.TableSchema{
				Name:        name,
				Description: fmt.Sprintf("Custom or extension table: %s", name),
				Platforms:   []string{platform},
				Columns:     []string{},
				Notes:       "Discovered on the host but missing from the schema repository. It may come from an agent extension.",
			},
			IsCustom:       true,
			MetadataSource: entity.MetadataSourceLiveDiscovery,
		})
	}

	return ret
}

// registryByPlatform is the last-resort table list: every registry
// entry whose platform list contains the given platform.
func (c *Cache) registryByPlatform(platform string) []entity.EnrichedTable {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.registry))

	for name, table := range c.registry {
		for _, p := range table.Platforms {
			if p == platform {
				names = append(names, name)

				break
			}
		}
	}

	sort.Strings(names)

	ret := make([]entity.EnrichedTable, 0, len(names))

	for _, name := range names {
		ret = append(ret, entity.EnrichedTable{
			TableSchema:    c.registry[name],
			IsCustom:       false,
			MetadataSource: entity.MetadataSourceRepositoryOnly,
		})
	}

	return ret
}

// InvalidateHost drops every cached entry for the host, across all
// platforms.
func (c *Cache) InvalidateHost(ctx context.Context, hostID uint) {
	err := c.store.InvalidateHost(ctx, hostID)
	if err != nil {
		c.logger.Error(err, "Failed to invalidate host tables", "host", hostID)

		return
	}

	c.logger.V(1).Info("Invalidated host tables", "host", hostID)
}

// Info returns an observability snapshot of the cache state.
func (c *Cache) Info(ctx context.Context) entity.CacheInfo {
	ret := entity.CacheInfo{
		FilePath: c.cachePath,
		TTL:      c.cacheTTL,
	}

	fi, err := os.Stat(c.cachePath)
	if err == nil {
		ret.FileExists = true
		ret.FileSizeBytes = fi.Size()
		ret.FileAge = c.clock.Since(fi.ModTime())
		ret.Valid = ret.FileAge < c.cacheTTL
	}

	c.mu.RLock()
	ret.TableCount = len(c.registry)
	c.mu.RUnlock()

	hostCount, err := c.store.CountHosts(ctx)
	if err != nil {
		c.logger.Error(err, "Failed to count table store hosts")
	} else {
		ret.HostCount = hostCount
	}

	return ret
}
