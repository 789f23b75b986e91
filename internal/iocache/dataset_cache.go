package iocache

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/huangsam/dendro/internal/contract"
	"github.com/huangsam/dendro/internal/dataio"
	"github.com/huangsam/dendro/schema"
	gocache "github.com/patrickmn/go-cache"
)

// Dataset cache lifetimes.
const (
	DefaultDatasetTTL      = 30 * time.Minute
	DefaultCleanupInterval = 10 * time.Minute
)

// DatasetCache memoises parsed datasets in memory.
type DatasetCache struct {
	cache *gocache.Cache
}

var _ contract.DatasetCache = &DatasetCache{} // Compile-time check

// NewDatasetCache creates a new dataset cache.
func NewDatasetCache(defaultTTL, cleanupInterval time.Duration) *DatasetCache {
	return &DatasetCache{cache: gocache.New(defaultTTL, cleanupInterval)}
}

// Get retrieves a dataset from the cache.
func (c *DatasetCache) Get(key string) (*schema.Dataset, bool) {
	if val, found := c.cache.Get(key); found {
		ds, ok := val.(*schema.Dataset)
		return ds, ok
	}
	return nil, false
}

// Set stores a dataset with the default TTL.
func (c *DatasetCache) Set(key string, ds *schema.Dataset) {
	c.cache.SetDefault(key, ds)
}

// Len returns the number of cached entries, including expired ones not yet evicted.
func (c *DatasetCache) Len() int {
	return c.cache.ItemCount()
}

// datasetKey identifies one parse of a file. The modification time and size
// are part of the key so an edited file is read again.
func datasetKey(path string, info os.FileInfo, opts dataio.ReadOptions) string {
	return fmt.Sprintf("%s|%d|%d|%d|%t", path, info.ModTime().UnixNano(), info.Size(), opts.SkipLines, opts.Header)
}

// LoadDataset reads path through cache. A nil cache always reads from disk.
func LoadDataset(cache contract.DatasetCache, path string, opts dataio.ReadOptions) (*schema.Dataset, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	if cache == nil {
		return dataio.ReadDataset(absPath, opts)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return nil, err
	}
	key := datasetKey(absPath, info, opts)
	if ds, ok := cache.Get(key); ok {
		return ds, nil
	}

	ds, err := dataio.ReadDataset(absPath, opts)
	if err != nil {
		return nil, err
	}
	cache.Set(key, ds)
	return ds, nil
}
