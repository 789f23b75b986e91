// Package iocache persists run history and memoises parsed datasets.
package iocache

import (
	"sync"

	"github.com/huangsam/dendro/internal/contract"
)

// StoreManager manages the run store and the dataset cache.
type StoreManager struct {
	sync.RWMutex // Protects the store pointers during initialization
	runs         contract.RunStore
	datasets     contract.DatasetCache
}

var _ contract.StoreManager = &StoreManager{} // Compile-time check

// NewStoreManager wires an explicit run store and dataset cache.
// Either may be nil; a nil run store disables run tracking.
func NewStoreManager(runs contract.RunStore, datasets contract.DatasetCache) *StoreManager {
	return &StoreManager{runs: runs, datasets: datasets}
}

// GetRunStore returns the run history store.
func (mgr *StoreManager) GetRunStore() contract.RunStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.runs
}

// GetDatasetCache returns the parsed dataset cache.
func (mgr *StoreManager) GetDatasetCache() contract.DatasetCache {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.datasets
}
