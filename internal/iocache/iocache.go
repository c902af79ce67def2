// Package iocache is for caching I/O calls and recording replay runs.
package iocache

import (
	"sync"

	"github.com/huangsam/timelapse/internal/contract"
)

// CacheStoreManager manages the parse cache and the run store.
type CacheStoreManager struct {
	sync.RWMutex // Protects the store pointers during initialization
	parse        contract.CacheStore
	runs         contract.RunStore
}

var _ contract.CacheManager = &CacheStoreManager{} // Compile-time check

// GetParseStore returns the parse CacheStore, or nil when caching is off.
func (mgr *CacheStoreManager) GetParseStore() contract.CacheStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.parse
}

// GetRunStore returns the RunStore, or nil when run tracking is off.
func (mgr *CacheStoreManager) GetRunStore() contract.RunStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.runs
}
