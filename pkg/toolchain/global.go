package toolchain

import (
	"sync/atomic"

	"github.com/apex/log"
)

// defaultManager is the process-wide handle published by whichever
// background sync finishes reconciliation first. Core APIs take a *Manager
// explicitly; this exists only for the startup boundary, where construction
// is deferred until the first sync completes.
var defaultManager atomic.Pointer[Manager]

// SetDefault publishes m as the process-wide Manager. The first caller wins;
// later calls log and leave the existing handle in place.
func SetDefault(m *Manager) bool {
	if defaultManager.CompareAndSwap(nil, m) {
		return true
	}
	log.Debug("default toolchain manager already set")
	return false
}

// Default returns the process-wide Manager, or nil when no sync has
// completed yet.
func Default() *Manager {
	return defaultManager.Load()
}
