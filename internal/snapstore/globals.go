package snapstore

import (
	"fmt"
	"sync"
)

// Global store instance for CLI commands.
var (
	active   *Store
	activeMu sync.RWMutex
)

// Init opens and initializes the global store. Calling it again while a
// store is open is a no-op; Initialize itself is idempotent so repeated
// process starts never drift the schema.
func Init(path string) error {
	activeMu.Lock()
	defer activeMu.Unlock()

	if active != nil {
		return nil
	}

	store, err := Open(path)
	if err != nil {
		return err
	}
	if err := store.Initialize(); err != nil {
		_ = store.Close()
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	active = store
	return nil
}

// Active returns the global store. Init must have succeeded first.
func Active() *Store {
	activeMu.RLock()
	defer activeMu.RUnlock()
	return active
}

// Shutdown closes the global store. Safe to call multiple times.
func Shutdown() {
	activeMu.Lock()
	defer activeMu.Unlock()
	if active != nil {
		_ = active.Close()
		active = nil
	}
}
