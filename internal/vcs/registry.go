package vcs

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Driver describes one VCS engine.
// Implementations register themselves with the registry using Register().
type Driver struct {
	// Marker is the metadata entry that identifies a repository of this
	// type directly inside its root (".git", ".jj").
	Marker string

	// Binary is the executable the driver shells out to.
	Binary string

	// Open returns a VCS for an existing repository rooted at dir.
	Open func(dir string) (VCS, error)

	// Init creates a repository rooted at dir and opens it.
	Init func(ctx context.Context, dir string) (VCS, error)
}

// registry maps VCS types to their drivers
var (
	registry      = make(map[Type]Driver)
	registryMutex sync.RWMutex
)

// Register registers a VCS driver.
// This is called from init() functions in implementation packages (git, jj).
//
// Example:
//
//	func init() {
//	    vcs.Register(vcs.TypeGit, vcs.Driver{Marker: ".git", Binary: "git", Open: open, Init: initRepo})
//	}
func Register(t Type, driver Driver) {
	registryMutex.Lock()
	defer registryMutex.Unlock()

	if driver.Open == nil || driver.Init == nil {
		panic(fmt.Sprintf("vcs: Register driver is incomplete for type %s", t))
	}

	if _, exists := registry[t]; exists {
		panic(fmt.Sprintf("vcs: Register called twice for type %s", t))
	}

	registry[t] = driver
}

// getDriver retrieves the driver for a VCS type.
func getDriver(t Type) (Driver, bool) {
	registryMutex.RLock()
	defer registryMutex.RUnlock()
	d, ok := registry[t]
	return d, ok
}

// IsRegistered returns true if a driver is registered for the given type.
func IsRegistered(t Type) bool {
	_, ok := getDriver(t)
	return ok
}

// RegisteredTypes returns all registered VCS types, sorted.
func RegisteredTypes() []Type {
	registryMutex.RLock()
	defer registryMutex.RUnlock()

	types := make([]Type, 0, len(registry))
	for t := range registry {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

// UnregisterAll clears all registered drivers.
// This is primarily useful for testing.
func UnregisterAll() {
	registryMutex.Lock()
	defer registryMutex.Unlock()
	registry = make(map[Type]Driver)
}
