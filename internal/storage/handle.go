// Package storage defines the contract between in-memory tables and the
// external stores that mirror them.
package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Handle is a reference to one external sheet. Fetch returns the full grid,
// header row first. Update writes grid starting at the top-left cell.
type Handle interface {
	Name() string
	Fetch(ctx context.Context) ([][]interface{}, error)
	Clear(ctx context.Context) error
	Update(ctx context.Context, grid [][]string) error
}

// Registry maps canonical table names to their external handles in a
// thread-safe way
type Registry struct {
	mu      sync.RWMutex
	handles map[string]Handle
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{handles: make(map[string]Handle)}
}

// Register binds table to handle. Binding a table twice is an error.
func (r *Registry) Register(table string, h Handle) error {
	if h == nil {
		return fmt.Errorf("cannot register nil handle for table %q", table)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.handles[table]; exists {
		return fmt.Errorf("table %q already has a handle", table)
	}
	r.handles[table] = h
	return nil
}

// Lookup returns the handle bound to table
func (r *Registry) Lookup(table string) (Handle, bool) {
	if r == nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handles[table]
	return h, ok
}

// Tables returns the bound table names, sorted
func (r *Registry) Tables() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.handles))
	for n := range r.handles {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of bound tables
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.handles)
}
