package service

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/JonMunkholm/tableview/internal/core"
)

// Source groups.
const (
	GroupPostgres = "postgres"
	GroupUpload   = "upload"
)

// SourceInfo describes a registered data source.
type SourceInfo struct {
	Key     string   `json:"key"`     // unique identifier: "pg:public.orders"
	Group   string   `json:"group"`   // "postgres" or "upload"
	Label   string   `json:"label"`   // display name
	KeyCols []string `json:"key_columns,omitempty"`
}

// OpenFunc creates a fresh model for one view. Each call must return a model
// that is not shared with other views.
type OpenFunc func(ctx context.Context) (core.Model, error)

// SourceDefinition is a registered source.
type SourceDefinition struct {
	Info SourceInfo
	Open OpenFunc
}

// Registry holds source definitions. It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	sources map[string]SourceDefinition
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{sources: make(map[string]SourceDefinition)}
}

// Register adds a source definition. Fails if the key is taken.
func (r *Registry) Register(def SourceDefinition) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sources[def.Info.Key]; exists {
		return fmt.Errorf("register %s: %w", def.Info.Key, core.ErrSourceExists)
	}
	r.sources[def.Info.Key] = def
	return nil
}

// Unregister removes a source. Open views keep their models.
func (r *Registry) Unregister(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.sources[key]
	delete(r.sources, key)
	return ok
}

// Get returns a source definition by key.
func (r *Registry) Get(key string) (SourceDefinition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	def, ok := r.sources[key]
	return def, ok
}

// All returns every source, sorted by group then key.
func (r *Registry) All() []SourceInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]SourceInfo, 0, len(r.sources))
	for _, def := range r.sources {
		result = append(result, def.Info)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Group != result[j].Group {
			return result[i].Group < result[j].Group
		}
		return result[i].Key < result[j].Key
	})
	return result
}

// Len returns the number of registered sources.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sources)
}
