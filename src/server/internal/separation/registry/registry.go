package registry

import (
	"context"
	"sort"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/veedubyou/stem-split-be/src/server/internal/separation/engine"
)

// Loader performs the expensive Model Handle construction for one
// split configuration
type Loader interface {
	Load(ctx context.Context, splitType engine.SplitType) (engine.Engine, error)
}

// ModelRegistry owns the process-wide cache of Model Handles.
// Lifecycle: starts empty, populates on demand exactly once per
// configuration, then serves read-only lookups until process exit.
//
// Each configuration has its own construction guard, so two first
// requests for different configurations load in parallel while two
// for the same configuration share a single construction. A failed
// construction is cached - it surfaces on every later request for
// that configuration rather than being retried.
type ModelRegistry struct {
	loader Loader

	mu      sync.Mutex
	entries map[engine.SplitType]*modelEntry
	loaded  map[engine.SplitType]bool
}

type modelEntry struct {
	once   sync.Once
	engine engine.Engine
	err    error
}

func NewModelRegistry(loader Loader) *ModelRegistry {
	return &ModelRegistry{
		loader:  loader,
		entries: map[engine.SplitType]*modelEntry{},
		loaded:  map[engine.SplitType]bool{},
	}
}

// Engine returns the Model Handle for the configuration, constructing
// it if this is the first use. Construction deliberately runs under
// its own context - the handle outlives any single request, and a
// caller timeout must not poison the shared cache.
func (r *ModelRegistry) Engine(splitType engine.SplitType) (engine.Engine, error) {
	entry := r.entry(splitType)

	entry.once.Do(func() {
		entry.engine, entry.err = r.loader.Load(context.Background(), splitType)
		if entry.err == nil {
			r.markLoaded(splitType)
		}
	})

	if entry.err != nil {
		return nil, errors.Wrap(entry.err, "Model for this configuration previously failed to load")
	}

	return entry.engine, nil
}

func (r *ModelRegistry) entry(splitType engine.SplitType) *modelEntry {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[splitType]
	if !ok {
		entry = &modelEntry{}
		r.entries[splitType] = entry
	}

	return entry
}

func (r *ModelRegistry) markLoaded(splitType engine.SplitType) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.loaded[splitType] = true
}

func (r *ModelRegistry) IsLoaded(splitType engine.SplitType) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.loaded[splitType]
}

// LoadedConfigurations reports every successfully constructed
// configuration, smallest stem count first
func (r *ModelRegistry) LoadedConfigurations() []engine.SplitType {
	r.mu.Lock()
	defer r.mu.Unlock()

	configurations := []engine.SplitType{}
	for splitType := range r.loaded {
		configurations = append(configurations, splitType)
	}

	sort.Slice(configurations, func(i int, j int) bool {
		return configurations[i].StemCount() < configurations[j].StemCount()
	})

	return configurations
}
