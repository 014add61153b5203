package renderer

import (
	"sync"
)

// Registry tracks the single active renderer per drawing surface.
// Constructing a renderer against a surface that already has one evicts
// and destroys the prior renderer, so two draw streams never target the
// same buffer.
type Registry struct {
	mu     sync.Mutex
	active map[string]*Renderer
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{active: make(map[string]*Renderer)}
}

var (
	defaultRegistry     *Registry
	defaultRegistryOnce sync.Once
)

// DefaultRegistry returns the process-wide registry used by New.
func DefaultRegistry() *Registry {
	defaultRegistryOnce.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// Active returns the renderer currently registered for a surface.
func (g *Registry) Active(surfaceID string) (*Renderer, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	r, ok := g.active[surfaceID]
	return r, ok
}

// Len returns the number of registered renderers.
func (g *Registry) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.active)
}

// register installs r as the surface's renderer, destroying any prior one.
func (g *Registry) register(surfaceID string, r *Renderer) {
	g.mu.Lock()
	prior := g.active[surfaceID]
	g.active[surfaceID] = r
	g.mu.Unlock()

	// Destroy outside the lock: Destroy re-enters unregister.
	if prior != nil && prior != r {
		prior.Destroy()
	}
}

// unregister removes r if it is still the surface's active renderer.
func (g *Registry) unregister(surfaceID string, r *Renderer) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.active[surfaceID] == r {
		delete(g.active, surfaceID)
	}
}
