package registry

import (
	"fmt"
	"log"
	"sync"
	"sync/atomic"

	"github.com/yourorg/payment-strategy/internal/domain"
	"github.com/yourorg/payment-strategy/internal/strategy"
)

// PopulateFunc fills a freshly created registry with its initial strategies.
type PopulateFunc func(*Registry) error

// DefaultPopulate registers the default strategy set (credit card, PayPal,
// crypto and bank transfer).
func DefaultPopulate(opts ...strategy.Option) PopulateFunc {
	return func(r *Registry) error {
		if err := r.RegisterAll(strategy.Defaults(opts...)); err != nil {
			return fmt.Errorf("registering default strategies: %w", err)
		}
		return nil
	}
}

// Factory lazily builds a single Registry. Create one at process start and
// pass it to every component that needs strategies.
type Factory struct {
	instance atomic.Pointer[Registry]
	mu       sync.Mutex
	populate PopulateFunc
}

// NewFactory creates a Factory whose registry is populated by populate on
// first access. A nil populate yields an empty registry.
func NewFactory(populate PopulateFunc) *Factory {
	return &Factory{populate: populate}
}

// Registry returns the shared registry, creating and populating it on the
// first call. Double-checked locking: the atomic load is the lock-free fast
// path; the second check under the mutex makes population run once.
func (f *Factory) Registry() *Registry {
	if r := f.instance.Load(); r != nil {
		return r
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if r := f.instance.Load(); r != nil {
		return r
	}

	r := NewRegistry()
	if f.populate != nil {
		if err := f.populate(r); err != nil {
			log.Printf("Registry: initial population incomplete: %v", err)
		}
	}
	f.instance.Store(r)
	return r
}

// Initialized reports whether the registry has been built.
func (f *Factory) Initialized() bool {
	return f.instance.Load() != nil
}

// Register delegates to the shared registry.
func (f *Factory) Register(method domain.Method, s strategy.Strategy) error {
	return f.Registry().Register(method, s)
}

// Resolve delegates to the shared registry.
func (f *Factory) Resolve(method domain.Method) (strategy.Strategy, error) {
	return f.Registry().Resolve(method)
}

// List delegates to the shared registry.
func (f *Factory) List() map[domain.Method]string {
	return f.Registry().List()
}
