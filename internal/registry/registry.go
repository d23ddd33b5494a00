// Package registry owns the table mapping payment methods to strategies.
// A Registry is safe for concurrent use. A Factory builds and populates the
// process-wide Registry exactly once, on first access, however many
// goroutines race to trigger it.
package registry

import (
	"fmt"
	"log"
	"maps"
	"reflect"
	"sync"

	"github.com/yourorg/payment-strategy/internal/domain"
	"github.com/yourorg/payment-strategy/internal/strategy"
)

// Registry maps each payment method to at most one strategy.
// Registering a method again replaces the previous strategy.
type Registry struct {
	mu         sync.RWMutex
	strategies map[domain.Method]strategy.Strategy
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		strategies: make(map[domain.Method]strategy.Strategy),
	}
}

// Register inserts or overwrites the strategy for method.
func (r *Registry) Register(method domain.Method, s strategy.Strategy) error {
	if !method.Valid() {
		return &domain.ValidationError{Field: "method", Reason: fmt.Sprintf("unknown payment method %q", method)}
	}
	if isNil(s) {
		return &domain.TypeMismatchError{Method: method, Got: "nil"}
	}

	r.mu.Lock()
	r.strategies[method] = s
	r.mu.Unlock()

	log.Printf("Registry: registered strategy for %s: %s", method, s.Name())
	return nil
}

// RegisterValue registers v if it satisfies strategy.Strategy and fails with
// *domain.TypeMismatchError otherwise. Used where values arrive untyped,
// e.g. from Discover.
func (r *Registry) RegisterValue(method domain.Method, v any) error {
	s, ok := v.(strategy.Strategy)
	if !ok {
		return &domain.TypeMismatchError{Method: method, Got: fmt.Sprintf("%T", v)}
	}
	return r.Register(method, s)
}

// isNil also catches typed nils such as (*CreditCardStrategy)(nil).
func isNil(s strategy.Strategy) bool {
	if s == nil {
		return true
	}
	v := reflect.ValueOf(s)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return v.IsNil()
	}
	return false
}

// Resolve returns the strategy registered for method.
func (r *Registry) Resolve(method domain.Method) (strategy.Strategy, error) {
	r.mu.RLock()
	s, ok := r.strategies[method]
	r.mu.RUnlock()
	if !ok {
		return nil, &domain.NotFoundError{Method: method}
	}
	return s, nil
}

// List returns a snapshot of method -> strategy name.
func (r *Registry) List() map[domain.Method]string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[domain.Method]string, len(r.strategies))
	for m, s := range r.strategies {
		out[m] = s.Name()
	}
	return out
}

// Len reports the number of registered methods.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.strategies)
}

// RegisterAll registers every entry of set, stopping at the first error.
func (r *Registry) RegisterAll(set map[domain.Method]strategy.Strategy) error {
	// Register in the enumeration order so log output is stable.
	pending := maps.Clone(set)
	for _, m := range domain.Methods() {
		s, ok := pending[m]
		if !ok {
			continue
		}
		delete(pending, m)
		if err := r.Register(m, s); err != nil {
			return err
		}
	}
	for m, s := range pending {
		if err := r.Register(m, s); err != nil {
			return err
		}
	}
	return nil
}
