package registry

import (
	"log"
	"strings"

	"github.com/yourorg/payment-strategy/internal/domain"
	"github.com/yourorg/payment-strategy/internal/strategy"
)

// Discover is a best-effort registration hook. Each candidate that
// satisfies strategy.Strategy is registered under the method inferred from
// its name ("WeChatPayStrategy" -> wechat_pay). Anything else is logged and
// skipped. It returns the methods that were registered.
func Discover(r *Registry, candidates ...any) []domain.Method {
	var registered []domain.Method
	for _, c := range candidates {
		s, ok := c.(strategy.Strategy)
		if !ok {
			log.Printf("Registry: skipping %T: does not implement Strategy", c)
			continue
		}

		method, ok := MethodForName(s.Name())
		if !ok {
			log.Printf("Registry: skipping %s: no payment method matches its name", s.Name())
			continue
		}

		if err := r.RegisterValue(method, c); err != nil {
			log.Printf("Registry: auto-registration of %s failed: %v", s.Name(), err)
			continue
		}
		log.Printf("Registry: auto-registered %s for %s", s.Name(), method)
		registered = append(registered, method)
	}
	return registered
}

// MethodForName infers a payment method from a strategy name. The
// "Strategy" suffix is dropped and the rest is compared with each method
// identifier ignoring case and underscores.
func MethodForName(name string) (domain.Method, bool) {
	key := normalize(strings.TrimSuffix(name, "Strategy"))
	if key == "" {
		return "", false
	}
	for _, m := range domain.Methods() {
		if normalize(string(m)) == key {
			return m, true
		}
	}
	return "", false
}

func normalize(s string) string {
	return strings.ToLower(strings.ReplaceAll(s, "_", ""))
}
