package payment

import (
	"fmt"
	"sort"

	"github.com/kiosko/server/internal/module/payment/provider"
)

// Registry holds the configured payment gateways keyed by provider name.
type Registry struct {
	gateways map[string]provider.Gateway
}

// NewRegistry creates a registry from the given gateways.
func NewRegistry(gateways ...provider.Gateway) *Registry {
	m := make(map[string]provider.Gateway, len(gateways))
	for _, gw := range gateways {
		m[gw.Name()] = gw
	}
	return &Registry{gateways: m}
}

// Get returns the gateway for a provider name.
func (r *Registry) Get(name string) (provider.Gateway, error) {
	gw, ok := r.gateways[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, name)
	}
	return gw, nil
}

// Names returns the registered provider names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.gateways))
	for name := range r.gateways {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
