package llm

import (
	"fmt"
	"sort"
	"sync"
)

// ModelResolver maps a model name to a Model for a single provider.
type ModelResolver func(name string) (Model, bool)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]ModelResolver)
)

// RegisterProvider registers a provider's model resolver. Provider
// subpackages call this from init; the last registration for a slug wins.
func RegisterProvider(provider string, resolver ModelResolver) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[provider] = resolver
}

// ResolveModel looks up a model by provider slug and model name.
func ResolveModel(provider, name string) (Model, error) {
	registryMu.RLock()
	resolver, ok := registry[provider]
	registryMu.RUnlock()
	if !ok {
		return nil, NewConfigurationError(fmt.Sprintf("unknown provider %q", provider))
	}
	model, ok := resolver(name)
	if !ok {
		return nil, NewConfigurationError(fmt.Sprintf("unknown model %q for provider %q", name, provider))
	}
	return model, nil
}

// Providers returns the registered provider slugs in sorted order.
func Providers() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	out := make([]string, 0, len(registry))
	for p := range registry {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
