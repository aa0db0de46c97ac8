package core

import (
	"fmt"
	"sync"
)

var (
	registry   = make(map[string]EntityDefinition)
	registered []string // keys in registration order
	registryMu sync.RWMutex
)

// Register adds an entity definition to the registry.
// Panics if the key is already registered or the definition is malformed.
func Register(def EntityDefinition) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if _, exists := registry[def.Info.Key]; exists {
		panic(fmt.Sprintf("entity already registered: %s", def.Info.Key))
	}
	if err := checkDefinition(def); err != nil {
		panic(fmt.Sprintf("entity %s: %v", def.Info.Key, err))
	}

	if def.Info.Sheet == "" {
		def.Info.Sheet = def.Info.Label
	}

	registry[def.Info.Key] = def
	registered = append(registered, def.Info.Key)
}

func checkDefinition(def EntityDefinition) error {
	if def.Info.Key == "" || def.Info.Table == "" {
		return fmt.Errorf("key and table are required")
	}
	if def.Policy == RejectByNaturalKey && def.Info.NaturalKey == "" {
		return fmt.Errorf("natural key required for duplicate rejection")
	}

	labels := make(map[string]bool)
	for _, f := range def.Fields {
		if labels[f.Label] {
			return fmt.Errorf("duplicate label %q", f.Label)
		}
		labels[f.Label] = true
	}
	for _, ref := range def.References {
		if labels[ref.Label] {
			return fmt.Errorf("duplicate label %q", ref.Label)
		}
		labels[ref.Label] = true
	}
	return nil
}

// Get returns an entity definition by key.
// Returns false if not found.
func Get(key string) (EntityDefinition, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	def, ok := registry[key]
	return def, ok
}

// All returns all registered entity definitions in registration order.
func All() []EntityDefinition {
	registryMu.RLock()
	defer registryMu.RUnlock()

	result := make([]EntityDefinition, 0, len(registered))
	for _, key := range registered {
		result = append(result, registry[key])
	}
	return result
}

// EntityCount returns the number of registered entities.
func EntityCount() int {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return len(registry)
}

// Clear removes all registered entities.
// Primarily useful for testing.
func Clear() {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry = make(map[string]EntityDefinition)
	registered = nil
}
