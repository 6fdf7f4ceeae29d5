package search

import (
	"fmt"
	"sync"

	"github.com/searchbridge/searchbridge/config"
)

// Factory constructs an adapter from a resolved configuration.
type Factory func(cfg *config.Config) (Adapter, error)

var (
	factoryMu sync.RWMutex
	factories = make(map[string]Factory)
)

// RegisterFactory registers a package-level adapter factory under
// name. Adapter packages call it from init():
//
//	import _ "github.com/searchbridge/searchbridge/search/meili"
//
// Registering a built-in name twice panics; drivers own their names.
func RegisterFactory(name string, factory Factory) {
	if factory == nil {
		panic("search: nil adapter factory")
	}
	factoryMu.Lock()
	defer factoryMu.Unlock()
	if _, dup := factories[name]; dup && IsBuiltin(name) {
		panic(fmt.Sprintf("search: adapter factory %q registered twice", name))
	}
	factories[name] = factory
}

// FactoryFor returns the package-level factory registered under name.
func FactoryFor(name string) (Factory, error) {
	factoryMu.RLock()
	defer factoryMu.RUnlock()
	factory, ok := factories[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAdapter, name)
	}
	return factory, nil
}

// RegisteredNames returns every name with a package-level factory.
func RegisteredNames() []string {
	factoryMu.RLock()
	defer factoryMu.RUnlock()
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	return names
}
