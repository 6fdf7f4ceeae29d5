package search

import (
	"context"
	"fmt"
	"sync"

	"github.com/searchbridge/searchbridge/config"
	"github.com/searchbridge/searchbridge/logging/logger"
)

// Manager owns the set of constructible adapters and the currently
// active one. It is an owned value: construct it from resolved
// configuration and pass it to callers, there is no ambient singleton.
//
// Switching is caller-driven only; the manager never picks an adapter
// based on query shape. A mutex guards the active-adapter reference,
// but a switch does not wait for in-flight calls on the previous
// adapter; callers requiring strict isolation must synchronize around
// switch points or hold per-call adapters.
type Manager struct {
	mu        sync.RWMutex
	cfg       *config.Config
	active    Adapter
	activeCfg *config.Config
	custom    map[string]Factory
}

// New constructs a Manager and eagerly builds the configured default
// adapter.
func New(cfg *config.Config) (*Manager, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	logger.Init(cfg.LogLevel)

	m := &Manager{
		cfg:    cfg,
		custom: make(map[string]Factory),
	}

	name := cfg.DefaultAdapter
	if name == "" {
		name = Embedded
	}
	adapter, err := m.construct(name, cfg)
	if err != nil {
		return nil, err
	}
	m.active = adapter
	m.activeCfg = cfg

	logger.WithAdapter(name).Debug("search manager initialized")
	return m, nil
}

// construct resolves name to a factory and builds an adapter from cfg.
// Custom registrations shadow package-level factories for non-builtin
// names.
func (m *Manager) construct(name string, cfg *config.Config) (Adapter, error) {
	m.mu.RLock()
	factory, ok := m.custom[name]
	m.mu.RUnlock()

	if !ok {
		var err error
		factory, err = FactoryFor(name)
		if err != nil {
			return nil, err
		}
	}

	adapter, err := factory(cfg)
	if err != nil {
		return nil, fmt.Errorf("constructing adapter %s: %w", name, err)
	}
	return adapter, nil
}

// RegisterAdapter registers a custom adapter constructor. Built-in
// names are reserved and rejected; among custom names the last
// registration wins.
func (m *Manager) RegisterAdapter(name string, factory Factory) error {
	if name == "" || factory == nil {
		return fmt.Errorf("adapter registration requires a name and a factory")
	}
	if IsBuiltin(name) {
		return fmt.Errorf("adapter name %q is built-in and cannot be overridden", name)
	}

	m.mu.Lock()
	m.custom[name] = factory
	m.mu.Unlock()

	logger.WithAdapter(name).Debug("custom search adapter registered")
	return nil
}

// SwitchAdapter replaces the active adapter with a freshly constructed
// one. The replacement is built eagerly; on construction failure the
// previously active adapter stays untouched. The outgoing adapter is
// closed before the replacement is installed.
func (m *Manager) SwitchAdapter(name string, override *config.Config) error {
	cfg := override
	if cfg == nil {
		cfg = m.cfg
	}

	adapter, err := m.construct(name, cfg)
	if err != nil {
		return err
	}

	m.mu.Lock()
	old := m.active
	m.active = adapter
	m.activeCfg = cfg
	m.mu.Unlock()

	if old != nil {
		if cerr := old.Close(); cerr != nil {
			logger.WithAdapter(old.Name()).WithError(cerr).Warn("closing replaced adapter")
		}
	}

	logger.WithAdapter(name).Info("search adapter switched")
	return nil
}

// CurrentAdapterName returns the active adapter's name.
func (m *Manager) CurrentAdapterName() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.active == nil {
		return ""
	}
	return m.active.Name()
}

// Adapter returns the active adapter. Callers holding the returned
// value keep using it even across a concurrent switch.
func (m *Manager) Adapter() Adapter {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.active
}

// activeConfig returns the configuration the active adapter was built
// from, which differs from the base config after a switch with an
// override.
func (m *Manager) activeConfig() *config.Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.activeCfg
}

// Close releases the active adapter.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active == nil {
		return nil
	}
	err := m.active.Close()
	m.active = nil
	return err
}

// Config returns the manager's configuration.
func (m *Manager) Config() *config.Config {
	return m.cfg
}

// The capability contract, delegated to the active adapter. Adapter
// errors pass through unchanged; the manager never reinterprets them.

// Search runs a query on the active adapter. The caller's options are
// immutable once passed in; the limit clamp applies to a copy.
func (m *Manager) Search(ctx context.Context, collection, query string, opts *Options) (*Envelope, error) {
	var o Options
	if opts != nil {
		o = *opts
	}
	o.Limit = m.cfg.ClampLimit(o.Limit)
	return m.Adapter().Search(ctx, collection, query, &o)
}

// Index creates or replaces documents in bulk.
func (m *Manager) Index(ctx context.Context, collection string, documents []Document) error {
	return m.Adapter().Index(ctx, collection, documents)
}

// AddDocument adds a single document.
func (m *Manager) AddDocument(ctx context.Context, collection string, document Document) error {
	return m.Adapter().AddDocument(ctx, collection, document)
}

// UpdateDocument applies a partial update to the document with id.
func (m *Manager) UpdateDocument(ctx context.Context, collection, id string, partial Document) error {
	return m.Adapter().UpdateDocument(ctx, collection, id, partial)
}

// DeleteDocument removes the document with id.
func (m *Manager) DeleteDocument(ctx context.Context, collection, id string) error {
	return m.Adapter().DeleteDocument(ctx, collection, id)
}

// GetDocument fetches a single document by id.
func (m *Manager) GetDocument(ctx context.Context, collection, id string) (Document, error) {
	return m.Adapter().GetDocument(ctx, collection, id)
}

// DeleteIndex drops the whole collection.
func (m *Manager) DeleteIndex(ctx context.Context, collection string) error {
	return m.Adapter().DeleteIndex(ctx, collection)
}

// IndexExists reports whether the collection exists.
func (m *Manager) IndexExists(ctx context.Context, collection string) (bool, error) {
	return m.Adapter().IndexExists(ctx, collection)
}

// Configure applies adapter-specific runtime options to the active
// adapter.
func (m *Manager) Configure(options map[string]any) error {
	return m.Adapter().Configure(options)
}
