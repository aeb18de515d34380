package driver

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/marshallshelly/pebble-mysql/pkg/registry"
	"github.com/marshallshelly/pebble-mysql/pkg/runtime"
)

// Factory keeps named drivers and connects each on first use.
type Factory struct {
	mu      sync.Mutex
	entries map[string]*Driver
}

// NewFactory creates an empty factory.
func NewFactory() *Factory {
	return &Factory{entries: make(map[string]*Driver)}
}

// Register adds a driver under name, replacing any previous one. The
// replaced driver is not closed.
func (f *Factory) Register(name string, cfg *runtime.Config, cat *registry.Catalog, opts ...Option) *Driver {
	d := New(cfg, cat, opts...)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[name] = d
	return d
}

// Instance returns the driver registered under name, connected.
func (f *Factory) Instance(ctx context.Context, name string) (*Driver, error) {
	f.mu.Lock()
	d, ok := f.entries[name]
	f.mu.Unlock()
	if !ok {
		return nil, &runtime.InvalidDriver{Name: name}
	}

	if err := d.Connect(ctx, false); err != nil {
		return nil, err
	}
	return d, nil
}

// Names returns the registered names in order.
func (f *Factory) Names() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	names := make([]string, 0, len(f.entries))
	for name := range f.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Close closes every registered driver.
func (f *Factory) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	var errs []error
	for _, d := range f.entries {
		if err := d.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
