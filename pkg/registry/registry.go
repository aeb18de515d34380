// Package registry provides the schema catalog threaded through every compiler call.
package registry

import (
	"errors"
	"fmt"
	"sync"

	"github.com/marshallshelly/pebble-mysql/pkg/schema"
)

// ErrUnknownModel is returned when a model name is not in the catalog.
var ErrUnknownModel = errors.New("unknown model")

// Catalog is a thread-safe, ordered set of schemas keyed by model name.
// Build one at startup and pass it by reference; there is no global instance.
type Catalog struct {
	mu      sync.RWMutex
	schemas map[string]*schema.Schema
	order   []string
}

// NewCatalog creates a Catalog holding the given schemas.
func NewCatalog(schemas ...*schema.Schema) (*Catalog, error) {
	c := &Catalog{schemas: make(map[string]*schema.Schema, len(schemas))}
	for _, s := range schemas {
		if err := c.Register(s); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// MustCatalog is like NewCatalog but panics on error.
func MustCatalog(schemas ...*schema.Schema) *Catalog {
	c, err := NewCatalog(schemas...)
	if err != nil {
		panic(err)
	}
	return c
}

// Register adds a schema. Registering the same *Schema twice is a no-op;
// a different schema under an existing name is an error.
func (c *Catalog) Register(s *schema.Schema) error {
	if s == nil {
		return fmt.Errorf("schema must not be nil")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.schemas[s.Name()]; ok {
		if existing == s {
			return nil
		}
		return fmt.Errorf("model %s already registered", s.Name())
	}

	c.schemas[s.Name()] = s
	c.order = append(c.order, s.Name())
	return nil
}

// Get retrieves a schema by model name.
func (c *Catalog) Get(model string) (*schema.Schema, error) {
	c.mu.RLock()
	s, ok := c.schemas[model]
	c.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownModel, model)
	}
	return s, nil
}

// Has checks if a model is registered.
func (c *Catalog) Has(model string) bool {
	c.mu.RLock()
	_, ok := c.schemas[model]
	c.mu.RUnlock()
	return ok
}

// PrimaryKey returns the primary key of model, or schema.DefaultPrimaryKey
// when the model is unknown.
func (c *Catalog) PrimaryKey(model string) string {
	s, err := c.Get(model)
	if err != nil {
		return schema.DefaultPrimaryKey
	}
	return s.PrimaryKey()
}

// All returns the schemas in registration order.
func (c *Catalog) All() []*schema.Schema {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]*schema.Schema, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, c.schemas[name])
	}
	return out
}

// Names returns the model names in registration order.
func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, len(c.order))
	copy(names, c.order)
	return names
}

// Len returns the number of registered models.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.order)
}

// Validate checks that every relation points at a registered model and that
// every Reverse relation has an owning field on the other side.
func (c *Catalog) Validate() error {
	var errs []error
	for _, s := range c.All() {
		for _, f := range s.RelationFields() {
			target, err := c.Get(f.RelationTarget())
			if err != nil {
				errs = append(errs, fmt.Errorf("%s.%s: %w", s.Name(), f.Name, err))
				continue
			}
			if f.IsRelation(schema.Reverse) && target.OwningFieldFor(s.Name()) == nil {
				errs = append(errs, fmt.Errorf("%s.%s: %s has no field referencing %s", s.Name(), f.Name, target.Name(), s.Name()))
			}
		}
	}
	return errors.Join(errs...)
}
