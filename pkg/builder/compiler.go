// Package builder compiles query descriptors and condition trees into MySQL
// statements. It performs no I/O.
package builder

import (
	"log/slog"

	"github.com/marshallshelly/pebble-mysql/pkg/registry"
)

// Encoding selects how OneToMany sub-selects pack the related row into one column.
type Encoding int

const (
	// JSONObject uses MySQL's native JSON_OBJECT.
	JSONObject Encoding = iota
	// Delimited concatenates fields around DelimiterMark, for clients that
	// expect the legacy wire format.
	Delimited
)

// DelimiterMark stands in for a double quote inside Delimited sub-selects.
const DelimiterMark = "<#quote#>"

// Compiler turns descriptors into SQL against one catalog.
type Compiler struct {
	catalog  *registry.Catalog
	encoding Encoding
	logger   *slog.Logger
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithEncoding sets the sub-select encoding.
func WithEncoding(e Encoding) Option {
	return func(c *Compiler) { c.encoding = e }
}

// WithLogger sets the logger used for debug output.
func WithLogger(l *slog.Logger) Option {
	return func(c *Compiler) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewCompiler creates a Compiler for catalog.
func NewCompiler(catalog *registry.Catalog, opts ...Option) *Compiler {
	c := &Compiler{
		catalog:  catalog,
		encoding: JSONObject,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Catalog returns the catalog the compiler resolves models against.
func (c *Compiler) Catalog() *registry.Catalog { return c.catalog }

// Encoding returns the sub-select encoding in use.
func (c *Compiler) Encoding() Encoding { return c.encoding }
