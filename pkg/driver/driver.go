// Package driver executes query descriptors and composite writes against
// MySQL for a model catalog.
package driver

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/marshallshelly/pebble-mysql/pkg/builder"
	"github.com/marshallshelly/pebble-mysql/pkg/migration"
	"github.com/marshallshelly/pebble-mysql/pkg/registry"
	"github.com/marshallshelly/pebble-mysql/pkg/runtime"
	"github.com/marshallshelly/pebble-mysql/pkg/schema"
)

// Record is one result object keyed by field name.
type Record = runtime.Record

// QueryResult is returned by Find and FindQuery.
type QueryResult struct {
	Items []Record
	Total int
}

// CountResult is returned by Count.
type CountResult struct {
	Total int64
}

// UpsertResult holds the re-selected rows of a write.
type UpsertResult struct {
	Items []Record
}

// DeleteResult holds the ids of the removed rows.
type DeleteResult struct {
	Items []any
}

// Driver runs finds and writes for one catalog on one pool.
type Driver struct {
	mu       sync.Mutex
	config   *runtime.Config
	catalog  *registry.Catalog
	compiler *builder.Compiler
	db       *runtime.DB
	logger   *slog.Logger
	slow     time.Duration
	encoding builder.Encoding
	planner  *migration.Planner
}

// Option configures a Driver.
type Option func(*Driver)

// WithDB makes the driver use an already opened pool. Connect is then a
// no-op unless forced.
func WithDB(db *runtime.DB) Option {
	return func(d *Driver) { d.db = db }
}

// WithLogger sets the logger for statements and transactions.
func WithLogger(l *slog.Logger) Option {
	return func(d *Driver) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithSlowQueryThreshold logs statements taking at least t at warn level.
func WithSlowQueryThreshold(t time.Duration) Option {
	return func(d *Driver) { d.slow = t }
}

// WithEncoding selects how OneToMany sub-selects are packed.
func WithEncoding(e builder.Encoding) Option {
	return func(d *Driver) { d.encoding = e }
}

// WithPlanner sets the planner used by Init.
func WithPlanner(p *migration.Planner) Option {
	return func(d *Driver) { d.planner = p }
}

// New creates a driver. No connection is made until Connect.
func New(cfg *runtime.Config, cat *registry.Catalog, opts ...Option) *Driver {
	if cfg == nil {
		cfg = runtime.DefaultConfig()
	}
	d := &Driver{
		config:   cfg,
		catalog:  cat,
		logger:   slog.Default(),
		encoding: builder.JSONObject,
		planner:  migration.NewPlanner(),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.compiler = builder.NewCompiler(cat, builder.WithEncoding(d.encoding), builder.WithLogger(d.logger))
	return d
}

// Connect opens the pool. An open pool is kept unless force is set, in
// which case it is closed and reopened.
func (d *Driver) Connect(ctx context.Context, force bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.db != nil && !force {
		return nil
	}
	if d.db != nil {
		if err := d.db.Close(); err != nil {
			d.logger.WarnContext(ctx, "failed to close pool before reconnect", "error", err)
		}
		d.db = nil
	}

	db, err := runtime.Connect(ctx, d.config,
		runtime.WithLogger(d.logger),
		runtime.WithSlowQueryThreshold(d.slow),
	)
	if err != nil {
		return err
	}
	d.db = db
	d.logger.InfoContext(ctx, "connected", "host", d.config.Host, "database", d.config.Database)
	return nil
}

// Init drops and recreates every table of the catalog.
func (d *Driver) Init(ctx context.Context) error {
	db, err := d.pool()
	if err != nil {
		return err
	}
	plan, err := migration.NewExecutor(db).WithPlanner(d.planner).Init(ctx, d.catalog)
	if err != nil {
		return err
	}
	d.logger.InfoContext(ctx, "schema initialized", "tables", len(plan.TableNames()))
	return nil
}

// Begin returns an unstarted transaction on the pool.
func (d *Driver) Begin() (*runtime.Tx, error) {
	db, err := d.pool()
	if err != nil {
		return nil, err
	}
	return db.Begin(), nil
}

// Query runs raw SQL with placeholder params.
func (d *Driver) Query(ctx context.Context, sql string, params []any, tx *runtime.Tx) ([]Record, error) {
	q, err := d.querier(tx)
	if err != nil {
		return nil, err
	}
	return q.Query(ctx, sql, params...)
}

// Close closes the pool.
func (d *Driver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.db == nil {
		return nil
	}
	err := d.db.Close()
	d.db = nil
	return err
}

// Catalog returns the model catalog.
func (d *Driver) Catalog() *registry.Catalog { return d.catalog }

// Compiler returns the query compiler.
func (d *Driver) Compiler() *builder.Compiler { return d.compiler }

// DB returns the pool, or nil before Connect.
func (d *Driver) DB() *runtime.DB {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.db
}

func (d *Driver) pool() (*runtime.DB, error) {
	db := d.DB()
	if db == nil {
		return nil, &runtime.ConnectionError{Err: runtime.ErrNoConnection}
	}
	return db, nil
}

// querier returns tx, or the pool when tx is nil. The explicit nil check
// keeps a nil *Tx from becoming a non-nil interface.
func (d *Driver) querier(tx *runtime.Tx) (runtime.Querier, error) {
	if tx != nil {
		if tx.Closed() {
			return nil, runtime.ErrTransactionClosed
		}
		return tx, nil
	}
	return d.pool()
}

// withTx runs fn inside tx. When tx is nil an implicit transaction is
// opened, committed on success and rolled back on failure. A supplied
// transaction is never finished here.
func (d *Driver) withTx(ctx context.Context, tx *runtime.Tx, fn func(*runtime.Tx) error) error {
	if tx != nil {
		if tx.Closed() {
			return runtime.ErrTransactionClosed
		}
		return fn(tx)
	}

	local, err := d.Begin()
	if err != nil {
		return err
	}
	if err := fn(local); err != nil {
		if rbErr := local.Rollback(ctx); rbErr != nil {
			d.logger.WarnContext(ctx, "rollback failed", "tx", local.ID(), "error", rbErr)
		}
		return err
	}
	return local.Commit(ctx)
}

func (d *Driver) schema(model string) (*schema.Schema, error) {
	s, err := d.catalog.Get(model)
	if err != nil {
		return nil, &runtime.QueryError{Err: err}
	}
	return s, nil
}

func (d *Driver) target(f *schema.Field) (*schema.Schema, error) {
	t, err := d.catalog.Get(f.RelationTarget())
	if err != nil {
		return nil, &runtime.RelationError{Field: f.Name, Message: "unknown target model", Err: err}
	}
	return t, nil
}

// asQueryError keeps typed errors and wraps anything else as a QueryError.
func asQueryError(err error) error {
	if err == nil || runtime.CodeOf(err) != 0 {
		return err
	}
	return &runtime.QueryError{Err: err}
}

// statement is implemented by the builder's INSERT, UPDATE and DELETE
// queries.
type statement interface {
	ToSQL() (string, []any, error)
}

func run(ctx context.Context, q runtime.Querier, stmt statement) (runtime.Result, error) {
	sql, args, err := stmt.ToSQL()
	if err != nil {
		return runtime.Result{}, err
	}
	return q.Exec(ctx, sql, args...)
}
