package migration

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/marshallshelly/pebble-mysql/pkg/registry"
	"github.com/marshallshelly/pebble-mysql/pkg/runtime"
)

var charsetName = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// Executor applies DDL plans.
type Executor struct {
	db      *runtime.DB
	planner *Planner
	limit   int
	logger  *slog.Logger
}

// NewExecutor creates a new executor. Schemas are applied concurrently,
// at most as many at once as the pool allows.
func NewExecutor(db *runtime.DB) *Executor {
	limit := 1
	if cfg := db.Config(); cfg != nil && cfg.MaxOpenConns > 0 {
		limit = cfg.MaxOpenConns
	}
	return &Executor{
		db:      db,
		planner: NewPlanner(),
		limit:   limit,
		logger:  db.Logger(),
	}
}

// WithLimit caps the number of schemas applied at once.
func (e *Executor) WithLimit(n int) *Executor {
	if n > 0 {
		e.limit = n
	}
	return e
}

// WithPlanner replaces the default planner.
func (e *Executor) WithPlanner(p *Planner) *Executor {
	e.planner = p
	return e
}

// Init sets the database character set, then drops and recreates every
// table of the catalog. It returns the applied plan.
func (e *Executor) Init(ctx context.Context, cat *registry.Catalog) (*Plan, error) {
	plan, err := e.planner.Plan(cat)
	if err != nil {
		return nil, fmt.Errorf("failed to plan schema: %w", err)
	}
	if err := e.InitializeDatabase(ctx); err != nil {
		return nil, err
	}
	if err := e.Apply(ctx, plan, false); err != nil {
		return nil, err
	}
	return plan, nil
}

// InitializeDatabase runs ALTER DATABASE with the configured charset and
// collation.
func (e *Executor) InitializeDatabase(ctx context.Context) error {
	cfg := e.db.Config()
	if cfg.Database == "" {
		return fmt.Errorf("no database configured")
	}
	if !charsetName.MatchString(cfg.Charset) || !charsetName.MatchString(cfg.Collation) {
		return fmt.Errorf("invalid charset %q or collation %q", cfg.Charset, cfg.Collation)
	}

	if _, err := e.db.Exec(ctx, AlterDatabase(cfg.Database, cfg.Charset, cfg.Collation)); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	return nil
}

// Apply executes a plan. Each model's statements run in order on one
// connection; distinct models run concurrently. The first failure cancels
// the remaining work. With dryRun the plan is only logged.
func (e *Executor) Apply(ctx context.Context, plan *Plan, dryRun bool) error {
	if dryRun {
		for _, tp := range plan.Tables {
			e.logger.InfoContext(ctx, "dry run", "model", tp.Model, "tables", tp.Tables)
		}
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.limit)

	for _, tp := range plan.Tables {
		tp := tp
		g.Go(func() error {
			return e.applyTable(gctx, tp)
		})
	}
	return g.Wait()
}

func (e *Executor) applyTable(ctx context.Context, tp TablePlan) error {
	conn, err := e.db.Conn(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	for i, stmt := range tp.Statements {
		if _, err := conn.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("%s: statement %d failed: %w", tp.Model, i+1, err)
		}
	}
	e.logger.DebugContext(ctx, "tables created", "model", tp.Model, "tables", tp.Tables)
	return nil
}

// ApplySQL executes a script such as one written by Generator, statement
// by statement on a single connection.
func (e *Executor) ApplySQL(ctx context.Context, script string) error {
	conn, err := e.db.Conn(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	for i, stmt := range splitSQL(script) {
		if _, err := conn.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("script failed at statement %d: %w", i+1, err)
		}
	}
	return nil
}

// splitSQL splits a script on semicolons outside quotes and drops comment
// lines.
func splitSQL(script string) []string {
	var (
		result  []string
		current strings.Builder
		quote   byte
	)

	flush := func() {
		stmt := strings.TrimSpace(current.String())
		if stmt != "" {
			result = append(result, stmt)
		}
		current.Reset()
	}

	for _, line := range strings.Split(script, "\n") {
		if quote == 0 && strings.HasPrefix(strings.TrimSpace(line), "--") {
			continue
		}
		for i := 0; i < len(line); i++ {
			c := line[i]
			switch {
			case quote != 0 && c == '\\' && quote == '\'' && i+1 < len(line):
				current.WriteByte(c)
				i++
				c = line[i]
			case quote != 0 && c == quote:
				quote = 0
			case quote == 0 && (c == '\'' || c == '`' || c == '"'):
				quote = c
			case quote == 0 && c == ';':
				flush()
				continue
			}
			current.WriteByte(c)
		}
		current.WriteByte('\n')
	}
	flush()

	return result
}
