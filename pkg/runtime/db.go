package runtime

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"syscall"
	"time"

	"github.com/go-sql-driver/mysql"
)

// Record is one result row keyed by column name.
type Record = map[string]any

// Result reports the outcome of a statement that returns no rows.
type Result struct {
	LastInsertID int64
	RowsAffected int64
}

// Querier runs statements. It is implemented by *DB, *Conn and *Tx.
type Querier interface {
	Exec(ctx context.Context, query string, args ...any) (Result, error)
	Query(ctx context.Context, query string, args ...any) ([]Record, error)
}

// execer is the subset of *sql.DB, *sql.Conn and *sql.Tx used here.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// DB represents a database connection pool.
type DB struct {
	db            *sql.DB
	config        *Config
	logger        *slog.Logger
	slowThreshold time.Duration
}

// Config represents database configuration.
type Config struct {
	Host            string
	Port            int
	Database        string
	User            string
	Password        string
	Charset         string
	Collation       string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	Params          map[string]string
}

// Option configures a DB.
type Option func(*DB)

// WithLogger sets the statement logger.
func WithLogger(l *slog.Logger) Option {
	return func(db *DB) {
		if l != nil {
			db.logger = l
		}
	}
}

// WithSlowQueryThreshold logs statements taking at least d at warn level.
// Zero disables slow query logging.
func WithSlowQueryThreshold(d time.Duration) Option {
	return func(db *DB) {
		db.slowThreshold = d
	}
}

// DefaultConfig returns a default database configuration.
func DefaultConfig() *Config {
	return &Config{
		Host:         "localhost",
		Port:         3306,
		Database:     "mysql",
		User:         "root",
		Charset:      "utf8mb4",
		Collation:    "utf8mb4_unicode_ci",
		MaxOpenConns: 10,
		MaxIdleConns: 2,
	}
}

// DSN renders the configuration in go-sql-driver form.
func (c *Config) DSN() string {
	mc := mysql.NewConfig()
	mc.Net = "tcp"
	port := c.Port
	if port == 0 {
		port = 3306
	}
	mc.Addr = net.JoinHostPort(c.Host, strconv.Itoa(port))
	mc.User = c.User
	mc.Passwd = c.Password
	mc.DBName = c.Database
	if c.Collation != "" {
		mc.Collation = c.Collation
	}
	if len(c.Params) > 0 {
		mc.Params = make(map[string]string, len(c.Params))
		for k, v := range c.Params {
			mc.Params[k] = v
		}
	}
	return mc.FormatDSN()
}

// ConfigFromDSN parses a go-sql-driver DSN such as
// user:pass@tcp(localhost:3306)/app.
func ConfigFromDSN(dsn string) (*Config, error) {
	mc, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DSN: %w", err)
	}

	cfg := DefaultConfig()
	cfg.User = mc.User
	cfg.Password = mc.Passwd
	cfg.Database = mc.DBName
	cfg.Params = mc.Params
	if mc.Collation != "" {
		cfg.Collation = mc.Collation
	}

	host, port, err := net.SplitHostPort(mc.Addr)
	if err != nil {
		cfg.Host = mc.Addr
		return cfg, nil
	}
	cfg.Host = host
	if p, err := strconv.Atoi(port); err == nil {
		cfg.Port = p
	}
	return cfg, nil
}

// NewDB wraps an existing pool.
func NewDB(sqlDB *sql.DB, config *Config, opts ...Option) *DB {
	if config == nil {
		config = DefaultConfig()
	}
	db := &DB{
		db:     sqlDB,
		config: config,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(db)
	}
	return db
}

// Connect opens a pool for config and verifies it with a ping.
func Connect(ctx context.Context, config *Config, opts ...Option) (*DB, error) {
	sqlDB, err := sql.Open("mysql", config.DSN())
	if err != nil {
		return nil, &ConnectionError{Err: fmt.Errorf("failed to open pool: %w", err)}
	}

	if config.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(config.MaxOpenConns)
	}
	if config.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(config.MaxIdleConns)
	}
	if config.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(config.ConnMaxLifetime)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, &ConnectionError{Err: fmt.Errorf("failed to ping database: %w", err)}
	}

	return NewDB(sqlDB, config, opts...), nil
}

// SQL returns the underlying pool.
func (db *DB) SQL() *sql.DB { return db.db }

// Config returns the configuration the pool was built from.
func (db *DB) Config() *Config { return db.config }

// Logger returns the statement logger.
func (db *DB) Logger() *slog.Logger { return db.logger }

// Close closes the pool.
func (db *DB) Close() error {
	if db.db == nil {
		return nil
	}
	return db.db.Close()
}

// Ping verifies the database connection is alive.
func (db *DB) Ping(ctx context.Context) error {
	if err := db.db.PingContext(ctx); err != nil {
		return &ConnectionError{Err: err}
	}
	return nil
}

// Begin returns an unstarted transaction. No connection is taken from the
// pool until its first statement.
func (db *DB) Begin() *Tx {
	return db.BeginTx(nil)
}

// BeginTx is Begin with explicit transaction options.
func (db *DB) BeginTx(opts *sql.TxOptions) *Tx {
	return newTx(db, opts)
}

// Exec runs a statement in autocommit mode on a pooled connection.
func (db *DB) Exec(ctx context.Context, query string, args ...any) (Result, error) {
	return db.exec(ctx, db.db, "", query, args)
}

// Query runs a query in autocommit mode on a pooled connection.
func (db *DB) Query(ctx context.Context, query string, args ...any) ([]Record, error) {
	return db.query(ctx, db.db, "", query, args)
}

// Conn pins a single pooled connection. The caller must Close it.
func (db *DB) Conn(ctx context.Context) (*Conn, error) {
	c, err := db.db.Conn(ctx)
	if err != nil {
		return nil, &ConnectionError{Err: err}
	}
	return &Conn{db: db, conn: c}, nil
}

// Conn is a single connection outside any transaction.
type Conn struct {
	db   *DB
	conn *sql.Conn
}

// Exec runs a statement on the pinned connection.
func (c *Conn) Exec(ctx context.Context, query string, args ...any) (Result, error) {
	return c.db.exec(ctx, c.conn, "", query, args)
}

// Query runs a query on the pinned connection.
func (c *Conn) Query(ctx context.Context, query string, args ...any) ([]Record, error) {
	return c.db.query(ctx, c.conn, "", query, args)
}

// Close returns the connection to the pool.
func (c *Conn) Close() error {
	return c.conn.Close()
}

func (db *DB) exec(ctx context.Context, e execer, txID, query string, args []any) (Result, error) {
	start := time.Now()
	res, err := e.ExecContext(ctx, query, args...)
	db.logStatement(ctx, txID, query, args, start, err)
	if err != nil {
		return Result{}, wrapStatementError(query, err)
	}

	var out Result
	// Drivers may not support either value; zero is reported then.
	out.LastInsertID, _ = res.LastInsertId()
	out.RowsAffected, _ = res.RowsAffected()
	return out, nil
}

func (db *DB) query(ctx context.Context, e execer, txID, query string, args []any) ([]Record, error) {
	start := time.Now()
	rows, err := e.QueryContext(ctx, query, args...)
	if err != nil {
		db.logStatement(ctx, txID, query, args, start, err)
		return nil, wrapStatementError(query, err)
	}
	defer rows.Close()

	records, err := scanRecords(rows)
	db.logStatement(ctx, txID, query, args, start, err)
	if err != nil {
		return nil, wrapStatementError(query, err)
	}
	return records, nil
}

func (db *DB) logStatement(ctx context.Context, txID, query string, args []any, start time.Time, err error) {
	elapsed := time.Since(start)
	attrs := []any{"sql", query, "args", args, "elapsed", elapsed}
	if txID != "" {
		attrs = append(attrs, "tx", txID)
	}
	if err != nil {
		db.logger.DebugContext(ctx, "statement failed", append(attrs, "error", err)...)
		return
	}
	db.logger.DebugContext(ctx, "statement", attrs...)
	if db.slowThreshold > 0 && elapsed >= db.slowThreshold {
		db.logger.WarnContext(ctx, "slow query detected", attrs...)
	}
}

func scanRecords(rows *sql.Rows) ([]Record, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	records := make([]Record, 0)
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		rec := make(Record, len(cols))
		for i, col := range cols {
			if b, ok := values[i].([]byte); ok {
				rec[col] = string(b)
				continue
			}
			rec[col] = values[i]
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// IsFatal reports whether err means the connection can no longer be used.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	// A cancelled or expired context leaves the connection usable.
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, mysql.ErrInvalidConn) ||
		errors.Is(err, sql.ErrConnDone) || errors.Is(err, syscall.EPIPE) ||
		errors.Is(err, syscall.ECONNRESET) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// IsDuplicateKey reports whether err is a MySQL unique constraint violation.
func IsDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}

func wrapStatementError(query string, err error) error {
	if IsFatal(err) {
		return &ConnectionError{Err: err}
	}
	return &QueryError{Query: query, Err: err}
}
