package runtime

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// TxState is the lifecycle position of a Tx.
type TxState int

const (
	TxUnstarted TxState = iota
	TxActive
	TxCommitted
	TxRolledBack
)

func (s TxState) String() string {
	switch s {
	case TxUnstarted:
		return "unstarted"
	case TxActive:
		return "active"
	case TxCommitted:
		return "committed"
	case TxRolledBack:
		return "rolled back"
	default:
		return fmt.Sprintf("TxState(%d)", int(s))
	}
}

// Tx is a transaction that owns one pooled connection. The connection is
// taken and BEGIN issued on the first statement. A Tx is not safe for
// concurrent use.
type Tx struct {
	id    string
	db    *DB
	opts  *sql.TxOptions
	conn  *sql.Conn
	tx    *sql.Tx
	state TxState
	fatal bool
}

func newTx(db *DB, opts *sql.TxOptions) *Tx {
	return &Tx{
		id:   uuid.NewString(),
		db:   db,
		opts: opts,
	}
}

// ID identifies the transaction in logs.
func (t *Tx) ID() string { return t.id }

// State returns the current lifecycle state.
func (t *Tx) State() TxState { return t.state }

// Closed reports whether the transaction has been committed or rolled back.
func (t *Tx) Closed() bool {
	return t.state == TxCommitted || t.state == TxRolledBack
}

// Exec runs a statement inside the transaction, starting it if needed.
func (t *Tx) Exec(ctx context.Context, query string, args ...any) (Result, error) {
	if err := t.ensure(ctx); err != nil {
		return Result{}, err
	}
	res, err := t.db.exec(ctx, t.tx, t.id, query, args)
	t.observe(err)
	return res, err
}

// Query runs a query inside the transaction, starting it if needed.
func (t *Tx) Query(ctx context.Context, query string, args ...any) ([]Record, error) {
	if err := t.ensure(ctx); err != nil {
		return nil, err
	}
	rows, err := t.db.query(ctx, t.tx, t.id, query, args)
	t.observe(err)
	return rows, err
}

// Commit commits the transaction. Committing an unstarted transaction only
// closes it.
func (t *Tx) Commit(ctx context.Context) error {
	switch t.state {
	case TxUnstarted:
		t.state = TxCommitted
		return nil
	case TxActive:
	default:
		return ErrTransactionClosed
	}

	err := t.tx.Commit()
	t.state = TxCommitted
	t.observe(err)
	t.db.logger.DebugContext(ctx, "transaction commit", "tx", t.id, "error", err)
	t.release(ctx)
	if err != nil {
		return wrapTxError("failed to commit transaction", err)
	}
	return nil
}

// Rollback rolls back the transaction. Rolling back an unstarted
// transaction only closes it.
func (t *Tx) Rollback(ctx context.Context) error {
	switch t.state {
	case TxUnstarted:
		t.state = TxRolledBack
		return nil
	case TxActive:
	default:
		return ErrTransactionClosed
	}

	err := t.tx.Rollback()
	t.state = TxRolledBack
	t.observe(err)
	t.db.logger.DebugContext(ctx, "transaction rollback", "tx", t.id, "error", err)
	t.release(ctx)
	if err != nil && !errors.Is(err, sql.ErrTxDone) {
		return wrapTxError("failed to rollback transaction", err)
	}
	return nil
}

func (t *Tx) ensure(ctx context.Context) error {
	switch t.state {
	case TxActive:
		return nil
	case TxUnstarted:
	default:
		return ErrTransactionClosed
	}

	conn, err := t.db.db.Conn(ctx)
	if err != nil {
		return &ConnectionError{Err: fmt.Errorf("failed to acquire connection: %w", err)}
	}
	tx, err := conn.BeginTx(ctx, t.opts)
	if err != nil {
		t.conn = conn
		t.observe(err)
		t.release(ctx)
		return wrapTxError("failed to begin transaction", err)
	}

	t.conn = conn
	t.tx = tx
	t.state = TxActive
	t.db.logger.DebugContext(ctx, "transaction begin", "tx", t.id)
	return nil
}

func (t *Tx) observe(err error) {
	if IsFatal(err) {
		t.fatal = true
	}
}

// release returns the connection to the pool, or destroys it when a fatal
// error was seen so the pool never hands it out again.
func (t *Tx) release(ctx context.Context) {
	if t.conn == nil {
		return
	}
	conn := t.conn
	t.conn = nil

	if t.fatal {
		_ = conn.Raw(func(any) error { return driver.ErrBadConn })
		t.db.logger.DebugContext(ctx, "transaction connection destroyed", "tx", t.id)
	}
	_ = conn.Close()
}

func wrapTxError(msg string, err error) error {
	if IsFatal(err) {
		return &ConnectionError{Err: fmt.Errorf("%s: %w", msg, err)}
	}
	return &QueryError{Err: fmt.Errorf("%s: %w", msg, err)}
}
