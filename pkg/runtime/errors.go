// Package runtime provides the connection pool, transactions and error types
// shared by the driver.
package runtime

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a record is not found.
	ErrNotFound = errors.New("record not found")

	// ErrTransactionClosed is returned when operating on a closed transaction.
	ErrTransactionClosed = errors.New("transaction already closed")

	// ErrNoConnection is returned when no database connection is available.
	ErrNoConnection = errors.New("no database connection")
)

// Error codes reported by Code.
const (
	CodeConnection    = 1001
	CodeQuery         = 1002
	CodeInsert        = 1003
	CodeUpdate        = 1004
	CodeDelete        = 1005
	CodeRelation      = 1006
	CodeInvalidDriver = 1007
	CodeWrongInput    = 1008
)

// Coder is implemented by every typed error in this package.
type Coder interface {
	Code() int
}

// CodeOf returns the code of the first typed error in err's chain, or 0.
func CodeOf(err error) int {
	var c Coder
	if errors.As(err, &c) {
		return c.Code()
	}
	return 0
}

// ConnectionError reports a failure to obtain or keep a connection.
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection error: %v", e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// Code returns CodeConnection.
func (e *ConnectionError) Code() int { return CodeConnection }

// QueryError represents a query execution error.
type QueryError struct {
	Query string
	Err   error
}

// Error implements the error interface.
func (e *QueryError) Error() string {
	if e.Query == "" {
		return fmt.Sprintf("query error: %v", e.Err)
	}
	return fmt.Sprintf("query error: %v\nQuery: %s", e.Err, e.Query)
}

// Unwrap returns the underlying error.
func (e *QueryError) Unwrap() error {
	return e.Err
}

// Code returns CodeQuery.
func (e *QueryError) Code() int { return CodeQuery }

// InsertError wraps a failed insert of Model.
type InsertError struct {
	Model string
	Err   error
}

func (e *InsertError) Error() string {
	return fmt.Sprintf("insert into %s failed: %v", e.Model, e.Err)
}

func (e *InsertError) Unwrap() error { return e.Err }

// Code returns CodeInsert.
func (e *InsertError) Code() int { return CodeInsert }

// UpdateError wraps a failed update of Model.
type UpdateError struct {
	Model string
	Err   error
}

func (e *UpdateError) Error() string {
	return fmt.Sprintf("update of %s failed: %v", e.Model, e.Err)
}

func (e *UpdateError) Unwrap() error { return e.Err }

// Code returns CodeUpdate.
func (e *UpdateError) Code() int { return CodeUpdate }

// DeleteError wraps a failed delete from Model.
type DeleteError struct {
	Model string
	Err   error
}

func (e *DeleteError) Error() string {
	return fmt.Sprintf("delete from %s failed: %v", e.Model, e.Err)
}

func (e *DeleteError) Unwrap() error { return e.Err }

// Code returns CodeDelete.
func (e *DeleteError) Code() int { return CodeDelete }

// RelationError reports an invalid relation value or a failed link update.
type RelationError struct {
	Field   string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *RelationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("relation %s: %s: %v", e.Field, e.Message, e.Err)
	}
	return fmt.Sprintf("relation %s: %s", e.Field, e.Message)
}

func (e *RelationError) Unwrap() error { return e.Err }

// Code returns CodeRelation.
func (e *RelationError) Code() int { return CodeRelation }

// InvalidDriver is returned when a named driver instance does not exist.
type InvalidDriver struct {
	Name string
}

func (e *InvalidDriver) Error() string {
	return fmt.Sprintf("invalid driver %q", e.Name)
}

// Code returns CodeInvalidDriver.
func (e *InvalidDriver) Code() int { return CodeInvalidDriver }

// WrongInput reports an argument of an unsupported shape.
type WrongInput struct {
	Message string
}

func (e *WrongInput) Error() string {
	return "wrong input: " + e.Message
}

// Code returns CodeWrongInput.
func (e *WrongInput) Code() int { return CodeWrongInput }

// WrongInputf formats a WrongInput error.
func WrongInputf(format string, args ...any) error {
	return &WrongInput{Message: fmt.Sprintf(format, args...)}
}
