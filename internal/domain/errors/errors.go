// Package errors defines the error kinds returned by statement execution.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Kind classifies an execution failure.
type Kind string

const (
	UnsupportedStatement     Kind = "unsupported_statement"
	UnknownTable             Kind = "unknown_table"
	UnknownColumn            Kind = "unknown_column"
	ColumnValueCountMismatch Kind = "column_value_count_mismatch"
	InvalidAssignment        Kind = "invalid_assignment"
	UnsupportedPredicate     Kind = "unsupported_predicate"
	QueryEvaluationError     Kind = "query_evaluation_error"
	SynchronizationWarning   Kind = "synchronization_warning"
	InvalidSourceMode        Kind = "invalid_source_mode"
	StoreUnavailable         Kind = "store_unavailable"
)

// Error is a kind-coded execution error
type Error struct {
	Kind    Kind   // failure class
	Table   string // table name (empty if not table-specific)
	Message string // human-readable explanation
	Err     error  // underlying error (optional)
}

func (e *Error) Error() string {
	var parts []string

	if e.Table != "" {
		parts = append(parts, fmt.Sprintf("%s on %s", e.Kind, e.Table))
	} else {
		parts = append(parts, string(e.Kind))
	}

	if e.Message != "" {
		parts = append(parts, e.Message)
	}

	if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}

	return strings.Join(parts, ": ")
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of the first *Error in err's chain, or "" when there is none.
func KindOf(err error) Kind {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind reports whether err carries the given kind
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

func NewUnsupportedStatement(format string, args ...interface{}) *Error {
	return &Error{Kind: UnsupportedStatement, Message: fmt.Sprintf(format, args...)}
}

func NewUnknownTable(table string) *Error {
	return &Error{
		Kind:    UnknownTable,
		Table:   table,
		Message: fmt.Sprintf("sheet/table '%s' not found", table),
	}
}

func NewUnknownColumn(table, column string) *Error {
	return &Error{
		Kind:    UnknownColumn,
		Table:   table,
		Message: fmt.Sprintf("column '%s' not found", column),
	}
}

func NewColumnValueCountMismatch(columns, values int) *Error {
	return &Error{
		Kind:    ColumnValueCountMismatch,
		Message: fmt.Sprintf("column count (%d) does not match value count (%d)", columns, values),
	}
}

func NewInvalidAssignment(fragment string) *Error {
	return &Error{
		Kind:    InvalidAssignment,
		Message: fmt.Sprintf("invalid SET clause: %s", fragment),
	}
}

func NewUnsupportedPredicate(clause string) *Error {
	return &Error{
		Kind:    UnsupportedPredicate,
		Message: fmt.Sprintf("only a single column = value equality is supported, got %q", clause),
	}
}

func NewQueryEvaluation(err error) *Error {
	return &Error{Kind: QueryEvaluationError, Err: err}
}

// NewSynchronizationWarning reports a mutation that applied in memory but
// could not be written to the external store.
func NewSynchronizationWarning(table, operation string, err error) *Error {
	return &Error{
		Kind:    SynchronizationWarning,
		Table:   table,
		Message: fmt.Sprintf("%s ok in-memory but failed to push to external store", operation),
		Err:     err,
	}
}

func NewInvalidSourceMode(mode string) *Error {
	return &Error{
		Kind:    InvalidSourceMode,
		Message: fmt.Sprintf("invalid data source %q", mode),
	}
}

func NewStoreUnavailable(store string) *Error {
	return &Error{
		Kind:    StoreUnavailable,
		Message: fmt.Sprintf("no live %s store is configured", store),
	}
}
