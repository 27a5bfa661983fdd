// Package errs provides the unified error type used across all of csvg.
//
// Every subsystem (stream engine, graph, orchestrator, extractors, sources)
// wraps its failures into *errs.Error before returning them to callers.
// Callers use the Is* predicates to handle errors without inspecting
// message strings.
//
// Usage:
//
//	// In the join engine, report a missing key column:
//	return errs.ColumnNotFound("right", key)
//
//	// In a caller, check the error kind:
//	if errs.IsColumnNotFound(err) {
//	    ...
//	}
package errs

import (
	"errors"
	"fmt"
)

// Kind categorises an error without exposing subsystem-specific detail.
type Kind int

const (
	KindUnknown         Kind = iota
	KindColumnNotFound       // a named column is absent from a table's headers
	KindTableNotFound        // no graph node carries the requested table name
	KindPathNotFound         // two tables are not connected in the schema graph
	KindNoJoinColumns        // no foreign key links two adjacent tables
	KindEmptyJoinResult      // a join hop produced zero data rows
	KindEmptyPath            // the orchestrator received a zero-node path
	KindInvalidInput         // bad arguments from the caller
	KindIO                   // underlying file or stream failure
)

func (k Kind) String() string {
	switch k {
	case KindColumnNotFound:
		return "column_not_found"
	case KindTableNotFound:
		return "table_not_found"
	case KindPathNotFound:
		return "path_not_found"
	case KindNoJoinColumns:
		return "no_join_columns"
	case KindEmptyJoinResult:
		return "empty_join_result"
	case KindEmptyPath:
		return "empty_path"
	case KindInvalidInput:
		return "invalid_input"
	case KindIO:
		return "io"
	default:
		return "unknown"
	}
}

// Error is the single error type returned by all csvg subsystems.
// The structured fields are filled by whichever constructor applies;
// unused fields stay zero.
type Error struct {
	Kind    Kind
	Message string
	Cause   error // original lower-level error, preserved for logging

	Side   string // "left" or "right" for column errors
	Column string
	Table  string
	From   string
	To     string
	Hop    int // 1-based hop index for join-chain errors
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

// Unwrap allows errors.Is / errors.As to traverse the cause chain.
func (e *Error) Unwrap() error {
	return e.Cause
}

// --- Constructors ---

// ColumnNotFound reports that column is absent from the headers of the
// given join side ("left" or "right") or table.
func ColumnNotFound(side, column string) *Error {
	return &Error{
		Kind:    KindColumnNotFound,
		Message: fmt.Sprintf("column %q not found in %s table", column, side),
		Side:    side,
		Column:  column,
	}
}

// TableNotFound reports that no node in the schema graph carries name.
func TableNotFound(name string) *Error {
	return &Error{
		Kind:    KindTableNotFound,
		Message: fmt.Sprintf("table %q not found in graph", name),
		Table:   name,
	}
}

// PathNotFound reports that from and to are not connected in the graph.
func PathNotFound(from, to string) *Error {
	return &Error{
		Kind:    KindPathNotFound,
		Message: fmt.Sprintf("no path between %q and %q", from, to),
		From:    from,
		To:      to,
	}
}

// NoJoinColumns reports that neither table declares a foreign key usable
// to join the pair.
func NoJoinColumns(left, right string) *Error {
	return &Error{
		Kind:    KindNoJoinColumns,
		Message: fmt.Sprintf("no join columns between %q and %q", left, right),
		From:    left,
		To:      right,
	}
}

// EmptyJoinResult reports that the hop-th join along a path produced no
// data rows. Hop indexes are 1-based.
func EmptyJoinResult(hop int) *Error {
	return &Error{
		Kind:    KindEmptyJoinResult,
		Message: fmt.Sprintf("join hop %d produced no rows", hop),
		Hop:     hop,
	}
}

// EmptyPath reports a zero-node join path.
func EmptyPath() *Error {
	return &Error{Kind: KindEmptyPath, Message: "join path is empty"}
}

// InvalidInput reports bad arguments from the caller.
func InvalidInput(msg string) *Error {
	return &Error{Kind: KindInvalidInput, Message: msg}
}

// IO wraps an underlying file or stream failure.
func IO(msg string, cause error) *Error {
	return &Error{Kind: KindIO, Message: msg, Cause: cause}
}

// --- Predicates ---

// IsColumnNotFound reports whether err is a missing-column failure.
func IsColumnNotFound(err error) bool { return kindOf(err) == KindColumnNotFound }

// IsTableNotFound reports whether err is an unknown-table failure.
func IsTableNotFound(err error) bool { return kindOf(err) == KindTableNotFound }

// IsPathNotFound reports whether err means two tables are unconnected.
func IsPathNotFound(err error) bool { return kindOf(err) == KindPathNotFound }

// IsNoJoinColumns reports whether err means no foreign key links a pair.
func IsNoJoinColumns(err error) bool { return kindOf(err) == KindNoJoinColumns }

// IsEmptyJoinResult reports whether err means a hop emitted zero rows.
func IsEmptyJoinResult(err error) bool { return kindOf(err) == KindEmptyJoinResult }

// IsEmptyPath reports whether err means the join path had no nodes.
func IsEmptyPath(err error) bool { return kindOf(err) == KindEmptyPath }

// IsInvalidInput reports whether err was caused by bad caller input.
func IsInvalidInput(err error) bool { return kindOf(err) == KindInvalidInput }

// IsIO reports whether err wraps an underlying I/O failure.
func IsIO(err error) bool { return kindOf(err) == KindIO }

func kindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
