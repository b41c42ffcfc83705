package types

import (
	"fmt"
	"strings"
)

// =============================================================================
// ERROR KINDS
// =============================================================================

// ErrorKind classifies a pipeline failure.
type ErrorKind string

const (
	KindMalformedHeader     ErrorKind = "MalformedHeader"
	KindColumnParse         ErrorKind = "ColumnParseError"
	KindDuplicateColumnSpec ErrorKind = "DuplicateColumnSpec"
	KindInvalidSpec         ErrorKind = "InvalidSpec"
	KindNumberFormat        ErrorKind = "NumberFormatError"
	KindEmptyFactoryName    ErrorKind = "EmptyFactoryName"
	KindDuplicateRecord     ErrorKind = "DuplicateRecord"
	KindForbiddenStatement  ErrorKind = "ForbiddenStatement"
	KindQueryExecution      ErrorKind = "QueryExecutionError"
	KindDatabaseWrite       ErrorKind = "DatabaseWriteError"
)

// Sentinels for errors.Is. Only the Kind is compared.
var (
	ErrMalformedHeader     = &Error{Kind: KindMalformedHeader}
	ErrColumnParse         = &Error{Kind: KindColumnParse}
	ErrDuplicateColumnSpec = &Error{Kind: KindDuplicateColumnSpec}
	ErrInvalidSpec         = &Error{Kind: KindInvalidSpec}
	ErrNumberFormat        = &Error{Kind: KindNumberFormat}
	ErrEmptyFactoryName    = &Error{Kind: KindEmptyFactoryName}
	ErrDuplicateRecord     = &Error{Kind: KindDuplicateRecord}
	ErrForbiddenStatement  = &Error{Kind: KindForbiddenStatement}
	ErrQueryExecution      = &Error{Kind: KindQueryExecution}
	ErrDatabaseWrite       = &Error{Kind: KindDatabaseWrite}
)

// =============================================================================
// STRUCTURED ERROR
// =============================================================================

// Error is the structured failure returned by every core operation.
// It carries enough context to locate the problem in the source file or
// to identify the rejected query.
type Error struct {
	// Kind classifies the failure.
	Kind ErrorKind

	// Message is a human-readable description.
	Message string

	// Row is the 1-based row of the source file, 0 when not applicable.
	Row int

	// Column is the zero-based column index, -1 when not applicable.
	Column int

	// Value is the offending raw value.
	Value string

	// Query is the rejected or failed query text.
	Query string

	// Err is the underlying cause, if any.
	Err error
}

// NewError creates an Error without row or column context.
func NewError(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message, Column: -1}
}

// WithRow sets the 1-based source row.
func (e *Error) WithRow(row int) *Error {
	e.Row = row
	return e
}

// WithColumn sets the zero-based column index.
func (e *Error) WithColumn(column int) *Error {
	e.Column = column
	return e
}

// WithValue sets the offending raw value.
func (e *Error) WithValue(value string) *Error {
	e.Value = value
	return e
}

// WithQuery sets the query text.
func (e *Error) WithQuery(query string) *Error {
	e.Query = query
	return e
}

// Wrap sets the underlying cause.
func (e *Error) Wrap(err error) *Error {
	e.Err = err
	return e
}

// Error implements the error interface.
//
// EXAMPLE:
//   ColumnParseError: month label has no leading number (row 1, column 3, value "x kum")
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Kind))
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}

	var ctx []string
	if e.Row > 0 {
		ctx = append(ctx, fmt.Sprintf("row %d", e.Row))
	}
	if e.Column >= 0 {
		ctx = append(ctx, fmt.Sprintf("column %d", e.Column))
	}
	if e.Value != "" || e.Kind == KindNumberFormat || e.Kind == KindColumnParse {
		ctx = append(ctx, fmt.Sprintf("value %q", e.Value))
	}
	if e.Query != "" {
		ctx = append(ctx, fmt.Sprintf("query %q", e.Query))
	}
	if len(ctx) > 0 {
		b.WriteString(" (")
		b.WriteString(strings.Join(ctx, ", "))
		b.WriteString(")")
	}

	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}
