package main

import "fmt"

// DecodeError reports a malformed required field in a persisted predicate
// document. Decoding stops at the first such field; unknown variants are not
// errors (they fall back to custom payloads).
type DecodeError struct {
	Field  string
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %s", e.Field, e.Reason)
}

func decodeErrorf(field, format string, args ...any) *DecodeError {
	return &DecodeError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// DataLossError reports a narrowing numeric conversion that would silently
// lose information. It is always a hard failure.
type DataLossError struct {
	Field string
	Value string
}

func (e *DataLossError) Error() string {
	return fmt.Sprintf("%s: value %s cannot be represented without loss", e.Field, e.Value)
}

// ConnectionError wraps a failure to reach or query a live backend. It aborts
// the whole introspection or migration it occurred in.
type ConnectionError struct {
	Op  string
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// TransactionError reports a migration failure after the transaction has been
// resolved. Step names the label at which the failure occurred. RollbackErr
// is non-nil only when the rollback itself also failed; neither error is ever
// swallowed.
type TransactionError struct {
	Step        string
	Err         error
	RollbackErr error
}

func (e *TransactionError) Error() string {
	if e.RollbackErr != nil {
		return fmt.Sprintf("migration step %q: %v (rollback also failed: %v)", e.Step, e.Err, e.RollbackErr)
	}
	return fmt.Sprintf("migration step %q: %v (rolled back)", e.Step, e.Err)
}

func (e *TransactionError) Unwrap() error { return e.Err }
