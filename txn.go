package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
)

// txBeginner is the connection surface the executor needs; *sql.DB and
// *sql.Conn both satisfy it.
type txBeginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// txExecutor runs work under a begin/commit/rollback envelope on a single
// connection. One transaction at a time: nesting is a usage error, not a
// silent no-op.
type txExecutor struct {
	db   txBeginner
	inTx bool
}

func newTxExecutor(db txBeginner) *txExecutor {
	return &txExecutor{db: db}
}

// InTransaction runs fn inside a transaction. On any error from fn the
// transaction is rolled back before the error reaches the caller, and a
// rollback failure is reported alongside the original error rather than
// replacing it. Cancelling ctx mid-action aborts the statements, but the
// rollback itself runs to completion regardless.
func (e *txExecutor) InTransaction(ctx context.Context, fn func(tx *sql.Tx) error) error {
	if e.inTx {
		return errors.New("transaction already in progress on this connection")
	}

	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return &ConnectionError{Op: "begin transaction", Err: err}
	}
	e.inTx = true
	defer func() { e.inTx = false }()

	if err := fn(tx); err != nil {
		txErr := &TransactionError{Err: err}
		var step *stepError
		if errors.As(err, &step) {
			txErr.Step = step.label
			txErr.Err = step.err
		}
		txErr.RollbackErr = rollback(tx)
		return txErr
	}

	if err := tx.Commit(); err != nil {
		return &TransactionError{Step: "commit", Err: err, RollbackErr: rollback(tx)}
	}
	return nil
}

// rollback resolves the transaction, treating "already resolved" as success:
// database/sql rolls the transaction back itself when the begin context is
// cancelled, and a commit failure may leave the transaction finished.
func rollback(tx *sql.Tx) error {
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return err
	}
	return nil
}

// stepError carries the failing step's label through the transaction wrapper.
type stepError struct {
	label string
	err   error
}

func (e *stepError) Error() string { return fmt.Sprintf("step %q: %v", e.label, e.err) }
func (e *stepError) Unwrap() error { return e.err }

// applyMigration applies ordered migration steps all-or-nothing. A failure
// reports the step label and the backend error, after rollback.
func applyMigration(ctx context.Context, db txBeginner, steps []MigrationStep) error {
	exec := newTxExecutor(db)
	return exec.InTransaction(ctx, func(tx *sql.Tx) error {
		for _, step := range steps {
			log.Printf("  %s (%d statements)", step.Label, len(step.Commands))
			for _, cmd := range step.Commands {
				if _, err := tx.ExecContext(ctx, cmd); err != nil {
					return &stepError{label: step.Label, err: fmt.Errorf("%w\nSQL: %s", err, cmd)}
				}
			}
		}
		return nil
	})
}
