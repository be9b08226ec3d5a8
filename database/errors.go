package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"neuro-sync/models"

	"github.com/mattn/go-sqlite3"
)

var (
	// ErrSchemaMismatch means the store holds a schema this binary cannot
	// evolve forward. It is fatal; nothing is repaired automatically.
	ErrSchemaMismatch    = errors.New("schema mismatch")
	ErrDuplicateKey      = errors.New("duplicate key")
	ErrNotFound          = errors.New("not found")
	ErrConnectionTimeout = errors.New("connection timeout")

	// ErrBulkInScope rejects a bulk insert whose context already holds a
	// transaction; its batches could not commit on their own.
	ErrBulkInScope = errors.New("bulk insert inside an open transaction")
)

// classify maps driver errors onto the package's sentinel errors. The
// original error stays in the chain.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var se sqlite3.Error
	if errors.As(err, &se) {
		switch {
		case se.ExtendedCode == sqlite3.ErrConstraintUnique, se.ExtendedCode == sqlite3.ErrConstraintPrimaryKey:
			return fmt.Errorf("%w: %w", ErrDuplicateKey, err)
		case se.Code == sqlite3.ErrBusy, se.Code == sqlite3.ErrLocked:
			return fmt.Errorf("%w: %w", ErrConnectionTimeout, err)
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrConnectionTimeout, err)
	}
	return err
}

// RowErrors lists rows a list operation skipped because they could not be
// decoded. The operation still returns every row that did decode.
type RowErrors []*models.SerializationError

func (e RowErrors) Error() string {
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("%d rows skipped: %s", len(e), strings.Join(msgs, "; "))
}

func (e RowErrors) Unwrap() []error {
	errs := make([]error, len(e))
	for i, err := range e {
		errs[i] = err
	}
	return errs
}
