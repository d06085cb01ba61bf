package repository

import (
	"errors"

	"github.com/mattn/go-sqlite3"

	"github.com/okian/applytrack/internal/domain/types"
)

// Sentinel kinds for store errors. They alias the shared kinds so callers
// can match either.
var (
	ErrNotFound        = types.ErrNotFound
	ErrConflict        = types.ErrConflict
	ErrInvalidArgument = types.ErrInvalidArgument
)

// classify maps driver constraint failures onto the shared kinds.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var se sqlite3.Error
	if errors.As(err, &se) && se.Code == sqlite3.ErrConstraint {
		switch se.ExtendedCode {
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
			return types.WrapKind(op, ErrConflict, err)
		case sqlite3.ErrConstraintForeignKey, sqlite3.ErrConstraintNotNull:
			return types.WrapKind(op, ErrInvalidArgument, err)
		}
	}
	return types.Wrap(op, err)
}
