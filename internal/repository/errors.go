package repository

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var (
	// ErrNotFound is returned when the requested record does not exist
	ErrNotFound = errors.New("record not found")

	// ErrConstraintViolation is returned when a write breaks a uniqueness,
	// not-null, check or foreign key constraint. Nothing is written.
	ErrConstraintViolation = errors.New("constraint violation")

	// ErrCategoryInUse is returned when deleting a category that articles still reference
	ErrCategoryInUse = errors.New("category is still referenced by articles")
)

// ConstraintKind names the kind of constraint a write broke
type ConstraintKind string

const (
	ConstraintUnique     ConstraintKind = "unique"
	ConstraintNotNull    ConstraintKind = "not_null"
	ConstraintForeignKey ConstraintKind = "foreign_key"
	ConstraintCheck      ConstraintKind = "check"
	ConstraintOther      ConstraintKind = "other"
)

// ConstraintError carries the driver error behind an ErrConstraintViolation
type ConstraintError struct {
	Kind ConstraintKind
	Err  error
}

func (e *ConstraintError) Error() string {
	return fmt.Sprintf("%s (%s): %v", ErrConstraintViolation, e.Kind, e.Err)
}

func (e *ConstraintError) Unwrap() []error {
	return []error{ErrConstraintViolation, e.Err}
}

// classify converts driver constraint errors into *ConstraintError and
// returns any other error unchanged
func classify(err error) error {
	if err == nil {
		return nil
	}
	if kind, ok := constraintKind(err); ok {
		return &ConstraintError{Kind: kind, Err: err}
	}
	return err
}

func constraintKind(err error) (ConstraintKind, bool) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505":
			return ConstraintUnique, true
		case "23502":
			return ConstraintNotNull, true
		case "23503":
			return ConstraintForeignKey, true
		case "23514", "22001": // check_violation, string_data_right_truncation
			return ConstraintCheck, true
		}
		return "", false
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return ConstraintUnique, true
		case sqlite3.SQLITE_CONSTRAINT_NOTNULL:
			return ConstraintNotNull, true
		case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
			return ConstraintForeignKey, true
		case sqlite3.SQLITE_CONSTRAINT_CHECK:
			return ConstraintCheck, true
		}
		if liteErr.Code()&0xff == sqlite3.SQLITE_CONSTRAINT {
			return kindFromMessage(liteErr.Error()), true
		}
	}
	return "", false
}

// kindFromMessage covers builds that report only the primary result code
func kindFromMessage(msg string) ConstraintKind {
	switch {
	case strings.Contains(msg, "FOREIGN KEY"):
		return ConstraintForeignKey
	case strings.Contains(msg, "NOT NULL"):
		return ConstraintNotNull
	case strings.Contains(msg, "CHECK"):
		return ConstraintCheck
	case strings.Contains(msg, "UNIQUE"), strings.Contains(msg, "PRIMARY KEY"):
		return ConstraintUnique
	default:
		return ConstraintOther
	}
}

// IsConstraintKind reports whether err is a constraint violation of the given kind
func IsConstraintKind(err error, kind ConstraintKind) bool {
	var cErr *ConstraintError
	return errors.As(err, &cErr) && cErr.Kind == kind
}
