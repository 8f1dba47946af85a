package idmap

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// ErrSchemaPrecondition is returned by callers that abort because a required
// external table is missing.
var ErrSchemaPrecondition = errors.New("idmap: required tables are missing")

// NotFoundError reports a requested legacy session id with no backing row.
type NotFoundError struct {
	SessionID int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("idmap: legacy session %d not found", e.SessionID)
}

func (e *NotFoundError) Unwrap() error { return gorm.ErrRecordNotFound }
