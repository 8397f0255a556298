package repository

import (
	"errors"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// ErrDuplicate is returned when an insert hits a unique constraint.
var ErrDuplicate = errors.New("duplicate record")

// ErrStale is returned when a conditional update matched no row because the
// row changed state since it was read.
var ErrStale = errors.New("row changed concurrently")

const uniqueViolation = pq.ErrorCode("23505")

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

func newID() string {
	return uuid.NewString()
}

// pqStringArray helper ensures we pass string arrays consistently.
func pqStringArray(values []string) interface{} {
	return pq.Array(values)
}
