package storage

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/kaedesrs/kotoba/internal/apperr"
)

// translateErr maps a raw database/sql or sqlite driver error onto the
// six-kind taxonomy, the way the teacher's GetDeck/GetCard special-case
// sql.ErrNoRows. Unique-constraint violations surface as Conflict so callers
// can decide whether duplicate creation is an idempotent success.
func translateErr(err error, notFoundMsg string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.New(apperr.NotFound, notFoundMsg)
	}
	if isUniqueConstraintErr(err) {
		return apperr.Wrap(apperr.Conflict, "unique constraint violated", err)
	}
	return apperr.Wrap(apperr.Backend, "storage operation failed", err)
}

func isUniqueConstraintErr(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
