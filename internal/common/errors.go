package common

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrNotFound       = errors.New("requested resource not found")
	ErrUnauthorized   = errors.New("unauthorized access")
	ErrForbidden      = errors.New("forbidden access")
	ErrBadRequest     = errors.New("bad request")
	ErrConflict       = errors.New("resource conflict")
	ErrInternalServer = errors.New("internal server error")
	ErrValidation     = errors.New("validation failed")

	// ErrNotAccepting marks a submission that arrived while the session is
	// not taking answers for that task. Non-fatal, no side effects.
	ErrNotAccepting = errors.New("not accepting submissions")

	// ErrDuplicate marks an insert that lost to an existing
	// (participant, task) row. Callers replay the stored result.
	ErrDuplicate = errors.New("duplicate submission")

	// ErrFirstSolverTaken marks a first-solver claim that lost the race;
	// callers retry the insert with the flag cleared.
	ErrFirstSolverTaken = errors.New("first solver already claimed")
)

// HTTPStatusFromError maps domain errors to HTTP status codes.
func HTTPStatusFromError(err error) int {
	if err == nil {
		return http.StatusOK
	}
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrUnauthorized) {
		return http.StatusUnauthorized
	}
	if errors.Is(err, ErrForbidden) {
		return http.StatusForbidden
	}
	if errors.Is(err, ErrBadRequest) || errors.Is(err, ErrValidation) {
		return http.StatusBadRequest
	}
	if errors.Is(err, ErrConflict) || errors.Is(err, ErrNotAccepting) || errors.Is(err, ErrDuplicate) {
		return http.StatusConflict
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "23505" { // Unique violation
			return http.StatusConflict
		}
	}

	return http.StatusInternalServerError
}

// Errorf creates a new error with formatting, useful for wrapping.
func Errorf(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}
