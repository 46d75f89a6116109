package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/lib/pq"
)

// pgErr converts an error produced by lib/pq into a repository error.
// Every statement in the Postgres stores returns its error through pgErr.
func pgErr(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}

	var e *pq.Error
	if !errors.As(err, &e) {
		return err
	}

	switch e.Code.Name() {
	case "unique_violation":
		return &DuplicateError{Field: constraintField(e.Table, e.Constraint)}
	case "query_canceled":
		return context.Canceled
	default:
		return e
	}
}

// constraintField recovers the column from a default-named unique
// constraint such as users_email_key.
func constraintField(table, constraint string) string {
	field := strings.TrimPrefix(constraint, table+"_")
	field = strings.TrimSuffix(field, "_key")
	if field == "" {
		return constraint
	}
	return field
}
