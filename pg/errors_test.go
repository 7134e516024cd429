package pg

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestIsConflict(t *testing.T) {
	conflict := &pgconn.PgError{Code: "23505", ConstraintName: "event_outbox_pkey"}
	assert.True(t, IsConflict(conflict))
	assert.True(t, IsConflict(fmt.Errorf("insert: %w", conflict)))

	assert.False(t, IsConflict(&pgconn.PgError{Code: "23503"}))
	assert.False(t, IsConflict(errors.New("plain")))
	assert.False(t, IsConflict(nil))
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(sql.ErrNoRows))
	assert.True(t, IsNotFound(fmt.Errorf("select: %w", sql.ErrNoRows)))
	assert.False(t, IsNotFound(errors.New("boom")))
}

func TestErrorDetails(t *testing.T) {
	pgErr := &pgconn.PgError{
		Code:           "23505",
		Severity:       "ERROR",
		Message:        "duplicate key value",
		TableName:      "event_outbox",
		ConstraintName: "event_outbox_pkey",
	}

	details := ErrorDetails(fmt.Errorf("insert: %w", pgErr))
	assert.Equal(t, "23505", details["pg.code"])
	assert.Equal(t, "event_outbox", details["pg.table"])

	assert.Empty(t, ErrorDetails(errors.New("plain")))
}
