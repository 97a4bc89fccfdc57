// AngelaMos | 2026
// database_test.go

package core

import (
	"database/sql"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestTranslateDBError(t *testing.T) {
	assert.NoError(t, TranslateDBError("op", nil))
	assert.ErrorIs(t, TranslateDBError("op", sql.ErrNoRows), ErrNotFound)

	dup := fmt.Errorf("insert: %w", &pgconn.PgError{Code: pgUniqueViolation})
	assert.ErrorIs(t, TranslateDBError("op", dup), ErrDuplicateKey)

	holderless := &pgconn.PgError{
		Code:    pgCheckViolation,
		Message: `new row violates check constraint "chk_memberships_holder"`,
	}
	err := TranslateDBError("create membership", holderless)
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.ErrorContains(t, err, "chk_memberships_holder")
}
