package database_test

import (
	"errors"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fossabot/person-db-skeleton/internal/database"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		platform string
		err      error
		wantCode string
	}{
		{
			name:     "mysql table exists",
			platform: "mysql",
			err:      &mysql.MySQLError{Number: 1050, Message: "Table 'people' already exists"},
			wantCode: "1050",
		},
		{
			name:     "postgres duplicate table",
			platform: "postgres",
			err:      &pgconn.PgError{Code: "42P07", Message: `relation "people" already exists`},
			wantCode: "42P07",
		},
		{
			name:     "unknown driver error",
			platform: "sqlite",
			err:      errors.New("disk I/O error"),
			wantCode: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := database.Classify(tt.platform, "CREATE TABLE people (id INT)", tt.err)

			var execErr *database.ExecError
			require.ErrorAs(t, err, &execErr)
			assert.Equal(t, tt.wantCode, execErr.Code)
			assert.Equal(t, tt.platform, execErr.Platform)
			assert.ErrorIs(t, err, tt.err)
			assert.Contains(t, err.Error(), "CREATE TABLE people")
		})
	}
}

func TestClassify_nil(t *testing.T) {
	t.Parallel()

	assert.NoError(t, database.Classify("mysql", "SELECT 1", nil))
}

func TestAsPgError(t *testing.T) {
	t.Parallel()

	pgErr := &pgconn.PgError{Code: "55P03"}

	got, ok := database.AsPgError(database.Classify("postgres", "LOCK TABLE people", pgErr))
	require.True(t, ok)
	assert.Same(t, pgErr, got)

	_, ok = database.AsPgError(errors.New("plain"))
	assert.False(t, ok)
}
