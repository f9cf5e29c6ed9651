package db_client

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func TestEnsureSchema(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS rooms").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE INDEX").WillReturnError(errors.New("boom"))

	err = EnsureSchema(context.Background(), db,
		"CREATE TABLE IF NOT EXISTS rooms (slug TEXT PRIMARY KEY)",
		"CREATE INDEX rooms_updated ON rooms (updated_at)",
	)
	require.ErrorContains(t, err, "apply schema")
	require.NoError(t, mock.ExpectationsWereMet())
}
