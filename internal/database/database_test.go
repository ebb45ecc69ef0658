package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionsDSN(t *testing.T) {
	dsn := Options{User: "root", Password: "pw", Host: "db", Port: "3306", Name: "rifa_db"}.DSN()

	assert.Contains(t, dsn, "root:pw@tcp(db:3306)/rifa_db")
	assert.Contains(t, dsn, "parseTime=true")
	assert.Contains(t, dsn, "charset=utf8mb4")
}

func TestOptionsDSNPinsSessionTimeZone(t *testing.T) {
	cfg, err := mysql.ParseDSN(Options{User: "u", Host: "db", Port: "3306", Name: "rifa_db"}.DSN())
	require.NoError(t, err)

	assert.Equal(t, "'+00:00'", cfg.Params["time_zone"])
	assert.Equal(t, time.UTC, cfg.Loc)
}

func TestEnsureSchema(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	for range schema {
		mock.ExpectExec(".*").WillReturnResult(sqlmock.NewResult(0, 0))
	}

	require.NoError(t, EnsureSchema(context.Background(), db))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureSchemaStopsOnError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS numeros").WillReturnError(errors.New("denied"))

	err = EnsureSchema(context.Background(), db)
	assert.ErrorContains(t, err, "schema statement 1")
	assert.NoError(t, mock.ExpectationsWereMet())
}
