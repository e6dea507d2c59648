package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDSN(t *testing.T) {
	pg := Config{Driver: DriverPostgres, Host: "db", User: "u", Password: "p", Name: "bloodlink", Port: "5432"}
	assert.Equal(t, "host=db user=u password=p dbname=bloodlink port=5432 sslmode=disable", pg.DSN())

	assert.Equal(t, "file::memory:?cache=shared", Config{Driver: DriverSQLite}.DSN())
	assert.Equal(t, "/tmp/x.db", Config{Driver: DriverSQLite, SQLitePath: "/tmp/x.db"}.DSN())
}

func TestConnectSQLite(t *testing.T) {
	db, err := Connect(Config{Driver: DriverSQLite, SQLitePath: "file:conn_test?mode=memory&cache=shared"})
	require.NoError(t, err)

	var one int
	require.NoError(t, db.Raw("SELECT 1").Scan(&one).Error)
	assert.Equal(t, 1, one)
}

func TestConnectUnknownDriver(t *testing.T) {
	_, err := Connect(Config{Driver: "oracle"})
	assert.Error(t, err)
}
