package database

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trezcool/goose"

	"github.com/trezcool/scorebook/core"
)

func TestOpen(t *testing.T) {
	conf := core.NewTestConfig()
	conf.Backend.Driver = core.DriverSQLite
	conf.Backend.DSN = ":memory:"

	db, err := Open(conf)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, Ping(ctx, db, 3))
	assert.Equal(t, "sqlite", db.DriverName())

	conf.Backend.Driver = core.DriverREST
	_, err = Open(conf)
	assert.EqualError(t, err, `unsupported SQL driver "rest"`)
}

func TestMigrate(t *testing.T) {
	conf := core.NewTestConfig()
	conf.Backend.Driver = core.DriverSQLite
	conf.Backend.DSN = ":memory:"
	db, err := Open(conf)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	require.NoError(t, Migrate(db))
	require.NoError(t, Migrate(db), "migrating twice is a no-op")

	version, err := goose.GetDBVersion(db.DB)
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)

	for _, table := range []string{"classes", "subjects", "students", "student_scores"} {
		var n int
		require.NoError(t, db.Get(&n, "SELECT COUNT(*) FROM "+table), table)
	}

	require.NoError(t, RunMigrations("down", db))
	var n int
	assert.Error(t, db.Get(&n, "SELECT COUNT(*) FROM students"), "down drops the tables")
	require.NoError(t, RunMigrations("up", db))
	require.NoError(t, db.Get(&n, "SELECT COUNT(*) FROM students"))
}
