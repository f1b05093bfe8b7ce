package backend

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/scorebook/core"
	"github.com/trezcool/scorebook/tests"
)

func TestOpen(t *testing.T) {
	ctx := context.Background()

	t.Run("memory seeded from file", func(t *testing.T) {
		data, err := json.Marshal(testutil.Fixture())
		require.NoError(t, err)
		path := filepath.Join(t.TempDir(), "db.json")
		require.NoError(t, os.WriteFile(path, data, 0o600))

		conf := core.NewTestConfig()
		conf.Backend.SeedFile = path
		b, err := Open(ctx, conf)
		require.NoError(t, err)
		defer func() { _ = b.Close() }()
		assert.Nil(t, b.DB)

		students, err := b.Repository.ListStudents(ctx)
		require.NoError(t, err)
		assert.Len(t, students, 3)
	})

	t.Run("missing seed file", func(t *testing.T) {
		conf := core.NewTestConfig()
		conf.Backend.SeedFile = filepath.Join(t.TempDir(), "nope.json")
		_, err := Open(ctx, conf)
		assert.Error(t, err)
	})

	t.Run("sqlite is migrated", func(t *testing.T) {
		conf := core.NewTestConfig()
		conf.Backend.Driver = core.DriverSQLite
		conf.Backend.DSN = ":memory:"
		b, err := Open(ctx, conf)
		require.NoError(t, err)
		defer func() { _ = b.Close() }()
		require.NotNil(t, b.DB)

		classes, err := b.Repository.ListClasses(ctx)
		require.NoError(t, err)
		assert.Empty(t, classes)
	})

	t.Run("rest", func(t *testing.T) {
		conf := core.NewTestConfig()
		conf.Backend.Driver = core.DriverREST
		b, err := Open(ctx, conf)
		require.NoError(t, err)
		assert.NotNil(t, b.Repository)
	})

	t.Run("unknown driver", func(t *testing.T) {
		conf := core.NewTestConfig()
		conf.Backend.Driver = "mongo"
		_, err := Open(ctx, conf)
		assert.EqualError(t, err, `unknown backend driver "mongo"`)
	})
}
