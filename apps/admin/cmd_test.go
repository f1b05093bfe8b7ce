package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/trezcool/scorebook/core"
	"github.com/trezcool/scorebook/core/statistic"
	exportsvc "github.com/trezcool/scorebook/services/export"
	logsvc "github.com/trezcool/scorebook/services/logger"
	"github.com/trezcool/scorebook/storage/database"
	sqlxrepos "github.com/trezcool/scorebook/storage/database/sqlx"
	"github.com/trezcool/scorebook/tests"
)

func setup(t *testing.T) (*commandLine, *bytes.Buffer) {
	t.Helper()
	conf := core.NewTestConfig()
	_, repo := testutil.NewMemoryRepository(testutil.Fixture())

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	statistic.InitValidators(validate, translator)

	var out bytes.Buffer
	return &commandLine{
		svc:        statistic.NewService(repo, conf, logsvc.NewDiscardLogger()),
		validate:   validate,
		translator: translator,
		out:        &out,
	}, &out
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	wantOut    []string
}

func runCLITests(t *testing.T, tests []cliTest) {
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cli, out := setup(t)
			args := append([]string{"admin"}, tt.args...)

			err := cli.run(context.Background(), args)
			switch {
			case tt.wantErr != nil:
				assert.Equal(t, tt.wantErr, err)
			case tt.wantErrStr != "":
				assert.EqualError(t, err, tt.wantErrStr)
			default:
				require.NoError(t, err)
			}
			for _, want := range tt.wantOut {
				assert.Contains(t, out.String(), want)
			}
		})
	}
}

func Test_commandLine_run(t *testing.T) {
	runCLITests(t, []cliTest{
		{name: "no command", wantErr: errHelp, wantOut: []string{"Usage:"}},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "unknown flag", args: []string{"report", "-lol"}, wantErrStr: "flag provided but not defined: -lol"},
		{name: "export: no file", args: []string{"export"}, wantErr: errHelp},
		{name: "seedscores: no student", args: []string{"seedscores"}, wantErr: errHelp},
		{name: "importdb: no file", args: []string{"importdb"}, wantErr: errHelp},
		{name: "importdb: not a SQL backend", args: []string{"importdb", "-file", "db.json"}, wantErr: errNoSQLBackend},
		{name: "migrate: no command", args: []string{"migrate"}, wantErr: errHelp},
		{name: "migrate: not a SQL backend", args: []string{"migrate", "up"}, wantErr: errNoMigrationsBackend},
	})
}

func Test_commandLine_report(t *testing.T) {
	runCLITests(t, []cliTest{
		{
			name:    "all",
			args:    []string{"report"},
			wantOut: []string{"SV001", "SV002", "SV003", "Chưa có tên", "Average", "3 students"},
		},
		{
			name:    "class filter",
			args:    []string{"report", "-class", "11", "-ordering", "-hk1"},
			wantOut: []string{"SV002", "10B", "22.5", "100%", "1 students"},
		},
		{
			name:    "no match",
			args:    []string{"report", "-search", "nobody"},
			wantOut: []string{"no students"},
		},
		{
			name:       "bad class",
			args:       []string{"report", "-class", "10A"},
			wantErrStr: "invalid filter: class must be a valid number",
		},
		{
			name:       "bad ordering",
			args:       []string{"report", "-ordering", "name"},
			wantErrStr: "invalid filter: invalid ordering field",
		},
	})

	cli, out := setup(t)
	require.NoError(t, cli.run(context.Background(), []string{"admin", "report", "-search", "an"}))
	assert.NotContains(t, out.String(), "SV002")
}

func Test_commandLine_export(t *testing.T) {
	cli, out := setup(t)
	path := filepath.Join(t.TempDir(), "stats.xlsx")

	require.NoError(t, cli.run(context.Background(), []string{"admin", "export", "-o", path, "-class", "10"}))
	assert.Contains(t, out.String(), "1 students exported to ")

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	rows, err := f.GetRows(exportsvc.SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "SV001", rows[1][0])
}

func Test_commandLine_seedScores(t *testing.T) {
	runCLITests(t, []cliTest{
		{name: "student with gaps", args: []string{"seedscores", "-student", "1"}, wantOut: []string{"2 score rows created"}},
		{name: "student without scores", args: []string{"seedscores", "-student", "3"}, wantOut: []string{"3 score rows created"}},
		{name: "unknown student", args: []string{"seedscores", "-student", "42"}, wantErr: statistic.ErrStudentNotFound},
	})
}

func Test_commandLine_importDB(t *testing.T) {
	ctx := context.Background()
	conf := core.NewTestConfig()
	conf.Backend.Driver = core.DriverSQLite
	conf.Backend.DSN = ":memory:"
	db, err := database.Open(conf)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	data, err := json.Marshal(testutil.Fixture())
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "db.json")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	cli, out := setup(t)
	cli.db = db

	err = cli.run(ctx, []string{"admin", "importdb", "-file", filepath.Join(t.TempDir(), "nope.json")})
	assert.Error(t, err)

	require.NoError(t, cli.run(ctx, []string{"admin", "importdb", "-file", path}))
	assert.Contains(t, out.String(), "imported 3 students, 3 subjects, 3 score rows and 2 classes")

	repo := sqlxrepos.NewSchoolRepository(db)
	students, err := repo.ListStudents(ctx)
	require.NoError(t, err)
	assert.Equal(t, testutil.Fixture().Students, students)
}

func Test_commandLine_migrate(t *testing.T) {
	ctx := context.Background()
	conf := core.NewTestConfig()
	conf.Backend.Driver = core.DriverSQLite
	conf.Backend.DSN = ":memory:"
	db, err := database.Open(conf)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	type call struct {
		command string
		args    []string
	}
	var got []call
	migrationsRunFunc = func(command string, _ *sqlx.DB, args ...string) error {
		got = append(got, call{command, args})
		return nil
	}
	t.Cleanup(func() { migrationsRunFunc = database.RunMigrations })

	tests := []struct {
		name string
		args []string
		want call
	}{
		{name: "up", args: []string{"migrate", "up"}, want: call{"up", []string{}}},
		{name: "up-to", args: []string{"migrate", "up-to", "1"}, want: call{"up-to", []string{"1"}}},
		{name: "down", args: []string{"migrate", "down"}, want: call{"down", []string{}}},
		{name: "status", args: []string{"migrate", "status"}, want: call{"status", []string{}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got = nil
			cli, _ := setup(t)
			cli.db = db

			require.NoError(t, cli.run(ctx, append([]string{"admin"}, tt.args...)))
			assert.Equal(t, []call{tt.want}, got)
		})
	}
}

func Test_commandLine_migrate_sqlite(t *testing.T) {
	ctx := context.Background()
	conf := core.NewTestConfig()
	conf.Backend.Driver = core.DriverSQLite
	conf.Backend.DSN = ":memory:"
	db, err := database.Open(conf)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	cli, _ := setup(t)
	cli.db = db

	require.NoError(t, cli.run(ctx, []string{"admin", "migrate", "up"}))
	var n int
	require.NoError(t, db.Get(&n, "SELECT COUNT(*) FROM student_scores"))
	assert.Zero(t, n)

	err = cli.run(ctx, []string{"admin", "migrate", "lol"})
	assert.EqualError(t, err, `"lol": no such command`)
}
