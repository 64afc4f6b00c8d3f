package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func setupEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("STAFFING_ENV", "development")
	t.Setenv("STAFFING_DATABASE_PATH", filepath.Join(dir, "staffing.db"))
	t.Setenv("STAFFING_SNAPSHOT_DIR", filepath.Join(dir, "snapshots"))
	t.Setenv("STAFFING_SNAPSHOT_KEEP", "1")
	return dir
}

// execute runs the CLI and returns what it wrote to stdout and stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out, _, err := execute(t, args...)
	return out, err
}

func TestMigrateAndBootstrap(t *testing.T) {
	setupEnv(t)

	out, err := run(t, "migrate")
	require.NoError(t, err)
	require.Contains(t, out, "Migrations applied.")

	out, logs, err := execute(t, "bootstrap-admin", "--username", "ops", "--password", "s3cret-pass")
	require.NoError(t, err)
	require.Contains(t, logs, "bootstrap admin created")
	require.True(t, json.Valid([]byte(out)), "stdout must hold only the result: %q", out)
	var res struct {
		Username string `json:"username"`
		Created  bool   `json:"created"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.Equal(t, "ops", res.Username)
	require.True(t, res.Created)

	out, err = run(t, "bootstrap-admin")
	require.NoError(t, err)
	require.Contains(t, out, `"created": false`)
}

func TestImportExport(t *testing.T) {
	dir := setupEnv(t)
	csvPath := filepath.Join(dir, "engineers.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("name,role,total_capacity,ktlo_tax\nLin,Architect,36,6\n"), 0o644))

	out, err := run(t, "import", "engineers", csvPath)
	require.NoError(t, err)
	require.Contains(t, out, `"imported": 1`)

	out, err = run(t, "export", "engineers")
	require.NoError(t, err)
	require.Contains(t, out, "Lin,Architect,36,6")

	xlsx := filepath.Join(dir, "out.xlsx")
	_, err = run(t, "export", "workbook", "--out", xlsx)
	require.NoError(t, err)
	b, err := os.ReadFile(xlsx)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(b, []byte("PK")))

	_, err = run(t, "export", "workbook")
	require.Error(t, err)
	_, err = run(t, "import", "users", csvPath)
	require.Error(t, err)
}

func TestSnapshotCommands(t *testing.T) {
	setupEnv(t)

	out, err := run(t, "snapshot", "create")
	require.NoError(t, err)
	var info struct {
		Filename string `json:"filename"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	require.True(t, strings.HasPrefix(info.Filename, "snapshot_"))

	out, err = run(t, "snapshot", "list")
	require.NoError(t, err)
	require.Contains(t, out, info.Filename)

	out, err = run(t, "snapshot", "restore", info.Filename)
	require.NoError(t, err)
	require.Contains(t, out, "pre_restore_safety_")

	_, err = run(t, "snapshot", "restore", "../escape.db")
	require.Error(t, err)

	out, err = run(t, "snapshot", "prune")
	require.NoError(t, err)
	require.Contains(t, out, "Removed 0 snapshot(s)")
}
