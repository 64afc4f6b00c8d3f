package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/philipcowcer-eng/LoadBalance/internal/config"
	"github.com/philipcowcer-eng/LoadBalance/internal/service"
	"github.com/philipcowcer-eng/LoadBalance/pkg/models"
)

func testConfig(t *testing.T) *config.Config {
	dir := t.TempDir()
	return &config.Config{
		DatabasePath: filepath.Join(dir, "staffing.db"),
		Snapshot:     config.SnapshotConfig{Dir: filepath.Join(dir, "snapshots"), Driver: "fs", Keep: 2},
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	a, err := Open(ctx, testConfig(t), nil, true)
	require.NoError(t, err)
	defer a.Close()

	e, err := a.Service.CreateEngineer(ctx, service.EngineerInput{Name: "Ada", Role: models.RoleArchitect})
	require.NoError(t, err)
	require.Equal(t, 40, e.EffectiveCapacity)

	info, err := a.Snapshots.Create(ctx)
	require.NoError(t, err)
	require.Equal(t, a.Config.Snapshot.Dir, a.Snapshots.Dir())
	require.NotEmpty(t, info.Filename)
}

func TestNewMirror(t *testing.T) {
	ctx := context.Background()

	m, err := NewMirror(ctx, config.SnapshotConfig{Driver: "fs"})
	require.NoError(t, err)
	require.Nil(t, m)

	_, err = NewMirror(ctx, config.SnapshotConfig{Driver: "s3"})
	require.Error(t, err)

	m, err = NewMirror(ctx, config.SnapshotConfig{Driver: "s3", Bucket: "archives", Region: "eu-west-1"})
	require.NoError(t, err)
	require.NotNil(t, m)
}

func TestStartBackground(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := testConfig(t)
	a, err := Open(ctx, cfg, nil, true)
	require.NoError(t, err)
	defer a.Close()

	// Disabled without an interval.
	a.StartBackground(ctx)()

	cfg.Snapshot.Interval = 50 * time.Millisecond
	stop := a.StartBackground(ctx)
	require.Eventually(t, func() bool {
		infos, err := a.Snapshots.List(ctx)
		return err == nil && len(infos) > 0
	}, 5*time.Second, 50*time.Millisecond)
	stop()
}
