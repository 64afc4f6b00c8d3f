// Package app wires the store, service and snapshot manager from a Config.
// The server, staffctl and the scripts all start from Open.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	dbfs "github.com/philipcowcer-eng/LoadBalance/db"
	"github.com/philipcowcer-eng/LoadBalance/internal/audit"
	"github.com/philipcowcer-eng/LoadBalance/internal/config"
	"github.com/philipcowcer-eng/LoadBalance/internal/db"
	"github.com/philipcowcer-eng/LoadBalance/internal/jobs"
	"github.com/philipcowcer-eng/LoadBalance/internal/repository/sqlite"
	"github.com/philipcowcer-eng/LoadBalance/internal/service"
	"github.com/philipcowcer-eng/LoadBalance/internal/snapshot"
)

type App struct {
	Config    *config.Config
	Logger    *slog.Logger
	DB        *db.DB
	Service   *service.Service
	Snapshots *snapshot.Manager
}

// NewLogger returns the JSON logger used by every long-running command.
func NewLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, nil))
}

// Open connects to the database named by cfg and builds the service on
// top of it. Migrations run when migrate is set.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger, migrate bool) (*App, error) {
	if logger == nil {
		logger = NewLogger()
	}

	conn, err := db.New(ctx, cfg.DatabasePath, logger)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if migrate {
		if err := db.Migrate(ctx, conn, dbfs.Migrations); err != nil {
			conn.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}

	mirror, err := NewMirror(ctx, cfg.Snapshot)
	if err != nil {
		conn.Close()
		return nil, err
	}

	repo := sqlite.New(conn, logger)
	return &App{
		Config:    cfg,
		Logger:    logger,
		DB:        conn,
		Service:   service.New(repo, audit.NewRecorder(repo, logger), logger),
		Snapshots: snapshot.NewManager(conn, cfg.Snapshot.Dir, mirror, logger),
	}, nil
}

// NewMirror returns the off-host copy target for archives, or nil when
// snapshots stay on the local filesystem.
func NewMirror(ctx context.Context, cfg config.SnapshotConfig) (snapshot.Mirror, error) {
	if cfg.Driver != "s3" {
		return nil, nil
	}
	m, err := snapshot.NewS3Mirror(ctx, snapshot.S3Config{
		Bucket:    cfg.Bucket,
		Prefix:    cfg.Prefix,
		Region:    cfg.Region,
		Endpoint:  cfg.Endpoint,
		PathStyle: cfg.PathStyle,
	})
	if err != nil {
		return nil, fmt.Errorf("snapshot mirror: %w", err)
	}
	return m, nil
}

// StartBackground runs periodic snapshots when an interval is configured.
// The returned function stops the scheduler and then the workers.
func (a *App) StartBackground(ctx context.Context) (stop func()) {
	interval := a.Config.Snapshot.Interval
	if interval <= 0 {
		return func() {}
	}

	pool := jobs.NewWorkerPool(jobs.NewRepository(a.DB), map[string]jobs.Handler{
		jobs.TypeSnapshot: jobs.SnapshotHandler(a.Snapshots, a.Config.Snapshot.Keep),
	}, a.Logger, 1)
	pool.Start(ctx)

	sched := jobs.NewScheduler(pool, jobs.TypeSnapshot, interval, a.Logger)
	sched.Start(ctx)
	a.Logger.Info("snapshot scheduler started", "interval", interval.String(), "keep", a.Config.Snapshot.Keep)

	return func() {
		sched.Stop()
		pool.Stop()
	}
}

func (a *App) Close() error {
	return a.DB.Close()
}
