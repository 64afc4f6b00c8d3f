// Package snapshot archives the SQLite database to timestamped files and
// restores it from them.
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/philipcowcer-eng/LoadBalance/internal/db"
	"github.com/philipcowcer-eng/LoadBalance/internal/metrics"
)

const (
	SnapshotPrefix = "snapshot_"
	SafetyPrefix   = "pre_restore_safety_"
	Ext            = ".db"
	stampLayout    = "20060102_150405"
)

var (
	ErrNotFound    = errors.New("snapshot not found")
	ErrInvalidName = errors.New("invalid snapshot filename")
)

// queueTables hold background job state and are never overwritten by a
// restore.
var queueTables = map[string]bool{"jobs": true, "dead_letter_jobs": true}

// Info describes one archive file.
type Info struct {
	Filename  string    `json:"filename"`
	SizeKB    float64   `json:"size_kb"`
	CreatedAt time.Time `json:"created_at"`
}

// Manager writes archives of the live database into dir.
type Manager struct {
	conn   *db.DB
	dir    string
	mirror Mirror
	logger *slog.Logger
	now    func() time.Time
}

// NewManager returns a Manager. mirror may be nil.
func NewManager(conn *db.DB, dir string, mirror Mirror, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{conn: conn, dir: dir, mirror: mirror, logger: logger, now: time.Now}
}

func (m *Manager) Dir() string { return m.dir }

// Create writes a consistent copy of the database to
// snapshot_YYYYMMDD_HHMMSS.db (with a _N suffix when that name is taken)
// and mirrors it when a mirror is configured.
func (m *Manager) Create(ctx context.Context) (Info, error) {
	info, err := m.archive(ctx, SnapshotPrefix)
	if err != nil {
		metrics.Snapshots.WithLabelValues("create", "error").Inc()
		return Info{}, err
	}
	metrics.Snapshots.WithLabelValues("create", "ok").Inc()
	m.logger.Info("snapshot created", "filename", info.Filename, "size_kb", info.SizeKB)

	if m.mirror != nil {
		if err := m.upload(ctx, info.Filename); err != nil {
			metrics.Snapshots.WithLabelValues("mirror", "error").Inc()
			m.logger.Error("snapshot mirror failed", "filename", info.Filename, "error", err)
		} else {
			metrics.Snapshots.WithLabelValues("mirror", "ok").Inc()
		}
	}
	return info, nil
}

func (m *Manager) archive(ctx context.Context, prefix string) (Info, error) {
	if err := os.MkdirAll(m.dir, 0o755); err != nil {
		return Info{}, fmt.Errorf("create snapshot dir: %w", err)
	}
	name, path, err := m.freeName(prefix + m.now().Format(stampLayout))
	if err != nil {
		return Info{}, err
	}
	if _, err := m.conn.Exec(ctx, `VACUUM INTO ?`, path); err != nil {
		return Info{}, fmt.Errorf("vacuum into %s: %w", name, err)
	}
	fi, err := os.Stat(path)
	if err != nil {
		return Info{}, err
	}
	return infoFor(fi), nil
}

// freeName picks the first unused archive name for stamp, adding _2, _3
// and so on when several archives are taken within the same second.
func (m *Manager) freeName(stamp string) (string, string, error) {
	for i := 1; ; i++ {
		name := stamp + Ext
		if i > 1 {
			name = fmt.Sprintf("%s_%d%s", stamp, i, Ext)
		}
		path := filepath.Join(m.dir, name)
		_, err := os.Stat(path)
		if errors.Is(err, os.ErrNotExist) {
			return name, path, nil
		}
		if err != nil {
			return "", "", err
		}
	}
}

func (m *Manager) upload(ctx context.Context, name string) error {
	f, err := os.Open(filepath.Join(m.dir, name))
	if err != nil {
		return err
	}
	defer f.Close()
	return m.mirror.Put(ctx, name, f)
}

// List returns every archive in dir, newest first.
func (m *Manager) List(ctx context.Context) ([]Info, error) {
	entries, err := os.ReadDir(m.dir)
	if errors.Is(err, os.ErrNotExist) {
		return []Info{}, nil
	}
	if err != nil {
		return nil, err
	}
	out := []Info{}
	for _, e := range entries {
		if e.IsDir() || !isArchive(e.Name()) {
			continue
		}
		fi, err := e.Info()
		if err != nil {
			return nil, err
		}
		out = append(out, infoFor(fi))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		if len(out[i].Filename) != len(out[j].Filename) {
			return len(out[i].Filename) > len(out[j].Filename)
		}
		return out[i].Filename > out[j].Filename
	})
	return out, nil
}

// Restore replaces the contents of the live database with the archive
// named filename. A safety archive of the current state is written first
// and its name returned. The copy runs in one transaction, so a failed
// restore leaves the database untouched.
func (m *Manager) Restore(ctx context.Context, filename string) (string, error) {
	path, err := m.resolve(filename)
	if err != nil {
		return "", err
	}

	safety, err := m.archive(ctx, SafetyPrefix)
	if err != nil {
		metrics.Snapshots.WithLabelValues("restore", "error").Inc()
		return "", fmt.Errorf("safety copy: %w", err)
	}

	if err := m.copyFrom(ctx, path); err != nil {
		metrics.Snapshots.WithLabelValues("restore", "error").Inc()
		return safety.Filename, err
	}
	metrics.Snapshots.WithLabelValues("restore", "ok").Inc()
	m.logger.Warn("database restored from snapshot", "filename", filename, "safety_copy", safety.Filename)
	return safety.Filename, nil
}

func (m *Manager) resolve(filename string) (string, error) {
	if filename == "" || filepath.Base(filename) != filename || strings.Contains(filename, "..") || !strings.HasSuffix(filename, Ext) {
		return "", ErrInvalidName
	}
	path := filepath.Join(m.dir, filename)
	fi, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	if fi.IsDir() {
		return "", ErrNotFound
	}
	return path, nil
}

func (m *Manager) copyFrom(ctx context.Context, path string) error {
	conn, err := m.conn.X().Connx(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, `ATTACH DATABASE ? AS snap`, path); err != nil {
		return fmt.Errorf("attach snapshot: %w", err)
	}
	defer func() {
		if _, err := conn.ExecContext(context.WithoutCancel(ctx), `DETACH DATABASE snap`); err != nil {
			m.logger.Error("detach snapshot failed", "error", err)
		}
	}()

	var tables []string
	if err := conn.SelectContext(ctx, &tables, `SELECT name FROM main.sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name`); err != nil {
		return err
	}

	tx, err := conn.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `PRAGMA defer_foreign_keys = ON`); err != nil {
		return err
	}
	var copied []string
	for _, t := range tables {
		if queueTables[t] {
			continue
		}
		var n int
		if err := tx.GetContext(ctx, &n, `SELECT count(*) FROM snap.sqlite_master WHERE type = 'table' AND name = ?`, t); err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("snapshot has no table %q", t)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM main."`+t+`"`); err != nil {
			return fmt.Errorf("clear %s: %w", t, err)
		}
		copied = append(copied, t)
	}
	for _, t := range copied {
		if _, err := tx.ExecContext(ctx, `INSERT INTO main."`+t+`" SELECT * FROM snap."`+t+`"`); err != nil {
			return fmt.Errorf("copy %s: %w", t, err)
		}
	}
	return tx.Commit()
}

// Prune deletes all but the newest keep snapshots. Safety archives are
// never pruned. keep <= 0 disables pruning.
func (m *Manager) Prune(ctx context.Context, keep int) (int, error) {
	if keep <= 0 {
		return 0, nil
	}
	all, err := m.List(ctx)
	if err != nil {
		return 0, err
	}
	removed, kept := 0, 0
	for _, s := range all {
		if !strings.HasPrefix(s.Filename, SnapshotPrefix) {
			continue
		}
		if kept < keep {
			kept++
			continue
		}
		if err := os.Remove(filepath.Join(m.dir, s.Filename)); err != nil {
			return removed, err
		}
		removed++
	}
	if removed > 0 {
		m.logger.Info("snapshots pruned", "removed", removed, "kept", kept)
	}
	return removed, nil
}

func isArchive(name string) bool {
	return strings.HasSuffix(name, Ext) &&
		(strings.HasPrefix(name, SnapshotPrefix) || strings.HasPrefix(name, SafetyPrefix))
}

func infoFor(fi os.FileInfo) Info {
	return Info{
		Filename:  fi.Name(),
		SizeKB:    math.Round(float64(fi.Size())/1024*100) / 100,
		CreatedAt: createdAt(fi),
	}
}

// createdAt reads the timestamp embedded in the file name, falling back to
// the modification time.
func createdAt(fi os.FileInfo) time.Time {
	name := strings.TrimSuffix(fi.Name(), Ext)
	for _, p := range []string{SafetyPrefix, SnapshotPrefix} {
		if stamp, ok := strings.CutPrefix(name, p); ok && len(stamp) >= len(stampLayout) {
			if t, err := time.ParseInLocation(stampLayout, stamp[:len(stampLayout)], time.Local); err == nil {
				return t
			}
		}
	}
	return fi.ModTime()
}
