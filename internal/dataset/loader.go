package dataset

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"painel/internal/cache"
	"painel/internal/core"
	"painel/internal/log"
)

// Snapshot is one decoded version of an extract.
type Snapshot struct {
	Path     string
	Table    *core.Table
	Notices  []core.Notice
	LoadedAt time.Time
	stamp    stamp
}

// stamp identifies a version of a file on disk.
type stamp struct {
	modTime time.Time
	size    int64
}

func (s stamp) equal(o stamp) bool {
	return s.size == o.size && s.modTime.Equal(o.modTime)
}

// Stats reports loader cache activity.
type Stats struct {
	Hits    int64
	Misses  int64
	Entries int
}

// Loader reads extracts and keeps the decoded tables keyed by absolute path.
// A cached table is reused until the file's modification time or size changes
// or the entry is invalidated.
type Loader struct {
	logger  *log.Logger
	entries *cache.LRUCache[*Snapshot]
	group   singleflight.Group
	hits    atomic.Int64
	misses  atomic.Int64
}

// NewLoader creates a loader holding at most maxEntries decoded extracts.
func NewLoader(logger *log.Logger, maxEntries int) *Loader {
	return &Loader{
		logger:  logger.WithComponent(log.ComponentDataset),
		entries: cache.NewLRUCache[*Snapshot](maxEntries, 0),
	}
}

// Load returns the table for path, reading the file only when no current
// cached version exists.
func (l *Loader) Load(ctx context.Context, path string) (*core.Table, error) {
	snap, err := l.Snapshot(ctx, path)
	if err != nil {
		return nil, err
	}
	return snap.Table, nil
}

// Snapshot is Load plus the notices produced while decoding.
func (l *Loader) Snapshot(ctx context.Context, path string) (*Snapshot, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, &core.IOError{Path: path, Err: err}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	current, err := statFile(abs)
	if err != nil {
		l.entries.Delete(abs)
		return nil, err
	}

	if snap, ok := l.entries.Get(abs); ok && snap.stamp.equal(current) {
		l.hits.Add(1)
		return snap, nil
	}

	v, err, _ := l.group.Do(abs, func() (any, error) {
		if snap, ok := l.entries.Get(abs); ok && snap.stamp.equal(current) {
			return snap, nil
		}
		l.misses.Add(1)
		return l.read(abs, current)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Snapshot), nil
}

func (l *Loader) read(abs string, st stamp) (*Snapshot, error) {
	start := time.Now()
	data, err := os.ReadFile(abs)
	if err != nil {
		l.logger.Error("Failed to read extract", log.FieldDataPath, abs, log.FieldError, err)
		return nil, &core.IOError{Path: abs, Err: err}
	}

	table, notices, err := Parse(abs, data)
	if err != nil {
		l.logger.Error("Failed to parse extract", log.FieldDataPath, abs, log.FieldError, err)
		return nil, err
	}

	snap := &Snapshot{
		Path:     abs,
		Table:    table,
		Notices:  notices,
		LoadedAt: time.Now(),
		stamp:    st,
	}
	l.entries.Set(abs, snap)

	fields := log.NewFields().
		WithOperation(log.OpLoad).
		WithDataset(abs, table.Len(), len(table.Columns()))
	l.logger.Info("Extract loaded", append(fields.ToSlice(),
		log.FieldDuration, time.Since(start).Milliseconds(),
		"notices", len(notices))...)
	return snap, nil
}

func statFile(abs string) (stamp, error) {
	info, err := os.Stat(abs)
	if err != nil {
		return stamp{}, &core.IOError{Path: abs, Err: err}
	}
	if info.IsDir() {
		return stamp{}, &core.IOError{Path: abs, Err: errors.New("is a directory")}
	}
	return stamp{modTime: info.ModTime(), size: info.Size()}, nil
}

// Notices returns the notices of the cached version of path, if any.
func (l *Loader) Notices(path string) []core.Notice {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil
	}
	snap, ok := l.entries.Get(abs)
	if !ok {
		return nil
	}
	out := make([]core.Notice, len(snap.Notices))
	copy(out, snap.Notices)
	return out
}

// Invalidate drops the cached table for path.
func (l *Loader) Invalidate(path string) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return
	}
	l.entries.Delete(abs)
	l.logger.Debug("Extract invalidated", log.FieldOperation, log.OpInvalidate, log.FieldDataPath, abs)
}

// Purge drops every cached table.
func (l *Loader) Purge() {
	l.entries.Purge()
}

// Stats returns hit and miss counters.
func (l *Loader) Stats() Stats {
	return Stats{
		Hits:    l.hits.Load(),
		Misses:  l.misses.Load(),
		Entries: l.entries.Size(),
	}
}
