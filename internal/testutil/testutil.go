// Package testutil provides shared test helpers for setting up note roots
// and search indexes.
package testutil

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/starford/stickies/internal/index"
	"github.com/starford/stickies/internal/repository"
	"github.com/starford/stickies/internal/storage"
)

// Logger returns a logger that drops everything.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestDB creates a temporary SQLite index that is closed on cleanup.
func TestDB(t *testing.T) *index.DB {
	t.Helper()
	db, err := index.Open(filepath.Join(t.TempDir(), "index.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestRepo creates a temporary notes root and a repository over it. A
// non-zero now pins the repository clock.
func TestRepo(t *testing.T, now time.Time) (string, *repository.Repository) {
	t.Helper()
	root := t.TempDir()
	store, err := storage.NewFS(root)
	if err != nil {
		t.Fatal(err)
	}
	opts := []repository.Option{repository.WithLogger(Logger())}
	if !now.IsZero() {
		opts = append(opts, repository.WithClock(func() time.Time { return now }))
	}
	return root, repository.New(store, opts...)
}
