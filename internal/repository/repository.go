// Package repository maps note identifiers to their directories under the
// notes root and bootstraps missing note files.
package repository

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/starford/stickies/internal/models"
	"github.com/starford/stickies/internal/persistence"
	"github.com/starford/stickies/internal/settings"
	"github.com/starford/stickies/internal/storage"
)

// Repository resolves and bootstraps note directories.
type Repository struct {
	store  storage.Provider
	logger *slog.Logger
	now    func() time.Time
}

// Option configures a Repository.
type Option func(*Repository)

// WithLogger sets the logger used for bootstrap events.
func WithLogger(l *slog.Logger) Option {
	return func(r *Repository) { r.logger = l }
}

// WithClock sets the clock used to pick the backup seeded on first use.
func WithClock(now func() time.Time) Option {
	return func(r *Repository) { r.now = now }
}

// New creates a Repository over store.
func New(store storage.Provider, opts ...Option) *Repository {
	r := &Repository{
		store:  store,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Store returns the underlying storage provider.
func (r *Repository) Store() storage.Provider { return r.store }

// Root returns the absolute notes root.
func (r *Repository) Root() string { return r.store.Root() }

// Resolve returns the file paths of a note.
func (r *Repository) Resolve(id string) (models.NotePaths, error) {
	if err := models.ValidateID(id); err != nil {
		return models.NotePaths{}, err
	}
	return models.NewNotePaths(id), nil
}

// Discover returns the identifiers of all notes on disk, sorted.
func (r *Repository) Discover() ([]string, error) {
	dirs, err := r.store.ListDirs("")
	if err != nil {
		return nil, fmt.Errorf("repository: discover: %w", err)
	}
	ids := dirs[:0]
	for _, d := range dirs {
		if models.ValidateID(d) != nil {
			r.logger.Warn("repository: skipping directory with invalid note id", slog.String("dir", d))
			continue
		}
		ids = append(ids, d)
	}
	return ids, nil
}

// EnsureBootstrapped makes sure the note directory and its files exist:
// the directory is created if absent, current.txt gets the note id as
// placeholder if absent, and when either config file is missing both are
// rewritten to their defaults. Calling it on a complete note is a no-op.
func (r *Repository) EnsureBootstrapped(id string) (models.NotePaths, error) {
	paths, err := r.Resolve(id)
	if err != nil {
		return models.NotePaths{}, err
	}

	dirExists, err := r.store.Exists(paths.Dir)
	if err != nil {
		return models.NotePaths{}, fmt.Errorf("repository: %w", err)
	}
	if !dirExists {
		if err := r.store.MkdirAll(paths.Dir); err != nil {
			return models.NotePaths{}, fmt.Errorf("repository: create note dir: %w", err)
		}
		r.logger.Info("repository: created note", slog.String("note", id))
	}

	placeholder := []byte(id)
	created, err := r.writeIfMissing(paths.Current, placeholder)
	if err != nil {
		return models.NotePaths{}, err
	}
	if !dirExists && created {
		backup := paths.Backup(persistence.ISOWeekday(r.now()))
		if err := r.store.Write(backup, placeholder); err != nil {
			return models.NotePaths{}, fmt.Errorf("repository: seed backup: %w", err)
		}
	}

	if err := r.resetConfigIfIncomplete(paths); err != nil {
		return models.NotePaths{}, err
	}
	return paths, nil
}

func (r *Repository) writeIfMissing(path string, content []byte) (bool, error) {
	ok, err := r.store.Exists(path)
	if err != nil {
		return false, fmt.Errorf("repository: %w", err)
	}
	if ok {
		return false, nil
	}
	if err := r.store.Write(path, content); err != nil {
		return false, fmt.Errorf("repository: write %s: %w", path, err)
	}
	return true, nil
}

func (r *Repository) resetConfigIfIncomplete(paths models.NotePaths) error {
	geoOK, err := r.store.Exists(paths.Geometry)
	if err != nil {
		return fmt.Errorf("repository: %w", err)
	}
	styleOK, err := r.store.Exists(paths.Style)
	if err != nil {
		return fmt.Errorf("repository: %w", err)
	}
	if geoOK && styleOK {
		return nil
	}

	// Both files are reset together so a note never mixes defaults with
	// user values.
	if err := r.store.Write(paths.Geometry, settings.DefaultGeometryFile()); err != nil {
		return fmt.Errorf("repository: reset geometry: %w", err)
	}
	if err := r.store.Write(paths.Style, settings.DefaultStyleFile()); err != nil {
		return fmt.Errorf("repository: reset style: %w", err)
	}
	r.logger.Info("repository: config reset to defaults",
		slog.String("note", paths.ID),
		slog.Bool("geometry_missing", !geoOK),
		slog.Bool("style_missing", !styleOK))
	return nil
}
