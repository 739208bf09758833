// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/starford/stickies/internal/apperr"
	"github.com/starford/stickies/internal/hub"
	"github.com/starford/stickies/internal/index"
	"github.com/starford/stickies/internal/repository"
	"github.com/starford/stickies/internal/storage"
	"github.com/starford/stickies/internal/window"
	"github.com/starford/stickies/internal/window/termui"
	"github.com/starford/stickies/internal/window/webui"
)

// Run starts the application with the given options. It returns once the
// last note window has closed or ctx is done.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	// Ensure notes root exists.
	if err := os.MkdirAll(cfg.Notes.Root, 0o755); err != nil {
		return fmt.Errorf("create notes root: %w", err)
	}

	logger, closeLog, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer closeLog()
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("ui", cfg.App.UI),
		slog.String("notes_root", cfg.Notes.Root),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.Bool("watch", cfg.Notes.Watch),
		slog.String("log_level", cfg.App.LogLevel.String()))

	repo, err := OpenRepository(cfg.Notes.Root, logger)
	if err != nil {
		return err
	}

	// The index stays a nil interface when disabled.
	var noteIndex index.NoteIndex
	if cfg.SQLite.Enabled() {
		db, err := OpenIndex(cfg.SQLite.Path, repo, logger)
		if err != nil {
			return err
		}
		defer db.Close()
		noteIndex = db
	}

	tk := app.toolkit
	if tk == nil {
		tk = newToolkit(cfg, logger)
	}

	h := hub.New(tk, repo,
		hub.WithDefaultID(cfg.Notes.DefaultID),
		hub.WithLogger(logger))

	var startErr error
	tk.Post(func() {
		if err := h.Start(); err != nil {
			startErr = err
			logger.Error("hub start failed", slog.String("error", err.Error()))
		}
	})

	g, gCtx := errgroup.WithContext(ctx)

	// runCtx ends with the UI, which ends when the last note closes.
	runCtx, stop := context.WithCancel(gCtx)
	defer stop()

	g.Go(func() error {
		defer stop()
		return tk.Run(gCtx)
	})

	if cfg.Notes.Watch {
		g.Go(func() error {
			err := index.Watch(runCtx, noteIndex, repo, logger, func(kind, id string) {
				if kind != index.EventCreated {
					return
				}
				tk.Post(func() { openDiscovered(h, id, logger) })
			})
			if err != nil {
				logger.Error("watcher failed", slog.String("error", err.Error()))
			}
			return nil
		})
	}

	// Signals close every note so each one saves on its way out.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
			tk.Post(h.CloseAll)
		case <-runCtx.Done():
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}
	if startErr != nil {
		return startErr
	}

	logger.Info("All notes closed")
	return nil
}

// OpenRepository opens the notes under root, creating root if needed.
func OpenRepository(root string, logger *slog.Logger) (*repository.Repository, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create notes root: %w", err)
	}
	store, err := storage.NewFS(root)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}
	return repository.New(store, repository.WithLogger(logger)), nil
}

// OpenIndex opens the search index and brings it in line with the notes on
// disk.
func OpenIndex(path string, repo *repository.Repository, logger *slog.Logger) (*index.DB, error) {
	db, err := index.Open(path)
	if err != nil {
		return nil, fmt.Errorf("init index: %w", err)
	}
	if err := index.Sync(db, repo, logger); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}
	return db, nil
}

// openDiscovered opens a note directory that appeared while running.
func openDiscovered(h *hub.Hub, id string, logger *slog.Logger) {
	if h.Terminated() {
		return
	}
	err := h.Open(id)
	switch {
	case err == nil:
		logger.Info("opened new note", slog.String("note", id))
	case errors.Is(err, apperr.ErrNoteAlreadyOpen):
	default:
		logger.Warn("new note failed to open", slog.String("note", id), slog.String("error", err.Error()))
	}
}

func newToolkit(cfg *Config, logger *slog.Logger) window.Toolkit {
	if cfg.App.UI == UITerm {
		return termui.New(logger)
	}
	return webui.New(cfg.App.HTTP.Address(), logger)
}

// newLogger builds the JSON logger. The terminal UI owns stdout, so its log
// goes to a file.
func newLogger(cfg *Config) (*slog.Logger, func(), error) {
	var (
		out     io.Writer = os.Stdout
		closeFn           = func() {}
	)
	if cfg.App.UI == UITerm {
		f, err := os.OpenFile(cfg.LogFilePath(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		out = f
		closeFn = func() { _ = f.Close() }
	}
	logger := slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	return logger, closeFn, nil
}
