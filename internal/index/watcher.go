package index

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/stickies/internal/checksum"
	"github.com/starford/stickies/internal/models"
	"github.com/starford/stickies/internal/repository"
)

// Watcher event kinds.
const (
	EventCreated = "created"
	EventUpdated = "updated"
	EventDeleted = "deleted"
)

const debounce = 200 * time.Millisecond

// EventCallback is called after a watcher-driven change.
// kind is one of EventCreated, EventUpdated, EventDeleted.
type EventCallback func(kind string, id string)

// Watch starts an fsnotify watcher on the notes root and its note
// directories and processes change events until ctx is cancelled.
//
// A new note directory reports EventCreated. A rewritten current.txt is
// reindexed after a short debounce and reports EventUpdated. A removed or
// renamed note directory is unindexed and reports EventDeleted. db may be
// nil, in which case only the callbacks run.
func Watch(ctx context.Context, db NoteIndex, repo *repository.Repository, logger *slog.Logger, cb EventCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	root := repo.Root()
	if err := w.Add(root); err != nil {
		return err
	}
	ids, err := repo.Discover()
	if err != nil {
		return err
	}
	for _, id := range ids {
		if err := w.Add(filepath.Join(root, id)); err != nil {
			logger.Warn("watcher: add note dir failed", slog.String("note", id), slog.String("error", err.Error()))
		}
	}

	logger.Info("watcher: started", slog.String("root", root), slog.Int("notes", len(ids)))

	notify := func(kind, id string) {
		if cb != nil {
			cb(kind, id)
		}
	}

	// Saves happen per keystroke; reindexing is batched behind a timer.
	pending := make(map[string]struct{})
	var flushTimer *time.Timer
	var flushCh <-chan time.Time

	scheduleFlush := func() {
		if flushTimer == nil {
			flushTimer = time.NewTimer(debounce)
			flushCh = flushTimer.C
		} else {
			flushTimer.Reset(debounce)
		}
	}

	flush := func() {
		for id := range pending {
			delete(pending, id)
			if db != nil {
				if !reindex(db, repo, id, logger) {
					continue
				}
			}
			notify(EventUpdated, id)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if flushTimer != nil {
				flushTimer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-flushCh:
			flush()

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			rel, relErr := filepath.Rel(root, ev.Name)
			if relErr != nil || rel == "." {
				continue
			}
			parts := strings.Split(filepath.ToSlash(rel), "/")
			id := parts[0]
			if models.ValidateID(id) != nil {
				continue
			}

			switch len(parts) {
			case 1:
				// Entry directly under the root.
				switch {
				case ev.Op&fsnotify.Create != 0:
					info, statErr := os.Stat(ev.Name)
					if statErr != nil || !info.IsDir() {
						continue
					}
					if addErr := w.Add(ev.Name); addErr != nil {
						logger.Warn("watcher: add new dir failed", slog.String("note", id), slog.String("error", addErr.Error()))
					}
					logger.Debug("watcher: note dir created", slog.String("note", id))
					notify(EventCreated, id)
					// current.txt may already be there if it was written
					// before the watch was added.
					pending[id] = struct{}{}
					scheduleFlush()

				case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
					delete(pending, id)
					if db != nil {
						if delErr := db.DeleteNote(id); delErr != nil {
							logger.Warn("watcher: delete failed", slog.String("note", id), slog.String("error", delErr.Error()))
							continue
						}
					}
					logger.Debug("watcher: note dir removed", slog.String("note", id))
					notify(EventDeleted, id)
				}

			case 2:
				if parts[1] != models.CurrentFile {
					continue
				}
				if ev.Op&(fsnotify.Create|fsnotify.Write) != 0 {
					pending[id] = struct{}{}
					scheduleFlush()
				}
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// reindex reads a note's current text and upserts it. It reports whether
// the note was indexed.
func reindex(db NoteIndex, repo *repository.Repository, id string, logger *slog.Logger) bool {
	data, err := readCurrent(repo, id)
	if errors.Is(err, fs.ErrNotExist) {
		return false
	}
	if err != nil {
		logger.Warn("watcher: read failed", slog.String("note", id), slog.String("error", err.Error()))
		return false
	}
	// Autosave rewrites the same text on keys that do not edit it.
	if stored, err := db.GetChecksum(id); err == nil && checksum.Matches(stored, data) {
		return true
	}
	if err := indexNote(db, id, data); err != nil {
		logger.Warn("watcher: index failed", slog.String("note", id), slog.String("error", err.Error()))
		return false
	}
	logger.Debug("watcher: indexed", slog.String("note", id))
	return true
}
