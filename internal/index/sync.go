package index

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/starford/stickies/internal/checksum"
	"github.com/starford/stickies/internal/parser"
	"github.com/starford/stickies/internal/repository"
)

// Sync walks the notes root and brings the index up to date:
//   - new/changed notes are parsed and upserted
//   - notes removed from disk are deleted from the index
func Sync(db NoteIndex, repo *repository.Repository, logger *slog.Logger) error {
	ids, err := repo.Discover()
	if err != nil {
		return err
	}

	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	disk := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		data, err := readCurrent(repo, id)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			logger.Warn("sync: read failed", slog.String("note", id), slog.String("error", err.Error()))
			continue
		}
		disk[id] = struct{}{}

		if checksum.Matches(checksums[id], data) {
			continue
		}
		if err := indexNote(db, id, data); err != nil {
			logger.Warn("sync: index failed", slog.String("note", id), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: indexed", slog.String("note", id))
		}
	}

	for id := range checksums {
		if _, ok := disk[id]; ok {
			continue
		}
		if err := db.DeleteNote(id); err != nil {
			logger.Warn("sync: delete failed", slog.String("note", id), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: removed stale", slog.String("note", id))
		}
	}

	return nil
}

func readCurrent(repo *repository.Repository, id string) ([]byte, error) {
	paths, err := repo.Resolve(id)
	if err != nil {
		return nil, err
	}
	data, err := repo.Store().Read(paths.Current)
	if err != nil {
		return nil, fmt.Errorf("index: read %s: %w", paths.Current, err)
	}
	return data, nil
}

// indexNote parses data and upserts it into the index.
func indexNote(db NoteIndex, id string, data []byte) error {
	res := parser.Parse(data)
	row := NoteRow{
		ID:        id,
		Title:     res.Title,
		Checksum:  checksum.Sum(data),
		Tags:      res.Tags,
		UpdatedAt: time.Now(),
	}
	return db.UpsertNote(row, res.Body)
}
