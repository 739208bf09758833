// Package persistence reads and writes the text and geometry of a note.
//
// Text is written verbatim and read back verbatim: the writer never appends
// trailing content and the reader never trims, so a save followed by a load
// is an identity.
package persistence

import (
	"errors"
	"fmt"
	"time"

	"github.com/starford/stickies/internal/apperr"
	"github.com/starford/stickies/internal/models"
	"github.com/starford/stickies/internal/settings"
	"github.com/starford/stickies/internal/storage"
)

// Persistence saves and loads notes through a storage provider.
type Persistence struct {
	store storage.Provider
}

// New creates a Persistence over store.
func New(store storage.Provider) *Persistence {
	return &Persistence{store: store}
}

// ISOWeekday returns the ISO weekday of t, 1=Monday..7=Sunday.
func ISOWeekday(t time.Time) int {
	if wd := t.Weekday(); wd != time.Sunday {
		return int(wd)
	}
	return 7
}

// LoadText returns the full current text of a note.
func (p *Persistence) LoadText(paths models.NotePaths) (string, error) {
	data, err := p.store.Read(paths.Current)
	if err != nil {
		return "", fmt.Errorf("persistence: load text: %w", err)
	}
	return string(data), nil
}

// Save writes text to current.txt and to the backup of weekday, then writes
// the live geometry shifted by the style's adjust offsets to geometry.txt.
// Each write is attempted even if an earlier one failed; failures come back
// joined, each wrapping apperr.ErrIOWrite.
func (p *Persistence) Save(paths models.NotePaths, text string, weekday int, live models.Geometry, style settings.Style) error {
	if weekday < 1 || weekday > 7 {
		return fmt.Errorf("persistence: %w: %d", apperr.ErrInvalidWeekday, weekday)
	}

	body := []byte(text)
	geo := []byte(SavedGeometry(live, style).String())

	var errs []error
	for _, w := range []struct {
		path string
		data []byte
	}{
		{paths.Current, body},
		{paths.Backup(weekday), body},
		{paths.Geometry, geo},
	} {
		if err := p.store.Write(w.path, w.data); err != nil {
			errs = append(errs, fmt.Errorf("persistence: %w: %s: %w", apperr.ErrIOWrite, w.path, err))
		}
	}
	return errors.Join(errs...)
}

// SavedGeometry is the geometry line written for a window reporting live.
func SavedGeometry(live models.Geometry, style settings.Style) models.Geometry {
	return live.Shift(style.XAdjust, style.YAdjust)
}
