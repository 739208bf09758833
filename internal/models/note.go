// Package models defines the value types shared by the sticky-note core.
package models

import (
	"fmt"
	"path"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/stickies/internal/apperr"
)

// File names inside a note directory.
const (
	CurrentFile  = "current.txt"
	GeometryFile = "geometry.txt"
	StyleFile    = "style.txt"
	backupFormat = "backup-%d.txt"
)

var noteIDRe = regexp.MustCompile(`^[^/\\.][^/\\]*$`)

// ValidateID checks that id can be used both as a directory name under the
// notes root and as a window title.
func ValidateID(id string) error {
	err := validation.Validate(id,
		validation.Required,
		validation.Length(1, 255),
		validation.Match(noteIDRe).Error("must not start with a dot or contain path separators"),
	)
	if err != nil {
		return fmt.Errorf("%w %q: %v", apperr.ErrInvalidNoteID, id, err)
	}
	if strings.TrimSpace(id) != id {
		return fmt.Errorf("%w %q: leading or trailing whitespace", apperr.ErrInvalidNoteID, id)
	}
	return nil
}

// NotePaths holds the files of one note, relative to the notes root.
type NotePaths struct {
	ID       string `json:"id"`
	Dir      string `json:"dir"`
	Current  string `json:"current"`
	Geometry string `json:"geometry"`
	Style    string `json:"style"`
}

// NewNotePaths derives the paths for id. The id must already be valid.
func NewNotePaths(id string) NotePaths {
	return NotePaths{
		ID:       id,
		Dir:      id,
		Current:  path.Join(id, CurrentFile),
		Geometry: path.Join(id, GeometryFile),
		Style:    path.Join(id, StyleFile),
	}
}

// Backup returns the backup file for an ISO weekday (1=Monday..7=Sunday).
func (p NotePaths) Backup(weekday int) string {
	return path.Join(p.Dir, fmt.Sprintf(backupFormat, weekday))
}

// Geometry is a window size and root position in the `WxH+X+Y` form.
type Geometry struct {
	Width  int `json:"width"`
	Height int `json:"height"`
	X      int `json:"x"`
	Y      int `json:"y"`
}

// String renders g as `WxH+X+Y`. Negative offsets render as `+-N`.
func (g Geometry) String() string {
	return fmt.Sprintf("%dx%d+%d+%d", g.Width, g.Height, g.X, g.Y)
}

// Shift returns g moved by dx, dy.
func (g Geometry) Shift(dx, dy int) Geometry {
	g.X += dx
	g.Y += dy
	return g
}
