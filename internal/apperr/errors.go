// Package apperr defines the sentinel errors shared across the application.
package apperr

import "errors"

var (
	// ErrConfigMissing reports that geometry.txt or style.txt is absent at load time.
	ErrConfigMissing = errors.New("config missing")
	// ErrConfigParse reports a malformed style or geometry file.
	ErrConfigParse = errors.New("config parse")
	// ErrIOWrite reports a failed save write.
	ErrIOWrite = errors.New("io write")
	// ErrUnknownSettingKey reports a lookup of a key absent from the loaded settings.
	ErrUnknownSettingKey = errors.New("unknown setting key")

	ErrInvalidNoteID   = errors.New("invalid note id")
	ErrNoteAlreadyOpen = errors.New("note already open")
	ErrNoNotesOpened   = errors.New("no notes could be opened")
	ErrInvalidWeekday  = errors.New("invalid weekday")
	ErrNotFound        = errors.New("not found")
)
