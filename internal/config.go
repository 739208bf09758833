package internal

import (
	"fmt"
	"log/slog"
	"net"
	"path/filepath"
	"strconv"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/stickies/internal/hub"
	"github.com/starford/stickies/internal/models"
)

// UI backends.
const (
	UIWeb  = "web"
	UITerm = "term"
)

// Config represents the application configuration.
type Config struct {
	App    ApplicationConfig `yaml:"app"`
	Notes  NotesConfig       `yaml:"notes"`
	SQLite SQLiteConfig      `yaml:"sqlite"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Notes.Validate(); err != nil {
		return err
	}
	return c.SQLite.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	// LogFile receives the log when UI is "term". Empty means
	// <notes root>/.stickies.log.
	LogFile string     `yaml:"log_file"`
	UI      string     `yaml:"ui"`
	HTTP    HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.UI, validation.Required, validation.In(UIWeb, UITerm)),
	); err != nil {
		return err
	}
	if c.UI == UIWeb {
		return c.HTTP.Validate()
	}
	return nil
}

// HTTPConfig holds the webui listener configuration.
type HTTPConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// NotesConfig locates the notes and controls live discovery.
type NotesConfig struct {
	Root      string `yaml:"root"`
	DefaultID string `yaml:"default_id"`
	// Watch opens note directories created while the application runs.
	Watch bool `yaml:"watch"`
}

// Validate validates the notes configuration.
func (c *NotesConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Root, validation.Required),
		validation.Field(&c.DefaultID, validation.Required, validation.By(func(any) error {
			return models.ValidateID(c.DefaultID)
		})),
	)
}

// SQLiteConfig holds the search index configuration. An empty Path
// disables the index.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.When(c.Path != "", validation.Length(1, 4096))),
	)
}

// Enabled reports whether the index is configured.
func (c *SQLiteConfig) Enabled() bool {
	return c.Path != ""
}

// LogFilePath returns the terminal-mode log file.
func (c *Config) LogFilePath() string {
	if c.App.LogFile != "" {
		return c.App.LogFile
	}
	return filepath.Join(c.Notes.Root, ".stickies.log")
}

// String summarizes the configuration for logs.
func (c *Config) String() string {
	return fmt.Sprintf("ui=%s root=%s index=%q", c.App.UI, c.Notes.Root, c.SQLite.Path)
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			UI:       UIWeb,
			HTTP: HTTPConfig{
				Host: "127.0.0.1",
				Port: 8765,
			},
		},
		Notes: NotesConfig{
			Root:      "./notes",
			DefaultID: hub.DefaultNoteID,
			Watch:     true,
		},
		SQLite: SQLiteConfig{
			Path: "",
		},
	}
}
