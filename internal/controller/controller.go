// Package controller owns the lifecycle of one open note window.
package controller

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/starford/stickies/internal/models"
	"github.com/starford/stickies/internal/persistence"
	"github.com/starford/stickies/internal/repository"
	"github.com/starford/stickies/internal/settings"
	"github.com/starford/stickies/internal/window"
)

// State is the lifecycle state of a Controller.
type State int

const (
	Uninitialized State = iota
	Open
	Closed
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Open:
		return "open"
	case Closed:
		return "closed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Owner is notified once a controller has closed its window.
type Owner interface {
	RemoveNote(c *Controller)
}

// Controller binds one note to one window. It is not safe for concurrent use;
// every method runs on the toolkit's UI goroutine.
type Controller struct {
	id       string
	paths    models.NotePaths
	settings *settings.Settings

	repo    *repository.Repository
	persist *persistence.Persistence
	win     window.Handle
	owner   Owner

	state  State
	logger *slog.Logger
	now    func() time.Time
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the controller logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// WithClock sets the clock that picks today's backup.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// New creates an Uninitialized controller for note id shown in win.
func New(id string, repo *repository.Repository, win window.Handle, owner Owner, opts ...Option) *Controller {
	c := &Controller{
		id:      id,
		repo:    repo,
		persist: persistence.New(repo.Store()),
		win:     win,
		owner:   owner,
		logger:  slog.Default(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With(slog.String("note", id))
	return c
}

// Open bootstraps the note, loads its settings and text, configures the
// window and subscribes to its edit and close-request events. On failure the
// controller stays Uninitialized and the window is left for the caller.
func (c *Controller) Open() error {
	if c.state != Uninitialized {
		return fmt.Errorf("controller: open %q: already %s", c.id, c.state)
	}

	paths, err := c.repo.EnsureBootstrapped(c.id)
	if err != nil {
		return fmt.Errorf("controller: bootstrap %q: %w", c.id, err)
	}
	s, err := settings.Load(c.repo.Store(), paths)
	if err != nil {
		return fmt.Errorf("controller: settings %q: %w", c.id, err)
	}
	text, err := c.persist.LoadText(paths)
	if err != nil {
		return fmt.Errorf("controller: text %q: %w", c.id, err)
	}
	c.paths = paths
	c.settings = s

	c.win.SetGeometry(s.Geometry)
	c.win.SetStyle(windowStyle(s.Style))
	c.win.SetBorderless(s.Style.Borderless)
	c.win.SetText(text)
	c.win.OnEdit(func() { _ = c.Autosave() })
	c.win.OnCloseRequest(c.Close)

	c.state = Open
	c.logger.Info("note opened", slog.String("geometry", s.Geometry.String()))
	return nil
}

// Autosave writes the live text and geometry. It runs on every edit
// notification; failures are logged and the next edit retries.
func (c *Controller) Autosave() error {
	if c.state != Open {
		return nil
	}
	return c.save()
}

// Close performs a final save, destroys the window and notifies the owner.
// Calling Close on a controller that is not Open does nothing.
func (c *Controller) Close() {
	if c.state != Open {
		return
	}
	_ = c.save()
	c.win.Destroy()
	c.state = Closed
	c.logger.Info("note closed")
	if c.owner != nil {
		c.owner.RemoveNote(c)
	}
}

func (c *Controller) save() error {
	weekday := persistence.ISOWeekday(c.now())
	err := c.persist.Save(c.paths, c.win.Text(), weekday, c.liveGeometry(), c.settings.Style)
	if err != nil {
		c.logger.Error("save failed", slog.String("error", err.Error()))
		return err
	}
	c.logger.Debug("note saved", slog.Int("weekday", weekday))
	return nil
}

// liveGeometry is the window geometry as Save expects it. A handle without
// a frame reports where it was placed, so the offsets Save adds are taken
// out first and the stored position stays put across sessions.
func (c *Controller) liveGeometry() models.Geometry {
	g := c.win.Geometry()
	if d, ok := c.win.(window.Decorated); ok && d.Decorated() {
		return g
	}
	return g.Shift(-c.settings.Style.XAdjust, -c.settings.Style.YAdjust)
}

// ID returns the note identifier.
func (c *Controller) ID() string { return c.id }

// State returns the lifecycle state.
func (c *Controller) State() State { return c.state }

// Paths returns the note files. Zero until Open succeeds.
func (c *Controller) Paths() models.NotePaths { return c.paths }

// Settings returns the loaded settings. Nil until Open succeeds.
func (c *Controller) Settings() *settings.Settings { return c.settings }

func windowStyle(s settings.Style) window.Style {
	return window.Style{
		Background: s.BgColor,
		Bar:        s.BarColor,
		Foreground: s.FontColor,
		FontFamily: s.FontFamily,
		FontSize:   s.FontSize,
		Bold:       s.FontWeight == settings.WeightBold,
	}
}
