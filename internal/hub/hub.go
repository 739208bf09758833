// Package hub discovers notes on disk, opens a window per note, and ends the
// application once the last note window has closed.
package hub

import (
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/starford/stickies/internal/apperr"
	"github.com/starford/stickies/internal/controller"
	"github.com/starford/stickies/internal/repository"
	"github.com/starford/stickies/internal/window"
)

// DefaultNoteID is opened when the notes root holds no notes.
const DefaultNoteID = "1"

// Hub tracks the set of open notes. Like the controllers it owns, it runs
// on the toolkit's UI goroutine only.
type Hub struct {
	toolkit   window.Toolkit
	repo      *repository.Repository
	defaultID string
	logger    *slog.Logger
	now       func() time.Time

	view       window.HubView
	open       []*controller.Controller
	terminated bool
}

// Option configures a Hub.
type Option func(*Hub)

// WithDefaultID sets the note opened when the root is empty.
func WithDefaultID(id string) Option {
	return func(h *Hub) { h.defaultID = id }
}

// WithLogger sets the hub logger. Controllers inherit it.
func WithLogger(l *slog.Logger) Option {
	return func(h *Hub) { h.logger = l }
}

// WithClock sets the clock handed to controllers.
func WithClock(now func() time.Time) Option {
	return func(h *Hub) { h.now = now }
}

// New creates a Hub. Nothing is opened until Start.
func New(tk window.Toolkit, repo *repository.Repository, opts ...Option) *Hub {
	h := &Hub{
		toolkit:   tk,
		repo:      repo,
		defaultID: DefaultNoteID,
		logger:    slog.Default(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Start opens every note found under the root, or the default note when
// there are none. A note that fails to open is logged and skipped. When no
// note could be opened the hub terminates and returns ErrNoNotesOpened.
func (h *Hub) Start() error {
	h.view = h.toolkit.CreateHubView()

	ids, err := h.repo.Discover()
	if err != nil {
		h.terminate()
		return fmt.Errorf("hub: %w", err)
	}
	if len(ids) == 0 {
		ids = []string{h.defaultID}
	}

	for _, id := range ids {
		if err := h.Open(id); err != nil {
			h.logger.Error("hub: note failed to open", slog.String("note", id), slog.String("error", err.Error()))
		}
	}

	h.logger.Info("hub: started", slog.Int("discovered", len(ids)), slog.Int("open", len(h.open)))
	if len(h.open) == 0 {
		h.terminate()
		return apperr.ErrNoNotesOpened
	}
	return nil
}

// Open opens note id in a new window. An id that is already open is
// rejected with ErrNoteAlreadyOpen.
func (h *Hub) Open(id string) error {
	if h.terminated {
		return fmt.Errorf("hub: open %q: hub terminated", id)
	}
	if h.find(id) >= 0 {
		return fmt.Errorf("hub: %w: %q", apperr.ErrNoteAlreadyOpen, id)
	}
	if _, err := h.repo.Resolve(id); err != nil {
		return fmt.Errorf("hub: %w", err)
	}

	win, err := h.toolkit.CreateWindow(id)
	if err != nil {
		return fmt.Errorf("hub: create window %q: %w", id, err)
	}
	c := controller.New(id, h.repo, win, h,
		controller.WithLogger(h.logger),
		controller.WithClock(h.now))
	if err := c.Open(); err != nil {
		win.Destroy()
		return err
	}

	h.open = append(h.open, c)
	h.refresh()
	return nil
}

// RemoveNote drops a closed controller from the open set and terminates the
// hub when the set becomes empty.
func (h *Hub) RemoveNote(c *controller.Controller) {
	i := slices.Index(h.open, c)
	if i < 0 {
		return
	}
	h.open = slices.Delete(h.open, i, i+1)
	h.refresh()

	if len(h.open) == 0 {
		h.terminate()
	}
}

// CloseAll asks every open note to close. Each one saves on its way out; the
// last close terminates the hub.
func (h *Hub) CloseAll() {
	for _, c := range slices.Clone(h.open) {
		c.Close()
	}
}

// OpenIDs returns the open note identifiers in opening order.
func (h *Hub) OpenIDs() []string {
	ids := make([]string, len(h.open))
	for i, c := range h.open {
		ids[i] = c.ID()
	}
	return ids
}

// Terminated reports whether the hub has shut the toolkit down.
func (h *Hub) Terminated() bool { return h.terminated }

func (h *Hub) find(id string) int {
	return slices.IndexFunc(h.open, func(c *controller.Controller) bool { return c.ID() == id })
}

func (h *Hub) refresh() {
	if h.view != nil {
		h.view.SetSummary(h.OpenIDs())
	}
}

func (h *Hub) terminate() {
	if h.terminated {
		return
	}
	h.terminated = true
	if h.view != nil {
		h.view.Destroy()
	}
	h.logger.Info("hub: no open notes, shutting down")
	h.toolkit.Quit()
}
