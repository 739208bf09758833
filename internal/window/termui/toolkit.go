// Package termui implements window.Toolkit inside a terminal with
// bubbletea. Every note window is a tab holding a textarea; the bubbletea
// Update goroutine is the UI goroutine.
package termui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/starford/stickies/internal/window"
)

// drainMsg tells Update to run everything queued through Post.
type drainMsg struct{}

// Toolkit is the terminal window toolkit.
type Toolkit struct {
	logger *slog.Logger
	opts   []tea.ProgramOption
	m      *model

	mu      sync.Mutex
	pending []func()
	wake    chan struct{}
	done    chan struct{}
	runOnce sync.Once
}

var _ window.Toolkit = (*Toolkit)(nil)

// New creates a terminal toolkit. Extra program options are appended to the
// defaults, which is how tests swap the terminal for buffers.
func New(logger *slog.Logger, opts ...tea.ProgramOption) *Toolkit {
	if logger == nil {
		logger = slog.Default()
	}
	t := &Toolkit{
		logger: logger,
		opts:   opts,
		wake:   make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
	t.m = newModel(t)
	return t
}

// CreateWindow adds a tab for a new note window.
func (t *Toolkit) CreateWindow(title string) (window.Handle, error) {
	if t.m.find(title) >= 0 {
		return nil, fmt.Errorf("termui: window %q already exists", title)
	}
	w := newNoteWindow(t.m, title)
	t.m.add(w)
	t.logger.Debug("termui: window created", slog.String("window", title))
	return w, nil
}

// CreateHubView returns the status line listing open notes.
func (t *Toolkit) CreateHubView() window.HubView {
	t.m.hubVisible = true
	return hubView{m: t.m}
}

// Post queues fn for the Update goroutine. It never blocks and may be
// called before Run.
func (t *Toolkit) Post(fn func()) {
	t.mu.Lock()
	t.pending = append(t.pending, fn)
	t.mu.Unlock()

	select {
	case t.wake <- struct{}{}:
	default:
	}
}

// Quit stops the program once the current Update returns.
func (t *Toolkit) Quit() { t.m.quitting = true }

// Run drives the terminal until Quit or ctx is done.
func (t *Toolkit) Run(ctx context.Context) error {
	defer t.runOnce.Do(func() { close(t.done) })

	opts := append([]tea.ProgramOption{tea.WithContext(ctx), tea.WithAltScreen()}, t.opts...)
	p := tea.NewProgram(t.m, opts...)
	if _, err := p.Run(); err != nil {
		if ctx.Err() != nil && (errors.Is(err, tea.ErrProgramKilled) || errors.Is(err, ctx.Err())) {
			t.logger.Info("termui: context cancelled")
			return nil
		}
		return fmt.Errorf("termui: %w", err)
	}
	return nil
}

// waitForPost blocks until something is posted and hands Update a drainMsg.
func (t *Toolkit) waitForPost() tea.Msg {
	select {
	case <-t.wake:
		return drainMsg{}
	case <-t.done:
		return nil
	}
}

func (t *Toolkit) takePending() []func() {
	t.mu.Lock()
	defer t.mu.Unlock()
	fns := t.pending
	t.pending = nil
	return fns
}

type hubView struct {
	m *model
}

func (v hubView) SetSummary(ids []string) { v.m.summary = slices.Clone(ids) }

func (v hubView) Destroy() {
	v.m.summary = nil
	v.m.hubVisible = false
}
