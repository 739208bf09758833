// Package windowtest provides an in-memory window.Toolkit for tests. The
// test goroutine plays the UI goroutine: callbacks run synchronously.
package windowtest

import (
	"context"
	"fmt"

	"github.com/starford/stickies/internal/models"
	"github.com/starford/stickies/internal/window"
)

// Window is a fake note window.
type Window struct {
	Title      string
	Style      window.Style
	Borderless bool
	Destroyed  bool
	// Framed makes the window report a frame-offset origin, like Tk.
	Framed bool

	geometry models.Geometry
	text     string
	onEdit   func()
	onClose  func()
}

func (w *Window) SetGeometry(g models.Geometry) { w.geometry = g }
func (w *Window) SetStyle(s window.Style)       { w.Style = s }
func (w *Window) SetBorderless(b bool)          { w.Borderless = b }
func (w *Window) SetText(text string)           { w.text = text }
func (w *Window) Text() string                  { return w.text }
func (w *Window) Geometry() models.Geometry     { return w.geometry }
func (w *Window) OnEdit(fn func())              { w.onEdit = fn }
func (w *Window) OnCloseRequest(fn func())      { w.onClose = fn }
func (w *Window) Destroy()                      { w.Destroyed = true }
func (w *Window) Decorated() bool               { return w.Framed }

// Type replaces the text as if the user typed it and fires the edit callback.
func (w *Window) Type(text string) {
	w.text = text
	if w.onEdit != nil {
		w.onEdit()
	}
}

// Move changes the live geometry without firing callbacks.
func (w *Window) Move(g models.Geometry) { w.geometry = g }

// RequestClose fires the close-request callback.
func (w *Window) RequestClose() {
	if w.onClose != nil {
		w.onClose()
	}
}

// HubView records the summaries it was given.
type HubView struct {
	Summaries [][]string
	Destroyed bool
}

func (v *HubView) SetSummary(ids []string) {
	v.Summaries = append(v.Summaries, append([]string(nil), ids...))
}

func (v *HubView) Destroy() { v.Destroyed = true }

// Last returns the most recent summary.
func (v *HubView) Last() []string {
	if len(v.Summaries) == 0 {
		return nil
	}
	return v.Summaries[len(v.Summaries)-1]
}

// Toolkit is a fake window.Toolkit.
type Toolkit struct {
	Windows   []*Window
	Hub       *HubView
	QuitCount int
	// FailCreate makes CreateWindow fail for the given titles.
	FailCreate map[string]bool

	posted []func()
	quit   chan struct{}
}

var _ window.Toolkit = (*Toolkit)(nil)

// New creates an empty fake toolkit.
func New() *Toolkit {
	return &Toolkit{quit: make(chan struct{})}
}

func (t *Toolkit) CreateWindow(title string) (window.Handle, error) {
	if t.FailCreate[title] {
		return nil, fmt.Errorf("windowtest: create %q refused", title)
	}
	w := &Window{Title: title}
	t.Windows = append(t.Windows, w)
	return w, nil
}

func (t *Toolkit) CreateHubView() window.HubView {
	t.Hub = &HubView{}
	return t.Hub
}

// Post queues fn until Flush.
func (t *Toolkit) Post(fn func()) { t.posted = append(t.posted, fn) }

// Flush runs every posted func, including ones posted while flushing.
func (t *Toolkit) Flush() {
	for len(t.posted) > 0 {
		fn := t.posted[0]
		t.posted = t.posted[1:]
		fn()
	}
}

// Run flushes posted funcs and then waits for Quit or ctx.
func (t *Toolkit) Run(ctx context.Context) error {
	t.Flush()
	select {
	case <-t.quit:
	case <-ctx.Done():
	}
	return nil
}

func (t *Toolkit) Quit() {
	t.QuitCount++
	if t.QuitCount == 1 {
		close(t.quit)
	}
}

// Window returns the most recently created live window titled title.
func (t *Toolkit) Window(title string) *Window {
	for i := len(t.Windows) - 1; i >= 0; i-- {
		if w := t.Windows[i]; w.Title == title && !w.Destroyed {
			return w
		}
	}
	return nil
}
