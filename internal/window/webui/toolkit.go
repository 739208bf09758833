// Package webui implements window.Toolkit with browser popups served over a
// local HTTP server. Keystrokes and close requests arrive as HTTP calls and
// are replayed on a window.Loop; window lifecycle is pushed back to the
// pages over SSE.
package webui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/starford/stickies/internal/models"
	"github.com/starford/stickies/internal/sse"
	"github.com/starford/stickies/internal/window"
)

// Toolkit is the browser-backed window toolkit.
type Toolkit struct {
	addr   string
	logger *slog.Logger
	loop   *window.Loop
	broker *sse.Broker

	// Loop-owned.
	windows map[string]*noteWindow
	summary []string

	quit     chan struct{}
	quitOnce sync.Once
}

var _ window.Toolkit = (*Toolkit)(nil)

// New creates a toolkit that will listen on addr once Run is called.
func New(addr string, logger *slog.Logger) *Toolkit {
	if logger == nil {
		logger = slog.Default()
	}
	return &Toolkit{
		addr:    addr,
		logger:  logger,
		loop:    window.NewLoop(),
		broker:  sse.NewBroker(),
		windows: make(map[string]*noteWindow),
		quit:    make(chan struct{}),
	}
}

// CreateWindow registers a new note window. Titles are unique among live
// windows.
func (t *Toolkit) CreateWindow(title string) (window.Handle, error) {
	if _, ok := t.windows[title]; ok {
		return nil, fmt.Errorf("webui: window %q already exists", title)
	}
	w := &noteWindow{tk: t, id: title}
	t.windows[title] = w
	t.broker.PublishWindow(sse.TypeWindowOpened, title)
	t.logger.Debug("webui: window created", slog.String("window", title))
	return w, nil
}

// CreateHubView returns the view backing the hub page.
func (t *Toolkit) CreateHubView() window.HubView {
	return &hubView{tk: t}
}

// Post schedules fn on the UI loop.
func (t *Toolkit) Post(fn func()) { t.loop.Post(fn) }

// Quit ends Run.
func (t *Toolkit) Quit() {
	t.quitOnce.Do(func() { close(t.quit) })
}

// Run serves HTTP until Quit is called or ctx is done.
func (t *Toolkit) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              t.addr,
		Handler:           t.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		t.logger.Info("webui: listening", slog.String("address", "http://"+t.addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("webui: HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		select {
		case <-t.quit:
			t.logger.Info("webui: quit requested")
		case <-gCtx.Done():
			t.logger.Info("webui: context cancelled")
		}

		// Closing the broker ends the long-lived SSE responses so Shutdown
		// does not wait on them.
		t.broker.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			t.logger.Error("webui: shutdown error", slog.String("error", err.Error()))
		}
		return nil
	})

	err := g.Wait()
	t.loop.Close()
	return err
}

// noteWindow is the server-side state of one note popup. Every field is
// loop-owned.
type noteWindow struct {
	tk *Toolkit
	id string

	geometry   models.Geometry
	style      window.Style
	borderless bool
	text       string
	onEdit     func()
	onClose    func()
}

func (w *noteWindow) SetGeometry(g models.Geometry) { w.geometry = g }
func (w *noteWindow) SetStyle(s window.Style)       { w.style = s }
func (w *noteWindow) SetBorderless(b bool)          { w.borderless = b }
func (w *noteWindow) SetText(text string)           { w.text = text }
func (w *noteWindow) Text() string                  { return w.text }
func (w *noteWindow) Geometry() models.Geometry     { return w.geometry }
func (w *noteWindow) OnEdit(fn func())              { w.onEdit = fn }
func (w *noteWindow) OnCloseRequest(fn func())      { w.onClose = fn }

func (w *noteWindow) Destroy() {
	if w.tk.windows[w.id] != w {
		return
	}
	delete(w.tk.windows, w.id)
	w.tk.broker.PublishWindow(sse.TypeWindowDestroyed, w.id)
	w.tk.logger.Debug("webui: window destroyed", slog.String("window", w.id))
}

func (w *noteWindow) state() windowState {
	return windowState{
		ID:         w.id,
		Text:       w.text,
		Geometry:   w.geometry,
		Style:      w.style,
		Borderless: w.borderless,
	}
}

type hubView struct {
	tk *Toolkit
}

func (v *hubView) SetSummary(ids []string) {
	v.tk.summary = slices.Clone(ids)
	v.tk.broker.PublishSummary(ids)
}

func (v *hubView) Destroy() {
	v.tk.summary = nil
	v.tk.broker.PublishSummary(nil)
}
