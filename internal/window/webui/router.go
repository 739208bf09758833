package webui

import (
	"embed"
	"encoding/json"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/starford/stickies/internal/models"
	"github.com/starford/stickies/internal/window"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// windowState is the JSON view of one note window.
type windowState struct {
	ID         string          `json:"id"`
	Text       string          `json:"text"`
	Geometry   models.Geometry `json:"geometry"`
	Style      window.Style    `json:"style"`
	Borderless bool            `json:"borderless"`
}

// inputRequest carries the live text and geometry reported by a note page.
type inputRequest struct {
	Text     *string          `json:"text"`
	Geometry *models.Geometry `json:"geometry"`
}

// Handler returns the HTTP handler serving pages, the window API and events.
func (t *Toolkit) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health/live", healthOK)
	r.Get("/health/ready", healthOK)

	r.Get("/", t.hubPage)
	r.Get("/notes/{id}", t.notePage)

	r.Route("/api", func(r chi.Router) {
		r.Get("/windows", t.listWindows)
		r.Get("/windows/{id}", t.getWindow)
		r.Post("/windows/{id}/edit", t.editWindow)
		r.Post("/windows/{id}/close", t.closeWindow)
		r.Get("/events", t.broker.ServeHTTP)
	})
	return r
}

func healthOK(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func windowID(r *http.Request) string {
	raw := chi.URLParam(r, "id")
	if id, err := url.PathUnescape(raw); err == nil {
		return id
	}
	return raw
}

// lookup runs fn with the named window on the UI loop. It writes the error
// response itself and reports false when the window is gone or the loop has
// stopped.
func (t *Toolkit) lookup(w http.ResponseWriter, id string, fn func(*noteWindow)) bool {
	found := false
	ran := t.loop.Do(func() {
		nw, ok := t.windows[id]
		if !ok {
			return
		}
		found = true
		fn(nw)
	})
	switch {
	case !ran:
		writeJSON(w, http.StatusServiceUnavailable, errorBody("shutting down"))
		return false
	case !found:
		writeJSON(w, http.StatusNotFound, errorBody("window not found"))
		return false
	}
	return true
}

func (t *Toolkit) listWindows(w http.ResponseWriter, _ *http.Request) {
	open := []string{}
	if !t.loop.Do(func() { open = append(open, t.summary...) }) {
		writeJSON(w, http.StatusServiceUnavailable, errorBody("shutting down"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"open": open})
}

func (t *Toolkit) getWindow(w http.ResponseWriter, r *http.Request) {
	var st windowState
	if t.lookup(w, windowID(r), func(nw *noteWindow) { st = nw.state() }) {
		writeJSON(w, http.StatusOK, st)
	}
}

func decodeInput(w http.ResponseWriter, r *http.Request) (inputRequest, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
	var req inputRequest
	if r.ContentLength == 0 {
		return req, true
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return req, false
	}
	return req, true
}

func (req inputRequest) apply(nw *noteWindow) {
	if req.Text != nil {
		nw.text = *req.Text
	}
	if req.Geometry != nil {
		nw.geometry = *req.Geometry
	}
}

// editWindow handles POST /api/windows/{id}/edit: one keystroke in the page.
func (t *Toolkit) editWindow(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeInput(w, r)
	if !ok {
		return
	}
	handled := t.lookup(w, windowID(r), func(nw *noteWindow) {
		req.apply(nw)
		if nw.onEdit != nil {
			nw.onEdit()
		}
	})
	if handled {
		w.WriteHeader(http.StatusNoContent)
	}
}

// closeWindow handles POST /api/windows/{id}/close: the user closed the page.
func (t *Toolkit) closeWindow(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeInput(w, r)
	if !ok {
		return
	}
	handled := t.lookup(w, windowID(r), func(nw *noteWindow) {
		req.apply(nw)
		if nw.onClose != nil {
			nw.onClose()
		}
	})
	if handled {
		w.WriteHeader(http.StatusAccepted)
	}
}

func (t *Toolkit) hubPage(w http.ResponseWriter, _ *http.Request) {
	var open []string
	t.loop.Do(func() { open = append(open, t.summary...) })
	render(w, "hub.html", map[string]any{"Open": open})
}

func (t *Toolkit) notePage(w http.ResponseWriter, r *http.Request) {
	var st windowState
	if !t.lookup(w, windowID(r), func(nw *noteWindow) { st = nw.state() }) {
		return
	}
	render(w, "note.html", st)
}

func render(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pages.ExecuteTemplate(w, name, data); err != nil {
		slog.Error("webui: render failed", slog.String("page", name), slog.String("error", err.Error()))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", slog.String("error", err.Error()))
	}
}

type errResponse struct {
	Error string `json:"error"`
}

func errorBody(msg string) errResponse {
	return errResponse{Error: msg}
}
