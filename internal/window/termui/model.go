package termui

import (
	"log/slog"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/starford/stickies/internal/models"
	"github.com/starford/stickies/internal/window"
)

var (
	tabStyle       = lipgloss.NewStyle().Padding(0, 1)
	activeTabStyle = tabStyle.Bold(true).Underline(true)
	statusStyle    = lipgloss.NewStyle().Faint(true)
	frameStyle     = lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder())
)

// model is the bubbletea model. It is only touched from Update, View, and
// funcs run by Update.
type model struct {
	tk *Toolkit

	windows []*noteWindow
	active  int

	hubVisible bool
	summary    []string

	width, height int
	quitting      bool
}

func newModel(tk *Toolkit) *model {
	return &model{tk: tk, width: 80, height: 24}
}

func (m *model) Init() tea.Cmd {
	return m.tk.waitForPost
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case drainMsg:
		for _, fn := range m.tk.takePending() {
			fn()
		}
		cmds = append(cmds, m.tk.waitForPost)

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()

	case tea.KeyMsg:
		cmds = append(cmds, m.handleKey(msg))
	}

	if m.quitting {
		return m, tea.Quit
	}
	return m, tea.Batch(cmds...)
}

func (m *model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "ctrl+c":
		for _, w := range slices.Clone(m.windows) {
			w.requestClose()
		}
		return nil
	case "ctrl+w":
		if w := m.current(); w != nil {
			w.requestClose()
		}
		return nil
	case "tab":
		m.focus(m.active + 1)
		return nil
	case "shift+tab":
		m.focus(m.active - 1)
		return nil
	}

	w := m.current()
	if w == nil {
		return nil
	}
	before := w.area.Value()
	var cmd tea.Cmd
	w.area, cmd = w.area.Update(msg)
	if w.area.Value() != before {
		w.edited = true
	}
	if w.onEdit != nil {
		w.onEdit()
	}
	return cmd
}

func (m *model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	tabs := make([]string, 0, len(m.windows))
	for i, w := range m.windows {
		st := tabStyle
		if i == m.active {
			st = activeTabStyle
		}
		tabs = append(tabs, st.Background(lipgloss.Color(w.style.Bar)).Render(w.id))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, tabs...))
	b.WriteString("\n")

	if w := m.current(); w != nil {
		body := w.area.View()
		if !w.borderless {
			body = frameStyle.BorderForeground(lipgloss.Color(w.style.Bar)).Render(body)
		}
		b.WriteString(body)
		b.WriteString("\n")
	}

	if m.hubVisible {
		status := "no notes open"
		if len(m.summary) > 0 {
			status = "open: " + strings.Join(m.summary, ", ")
		}
		b.WriteString(statusStyle.Render(status + "  (tab switch, ctrl+w close, ctrl+c close all)"))
	}
	return b.String()
}

func (m *model) find(id string) int {
	return slices.IndexFunc(m.windows, func(w *noteWindow) bool { return w.id == id })
}

func (m *model) current() *noteWindow {
	if m.active < 0 || m.active >= len(m.windows) {
		return nil
	}
	return m.windows[m.active]
}

func (m *model) add(w *noteWindow) {
	m.windows = append(m.windows, w)
	w.resize(m.width, m.height)
	if len(m.windows) == 1 {
		m.focus(0)
	}
}

func (m *model) remove(w *noteWindow) {
	i := slices.Index(m.windows, w)
	if i < 0 {
		return
	}
	m.windows = slices.Delete(m.windows, i, i+1)
	if i < m.active || m.active >= len(m.windows) {
		m.active--
	}
	m.focus(m.active)
}

// focus activates the window at i, wrapping around.
func (m *model) focus(i int) {
	n := len(m.windows)
	if n == 0 {
		m.active = 0
		return
	}
	i = ((i % n) + n) % n
	for j, w := range m.windows {
		if j == i {
			w.area.Focus()
		} else {
			w.area.Blur()
		}
	}
	m.active = i
}

func (m *model) resize() {
	for _, w := range m.windows {
		w.resize(m.width, m.height)
	}
}

// noteWindow is one tab.
type noteWindow struct {
	m  *model
	id string

	area       textarea.Model
	geometry   models.Geometry
	style      window.Style
	borderless bool

	// loaded is the text last given to SetText. Until the user changes the
	// buffer it is reported as is, since the textarea rewrites control
	// characters.
	loaded string
	edited bool
	crlf   bool
	tabs   bool

	onEdit     func()
	onClose    func()
}

func newNoteWindow(m *model, id string) *noteWindow {
	ta := textarea.New()
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.MaxHeight = 0
	ta.Prompt = ""
	ta.Blur()
	return &noteWindow{m: m, id: id, area: ta}
}

func (w *noteWindow) requestClose() {
	if w.onClose != nil {
		w.onClose()
	}
}

// resize fits the textarea under the tab bar and above the status line.
func (w *noteWindow) resize(width, height int) {
	frame := 0
	if !w.borderless {
		frame = 2
	}
	w.area.SetWidth(max(width-frame, 10))
	w.area.SetHeight(max(height-2-frame, 3))
}

func (w *noteWindow) SetGeometry(g models.Geometry) { w.geometry = g }

func (w *noteWindow) SetStyle(s window.Style) {
	w.style = s
	text := lipgloss.NewStyle().
		Background(lipgloss.Color(s.Background)).
		Foreground(lipgloss.Color(s.Foreground)).
		Bold(s.Bold)
	st := textarea.Style{
		Base:        lipgloss.NewStyle().Background(lipgloss.Color(s.Background)),
		CursorLine:  text,
		EndOfBuffer: text,
		Placeholder: text.Faint(true),
		Prompt:      text,
		Text:        text,
	}
	w.area.FocusedStyle = st
	w.area.BlurredStyle = st
}

func (w *noteWindow) SetBorderless(b bool) {
	w.borderless = b
	w.resize(w.m.width, w.m.height)
}

// tabMark stands in for a tab inside the textarea, which would otherwise
// expand it to spaces.
const tabMark = "\u2409"

// SetText loads text into the textarea. CRLF line endings and tabs are
// carried through edits; text that mixes line endings or already contains
// tabMark comes back normalized once edited.
func (w *noteWindow) SetText(text string) {
	w.loaded, w.edited = text, false

	n := strings.Count(text, "\n")
	crlfs := strings.Count(text, "\r\n")
	w.crlf = crlfs > 0 && crlfs == n
	w.tabs = strings.Contains(text, "\t") && !strings.Contains(text, tabMark)

	value := strings.ReplaceAll(text, "\r\n", "\n")
	if w.tabs {
		value = strings.ReplaceAll(value, "\t", tabMark)
	}
	mixed := crlfs > 0 && !w.crlf
	if mixed || strings.ContainsRune(value, '\r') || (strings.Contains(text, "\t") && !w.tabs) {
		w.m.tk.logger.Warn("termui: note text will be normalized on first edit", slog.String("window", w.id))
	}
	w.area.SetValue(value)
}

// Text returns the loaded text verbatim until the buffer changes.
func (w *noteWindow) Text() string {
	if !w.edited {
		return w.loaded
	}
	v := w.area.Value()
	if w.tabs {
		v = strings.ReplaceAll(v, tabMark, "\t")
	}
	if w.crlf {
		v = strings.ReplaceAll(v, "\n", "\r\n")
	}
	return v
}

// Geometry reports the geometry last applied. A terminal tab has no
// position of its own.
func (w *noteWindow) Geometry() models.Geometry { return w.geometry }

func (w *noteWindow) OnEdit(fn func())         { w.onEdit = fn }
func (w *noteWindow) OnCloseRequest(fn func()) { w.onClose = fn }

func (w *noteWindow) Destroy() {
	w.m.remove(w)
	w.m.tk.logger.Debug("termui: window destroyed", slog.String("window", w.id))
}
