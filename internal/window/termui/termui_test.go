package termui

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/starford/stickies/internal/controller"
	"github.com/starford/stickies/internal/models"
	"github.com/starford/stickies/internal/testutil"
	"github.com/starford/stickies/internal/window"
)

func testToolkit() *Toolkit {
	return New(testutil.Logger())
}

func mustCreate(t *testing.T, tk *Toolkit, id string) window.Handle {
	t.Helper()
	h, err := tk.CreateWindow(id)
	if err != nil {
		t.Fatalf("CreateWindow(%q): %v", id, err)
	}
	return h
}

func typeRunes(tk *Toolkit, s string) {
	for _, r := range s {
		tk.m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func TestPostRunsOnDrain(t *testing.T) {
	tk := testToolkit()
	var order []int
	tk.Post(func() { order = append(order, 1) })
	tk.Post(func() { order = append(order, 2) })

	if msg := tk.waitForPost(); msg != (drainMsg{}) {
		t.Fatalf("waitForPost = %#v", msg)
	}
	_, cmd := tk.m.Update(drainMsg{})
	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Fatalf("order = %v", order)
	}
	if cmd == nil {
		t.Error("drain should re-arm the post listener")
	}
}

func TestCreateWindowDuplicate(t *testing.T) {
	tk := testToolkit()
	mustCreate(t, tk, "a")
	if _, err := tk.CreateWindow("a"); err == nil {
		t.Fatal("expected duplicate error")
	}
}

func TestTypingFiresEdit(t *testing.T) {
	tk := testToolkit()
	h := mustCreate(t, tk, "a")
	h.SetText("")
	edits := 0
	h.OnEdit(func() { edits++ })

	typeRunes(tk, "hi")
	if got := h.Text(); got != "hi" {
		t.Errorf("text = %q", got)
	}
	if edits != 2 {
		t.Errorf("edits = %d, want 2", edits)
	}
}

func TestSetTextVerbatim(t *testing.T) {
	tk := testToolkit()
	h := mustCreate(t, tk, "a")
	h.SetText("line one\nline two")
	if got := h.Text(); got != "line one\nline two" {
		t.Errorf("text = %q", got)
	}
}

func TestSetTextKeepsLineEndingsAndTabs(t *testing.T) {
	cases := []struct {
		name, in, typed, want string
	}{
		{"crlf", "x\r\ny", "!", "x\r\ny!"},
		{"tab", "a\tb", "!", "a\tb!"},
		{"crlf and tab", "milk\r\neggs\tx2\r\n", "!", "milk\r\neggs\tx2\r\n!"},
		{"plain", "one\ntwo\n", "3", "one\ntwo\n3"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tk := testToolkit()
			h := mustCreate(t, tk, "a")
			h.SetText(tc.in)
			if got := h.Text(); got != tc.in {
				t.Errorf("before edit text = %q, want %q", got, tc.in)
			}
			typeRunes(tk, tc.typed)
			if got := h.Text(); got != tc.want {
				t.Errorf("after edit text = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestNavigationKeyKeepsLoadedText(t *testing.T) {
	tk := testToolkit()
	h := mustCreate(t, tk, "a")
	h.SetText("x\ry")
	tk.m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	if got := h.Text(); got != "x\ry" {
		t.Errorf("text = %q", got)
	}
}

// A note saved by another editor survives a keystroke in the terminal.
func TestControllerSavesVerbatimText(t *testing.T) {
	root, repo := testutil.TestRepo(t, time.Time{})
	paths, err := repo.EnsureBootstrapped("n")
	if err != nil {
		t.Fatal(err)
	}
	if err := repo.Store().Write(paths.Current, []byte("milk\r\neggs\tx2\r\n")); err != nil {
		t.Fatal(err)
	}

	tk := testToolkit()
	h := mustCreate(t, tk, "n")
	if err := controller.New("n", repo, h, nil).Open(); err != nil {
		t.Fatalf("Open: %v", err)
	}
	typeRunes(tk, "!")

	got, err := os.ReadFile(filepath.Join(root, "n", "current.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "milk\r\neggs\tx2\r\n!" {
		t.Errorf("current.txt = %q", got)
	}
}

func TestGeometryStableAcrossSessions(t *testing.T) {
	root, repo := testutil.TestRepo(t, time.Time{})
	paths, err := repo.EnsureBootstrapped("n")
	if err != nil {
		t.Fatal(err)
	}
	style := "bgColor: #FFF7D1\nbarColor: #FFE66E\nfontColor: #202020\nfontFamily: Consolas\nfontSize: 11\nfontWeight: normal\nxAdjust: -8\nyAdjust: -31\nORR: false\n"
	if err := repo.Store().Write(paths.Style, []byte(style)); err != nil {
		t.Fatal(err)
	}

	tk := testToolkit()
	for session := range 2 {
		h := mustCreate(t, tk, "n")
		c := controller.New("n", repo, h, nil)
		if err := c.Open(); err != nil {
			t.Fatalf("Open: %v", err)
		}
		typeRunes(tk, "abc")
		c.Close()

		got, err := os.ReadFile(filepath.Join(root, "n", "geometry.txt"))
		if err != nil {
			t.Fatal(err)
		}
		if string(got) != "300x200+100+100" {
			t.Fatalf("session %d geometry = %q", session+1, got)
		}
	}
}

func TestTabSwitchesActiveWindow(t *testing.T) {
	tk := testToolkit()
	a := mustCreate(t, tk, "a")
	b := mustCreate(t, tk, "b")

	tk.m.Update(tea.KeyMsg{Type: tea.KeyTab})
	typeRunes(tk, "x")
	if a.Text() != "" || b.Text() != "x" {
		t.Errorf("a=%q b=%q", a.Text(), b.Text())
	}

	tk.m.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	typeRunes(tk, "y")
	if a.Text() != "y" {
		t.Errorf("a=%q", a.Text())
	}
}

func TestCloseKeys(t *testing.T) {
	tk := testToolkit()
	a := mustCreate(t, tk, "a")
	b := mustCreate(t, tk, "b")
	var closed []string
	a.OnCloseRequest(func() { closed = append(closed, "a"); a.Destroy() })
	b.OnCloseRequest(func() { closed = append(closed, "b"); b.Destroy() })

	tk.m.Update(tea.KeyMsg{Type: tea.KeyCtrlW})
	if len(closed) != 1 || closed[0] != "a" {
		t.Fatalf("closed = %v", closed)
	}
	if tk.m.current() == nil || tk.m.current().id != "b" {
		t.Fatal("b should be active after a closed")
	}

	tk.m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if len(closed) != 2 || len(tk.m.windows) != 0 {
		t.Errorf("closed = %v, windows left = %d", closed, len(tk.m.windows))
	}
}

func TestQuitReturnsTeaQuit(t *testing.T) {
	tk := testToolkit()
	tk.Post(tk.Quit)
	_, cmd := tk.m.Update(drainMsg{})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("command is not tea.Quit")
	}
}

func TestViewShowsTabsAndSummary(t *testing.T) {
	tk := testToolkit()
	h := mustCreate(t, tk, "groceries")
	h.SetStyle(window.Style{Background: "#FFF7D1", Bar: "#FFE66E", Foreground: "#202020"})
	h.SetGeometry(models.Geometry{Width: 300, Height: 200, X: 100, Y: 100})
	h.SetText("milk")
	view := tk.CreateHubView()
	view.SetSummary([]string{"groceries"})

	out := tk.m.View()
	for _, want := range []string{"groceries", "milk", "open: groceries"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q:\n%s", want, out)
		}
	}
	if g := h.Geometry(); g.String() != "300x200+100+100" {
		t.Errorf("geometry = %s", g)
	}

	view.Destroy()
	if strings.Contains(tk.m.View(), "open:") {
		t.Error("status line should be gone after hub destroyed")
	}
}
