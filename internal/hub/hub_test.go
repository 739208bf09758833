package hub

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/starford/stickies/internal/apperr"
	"github.com/starford/stickies/internal/repository"
	"github.com/starford/stickies/internal/storage"
	"github.com/starford/stickies/internal/window/windowtest"
)

func testHub(t *testing.T, existing ...string) (*Hub, *windowtest.Toolkit, string) {
	t.Helper()
	root := t.TempDir()
	store, err := storage.NewFS(root)
	if err != nil {
		t.Fatal(err)
	}
	repo := repository.New(store)
	for _, id := range existing {
		if _, err := repo.EnsureBootstrapped(id); err != nil {
			t.Fatal(err)
		}
	}
	tk := windowtest.New()
	return New(tk, repo), tk, root
}

func TestStartEmptyRootOpensDefault(t *testing.T) {
	h, tk, root := testHub(t)
	if err := h.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if got := h.OpenIDs(); !reflect.DeepEqual(got, []string{DefaultNoteID}) {
		t.Fatalf("open = %v", got)
	}
	if _, err := os.Stat(filepath.Join(root, DefaultNoteID, "current.txt")); err != nil {
		t.Errorf("default note not bootstrapped: %v", err)
	}

	tk.Window(DefaultNoteID).RequestClose()
	if tk.QuitCount != 1 {
		t.Errorf("quit count = %d, want 1", tk.QuitCount)
	}
	if !tk.Hub.Destroyed {
		t.Error("hub view not destroyed")
	}
}

func TestStartWithDefaultIDOption(t *testing.T) {
	root := t.TempDir()
	store, _ := storage.NewFS(root)
	tk := windowtest.New()
	h := New(tk, repository.New(store), WithDefaultID("inbox"))
	if err := h.Start(); err != nil {
		t.Fatal(err)
	}
	if got := h.OpenIDs(); !reflect.DeepEqual(got, []string{"inbox"}) {
		t.Errorf("open = %v", got)
	}
}

func TestStartOpensAllExisting(t *testing.T) {
	h, tk, _ := testHub(t, "c", "a", "b")
	if err := h.Start(); err != nil {
		t.Fatal(err)
	}
	if got := h.OpenIDs(); !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Fatalf("open = %v", got)
	}
	if len(tk.Windows) != 3 {
		t.Errorf("windows = %d", len(tk.Windows))
	}
	if got := tk.Hub.Last(); !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Errorf("summary = %v", got)
	}
}

func TestQuitOnlyAfterLastClose(t *testing.T) {
	for _, order := range [][]string{{"a", "b", "c"}, {"c", "a", "b"}, {"b", "c", "a"}} {
		h, tk, _ := testHub(t, "a", "b", "c")
		if err := h.Start(); err != nil {
			t.Fatal(err)
		}
		for i, id := range order {
			tk.Window(id).RequestClose()
			wantQuit := 0
			if i == len(order)-1 {
				wantQuit = 1
			}
			if tk.QuitCount != wantQuit {
				t.Fatalf("order %v: after closing %s quit count = %d, want %d", order, id, tk.QuitCount, wantQuit)
			}
		}
		if len(h.OpenIDs()) != 0 || !h.Terminated() {
			t.Errorf("order %v: open = %v terminated = %v", order, h.OpenIDs(), h.Terminated())
		}
	}
}

func TestSummaryRefreshedOnRemove(t *testing.T) {
	h, tk, _ := testHub(t, "a", "b")
	_ = h.Start()
	tk.Window("a").RequestClose()
	if got := tk.Hub.Last(); !reflect.DeepEqual(got, []string{"b"}) {
		t.Errorf("summary = %v", got)
	}
	tk.Window("b").RequestClose()
	if got := tk.Hub.Last(); len(got) != 0 {
		t.Errorf("final summary = %v", got)
	}
}

func TestOpenRejectsDuplicate(t *testing.T) {
	h, tk, _ := testHub(t, "a")
	_ = h.Start()
	if err := h.Open("a"); !errors.Is(err, apperr.ErrNoteAlreadyOpen) {
		t.Errorf("err = %v, want ErrNoteAlreadyOpen", err)
	}
	if len(tk.Windows) != 1 {
		t.Errorf("windows = %d, want 1", len(tk.Windows))
	}
}

func TestOpenAddsNoteLive(t *testing.T) {
	h, tk, root := testHub(t, "a")
	_ = h.Start()
	if err := h.Open("new"); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if got := h.OpenIDs(); !reflect.DeepEqual(got, []string{"a", "new"}) {
		t.Errorf("open = %v", got)
	}
	if _, err := os.Stat(filepath.Join(root, "new", "style.txt")); err != nil {
		t.Errorf("new note not bootstrapped: %v", err)
	}
	if tk.Window("new").Text() != "new" {
		t.Errorf("placeholder = %q", tk.Window("new").Text())
	}
}

func TestBrokenNoteDoesNotBlockOthers(t *testing.T) {
	h, tk, root := testHub(t, "good", "bad")
	_ = os.WriteFile(filepath.Join(root, "bad", "geometry.txt"), []byte("garbage"), 0o644)

	if err := h.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if got := h.OpenIDs(); !reflect.DeepEqual(got, []string{"good"}) {
		t.Errorf("open = %v", got)
	}
	for _, w := range tk.Windows {
		if w.Title == "bad" && !w.Destroyed {
			t.Error("window of the failed note left open")
		}
	}
	if tk.QuitCount != 0 {
		t.Error("hub quit while a note is open")
	}
}

func TestStartAllFailTerminates(t *testing.T) {
	h, tk, _ := testHub(t, "a")
	tk.FailCreate = map[string]bool{"a": true}

	if err := h.Start(); !errors.Is(err, apperr.ErrNoNotesOpened) {
		t.Fatalf("err = %v, want ErrNoNotesOpened", err)
	}
	if tk.QuitCount != 1 {
		t.Errorf("quit count = %d", tk.QuitCount)
	}
	if err := h.Open("later"); err == nil {
		t.Error("open after termination should fail")
	}
}

func TestCloseAllSavesAndQuitsOnce(t *testing.T) {
	h, tk, root := testHub(t, "a", "b")
	_ = h.Start()
	tk.Window("a").SetText("alpha")
	tk.Window("b").SetText("beta")

	h.CloseAll()

	if tk.QuitCount != 1 {
		t.Errorf("quit count = %d", tk.QuitCount)
	}
	for id, want := range map[string]string{"a": "alpha", "b": "beta"} {
		data, err := os.ReadFile(filepath.Join(root, id, "current.txt"))
		if err != nil || string(data) != want {
			t.Errorf("%s current = %q, %v", id, data, err)
		}
	}
}

func TestOpenInvalidIDCreatesNoWindow(t *testing.T) {
	h, tk, _ := testHub(t, "a")
	_ = h.Start()
	if err := h.Open("../escape"); !errors.Is(err, apperr.ErrInvalidNoteID) {
		t.Errorf("err = %v, want ErrInvalidNoteID", err)
	}
	if len(tk.Windows) != 1 {
		t.Errorf("windows = %d, want 1", len(tk.Windows))
	}
}
