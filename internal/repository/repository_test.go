package repository

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"testing"
	"time"

	"github.com/starford/stickies/internal/apperr"
	"github.com/starford/stickies/internal/settings"
	"github.com/starford/stickies/internal/storage"
)

// wednesday is an ISO weekday 3.
var wednesday = time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)

func testRepo(t *testing.T) (*Repository, string) {
	t.Helper()
	root := t.TempDir()
	store, err := storage.NewFS(root)
	if err != nil {
		t.Fatal(err)
	}
	return New(store, WithClock(func() time.Time { return wednesday })), root
}

func readFile(t *testing.T, root, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
	if err != nil {
		t.Fatalf("read %s: %v", rel, err)
	}
	return string(data)
}

func dirFiles(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}

func TestResolve(t *testing.T) {
	r, _ := testRepo(t)
	p, err := r.Resolve("shopping")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if p.Current != "shopping/current.txt" || p.Geometry != "shopping/geometry.txt" || p.Style != "shopping/style.txt" {
		t.Errorf("unexpected paths: %+v", p)
	}
	if got := p.Backup(7); got != "shopping/backup-7.txt" {
		t.Errorf("Backup(7) = %q", got)
	}
}

func TestResolve_InvalidIDs(t *testing.T) {
	r, _ := testRepo(t)
	for _, id := range []string{"", ".", "..", ".hidden", "a/b", `a\b`, " padded "} {
		if _, err := r.Resolve(id); !errors.Is(err, apperr.ErrInvalidNoteID) {
			t.Errorf("Resolve(%q) err = %v, want ErrInvalidNoteID", id, err)
		}
	}
}

func TestEnsureBootstrapped_FreshNote(t *testing.T) {
	r, root := testRepo(t)
	p, err := r.EnsureBootstrapped("todo")
	if err != nil {
		t.Fatalf("EnsureBootstrapped: %v", err)
	}

	want := []string{"backup-3.txt", "current.txt", "geometry.txt", "style.txt"}
	if got := dirFiles(t, filepath.Join(root, "todo")); !reflect.DeepEqual(got, want) {
		t.Errorf("files = %v, want %v", got, want)
	}
	if got := readFile(t, root, p.Current); got != "todo" {
		t.Errorf("placeholder = %q", got)
	}
	if got := readFile(t, root, p.Geometry); got != "300x200+100+100" {
		t.Errorf("geometry = %q", got)
	}
	if got := readFile(t, root, p.Style); got != string(settings.DefaultStyleFile()) {
		t.Errorf("style = %q", got)
	}
}

func TestEnsureBootstrapped_Idempotent(t *testing.T) {
	r, root := testRepo(t)
	p, err := r.EnsureBootstrapped("todo")
	if err != nil {
		t.Fatal(err)
	}
	_ = os.WriteFile(filepath.Join(root, "todo", "current.txt"), []byte("user text"), 0o644)
	_ = os.WriteFile(filepath.Join(root, "todo", "geometry.txt"), []byte("400x300+10+20"), 0o644)

	before := map[string]string{}
	for _, f := range dirFiles(t, filepath.Join(root, "todo")) {
		before[f] = readFile(t, root, "todo/"+f)
	}

	if _, err := r.EnsureBootstrapped("todo"); err != nil {
		t.Fatalf("second EnsureBootstrapped: %v", err)
	}

	after := map[string]string{}
	for _, f := range dirFiles(t, filepath.Join(root, "todo")) {
		after[f] = readFile(t, root, "todo/"+f)
	}
	if !reflect.DeepEqual(before, after) {
		t.Errorf("bootstrap changed files:\nbefore %v\nafter  %v", before, after)
	}
	if readFile(t, root, p.Current) != "user text" {
		t.Error("current text overwritten")
	}
}

func TestEnsureBootstrapped_ResetsBothConfigs(t *testing.T) {
	r, root := testRepo(t)
	p, _ := r.EnsureBootstrapped("todo")

	custom := "bgColor: #000000\nfontSize: 30\n"
	_ = os.WriteFile(filepath.Join(root, "todo", "style.txt"), []byte(custom), 0o644)
	_ = os.Remove(filepath.Join(root, "todo", "geometry.txt"))

	if _, err := r.EnsureBootstrapped("todo"); err != nil {
		t.Fatal(err)
	}
	if got := readFile(t, root, p.Geometry); got != "300x200+100+100" {
		t.Errorf("geometry = %q", got)
	}
	if got := readFile(t, root, p.Style); got != string(settings.DefaultStyleFile()) {
		t.Errorf("style not reset, got %q", got)
	}
}

func TestEnsureBootstrapped_MissingCurrentOnly(t *testing.T) {
	r, root := testRepo(t)
	p, _ := r.EnsureBootstrapped("todo")
	_ = os.Remove(filepath.Join(root, "todo", "current.txt"))
	_ = os.Remove(filepath.Join(root, "todo", "backup-3.txt"))

	if _, err := r.EnsureBootstrapped("todo"); err != nil {
		t.Fatal(err)
	}
	if got := readFile(t, root, p.Current); got != "todo" {
		t.Errorf("placeholder = %q", got)
	}
	if _, err := os.Stat(filepath.Join(root, "todo", "backup-3.txt")); !os.IsNotExist(err) {
		t.Error("backup should only be seeded when the note directory is new")
	}
}

func TestDiscover(t *testing.T) {
	r, root := testRepo(t)
	ids, err := r.Discover()
	if err != nil || len(ids) != 0 {
		t.Fatalf("empty root Discover = %v, %v", ids, err)
	}

	for _, id := range []string{"work", "home"} {
		if _, err := r.EnsureBootstrapped(id); err != nil {
			t.Fatal(err)
		}
	}
	_ = os.Mkdir(filepath.Join(root, ".cache"), 0o755)
	_ = os.WriteFile(filepath.Join(root, "stray.txt"), []byte("x"), 0o644)

	ids, err = r.Discover()
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"home", "work"}; !reflect.DeepEqual(ids, want) {
		t.Errorf("Discover = %v, want %v", ids, want)
	}
}
