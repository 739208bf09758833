package index

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"testing"
	"time"
)

// eventually polls fn every tick until it returns true or timeout elapses.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) record(kind, id string) {
	r.mu.Lock()
	r.events = append(r.events, kind+":"+id)
	r.mu.Unlock()
}

func (r *recorder) has(event string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Contains(r.events, event)
}

func TestWatcher_NewNoteDirReported(t *testing.T) {
	db := testDB(t)
	repo, _ := testRepo(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rec := &recorder{}
	go Watch(ctx, db, repo, discardLogger(), rec.record)
	time.Sleep(100 * time.Millisecond)

	if _, err := repo.EnsureBootstrapped("fresh"); err != nil {
		t.Fatal(err)
	}

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return rec.has("created:fresh")
	}, "expected created:fresh callback")

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		cs, _ := db.GetChecksum("fresh")
		return cs != ""
	}, "new note not indexed by watcher")
}

func TestWatcher_CurrentTextReindexed(t *testing.T) {
	db := testDB(t)
	repo, root := testRepo(t)
	if _, err := repo.EnsureBootstrapped("a"); err != nil {
		t.Fatal(err)
	}
	if err := Sync(db, repo, discardLogger()); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rec := &recorder{}
	go Watch(ctx, db, repo, discardLogger(), rec.record)
	time.Sleep(100 * time.Millisecond)

	// Writes go through the atomic temp+rename path, like a real save.
	if err := repo.Store().Write("a/current.txt", []byte("zebra crossing")); err != nil {
		t.Fatal(err)
	}
	// Other files in the note dir are ignored.
	_ = os.WriteFile(filepath.Join(root, "a", "geometry.txt"), []byte("1x1+0+0"), 0o644)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		res, _ := db.Search("zebra", 10)
		return len(res) == 1
	}, "changed current.txt not reindexed")
	eventually(t, 2*time.Second, 50*time.Millisecond, func() bool {
		return rec.has("updated:a")
	}, "expected updated:a callback")
}

func TestWatcher_RemovedDirUnindexed(t *testing.T) {
	db := testDB(t)
	repo, root := testRepo(t)
	if _, err := repo.EnsureBootstrapped("del"); err != nil {
		t.Fatal(err)
	}
	if err := Sync(db, repo, discardLogger()); err != nil {
		t.Fatal(err)
	}
	if cs, _ := db.GetChecksum("del"); cs == "" {
		t.Fatal("precondition: note should be indexed")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rec := &recorder{}
	go Watch(ctx, db, repo, discardLogger(), rec.record)
	time.Sleep(100 * time.Millisecond)

	_ = os.RemoveAll(filepath.Join(root, "del"))

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		cs, _ := db.GetChecksum("del")
		return cs == "" && rec.has("deleted:del")
	}, "removed note still in index")
}

func TestWatcher_NilIndexStillReports(t *testing.T) {
	repo, _ := testRepo(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rec := &recorder{}
	go Watch(ctx, nil, repo, discardLogger(), rec.record)
	time.Sleep(100 * time.Millisecond)

	if _, err := repo.EnsureBootstrapped("x"); err != nil {
		t.Fatal(err)
	}
	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return rec.has("created:x")
	}, "expected created:x without an index")
}
