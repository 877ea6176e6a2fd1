package inbox

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Iron-Ham/vidparse/internal/taskqueue"
)

// recorder is a Submitter that keeps every submitted link.
type recorder struct {
	mu    sync.Mutex
	links []string
}

func (r *recorder) Submit(inputs ...string) (int, error) {
	store := taskqueue.NewStore()
	n, err := store.Append(inputs...)
	if err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, task := range store.Tasks() {
		r.links = append(r.links, task.URL)
	}
	return n, nil
}

func (r *recorder) got() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.links...)
}

func waitForLinks(t *testing.T, r *recorder, want ...string) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if strings.Join(r.got(), ",") == strings.Join(want, ",") {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("links = %v, want %v", r.got(), want)
}

func appendFile(t *testing.T, path, text string) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	if _, err := f.WriteString(text); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
}

func startWatcher(t *testing.T, path string, r *recorder) *Watcher {
	t.Helper()
	w, err := New(path, r, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := w.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	t.Cleanup(w.Stop)
	return w
}

func TestWatcher_SubmitsExistingLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "links.txt")
	appendFile(t, path, "https://a.test\n\n  https://b.test  \n")

	r := &recorder{}
	w := startWatcher(t, path, r)

	// The initial read happens synchronously in Start
	if got := r.got(); len(got) != 2 || got[0] != "https://a.test" || got[1] != "https://b.test" {
		t.Errorf("links after Start = %v", got)
	}
	if w.Offset() == 0 {
		t.Error("Offset() should advance past the existing lines")
	}
}

func TestWatcher_TailsAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "links.txt")
	appendFile(t, path, "https://a.test\n")

	r := &recorder{}
	var mu sync.Mutex
	var added []int
	w, err := New(path, r, nil)
	if err != nil {
		t.Fatal(err)
	}
	w.SetSubmitCallback(func(n int) {
		mu.Lock()
		defer mu.Unlock()
		added = append(added, n)
	})
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	appendFile(t, path, "https://b.test\nhttps://c.test\n")
	waitForLinks(t, r, "https://a.test", "https://b.test", "https://c.test")

	mu.Lock()
	defer mu.Unlock()
	if len(added) != 2 || added[0] != 1 || added[1] != 2 {
		t.Errorf("callback counts = %v, want [1 2]", added)
	}
}

func TestWatcher_WaitsForCompleteLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "links.txt")
	r := &recorder{}
	startWatcher(t, path, r)

	appendFile(t, path, "https://a.te")
	time.Sleep(200 * time.Millisecond)
	if got := r.got(); len(got) != 0 {
		t.Fatalf("unterminated line submitted early: %v", got)
	}

	appendFile(t, path, "st\n")
	waitForLinks(t, r, "https://a.test")
}

func TestWatcher_IgnoresBlankAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "links.txt")
	appendFile(t, path, "https://a.test\n")
	r := &recorder{}
	w := startWatcher(t, path, r)

	appendFile(t, path, "\n   \n")
	appendFile(t, path, "https://b.test\n")
	waitForLinks(t, r, "https://a.test", "https://b.test")

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if w.Offset() != info.Size() {
		t.Errorf("Offset() = %d, want %d", w.Offset(), info.Size())
	}
}

func TestWatcher_RestartsAfterTruncation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "links.txt")
	appendFile(t, path, "https://a.test/long-link-one\nhttps://b.test/long-link-two\n")
	r := &recorder{}
	startWatcher(t, path, r)

	if err := os.WriteFile(path, []byte("https://c.test\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	waitForLinks(t, r, "https://a.test/long-link-one", "https://b.test/long-link-two", "https://c.test")
}

func TestWatcher_RestartsAfterRewrite(t *testing.T) {
	tests := []struct {
		name    string
		rewrite func(t *testing.T, path, content string)
	}{
		{
			name: "in place, longer",
			rewrite: func(t *testing.T, path, content string) {
				if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
					t.Fatal(err)
				}
			},
		},
		{
			name: "replaced by rename",
			rewrite: func(t *testing.T, path, content string) {
				tmp := path + ".tmp"
				if err := os.WriteFile(tmp, []byte(content), 0o644); err != nil {
					t.Fatal(err)
				}
				if err := os.Rename(tmp, path); err != nil {
					t.Fatal(err)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "links.txt")
			appendFile(t, path, "https://a.test\nhttps://b.test\n")
			r := &recorder{}
			startWatcher(t, path, r)
			waitForLinks(t, r, "https://a.test", "https://b.test")

			tt.rewrite(t, path, "https://c.test\nhttps://d.test\nhttps://e.test\n")
			waitForLinks(t, r, "https://a.test", "https://b.test", "https://c.test", "https://d.test", "https://e.test")
		})
	}
}

func TestWatcher_FileCreatedLater(t *testing.T) {
	path := filepath.Join(t.TempDir(), "links.txt")
	r := &recorder{}
	startWatcher(t, path, r)

	appendFile(t, path, "https://a.test\n")
	waitForLinks(t, r, "https://a.test")
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "links.txt")
	r := &recorder{}
	startWatcher(t, path, r)

	appendFile(t, filepath.Join(dir, "other.txt"), "https://x.test\n")
	time.Sleep(200 * time.Millisecond)
	if got := r.got(); len(got) != 0 {
		t.Errorf("links from another file were submitted: %v", got)
	}
}

func TestWatcher_MissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "links.txt")
	w, err := New(path, &recorder{}, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer w.Stop()

	if err := w.Start(); err == nil {
		t.Error("Start() should fail when the directory does not exist")
	}
}

func TestWatcher_StopIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "links.txt")
	w := startWatcher(t, path, &recorder{})

	w.Stop()
	w.Stop()
}
