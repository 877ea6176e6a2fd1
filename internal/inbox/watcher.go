// Package inbox feeds links appended to a text file into the task queue.
package inbox

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Iron-Ham/vidparse/internal/errors"
	"github.com/Iron-Ham/vidparse/internal/logging"
	"github.com/fsnotify/fsnotify"
)

// debounceInterval coalesces bursts of write events from a single save.
const debounceInterval = 50 * time.Millisecond

// tailSize is how many consumed bytes are kept to recognise a rewritten file.
const tailSize = 256

// Submitter accepts newline-delimited link text. taskqueue.Scheduler
// satisfies it.
type Submitter interface {
	Submit(inputs ...string) (int, error)
}

// Watcher tails a file and submits each newly completed line. Only text
// up to the last newline is consumed; an unterminated final line is picked up
// once its newline is written.
type Watcher struct {
	path    string
	submit  Submitter
	watcher *fsnotify.Watcher
	logger  *logging.Logger

	// Callback after each batch of submitted links
	onSubmit func(added int)

	mu     sync.Mutex
	offset int64       // bytes consumed so far
	tail   []byte      // last consumed bytes, ending at offset
	file   os.FileInfo // the file offset refers to

	started  atomic.Bool
	stopCh   chan struct{}
	doneCh   chan struct{}
	stopOnce sync.Once
}

// New creates a Watcher for path. The file need not exist yet, but its
// directory must.
func New(path string, submit Submitter, logger *logging.Logger) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.NopLogger()
	}

	return &Watcher{
		path:    abs,
		submit:  submit,
		watcher: watcher,
		logger:  logger.WithComponent("inbox").With("path", abs),
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}, nil
}

// SetSubmitCallback sets a function called with the number of tasks added
// after each successful submission. cb runs on the watch goroutine and must
// not call back into the Watcher.
func (w *Watcher) SetSubmitCallback(cb func(added int)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onSubmit = cb
}

// Start submits the lines already in the file and then watches for appends.
func (w *Watcher) Start() error {
	// Watch the directory so the file can be created, replaced or truncated
	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		return err
	}
	if _, err := w.scan(); err != nil {
		w.logger.Warn("initial read failed", "error", err.Error())
	}
	w.started.Store(true)
	go w.watchLoop()
	return nil
}

// Stop ends the watch loop and releases the fsnotify watcher. Safe to call
// more than once.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		_ = w.watcher.Close()
		if w.started.Load() {
			<-w.doneCh
		}
	})
}

// Offset returns how many bytes of the file have been consumed.
func (w *Watcher) Offset() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.offset
}

// watchLoop processes filesystem events
func (w *Watcher) watchLoop() {
	defer close(w.doneCh)

	// Debounce events - editors and shells often emit several per append
	debounceTimer := time.NewTimer(0)
	<-debounceTimer.C // drain initial timer

	for {
		select {
		case <-w.stopCh:
			debounceTimer.Stop()
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			debounceTimer.Reset(debounceInterval)

		case <-debounceTimer.C:
			if _, err := w.scan(); err != nil {
				w.logger.Warn("read failed", "error", err.Error())
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", "error", err.Error())
		}
	}
}

// scan reads complete lines past the current offset and submits them.
// A file that was replaced, truncated or rewritten is read from the start.
func (w *Watcher) scan() (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	f, err := os.Open(w.path)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return 0, err
	}
	size := info.Size()
	if w.rewritten(f, info) {
		w.logger.Info("file rewritten, reading from start", "old_offset", w.offset, "size", size)
		w.offset = 0
		w.tail = nil
	}
	w.file = info
	if size == w.offset {
		return 0, nil
	}

	if _, err := f.Seek(w.offset, io.SeekStart); err != nil {
		return 0, err
	}
	data, err := io.ReadAll(io.LimitReader(f, size-w.offset))
	if err != nil {
		return 0, err
	}

	end := bytes.LastIndexByte(data, '\n')
	if end < 0 {
		return 0, nil
	}
	chunk := data[:end+1]
	w.offset += int64(len(chunk))
	w.tail = append(w.tail, chunk...)
	if len(w.tail) > tailSize {
		w.tail = append([]byte(nil), w.tail[len(w.tail)-tailSize:]...)
	}

	n, err := w.submit.Submit(string(chunk))
	if errors.Is(err, errors.ErrEmptySubmission) {
		// Only blank lines were appended
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	w.logger.Info("links submitted", "count", n, "offset", w.offset)
	if w.onSubmit != nil {
		w.onSubmit(n)
	}
	return n, nil
}

// rewritten reports whether the bytes already consumed are no longer the
// file's prefix: the file was replaced, cut below the offset, or its last
// consumed bytes changed. A rewrite that reproduces those bytes goes unnoticed.
func (w *Watcher) rewritten(f *os.File, info os.FileInfo) bool {
	if w.offset == 0 {
		return false
	}
	if info.Size() < w.offset {
		return true
	}
	if w.file != nil && !os.SameFile(w.file, info) {
		return true
	}
	buf := make([]byte, len(w.tail))
	if _, err := f.ReadAt(buf, w.offset-int64(len(w.tail))); err != nil {
		return true
	}
	return !bytes.Equal(buf, w.tail)
}
