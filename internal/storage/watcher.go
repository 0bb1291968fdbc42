package storage

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultWatchDebounce coalesces the burst of events a single save produces.
const DefaultWatchDebounce = 100 * time.Millisecond

// Watcher reports profile slots whose document was written or replaced on
// disk, whether by this process or another one.
type Watcher struct {
	fsw      *fsnotify.Watcher
	events   chan int
	debounce time.Duration

	mu     sync.Mutex
	timers map[int]*time.Timer
	closed bool
	done   chan struct{}
}

// WatchProfiles starts watching the store's directory until ctx is done or
// Close is called.
func WatchProfiles(ctx context.Context, s *FileStore, debounce time.Duration) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("storage: create watcher: %w", err)
	}
	if err := fsw.Add(s.Dir()); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("storage: watch %s: %w", s.Dir(), err)
	}
	if debounce <= 0 {
		debounce = DefaultWatchDebounce
	}
	w := &Watcher{
		fsw:      fsw,
		events:   make(chan int, 16),
		debounce: debounce,
		timers:   make(map[int]*time.Timer),
		done:     make(chan struct{}),
	}
	go w.loop(ctx)
	return w, nil
}

// Events delivers the slot id of each changed document.
func (w *Watcher) Events() <-chan int { return w.events }

func (w *Watcher) loop(ctx context.Context) {
	defer w.Close()
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			id, ok := SlotFromPath(ev.Name)
			if !ok {
				continue
			}
			w.schedule(id)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			slog.Warn("[STORAGE] watcher error", "error", err)
		}
	}
}

func (w *Watcher) schedule(id int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	if t, ok := w.timers[id]; ok {
		t.Stop()
	}
	w.timers[id] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.timers, id)
		closed := w.closed
		w.mu.Unlock()
		if closed {
			return
		}
		select {
		case w.events <- id:
		default:
			slog.Warn("[STORAGE] watcher event dropped", "id", id)
		}
	})
}

// Close stops the watcher. It is safe to call more than once.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	for _, t := range w.timers {
		t.Stop()
	}
	close(w.done)
	w.mu.Unlock()
	return w.fsw.Close()
}
