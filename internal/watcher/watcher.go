// Package watcher republishes the active plan whenever a plan file in the
// plans directory is created, modified, renamed or deleted.
//
// Writes the process made itself can be ignored two ways:
//   - SetUpdatingFromUI(true) arms a single-slot latch that swallows the
//     next qualifying event and mutes that file for a short delay, so the
//     burst of events one write produces is absorbed as a whole;
//   - ExpectWrite records a content fingerprint; an event whose file still
//     hashes to it is ignored.
package watcher

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/HendryAvila/planmcp/internal/plans"
	"github.com/fsnotify/fsnotify"
)

const (
	DefaultPollInterval  = time.Second
	DefaultSuppressDelay = 100 * time.Millisecond
)

// ActivePlanLoader is the slice of plans.Service the watcher needs.
type ActivePlanLoader interface {
	GetActivePlan() (*plans.Plan, error)
}

// State is one published snapshot. Reloads increases on every reload
// attempt, so subscribers can tell "reloaded to the same plan" from
// "nothing happened". A nil Plan after a reload means no active plan or
// a failed load.
type State struct {
	Plan    *plans.Plan
	Reloads uint64
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithPollInterval bounds how long the loop waits before re-checking that
// the directory is still watched.
func WithPollInterval(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.pollInterval = d
		}
	}
}

// WithSuppressDelay sets how long a file stays muted after the latch
// swallowed one of its events.
func WithSuppressDelay(d time.Duration) Option {
	return func(w *Watcher) {
		if d >= 0 {
			w.suppressDelay = d
		}
	}
}

// Watcher observes one plans directory.
type Watcher struct {
	dir           string
	loader        ActivePlanLoader
	pollInterval  time.Duration
	suppressDelay time.Duration
	now           func() time.Time

	latch atomic.Bool

	mu      sync.Mutex // guards lifecycle fields
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
	fsw     *fsnotify.Watcher

	stateMu sync.RWMutex
	current *plans.Plan
	reloads uint64
	subs    map[int]chan State
	nextSub int

	fpMu     sync.Mutex
	expected map[string]string // abs path -> sha256 of the pending self-write

	// Loop goroutine only.
	mutedPath  string
	mutedUntil time.Time
}

// New creates a stopped watcher for dir.
func New(dir string, loader ActivePlanLoader, opts ...Option) *Watcher {
	w := &Watcher{
		dir:           dir,
		loader:        loader,
		pollInterval:  DefaultPollInterval,
		suppressDelay: DefaultSuppressDelay,
		now:           time.Now,
		subs:          make(map[int]chan State),
		expected:      make(map[string]string),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start creates the directory if needed, registers the OS watch, loads the
// active plan synchronously and starts the event loop. Calling Start on a
// running watcher logs a warning and does nothing.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		log.Printf("WARNING: watcher: already running on %s", w.dir)
		return nil
	}

	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("creating plans directory: %w", err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating fs watcher: %w", err)
	}
	if err := fsw.Add(w.dir); err != nil {
		_ = fsw.Close()
		return fmt.Errorf("watching %s: %w", w.dir, err)
	}

	w.reload()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	w.fsw, w.cancel, w.done, w.running = fsw, cancel, done, true

	go w.loop(ctx, fsw, done)

	log.Printf("watcher: watching %s", w.dir)
	return nil
}

// Stop ends the event loop and releases the OS watch. It is safe to call
// more than once.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = false
	cancel, done, fsw := w.cancel, w.done, w.fsw
	w.cancel, w.done, w.fsw = nil, nil, nil
	w.mu.Unlock()

	cancel()
	<-done

	if err := fsw.Close(); err != nil {
		return fmt.Errorf("closing fs watcher: %w", err)
	}
	log.Printf("watcher: stopped watching %s", w.dir)
	return nil
}

// Running reports whether the event loop is active.
func (w *Watcher) Running() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

// SetUpdatingFromUI arms (true) or disarms (false) the suppression latch.
// An armed latch swallows exactly one qualifying event and then clears
// itself.
func (w *Watcher) SetUpdatingFromUI(updating bool) {
	w.latch.Store(updating)
}

// ExpectWrite records that this process is about to write content to
// path. Events for path are ignored while the file still holds exactly
// that content. It matches plans.WriteHook.
func (w *Watcher) ExpectWrite(path, content string) {
	key := absPath(path)
	w.fpMu.Lock()
	w.expected[key] = fingerprint([]byte(content))
	w.fpMu.Unlock()
}

// ReloadNow reloads the active plan immediately.
func (w *Watcher) ReloadNow() {
	w.reload()
}

// CurrentPlan returns a copy of the last loaded active plan, or nil.
func (w *Watcher) CurrentPlan() *plans.Plan {
	w.stateMu.RLock()
	defer w.stateMu.RUnlock()
	if w.current == nil {
		return nil
	}
	c := w.current.Clone()
	return &c
}

// ReloadCount returns how many reloads have been attempted.
func (w *Watcher) ReloadCount() uint64 {
	w.stateMu.RLock()
	defer w.stateMu.RUnlock()
	return w.reloads
}

// Subscribe returns a channel that always holds the newest State. The
// current state is delivered immediately. Slow readers skip intermediate
// states. The returned func unsubscribes and closes the channel.
func (w *Watcher) Subscribe() (<-chan State, func()) {
	ch := make(chan State, 1)

	w.stateMu.Lock()
	id := w.nextSub
	w.nextSub++
	w.subs[id] = ch
	ch <- w.snapshotLocked()
	w.stateMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			w.stateMu.Lock()
			delete(w.subs, id)
			close(ch)
			w.stateMu.Unlock()
		})
	}
}

// --- event loop ---

func (w *Watcher) loop(ctx context.Context, fsw *fsnotify.Watcher, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
			w.ensureWatched(fsw)

		case ev, ok := <-fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(ev)

		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			log.Printf("WARNING: watcher: %v", err)
		}
	}
}

// ensureWatched re-adds the directory watch if the directory was removed
// and recreated underneath us.
func (w *Watcher) ensureWatched(fsw *fsnotify.Watcher) {
	for _, p := range fsw.WatchList() {
		if filepath.Clean(p) == filepath.Clean(w.dir) {
			return
		}
	}
	info, err := os.Stat(w.dir)
	if err != nil || !info.IsDir() {
		return
	}
	if err := fsw.Add(w.dir); err != nil {
		log.Printf("WARNING: watcher: re-watching %s: %v", w.dir, err)
		return
	}
	log.Printf("watcher: re-watching %s", w.dir)
	w.reload()
}

func (w *Watcher) handleEvent(ev fsnotify.Event) {
	if !qualifies(ev) {
		return
	}
	name := absPath(ev.Name)
	base := filepath.Base(name)

	if name == w.mutedPath && w.now().Before(w.mutedUntil) {
		return
	}

	if w.latch.CompareAndSwap(true, false) {
		log.Printf("watcher: ignoring %s on %s (update from UI)", ev.Op, base)
		w.mutedPath = name
		w.mutedUntil = w.now().Add(w.suppressDelay)
		return
	}

	if w.isExpectedWrite(name, ev.Op) {
		return
	}

	log.Printf("watcher: %s %s", strings.ToLower(ev.Op.String()), base)
	w.reload()
}

func qualifies(ev fsnotify.Event) bool {
	if !strings.HasSuffix(ev.Name, ".md") {
		return false
	}
	return ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0
}

func (w *Watcher) isExpectedWrite(name string, op fsnotify.Op) bool {
	w.fpMu.Lock()
	defer w.fpMu.Unlock()

	want, ok := w.expected[name]
	if !ok {
		return false
	}
	if op.Has(fsnotify.Remove) || op.Has(fsnotify.Rename) {
		delete(w.expected, name)
		return false
	}
	data, err := os.ReadFile(name)
	if err != nil {
		return false
	}
	if fingerprint(data) == want {
		return true
	}
	delete(w.expected, name)
	return false
}

// --- state ---

func (w *Watcher) reload() {
	plan, err := w.load()

	w.stateMu.Lock()
	defer w.stateMu.Unlock()

	if err != nil {
		log.Printf("WARNING: watcher: loading active plan: %v", err)
		w.current = nil
	} else {
		w.current = plan
	}
	w.reloads++

	st := w.snapshotLocked()
	for _, ch := range w.subs {
		publish(ch, st)
	}
}

func (w *Watcher) load() (plan *plans.Plan, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic loading active plan: %v", r)
		}
	}()
	return w.loader.GetActivePlan()
}

func (w *Watcher) snapshotLocked() State {
	st := State{Reloads: w.reloads}
	if w.current != nil {
		c := w.current.Clone()
		st.Plan = &c
	}
	return st
}

// publish replaces whatever is buffered in ch with st.
func publish(ch chan State, st State) {
	select {
	case ch <- st:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- st:
	default:
	}
}

func fingerprint(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return filepath.Clean(p)
}
