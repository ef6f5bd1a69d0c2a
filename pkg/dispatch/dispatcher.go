package dispatch

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sigflow/sigflow-go/pkg/log"
)

// Dispatcher errors.
var (
	ErrUnknownCategory = errors.New("unknown dispatch category")
	ErrStopped         = errors.New("dispatcher stopped")
)

// Dispatcher funnels callbacks from foreign threads into one worker
// goroutine per event category. Callbacks scheduled to the same category
// run strictly in FIFO order on that category's worker; categories run
// fully concurrently with respect to each other.
//
// A Dispatcher is single-use: once Stop returns it cannot be restarted.
type Dispatcher struct {
	mu      sync.Mutex
	workers map[string]*worker
	stopped bool

	wg        sync.WaitGroup
	logger    log.Logger
	sessionID string
}

// New creates a Dispatcher and starts one worker per category.
// A nil logger disables logging.
func New(logger log.Logger, categories ...string) *Dispatcher {
	d := &Dispatcher{
		workers:   make(map[string]*worker, len(categories)),
		logger:    log.OrNoop(logger),
		sessionID: log.NewSessionID(),
	}
	for _, category := range categories {
		if _, ok := d.workers[category]; ok {
			continue
		}
		w := newWorker(category, d)
		d.workers[category] = w
		d.wg.Add(1)
		go w.run()
	}
	return d
}

// SessionID identifies this dispatcher instance in log events.
func (d *Dispatcher) SessionID() string {
	return d.sessionID
}

// Categories returns the category names this dispatcher serves.
func (d *Dispatcher) Categories() []string {
	d.mu.Lock()
	defer d.mu.Unlock()

	names := make([]string, 0, len(d.workers))
	for name := range d.workers {
		names = append(names, name)
	}
	return names
}

// Schedule enqueues fn on the category's worker and returns immediately;
// fn is never invoked on the caller's goroutine. It fails if the category
// is unknown or the dispatcher has been stopped.
func (d *Dispatcher) Schedule(category string, fn func()) error {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return ErrStopped
	}
	w, ok := d.workers[category]
	d.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}
	w.enqueue(fn)
	return nil
}

// Wrap returns a proxy that enqueues fn with the caller's arguments and
// returns immediately. The proxy silently drops work scheduled to an
// unknown category or after Stop, so it stays safe to hand to backends
// that may fire callbacks during teardown.
func (d *Dispatcher) Wrap(category string, fn func(args ...any)) func(args ...any) {
	return func(args ...any) {
		_ = d.Schedule(category, func() { fn(args...) })
	}
}

// Via adapts a typed callback so it runs on the named category worker
// instead of the caller's goroutine. Like Wrap, it drops work after Stop.
func Via[T any](d *Dispatcher, category string, fn func(T)) func(T) {
	return func(v T) {
		_ = d.Schedule(category, func() { fn(v) })
	}
}

// Stop tells every worker to exit, waits for all of them, and marks the
// dispatcher unusable. Callbacks already running finish; callbacks still
// queued are dropped. Stop is idempotent.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		d.wg.Wait()
		return
	}
	d.stopped = true
	workers := d.workers
	d.mu.Unlock()

	for _, w := range workers {
		w.stop()
	}
	d.wg.Wait()
}

// worker owns one category's FIFO queue and the goroutine draining it.
// The queue is unbounded so a producer (often a foreign library thread)
// never blocks on enqueue.
type worker struct {
	category   string
	dispatcher *Dispatcher

	mu      sync.Mutex
	cond    *sync.Cond
	queue   []func()
	stopped bool
}

func newWorker(category string, d *Dispatcher) *worker {
	w := &worker{category: category, dispatcher: d}
	w.cond = sync.NewCond(&w.mu)
	return w
}

func (w *worker) enqueue(fn func()) {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return
	}
	w.queue = append(w.queue, fn)
	w.mu.Unlock()
	w.cond.Signal()
}

func (w *worker) stop() {
	w.mu.Lock()
	w.stopped = true
	w.mu.Unlock()
	w.cond.Broadcast()
}

func (w *worker) run() {
	defer w.dispatcher.wg.Done()

	for {
		w.mu.Lock()
		for len(w.queue) == 0 && !w.stopped {
			w.cond.Wait()
		}
		if w.stopped {
			w.mu.Unlock()
			return
		}
		fn := w.queue[0]
		w.queue = w.queue[1:]
		w.mu.Unlock()

		w.invoke(fn)
	}
}

// invoke runs one callback, isolating panics so a failing callback never
// terminates the worker or blocks subsequently queued work.
func (w *worker) invoke(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			w.dispatcher.logger.Log(log.Event{
				Timestamp: time.Now(),
				SessionID: w.dispatcher.sessionID,
				Category:  log.CategoryDispatch,
				Message:   "callback panicked",
				Error: &log.ErrorData{
					Message: fmt.Sprint(r),
					Context: w.category,
				},
			})
		}
	}()
	fn()
}
