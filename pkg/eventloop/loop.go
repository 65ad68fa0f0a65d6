// Package eventloop schedules deferred callbacks for the interpreter:
// macrotasks (timers) ordered by due time then submission order, and
// microtasks drained to exhaustion before every macrotask.
package eventloop

import (
	"container/heap"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Callback is a zero-argument continuation. A non-nil error is logged and
// swallowed; one failing callback never aborts the loop or its peers.
type Callback func() error

// TimerID identifies a scheduled macrotask for cancellation.
type TimerID int64

type timer struct {
	id       TimerID
	due      time.Time
	seq      int64
	interval time.Duration
	repeat   bool
	cb       Callback
	index    int
}

type timerHeap []*timer

func (h timerHeap) Len() int { return len(h) }

func (h timerHeap) Less(i, j int) bool {
	if h[i].due.Equal(h[j].due) {
		return h[i].seq < h[j].seq
	}
	return h[i].due.Before(h[j].due)
}

func (h timerHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *timerHeap) Push(x any) {
	t := x.(*timer)
	t.index = len(*h)
	*h = append(*h, t)
}

func (h *timerHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return t
}

// Loop is a single-threaded cooperative scheduler. Enqueue methods are safe
// to call from callbacks and from generator goroutines; Run itself must be
// driven from one goroutine.
type Loop struct {
	mu      sync.Mutex
	timers  timerHeap
	micro   []Callback
	nextID  TimerID
	nextSeq int64
	stopped bool
	errLog  io.Writer
	now     func() time.Time
	sleep   func(time.Duration)
}

func New() *Loop {
	return &Loop{
		errLog: os.Stderr,
		now:    time.Now,
		sleep:  time.Sleep,
	}
}

// SetErrorLog redirects swallowed callback errors (stderr by default).
func (l *Loop) SetErrorLog(w io.Writer) {
	l.mu.Lock()
	l.errLog = w
	l.mu.Unlock()
}

// Enqueue schedules a macrotask after delayMs milliseconds. Tasks with the
// same due time fire in submission order.
func (l *Loop) Enqueue(cb Callback, delayMs float64) TimerID {
	return l.schedule(cb, delayMs, false)
}

// EnqueueRepeating schedules a macrotask every delayMs milliseconds until
// cancelled.
func (l *Loop) EnqueueRepeating(cb Callback, delayMs float64) TimerID {
	return l.schedule(cb, delayMs, true)
}

func (l *Loop) schedule(cb Callback, delayMs float64, repeat bool) TimerID {
	if delayMs < 0 {
		delayMs = 0
	}
	interval := time.Duration(delayMs * float64(time.Millisecond))
	l.mu.Lock()
	defer l.mu.Unlock()
	l.nextID++
	l.nextSeq++
	t := &timer{
		id:       l.nextID,
		due:      l.now().Add(interval),
		seq:      l.nextSeq,
		interval: interval,
		repeat:   repeat,
		cb:       cb,
	}
	heap.Push(&l.timers, t)
	return t.id
}

// Cancel removes a pending macrotask. Unknown ids are ignored, matching
// clearTimeout semantics.
func (l *Loop) Cancel(id TimerID) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, t := range l.timers {
		if t.id == id {
			heap.Remove(&l.timers, t.index)
			return
		}
	}
}

// EnqueueMicrotask schedules a same-tick continuation. The microtask queue
// drains to exhaustion before the next macrotask fires.
func (l *Loop) EnqueueMicrotask(cb Callback) {
	l.mu.Lock()
	l.micro = append(l.micro, cb)
	l.mu.Unlock()
}

// Pending reports how many callbacks are still scheduled.
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.timers) + len(l.micro)
}

// Stop makes Run return after the current callback.
func (l *Loop) Stop() {
	l.mu.Lock()
	l.stopped = true
	l.mu.Unlock()
}

// Run drains the loop until nothing is scheduled: microtasks first, then
// the earliest due timer, sleeping when the next timer lies in the future.
func (l *Loop) Run() {
	l.mu.Lock()
	l.stopped = false
	l.mu.Unlock()
	for {
		l.drainMicrotasks()
		l.mu.Lock()
		if l.stopped || len(l.timers) == 0 {
			l.mu.Unlock()
			return
		}
		next := l.timers[0]
		wait := next.due.Sub(l.now())
		if wait > 0 {
			l.mu.Unlock()
			l.sleep(wait)
			continue
		}
		heap.Pop(&l.timers)
		if next.repeat {
			l.nextSeq++
			next.seq = l.nextSeq
			next.due = l.now().Add(next.interval)
			heap.Push(&l.timers, next)
		}
		l.mu.Unlock()
		l.invoke(next.cb)
	}
}

func (l *Loop) drainMicrotasks() {
	for {
		l.mu.Lock()
		if len(l.micro) == 0 {
			l.mu.Unlock()
			return
		}
		cb := l.micro[0]
		l.micro = l.micro[1:]
		l.mu.Unlock()
		l.invoke(cb)
	}
}

func (l *Loop) invoke(cb Callback) {
	if cb == nil {
		return
	}
	if err := cb(); err != nil {
		l.mu.Lock()
		w := l.errLog
		l.mu.Unlock()
		if w != nil {
			fmt.Fprintf(w, "uncaught error in callback: %v\n", err)
		}
	}
}
