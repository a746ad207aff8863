package scan

import "sync"

// queue is the shared work queue of directories still to be listed.
//
// pending counts directories that were pushed but not yet marked done, so it
// includes both queued and in-flight work. Workers block in pop while the
// queue is empty but pending is nonzero: another worker may still push.
type queue struct {
	mu      sync.Mutex
	cond    *sync.Cond
	items   []string
	pending int
	closed  bool
	// interrupted is set when close was called with work outstanding.
	interrupted bool
}

func newQueue() *queue {
	q := &queue{}
	q.cond = sync.NewCond(&q.mu)

	return q
}

// push adds a directory and counts it as pending.
func (q *queue) push(dir string) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}

	q.items = append(q.items, dir)
	q.pending++
	q.cond.Signal()
}

// pop returns the next directory. It returns false once the queue is quiescent
// or closed.
func (q *queue) pop() (string, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for len(q.items) == 0 && q.pending > 0 && !q.closed {
		q.cond.Wait()
	}

	if q.closed || len(q.items) == 0 {
		return "", false
	}

	last := len(q.items) - 1
	dir := q.items[last]
	q.items[last] = ""
	q.items = q.items[:last]

	return dir, true
}

// done marks one popped directory as fully processed.
func (q *queue) done() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.pending--
	if q.pending == 0 {
		q.cond.Broadcast()
	}
}

// close wakes all workers and makes further pops fail.
func (q *queue) close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}

	q.closed = true
	q.interrupted = q.pending > 0
	q.cond.Broadcast()
}

// aborted reports whether the queue was closed before reaching quiescence.
func (q *queue) aborted() bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	return q.interrupted
}
