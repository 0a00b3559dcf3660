package channel

import (
	"github.com/eapache/queue"
)

type waiter struct {
	ready   chan struct{}
	woken   bool
	retired bool
}

// FIFO of parked callers of one role. Guarded by the channel mutex.
//
// Retired and directly woken waiters stay in the queue until they reach the
// front and are skipped there, so count (not the queue length) is the waiting counter.
type waitQueue struct {
	q     *queue.Queue
	count int
}

func newWaitQueue() waitQueue {
	return waitQueue{q: queue.New()}
}

func (wq *waitQueue) len() int {
	return wq.count
}

func (wq *waitQueue) park() *waiter {
	w := &waiter{ready: make(chan struct{})}
	wq.q.Add(w)
	wq.count++
	return w
}

// Wakes the oldest live waiter. Reports whether anyone was woken.
func (wq *waitQueue) wakeOne() bool {
	for wq.q.Length() > 0 {
		if wq.wake(wq.q.Remove().(*waiter)) {
			return true
		}
	}

	return false
}

// Wakes a specific waiter wherever it sits in the queue. Waiters already
// woken or retired are left alone; the queue entry is dropped lazily.
func (wq *waitQueue) wake(w *waiter) bool {
	if w.woken || w.retired {
		return false
	}

	w.woken = true
	wq.count--
	close(w.ready)
	return true
}

func (wq *waitQueue) wakeAll() (n int) {
	for wq.wakeOne() {
		n++
	}

	return
}

// Takes a cancelled waiter out of the count. Returns false when the waiter
// was already woken, in which case the waker has done the decrement and the
// wake belongs to the caller.
func (wq *waitQueue) retire(w *waiter) bool {
	if w.woken {
		return false
	}

	w.retired = true
	wq.count--
	return true
}
