package channel

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"
)

// Channel is a bounded byte FIFO shared by any number of producer and
// consumer handles. A single mutex guards the storage, the open counts and
// both wait queues; callers are never parked while holding it.
type Channel struct {
	mu        sync.Mutex
	buf       storage
	name      string
	capacity  int
	maxRecord int
	open      [2]int       // Indexed by Role.
	waiting   [2]waitQueue // Indexed by Role.
	parked    sync.WaitGroup
	state     State
	paired    bool // Both roles have been open at the same time since the last reset.
	log       *zap.Logger

	bytesWritten uint64
	bytesRead    uint64
	writes       uint64
	reads        uint64
}

// New creates a channel that buffers at most capacity bytes and accepts at
// most maxRecord bytes per read or write call.
func New(capacity int, maxRecord int, opts ...Option) (ch *Channel, err error) {
	if capacity < 1 {
		return nil, errors.New("capacity must be at least 1 byte")
	}

	if maxRecord < 1 {
		return nil, errors.New("max record size must be at least 1 byte")
	}

	o := options{
		storage: Heap,
		logger:  zap.NewNop(),
	}

	for _, opt := range opts {
		opt(&o)
	}

	buf, err := newStorage(o.storage, capacity)

	if err != nil {
		return nil, fmt.Errorf("failed to allocate %s storage: %w", o.storage, err)
	}

	ch = &Channel{
		buf:       buf,
		name:      o.name,
		capacity:  capacity,
		maxRecord: maxRecord,
		waiting:   [2]waitQueue{newWaitQueue(), newWaitQueue()},
		state:     StateReady,
		log:       o.logger.With(zap.String("channel", o.name)),
	}

	ch.log.Debug("channel created",
		zap.Int("capacity", capacity),
		zap.Int("maxRecord", maxRecord),
		zap.Stringer("storage", o.storage),
	)

	return
}

func (ch *Channel) Name() string {
	return ch.name
}

func (ch *Channel) Cap() int {
	return ch.capacity
}

func (ch *Channel) MaxRecord() int {
	return ch.maxRecord
}

// Open registers a new handle with the given role. Unless a peer of the
// opposite role is already open, Open blocks until one appears or ctx is
// done, in which case ErrInterrupted is returned and nothing is registered.
func (ch *Channel) Open(ctx context.Context, role Role) (h *Handle, err error) {
	if !role.valid() {
		return nil, ErrInvalidRole
	}

	ch.mu.Lock()
	defer ch.mu.Unlock()

	if ch.state == StateDestroyed {
		return nil, ErrDestroyed
	}

	ch.open[role]++
	ch.notifyPeers(role, ch.open[role] == 1)

	ch.log.Debug("handle opening",
		zap.Stringer("role", role),
		zap.Int("producers", ch.open[Producer]),
		zap.Int("consumers", ch.open[Consumer]),
	)

	// Rendezvous: wait for at least one peer.
	for ch.open[role.Opposite()] == 0 {
		if err = ch.wait(ctx, nil, role); err != nil {
			if !errors.Is(err, ErrDestroyed) {
				ch.release(role)
			}

			return nil, err
		}
	}

	ch.refreshState()

	return &Handle{ch: ch, role: role}, nil
}

func (ch *Channel) close(h *Handle) error {
	ch.mu.Lock()
	defer ch.mu.Unlock()

	if h.closed {
		return ErrHandleClosed
	}

	h.closed = true

	// The counts died with the channel.
	if ch.state == StateDestroyed {
		return nil
	}

	// Calls still parked on this handle return ErrHandleClosed.
	for w := range h.parked {
		ch.waiting[h.role].wake(w)
	}

	ch.release(h.role)

	ch.log.Debug("handle closed",
		zap.Stringer("role", h.role),
		zap.Int("producers", ch.open[Producer]),
		zap.Int("consumers", ch.open[Consumer]),
	)

	return nil
}

// Drops one open handle of the role. Must be called with mu held.
func (ch *Channel) release(role Role) {
	ch.open[role]--
	ch.notifyPeers(role, ch.open[role] == 0)

	if ch.open[Producer] == 0 && ch.open[Consumer] == 0 {
		ch.buf.Reset()
		ch.paired = false
		ch.log.Debug("channel reset")
	}

	ch.refreshState()
}

// Wakes waiters of the role opposite to the one whose open count just
// changed. When the count crossed zero every such waiter depends on it, so
// all of them are released to re-check; otherwise a single one is. This is
// the only peer notification that wakes more than one waiter.
func (ch *Channel) notifyPeers(role Role, crossedZero bool) {
	wq := &ch.waiting[role.Opposite()]

	if crossedZero {
		wq.wakeAll()
	} else {
		wq.wakeOne()
	}
}

// Parks the caller on the role's queue. Must be called with mu held; mu is
// released while parked and held again on return. A non-nil h is the handle
// the call was made through; closing it releases the call.
func (ch *Channel) wait(ctx context.Context, h *Handle, role Role) error {
	w := ch.waiting[role].park()
	ch.parked.Add(1)

	if h != nil {
		if h.parked == nil {
			h.parked = make(map[*waiter]struct{})
		}

		h.parked[w] = struct{}{}
	}

	ch.mu.Unlock()

	var cancelled bool

	select {
	case <-w.ready:
	case <-ctx.Done():
		cancelled = true
	}

	ch.mu.Lock()
	ch.parked.Done()

	if h != nil {
		delete(h.parked, w)
	}

	// A waiter woken in the same instant as it was cancelled keeps the wake.
	if cancelled && ch.waiting[role].retire(w) {
		return fmt.Errorf("%w: %w", ErrInterrupted, context.Cause(ctx))
	}

	if ch.state == StateDestroyed {
		return ErrDestroyed
	}

	if h != nil && h.closed {
		// The wake may have been meant for a peer of this handle; pass it on.
		ch.waiting[role].wakeOne()
		return ErrHandleClosed
	}

	return nil
}

func (ch *Channel) write(ctx context.Context, h *Handle, p []byte) (n int, err error) {
	if len(p) > ch.capacity || len(p) > ch.maxRecord {
		return 0, ErrSizeExceeded
	}

	ch.mu.Lock()
	defer ch.mu.Unlock()

	if err = ch.usable(h); err != nil {
		return
	}

	// Wait until there is space in the buffer, as long as someone reads.
	for ch.buf.Free() < len(p) && ch.open[Consumer] > 0 {
		if err = ch.wait(ctx, h, Producer); err != nil {
			return
		}
	}

	if ch.open[Consumer] == 0 {
		return 0, ErrBrokenPipe
	}

	if len(p) == 0 {
		return
	}

	ch.buf.Push(p)
	ch.bytesWritten += uint64(len(p))
	ch.writes++
	ch.waiting[Consumer].wakeOne()

	return len(p), nil
}

func (ch *Channel) read(ctx context.Context, h *Handle, dst []byte) (n int, err error) {
	if len(dst) > ch.capacity || len(dst) > ch.maxRecord {
		return 0, ErrSizeExceeded
	}

	ch.mu.Lock()
	defer ch.mu.Unlock()

	if err = ch.usable(h); err != nil {
		return
	}

	// Wait until the requested amount is buffered, as long as someone writes.
	for ch.buf.Len() < len(dst) && ch.open[Producer] > 0 {
		if err = ch.wait(ctx, h, Consumer); err != nil {
			return
		}
	}

	// All producers gone and everything drained.
	if ch.open[Producer] == 0 && ch.buf.Len() == 0 {
		return 0, io.EOF
	}

	if len(dst) == 0 {
		return
	}

	n = ch.buf.Pop(dst)
	ch.bytesRead += uint64(n)
	ch.reads++
	ch.waiting[Producer].wakeOne()

	return
}

func (ch *Channel) usable(h *Handle) error {
	if ch.state == StateDestroyed {
		return ErrDestroyed
	}

	if h.closed {
		return ErrHandleClosed
	}

	return nil
}

// Must be called with mu held.
func (ch *Channel) refreshState() {
	if ch.state == StateDestroyed {
		return
	}

	producers, consumers := ch.open[Producer] > 0, ch.open[Consumer] > 0

	if producers && consumers {
		ch.paired = true
	}

	next := StateReady

	if ch.paired && producers != consumers {
		next = StateDraining
	}

	if next != ch.state {
		ch.log.Debug("channel state changed",
			zap.Stringer("from", ch.state),
			zap.Stringer("to", next),
		)

		ch.state = next
	}
}

// Destroy tears the channel down. Every parked caller is released with
// ErrDestroyed and Destroy waits for all of them to return before the
// storage is freed.
func (ch *Channel) Destroy() error {
	ch.mu.Lock()

	if ch.state == StateDestroyed {
		ch.mu.Unlock()
		return ErrDestroyed
	}

	ch.state = StateDestroyed
	released := ch.waiting[Producer].wakeAll() + ch.waiting[Consumer].wakeAll()
	ch.mu.Unlock()

	ch.parked.Wait()

	ch.mu.Lock()
	defer ch.mu.Unlock()

	ch.log.Debug("channel destroyed", zap.Int("released", released))

	return ch.buf.Close()
}

func (ch *Channel) Len() int {
	ch.mu.Lock()
	defer ch.mu.Unlock()

	return ch.len()
}

func (ch *Channel) len() int {
	if ch.state == StateDestroyed {
		return 0
	}

	return ch.buf.Len()
}

func (ch *Channel) State() State {
	ch.mu.Lock()
	defer ch.mu.Unlock()

	return ch.state
}
