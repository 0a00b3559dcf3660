package channel

import (
	"context"
	"io"
)

var (
	_ io.Reader = (*Handle)(nil)
	_ io.Writer = (*Handle)(nil)
	_ io.Closer = (*Handle)(nil)
)

// Handle is one open end of a channel. It references the channel but does
// not own it; closing the handle never destroys the channel.
type Handle struct {
	ch     *Channel
	role   Role
	closed bool                 // Guarded by ch.mu.
	parked map[*waiter]struct{} // Calls of this handle parked in the channel. Guarded by ch.mu.
}

func (h *Handle) Role() Role {
	return h.role
}

func (h *Handle) Channel() *Channel {
	return h.ch
}

// WriteContext appends all of p or nothing. It blocks while the channel
// lacks room for p and at least one consumer is open.
func (h *Handle) WriteContext(ctx context.Context, p []byte) (int, error) {
	if h.role != Producer {
		return 0, ErrWrongRole
	}

	return h.ch.write(ctx, h, p)
}

// ReadContext blocks until len(p) bytes are buffered or all producers are
// gone, then moves up to len(p) bytes into p. It returns io.EOF once all
// producers are gone and the channel is drained.
func (h *Handle) ReadContext(ctx context.Context, p []byte) (int, error) {
	if h.role != Consumer {
		return 0, ErrWrongRole
	}

	return h.ch.read(ctx, h, p)
}

// Receive is like ReadContext but allocates the result.
func (h *Handle) Receive(ctx context.Context, maxLen int) ([]byte, error) {
	if maxLen < 0 {
		return nil, ErrSizeExceeded
	}

	if maxLen > h.ch.capacity || maxLen > h.ch.maxRecord {
		return nil, ErrSizeExceeded
	}

	b := make([]byte, maxLen)
	n, err := h.ReadContext(ctx, b)

	if err != nil {
		return nil, err
	}

	return b[:n], nil
}

func (h *Handle) Write(p []byte) (int, error) {
	return h.WriteContext(context.Background(), p)
}

func (h *Handle) Read(p []byte) (int, error) {
	return h.ReadContext(context.Background(), p)
}

func (h *Handle) Close() error {
	return h.ch.close(h)
}
