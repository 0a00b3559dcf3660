package channel

import (
	"errors"
	"fmt"
	"strings"

	"github.com/edsrzf/mmap-go"
	"github.com/webbmaffian/go-fifo/internal/utils"
)

// Storage selects where the channel keeps its buffered bytes.
type Storage uint8

const (
	Heap Storage = iota // Go-allocated byte slice.
	Mmap                // Anonymous memory mapping, outside of the Go heap.
)

func (s Storage) String() string {
	switch s {
	case Heap:
		return "heap"
	case Mmap:
		return "mmap"
	}

	return fmt.Sprintf("storage(%d)", uint8(s))
}

func ParseStorage(s string) (Storage, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "heap":
		return Heap, nil
	case "mmap":
		return Mmap, nil
	}

	return 0, fmt.Errorf("unknown storage %q", s)
}

// A capacity-bounded byte sequence. Not safe for concurrent use; the channel
// serializes all access.
type storage interface {
	Len() int
	Cap() int
	Free() int

	// Push appends p in full. The caller guarantees len(p) <= Free().
	Push(p []byte)

	// Pop moves up to len(dst) bytes from the front into dst.
	Pop(dst []byte) int

	Reset()
	Close() error
}

func newStorage(kind Storage, capacity int) (storage, error) {
	switch kind {
	case Heap:
		return newHeapRing(capacity), nil
	case Mmap:
		return newMmapRing(capacity)
	}

	return nil, fmt.Errorf("unknown storage %s", kind)
}

var _ storage = (*ring)(nil)

type ring struct {
	head    *header
	data    []byte
	release func() error
}

func newHeapRing(capacity int) *ring {
	return &ring{
		head: newHeader(capacity),
		data: make([]byte, capacity),
	}
}

// The header is written to the start of the mapping and the data area
// follows it, the same layout as a file backed channel.
func newMmapRing(capacity int) (r *ring, err error) {
	head := newHeader(capacity)
	m, err := mmap.MapRegion(nil, int(head.mapSize()), mmap.RDWR, mmap.ANON, 0)

	if err != nil {
		return
	}

	if s := int(head.headSize); copy(m[:s], utils.PointerToBytes(head, s)) != s {
		_ = m.Unmap()
		return nil, errors.New("failed to write header")
	}

	r = &ring{
		head:    utils.BytesToPointer[header](m[:head.headSize]),
		data:    m[head.headSize:],
		release: m.Unmap,
	}

	return
}

func (r *ring) Len() int {
	return int(r.head.length)
}

func (r *ring) Cap() int {
	return int(r.head.capacity)
}

func (r *ring) Free() int {
	return int(r.head.capacity - r.head.length)
}

func (r *ring) Push(p []byte) {
	idx := r.index(r.head.length)

	// Wrap around to the start of the data area.
	n := copy(r.data[idx:], p)
	copy(r.data, p[n:])

	r.head.length += int64(len(p))
}

func (r *ring) Pop(dst []byte) int {
	n := int64(len(dst))

	if n > r.head.length {
		n = r.head.length
	}

	idx := r.head.startIdx
	c := copy(dst[:n], r.data[idx:])
	copy(dst[c:n], r.data)

	r.head.length -= n

	if r.head.length == 0 {
		r.head.startIdx = 0
	} else {
		r.head.startIdx = r.wrap(idx + n)
	}

	return int(n)
}

func (r *ring) Reset() {
	r.head.startIdx = 0
	r.head.length = 0
}

func (r *ring) Close() (err error) {
	if r.release != nil {
		err = r.release()
		r.release = nil
	}

	return
}

func (r *ring) index(index int64) int64 {
	return r.wrap(r.head.startIdx + index)
}

func (r *ring) wrap(index int64) int64 {
	return (index + r.head.capacity) % r.head.capacity
}
