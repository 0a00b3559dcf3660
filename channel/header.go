package channel

import (
	"unsafe"
)

func newHeader(capacity int) *header {
	h := &header{
		capacity: int64(capacity),
	}
	h.headSize = int64(unsafe.Sizeof(*h))

	return h
}

// Ring bookkeeping. Kept free of pointers so that it may live inside a
// memory mapping.
type header struct {
	headSize int64
	startIdx int64
	length   int64
	capacity int64
}

func (h header) mapSize() int64 {
	return h.headSize + h.capacity
}
