package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pair struct {
	A int64
	B int64
}

func TestPointerRoundTrip(t *testing.T) {
	p := &pair{A: 1, B: 2}
	b := PointerToBytes(p, 16)
	require.Len(t, b, 16)

	q := BytesToPointer[pair](b)
	assert.Same(t, p, q)

	q.B = 42
	assert.Equal(t, int64(42), p.B)
}
