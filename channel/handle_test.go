package channel

import (
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleAsReaderWriter(t *testing.T) {
	ch := newTestChannel(t, 32, 16)
	prod, cons := openPair(t, ch)

	var w io.WriteCloser = prod
	var r io.ReadCloser = cons

	go func() {
		for i := 0; i < 4; i++ {
			fmt.Fprintf(w, "line %d\n", i)
		}

		w.Close()
	}()

	buf := make([]byte, 7)

	for i := 0; i < 4; i++ {
		_, err := io.ReadFull(r, buf)
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("line %d\n", i), string(buf))
	}

	_, err := r.Read(buf)
	assert.ErrorIs(t, err, io.EOF)
	assert.NoError(t, r.Close())
	assert.Same(t, ch, cons.Channel())
}

func TestReceiveEndOfStream(t *testing.T) {
	ch := newTestChannel(t, 8, 8)
	prod, cons := openPair(t, ch)
	require.NoError(t, prod.Close())

	b, err := cons.Receive(context.Background(), 4)
	assert.Nil(t, b)
	assert.ErrorIs(t, err, io.EOF)
}
