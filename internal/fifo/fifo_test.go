package fifo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFIFOPrefillReadsBackAsZeros(t *testing.T) {
	_, c := New(128)

	buf := make([]float32, 128)
	n := c.Pop(buf)
	require.Equal(t, 128, n)
	for _, v := range buf {
		assert.Equal(t, float32(0), v)
	}
}

func TestFIFOOverflowDropsTailAndCountsIt(t *testing.T) {
	p, _ := New(128) // capacity 256, prefilled to 128 -> 128 free

	data := make([]float32, 200)
	for i := range data {
		data[i] = float32(i)
	}
	accepted := p.Push(data)

	assert.Equal(t, 128, accepted)
	assert.Equal(t, uint64(72), p.OverflowCount())
}

func TestFIFORoundTripsPushedSamples(t *testing.T) {
	p, c := New(4) // capacity 8, prefilled with 4 zeros

	drained := make([]float32, 4)
	require.Equal(t, 4, c.Pop(drained))

	in := []float32{1, 2, 3}
	require.Equal(t, 3, p.Push(in))

	out := make([]float32, 3)
	require.Equal(t, 3, c.Pop(out))
	assert.Equal(t, in, out)
}

func TestFIFOUnderrunReturnsFewerThanRequested(t *testing.T) {
	_, c := New(4)

	buf := make([]float32, 10)
	n := c.Pop(buf)
	assert.Equal(t, 4, n)
}

func TestFIFOLenReflectsPendingSamples(t *testing.T) {
	p, c := New(4)
	assert.Equal(t, 4, c.Len())

	p.Push([]float32{1, 2})
	assert.Equal(t, 6, c.Len())

	buf := make([]float32, 3)
	c.Pop(buf)
	assert.Equal(t, 3, c.Len())
}
