package spsc

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueFIFOOrder(t *testing.T) {
	p, c := New[int](4)
	for i := 0; i < 4; i++ {
		require.True(t, p.TryPush(i))
	}
	assert.False(t, p.TryPush(4), "queue should be full")

	for i := 0; i < 4; i++ {
		v, ok := c.TryPop()
		require.True(t, ok)
		assert.Equal(t, i, v)
	}
	_, ok := c.TryPop()
	assert.False(t, ok)
}

func TestQueueWrapsAround(t *testing.T) {
	p, c := New[int](2)
	require.True(t, p.TryPush(1))
	v, ok := c.TryPop()
	require.True(t, ok)
	assert.Equal(t, 1, v)

	require.True(t, p.TryPush(2))
	require.True(t, p.TryPush(3))
	v, _ = c.TryPop()
	assert.Equal(t, 2, v)
	v, _ = c.TryPop()
	assert.Equal(t, 3, v)
}

func TestQueueConcurrentProducerConsumer(t *testing.T) {
	p, c := New[int](16)
	const n = 10000

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		for i := 0; i < n; i++ {
			for !p.TryPush(i) {
			}
		}
	}()

	received := make([]int, 0, n)
	go func() {
		defer wg.Done()
		for len(received) < n {
			if v, ok := c.TryPop(); ok {
				received = append(received, v)
			}
		}
	}()

	wg.Wait()
	for i, v := range received {
		assert.Equal(t, i, v)
	}
}

func TestLastUpdateWinsAfterBurst(t *testing.T) {
	type updateGain struct{ gain float32 }
	p, c := New[updateGain](2048)

	for i := 0; i < 1000; i++ {
		require.True(t, p.TryPush(updateGain{gain: float32(i)}))
	}

	var effective float32
	for {
		v, ok := c.TryPop()
		if !ok {
			break
		}
		effective = v.gain
	}
	assert.Equal(t, float32(999), effective)
}
