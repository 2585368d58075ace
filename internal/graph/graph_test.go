package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/winramp/effectsd/internal/dsp"
	"github.com/winramp/effectsd/internal/effect"
	"github.com/winramp/effectsd/internal/fifo"
	"github.com/winramp/effectsd/internal/session/streaminfo"
	"github.com/winramp/effectsd/internal/spsc"
)

var testInfo = streaminfo.StreamInfo{SampleRate: 48000}

func newTestGraph(t *testing.T) (*Graph, *spsc.Producer[Message], *fifo.Producer) {
	t.Helper()
	fifoProducer, fifoConsumer := fifo.New(4)
	msgProducer, msgConsumer := spsc.New[Message](8)

	// Drain the 4 prefilled latency zeros so the first Process reads the
	// samples each test pushes.
	fifoConsumer.Pop(make([]float32, 4))

	input := NewInputNode(fifoConsumer, nil)
	g := New(input, msgConsumer)
	return g, msgProducer, fifoProducer
}

func TestGraphAddRemoveOrdering(t *testing.T) {
	g, msgs, fifoP := newTestGraph(t)

	_, node2 := effect.New(effect.Spec{Kind: effect.Gain, Gain: 2})
	_, node3 := effect.New(effect.Spec{Kind: effect.Gain, Gain: 3})

	require.True(t, msgs.TryPush(Message{Kind: Add, Node: node2}))
	require.True(t, msgs.TryPush(Message{Kind: Add, Node: node3}))
	require.True(t, msgs.TryPush(Message{Kind: Remove, Index: 0}))

	fifoP.Push([]float32{1, 1, 1})
	buf := make([]float32, 3)
	g.Process(buf, testInfo)

	assert.Equal(t, []float32{3, 3, 3}, buf)
}

func TestGraphNoRemovalAppliesBothGains(t *testing.T) {
	g, msgs, fifoP := newTestGraph(t)

	_, node2 := effect.New(effect.Spec{Kind: effect.Gain, Gain: 2})
	_, node3 := effect.New(effect.Spec{Kind: effect.Gain, Gain: 3})

	require.True(t, msgs.TryPush(Message{Kind: Add, Node: node2}))
	require.True(t, msgs.TryPush(Message{Kind: Add, Node: node3}))

	fifoP.Push([]float32{1, 1, 1})
	buf := make([]float32, 3)
	g.Process(buf, testInfo)

	assert.Equal(t, []float32{6, 6, 6}, buf)
}

func TestGraphRemoveOutOfRangeIsNoop(t *testing.T) {
	g, msgs, fifoP := newTestGraph(t)

	_, node2 := effect.New(effect.Spec{Kind: effect.Gain, Gain: 2})
	require.True(t, msgs.TryPush(Message{Kind: Add, Node: node2}))
	require.True(t, msgs.TryPush(Message{Kind: Remove, Index: 5}))

	fifoP.Push([]float32{1, 1})
	buf := make([]float32, 2)
	g.Process(buf, testInfo)

	assert.Equal(t, []float32{2, 2}, buf)
	assert.Equal(t, 1, g.NodeCount())
}

func TestInputNodeUnderrunFillsWithLastSampleAndNotifies(t *testing.T) {
	_, fifoConsumer := fifo.New(2) // prefilled with 2 zeros

	notified := 0
	input := NewInputNode(fifoConsumer, func() { notified++ })

	buf := make([]float32, 2)
	input.Process(buf) // drains the 2 prefilled zeros exactly, no underrun
	assert.Equal(t, 0, notified)

	buf2 := make([]float32, 4)
	input.Process(buf2) // nothing left in the FIFO now
	assert.Equal(t, 1, notified)
	for _, v := range buf2 {
		assert.Equal(t, float32(0), v)
	}
}

// TestNoAllocationOnHotPath drives Process over a fixed Gain+Equalizer
// node set and asserts it allocates nothing. The equalizer's biquads
// are lazily materialized on first Process call, so that call happens
// before AllocsPerRun starts counting.
func TestNoAllocationOnHotPath(t *testing.T) {
	g, msgs, _ := newTestGraph(t)

	_, gainNode := effect.New(effect.Spec{Kind: effect.Gain, Gain: 0.5})
	_, eqNode := effect.New(effect.Spec{
		Kind:  effect.Equalizer,
		Bands: []dsp.Band{{Type: dsp.Peaking, Frequency: 1000, Q: 1, GainDB: 3}},
	})
	require.True(t, msgs.TryPush(Message{Kind: Add, Node: gainNode}))
	require.True(t, msgs.TryPush(Message{Kind: Add, Node: eqNode}))

	buf := make([]float32, 128)

	g.Process(buf, testInfo) // drains the Add messages, materializes the biquad

	allocs := testing.AllocsPerRun(10000, func() {
		g.Process(buf, testInfo)
	})
	assert.Equal(t, float64(0), allocs)
}
