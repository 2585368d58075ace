package tests

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/winramp/effectsd/internal/dsp"
	"github.com/winramp/effectsd/internal/effect"
	"github.com/winramp/effectsd/internal/fifo"
	"github.com/winramp/effectsd/internal/graph"
	"github.com/winramp/effectsd/internal/session/streaminfo"
	"github.com/winramp/effectsd/internal/spsc"
)

// TestEndToEndGainThenZeroDBPeakingIsIdentity captures
// [0.1, 0.1, 0.1, 0.1] at Fs=48000 through Gain(0.5) then
// Peaking(1kHz, Q=1, +0dB), expecting [0.05, 0.05, 0.05, 0.05] since
// 0dB peaking is identity.
func TestEndToEndGainThenZeroDBPeakingIsIdentity(t *testing.T) {
	fifoProducer, fifoConsumer := fifo.New(4)
	msgProducer, msgConsumer := spsc.New[graph.Message](8)
	fifoConsumer.Pop(make([]float32, 4)) // drain the prefilled latency zeros

	input := graph.NewInputNode(fifoConsumer, nil)
	g := graph.New(input, msgConsumer)

	_, gainNode := effect.New(effect.Spec{Kind: effect.Gain, Gain: 0.5})
	_, eqNode := effect.New(effect.Spec{
		Kind:  effect.Equalizer,
		Bands: []dsp.Band{{Type: dsp.Peaking, Frequency: 1000, Q: 1, GainDB: 0}},
	})

	require.True(t, msgProducer.TryPush(graph.Message{Kind: graph.Add, Node: gainNode}))
	require.True(t, msgProducer.TryPush(graph.Message{Kind: graph.Add, Node: eqNode}))

	fifoProducer.Push([]float32{0.1, 0.1, 0.1, 0.1})

	buf := make([]float32, 4)
	info := streaminfo.StreamInfo{SampleRate: 48000}
	g.Process(buf, info)

	assert.InDeltaSlice(t, []float64{0.05, 0.05, 0.05, 0.05}, toFloat64(buf), 1e-6)
}

// TestEndToEndRemovalRestoresOriginalGraphBehavior exercises the
// add/remove ordering property across the full Graph + FIFO wiring
// rather than Graph alone.
func TestEndToEndRemovalRestoresOriginalGraphBehavior(t *testing.T) {
	fifoProducer, fifoConsumer := fifo.New(3)
	msgProducer, msgConsumer := spsc.New[graph.Message](8)
	fifoConsumer.Pop(make([]float32, 3)) // drain the prefilled latency zeros

	input := graph.NewInputNode(fifoConsumer, nil)
	g := graph.New(input, msgConsumer)

	_, gain2 := effect.New(effect.Spec{Kind: effect.Gain, Gain: 2})
	_, gain3 := effect.New(effect.Spec{Kind: effect.Gain, Gain: 3})

	require.True(t, msgProducer.TryPush(graph.Message{Kind: graph.Add, Node: gain2}))
	require.True(t, msgProducer.TryPush(graph.Message{Kind: graph.Add, Node: gain3}))
	require.True(t, msgProducer.TryPush(graph.Message{Kind: graph.Remove, Index: 0}))

	fifoProducer.Push([]float32{1, 1, 1})
	buf := make([]float32, 3)
	g.Process(buf, streaminfo.StreamInfo{SampleRate: 48000})

	assert.Equal(t, []float32{3, 3, 3}, buf)
}

func toFloat64(buf []float32) []float64 {
	out := make([]float64, len(buf))
	for i, v := range buf {
		out[i] = float64(v)
	}
	return out
}
