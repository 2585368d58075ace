package effect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/winramp/effectsd/internal/dsp"
	"github.com/winramp/effectsd/internal/session/streaminfo"
)

var info48k = streaminfo.StreamInfo{SampleRate: 48000}

func TestGainLinearity(t *testing.T) {
	_, node := New(Spec{Kind: Gain, Gain: 2.0})

	buf := []float32{0.1, -0.3, 0.5}
	node.Process(buf, info48k)

	assert.InDeltaSlice(t, []float64{0.2, -0.6, 1.0}, toFloat64(buf), 1e-6)
}

func TestGainLastUpdateWinsWithinOneCallback(t *testing.T) {
	p, node := New(Spec{Kind: Gain, Gain: 1})

	for i := 1; i <= 1000; i++ {
		require.True(t, p.TryPush(ParamMessage{UpdateGain: float32(i)}))
	}

	buf := []float32{1}
	node.Process(buf, info48k)
	assert.Equal(t, float32(1000), buf[0])
}

func TestEqualizerLazyInit(t *testing.T) {
	band := dsp.Band{Type: dsp.Peaking, Frequency: 1000, Q: 1, GainDB: 6}
	_, node := New(Spec{Kind: Equalizer, Bands: []dsp.Band{band}})

	assert.False(t, node.Initialized())
	assert.Equal(t, 0, node.BiquadCount())

	buf := make([]float32, 8)
	node.Process(buf, info48k)

	assert.True(t, node.Initialized())
	assert.Equal(t, 1, node.BiquadCount())
}

func TestEqualizerZeroDBPeakingIsIdentity(t *testing.T) {
	band := dsp.Band{Type: dsp.Peaking, Frequency: 1000, Q: 1, GainDB: 0}
	_, node := New(Spec{Kind: Equalizer, Bands: []dsp.Band{band}})

	buf := []float32{0.1, 0.1, 0.1, 0.1}
	node.Process(buf, info48k)

	for _, v := range buf {
		assert.InDelta(t, 0.1, v, 1e-6)
	}
}

func TestEqualizerBandUpdateReplacesCoefficientsNotState(t *testing.T) {
	band := dsp.Band{Type: dsp.Peaking, Frequency: 1000, Q: 1, GainDB: 6}
	p, node := New(Spec{Kind: Equalizer, Bands: []dsp.Band{band}})

	node.Process([]float32{1, 0, 0, 0}, info48k)

	updated := dsp.Band{Type: dsp.Peaking, Frequency: 2000, Q: 0.7, GainDB: 3}
	require.True(t, p.TryPush(ParamMessage{IsBand: true, BandIndex: 0, Band: updated}))

	before := node.biquads[0].Coefficients()
	node.Process([]float32{0, 0, 0, 0}, info48k)
	after := node.biquads[0].Coefficients()

	assert.NotEqual(t, before, after)
}

func toFloat64(buf []float32) []float64 {
	out := make([]float64, len(buf))
	for i, v := range buf {
		out[i] = float64(v)
	}
	return out
}
