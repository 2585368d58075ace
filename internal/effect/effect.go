// Package effect implements the two DSP effect kinds the graph can run:
// Gain and Equalizer. Each effect is a Spec (the control-side authoritative
// description) plus a Node (the audio-thread-resident counterpart that
// owns DSP state and the consumer half of a parameter inbox).
package effect

import (
	"github.com/winramp/effectsd/internal/dsp"
	"github.com/winramp/effectsd/internal/session/streaminfo"
	"github.com/winramp/effectsd/internal/spsc"
)

// Kind discriminates the two effect variants. Dispatch is a closed
// switch on Kind rather than an interface, so the hot path never pays
// for dynamic dispatch.
type Kind int

const (
	Gain Kind = iota
	Equalizer
)

// Spec is the control-side, authoritative description of one effect.
// It is never touched by the audio thread; edits to a live Spec are
// mirrored into ParamMessage sends on Producer.
type Spec struct {
	Kind  Kind
	Gain  float32
	Bands []dsp.Band
}

// ParamMessage carries a parameter edit into a Node's inbox. Only the
// field matching the owning Spec's Kind is meaningful.
type ParamMessage struct {
	UpdateGain float32
	BandIndex  int
	Band       dsp.Band
	IsBand     bool
}

// Node is the audio-thread counterpart of a Spec: DSP state plus the
// consumer half of the Spec's parameter inbox.
type Node struct {
	kind   Kind
	inbox  *spsc.Consumer[ParamMessage]
	gain   float32
	bands  []dsp.Band
	biquads []*dsp.Biquad
	initialized bool
}

// New creates the Node for spec together with the Producer half of its
// parameter inbox. The control side keeps the returned Producer; the
// Node is handed to the audio thread via a GraphMessage.
func New(spec Spec) (*spsc.Producer[ParamMessage], *Node) {
	p, c := spsc.New[ParamMessage](1024)
	n := &Node{kind: spec.Kind, inbox: c, gain: spec.Gain}
	if spec.Kind == Equalizer {
		n.bands = append([]dsp.Band(nil), spec.Bands...)
	}
	return p, n
}

// Process drains the node's inbox and runs its DSP over buf in place.
func (n *Node) Process(buf []float32, info streaminfo.StreamInfo) {
	switch n.kind {
	case Gain:
		n.processGain(buf)
	case Equalizer:
		n.processEqualizer(buf, info)
	}
}

func (n *Node) processGain(buf []float32) {
	for {
		m, ok := n.inbox.TryPop()
		if !ok {
			break
		}
		n.gain = m.UpdateGain
	}
	g := n.gain
	for i, x := range buf {
		buf[i] = x * g
	}
}

func (n *Node) processEqualizer(buf []float32, info streaminfo.StreamInfo) {
	if !n.initialized {
		n.biquads = make([]*dsp.Biquad, len(n.bands))
		for i, band := range n.bands {
			bq := dsp.NewBiquad()
			if c, err := band.Coefficients(float64(info.SampleRate)); err == nil {
				bq.SetCoefficients(c)
			}
			n.biquads[i] = bq
		}
		n.initialized = true
	}

	for {
		m, ok := n.inbox.TryPop()
		if !ok {
			break
		}
		if !m.IsBand || m.BandIndex < 0 || m.BandIndex >= len(n.biquads) {
			continue
		}
		n.bands[m.BandIndex] = m.Band
		if c, err := m.Band.Coefficients(float64(info.SampleRate)); err == nil {
			n.biquads[m.BandIndex].SetCoefficients(c)
		}
	}

	for _, bq := range n.biquads {
		bq.Process(buf)
	}
}

// BiquadCount reports how many Biquad sections the node currently
// holds. Zero before the first Process call; len(bands) after.
func (n *Node) BiquadCount() int {
	return len(n.biquads)
}

// Initialized reports whether lazy materialization has happened.
func (n *Node) Initialized() bool {
	return n.initialized
}
