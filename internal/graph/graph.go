// Package graph implements the ordered effect chain that runs inside
// the output device callback: drain topology edits, fill the buffer
// from the input side, then run each effect node in order.
package graph

import (
	"github.com/winramp/effectsd/internal/effect"
	"github.com/winramp/effectsd/internal/fifo"
	"github.com/winramp/effectsd/internal/session/streaminfo"
	"github.com/winramp/effectsd/internal/spsc"
)

// MessageKind discriminates the two GraphMessage variants.
type MessageKind int

const (
	Add MessageKind = iota
	Remove
)

// Message is a topology edit dispatched from the control thread.
type Message struct {
	Kind  MessageKind
	Node  *effect.Node // meaningful for Add
	Index int          // meaningful for Remove
}

// InputNode drains the SampleFIFO into the output buffer, filling any
// shortfall with the last sample it produced (or zero if it has never
// produced one) and reporting it through onUnderrun rather than blocking or
// allocating.
type InputNode struct {
	consumer    *fifo.Consumer
	onUnderrun  func()
	lastSample  float32
}

// NewInputNode wraps a fifo.Consumer. onUnderrun is invoked (not on
// the audio thread's behalf via any blocking call) once per process
// call in which the FIFO could not satisfy the full request.
func NewInputNode(c *fifo.Consumer, onUnderrun func()) *InputNode {
	return &InputNode{consumer: c, onUnderrun: onUnderrun}
}

// Process fills buf from the FIFO, padding shortfalls with the last
// popped sample (or zero, if none has ever been popped).
func (in *InputNode) Process(buf []float32) {
	n := in.consumer.Pop(buf)
	if n < len(buf) {
		fill := float32(0)
		if n > 0 {
			fill = buf[n-1]
		} else {
			fill = in.lastSample
		}
		for i := n; i < len(buf); i++ {
			buf[i] = fill
		}
		if in.onUnderrun != nil {
			in.onUnderrun()
		}
	}
	if len(buf) > 0 {
		in.lastSample = buf[len(buf)-1]
	}
}

// Graph is the ordered effect chain. It owns its InputNode and every
// EffectNode exclusively; nodes are added or removed only via inbox
// messages drained at the top of Process.
type Graph struct {
	Input *InputNode
	nodes []*effect.Node
	inbox *spsc.Consumer[Message]
}

// New constructs a Graph around an already-built InputNode and the
// consumer half of a GraphMessage SPSC. The control side retains the
// matching Producer.
func New(input *InputNode, inbox *spsc.Consumer[Message]) *Graph {
	return &Graph{Input: input, inbox: inbox}
}

// Process drains the topology inbox, fills buf via the InputNode, then
// runs every EffectNode over buf in order.
func (g *Graph) Process(buf []float32, info streaminfo.StreamInfo) {
	for {
		m, ok := g.inbox.TryPop()
		if !ok {
			break
		}
		switch m.Kind {
		case Add:
			g.nodes = append(g.nodes, m.Node)
		case Remove:
			if m.Index < 0 || m.Index >= len(g.nodes) {
				continue
			}
			g.nodes = append(g.nodes[:m.Index], g.nodes[m.Index+1:]...)
		}
	}

	g.Input.Process(buf)

	for _, n := range g.nodes {
		n.Process(buf, info)
	}
}

// NodeCount reports how many effect nodes the graph currently holds.
// Diagnostic only — never called from the audio thread in production.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}
