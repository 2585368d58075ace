// Package session binds an input device, a SampleFIFO, a Graph, and an
// output device into one AudioSession: the top-level object that owns
// stream lifetimes and exposes the control-side dispatch surface.
package session

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/rs/zerolog"

	"github.com/winramp/effectsd/internal/diag"
	"github.com/winramp/effectsd/internal/effect"
	"github.com/winramp/effectsd/internal/fifo"
	"github.com/winramp/effectsd/internal/graph"
	"github.com/winramp/effectsd/internal/hostaudio"
	"github.com/winramp/effectsd/internal/session/streaminfo"
	"github.com/winramp/effectsd/internal/spsc"
)

// Error kinds for session construction and operation. NoDevice and
// ConfigError are construction-time; StreamError is reported through
// the logger and never crosses the callback boundary as a return.
var (
	ErrNoDevice    = errors.New("session: no matching or default device")
	ErrStreamError = errors.New("session: stream reported an error")
	ErrConfigError = errors.New("session: malformed configuration")
)

// EffectHandle is the control side's view of one live effect: the
// producer for its ParamMessage inbox plus its effect kind.
type EffectHandle struct {
	Producer *spsc.Producer[effect.ParamMessage]
	Kind     effect.Kind
}

// AudioSession binds devices, the FIFO, and the Graph, and owns both
// stream lifetimes.
type AudioSession struct {
	host   hostaudio.Host
	log    zerolog.Logger
	diag   *diag.Counters

	inputName  string
	outputName string

	fifoProducer *fifo.Producer
	graph        *graph.Graph
	graphSend    *spsc.Producer[graph.Message]

	inputStream  hostaudio.Stream
	outputStream hostaudio.Stream

	effects []*EffectHandle
	info    streaminfo.StreamInfo
}

// Config describes the parameters needed to construct a session.
type Config struct {
	InputSubstring  string
	OutputSubstring string
	LatencyMS       float64
	Effects         []effect.Spec
}

// New resolves devices, builds the FIFO and Graph, opens both streams,
// and starts them. On any failure, streams already opened are stopped
// and closed before the error is returned.
func New(ctx context.Context, host hostaudio.Host, cfg Config, log zerolog.Logger, counters *diag.Counters) (*AudioSession, error) {
	inDev, err := resolveDevice(ctx, host, cfg.InputSubstring, true)
	if err != nil {
		return nil, fmt.Errorf("%w: input device %q", ErrNoDevice, cfg.InputSubstring)
	}
	outDev, err := resolveDevice(ctx, host, cfg.OutputSubstring, false)
	if err != nil {
		return nil, fmt.Errorf("%w: output device %q", ErrNoDevice, cfg.OutputSubstring)
	}

	sampleRate := inDev.SampleRate
	if sampleRate <= 0 {
		sampleRate = 48000
	}
	latencySamples := int(math.Round(cfg.LatencyMS / 1000 * sampleRate))

	fifoProducer, fifoConsumer := fifo.New(latencySamples)

	s := &AudioSession{
		host:       host,
		log:        log,
		diag:       counters,
		inputName:  inDev.Name,
		outputName: outDev.Name,
		fifoProducer: fifoProducer,
		info:       streaminfo.StreamInfo{SampleRate: float32(sampleRate)},
	}

	graphSend, graphRecv := spsc.New[graph.Message](64)
	input := graph.NewInputNode(fifoConsumer, func() { counters.AddUnderrun() })
	g := graph.New(input, graphRecv)

	for _, spec := range cfg.Effects {
		producer, node := effect.New(spec)
		if !graphSend.TryPush(graph.Message{Kind: graph.Add, Node: node}) {
			return nil, fmt.Errorf("session: graph inbox full during construction")
		}
		s.effects = append(s.effects, &EffectHandle{Producer: producer, Kind: spec.Kind})
	}

	s.graph = g
	s.graphSend = graphSend

	streamCfg := hostaudio.StreamConfig{SampleRate: sampleRate, Channels: 1, FramesPerBuffer: 0}

	onStreamError := func(err error) {
		counters.AddStreamError()
		log.Error().Err(err).Msg("audio stream error")
	}

	inputStream, err := host.OpenInputStream(inDev, streamCfg, func(in []float32) {
		accepted := fifoProducer.Push(in)
		if accepted < len(in) {
			counters.AddOverrun(uint64(len(in) - accepted))
		}
	}, onStreamError)
	if err != nil {
		return nil, fmt.Errorf("%w: open input stream: %v", ErrStreamError, err)
	}
	s.inputStream = inputStream

	outputStream, err := host.OpenOutputStream(outDev, streamCfg, func(out []float32) {
		g.Process(out, s.info)
	}, onStreamError)
	if err != nil {
		inputStream.Stop()
		inputStream.Close()
		return nil, fmt.Errorf("%w: open output stream: %v", ErrStreamError, err)
	}
	s.outputStream = outputStream

	if err := inputStream.Start(); err != nil {
		inputStream.Close()
		outputStream.Close()
		return nil, fmt.Errorf("%w: start input stream: %v", ErrStreamError, err)
	}
	if err := outputStream.Start(); err != nil {
		inputStream.Stop()
		inputStream.Close()
		outputStream.Close()
		return nil, fmt.Errorf("%w: start output stream: %v", ErrStreamError, err)
	}

	return s, nil
}

func resolveDevice(ctx context.Context, host hostaudio.Host, substring string, input bool) (hostaudio.DeviceInfo, error) {
	var devices []hostaudio.DeviceInfo
	var err error
	if input {
		devices, err = host.EnumerateInputs(ctx)
	} else {
		devices, err = host.EnumerateOutputs(ctx)
	}
	if err == nil && substring != "" {
		for _, d := range devices {
			if strings.Contains(d.Name, substring) {
				return d, nil
			}
		}
	}
	if input {
		return host.DefaultInput(ctx)
	}
	return host.DefaultOutput(ctx)
}

// InputName returns the resolved input device's name.
func (s *AudioSession) InputName() string { return s.inputName }

// OutputName returns the resolved output device's name.
func (s *AudioSession) OutputName() string { return s.outputName }

// Dispatch pushes a topology edit into the graph's inbox.
func (s *AudioSession) Dispatch(m graph.Message) bool {
	return s.graphSend.TryPush(m)
}

// AddEffect appends a new effect to both the audio-side graph and the
// control-side effect list, returning its handle.
func (s *AudioSession) AddEffect(spec effect.Spec) (*EffectHandle, error) {
	producer, node := effect.New(spec)
	if !s.Dispatch(graph.Message{Kind: graph.Add, Node: node}) {
		return nil, fmt.Errorf("session: graph inbox full")
	}
	h := &EffectHandle{Producer: producer, Kind: spec.Kind}
	s.effects = append(s.effects, h)
	return h, nil
}

// RemoveEffect removes the effect at index from both sides.
func (s *AudioSession) RemoveEffect(index int) error {
	if index < 0 || index >= len(s.effects) {
		return fmt.Errorf("session: index %d out of range", index)
	}
	if !s.Dispatch(graph.Message{Kind: graph.Remove, Index: index}) {
		return fmt.Errorf("session: graph inbox full")
	}
	s.effects = append(s.effects[:index], s.effects[index+1:]...)
	return nil
}

// Effect returns the handle for the effect at index.
func (s *AudioSession) Effect(index int) (*EffectHandle, error) {
	if index < 0 || index >= len(s.effects) {
		return nil, fmt.Errorf("session: index %d out of range", index)
	}
	return s.effects[index], nil
}

// Close stops both streams before releasing them, so no device
// callback can run against freed memory.
func (s *AudioSession) Close() error {
	var errs []error
	if s.inputStream != nil {
		if err := s.inputStream.Stop(); err != nil {
			errs = append(errs, err)
		}
		if err := s.inputStream.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if s.outputStream != nil {
		if err := s.outputStream.Stop(); err != nil {
			errs = append(errs, err)
		}
		if err := s.outputStream.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
