// Package control implements the authoritative UI-side effect list and
// mirrors edits into the audio-side session, the way a graphical
// control surface would bind its widgets. It is the glue between
// whatever renders widgets (Wails, a CLI, a test) and internal/session.
package control

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/winramp/effectsd/internal/diag"
	"github.com/winramp/effectsd/internal/dsp"
	"github.com/winramp/effectsd/internal/effect"
	"github.com/winramp/effectsd/internal/hostaudio"
	"github.com/winramp/effectsd/internal/session"
)

// Surface holds the authoritative []effect.Spec and mirrors every edit
// into the live AudioSession. Index alignment between Specs and the
// session's effect handles is the only coupling between the two. It
// also retains what a device change needs to rebuild the session:
// selecting a device is a construction-time decision in
// internal/session, so ChooseInputDevice/ChooseOutputDevice close the
// current session and open a new one against the chosen device,
// replaying the existing effect chain into it.
type Surface struct {
	sess  *session.AudioSession
	specs []effect.Spec

	ctx       context.Context
	host      hostaudio.Host
	log       zerolog.Logger
	diag      *diag.Counters
	latencyMS float64

	inputSub  string
	outputSub string
}

// NewSurface wraps a live session. It starts with an empty effect list
// and does not pick up effects the session was constructed with;
// AddGain/AddEqualizer add each effect to both the list and the
// session, so the initial chain is added through the Surface on a
// session built without Effects. host, log, diag, and latencyMS are
// retained so ChooseInputDevice/ChooseOutputDevice can rebuild the
// session later; the session's resolved device names are kept as the
// substrings for the device a rebuild does not change.
func NewSurface(ctx context.Context, sess *session.AudioSession, host hostaudio.Host, log zerolog.Logger, counters *diag.Counters, latencyMS float64) *Surface {
	return &Surface{
		ctx:       ctx,
		sess:      sess,
		host:      host,
		log:       log,
		diag:      counters,
		latencyMS: latencyMS,
		inputSub:  sess.InputName(),
		outputSub: sess.OutputName(),
	}
}

// Specs returns the authoritative effect list, in display order.
func (s *Surface) Specs() []effect.Spec {
	return s.specs
}

// AddGain appends a Gain effect.
func (s *Surface) AddGain(gain float32) error {
	return s.add(effect.Spec{Kind: effect.Gain, Gain: gain})
}

// AddEqualizer appends an Equalizer effect with the given bands.
func (s *Surface) AddEqualizer(bands []dsp.Band) error {
	return s.add(effect.Spec{Kind: effect.Equalizer, Bands: bands})
}

func (s *Surface) add(spec effect.Spec) error {
	if _, err := s.sess.AddEffect(spec); err != nil {
		return fmt.Errorf("control: add effect: %w", err)
	}
	s.specs = append(s.specs, spec)
	return nil
}

// RemoveEffect removes the effect at index from both the authoritative
// list and the live session.
func (s *Surface) RemoveEffect(index int) error {
	if index < 0 || index >= len(s.specs) {
		return fmt.Errorf("control: index %d out of range", index)
	}
	if err := s.sess.RemoveEffect(index); err != nil {
		return fmt.Errorf("control: remove effect: %w", err)
	}
	s.specs = append(s.specs[:index], s.specs[index+1:]...)
	return nil
}

// SetGain updates a Gain effect's multiplier in both the authoritative
// model and the live session.
func (s *Surface) SetGain(index int, gain float32) error {
	if index < 0 || index >= len(s.specs) || s.specs[index].Kind != effect.Gain {
		return fmt.Errorf("control: index %d is not a gain effect", index)
	}
	handle, err := s.sess.Effect(index)
	if err != nil {
		return fmt.Errorf("control: set gain: %w", err)
	}
	if !handle.Producer.TryPush(effect.ParamMessage{UpdateGain: gain}) {
		return fmt.Errorf("control: param inbox full")
	}
	s.specs[index].Gain = gain
	return nil
}

// SetBand updates one band of an Equalizer effect in both the
// authoritative model and the live session.
func (s *Surface) SetBand(index, bandIndex int, band dsp.Band) error {
	if index < 0 || index >= len(s.specs) || s.specs[index].Kind != effect.Equalizer {
		return fmt.Errorf("control: index %d is not an equalizer effect", index)
	}
	if bandIndex < 0 || bandIndex >= len(s.specs[index].Bands) {
		return fmt.Errorf("control: band index %d out of range", bandIndex)
	}
	handle, err := s.sess.Effect(index)
	if err != nil {
		return fmt.Errorf("control: set band: %w", err)
	}
	msg := effect.ParamMessage{IsBand: true, BandIndex: bandIndex, Band: band}
	if !handle.Producer.TryPush(msg) {
		return fmt.Errorf("control: param inbox full")
	}
	s.specs[index].Bands[bandIndex] = band
	return nil
}

// ChooseInputDevice rebuilds the session against the input device
// matching substr, preserving the current output device and effect
// chain.
func (s *Surface) ChooseInputDevice(substr string) error {
	return s.rebuild(substr, s.outputSub)
}

// ChooseOutputDevice rebuilds the session against the output device
// matching substr, preserving the current input device and effect
// chain.
func (s *Surface) ChooseOutputDevice(substr string) error {
	return s.rebuild(s.inputSub, substr)
}

// rebuild opens a new AudioSession against the given device substrings
// with the current effect chain replayed in order, then closes the
// previous session. The new session is built before the old one is
// torn down, so a failed device resolution leaves audio running.
func (s *Surface) rebuild(inputSub, outputSub string) error {
	newSess, err := session.New(s.ctx, s.host, session.Config{
		InputSubstring:  inputSub,
		OutputSubstring: outputSub,
		LatencyMS:       s.latencyMS,
		Effects:         s.specs,
	}, s.log, s.diag)
	if err != nil {
		return fmt.Errorf("control: rebuild session: %w", err)
	}

	old := s.sess
	s.sess = newSess
	s.inputSub = inputSub
	s.outputSub = outputSub

	if err := old.Close(); err != nil {
		return fmt.Errorf("control: close previous session: %w", err)
	}
	return nil
}
