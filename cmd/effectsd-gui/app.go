package main

import (
	"context"
	"fmt"

	"github.com/wailsapp/wails/v2/pkg/runtime"

	"github.com/winramp/effectsd/internal/config"
	"github.com/winramp/effectsd/internal/control"
	"github.com/winramp/effectsd/internal/diag"
	"github.com/winramp/effectsd/internal/dsp"
	"github.com/winramp/effectsd/internal/effect"
	"github.com/winramp/effectsd/internal/hostaudio"
	"github.com/winramp/effectsd/internal/logger"
	"github.com/winramp/effectsd/internal/session"
)

// App is the Wails-bound control surface: one top-level window with
// two device dropdowns, a collapsing-header list per effect, and
// Add/Remove buttons.
type App struct {
	ctx     context.Context
	cfg     *config.Config
	diag    *diag.Counters
	host    *hostaudio.PortAudioHost
	sess    *session.AudioSession
	surface *control.Surface
}

// NewApp creates a new App application struct.
func NewApp(cfg *config.Config) *App {
	return &App{cfg: cfg, diag: &diag.Counters{}}
}

// startup is called when the app starts; the context is saved so we
// can call runtime methods from elsewhere.
func (a *App) startup(ctx context.Context) {
	a.ctx = ctx

	host, err := hostaudio.NewPortAudioHost()
	if err != nil {
		logger.Fatal("failed to initialize audio host", logger.Error(err))
		return
	}
	a.host = host

	specs, err := a.cfg.EffectSpecs()
	if err != nil {
		logger.Warn("falling back to empty effect chain", logger.Error(err))
		specs = nil
	}

	sess, err := session.New(ctx, host, session.Config{
		InputSubstring:  a.cfg.InputSubstring(),
		OutputSubstring: a.cfg.OutputSubstring(),
		LatencyMS:       a.cfg.LatencyMS,
	}, logger.Get().Zerolog(), a.diag)
	if err != nil {
		logger.Fatal("failed to start audio session", logger.Error(err))
		return
	}
	a.sess = sess
	a.surface = control.NewSurface(ctx, sess, host, logger.Get().Zerolog(), a.diag, a.cfg.LatencyMS)

	for _, spec := range specs {
		if err := a.addSpec(spec); err != nil {
			logger.Warn("failed to add configured effect", logger.Error(err))
		}
	}

	runtime.EventsEmit(a.ctx, "session:ready", map[string]string{
		"input":  sess.InputName(),
		"output": sess.OutputName(),
	})

	logger.Info("effectsd UI started")
}

func (a *App) addSpec(spec effect.Spec) error {
	switch spec.Kind {
	case effect.Gain:
		return a.surface.AddGain(spec.Gain)
	case effect.Equalizer:
		return a.surface.AddEqualizer(spec.Bands)
	}
	return fmt.Errorf("unknown effect kind")
}

// shutdown is called when the app is closing.
func (a *App) shutdown(ctx context.Context) {
	if a.sess != nil {
		a.sess.Close()
	}
	if a.host != nil {
		a.host.Close()
	}
	logger.Info("effectsd UI shutdown")
}

// InputDevices lists enumerated input devices for the dropdown.
func (a *App) InputDevices() []string {
	devices, err := a.host.EnumerateInputs(a.ctx)
	if err != nil {
		logger.ErrorLog("failed to enumerate input devices", logger.Error(err))
		return nil
	}
	names := make([]string, len(devices))
	for i, d := range devices {
		names[i] = d.Name
	}
	return names
}

// OutputDevices lists enumerated output devices for the dropdown.
func (a *App) OutputDevices() []string {
	devices, err := a.host.EnumerateOutputs(a.ctx)
	if err != nil {
		logger.ErrorLog("failed to enumerate output devices", logger.Error(err))
		return nil
	}
	names := make([]string, len(devices))
	for i, d := range devices {
		names[i] = d.Name
	}
	return names
}

// Effects returns the authoritative effect list for rendering.
func (a *App) Effects() []effect.Spec {
	return a.surface.Specs()
}

// AddGain appends a Gain effect.
func (a *App) AddGain(gain float32) error {
	return a.surface.AddGain(gain)
}

// AddEqualizer appends an Equalizer effect with the given bands.
func (a *App) AddEqualizer(bands []dsp.Band) error {
	return a.surface.AddEqualizer(bands)
}

// RemoveEffect removes the effect at index.
func (a *App) RemoveEffect(index int) error {
	return a.surface.RemoveEffect(index)
}

// SetGain updates a Gain effect's multiplier.
func (a *App) SetGain(index int, gain float32) error {
	return a.surface.SetGain(index, gain)
}

// SetBand updates one band of an Equalizer effect.
func (a *App) SetBand(index, bandIndex int, band dsp.Band) error {
	return a.surface.SetBand(index, bandIndex, band)
}

// ChooseInputDevice rebuilds the session against the input device
// whose name contains substr.
func (a *App) ChooseInputDevice(substr string) error {
	return a.surface.ChooseInputDevice(substr)
}

// ChooseOutputDevice rebuilds the session against the output device
// whose name contains substr.
func (a *App) ChooseOutputDevice(substr string) error {
	return a.surface.ChooseOutputDevice(substr)
}
