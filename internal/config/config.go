// Package config loads the effectsd JSON settings document: target
// latency, device substrings, the mono flag, and the effects chain to
// seed a session with at startup. It only ever runs on the control
// thread — it seeds an AudioSession but never runs on the audio thread.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/winramp/effectsd/internal/dsp"
	"github.com/winramp/effectsd/internal/effect"
)

// ErrConfigError is returned (and then papered over with defaults by
// Load) for a malformed settings file.
var ErrConfigError = fmt.Errorf("config: malformed settings file")

// Devices names the substrings used to resolve input/output devices
// at session construction. A nil pointer means "use the host default".
type Devices struct {
	Input  *string `json:"input" mapstructure:"input"`
	Output *string `json:"output" mapstructure:"output"`
}

// BandConfig is the on-disk shape of a dsp.Band: a tagged object with
// `type` plus the numeric fields relevant to that type.
type BandConfig struct {
	Type      string  `json:"type" mapstructure:"type"`
	Frequency float64 `json:"frequency" mapstructure:"frequency"`
	Q         float64 `json:"q" mapstructure:"q"`
	GainDB    float64 `json:"gain_db" mapstructure:"gain_db"`
}

var bandTypeNames = map[string]dsp.BandType{
	"Peaking":   dsp.Peaking,
	"LowPass":   dsp.LowPass,
	"HighPass":  dsp.HighPass,
	"Notch":     dsp.Notch,
	"LowShelf":  dsp.LowShelf,
	"HighShelf": dsp.HighShelf,
}

// Band converts the on-disk tag into a dsp.Band, rejecting unknown
// type tags.
func (b BandConfig) Band() (dsp.Band, error) {
	typ, ok := bandTypeNames[b.Type]
	if !ok {
		return dsp.Band{}, fmt.Errorf("%w: unknown band type %q", ErrConfigError, b.Type)
	}
	return dsp.Band{Type: typ, Frequency: b.Frequency, Q: b.Q, GainDB: b.GainDB}, nil
}

// EffectConfig is the on-disk shape of one effect.Spec: a tagged
// object, `"Gain"` carrying a scalar, `"Equalizer"` carrying a band list.
type EffectConfig struct {
	Type  string       `json:"type" mapstructure:"type"`
	Gain  float32      `json:"gain" mapstructure:"gain"`
	Bands []BandConfig `json:"bands" mapstructure:"bands"`
}

// Config is the effectsd settings document.
type Config struct {
	LatencyMS float64        `json:"latency" mapstructure:"latency"`
	Devices   *Devices       `json:"devices" mapstructure:"devices"`
	Mono      bool           `json:"mono" mapstructure:"mono"`
	Effects   []EffectConfig `json:"effects" mapstructure:"effects"`

	v  *viper.Viper
	mu sync.RWMutex
}

// Defaults returns the fallback configuration used when no file is
// present or the file on disk is malformed: 256ms latency, no effects.
func Defaults() *Config {
	return &Config{LatencyMS: 256, Mono: true, Effects: nil}
}

// Load reads the settings document at path (or the default search
// path if path is ""). A missing file yields Defaults() with no
// error; a malformed file yields Defaults() plus ErrConfigError so the
// caller can log a note.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("json")

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("effectsd")
		v.AddConfigPath(userConfigDir())
		v.AddConfigPath(".")
	}

	cfg := Defaults()
	cfg.v = v

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok || errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("%w: %v", ErrConfigError, err)
	}

	if err := v.Unmarshal(cfg); err != nil {
		fallback := Defaults()
		fallback.v = v
		return fallback, fmt.Errorf("%w: %v", ErrConfigError, err)
	}

	if err := cfg.validate(); err != nil {
		fallback := Defaults()
		fallback.v = v
		return fallback, fmt.Errorf("%w: %v", ErrConfigError, err)
	}

	return cfg, nil
}

// Watch starts an fsnotify watch on the loaded file and invokes onChange
// with the freshly reloaded Config whenever it changes on disk.
func (c *Config) Watch(onChange func(*Config)) {
	if c.v == nil {
		return
	}
	c.v.WatchConfig()
	c.v.OnConfigChange(func(e fsnotify.Event) {
		c.mu.Lock()
		defer c.mu.Unlock()

		reloaded := Defaults()
		reloaded.v = c.v
		if err := c.v.Unmarshal(reloaded); err != nil || reloaded.validate() != nil {
			return
		}

		c.LatencyMS = reloaded.LatencyMS
		c.Devices = reloaded.Devices
		c.Mono = reloaded.Mono
		c.Effects = reloaded.Effects

		if onChange != nil {
			onChange(c)
		}
	})
}

func (c *Config) validate() error {
	for _, e := range c.Effects {
		switch e.Type {
		case "Gain":
		case "Equalizer":
			for _, b := range e.Bands {
				if _, err := b.Band(); err != nil {
					return err
				}
			}
		default:
			return fmt.Errorf("unknown effect type %q", e.Type)
		}
	}
	return nil
}

// EffectSpecs converts the on-disk effect list into the []effect.Spec
// an AudioSession is constructed with.
func (c *Config) EffectSpecs() ([]effect.Spec, error) {
	specs := make([]effect.Spec, 0, len(c.Effects))
	for _, e := range c.Effects {
		switch e.Type {
		case "Gain":
			specs = append(specs, effect.Spec{Kind: effect.Gain, Gain: e.Gain})
		case "Equalizer":
			bands := make([]dsp.Band, 0, len(e.Bands))
			for _, bc := range e.Bands {
				b, err := bc.Band()
				if err != nil {
					return nil, err
				}
				bands = append(bands, b)
			}
			specs = append(specs, effect.Spec{Kind: effect.Equalizer, Bands: bands})
		default:
			return nil, fmt.Errorf("%w: unknown effect type %q", ErrConfigError, e.Type)
		}
	}
	return specs, nil
}

// InputSubstring returns the configured input-device substring, or ""
// if unset (meaning "use the host default").
func (c *Config) InputSubstring() string {
	if c.Devices == nil || c.Devices.Input == nil {
		return ""
	}
	return *c.Devices.Input
}

// OutputSubstring returns the configured output-device substring, or
// "" if unset.
func (c *Config) OutputSubstring() string {
	if c.Devices == nil || c.Devices.Output == nil {
		return ""
	}
	return *c.Devices.Output
}

func userConfigDir() string {
	if runtime.GOOS == "windows" {
		return filepath.Join(os.Getenv("APPDATA"), "effectsd")
	}
	return filepath.Join(os.Getenv("HOME"), ".config", "effectsd")
}

// MarshalJSON encodes a Config in the settings-document shape without
// going through viper.
func (c Config) MarshalJSON() ([]byte, error) {
	type alias struct {
		LatencyMS float64        `json:"latency"`
		Devices   *Devices       `json:"devices"`
		Mono      bool           `json:"mono"`
		Effects   []EffectConfig `json:"effects"`
	}
	return json.Marshal(alias{c.LatencyMS, c.Devices, c.Mono, c.Effects})
}
