package hostaudio

import (
	"context"
	"fmt"

	"github.com/gordonklaus/portaudio"
)

// PortAudioHost implements Host on top of github.com/gordonklaus/portaudio.
type PortAudioHost struct {
	initialized bool
}

// NewPortAudioHost initializes the PortAudio library. Callers must
// Close the returned host once done with it.
func NewPortAudioHost() (*PortAudioHost, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("hostaudio: initialize portaudio: %w", err)
	}
	return &PortAudioHost{initialized: true}, nil
}

func (h *PortAudioHost) Close() error {
	if !h.initialized {
		return nil
	}
	h.initialized = false
	return portaudio.Terminate()
}

func (h *PortAudioHost) EnumerateInputs(ctx context.Context) ([]DeviceInfo, error) {
	devices, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("hostaudio: enumerate devices: %w", err)
	}
	var out []DeviceInfo
	for _, d := range devices {
		if d.MaxInputChannels > 0 {
			out = append(out, DeviceInfo{Name: d.Name, SampleRate: d.DefaultSampleRate, Channels: d.MaxInputChannels})
		}
	}
	return out, nil
}

func (h *PortAudioHost) EnumerateOutputs(ctx context.Context) ([]DeviceInfo, error) {
	devices, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("hostaudio: enumerate devices: %w", err)
	}
	var out []DeviceInfo
	for _, d := range devices {
		if d.MaxOutputChannels > 0 {
			out = append(out, DeviceInfo{Name: d.Name, SampleRate: d.DefaultSampleRate, Channels: d.MaxOutputChannels})
		}
	}
	return out, nil
}

func (h *PortAudioHost) DefaultInput(ctx context.Context) (DeviceInfo, error) {
	d, err := portaudio.DefaultInputDevice()
	if err != nil {
		return DeviceInfo{}, fmt.Errorf("hostaudio: default input device: %w", err)
	}
	return DeviceInfo{Name: d.Name, SampleRate: d.DefaultSampleRate, Channels: d.MaxInputChannels}, nil
}

func (h *PortAudioHost) DefaultOutput(ctx context.Context) (DeviceInfo, error) {
	d, err := portaudio.DefaultOutputDevice()
	if err != nil {
		return DeviceInfo{}, fmt.Errorf("hostaudio: default output device: %w", err)
	}
	return DeviceInfo{Name: d.Name, SampleRate: d.DefaultSampleRate, Channels: d.MaxOutputChannels}, nil
}

// portaudioStream adapts *portaudio.Stream to the Stream interface.
type portaudioStream struct {
	s *portaudio.Stream
}

func (ps *portaudioStream) Start() error { return ps.s.Start() }
func (ps *portaudioStream) Stop() error  { return ps.s.Stop() }
func (ps *portaudioStream) Close() error { return ps.s.Close() }

func (h *PortAudioHost) OpenInputStream(device DeviceInfo, cfg StreamConfig, onBuffer func(in []float32), onError func(error)) (Stream, error) {
	dev, err := resolveDevice(device.Name, true)
	if err != nil {
		return nil, err
	}

	params := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Channels: cfg.Channels,
			Device:   dev,
			Latency:  dev.DefaultLowInputLatency,
		},
		SampleRate:      cfg.SampleRate,
		FramesPerBuffer: cfg.FramesPerBuffer,
	}

	callback := func(in []float32) {
		onBuffer(in)
	}

	s, err := portaudio.OpenStream(params, callback)
	if err != nil {
		if onError != nil {
			onError(err)
		}
		return nil, fmt.Errorf("hostaudio: open input stream: %w", err)
	}
	return &portaudioStream{s: s}, nil
}

func (h *PortAudioHost) OpenOutputStream(device DeviceInfo, cfg StreamConfig, onBuffer func(out []float32), onError func(error)) (Stream, error) {
	dev, err := resolveDevice(device.Name, false)
	if err != nil {
		return nil, err
	}

	params := portaudio.StreamParameters{
		Output: portaudio.StreamDeviceParameters{
			Channels: cfg.Channels,
			Device:   dev,
			Latency:  dev.DefaultLowOutputLatency,
		},
		SampleRate:      cfg.SampleRate,
		FramesPerBuffer: cfg.FramesPerBuffer,
	}

	callback := func(out []float32) {
		onBuffer(out)
	}

	s, err := portaudio.OpenStream(params, callback)
	if err != nil {
		if onError != nil {
			onError(err)
		}
		return nil, fmt.Errorf("hostaudio: open output stream: %w", err)
	}
	return &portaudioStream{s: s}, nil
}

func resolveDevice(name string, input bool) (*portaudio.DeviceInfo, error) {
	if name == "" {
		if input {
			return portaudio.DefaultInputDevice()
		}
		return portaudio.DefaultOutputDevice()
	}
	devices, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("hostaudio: enumerate devices: %w", err)
	}
	for _, d := range devices {
		if d.Name == name {
			if input && d.MaxInputChannels > 0 {
				return d, nil
			}
			if !input && d.MaxOutputChannels > 0 {
				return d, nil
			}
		}
	}
	if input {
		return portaudio.DefaultInputDevice()
	}
	return portaudio.DefaultOutputDevice()
}
