// Package hostaudio defines the AudioHost capability the session
// package consumes: device enumeration and stream construction,
// abstracted so the audio session never depends directly on a
// particular driver binding.
package hostaudio

import "context"

// DeviceInfo describes one enumerated input or output device.
type DeviceInfo struct {
	Name       string
	SampleRate float64
	Channels   int
}

// StreamConfig is the negotiated configuration a stream is opened with.
type StreamConfig struct {
	SampleRate float64
	Channels   int
	FramesPerBuffer int
}

// Stream is a handle to a running input or output device stream.
type Stream interface {
	Start() error
	Stop() error
	Close() error
}

// Host is the abstract AudioHost capability: device enumeration plus
// stream construction. Callbacks registered with OpenInputStream and
// OpenOutputStream run on the host driver's realtime thread and must
// obey the realtime contract — no allocation, no locking, no blocking.
type Host interface {
	EnumerateInputs(ctx context.Context) ([]DeviceInfo, error)
	EnumerateOutputs(ctx context.Context) ([]DeviceInfo, error)
	DefaultInput(ctx context.Context) (DeviceInfo, error)
	DefaultOutput(ctx context.Context) (DeviceInfo, error)

	// OpenInputStream opens a capture stream against the named device,
	// invoking onBuffer with each captured block and onError on any
	// host-reported stream anomaly.
	OpenInputStream(device DeviceInfo, cfg StreamConfig, onBuffer func(in []float32), onError func(error)) (Stream, error)

	// OpenOutputStream opens a playback stream against the named
	// device, invoking onBuffer to fill each block before it is
	// written to hardware.
	OpenOutputStream(device DeviceInfo, cfg StreamConfig, onBuffer func(out []float32), onError func(error)) (Stream, error)

	Close() error
}
