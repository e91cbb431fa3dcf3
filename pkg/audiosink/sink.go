// Package audiosink wraps the audio output device lifecycle behind a
// narrow contract the playback engine consumes.
package audiosink

import "errors"

var (
	// ErrDeviceUnavailable indicates the output device or its host API
	// could not be brought up at all. Fatal for the whole run.
	ErrDeviceUnavailable = errors.New("audio device unavailable")

	// ErrUnsupportedParameters indicates the device rejected the requested
	// rate/channel configuration. The request is never silently downgraded.
	ErrUnsupportedParameters = errors.New("unsupported device parameters")

	// ErrWriteFailed indicates a device write made no progress mid-track.
	ErrWriteFailed = errors.New("device write failed")
)

// Sink is the audio output device abstraction consuming 16-bit signed
// little-endian interleaved PCM bytes.
type Sink interface {
	// Open configures the device for the given stream parameters.
	// The negotiated format is exactly the requested one or Open fails.
	Open(sampleRate, channels int) error

	// Write delivers PCM bytes to the device, blocking while the device
	// drains. It may write fewer bytes than given; the caller retries
	// the remainder.
	Write(p []byte) (int, error)

	// Stop pauses device activity without closing it.
	Stop() error

	// Start resumes device activity after Stop.
	Start() error

	// Close releases the device. Safe to call more than once.
	Close() error
}
