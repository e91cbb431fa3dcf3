package audiosink

import (
	"fmt"

	"github.com/drgolem/go-portaudio/portaudio"
)

// Initialize brings up the PortAudio host API. Must be called once before
// any sink is opened; pair with Terminate.
func Initialize() error {
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
	}
	return nil
}

// Terminate shuts down the PortAudio host API.
func Terminate() {
	portaudio.Terminate()
}

// Version returns the PortAudio library version string.
func Version() string {
	return portaudio.GetVersionText()
}

// PortAudioSink plays PCM through a blocking-write PortAudio stream.
// Implements Sink.
type PortAudioSink struct {
	stream          *portaudio.PaStream
	deviceIndex     int
	framesPerBuffer int
	bytesPerFrame   int
	started         bool
}

// NewPortAudioSink creates a sink bound to the given output device index.
func NewPortAudioSink(deviceIndex, framesPerBuffer int) *PortAudioSink {
	return &PortAudioSink{
		deviceIndex:     deviceIndex,
		framesPerBuffer: framesPerBuffer,
	}
}

// Open configures and starts the output stream for 16-bit signed PCM at the
// given rate and channel count. PortAudio opens with exactly the requested
// parameters or fails, which is the negotiation check this contract requires.
func (s *PortAudioSink) Open(sampleRate, channels int) error {
	if sampleRate <= 0 || channels <= 0 {
		return fmt.Errorf("%w: rate=%d channels=%d", ErrUnsupportedParameters, sampleRate, channels)
	}

	outParams := portaudio.PaStreamParameters{
		DeviceIndex:  s.deviceIndex,
		ChannelCount: channels,
		SampleFormat: portaudio.SampleFmtInt16,
	}

	stream, err := portaudio.NewStream(outParams, float64(sampleRate))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnsupportedParameters, err)
	}
	if err := stream.Open(s.framesPerBuffer); err != nil {
		return fmt.Errorf("%w: %v", ErrUnsupportedParameters, err)
	}
	if err := stream.StartStream(); err != nil {
		stream.Close()
		return fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
	}

	s.stream = stream
	s.bytesPerFrame = channels * 2
	s.started = true
	return nil
}

// Write delivers whole frames to the device, blocking until the device has
// accepted them. Trailing bytes short of a frame are not consumed.
func (s *PortAudioSink) Write(p []byte) (int, error) {
	if s.stream == nil {
		return 0, fmt.Errorf("%w: sink not open", ErrWriteFailed)
	}
	frames := len(p) / s.bytesPerFrame
	if frames == 0 {
		return 0, nil
	}
	n := frames * s.bytesPerFrame
	if err := s.stream.Write(frames, p[:n]); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	return n, nil
}

// Stop pauses the stream, leaving it configured for Start.
func (s *PortAudioSink) Stop() error {
	if s.stream == nil || !s.started {
		return nil
	}
	if err := s.stream.StopStream(); err != nil {
		return fmt.Errorf("failed to stop stream: %w", err)
	}
	s.started = false
	return nil
}

// Start resumes a stopped stream.
func (s *PortAudioSink) Start() error {
	if s.stream == nil || s.started {
		return nil
	}
	if err := s.stream.StartStream(); err != nil {
		return fmt.Errorf("failed to start stream: %w", err)
	}
	s.started = true
	return nil
}

// Close stops and releases the stream. Safe to call more than once.
func (s *PortAudioSink) Close() error {
	if s.stream == nil {
		return nil
	}
	if s.started {
		// Stop failures are not actionable here; the stream still has
		// to be closed.
		_ = s.stream.StopStream()
		s.started = false
	}
	err := s.stream.Close()
	s.stream = nil
	if err != nil {
		return fmt.Errorf("failed to close stream: %w", err)
	}
	return nil
}
