package types

import (
	"strings"
	"time"
)

// AudioDecoder is the common interface for all audio decoders (MP3, FLAC,
// Vorbis, WAV). All decoders must implement these methods to provide a
// consistent API for decoding audio files into raw PCM samples.
type AudioDecoder interface {
	// Open opens an audio file for decoding and extracts its metadata
	Open(fileName string) error

	// Close closes the decoder and releases resources.
	// Safe to call more than once.
	Close() error

	// GetFormat returns the audio format information
	// Returns: sample rate (Hz), channels (1=mono, 2=stereo), bits per sample
	GetFormat() (rate, channels, bitsPerSample int)

	// DecodeSamples decodes audio samples into the provided buffer
	// Parameters:
	//   samples: number of sample frames to decode (not bytes!)
	//   audio: buffer to write decoded audio data
	// Returns: number of frames actually decoded; 0 means end of stream.
	// Note: Buffer must be large enough: samples * channels * (bitsPerSample/8) bytes
	DecodeSamples(samples int, audio []byte) (int, error)

	// Metadata returns the track metadata extracted during Open
	Metadata() Metadata
}

// Format identifies a supported audio container/codec.
type Format int

const (
	FormatUnknown Format = iota
	FormatMP3
	FormatFLAC
	FormatVorbis
	FormatWAV
)

func (f Format) String() string {
	switch f {
	case FormatMP3:
		return "mp3"
	case FormatFLAC:
		return "flac"
	case FormatVorbis:
		return "vorbis"
	case FormatWAV:
		return "wav"
	default:
		return "unknown"
	}
}

// Metadata holds the uniform per-track record extracted by a decoder.
// Empty tag strings mean the tag was absent; TotalFrames and Bitrate are
// zero when the backend cannot determine them.
type Metadata struct {
	Artist      string
	Title       string
	Album       string
	TotalFrames int64 // total sample frames, 0 if unknown
	SampleRate  int   // Hz
	Channels    int
	Bitrate     int // bits per second, informational only
}

// Duration returns the track length derived from TotalFrames and SampleRate,
// or 0 when either is unknown.
func (m Metadata) Duration() time.Duration {
	if m.TotalFrames <= 0 || m.SampleRate <= 0 {
		return 0
	}
	return time.Duration(m.TotalFrames) * time.Second / time.Duration(m.SampleRate)
}

// SetTag applies one key=value tag pair to the metadata. Keys are matched
// case-insensitively, following the Vorbis comment convention shared by
// FLAC and Ogg streams. Unknown keys are ignored.
func (m *Metadata) SetTag(key, value string) {
	switch strings.ToUpper(strings.TrimSpace(key)) {
	case "ARTIST":
		m.Artist = value
	case "TITLE":
		m.Title = value
	case "ALBUM":
		m.Album = value
	}
}

// TransportState is the player's play/pause/stop status, independent of
// decode progress.
type TransportState int

const (
	Stopped TransportState = iota
	Playing
	Paused
)

func (s TransportState) String() string {
	switch s {
	case Playing:
		return "PLAYING"
	case Paused:
		return "PAUSED"
	default:
		return "STOPPED"
	}
}

// PlaybackStatus holds unified playback information for the status renderer.
type PlaybackStatus struct {
	Track          string // display name: "Artist - Title" or file name
	State          TransportState
	SampleRate     int
	Channels       int
	PositionFrames int64 // frames delivered to the output device
	TotalFrames    int64 // 0 if unknown
}

// Elapsed returns the playback position as wall time.
func (s PlaybackStatus) Elapsed() time.Duration {
	if s.SampleRate <= 0 {
		return 0
	}
	return time.Duration(s.PositionFrames) * time.Second / time.Duration(s.SampleRate)
}

// Total returns the track duration, or 0 when unknown.
func (s PlaybackStatus) Total() time.Duration {
	if s.TotalFrames <= 0 || s.SampleRate <= 0 {
		return 0
	}
	return time.Duration(s.TotalFrames) * time.Second / time.Duration(s.SampleRate)
}
