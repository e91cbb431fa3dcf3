package mp3

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dhowden/tag"
	gomp3 "github.com/hajimehoshi/go-mp3"

	"smplay/pkg/types"
)

const (
	// go-mp3 always emits signed 16-bit little-endian stereo PCM at the
	// stream's native rate, so one output frame is 4 bytes.
	outChannels   = 2
	bytesPerFrame = outChannels * 2
)

// Decoder wraps go-mp3 to provide MP3 decoding capabilities.
// Implements types.AudioDecoder interface.
type Decoder struct {
	file    *os.File
	decoder *gomp3.Decoder
	rate    int
	meta    types.Metadata
}

// NewDecoder creates a new MP3 decoder
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Open opens and initializes an MP3 file for decoding.
// ID3 tags are read first (v2 frames take precedence over v1 fields),
// then the stream is rewound for PCM decoding. Missing tags are not an error.
func (d *Decoder) Open(fileName string) error {
	file, err := os.Open(fileName)
	if err != nil {
		return fmt.Errorf("failed to open MP3 file: %w", err)
	}

	meta := readTags(file)

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		file.Close()
		return fmt.Errorf("failed to rewind %s: %w", fileName, err)
	}

	decoder, err := gomp3.NewDecoder(file)
	if err != nil {
		file.Close()
		return fmt.Errorf("failed to open file %s: %w", fileName, err)
	}

	meta.SampleRate = decoder.SampleRate()
	meta.Channels = outChannels
	if length := decoder.Length(); length > 0 {
		meta.TotalFrames = length / bytesPerFrame
	}
	if info, err := file.Stat(); err == nil && meta.TotalFrames > 0 {
		seconds := float64(meta.TotalFrames) / float64(meta.SampleRate)
		meta.Bitrate = int(float64(info.Size()) * 8 / seconds)
	}

	d.file = file
	d.decoder = decoder
	d.rate = meta.SampleRate
	d.meta = meta

	return nil
}

// readTags extracts ID3 metadata, preferring v2 frames over v1 fields when
// both are present. Best effort: untagged files yield empty metadata.
func readTags(file *os.File) types.Metadata {
	var meta types.Metadata
	m, err := tag.ReadFrom(file)
	if err != nil {
		return meta
	}
	meta.Artist = m.Artist()
	meta.Title = m.Title()
	meta.Album = m.Album()
	return meta
}

// Close closes the decoder and releases resources
func (d *Decoder) Close() error {
	if d.file != nil {
		err := d.file.Close()
		d.file = nil
		d.decoder = nil
		return err
	}
	return nil
}

// GetFormat returns the audio format (rate, channels, bits per sample)
func (d *Decoder) GetFormat() (int, int, int) {
	if d.decoder == nil {
		return 0, 0, 0
	}
	return d.rate, outChannels, 16
}

// Metadata returns the track metadata extracted during Open
func (d *Decoder) Metadata() types.Metadata {
	return d.meta
}

// DecodeSamples decodes the specified number of sample frames into the audio
// buffer. Returns the number of frames decoded; 0 frames means end of stream.
func (d *Decoder) DecodeSamples(samples int, audio []byte) (int, error) {
	if d.decoder == nil {
		return 0, fmt.Errorf("decoder not initialized")
	}

	want := samples * bytesPerFrame
	if want > len(audio) {
		want = len(audio) - len(audio)%bytesPerFrame
	}

	n, err := io.ReadFull(d.decoder, audio[:want])
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return n / bytesPerFrame, nil
		}
		return n / bytesPerFrame, err
	}
	return n / bytesPerFrame, nil
}
