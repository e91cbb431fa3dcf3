package wav

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/youpy/go-wav"

	"smplay/pkg/types"
)

// Decoder wraps go-wav for decoding WAV audio files.
// Implements types.AudioDecoder interface.
//
// Source depths of 8/16/24/32 bits are all narrowed or widened to 16-bit
// signed little-endian output so every track hits the device the same way.
type Decoder struct {
	file     *os.File
	reader   *wav.Reader
	rate     int
	channels int
	srcBits  int
	meta     types.Metadata
}

// NewDecoder creates a new WAV decoder
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Open opens a WAV file for decoding
func (d *Decoder) Open(fileName string) error {
	file, err := os.Open(fileName)
	if err != nil {
		return fmt.Errorf("failed to open WAV file: %w", err)
	}

	reader := wav.NewReader(file)
	format, err := reader.Format()
	if err != nil {
		file.Close()
		return fmt.Errorf("failed to read WAV format: %w", err)
	}

	if format.AudioFormat != wav.AudioFormatPCM {
		file.Close()
		return fmt.Errorf("unsupported WAV format: %d (only PCM supported)", format.AudioFormat)
	}
	switch format.BitsPerSample {
	case 8, 16, 24, 32:
	default:
		file.Close()
		return fmt.Errorf("unsupported bits per sample: %d", format.BitsPerSample)
	}

	d.file = file
	d.reader = reader
	d.rate = int(format.SampleRate)
	d.channels = int(format.NumChannels)
	d.srcBits = int(format.BitsPerSample)
	d.meta = types.Metadata{
		// WAV carries no tags this decoder reads; display falls back to
		// the file name. Total frame count is unknown up front.
		Title:      strings.TrimSuffix(filepath.Base(fileName), filepath.Ext(fileName)),
		SampleRate: d.rate,
		Channels:   d.channels,
	}

	return nil
}

// Close closes the WAV file
func (d *Decoder) Close() error {
	if d.file != nil {
		err := d.file.Close()
		d.file = nil
		d.reader = nil
		return err
	}
	return nil
}

// GetFormat returns the audio format (sample rate, channels, bits per sample)
func (d *Decoder) GetFormat() (rate, channels, bitsPerSample int) {
	if d.reader == nil {
		return 0, 0, 0
	}
	return d.rate, d.channels, 16
}

// Metadata returns the track metadata extracted during Open
func (d *Decoder) Metadata() types.Metadata {
	return d.meta
}

// DecodeSamples decodes up to 'samples' sample frames into the provided
// buffer as 16-bit little-endian PCM. Returns the number of frames decoded;
// 0 frames means end of stream.
func (d *Decoder) DecodeSamples(samples int, audio []byte) (int, error) {
	if d.reader == nil {
		return 0, fmt.Errorf("decoder not initialized")
	}

	frameBytes := d.channels * 2
	if limit := len(audio) / frameBytes; samples > limit {
		samples = limit
	}
	if samples <= 0 {
		return 0, nil
	}

	// ReadSamples reports io.EOF alongside the final short read; treat any
	// empty result as end of stream.
	data, _ := d.reader.ReadSamples(uint32(samples))
	if len(data) == 0 {
		return 0, nil
	}

	for i, sample := range data {
		for ch := 0; ch < d.channels; ch++ {
			v := sample.Values[ch%len(sample.Values)]
			s := toInt16(v, d.srcBits)
			off := (i*d.channels + ch) * 2
			audio[off] = byte(s)
			audio[off+1] = byte(s >> 8)
		}
	}

	return len(data), nil
}

// toInt16 rescales one PCM value from the source bit depth to 16-bit signed.
// 8-bit WAV samples are stored unsigned.
func toInt16(v, bits int) int16 {
	switch bits {
	case 8:
		return int16((v - 128) << 8)
	case 16:
		return int16(v)
	case 24:
		return int16(v >> 8)
	default: // 32
		return int16(v >> 16)
	}
}
