package vorbis

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jfreymuth/oggvorbis"

	"smplay/pkg/types"
)

// Decoder wraps jfreymuth/oggvorbis to provide Ogg Vorbis decoding
// capabilities. Implements types.AudioDecoder interface.
//
// The native reader yields float32 samples; output is converted to 16-bit
// signed little-endian PCM.
type Decoder struct {
	file     *os.File
	reader   *oggvorbis.Reader
	scratch  []float32
	rate     int
	channels int
	meta     types.Metadata
}

// NewDecoder creates a new Ogg Vorbis decoder
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Open opens and initializes an Ogg Vorbis file for decoding
func (d *Decoder) Open(fileName string) error {
	file, err := os.Open(fileName)
	if err != nil {
		return fmt.Errorf("failed to open Ogg file: %w", err)
	}

	var meta types.Metadata
	if header, err := oggvorbis.GetCommentHeader(file); err == nil {
		applyComments(&meta, header.Comments)
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		file.Close()
		return fmt.Errorf("failed to rewind %s: %w", fileName, err)
	}

	reader, err := oggvorbis.NewReader(file)
	if err != nil {
		file.Close()
		return fmt.Errorf("failed to open file %s: %w", fileName, err)
	}

	meta.SampleRate = reader.SampleRate()
	meta.Channels = reader.Channels()
	meta.TotalFrames = reader.Length()

	d.file = file
	d.reader = reader
	d.rate = meta.SampleRate
	d.channels = meta.Channels
	d.meta = meta

	return nil
}

// applyComments extracts ARTIST/TITLE/ALBUM from key=value comment entries.
// Keys are matched case-insensitively; malformed entries are skipped.
func applyComments(meta *types.Metadata, comments []string) {
	for _, c := range comments {
		idx := strings.IndexByte(c, '=')
		if idx <= 0 {
			continue
		}
		meta.SetTag(c[:idx], c[idx+1:])
	}
}

// Close closes the decoder and releases resources
func (d *Decoder) Close() error {
	if d.file != nil {
		err := d.file.Close()
		d.file = nil
		d.reader = nil
		return err
	}
	return nil
}

// GetFormat returns the audio format (rate, channels, bits per sample)
func (d *Decoder) GetFormat() (int, int, int) {
	if d.reader == nil {
		return 0, 0, 0
	}
	return d.rate, d.channels, 16
}

// Metadata returns the track metadata extracted during Open
func (d *Decoder) Metadata() types.Metadata {
	return d.meta
}

// DecodeSamples decodes the specified number of sample frames into the audio
// buffer. The native read primitive returns short counts mid-stream, so it is
// called in a loop until the request is satisfied or it reports no more data.
// Returns the number of frames decoded; 0 frames means end of stream.
func (d *Decoder) DecodeSamples(samples int, audio []byte) (int, error) {
	if d.reader == nil {
		return 0, fmt.Errorf("decoder not initialized")
	}

	frameBytes := d.channels * 2
	if limit := len(audio) / frameBytes; samples > limit {
		samples = limit
	}
	want := samples * d.channels
	if cap(d.scratch) < want {
		d.scratch = make([]float32, want)
	}
	buf := d.scratch[:want]

	got := 0
	for got < want {
		n, err := d.reader.Read(buf[got:])
		if n > 0 {
			got += n
		}
		if err != nil || n <= 0 {
			break // end of stream or decode error: fail soft
		}
	}

	frames := got / d.channels
	for i := 0; i < frames*d.channels; i++ {
		s := floatToInt16(buf[i])
		audio[i*2] = byte(s)
		audio[i*2+1] = byte(s >> 8)
	}
	return frames, nil
}

func floatToInt16(v float32) int16 {
	s := int32(v * 32767)
	if s > 32767 {
		s = 32767
	} else if s < -32768 {
		s = -32768
	}
	return int16(s)
}
