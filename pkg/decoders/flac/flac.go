package flac

import (
	"fmt"

	"github.com/drgolem/ringbuffer"
	"github.com/mewkiz/flac"
	"github.com/mewkiz/flac/frame"
	flacmeta "github.com/mewkiz/flac/meta"

	"smplay/pkg/types"
)

// Decoder wraps mewkiz/flac to provide FLAC decoding capabilities.
// Implements types.AudioDecoder interface.
//
// Native FLAC frames carry a stream-defined number of samples per channel,
// so decoded PCM is staged through a ring buffer and handed out in exactly
// the frame counts the caller asks for.
type Decoder struct {
	stream   *flac.Stream
	ring     *ringbuffer.RingBuffer
	scratch  []byte
	rate     int
	channels int
	bps      int // source bits per sample; output is always 16
	meta     types.Metadata
	eos      bool
}

// NewDecoder creates a new FLAC decoder
// Output is 16-bit signed little-endian PCM regardless of source depth.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Open opens and initializes a FLAC file for decoding
func (d *Decoder) Open(fileName string) error {
	stream, err := flac.ParseFile(fileName)
	if err != nil {
		return fmt.Errorf("failed to open file %s: %w", fileName, err)
	}

	info := stream.Info
	if info.NChannels == 0 || info.SampleRate == 0 {
		stream.Close()
		return fmt.Errorf("invalid FLAC stream info in %s", fileName)
	}

	meta := types.Metadata{
		SampleRate:  int(info.SampleRate),
		Channels:    int(info.NChannels),
		TotalFrames: int64(info.NSamples),
	}
	for _, block := range stream.Blocks {
		if vc, ok := block.Body.(*flacmeta.VorbisComment); ok {
			for _, t := range vc.Tags {
				meta.SetTag(t[0], t[1])
			}
		}
	}

	// Ring sized to hold several maximal frames so a single ParseNext
	// always fits next to whatever the caller has not drained yet.
	ringSize := uint64(int(info.BlockSizeMax) * int(info.NChannels) * 2 * 4)
	if ringSize < 64*1024 {
		ringSize = 64 * 1024
	}

	d.stream = stream
	d.ring = ringbuffer.New(ringSize)
	d.rate = meta.SampleRate
	d.channels = meta.Channels
	d.bps = int(info.BitsPerSample)
	d.meta = meta
	d.eos = false

	return nil
}

// Close closes the decoder and releases resources
func (d *Decoder) Close() error {
	if d.stream != nil {
		err := d.stream.Close()
		d.stream = nil
		d.ring = nil
		return err
	}
	return nil
}

// GetFormat returns the audio format (rate, channels, bits per sample)
func (d *Decoder) GetFormat() (int, int, int) {
	if d.rate == 0 {
		return 0, 0, 0
	}
	return d.rate, d.channels, 16
}

// Metadata returns the track metadata extracted during Open
func (d *Decoder) Metadata() types.Metadata {
	return d.meta
}

// DecodeSamples decodes the specified number of sample frames into the audio
// buffer. Returns the number of frames decoded; 0 frames means end of stream.
// Read errors on the native stream end the track rather than propagate.
func (d *Decoder) DecodeSamples(samples int, audio []byte) (int, error) {
	if d.stream == nil {
		return 0, fmt.Errorf("decoder not initialized")
	}

	frameBytes := d.channels * 2
	want := samples * frameBytes
	if want > len(audio) {
		want = len(audio) - len(audio)%frameBytes
	}
	// Cap at half the ring so one more native frame always fits while
	// refilling, whatever batch size the caller runs with.
	if limit := int(d.ring.Size()) / 2; want > limit {
		want = limit - limit%frameBytes
	}

	for !d.eos && int(d.ring.AvailableRead()) < want {
		f, err := d.stream.ParseNext()
		if err != nil {
			// io.EOF or a corrupt frame: play out what is buffered.
			d.eos = true
			break
		}
		if err := d.bufferFrame(f.Subframes); err != nil {
			d.eos = true
			break
		}
	}

	avail := int(d.ring.AvailableRead())
	if avail == 0 {
		return 0, nil
	}
	toRead := want
	if avail < toRead {
		toRead = avail - avail%frameBytes
	}
	if toRead == 0 {
		return 0, nil
	}

	n, err := d.ring.Read(audio[:toRead])
	if err != nil {
		return 0, nil
	}
	return n / frameBytes, nil
}

// bufferFrame interleaves one native frame's per-channel samples as 16-bit
// little-endian PCM and appends them to the ring buffer.
func (d *Decoder) bufferFrame(subframes []*frame.Subframe) error {
	if len(subframes) < d.channels {
		return nil
	}
	nsamples := len(subframes[0].Samples)
	needed := nsamples * d.channels * 2
	if cap(d.scratch) < needed {
		d.scratch = make([]byte, needed)
	}
	buf := d.scratch[:needed]

	shiftDown := 0
	shiftUp := 0
	if d.bps > 16 {
		shiftDown = d.bps - 16
	} else if d.bps < 16 {
		shiftUp = 16 - d.bps
	}

	for i := 0; i < nsamples; i++ {
		for ch := 0; ch < d.channels; ch++ {
			v := subframes[ch].Samples[i]
			v >>= shiftDown
			v <<= shiftUp
			off := (i*d.channels + ch) * 2
			buf[off] = byte(v)
			buf[off+1] = byte(v >> 8)
		}
	}

	_, err := d.ring.Write(buf)
	return err
}
