// Package player owns the decode-to-device pump and the transport state
// machine that keeps it responsive to keystrokes.
package player

import (
	"fmt"
	"sync/atomic"
	"time"

	"smplay/pkg/audiosink"
	"smplay/pkg/types"
)

// KeySource delivers pending keystrokes without blocking.
type KeySource interface {
	Poll() (byte, bool)
}

// StatusRenderer redraws the transport status after each engine iteration.
type StatusRenderer interface {
	Render(types.PlaybackStatus)
}

// Outcome says why playback of one track ended.
type Outcome int

const (
	// OutcomeDone: the track reached end of stream.
	OutcomeDone Outcome = iota
	// OutcomeSkip: the user skipped to the next track.
	OutcomeSkip
	// OutcomeQuit: the user ended the whole run.
	OutcomeQuit
	// OutcomeError: the device write failed mid-track.
	OutcomeError
)

const (
	defaultBatchFrames = 2048 // ~46ms at 44.1kHz
	pauseInterval      = 50 * time.Millisecond
)

// Engine drives a single-goroutine playback loop: poll one keystroke,
// decode-and-write one batch (or sleep while paused), advance position,
// redraw status. The quit flag is the only state shared with other
// goroutines; the signal handler sets it, this loop only reads it.
type Engine struct {
	keys        KeySource
	status      StatusRenderer
	quit        *atomic.Bool
	batchFrames int
}

// NewEngine creates a playback engine. batchFrames bounds shutdown latency:
// one batch is the longest stretch the loop spends inside a device write.
func NewEngine(keys KeySource, status StatusRenderer, quit *atomic.Bool, batchFrames int) *Engine {
	if batchFrames <= 0 {
		batchFrames = defaultBatchFrames
	}
	return &Engine{
		keys:        keys,
		status:      status,
		quit:        quit,
		batchFrames: batchFrames,
	}
}

// PlayTrack pumps the decoder into the sink until end of stream, a transport
// command, or a write failure. The sink must already be open for the
// decoder's rate and channel count; the caller releases both afterwards.
func (e *Engine) PlayTrack(dec types.AudioDecoder, sink audiosink.Sink, track string) (Outcome, error) {
	rate, channels, _ := dec.GetFormat()
	meta := dec.Metadata()

	frameBytes := channels * 2
	buf := make([]byte, e.batchFrames*frameBytes)

	state := types.Playing
	var pos int64 // frames delivered, advanced only after a successful write

	statusAt := func(s types.TransportState) types.PlaybackStatus {
		return types.PlaybackStatus{
			Track:          track,
			State:          s,
			SampleRate:     rate,
			Channels:       channels,
			PositionFrames: pos,
			TotalFrames:    meta.TotalFrames,
		}
	}
	finish := func(o Outcome, err error) (Outcome, error) {
		e.status.Render(statusAt(types.Stopped))
		return o, err
	}

	for {
		if e.quit.Load() {
			return finish(OutcomeQuit, nil)
		}

		if key, ok := e.keys.Poll(); ok {
			switch key {
			case ' ':
				if state == types.Playing {
					sink.Stop()
					state = types.Paused
				} else {
					sink.Start()
					state = types.Playing
				}
			case 'q', 'Q', 0x03: // raw mode delivers Ctrl-C as a byte
				e.quit.Store(true)
				return finish(OutcomeQuit, nil)
			case 'n', 'N':
				return finish(OutcomeSkip, nil)
			}
		}

		switch state {
		case types.Playing:
			n, err := dec.DecodeSamples(e.batchFrames, buf)
			if n > 0 {
				if werr := writeAll(sink, buf[:n*frameBytes]); werr != nil {
					return finish(OutcomeError, werr)
				}
				pos += int64(n)
			}
			// Decode errors end the track softly: a partial play
			// beats aborting the run.
			if n == 0 || err != nil {
				return finish(OutcomeDone, nil)
			}
		case types.Paused:
			time.Sleep(pauseInterval)
		}

		e.status.Render(statusAt(state))
	}
}

// writeAll retries partial sink writes until the batch is fully delivered.
// Zero progress means the device is gone.
func writeAll(sink audiosink.Sink, p []byte) error {
	for len(p) > 0 {
		n, err := sink.Write(p)
		if err != nil {
			return fmt.Errorf("audio write: %w", err)
		}
		if n <= 0 {
			return fmt.Errorf("audio write stalled: %w", audiosink.ErrWriteFailed)
		}
		p = p[n:]
	}
	return nil
}
