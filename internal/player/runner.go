package player

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sync/atomic"

	"smplay/pkg/audiosink"
	"smplay/pkg/types"
)

// Runner plays a list of files in order, one decoder and one sink
// configuration per track. Collaborators are injected so the run loop and
// the engine can be exercised without a real device or terminal.
type Runner struct {
	OpenDecoder func(fileName string) (types.AudioDecoder, error)
	OpenSink    func(sampleRate, channels int) (audiosink.Sink, error)
	Keys        KeySource
	Status      StatusRenderer
	Out         io.Writer // tag lines
	ErrOut      io.Writer // per-file failures

	BatchFrames int

	quit atomic.Bool
}

// RequestQuit asks the run loop to stop. Called from the signal handler
// goroutine; the play loop observes it at the top of its next iteration.
func (r *Runner) RequestQuit() {
	r.quit.Store(true)
}

// Run plays each file in order. A file that cannot be opened is reported
// and skipped; a sink that cannot be configured ends the run, since nothing
// downstream can play without output. Returns how many tracks produced
// audio and how many files failed.
func (r *Runner) Run(files []string) (played, failed int, err error) {
	engine := NewEngine(r.Keys, r.Status, &r.quit, r.BatchFrames)

	for _, fileName := range files {
		if r.quit.Load() {
			break
		}

		ok, fatal := r.playFile(engine, fileName)
		if ok {
			played++
		} else {
			failed++
		}
		if fatal != nil {
			return played, failed, fatal
		}
	}
	return played, failed, nil
}

// playFile plays one file end to end. The decoder and sink are released on
// every exit path. A non-nil fatal error means the run cannot continue.
func (r *Runner) playFile(engine *Engine, fileName string) (ok bool, fatal error) {
	dec, err := r.OpenDecoder(fileName)
	if err != nil {
		fmt.Fprintf(r.ErrOut, "%s: %v\n", fileName, err)
		return false, nil
	}
	defer dec.Close()

	meta := dec.Metadata()
	track := displayName(meta, fileName)
	fmt.Fprintln(r.Out, track)

	rate, channels, bits := dec.GetFormat()
	slog.Debug("track opened",
		"file", filepath.Base(fileName),
		"sample_rate", rate,
		"channels", channels,
		"bits_per_sample", bits,
		"total_frames", meta.TotalFrames)

	sink, err := r.OpenSink(rate, channels)
	if err != nil {
		fmt.Fprintf(r.ErrOut, "%s: %v\n", fileName, err)
		return false, err
	}
	defer sink.Close()

	outcome, perr := engine.PlayTrack(dec, sink, track)
	switch outcome {
	case OutcomeError:
		fmt.Fprintf(r.ErrOut, "%s: %v\n", fileName, perr)
		return false, nil
	case OutcomeQuit:
		slog.Debug("quit requested", "file", filepath.Base(fileName))
	case OutcomeSkip:
		slog.Debug("track skipped", "file", filepath.Base(fileName))
	}
	return true, nil
}

// displayName renders "Artist - Title" when tags are present, falling back
// to whichever half exists, then to the file name.
func displayName(meta types.Metadata, fileName string) string {
	switch {
	case meta.Artist != "" && meta.Title != "":
		return meta.Artist + " - " + meta.Title
	case meta.Title != "":
		return meta.Title
	case meta.Artist != "":
		return meta.Artist
	default:
		return filepath.Base(fileName)
	}
}
