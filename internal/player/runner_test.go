package player

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"smplay/pkg/audiosink"
	"smplay/pkg/types"
)

// trackingOpener builds fake decoders for known names and remembers what it
// opened so tests can verify release and ordering.
type trackingOpener struct {
	tracks  map[string]*fakeDecoder
	opened  []string
	sinks   []*fakeSink
	sinkErr error
}

func newTrackingOpener(names ...string) *trackingOpener {
	o := &trackingOpener{tracks: make(map[string]*fakeDecoder)}
	for _, n := range names {
		o.tracks[n] = newFakeDecoder(500, 2)
	}
	return o
}

func (o *trackingOpener) openDecoder(fileName string) (types.AudioDecoder, error) {
	o.opened = append(o.opened, fileName)
	dec, ok := o.tracks[fileName]
	if !ok {
		return nil, fmt.Errorf("unsupported file format: %q", fileName)
	}
	return dec, nil
}

func (o *trackingOpener) openSink(sampleRate, channels int) (audiosink.Sink, error) {
	if o.sinkErr != nil {
		return nil, o.sinkErr
	}
	sink := &fakeSink{}
	o.sinks = append(o.sinks, sink)
	return sink, nil
}

func newTestRunner(o *trackingOpener, keys KeySource) (*Runner, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	return &Runner{
		OpenDecoder: o.openDecoder,
		OpenSink:    o.openSink,
		Keys:        keys,
		Status:      &recordStatus{},
		Out:         &out,
		ErrOut:      &errOut,
		BatchFrames: 128,
	}, &out, &errOut
}

func TestRunPlaysFilesInOrder(t *testing.T) {
	opener := newTrackingOpener("a.ogg", "b.mp3")
	runner, out, errOut := newTestRunner(opener, &scriptKeys{})

	played, failed, err := runner.Run([]string{"a.ogg", "b.mp3"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if played != 2 || failed != 0 {
		t.Errorf("played=%d failed=%d, want 2/0", played, failed)
	}
	if errOut.Len() != 0 {
		t.Errorf("unexpected stderr output: %q", errOut.String())
	}
	if got := out.String(); !strings.Contains(got, "a.ogg") || !strings.Contains(got, "b.mp3") {
		t.Errorf("tag lines missing from output: %q", got)
	}

	// Every decoder and sink released exactly once.
	for name, dec := range opener.tracks {
		if dec.closeCalls != 1 {
			t.Errorf("%s: decoder closed %d times, want 1", name, dec.closeCalls)
		}
	}
	for i, sink := range opener.sinks {
		if sink.closeCalls != 1 {
			t.Errorf("sink %d closed %d times, want 1", i, sink.closeCalls)
		}
	}
}

func TestRunContinuesPastUnsupportedFile(t *testing.T) {
	opener := newTrackingOpener("good.ogg")
	runner, _, errOut := newTestRunner(opener, &scriptKeys{})

	played, failed, err := runner.Run([]string{"good.ogg", "bad.xyz"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if played != 1 || failed != 1 {
		t.Errorf("played=%d failed=%d, want 1/1", played, failed)
	}
	if !strings.Contains(errOut.String(), "bad.xyz") {
		t.Errorf("failure not reported on stderr: %q", errOut.String())
	}
	if opener.tracks["good.ogg"].remaining != 0 {
		t.Error("good file did not play to completion")
	}
}

func TestRunQuitStopsRemainingFiles(t *testing.T) {
	opener := newTrackingOpener("one.ogg", "two.ogg")
	runner, _, _ := newTestRunner(opener, &scriptKeys{seq: []byte{'q'}})

	played, failed, err := runner.Run([]string{"one.ogg", "two.ogg"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if failed != 0 {
		t.Errorf("failed=%d, want 0", failed)
	}
	if played != 1 {
		t.Errorf("played=%d, want 1", played)
	}
	if len(opener.opened) != 1 {
		t.Errorf("opened %v, quit should stop before the second file", opener.opened)
	}
	if dec := opener.tracks["one.ogg"]; dec.closeCalls != 1 {
		t.Errorf("quit path did not release the decoder (closes=%d)", dec.closeCalls)
	}
}

func TestRunSkipAdvancesToNextFile(t *testing.T) {
	opener := newTrackingOpener("one.ogg", "two.ogg")
	runner, _, _ := newTestRunner(opener, &scriptKeys{seq: []byte{'n'}})

	played, failed, err := runner.Run([]string{"one.ogg", "two.ogg"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if played != 2 || failed != 0 {
		t.Errorf("played=%d failed=%d, want 2/0", played, failed)
	}
	if opener.tracks["one.ogg"].remaining == 0 {
		t.Error("skipped track played to completion, expected early stop")
	}
	if opener.tracks["two.ogg"].remaining != 0 {
		t.Error("second track did not play to completion after skip")
	}
}

func TestRunSinkFailureIsFatal(t *testing.T) {
	opener := newTrackingOpener("one.ogg", "two.ogg")
	opener.sinkErr = audiosink.ErrUnsupportedParameters
	runner, _, errOut := newTestRunner(opener, &scriptKeys{})

	played, failed, err := runner.Run([]string{"one.ogg", "two.ogg"})
	if !errors.Is(err, audiosink.ErrUnsupportedParameters) {
		t.Fatalf("err = %v, want ErrUnsupportedParameters", err)
	}
	if played != 0 || failed != 1 {
		t.Errorf("played=%d failed=%d, want 0/1", played, failed)
	}
	if len(opener.opened) != 1 {
		t.Errorf("opened %v, sink failure should end the run", opener.opened)
	}
	if dec := opener.tracks["one.ogg"]; dec.closeCalls != 1 {
		t.Errorf("decoder leaked on sink failure (closes=%d)", dec.closeCalls)
	}
	if errOut.Len() == 0 {
		t.Error("sink failure not reported on stderr")
	}
}

func TestRunWriteFailureContinuesRun(t *testing.T) {
	opener := newTrackingOpener("one.ogg", "two.ogg")
	runner, _, errOut := newTestRunner(opener, &scriptKeys{})
	base := opener.openSink
	calls := 0
	runner.OpenSink = func(rate, channels int) (audiosink.Sink, error) {
		sink, err := base(rate, channels)
		calls++
		if calls == 1 {
			sink.(*fakeSink).failWrite = true
		}
		return sink, err
	}

	played, failed, err := runner.Run([]string{"one.ogg", "two.ogg"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if played != 1 || failed != 1 {
		t.Errorf("played=%d failed=%d, want 1/1", played, failed)
	}
	if !strings.Contains(errOut.String(), "one.ogg") {
		t.Errorf("write failure not reported: %q", errOut.String())
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		meta     types.Metadata
		fileName string
		want     string
	}{
		{types.Metadata{Artist: "Artist", Title: "Title"}, "x.ogg", "Artist - Title"},
		{types.Metadata{Title: "Only Title"}, "x.ogg", "Only Title"},
		{types.Metadata{Artist: "Only Artist"}, "x.ogg", "Only Artist"},
		{types.Metadata{}, "dir/fallback.ogg", "fallback.ogg"},
	}
	for _, tt := range tests {
		if got := displayName(tt.meta, tt.fileName); got != tt.want {
			t.Errorf("displayName(%+v, %q) = %q, want %q", tt.meta, tt.fileName, got, tt.want)
		}
	}
}
