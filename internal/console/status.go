package console

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"smplay/pkg/types"
)

const (
	fallbackWidth = 80
	minBarWidth   = 4
)

// StatusLine rewrites a single transport status line in place.
type StatusLine struct {
	out   io.Writer
	width func() int
}

// NewStatusLine creates a status line writer on stdout, sized to the
// terminal each render so resizes are picked up.
func NewStatusLine() *StatusLine {
	return &StatusLine{
		out: os.Stdout,
		width: func() int {
			w, _, err := term.GetSize(int(os.Stdout.Fd()))
			if err != nil || w <= 0 {
				return fallbackWidth
			}
			return w
		},
	}
}

// Render rewrites the status line for the given playback state.
func (s *StatusLine) Render(st types.PlaybackStatus) {
	fmt.Fprint(s.out, "\r"+FormatStatusLine(s.width(), st))
}

// Finish terminates the in-place line so following output starts clean.
func (s *StatusLine) Finish() {
	fmt.Fprint(s.out, "\r\n")
}

// FormatStatusLine lays out one status line for the given terminal width:
// track name, elapsed/total time, progress bar, and a state suffix when
// not actively playing.
func FormatStatusLine(width int, st types.PlaybackStatus) string {
	times := fmt.Sprintf("%s/%s", FormatTime(st.Elapsed()), formatTotal(st))

	suffix := ""
	switch st.State {
	case types.Paused:
		suffix = " [PAUSED]"
	case types.Stopped:
		suffix = " [STOPPED]"
	}

	// Name, one space, times, one space, bar, suffix. The bar absorbs
	// whatever width is left; the name is truncated before the bar is.
	name := st.Track
	fixed := len(times) + len(suffix) + 2
	barWidth := width - fixed - len(name)
	if barWidth < minBarWidth {
		maxName := width - fixed - minBarWidth
		if maxName < 0 {
			maxName = 0
		}
		if len(name) > maxName {
			name = truncate(name, maxName)
		}
		barWidth = width - fixed - len(name)
	}

	return fmt.Sprintf("%s %s %s%s", name, times, renderBar(barWidth, st), suffix)
}

// renderBar draws a fixed-width progress bar: '=' for played, '>' at the
// current position, '-' for the remainder. Unknown totals render empty.
func renderBar(width int, st types.PlaybackStatus) string {
	inner := width - 2 // brackets
	if inner < 2 {
		return ""
	}

	filled := 0
	if st.TotalFrames > 0 {
		filled = int(int64(inner) * st.PositionFrames / st.TotalFrames)
		// A decoder overrunning its declared length must not break
		// rendering; clamp instead.
		if filled > inner {
			filled = inner
		}
		if filled < 0 {
			filled = 0
		}
	}

	var b strings.Builder
	b.Grow(width)
	b.WriteByte('[')
	b.WriteString(strings.Repeat("=", filled))
	if filled < inner {
		b.WriteByte('>')
		b.WriteString(strings.Repeat("-", inner-filled-1))
	}
	b.WriteByte(']')
	return b.String()
}

func formatTotal(st types.PlaybackStatus) string {
	if st.TotalFrames <= 0 {
		return "--:--"
	}
	return FormatTime(st.Total())
}

// FormatTime renders a duration as MM:SS, minutes unbounded.
func FormatTime(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d / time.Second)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
