package cmd

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"smplay/internal/console"
	"smplay/internal/player"
	"smplay/pkg/audiosink"
	"smplay/pkg/decoders"
)

const paFramesPerBuffer = 512

var (
	deviceIdx   int
	batchFrames int
	verbose     bool
)

// rootCmd represents the base command; smplay has a single surface.
var rootCmd = &cobra.Command{
	Use:   "smplay FILE [FILE...]",
	Short: "Terminal audio player (MP3, FLAC, Ogg Vorbis, WAV)",
	Long: `smplay decodes audio files to PCM and plays them through PortAudio,
one after another, with an in-place transport status line.

Keys during playback:
  space      pause / resume
  n          skip to the next file
  q, Ctrl-C  quit

Examples:
  # Play a few files in order
  smplay intro.ogg song.mp3 outro.flac

  # Play everything in a directory on a specific output device
  smplay -d 0 music/*.flac

  # Smaller decode batches for quicker key response
  smplay -f 1024 song.mp3

Supported Formats:
  MP3:    .mp3
  FLAC:   .flac, .fla
  Vorbis: .ogg
  WAV:    .wav (8/16/24/32-bit PCM)

A file that cannot be opened is reported and skipped; the exit status is
nonzero when any file failed to play.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		os.Exit(play(args))
	},
}

// Execute runs the root command. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().IntVarP(&deviceIdx, "device", "d", 1, "Audio output device index")
	rootCmd.Flags().IntVarP(&batchFrames, "frames", "f", 2048, "Decoded frames per batch")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output (debug logging)")
}

func play(files []string) int {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	if err := audiosink.Initialize(); err != nil {
		slog.Error("Failed to initialize PortAudio", "error", err)
		slog.Error("Hint: Make sure PortAudio is installed on your system")
		return 1
	}
	defer audiosink.Terminate()
	slog.Debug("PortAudio initialized", "version", audiosink.Version())

	keyboard := console.NewKeyboard()
	if err := keyboard.Start(); err != nil {
		slog.Warn("Keyboard control disabled", "error", err)
	}
	defer keyboard.Stop()

	status := console.NewStatusLine()

	runner := &player.Runner{
		OpenDecoder: decoders.NewDecoder,
		OpenSink: func(sampleRate, channels int) (audiosink.Sink, error) {
			sink := audiosink.NewPortAudioSink(deviceIdx, paFramesPerBuffer)
			if err := sink.Open(sampleRate, channels); err != nil {
				return nil, err
			}
			return sink, nil
		},
		Keys:        keyboard,
		Status:      status,
		Out:         os.Stdout,
		ErrOut:      os.Stderr,
		BatchFrames: batchFrames,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		slog.Debug("Signal received, stopping", "signal", sig)
		runner.RequestQuit()
	}()

	played, failed, err := runner.Run(files)
	status.Finish()

	slog.Debug("Run complete", "played", played, "failed", failed)
	if err != nil {
		slog.Error("Run aborted", "error", err)
		return 1
	}
	if failed > 0 {
		return 1
	}
	return 0
}
