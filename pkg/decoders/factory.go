package decoders

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"smplay/pkg/decoders/flac"
	"smplay/pkg/decoders/mp3"
	"smplay/pkg/decoders/vorbis"
	"smplay/pkg/decoders/wav"
	"smplay/pkg/types"
)

// ErrUnsupportedFormat is returned when a file's extension maps to no
// known decoder.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// DetectFormat determines the audio format from the file name's extension,
// case-insensitively. Extension is authoritative: no content sniffing is
// performed, so a mislabeled file fails at open time instead.
func DetectFormat(fileName string) types.Format {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".mp3":
		return types.FormatMP3
	case ".flac", ".fla":
		return types.FormatFLAC
	case ".ogg":
		return types.FormatVorbis
	case ".wav":
		return types.FormatWAV
	default:
		return types.FormatUnknown
	}
}

// NewDecoder creates and opens the appropriate decoder based on file extension.
// Supports .mp3, .flac, .fla, .ogg, and .wav formats.
// Returns an opened decoder ready for use, or an error if the format is
// unsupported or the file cannot be opened.
func NewDecoder(fileName string) (types.AudioDecoder, error) {
	var decoder types.AudioDecoder

	switch DetectFormat(fileName) {
	case types.FormatMP3:
		decoder = mp3.NewDecoder()
	case types.FormatFLAC:
		decoder = flac.NewDecoder()
	case types.FormatVorbis:
		decoder = vorbis.NewDecoder()
	case types.FormatWAV:
		decoder = wav.NewDecoder()
	default:
		return nil, fmt.Errorf("%w: %q (supported: .mp3, .flac, .fla, .ogg, .wav)",
			ErrUnsupportedFormat, filepath.Ext(fileName))
	}

	if err := decoder.Open(fileName); err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", fileName, err)
	}

	return decoder, nil
}
