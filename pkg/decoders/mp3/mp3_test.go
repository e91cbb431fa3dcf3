package mp3

import (
	"testing"
)

func TestNewDecoder(t *testing.T) {
	decoder := NewDecoder()
	if decoder == nil {
		t.Fatal("NewDecoder returned nil")
	}
}

func TestDecoderGetFormat(t *testing.T) {
	decoder := NewDecoder()

	// Before opening a file, format should be zero values
	rate, channels, bits := decoder.GetFormat()
	if rate != 0 || channels != 0 || bits != 0 {
		t.Errorf("Expected zero values before Open, got rate=%d, channels=%d, bits=%d",
			rate, channels, bits)
	}
}

func TestDecoderClose(t *testing.T) {
	decoder := NewDecoder()

	// Should be safe to close without opening
	if err := decoder.Close(); err != nil {
		t.Errorf("Close on unopened decoder failed: %v", err)
	}

	// Should be safe to close multiple times
	if err := decoder.Close(); err != nil {
		t.Errorf("Second Close failed: %v", err)
	}
}

func TestDecodeSamplesWithoutOpen(t *testing.T) {
	decoder := NewDecoder()

	buffer := make([]byte, 1024)
	if _, err := decoder.DecodeSamples(256, buffer); err == nil {
		t.Error("Expected error when decoding without opening file")
	}
}

func TestOpenMissingFile(t *testing.T) {
	decoder := NewDecoder()
	if err := decoder.Open("no-such-file.mp3"); err == nil {
		t.Error("Expected error opening missing file")
	}
	// Close after a failed open must not crash
	if err := decoder.Close(); err != nil {
		t.Errorf("Close after failed Open: %v", err)
	}
}
