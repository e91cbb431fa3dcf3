package wav

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

	rate, channels, bits := decoder.GetFormat()
	if rate != 0 || channels != 0 || bits != 0 {
		t.Errorf("Expected zero values before Open, got rate=%d, channels=%d, bits=%d",
			rate, channels, bits)
	}
}

func TestDecoderClose(t *testing.T) {
	decoder := NewDecoder()

	if err := decoder.Close(); err != nil {
		t.Errorf("Close on unopened decoder failed: %v", err)
	}
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

func TestToInt16(t *testing.T) {
	tests := []struct {
		name string
		v    int
		bits int
		want int16
	}{
		{"8-bit midpoint", 128, 8, 0},
		{"8-bit max", 255, 8, 127 << 8},
		{"8-bit min", 0, 8, -128 << 8},
		{"16-bit passthrough", -1234, 16, -1234},
		{"24-bit narrowed", 0x123456, 24, 0x1234},
		{"32-bit narrowed", 0x12345678, 32, 0x1234},
	}
	for _, tt := range tests {
		if got := toInt16(tt.v, tt.bits); got != tt.want {
			t.Errorf("%s: toInt16(%d, %d) = %d, want %d", tt.name, tt.v, tt.bits, got, tt.want)
		}
	}
}
