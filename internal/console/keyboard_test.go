package console

import "testing"

func TestKeyboardPollBeforeStart(t *testing.T) {
	kb := NewKeyboard()
	if b, ok := kb.Poll(); ok {
		t.Errorf("Poll on idle keyboard returned %#x", b)
	}
}

func TestKeyboardStopWithoutStart(t *testing.T) {
	kb := NewKeyboard()
	kb.Stop()
	kb.Stop() // repeated stops must not hang or panic
}

func TestKeyboardPollDrainsChannel(t *testing.T) {
	kb := NewKeyboard()
	kb.keys <- 'q'

	b, ok := kb.Poll()
	if !ok || b != 'q' {
		t.Fatalf("Poll = %#x, %v; want 'q', true", b, ok)
	}
	if _, ok := kb.Poll(); ok {
		t.Error("second Poll returned a key from an empty channel")
	}
}
