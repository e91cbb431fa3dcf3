package console

import (
	"fmt"
	"os"
	"sync"
	"syscall"
	"time"

	"golang.org/x/term"
)

// Keyboard reads single bytes from a raw-mode terminal and exposes them
// through a non-blocking Poll. Start puts stdin into raw mode and spawns a
// reader goroutine; Stop restores the terminal.
type Keyboard struct {
	fd           int
	oldTermState *term.State
	nonblockSet  bool
	keys         chan byte
	stopCh       chan struct{}
	done         chan struct{}
	stopped      sync.Once
	started      bool
}

// NewKeyboard creates a keyboard reader over stdin.
func NewKeyboard() *Keyboard {
	return &Keyboard{
		keys:   make(chan byte, 8),
		stopCh: make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Start puts the terminal in raw mode and begins reading in a goroutine.
// Fails when stdin is not a terminal; the player then runs without
// keyboard control.
func (k *Keyboard) Start() error {
	k.started = true
	k.fd = int(os.Stdin.Fd())

	if !term.IsTerminal(k.fd) {
		close(k.done)
		return fmt.Errorf("stdin is not a terminal")
	}

	oldState, err := term.MakeRaw(k.fd)
	if err != nil {
		close(k.done)
		return fmt.Errorf("failed to set raw mode: %w", err)
	}
	k.oldTermState = oldState

	if err := syscall.SetNonblock(k.fd, true); err != nil {
		_ = term.Restore(k.fd, k.oldTermState)
		k.oldTermState = nil
		close(k.done)
		return fmt.Errorf("failed to set nonblocking stdin: %w", err)
	}
	k.nonblockSet = true

	go k.readLoop()
	return nil
}

func (k *Keyboard) readLoop() {
	defer close(k.done)
	buf := make([]byte, 1)

	for {
		select {
		case <-k.stopCh:
			return
		default:
		}

		n, err := syscall.Read(k.fd, buf)
		if n > 0 {
			select {
			case k.keys <- buf[0]:
			default:
				// Poll side is behind; drop rather than block.
			}
			continue
		}
		if err == syscall.EAGAIN || err == syscall.EWOULDBLOCK {
			time.Sleep(5 * time.Millisecond)
			continue
		}
		if err != nil || n == 0 {
			return
		}
	}
}

// Poll returns one pending keystroke without waiting.
func (k *Keyboard) Poll() (byte, bool) {
	select {
	case b := <-k.keys:
		return b, true
	default:
		return 0, false
	}
}

// Stop terminates the reader goroutine and restores the terminal.
// Safe to call more than once, and after a failed Start.
func (k *Keyboard) Stop() {
	if !k.started {
		return
	}
	k.stopped.Do(func() {
		close(k.stopCh)
	})
	<-k.done
	if k.nonblockSet {
		_ = syscall.SetNonblock(k.fd, false)
		k.nonblockSet = false
	}
	if k.oldTermState != nil {
		_ = term.Restore(k.fd, k.oldTermState)
		k.oldTermState = nil
	}
}
