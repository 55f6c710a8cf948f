// Package console provides non-blocking quit-key polling for the plain
// terminal viewer.
package console

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"sync"

	"github.com/charmbracelet/x/term"
	"github.com/muesli/cancelreader"
)

// QuitPoller reports, without blocking, whether the user asked to quit.
type QuitPoller interface {
	// QuitRequested is checked once per tick.
	QuitRequested() bool
	// Close stops polling and restores any terminal state it changed.
	Close() error
	// Raw reports whether the terminal is in raw mode, in which case output
	// needs explicit carriage returns.
	Raw() bool
}

// NewQuitPoller picks a poller for in. A terminal is switched to raw mode and
// watched for 'q' or 'Q' (ctrl+c also quits since raw mode swallows SIGINT);
// anything else gets a poller that never fires.
func NewQuitPoller(in *os.File) (QuitPoller, error) {
	if in == nil || !term.IsTerminal(in.Fd()) {
		return nopPoller{}, nil
	}

	state, err := term.MakeRaw(in.Fd())
	if err != nil {
		return nil, fmt.Errorf("console: entering raw mode: %w", err)
	}
	reader, err := cancelreader.NewReader(in)
	if err != nil {
		_ = term.Restore(in.Fd(), state)
		return nil, fmt.Errorf("console: wrapping stdin: %w", err)
	}

	p := &keyPoller{
		restore: func() error { return term.Restore(in.Fd(), state) },
		reader:  reader,
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go p.watch(reader)
	return p, nil
}

// NewReaderPoller watches an arbitrary reader for quit keys without touching
// terminal modes.
func NewReaderPoller(r io.Reader) QuitPoller {
	p := &keyPoller{
		quit: make(chan struct{}),
		done: make(chan struct{}),
	}
	go p.watch(r)
	return p
}

type keyPoller struct {
	restore func() error
	reader  cancelreader.CancelReader
	quit    chan struct{}
	done    chan struct{}
	once    sync.Once
	closed  sync.Once
}

func (p *keyPoller) watch(r io.Reader) {
	defer close(p.done)
	buf := make([]byte, 16)
	for {
		n, err := r.Read(buf)
		for _, b := range buf[:n] {
			if IsQuitKey(b) {
				p.once.Do(func() { close(p.quit) })
				return
			}
		}
		if err != nil {
			if !errors.Is(err, cancelreader.ErrCanceled) && !errors.Is(err, io.EOF) {
				log.Printf("[console] stdin read failed: %v", err)
			}
			return
		}
	}
}

func (p *keyPoller) QuitRequested() bool {
	select {
	case <-p.quit:
		return true
	default:
		return false
	}
}

func (p *keyPoller) Raw() bool { return p.restore != nil }

func (p *keyPoller) Close() error {
	var err error
	p.closed.Do(func() {
		if p.reader != nil {
			// A reader that cannot be cancelled stays blocked in Read; leave it.
			if p.reader.Cancel() {
				<-p.done
			}
			_ = p.reader.Close()
		}
		if p.restore != nil {
			err = p.restore()
		}
	})
	return err
}

type nopPoller struct{}

func (nopPoller) QuitRequested() bool { return false }
func (nopPoller) Close() error        { return nil }
func (nopPoller) Raw() bool           { return false }

// IsQuitKey reports whether b ends the session: 'q', 'Q' or ctrl+c.
func IsQuitKey(b byte) bool {
	return b == 'q' || b == 'Q' || b == 0x03
}
