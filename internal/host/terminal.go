package host

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"wintitle/internal/hostctx"
	"wintitle/internal/logging"
)

// TerminalSink sets the title of the terminal window writing to w using the
// OSC 0 escape sequence. Terminals do not report their title back, so Title
// returns the last title written.
type TerminalSink struct {
	mu    sync.Mutex
	w     io.Writer
	title string
	set   bool
}

func NewTerminalSink(w io.Writer) *TerminalSink {
	return &TerminalSink{w: w}
}

// Title returns the last written title, or hostctx.ErrNoTitle before the
// first write.
func (s *TerminalSink) Title() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.set {
		return "", hostctx.ErrNoTitle
	}
	return s.title, nil
}

func (s *TerminalSink) SetTitle(title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := fmt.Fprintf(s.w, "\033]0;%s\007", stripControl(title)); err != nil {
		return fmt.Errorf("write terminal title: %w", err)
	}
	logging.HostDebug("terminal title set to %q", title)
	s.title, s.set = title, true
	return nil
}

// stripControl drops control characters, which would end the escape
// sequence early.
func stripControl(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, s)
}
