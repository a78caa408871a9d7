// Package cli provides a terminal front end that drives one session for
// debugging key handling in real time.
package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/bastiangx/predict/pkg/host"
	"github.com/bastiangx/predict/pkg/session"
	"github.com/bastiangx/predict/pkg/suggest"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"golang.org/x/term"
)

const eraseLine = "\r\x1b[K"

var (
	promptStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("75"))
	composingStyle = lipgloss.NewStyle().Faint(true)
	selectedStyle  = lipgloss.NewStyle().Reverse(true)
	labelStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("180"))
)

// InputHandler reads raw keys from the terminal, feeds them to a session
// and redraws the current line after every key.
type InputHandler struct {
	session *session.Session
	surface *host.Surface
	in      io.Reader
	out     io.Writer
}

// NewInputHandler creates a handler on stdin/stdout.
func NewInputHandler(pred suggest.Predictor, pageSize int, bindings session.Bindings) *InputHandler {
	surface := host.NewSurface(pageSize)
	return &InputHandler{
		session: session.New(pred, surface, session.WithBindings(bindings)),
		surface: surface,
		in:      os.Stdin,
		out:     os.Stdout,
	}
}

// Start puts the terminal in raw mode and runs until Ctrl+C, Ctrl+D or
// end of input. Without a terminal it reads stdin as is.
func (h *InputHandler) Start() error {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		oldState, err := term.MakeRaw(fd)
		if err != nil {
			return fmt.Errorf("failed to hook into terminal: %w", err)
		}
		defer term.Restore(fd, oldState)
	} else {
		log.Debug("stdin is not a terminal, reading keys as bytes")
	}

	fmt.Fprint(h.out, "predict CLI: Ctrl+W words, Ctrl+E symbols, Ctrl+C to exit\r\n")
	defer fmt.Fprint(h.out, "\r\n")
	return h.run()
}

func (h *InputHandler) run() error {
	h.render()
	buf := make([]byte, 64)
	for {
		n, err := h.in.Read(buf)
		for _, ev := range decodeKeys(buf[:n]) {
			if ev.quit {
				return nil
			}
			h.handle(ev)
			h.render()
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read from standard input: %w", err)
		}
	}
}

// handle applies one key, doing what a text field would for keys the
// session does not consume.
func (h *InputHandler) handle(ev keyEvent) {
	if h.session.HandleKeyEvent(ev.keyval, 0, ev.mods) {
		return
	}
	switch ev.keyval {
	case session.KeyBackSpace:
		h.surface.DeleteLastRune()
	case session.KeyReturn:
		fmt.Fprint(h.out, eraseLine+promptStyle.Render("> ")+currentLine(h.surface.Committed())+"\r\n")
		h.surface.CommitText("\n")
	}
	h.surface.Drain()
}

func (h *InputHandler) render() {
	h.surface.Drain()
	fmt.Fprint(h.out, eraseLine+renderLine(h.surface.View(), currentLine(h.surface.Committed())))
}

func currentLine(committed string) string {
	if i := strings.LastIndexByte(committed, '\n'); i >= 0 {
		return committed[i+1:]
	}
	return committed
}

// renderLine draws the text being typed followed by the composing text and
// the visible candidates.
func renderLine(v host.View, text string) string {
	var b strings.Builder
	b.WriteString(promptStyle.Render("> "))
	b.WriteString(text)
	if v.ComposingVisible {
		b.WriteString(composingStyle.Render(":" + v.Composing))
	}
	if !v.ListVisible || len(v.Rows) == 0 {
		return b.String()
	}

	b.WriteString("   ")
	for i, row := range v.Rows {
		cell := fmt.Sprintf("%d.%s", i+1, row.Text)
		if row.Label != "" {
			cell += " " + labelStyle.Render(row.Label)
		}
		if i == v.Cursor {
			cell = selectedStyle.Render(cell)
		}
		if i > 0 {
			b.WriteString("  ")
		}
		b.WriteString(cell)
	}
	fmt.Fprintf(&b, "  [%d]", v.Page+1)
	return b.String()
}
