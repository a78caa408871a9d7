package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/bastiangx/predict/pkg/dictionary"
	"github.com/bastiangx/predict/pkg/host"
	"github.com/bastiangx/predict/pkg/session"
	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	log.SetLevel(log.FatalLevel)
}

type stubPredictor struct{}

func (stubPredictor) Words(prefix string) ([]string, error) {
	var out []string
	for _, w := range []string{"car", "case", "cat"} {
		if strings.HasPrefix(w, prefix) {
			out = append(out, w)
		}
	}
	return out, nil
}

func (stubPredictor) Symbols(prefix string) ([]dictionary.Symbol, error) {
	if strings.HasPrefix("smile", prefix) {
		return []dictionary.Symbol{{Shortcode: "smile", Text: "\U0001F604"}}, nil
	}
	return nil, nil
}

func TestDecodeKeys(t *testing.T) {
	testCases := []struct {
		input    string
		expected []keyEvent
	}{
		{"ab", []keyEvent{{keyval: 'a'}, {keyval: 'b'}}},
		{"\x05", []keyEvent{{keyval: 'e', mods: session.ControlMask}}},
		{"\x17", []keyEvent{{keyval: 'w', mods: session.ControlMask}}},
		{"\r\x7f", []keyEvent{{keyval: session.KeyReturn}, {keyval: session.KeyBackSpace}}},
		{"\x1b", []keyEvent{{keyval: session.KeyEscape}}},
		{"\x1b[A\x1b[B", []keyEvent{{keyval: session.KeyUp}, {keyval: session.KeyDown}}},
		{"\x1b[5~\x1b[6~", []keyEvent{{keyval: session.KeyPageUp}, {keyval: session.KeyPageDown}}},
		{"\x1b[1;5C", nil},
		{"\x1b[", nil},
		{"é", nil},
		{"\x03", []keyEvent{{quit: true}}},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			assert.Equal(t, tc.expected, decodeKeys([]byte(tc.input)))
		})
	}
}

func newTestHandler(input string) (*InputHandler, *bytes.Buffer) {
	h := NewInputHandler(stubPredictor{}, 5, session.DefaultBindings())
	var out bytes.Buffer
	h.in = strings.NewReader(input)
	h.out = &out
	return h, &out
}

func TestRunCompletesWord(t *testing.T) {
	h, _ := newTestHandler("ca\x17\x1b[B\r")
	require.NoError(t, h.run())
	assert.Equal(t, "case", h.surface.Committed())
}

func TestRunCommitsSymbol(t *testing.T) {
	h, out := newTestHandler("hi \x05smi\r")
	require.NoError(t, h.run())
	assert.Equal(t, "hi \U0001F604", h.surface.Committed())
	assert.Contains(t, out.String(), "smile")
}

func TestRunPassesThroughUnhandledKeys(t *testing.T) {
	h, out := newTestHandler("abc\x7f\rx\x03ignored")
	require.NoError(t, h.run())
	assert.Equal(t, "ab\nx", h.surface.Committed())
	assert.Contains(t, out.String(), "ab\r\n")
}

func TestRenderLine(t *testing.T) {
	line := renderLine(host.View{
		ListVisible:      true,
		Rows:             []host.Row{{Text: "smile", Label: "\U0001F604"}, {Text: "smirk"}},
		Cursor:           1,
		Page:             0,
		Composing:        "smi",
		ComposingVisible: true,
	}, "hello ")

	assert.Contains(t, line, "hello ")
	assert.Contains(t, line, ":smi")
	assert.Contains(t, line, "1.smile")
	assert.Contains(t, line, "\U0001F604")
	assert.Contains(t, line, "2.smirk")
	assert.Contains(t, line, "[1]")

	assert.NotContains(t, renderLine(host.View{}, "x"), "[1]")
}
