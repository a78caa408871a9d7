package logger

import (
	"bytes"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
)

func TestNewWritesToOutput(t *testing.T) {
	var buf bytes.Buffer
	prev := Output
	Output = &buf
	t.Cleanup(func() { Output = prev })

	l := NewWithConfig("build", log.InfoLevel, false, false, log.TextFormatter)
	l.Debug("hidden")
	l.Info("visible", "n", 3)

	out := buf.String()
	assert.Contains(t, out, "build")
	assert.Contains(t, out, "visible")
	assert.NotContains(t, out, "hidden")
}
