package logging

import (
	"bytes"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, log.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, log.DebugLevel, ParseLevel(" DEBUG "))
	assert.Equal(t, log.WarnLevel, ParseLevel("warning"))
	assert.Equal(t, log.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, log.InfoLevel, ParseLevel(""))
	assert.Equal(t, log.InfoLevel, ParseLevel("verbose"))
}

func TestPrintfLogsAtDebugLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{Level: "debug", Output: &buf, Prefix: "api"})
	Printf{Logger: logger}.Printf("Response status %d", 200)
	assert.Contains(t, buf.String(), "Response status 200")
	assert.Contains(t, buf.String(), "api")
}

func TestPrintfIsSuppressedAboveDebugLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{Level: "info", Output: &buf})
	Printf{Logger: logger}.Printf("hidden")
	assert.Empty(t, buf.String())
}

func TestIsDebug(t *testing.T) {
	assert.True(t, IsDebug("debug"))
	assert.False(t, IsDebug("info"))
	assert.False(t, IsDebug(""))
}
