package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{" warn ", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"verbose", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestNew_ProductionWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Writer: &buf, Environment: "production", Level: slog.LevelInfo})

	log.Info("tobacco added", "tobacco_id", 42, "name", "Mango")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "tobacco added", entry["msg"])
	assert.Equal(t, "INFO", entry["level"])
	assert.EqualValues(t, 42, entry["tobacco_id"])
	assert.Equal(t, "Mango", entry["name"])
}

func TestNew_DevelopmentWritesConsole(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Writer: &buf, Environment: "development", NoColor: true})

	log.Info("tab selected", "tab", "mix")

	line := buf.String()
	assert.Contains(t, line, " INF tab selected")
	assert.Contains(t, line, "tab=mix")
	assert.NotContains(t, line, "\033[")
}

func TestConsoleHandler_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Writer: &buf, Format: FormatConsole, Level: slog.LevelWarn, NoColor: true})

	log.Debug("hidden")
	log.Info("hidden too")
	log.Warn("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "WRN shown")
}

func TestConsoleHandler_GroupsAndAttrs(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Writer: &buf, Format: FormatConsole, Level: slog.LevelDebug, NoColor: true})

	log.With("component", "api").WithGroup("req").Debug("request", "method", "GET", "path", "/tobaccos")

	out := buf.String()
	assert.Contains(t, out, "DBG request")
	assert.Contains(t, out, "component=api")
	assert.Contains(t, out, "req.method=GET")
	assert.Contains(t, out, "req.path=/tobaccos")
}

func TestConsoleHandler_NestedGroupValue(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Writer: &buf, Format: FormatConsole, NoColor: true})

	log.Info("bulk", slog.Group("result", "added", 2, "skipped", 1))

	out := buf.String()
	assert.Contains(t, out, "result.added=2")
	assert.Contains(t, out, "result.skipped=1")
}

func TestConsoleHandler_QuotesSpaces(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Writer: &buf, Format: FormatConsole, NoColor: true})

	log.Info("created", "name", "Black Burn", "empty", "")

	out := buf.String()
	assert.Contains(t, out, `name="Black Burn"`)
	assert.Contains(t, out, `empty=""`)
}

func TestConsoleHandler_Color(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Writer: &buf, Format: FormatConsole})

	log.Error("boom")

	assert.True(t, strings.Contains(buf.String(), ansiRed+"ERR"+ansiReset))
}

func TestErr(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Writer: &buf, Format: FormatJSON})

	log.Warn("failed", Err(errors.New("Ошибка сети")))
	log.Warn("fine", Err(nil))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"error":"Ошибка сети"`)
	assert.NotContains(t, lines[1], `"error"`)
}

func TestOrDiscard(t *testing.T) {
	assert.NotNil(t, OrDiscard(nil))

	l := Discard()
	assert.Same(t, l, OrDiscard(l))
	assert.False(t, l.Enabled(t.Context(), slog.LevelError))
}
