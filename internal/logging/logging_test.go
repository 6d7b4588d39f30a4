package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/seenimoa/finratios/internal/config"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"INFO", zerolog.InfoLevel},
		{" warn ", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"", zerolog.InfoLevel},
		{"verbose", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q): got %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestSetupJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup(config.LoggingConfig{Level: "info", Format: "json"}, &buf)

	logger.Debug().Msg("hidden")
	logger.Info().Str("company", "GOOGLE").Msg("run complete")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d: %q", len(lines), buf.String())
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if entry["message"] != "run complete" || entry["company"] != "GOOGLE" {
		t.Errorf("unexpected entry: %v", entry)
	}
}

func TestSetupText(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup(config.LoggingConfig{Level: "debug", Format: "text"}, &buf)
	logger.Debug().Msg("pivoted statement")

	out := buf.String()
	if !strings.Contains(out, "pivoted statement") {
		t.Errorf("expected message in output, got %q", out)
	}
	if strings.HasPrefix(strings.TrimSpace(out), "{") {
		t.Errorf("text format should not be JSON: %q", out)
	}
}

func TestComponent(t *testing.T) {
	var buf bytes.Buffer
	Setup(config.LoggingConfig{Level: "info", Format: "json"}, &buf)
	l := Component("sink")
	l.Info().Msg("wrote")
	if !strings.Contains(buf.String(), `"component":"sink"`) {
		t.Errorf("expected component field, got %q", buf.String())
	}
}

func TestSetLevelAppliesToExistingLoggers(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup(config.LoggingConfig{Level: "info", Format: "json"}, &buf)
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	if got := SetLevel("debug"); got != zerolog.DebugLevel {
		t.Fatalf("SetLevel(debug) = %v", got)
	}
	logger.Debug().Msg("now visible")
	if !strings.Contains(buf.String(), "now visible") {
		t.Errorf("debug line missing after SetLevel(debug): %q", buf.String())
	}

	buf.Reset()
	SetLevel("error")
	logger.Warn().Msg("suppressed")
	if buf.Len() != 0 {
		t.Errorf("warn line written at error level: %q", buf.String())
	}
}
