package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "default config", cfg: DefaultConfig()},
		{name: "text format", cfg: Config{Level: "debug", Format: "text"}},
		{name: "console format", cfg: Config{Level: "info", Format: "console"}},
		{name: "empty format is json", cfg: Config{}},
		{name: "unknown format", cfg: Config{Format: "xml"}, wantErr: true},
		{name: "unknown level", cfg: Config{Level: "loud"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := New(tt.cfg)
			if tt.wantErr {
				if err == nil {
					t.Fatal("New() expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			if l == nil {
				t.Fatal("New() returned nil logger")
			}
		})
	}
}

func TestLogger_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Config{Level: "debug", Format: "json", Output: &buf})
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		level   string
		logFunc func(string, ...any)
	}{
		{"DEBUG", l.Debug},
		{"INFO", l.Info},
		{"WARN", l.Warn},
		{"ERROR", l.Error},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			buf.Reset()
			tt.logFunc("test message", "component", "test-value")

			var entry map[string]any
			if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
				t.Fatalf("output is not JSON: %v (%s)", err, buf.String())
			}
			if entry["level"] != tt.level {
				t.Errorf("level = %v, want %s", entry["level"], tt.level)
			}
			if entry["msg"] != "test message" || entry["component"] != "test-value" {
				t.Errorf("entry = %v", entry)
			}
		})
	}
}

func TestSetLevel(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Config{Level: "info", Output: &buf})
	if err != nil {
		t.Fatal(err)
	}
	defer SetLevel("info")

	l.Debug("hidden")
	if buf.Len() != 0 {
		t.Fatalf("debug logged at info level: %s", buf.String())
	}

	if err := SetLevel("debug"); err != nil {
		t.Fatal(err)
	}
	if GetLevel() != "debug" {
		t.Errorf("GetLevel() = %q, want debug", GetLevel())
	}
	l.Debug("visible")
	if !strings.Contains(buf.String(), "visible") {
		t.Error("debug not logged after SetLevel(debug)")
	}

	if err := SetLevel("bogus"); err == nil {
		t.Error("SetLevel(bogus) should fail")
	}
	if GetLevel() != "debug" {
		t.Errorf("level changed by invalid SetLevel: %q", GetLevel())
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"", slog.LevelInfo},
		{"INFO", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{" error ", slog.LevelError},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
		}
	}
}

func TestDiscard(t *testing.T) {
	l := Discard()
	l.Error("dropped")
	if l.Enabled(context.Background(), slog.LevelError) {
		t.Error("Discard logger should not be enabled at error level")
	}
}
