package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    zapcore.Level
		wantErr bool
	}{
		{"", zapcore.InfoLevel, false},
		{"DEBUG", zapcore.DebugLevel, false},
		{"warning", zapcore.WarnLevel, false},
		{"error", zapcore.ErrorLevel, false},
		{"trace", zapcore.InfoLevel, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, %v", tt.in, got, err)
		}
	}
}

func TestLevels(t *testing.T) {
	tests := []struct {
		name      string
		opts      Options
		wantDebug bool
		wantInfo  bool
	}{
		{"default", Options{}, false, true},
		{"verbose", Options{Verbose: true}, true, true},
		{"quiet", Options{Quiet: true}, false, false},
		{"verbose wins", Options{Verbose: true, Quiet: true}, true, true},
		{"configured warn", Options{Level: "warn"}, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.opts.Stderr = &buf
			logger, cleanup, err := New(tt.opts)
			if err != nil {
				t.Fatal(err)
			}
			defer cleanup()

			logger.Debug("debug-line")
			logger.Info("info-line")

			out := buf.String()
			if got := strings.Contains(out, "debug-line"); got != tt.wantDebug {
				t.Errorf("debug emitted = %v, want %v\n%s", got, tt.wantDebug, out)
			}
			if got := strings.Contains(out, "info-line"); got != tt.wantInfo {
				t.Errorf("info emitted = %v, want %v\n%s", got, tt.wantInfo, out)
			}
		})
	}
}

func TestFileSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "afj.log")

	var buf bytes.Buffer
	logger, cleanup, err := New(Options{Quiet: true, File: path, Stderr: &buf})
	if err != nil {
		t.Fatal(err)
	}
	logger.Debug("recorded", zap.String("name", "sample.py"))
	cleanup()

	if buf.Len() != 0 {
		t.Errorf("quiet console should be empty, got %q", buf.String())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("log file not written: %v", err)
	}
	var rec map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(data), &rec); err != nil {
		t.Fatalf("file record is not JSON: %v\n%s", err, data)
	}
	if rec["msg"] != "recorded" || rec["name"] != "sample.py" {
		t.Errorf("unexpected record %v", rec)
	}
}

func TestNewRejectsBadLevel(t *testing.T) {
	if _, _, err := New(Options{Level: "chatty"}); err == nil {
		t.Error("New() should reject an unknown level")
	}
}
