package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
)

type closeRecorder struct {
	bytes.Buffer
	closed bool
	err    error
}

func (c *closeRecorder) Close() error {
	c.closed = true
	return c.err
}

func TestNewLogger(t *testing.T) {
	buf := &bytes.Buffer{}
	logger, err := New(Options{Level: "debug"}, buf)
	if err != nil {
		t.Fatalf("create logger failed: %v", err)
	}
	logger.Debug("hello", "key", "value")
	if err := logger.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if buf.Len() == 0 {
		t.Fatalf("expected log output")
	}
}

func TestNewLoggerJSON(t *testing.T) {
	buf := &bytes.Buffer{}
	logger, err := New(Options{Level: "info", Format: "json"}, buf)
	if err != nil {
		t.Fatalf("create logger failed: %v", err)
	}
	logger.Debug("hidden")
	logger.Info("mkdir", "path", "a/b")
	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("expected one json record, got %q: %v", buf.String(), err)
	}
	if rec["path"] != "a/b" {
		t.Fatalf("unexpected record %v", rec)
	}
}

func TestNewLoggerErrors(t *testing.T) {
	if _, err := New(Options{}); err == nil {
		t.Fatalf("expected error without writers")
	}
	if _, err := New(Options{Format: "xml"}, &bytes.Buffer{}); err == nil {
		t.Fatalf("expected error for unknown format")
	}
}

func TestLoggerClosesWriters(t *testing.T) {
	a := &closeRecorder{}
	b := &closeRecorder{err: errors.New("disk gone")}
	logger, err := New(Options{}, a, b)
	if err != nil {
		t.Fatalf("create logger failed: %v", err)
	}
	logger.Info("both")
	if a.Len() == 0 || b.Len() == 0 {
		t.Fatalf("expected output on both writers")
	}
	if err := logger.Close(); err == nil {
		t.Fatalf("expected close error")
	}
	if !a.closed || !b.closed {
		t.Fatalf("writers not closed")
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
