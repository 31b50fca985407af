package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("invalid log line %q: %v", buf.String(), err)
	}
	return entry
}

func TestLoggerCarriesContextFields(t *testing.T) {
	buf := &bytes.Buffer{}
	logg := New(Options{ServiceName: "test", Output: buf})

	ctx := logg.WithRequestID(context.Background(), "req-1")
	ctx = logg.WithCompanyID(ctx, "comp-1")
	logg.Info(ctx, "hello")

	entry := decodeLine(t, buf)
	if entry["request_id"] != "req-1" {
		t.Fatalf("expected request_id req-1, got %v", entry["request_id"])
	}
	if entry["company_id"] != "comp-1" {
		t.Fatalf("expected company_id comp-1, got %v", entry["company_id"])
	}
	if entry["service"] != "test" {
		t.Fatalf("expected service test, got %v", entry["service"])
	}
}

func TestLoggerErrorIncludesStack(t *testing.T) {
	buf := &bytes.Buffer{}
	logg := New(Options{ServiceName: "test", Output: buf})

	logg.Error(context.Background(), "boom", errors.New("kaput"))

	entry := decodeLine(t, buf)
	if entry["error"] != "kaput" {
		t.Fatalf("expected error field, got %v", entry["error"])
	}
	if entry["stack"] == nil || entry["stack"] == "" {
		t.Fatal("expected stack field on error logs")
	}
}

func TestParseLevel(t *testing.T) {
	if got := ParseLevel("debug"); got != zerolog.DebugLevel {
		t.Fatalf("expected debug, got %v", got)
	}
	if got := ParseLevel("  WARN "); got != zerolog.WarnLevel {
		t.Fatalf("expected warn, got %v", got)
	}
	if got := ParseLevel("nonsense"); got != zerolog.InfoLevel {
		t.Fatalf("expected fallback to info, got %v", got)
	}
}
