package logparse

import (
	"testing"
	"time"
)

func TestClassifyFullLine(t *testing.T) {
	line := `2024-01-15T09:12:44.228734Z  INFO sdk::http_client: request queued`
	rec := Classify(line, 7)

	if rec.LineNumber != 7 {
		t.Errorf("expected line number 7, got %d", rec.LineNumber)
	}
	if rec.Level != "INFO" {
		t.Errorf("expected level INFO, got %s", rec.Level)
	}
	if rec.ISOTimestamp != "2024-01-15T09:12:44.228734Z" {
		t.Errorf("unexpected iso timestamp %q", rec.ISOTimestamp)
	}
	want := time.Date(2024, 1, 15, 9, 12, 44, 228734000, time.UTC).UnixMicro()
	if rec.TimestampMicros != want {
		t.Errorf("expected %d micros, got %d", want, rec.TimestampMicros)
	}
	if rec.DisplayTime != "09:12:44.228734" {
		t.Errorf("unexpected display time %q", rec.DisplayTime)
	}
	if rec.StrippedMessage != "sdk::http_client: request queued" {
		t.Errorf("unexpected stripped message %q", rec.StrippedMessage)
	}
	if rec.RawText != line || rec.Message != line {
		t.Errorf("raw text and message must keep the original line")
	}
}

func TestClassifyNoTrailingZ(t *testing.T) {
	rec := Classify(`2024-01-15T09:12:44.000001 DEBUG sdk: tick`, 1)
	if rec.TimestampMicros == 0 {
		t.Fatal("expected timestamp without Z suffix to parse")
	}
	if rec.Level != "DEBUG" {
		t.Errorf("expected DEBUG, got %s", rec.Level)
	}
}

func TestClassifyLevelPadding(t *testing.T) {
	// Short tokens are padded with extra spaces in the source format.
	rec := Classify(`2024-01-15T09:12:44.228734Z   WARN  sdk: retrying`, 1)
	if rec.Level != "WARN" {
		t.Errorf("expected WARN, got %s", rec.Level)
	}
	if rec.StrippedMessage != "sdk: retrying" {
		t.Errorf("unexpected stripped message %q", rec.StrippedMessage)
	}
}

func TestClassifyFirstLevelWins(t *testing.T) {
	rec := Classify(`2024-01-15T09:12:44.228734Z  INFO sdk: upstream said ERROR in body`, 1)
	if rec.Level != "INFO" {
		t.Errorf("free-text ERROR must not shadow the earlier token, got %s", rec.Level)
	}
}

func TestClassifyNoTimestampNoLevel(t *testing.T) {
	rec := Classify("goroutine dump follows", 3)
	if rec.TimestampMicros != 0 || rec.ISOTimestamp != "" || rec.DisplayTime != "" {
		t.Errorf("expected empty timestamp fields, got %+v", rec)
	}
	if rec.Level != "UNKNOWN" {
		t.Errorf("expected UNKNOWN, got %s", rec.Level)
	}
	if rec.StrippedMessage != "goroutine dump follows" {
		t.Errorf("unexpected stripped message %q", rec.StrippedMessage)
	}
}

func TestClassifyEmptyLine(t *testing.T) {
	rec := Classify("", 1)
	if rec.Level != "UNKNOWN" || rec.TimestampMicros != 0 {
		t.Errorf("empty line must classify to zero-value fields, got %+v", rec)
	}
}

func TestClassifyLevelWithoutTimestamp(t *testing.T) {
	rec := Classify("ERROR something broke", 1)
	if rec.Level != "ERROR" {
		t.Errorf("expected ERROR, got %s", rec.Level)
	}
	if rec.StrippedMessage != "something broke" {
		t.Errorf("unexpected stripped message %q", rec.StrippedMessage)
	}
}
