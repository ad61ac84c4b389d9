package models

// Severity levels as they appear in SDK debug logs. A line whose level token
// cannot be identified is classified as UNKNOWN rather than dropped.
const (
	LevelTrace   = "TRACE"
	LevelDebug   = "DEBUG"
	LevelInfo    = "INFO"
	LevelWarn    = "WARN"
	LevelError   = "ERROR"
	LevelUnknown = "UNKNOWN"
)

// RawLogLine is a single retained line from an SDK debug log. Line numbers
// are 1-based positions in the original file, counted before blank lines are
// filtered out, so they stay stable across re-parses of the same content.
type RawLogLine struct {
	LineNumber      int    `json:"line_number"`
	RawText         string `json:"raw_text"`
	ISOTimestamp    string `json:"iso_timestamp,omitempty"`
	TimestampMicros int64  `json:"timestamp_micros"`
	DisplayTime     string `json:"display_time,omitempty"`
	Level           string `json:"level"`
	Message         string `json:"message"`
	StrippedMessage string `json:"stripped_message"`
}
