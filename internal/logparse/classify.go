package logparse

import (
	"regexp"
	"strings"
	"time"

	"github.com/xkura/sdklogview/internal/models"
)

var (
	// Full date+time prefix, fractional seconds up to microsecond precision,
	// optional trailing Z. The SDK writes this at the start of every line.
	timestampRe = regexp.MustCompile(`\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}\.\d{1,6}Z?`)

	// One whitespace-delimited level token. First occurrence wins, so a
	// free-text "ERROR" later in the message cannot shadow the real token.
	levelRe = regexp.MustCompile(`(^|\s)(TRACE|DEBUG|INFO|WARN|ERROR)(\s|$)`)
)

// Classify extracts the timestamp, severity level and stripped message from a
// single log line. It is total: any input, including empty or garbage lines,
// yields a RawLogLine with zero/empty fields rather than an error.
func Classify(line string, lineNumber int) models.RawLogLine {
	rec := models.RawLogLine{
		LineNumber:      lineNumber,
		RawText:         line,
		Level:           models.LevelUnknown,
		Message:         line,
		StrippedMessage: line,
	}

	tsEnd := 0
	if loc := timestampRe.FindStringIndex(line); loc != nil {
		raw := line[loc[0]:loc[1]]
		if t, ok := parseISOTimestamp(raw); ok {
			rec.ISOTimestamp = raw
			rec.TimestampMicros = t.UnixMicro()
			rec.DisplayTime = t.Format("15:04:05.000000")
			tsEnd = loc[1]
		}
	}

	cut := tsEnd
	if m := levelRe.FindStringSubmatchIndex(line); m != nil {
		rec.Level = line[m[4]:m[5]]
		if m[5] > cut {
			cut = m[5]
		}
	}
	if cut > 0 {
		rec.StrippedMessage = strings.TrimLeft(line[cut:], " ")
	}
	return rec
}

func parseISOTimestamp(s string) (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, true
	}
	// No zone suffix: the SDK logs in UTC.
	if t, err := time.Parse("2006-01-02T15:04:05.999999", s); err == nil {
		return t, true
	}
	return time.Time{}, false
}
