package logparse

import "errors"

// ParseError reports that the input as a whole is not a recognizable SDK
// debug log. Individual malformed lines never produce it; they are skipped.
type ParseError struct {
	Reason string
}

func (e *ParseError) Error() string { return "logparse: " + e.Reason }

// IsParseError reports whether err is (or wraps) a ParseError.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}
