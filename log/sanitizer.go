package log

import (
	"context"
	"fmt"
	"strings"
)

// controlCharReplacer escapes control characters that enable log injection
// (CWE-117): a raw newline or carriage return inside a field value can forge
// fake log lines in line-oriented and console encoders, misleading incident
// response or polluting an audit trail.
//
// JSON-encoding backends (such as zap's) already escape these inside string
// values, so SanitizeString is primarily a backstop for Logger
// implementations that are not JSON-encoded.
var controlCharReplacer = strings.NewReplacer(
	"\n", `\n`,
	"\r", `\r`,
	"\t", `\t`,
)

// SanitizeString escapes control characters in s.
func SanitizeString(s string) string {
	return controlCharReplacer.Replace(s)
}

// SafeString creates a string field with its value run through
// SanitizeString, for values that may originate outside the process: file
// paths, envelope identifiers, remote error text.
func SafeString(key, value string) Field {
	return Field{Key: key, Value: SanitizeString(value)}
}

// SafeError logs err with explicit production-aware redaction. When
// production is true, only the error's type is logged; otherwise the error's
// text is logged through SanitizeString. Extra fields are attached
// unconditionally.
func SafeError(logger Logger, ctx context.Context, msg string, err error, production bool, fields ...Field) {
	if logger == nil || err == nil {
		return
	}

	if !logger.Enabled(LevelError) {
		return
	}

	if production {
		logger.Log(ctx, LevelError, msg, append(fields, String("error_type", fmt.Sprintf("%T", err)))...)
		return
	}

	logger.Log(ctx, LevelError, msg, append(fields, SafeString("error", err.Error()))...)
}

// SanitizeExternalResponse reduces an external system's response to its
// status code, so callers never log a response body that might carry
// another tenant's data.
func SanitizeExternalResponse(statusCode int) string {
	return fmt.Sprintf("external system returned status %d", statusCode)
}
