package logger

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"
)

const redacted = "[REDACTED]"

// Attribute names that carry credentials or user code, matched on the
// lowercased key. Short words only match exactly so "status_code" survives.
var secretKeys = map[string]bool{
	"code":   true,
	"output": true,
}

var secretKeyFragments = []string{
	"authorization",
	"bearer",
	"body",
	"credential",
	"key",
	"password",
	"payload",
	"secret",
	"text",
	"token",
}

// Values that look like a secret regardless of the attribute name.
var secretValues = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bsk-[A-Za-z0-9_-]{10,}\b`),
	regexp.MustCompile(`(?i)\bbearer\s+[A-Za-z0-9\-._~+/]+=*\b`),
	regexp.MustCompile(`(?i)"credential"\s*:\s*"[^"]*"`),
	regexp.MustCompile(`(?i)\b(api[_-]?key|access[_-]?token|secret|credential)\b\s*[:=]\s*\S+`),
}

// RedactAttr is a slog.ReplaceAttr hook that masks credentials and code.
func RedactAttr(_ []string, a slog.Attr) slog.Attr {
	if secretKey(a.Key) || secretValue(a.Value) {
		return slog.String(a.Key, redacted)
	}
	return a
}

func secretKey(key string) bool {
	key = strings.ToLower(key)
	if secretKeys[key] {
		return true
	}
	for _, frag := range secretKeyFragments {
		if strings.Contains(key, frag) {
			return true
		}
	}
	return false
}

func secretValue(v slog.Value) bool {
	var s string
	switch v.Kind() {
	case slog.KindString:
		s = v.String()
	case slog.KindAny:
		s = fmt.Sprint(v.Any())
	default:
		// Numbers, durations and times never carry secrets.
		return false
	}
	if s == "" {
		return false
	}
	for _, re := range secretValues {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}
