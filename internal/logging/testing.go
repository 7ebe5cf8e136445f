package logging

import (
	"regexp"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// Observe returns a logger that records every entry at or above level, and
// the recorded entries for assertions.
func Observe(level zapcore.Level) (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(level)
	return zap.New(core), logs
}

// LeakCheck fails the test if any recorded entry carries a secret-looking
// field that was not masked, or a secret-shaped value anywhere. It applies
// the same key and pattern lists the scrub encoder uses, so it catches
// entries that bypassed scrubbing (for example via a raw observer logger).
func LeakCheck(tb testing.TB, logs *observer.ObservedLogs) {
	tb.Helper()

	patterns := make([]*regexp.Regexp, 0, len(defaultScrubPatterns))
	for _, p := range defaultScrubPatterns {
		patterns = append(patterns, regexp.MustCompile(p))
	}

	for _, entry := range logs.All() {
		for _, re := range patterns {
			if re.MatchString(entry.Message) {
				tb.Errorf("secret-shaped message: %q", entry.Message)
			}
		}
		for _, field := range entry.Context {
			if field.Type != zapcore.StringType {
				continue
			}
			if secretFieldKey(field.Key) && field.String != "" && !strings.Contains(field.String, "[REDACTED") {
				tb.Errorf("unmasked secret field %q: %q", field.Key, field.String)
			}
			for _, re := range patterns {
				if re.MatchString(field.String) {
					tb.Errorf("secret-shaped value in field %q: %q", field.Key, field.String)
				}
			}
		}
	}
}

func secretFieldKey(key string) bool {
	lower := strings.ToLower(key)
	for _, k := range defaultScrubKeys {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}
