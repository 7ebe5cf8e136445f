package logging

import (
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap/zapcore"
)

// defaultScrubKeys are field names whose values never reach the log sink.
var defaultScrubKeys = []string{
	"password", "secret", "token", "api_key",
	"authorization", "bearer", "credential", "private_key",
}

// defaultScrubPatterns catch secrets embedded in otherwise harmless values.
var defaultScrubPatterns = []string{
	`(?i)bearer\s+\S+`,
	`(?i)api[_-]?key[=:]\s*\S+`,
}

const scrubPatternMaxLen = 200

// scrubEncoder masks secret-bearing fields before they are encoded. Key
// matches are case-insensitive on the full field name; pattern matches run
// against string values only.
type scrubEncoder struct {
	zapcore.Encoder
	keys     map[string]bool
	patterns []*regexp.Regexp
}

func newScrubEncoder(base zapcore.Encoder, keys, patterns []string) (*scrubEncoder, error) {
	if len(keys) == 0 {
		keys = defaultScrubKeys
	}
	if len(patterns) == 0 {
		patterns = defaultScrubPatterns
	}

	keySet := make(map[string]bool, len(keys))
	for _, k := range keys {
		keySet[strings.ToLower(k)] = true
	}

	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		if len(p) > scrubPatternMaxLen {
			return nil, fmt.Errorf("logging: scrub pattern over %d chars: %q", scrubPatternMaxLen, p)
		}
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("logging: bad scrub pattern %q: %w", p, err)
		}
		compiled = append(compiled, re)
	}

	return &scrubEncoder{Encoder: base, keys: keySet, patterns: compiled}, nil
}

func (e *scrubEncoder) secretKey(key string) bool {
	return e.keys[strings.ToLower(key)]
}

func (e *scrubEncoder) AddString(key, value string) {
	if e.secretKey(key) {
		e.Encoder.AddString(key, "[REDACTED]")
		return
	}
	for _, re := range e.patterns {
		if re.MatchString(value) {
			e.Encoder.AddString(key, "[REDACTED:pattern]")
			return
		}
	}
	e.Encoder.AddString(key, value)
}

func (e *scrubEncoder) AddByteString(key string, value []byte) {
	if e.secretKey(key) {
		e.Encoder.AddByteString(key, []byte("[REDACTED]"))
		return
	}
	e.Encoder.AddByteString(key, value)
}

func (e *scrubEncoder) AddBinary(key string, value []byte) {
	if e.secretKey(key) {
		e.Encoder.AddBinary(key, []byte("[REDACTED]"))
		return
	}
	e.Encoder.AddBinary(key, value)
}

// AddReflected masks the whole value on a key match; it does not descend
// into reflected structs or maps.
func (e *scrubEncoder) AddReflected(key string, value interface{}) error {
	if e.secretKey(key) {
		e.Encoder.AddString(key, "[REDACTED]")
		return nil
	}
	return e.Encoder.AddReflected(key, value)
}

func (e *scrubEncoder) AddArray(key string, arr zapcore.ArrayMarshaler) error {
	if e.secretKey(key) {
		e.Encoder.AddString(key, "[REDACTED]")
		return nil
	}
	return e.Encoder.AddArray(key, arr)
}

func (e *scrubEncoder) AddObject(key string, obj zapcore.ObjectMarshaler) error {
	if e.secretKey(key) {
		e.Encoder.AddString(key, "[REDACTED]")
		return nil
	}
	return e.Encoder.AddObject(key, obj)
}

func (e *scrubEncoder) Clone() zapcore.Encoder {
	return &scrubEncoder{
		Encoder:  e.Encoder.Clone(),
		keys:     e.keys,
		patterns: e.patterns,
	}
}
