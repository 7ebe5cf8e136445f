package config

import (
	"encoding/json"
	"fmt"
	"time"
)

// Secret holds a credential loaded from config. Every textual rendering of
// a Secret is masked; only Value hands out the real string. This keeps
// tokens out of logs, JSON dumps, and %v/%#v formatting by construction.
type Secret string

const secretMask = "[REDACTED]"

// Value returns the raw credential.
func (s Secret) Value() string { return string(s) }

// IsSet reports whether a credential was provided.
func (s Secret) IsSet() bool { return s != "" }

// String implements fmt.Stringer, masked.
func (s Secret) String() string {
	if s == "" {
		return ""
	}
	return secretMask
}

// GoString implements fmt.GoStringer, masked. Covers %#v.
func (s Secret) GoString() string {
	return "Secret(" + secretMask + ")"
}

// MarshalText implements encoding.TextMarshaler, masked.
func (s Secret) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// MarshalJSON implements json.Marshaler, masked.
func (s Secret) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalText implements encoding.TextUnmarshaler. Input is the raw
// credential; this is the one direction that is not masked.
func (s *Secret) UnmarshalText(text []byte) error {
	*s = Secret(text)
	return nil
}

// Duration is a time.Duration that unmarshals from strings like "500ms" or
// "2s", the format koanf sees in YAML values and environment variables.
type Duration time.Duration

// Duration converts back to time.Duration.
func (d Duration) Duration() time.Duration { return time.Duration(d) }

// String implements fmt.Stringer.
func (d Duration) String() string { return d.Duration().String() }

// UnmarshalText implements encoding.TextUnmarshaler. Negative durations are
// rejected; no config knob here means "wait a negative amount of time".
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	if parsed < 0 {
		return fmt.Errorf("negative duration %q", text)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// MarshalJSON implements json.Marshaler, rendering "2s" rather than
// nanosecond counts.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}
