// Package redact scrubs detected secrets from compressed text before it is
// handed to an LLM, using the Gitleaks SDK for detection.
package redact

import "errors"

var (
	// ErrInvalidRegex indicates an allowlist regex pattern failed to compile.
	ErrInvalidRegex = errors.New("invalid regex pattern")

	// ErrInvalidTOML indicates an allowlist file could not be parsed.
	ErrInvalidTOML = errors.New("invalid TOML format")
)
