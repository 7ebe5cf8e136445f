package redact

import (
	"encoding/json"
	"time"
)

// AuditLog records what a redaction pass masked and where. It carries
// positions and previews only, never the secret values.
type AuditLog struct {
	Timestamp time.Time      `json:"timestamp"`
	Masked    []MaskedSecret `json:"masked"`
	ByRule    map[string]int `json:"by_rule,omitempty"`
	ElapsedMS int64          `json:"elapsed_ms"`
}

// MaskedSecret locates one masked value in the original document.
type MaskedSecret struct {
	Rule        string `json:"rule"`
	Description string `json:"description,omitempty"`
	Line        int    `json:"line"`
	Column      int    `json:"column"`
	Length      int    `json:"length"`
	Preview     string `json:"preview"`
}

// Count returns the number of secrets masked.
func (a *AuditLog) Count() int {
	return len(a.Masked)
}

// HasRedactions reports whether the pass masked anything.
func (a *AuditLog) HasRedactions() bool {
	return len(a.Masked) > 0
}

// JSON renders the trail as compact JSON for structured logs.
func (a *AuditLog) JSON() string {
	data, err := json.Marshal(a)
	if err != nil {
		return "{}"
	}
	return string(data)
}
