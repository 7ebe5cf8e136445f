package redact

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Result contains redacted content and its audit trail.
type Result struct {
	Text  string
	Audit AuditLog
}

// Redact detects secrets in content and replaces each with a
// [REDACTED:rule-id:preview] marker. The marker keeps enough context for a
// reader to recognize what was removed without exposing the value.
func (r *Redactor) Redact(content string) Result {
	start := time.Now()

	findings := r.Detect(content)
	audit := buildAuditLog(findings, time.Since(start))

	if len(findings) == 0 {
		return Result{Text: content, Audit: audit}
	}

	return Result{
		Text:  replaceFindings(content, findings),
		Audit: audit,
	}
}

// replaceFindings replaces secrets with redaction markers. Findings are
// applied in reverse document order so earlier replacements do not shift
// the positions of later ones.
func replaceFindings(content string, findings []Finding) string {
	sorted := make([]Finding, len(findings))
	copy(sorted, findings)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Line != sorted[j].Line {
			return sorted[i].Line > sorted[j].Line
		}
		return sorted[i].StartCol > sorted[j].StartCol
	})

	lines := strings.Split(content, "\n")

	for _, finding := range sorted {
		if finding.Line < 1 || finding.Line > len(lines) {
			continue
		}

		line := lines[finding.Line-1]
		marker := fmt.Sprintf("[REDACTED:%s:%s]", finding.RuleID, preview(finding.Match, 4))

		if finding.StartCol >= 0 && finding.EndCol <= len(line) {
			lines[finding.Line-1] = line[:finding.StartCol] + marker + line[finding.EndCol:]
		}
	}

	return strings.Join(lines, "\n")
}

// preview returns the first n bytes of a secret for the audit trail.
func preview(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// buildAuditLog constructs an audit log from findings and timing.
func buildAuditLog(findings []Finding, elapsed time.Duration) AuditLog {
	masked := make([]MaskedSecret, 0, len(findings))
	byRule := make(map[string]int)

	for _, f := range findings {
		masked = append(masked, MaskedSecret{
			Rule:        f.RuleID,
			Description: f.RuleDesc,
			Line:        f.Line,
			Column:      f.StartCol,
			Length:      len(f.Match),
			Preview:     preview(f.Match, 4),
		})
		byRule[f.RuleID]++
	}

	return AuditLog{
		Timestamp: time.Now(),
		Masked:    masked,
		ByRule:    byRule,
		ElapsedMS: elapsed.Milliseconds(),
	}
}
