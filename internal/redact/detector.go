package redact

import (
	"regexp"

	gitleaksConfig "github.com/zricethezav/gitleaks/v8/config"
	"github.com/zricethezav/gitleaks/v8/detect"
	gitleaksRegexp "github.com/zricethezav/gitleaks/v8/regexp"
)

// Finding is a detected secret with its location.
type Finding struct {
	RuleID   string // Gitleaks rule ID (e.g., "github-pat")
	RuleDesc string // Human-readable description
	Line     int    // Line number where the secret was found
	StartCol int    // Start column
	EndCol   int    // End column
	Match    string // The actual secret value
}

// Redactor detects and masks secrets. The underlying Gitleaks detector is
// built once with its default rule set plus the provided allowlist, so a
// long-running daemon does not reload the rules on every request.
type Redactor struct {
	detector *detect.Detector
}

// New creates a redactor with the default Gitleaks rules. A nil allowlist
// applies no exclusions.
func New(allowlist *Allowlist) (*Redactor, error) {
	detector, err := detect.NewDetectorDefaultConfig()
	if err != nil {
		return nil, err
	}

	if allowlist != nil {
		applyAllowlist(&detector.Config, allowlist)
	}

	return &Redactor{detector: detector}, nil
}

// Detect scans content for secrets and returns findings with position
// information for redaction.
func (r *Redactor) Detect(content string) []Finding {
	raw := r.detector.DetectString(content)

	findings := make([]Finding, 0, len(raw))
	for _, f := range raw {
		findings = append(findings, Finding{
			RuleID:   f.RuleID,
			RuleDesc: f.Description,
			Line:     f.StartLine,
			StartCol: f.StartColumn,
			EndCol:   f.EndColumn,
			Match:    f.Secret,
		})
	}
	return findings
}

// applyAllowlist merges allowlist patterns into the Gitleaks config.
// Patterns were validated at load time, so compilation cannot fail here.
func applyAllowlist(cfg *gitleaksConfig.Config, allowlist *Allowlist) {
	global := &gitleaksConfig.Allowlist{
		Description: "pdfsqueeze allowlist",
	}

	for _, pattern := range allowlist.Paths {
		re, err := regexp.Compile(pattern)
		if err != nil {
			panic("unvalidated path pattern reached detection: " + pattern + ": " + err.Error())
		}
		global.Paths = append(global.Paths, (*gitleaksRegexp.Regexp)(re))
	}

	for _, pattern := range allowlist.Regexes {
		re, err := regexp.Compile(pattern)
		if err != nil {
			panic("unvalidated content pattern reached detection: " + pattern + ": " + err.Error())
		}
		global.Regexes = append(global.Regexes, (*gitleaksRegexp.Regexp)(re))
	}

	cfg.Allowlists = append(cfg.Allowlists, global)
}
