package compress

import (
	"strings"
)

// ContentShape classifies input text for algorithm routing
type ContentShape string

const (
	// ShapeProse is flowing sentence-structured text
	ShapeProse ContentShape = "prose"
	// ShapeTabular is line-oriented text with repeated or numeric rows
	ShapeTabular ContentShape = "tabular"
)

// detectShape classifies text so AlgorithmAuto can route it. Prose goes to
// the extractive path; tabular or repetitive line-oriented text goes to the
// heuristic path, where frequency scoring adds little.
func detectShape(text string) ContentShape {
	lines := strings.Split(text, "\n")
	if len(lines) < 4 {
		return ShapeProse
	}

	var short, numeric, dupes int
	seen := make(map[string]struct{}, len(lines))

	total := 0
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		total++

		if len(line) < 40 {
			short++
		}
		if containsDigit(line) && !strings.ContainsAny(line, ".!?") {
			numeric++
		}

		key := fingerprint(line)
		if _, dup := seen[key]; dup {
			dupes++
		} else {
			seen[key] = struct{}{}
		}
	}

	if total == 0 {
		return ShapeProse
	}

	shortRatio := float64(short) / float64(total)
	numericRatio := float64(numeric) / float64(total)
	dupeRatio := float64(dupes) / float64(total)

	if dupeRatio > 0.2 || numericRatio > 0.4 || shortRatio > 0.7 {
		return ShapeTabular
	}
	return ShapeProse
}
