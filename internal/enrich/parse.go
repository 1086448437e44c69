// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package enrich

import (
	"strings"

	"github.com/pdiddy/arxiv-digest/pkg/types"
)

// ParseResponse reads the `key: value` lines of a model answer. Keys match
// case-insensitively at the start of a trimmed line. Once llm_summary has
// been seen, lines that start no other key continue the summary. Anything
// missing stays empty; is_interested is true only for "yes".
func ParseResponse(text string) types.Enrichment {
	var (
		e           types.Enrichment
		interested  string
		inSummary   bool
		summaryPart []string
	)

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		key, value, ok := splitKey(line)
		switch {
		case ok && key == "tag1":
			e.Tag1 = value
		case ok && key == "tag2":
			e.Tag2 = value
		case ok && key == "tag3":
			e.Tag3 = splitList(value)
		case ok && key == "institution":
			e.Institution = value
		case ok && key == "is_interested":
			interested = value
		case ok && key == "llm_summary":
			inSummary = true
			if value != "" {
				summaryPart = append(summaryPart, value)
			}
		case inSummary:
			summaryPart = append(summaryPart, line)
		}
	}

	e.Interested = isYes(interested)
	e.Summary = strings.TrimSpace(strings.Join(summaryPart, " "))
	return e
}

var responseKeys = []string{"tag1", "tag2", "tag3", "institution", "is_interested", "llm_summary"}

// splitKey returns the lowercased key and trimmed value when line starts
// with one of responseKeys followed by a colon.
func splitKey(line string) (string, string, bool) {
	lower := strings.ToLower(line)
	for _, k := range responseKeys {
		if strings.HasPrefix(lower, k+":") {
			return k, strings.TrimSpace(line[len(k)+1:]), true
		}
	}
	return "", "", false
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// isYes accepts exactly "yes", in any case.
func isYes(v string) bool {
	return strings.EqualFold(strings.TrimSpace(v), "yes")
}
