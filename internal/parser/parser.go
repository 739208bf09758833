// Package parser extracts a title and #tags from plain sticky-note text.
package parser

import (
	"regexp"
	"strings"
)

const maxTitleLen = 80

var tagRe = regexp.MustCompile(`(?:^|\s)#([A-Za-z][A-Za-z0-9_/-]*)`)

// Result holds the output of parsing a note.
type Result struct {
	Title string
	Tags  []string
	Body  string
}

// Parse derives the title and tags of a note. The body is returned as is.
func Parse(data []byte) *Result {
	body := string(data)
	return &Result{
		Title: deriveTitle(body),
		Tags:  extractTags(body),
		Body:  body,
	}
}

// extractTags returns inline #tags in order of first appearance.
func extractTags(body string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, m := range tagRe.FindAllStringSubmatch(body, -1) {
		t := m[1]
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// deriveTitle returns the first non-blank line, cut to maxTitleLen runes.
func deriveTitle(body string) string {
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if r := []rune(trimmed); len(r) > maxTitleLen {
			return strings.TrimSpace(string(r[:maxTitleLen])) + "…"
		}
		return trimmed
	}
	return ""
}
