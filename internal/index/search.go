package index

import (
	"database/sql"
	"strings"
	"unicode/utf8"
)

const (
	defaultSearchLimit = 20
	snippetRadius      = 40
)

// searchTerms splits a query into lower-cased words. Every word must match.
func searchTerms(query string) []string {
	return strings.Fields(strings.ToLower(query))
}

// snippet returns the text around the first occurrence of term in body, on
// one line. Without a match it returns the start of the body.
func snippet(body, term string) string {
	lower := strings.ToLower(body)
	at := 0
	if term != "" {
		// Lower-casing can change byte offsets outside ASCII.
		if i := strings.Index(lower, term); i >= 0 && i < len(body) {
			at = i
		}
	}

	start := max(at-snippetRadius, 0)
	for start > 0 && !utf8.RuneStart(body[start]) {
		start--
	}
	end := min(at+len(term)+snippetRadius, len(body))
	for end < len(body) && !utf8.RuneStart(body[end]) {
		end++
	}

	out := strings.Join(strings.Fields(body[start:end]), " ")
	if start > 0 {
		out = "…" + out
	}
	if end < len(body) {
		out += "…"
	}
	return out
}

func collectResults(rows *sql.Rows) ([]SearchResult, error) {
	defer rows.Close()
	var out []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.ID, &r.Title, &r.Snippet); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
