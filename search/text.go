package search

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/poiesic/sift/core"
)

const (
	// PreviewUnavailable is returned when a snippet cannot be produced.
	PreviewUnavailable = "Preview unavailable"

	snippetLead     = 60
	snippetWidth    = 240
	snippetFallback = 200
	ellipsis        = "..."
)

// cleanText returns the cleaned body text of id, cached per served snapshot.
func (e *Engine) cleanText(generation uint64, id core.DocumentID) (string, error) {
	key := strconv.FormatUint(generation, 10) + "/" + string(id)
	if text, ok := e.texts.Get(key); ok {
		return text, nil
	}
	markup, err := e.pages.ReadMarkup(id)
	if err != nil {
		return "", err
	}
	doc, err := e.normalizer.Clean(markup)
	if err != nil {
		return "", err
	}
	e.texts.Set(key, doc.Body, int64(len(doc.Body)))
	return doc.Body, nil
}

// phraseMatch reports whether the lowercase query occurs verbatim in the
// cleaned text of id. Unreadable pages never match.
func (e *Engine) phraseMatch(generation uint64, id core.DocumentID, query string) bool {
	text, err := e.cleanText(generation, id)
	if err != nil {
		e.logger.Debug("phrase check skipped", "doc", id, "err", err)
		return false
	}
	return strings.Contains(strings.ToLower(text), strings.ToLower(query))
}

// snippet cuts a preview of text around the first occurrence of any stem.
// Offsets count runes, and stems match case-insensitively.
func snippet(text string, stems []string) string {
	runes := []rune(text)
	lower := make([]rune, len(runes))
	for i, r := range runes {
		lower[i] = unicode.ToLower(r)
	}

	first := -1
	for _, stem := range stems {
		pos := indexRunes(lower, []rune(stem))
		if pos >= 0 && (first < 0 || pos < first) {
			first = pos
		}
	}

	if first < 0 {
		return string(runes[:min(snippetFallback, len(runes))]) + ellipsis
	}

	start := max(0, first-snippetLead)
	end := min(len(runes), start+snippetWidth)
	out := strings.ReplaceAll(string(runes[start:end]), "\n", " ")
	if start > 0 {
		out = ellipsis + out
	}
	if end < len(runes) {
		out += ellipsis
	}
	return out
}

func indexRunes(haystack, needle []rune) int {
	if len(needle) == 0 {
		return -1
	}
outer:
	for i := 0; i+len(needle) <= len(haystack); i++ {
		for j, r := range needle {
			if haystack[i+j] != r {
				continue outer
			}
		}
		return i
	}
	return -1
}
