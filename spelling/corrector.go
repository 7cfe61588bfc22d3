package spelling

import (
	"log/slog"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/poiesic/sift/index"
)

const alphabet = "abcdefghijklmnopqrstuvwxyz"

// DefaultSkipWords are never corrected.
var DefaultSkipWords = []string{"hi", "hello", "hey", "thanks", "ok", "okay", "sift", "search"}

// Corrector suggests corrections for misspelled query words.
// It only reads its vocabulary and is safe for concurrent use.
type Corrector struct {
	vocab  *index.Vocabulary
	skip   map[string]struct{}
	logger *slog.Logger
}

// Option configures a Corrector.
type Option func(*Corrector) error

// WithSkipWords replaces the skip set.
func WithSkipWords(words []string) Option {
	return func(c *Corrector) error {
		c.skip = make(map[string]struct{}, len(words))
		for _, w := range words {
			c.skip[strings.ToLower(w)] = struct{}{}
		}
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Corrector) error {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
		return nil
	}
}

// NewCorrector creates a Corrector over vocab. A nil vocabulary behaves as an empty one.
func NewCorrector(vocab *index.Vocabulary, opts ...Option) (*Corrector, error) {
	if vocab == nil {
		vocab = index.NewVocabulary()
	}
	c := &Corrector{
		vocab:  vocab,
		logger: slog.Default(),
	}
	if err := WithSkipWords(DefaultSkipWords)(c); err != nil {
		return nil, err
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	c.logger = c.logger.With("component", "spelling")
	return c, nil
}

// CorrectQuery lowercases query, corrects each whitespace-separated word and
// reports whether any word changed. With an empty vocabulary the query is
// returned untouched.
func (c *Corrector) CorrectQuery(query string) (string, bool) {
	if c.vocab.Len() == 0 {
		return query, false
	}

	words := strings.Fields(strings.ToLower(query))
	corrected := make([]string, len(words))
	changed := false
	for i, word := range words {
		corrected[i] = c.correctWord(word)
		if corrected[i] != word {
			changed = true
		}
	}
	return strings.Join(corrected, " "), changed
}

func (c *Corrector) correctWord(word string) string {
	switch {
	case utf8.RuneCountInString(word) < 3:
		c.logger.Debug("skip word", "word", word, "reason", "short")
		return word
	case c.isSkipWord(word):
		c.logger.Debug("skip word", "word", word, "reason", "reserved")
		return word
	case c.vocab.Contains(word):
		c.logger.Debug("skip word", "word", word, "reason", "known")
		return word
	case !isAlpha(word):
		c.logger.Debug("skip word", "word", word, "reason", "non-alphabetic")
		return word
	}

	candidate := c.Correction(word)
	if candidate != word {
		c.logger.Debug("corrected word", "word", word, "correction", candidate)
	}
	return candidate
}

func (c *Corrector) isSkipWord(word string) bool {
	_, ok := c.skip[word]
	return ok
}

// Correction returns the most probable known word within two edits of word,
// or word itself when it is already known or nothing known is close.
func (c *Corrector) Correction(word string) string {
	if c.vocab.Len() == 0 || c.vocab.Contains(word) {
		return word
	}

	e1 := edits1(word)
	if best, ok := c.best(e1); ok {
		return best
	}

	best, bestCount := "", 0
	for _, w := range e1 {
		for _, w2 := range edits1(w) {
			if n := c.vocab.Count(w2); n > bestCount {
				best, bestCount = w2, n
			}
		}
	}
	if bestCount > 0 {
		return best
	}
	return word
}

// best picks the highest count known word, the first one on ties.
func (c *Corrector) best(candidates []string) (string, bool) {
	best, bestCount := "", 0
	for _, w := range candidates {
		if n := c.vocab.Count(w); n > bestCount {
			best, bestCount = w, n
		}
	}
	return best, bestCount > 0
}

// edits1 returns every string one edit away from word, without duplicates,
// in generation order: deletes, transposes, replaces, inserts.
func edits1(word string) []string {
	r := []rune(word)
	n := len(r)
	out := make([]string, 0, 54*n+26)
	seen := make(map[string]struct{}, 54*n+26)
	add := func(parts ...string) {
		s := strings.Join(parts, "")
		if _, dup := seen[s]; dup {
			return
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}

	for i := 0; i < n; i++ {
		add(string(r[:i]), string(r[i+1:]))
	}
	for i := 0; i+1 < n; i++ {
		add(string(r[:i]), string(r[i+1]), string(r[i]), string(r[i+2:]))
	}
	for i := 0; i < n; i++ {
		for _, ch := range alphabet {
			add(string(r[:i]), string(ch), string(r[i+1:]))
		}
	}
	for i := 0; i <= n; i++ {
		for _, ch := range alphabet {
			add(string(r[:i]), string(ch), string(r[i:]))
		}
	}
	return out
}

func isAlpha(word string) bool {
	for _, r := range word {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return word != ""
}
