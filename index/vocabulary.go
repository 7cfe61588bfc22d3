package index

import "slices"

// Vocabulary counts raw (lowercase, unstemmed) words across the corpus.
type Vocabulary struct {
	counts map[string]int
	total  int
}

// NewVocabulary returns an empty Vocabulary.
func NewVocabulary() *Vocabulary {
	return &Vocabulary{counts: make(map[string]int)}
}

// Add records one occurrence of each word.
func (v *Vocabulary) Add(words ...string) {
	for _, w := range words {
		v.counts[w]++
		v.total++
	}
}

// AddCount records n occurrences of word. Non-positive counts are ignored.
func (v *Vocabulary) AddCount(word string, n int) {
	if n <= 0 {
		return
	}
	v.counts[word] += n
	v.total += n
}

// Count returns the number of occurrences of word.
func (v *Vocabulary) Count(word string) int {
	return v.counts[word]
}

// Contains reports whether word was ever seen.
func (v *Vocabulary) Contains(word string) bool {
	_, ok := v.counts[word]
	return ok
}

// Total is the sum of all counts.
func (v *Vocabulary) Total() int {
	return v.total
}

// Len returns the number of distinct words.
func (v *Vocabulary) Len() int {
	return len(v.counts)
}

// Probability returns count(word)/total, 0 for an empty vocabulary.
func (v *Vocabulary) Probability(word string) float64 {
	if v.total == 0 {
		return 0
	}
	return float64(v.counts[word]) / float64(v.total)
}

// Words returns every word in lexical order.
func (v *Vocabulary) Words() []string {
	words := make([]string, 0, len(v.counts))
	for w := range v.counts {
		words = append(words, w)
	}
	slices.Sort(words)
	return words
}

// Export returns a copy of the word counts.
func (v *Vocabulary) Export() map[string]int {
	counts := make(map[string]int, len(v.counts))
	for w, n := range v.counts {
		counts[w] = n
	}
	return counts
}

// VocabularyFromCounts rebuilds a Vocabulary from exported counts.
func VocabularyFromCounts(counts map[string]int) *Vocabulary {
	v := NewVocabulary()
	for w, n := range counts {
		v.AddCount(w, n)
	}
	return v
}
