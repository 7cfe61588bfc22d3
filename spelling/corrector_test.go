package spelling

import (
	"strings"
	"testing"

	"github.com/poiesic/sift/index"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func vocabulary(counts map[string]int) *index.Vocabulary {
	v := index.NewVocabulary()
	for w, n := range counts {
		v.AddCount(w, n)
	}
	return v
}

func newCorrector(t *testing.T, counts map[string]int, opts ...Option) *Corrector {
	t.Helper()
	c, err := NewCorrector(vocabulary(counts), opts...)
	require.NoError(t, err)
	return c
}

func TestCorrectQuery(t *testing.T) {
	c := newCorrector(t, map[string]int{
		"computer": 50,
		"science":  40,
		"computed": 3,
	})

	tests := []struct {
		name          string
		query         string
		want          string
		wantCorrected bool
	}{
		{
			name:          "edit distance two",
			query:         "comput scien",
			want:          "computer science",
			wantCorrected: true,
		},
		{
			name:          "known words untouched",
			query:         "Computer Science",
			want:          "computer science",
			wantCorrected: false,
		},
		{
			name:          "short words untouched",
			query:         "cs xy",
			want:          "cs xy",
			wantCorrected: false,
		},
		{
			name:          "skip words untouched",
			query:         "hello okay",
			want:          "hello okay",
			wantCorrected: false,
		},
		{
			name:          "non alphabetic untouched",
			query:         "compu7er",
			want:          "compu7er",
			wantCorrected: false,
		},
		{
			name:          "nothing close",
			query:         "zzzzzzzz",
			want:          "zzzzzzzz",
			wantCorrected: false,
		},
		{
			name:          "edit distance one prefers frequency",
			query:         "computr",
			want:          "computer",
			wantCorrected: true,
		},
		{
			name:          "whitespace collapsed",
			query:         "  computer   scince ",
			want:          "computer science",
			wantCorrected: true,
		},
		{
			name:          "empty query",
			query:         "",
			want:          "",
			wantCorrected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, corrected := c.CorrectQuery(tt.query)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantCorrected, corrected)
		})
	}
}

func TestCorrectQuery_EmptyVocabulary(t *testing.T) {
	c, err := NewCorrector(nil)
	require.NoError(t, err)

	got, corrected := c.CorrectQuery("Comput SCIEN")
	assert.Equal(t, "Comput SCIEN", got)
	assert.False(t, corrected)
}

func TestCorrectQuery_IdempotentOnVocabulary(t *testing.T) {
	counts := map[string]int{"alpha": 3, "alpah": 1, "beta": 2, "gamma": 7}
	c := newCorrector(t, counts)

	for w := range counts {
		got, corrected := c.CorrectQuery(w)
		assert.Equal(t, w, got)
		assert.False(t, corrected)
	}
}

func TestWithSkipWords(t *testing.T) {
	c := newCorrector(t, map[string]int{"sifted": 5}, WithSkipWords([]string{"SIFTD"}))

	got, corrected := c.CorrectQuery("siftd")
	assert.Equal(t, "siftd", got)
	assert.False(t, corrected)
}

func TestCorrection_TieBreakIsDeterministic(t *testing.T) {
	// "car" and "cat" are both one replace away from "cax"; "car" is generated first.
	c := newCorrector(t, map[string]int{"car": 1, "cat": 1})
	for i := 0; i < 10; i++ {
		assert.Equal(t, "car", c.Correction("cax"))
	}
}

func TestEdits1(t *testing.T) {
	edits := edits1("ab")
	assert.Equal(t, "b", edits[0], "deletes come first")
	assert.Equal(t, "a", edits[1])
	assert.Equal(t, "ba", edits[2], "then transposes")
	assert.Contains(t, edits, "abc")
	assert.Contains(t, edits, "xab")

	seen := make(map[string]bool)
	for _, e := range edits {
		assert.False(t, seen[e], "duplicate %q", e)
		seen[e] = true
	}
	assert.False(t, strings.Contains(strings.Join(edits, ","), "A"))
}
