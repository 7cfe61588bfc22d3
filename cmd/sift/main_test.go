package main

import (
	"bytes"
	"testing"

	"github.com/poiesic/sift/core"
	"github.com/poiesic/sift/corpus"
	"github.com/poiesic/sift/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	app := newApp()
	var out bytes.Buffer
	app.Writer = &out
	app.ErrWriter = &bytes.Buffer{}
	err := app.Run(append([]string{"sift"}, args...))
	return out.String(), err
}

func seedCorpus(t *testing.T, root string) {
	t.Helper()
	store := corpus.NewFileStore(root)
	pages := []struct{ id, title, body string }{
		{"kiwi", "Kiwi birds", "Kiwi birds are flightless and live in New Zealand."},
		{"emu", "Emus", "Emus are large flightless birds of Australia."},
	}
	urls := make(map[core.DocumentID]string)
	for _, p := range pages {
		url := "https://birds.example/" + p.id
		markup := "<html><head><title>" + p.title + "</title></head><body><p>" + p.body + "</p></body></html>"
		require.NoError(t, store.WritePage(&core.Page{ID: core.DocumentID(p.id), URL: url, Markup: []byte(markup)}))
		urls[core.DocumentID(p.id)] = url
	}
	require.NoError(t, store.WriteURLMap(urls))
}

func TestSetupLogger_InvalidLevel(t *testing.T) {
	t.Chdir(t.TempDir())
	_, err := run(t, "--log-level", "loud", "status")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
}

func TestStatus_NoSnapshot(t *testing.T) {
	t.Chdir(t.TempDir())
	out, err := run(t, "--storage", t.TempDir(), "--embedder", "none", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "No snapshot has been built")
}

func TestSearch_RequiresQuery(t *testing.T) {
	t.Chdir(t.TempDir())
	_, err := run(t, "--storage", t.TempDir(), "--embedder", "none", "search")
	assert.Error(t, err)
}

func TestSearch_BeforeIndex(t *testing.T) {
	t.Chdir(t.TempDir())
	_, err := run(t, "--storage", t.TempDir(), "--embedder", "none", "search", "kiwi")
	assert.Error(t, err)
}

func TestIndexThenSearch(t *testing.T) {
	t.Chdir(t.TempDir())
	storage := t.TempDir()
	seedCorpus(t, storage)

	out, err := run(t, "--log-level", "error", "--storage", storage, "--embedder", "hash", "index")
	require.NoError(t, err)
	assert.Contains(t, out, "Documents:       2")
	assert.Contains(t, out, "Vectors:         2")

	out, err = run(t, "--log-level", "error", "--storage", storage, "--embedder", "hash", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Documents:       2")

	out, err = run(t, "--log-level", "error", "--storage", storage, "--embedder", "hash",
		"search", "--explain", "kiwi", "birds")
	require.NoError(t, err)
	assert.Contains(t, out, "1. Kiwi birds")
	assert.Contains(t, out, "https://birds.example/kiwi")
	assert.Contains(t, out, "bm25=")
}

func TestSearch_NoResults(t *testing.T) {
	t.Chdir(t.TempDir())
	storage := t.TempDir()
	seedCorpus(t, storage)

	_, err := run(t, "--log-level", "error", "--storage", storage, "--embedder", "none", "index")
	require.NoError(t, err)

	out, err := run(t, "--log-level", "error", "--storage", storage, "--embedder", "none", "search", "xylophone")
	require.NoError(t, err)
	assert.Contains(t, out, "No results.")
}

func TestSearch_PagePastEnd(t *testing.T) {
	t.Chdir(t.TempDir())
	storage := t.TempDir()
	seedCorpus(t, storage)

	_, err := run(t, "--log-level", "error", "--storage", storage, "--embedder", "none", "index")
	require.NoError(t, err)

	out, err := run(t, "--log-level", "error", "--storage", storage, "--embedder", "none",
		"search", "--page", "5", "birds")
	require.NoError(t, err)
	assert.Contains(t, out, "2 results, none on page 5.")
	assert.NotContains(t, out, "showing")
}

func TestPrintPage(t *testing.T) {
	var out bytes.Buffer
	printPage(&out, &search.Page{Total: 21, Page: 3, PerPage: 10}, false)
	assert.Equal(t, "21 results, none on page 3.\n", out.String())

	out.Reset()
	printPage(&out, &search.Page{
		Total:   21,
		Page:    3,
		PerPage: 10,
		Results: []search.Hit{{Title: "Last", URL: "https://x.example/", Snippet: "tail"}},
	}, false)
	assert.Contains(t, out.String(), "21 results, showing 21-21")
	assert.Contains(t, out.String(), "21. Last")
}
