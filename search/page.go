package search

import (
	"context"

	"github.com/poiesic/sift/core"
)

// DefaultPerPage is the page size used when none is given.
const DefaultPerPage = 10

// Hit is one displayed result.
type Hit struct {
	DocID      core.DocumentID      `json:"doc_id"`
	URL        string               `json:"url"`
	Title      string               `json:"title"`
	Snippet    string               `json:"snippet"`
	Score      float64              `json:"score"`
	Components core.ScoreComponents `json:"components"`
}

// Page is one page of ranked results.
type Page struct {
	Query          string `json:"query"`
	CorrectedQuery string `json:"corrected_query"`
	WasCorrected   bool   `json:"was_corrected"`
	Results        []Hit  `json:"results"`
	Total          int    `json:"total"`
	Page           int    `json:"page"`
	PerPage        int    `json:"per_page"`
}

// SearchPage runs query and returns the requested 1-based page with
// snippets. Snippets use the corrected query when a correction was made.
// Pages past the end are empty. page and perPage below 1 take their defaults.
func (e *Engine) SearchPage(ctx context.Context, query string, page, perPage int) (*Page, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}

	resp, err := e.Search(ctx, query)
	if err != nil {
		return nil, err
	}

	out := &Page{
		Query:          query,
		CorrectedQuery: resp.CorrectedQuery,
		WasCorrected:   resp.WasCorrected,
		Results:        []Hit{},
		Total:          len(resp.Results),
		Page:           page,
		PerPage:        perPage,
	}

	start := (page - 1) * perPage
	if start >= len(resp.Results) {
		return out, nil
	}
	end := min(start+perPage, len(resp.Results))

	snippetQuery := query
	if resp.WasCorrected {
		snippetQuery = resp.CorrectedQuery
	}
	for _, r := range resp.Results[start:end] {
		out.Results = append(out.Results, Hit{
			DocID:      r.DocID,
			URL:        r.Metadata.URL,
			Title:      r.Metadata.Title,
			Snippet:    e.GetSnippet(ctx, r.DocID, snippetQuery),
			Score:      r.Score,
			Components: r.Components,
		})
	}
	return out, nil
}
