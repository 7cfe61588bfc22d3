package search

import (
	"github.com/poiesic/sift/core"
	"github.com/poiesic/sift/vector"
)

// SearchMonitor provides hooks to observe the search process.
// Implement this interface to track intermediate steps and results during search.
type SearchMonitor interface {
	Start(query string)
	AfterSpellCorrection(corrected string, wasCorrected bool)
	AfterLexicalSearch(terms []string, candidates []core.DocumentID)
	AfterSemanticSearch(matches []vector.Match)
	Scored(result core.QueryResult)
	Finish(results []core.QueryResult)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                                     {}
func (n *noopMonitor) AfterSpellCorrection(_ string, _ bool)              {}
func (n *noopMonitor) AfterLexicalSearch(_ []string, _ []core.DocumentID) {}
func (n *noopMonitor) AfterSemanticSearch(_ []vector.Match)               {}
func (n *noopMonitor) Scored(_ core.QueryResult)                          {}
func (n *noopMonitor) Finish(_ []core.QueryResult)                        {}
