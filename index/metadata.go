package index

import (
	"slices"

	"github.com/poiesic/sift/core"
)

// Metadata maps every indexed document to its URL, title and length.
type Metadata map[core.DocumentID]core.DocumentMetadata

// AvgLength is the mean document length, 0 for an empty table.
func (m Metadata) AvgLength() float64 {
	if len(m) == 0 {
		return 0
	}
	total := 0
	for _, md := range m {
		total += md.Length
	}
	return float64(total) / float64(len(m))
}

// IDs returns the document ids in lexical order.
func (m Metadata) IDs() []core.DocumentID {
	ids := make([]core.DocumentID, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
