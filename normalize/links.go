package normalize

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"github.com/poiesic/sift/core"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ExtractLinks returns the normalized absolute http(s) targets of every
// <a href> in markup, resolved against base, deduplicated in document order.
// Links inside boilerplate elements are included.
func (n *Normalizer) ExtractLinks(markup []byte, base string) ([]string, error) {
	baseURL, err := url.Parse(base)
	if err != nil || !baseURL.IsAbs() || baseURL.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBaseURL, base)
	}

	root, err := html.Parse(bytes.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedMarkup, err)
	}

	seen := make(map[string]struct{})
	var links []string
	for _, a := range findAll(root, atom.A) {
		for _, attr := range a.Attr {
			if attr.Key != "href" {
				continue
			}
			ref, err := url.Parse(strings.TrimSpace(attr.Val))
			if err != nil {
				continue
			}
			target := baseURL.ResolveReference(ref)
			if target.Scheme != "http" && target.Scheme != "https" {
				continue
			}
			norm := core.NormalizeURL(target.String())
			if _, dup := seen[norm]; dup {
				continue
			}
			seen[norm] = struct{}{}
			links = append(links, norm)
		}
	}
	return links, nil
}
