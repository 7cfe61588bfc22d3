package normalize

import (
	"bytes"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/kljensen/snowball/english"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const (
	// DefaultTitle is used when a page has no usable <title>.
	DefaultTitle = "No Title"

	// DefaultFirstParagraphMin is the length a paragraph must exceed to count
	// as the page's first paragraph.
	DefaultFirstParagraphMin = 50

	// MaxTokenLength is the longest word, in runes, that becomes a term.
	// Longer runs are usually inline data such as base64 blobs.
	MaxTokenLength = 64

	// punctuation is the ASCII punctuation set replaced with whitespace before splitting.
	punctuation = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"
)

// Elements whose whole subtree is removed before any text is extracted.
var droppedElements = map[atom.Atom]bool{
	atom.Script:   true,
	atom.Style:    true,
	atom.Meta:     true,
	atom.Noscript: true,
	atom.Header:   true,
	atom.Footer:   true,
	atom.Nav:      true,
	atom.Aside:    true,
}

// Document is the cleaned text content of a page.
type Document struct {
	Title          string
	FirstParagraph string
	Body           string
}

// Analysis is a cleaned page together with its tokens.
type Analysis struct {
	Document
	TitleStems          []string
	FirstParagraphStems []string
	BodyStems           []string
	// RawWords holds the unstemmed title and body words, in that order.
	RawWords []string
}

// Length is the BM25 document length: the number of stems across all three fields.
func (a *Analysis) Length() int {
	return len(a.TitleStems) + len(a.FirstParagraphStems) + len(a.BodyStems)
}

// EmbeddingText is the text handed to the vector index for this page.
func (a *Analysis) EmbeddingText() string {
	return a.Title + ". " + a.FirstParagraph
}

// Normalizer cleans markup and tokenizes text.
type Normalizer struct {
	stopwords         map[string]struct{}
	firstParagraphMin int
}

// Option configures a Normalizer.
type Option func(*Normalizer) error

// WithStopwords replaces the stopword list.
// Default is EnglishStopwords.
func WithStopwords(words []string) Option {
	return func(n *Normalizer) error {
		n.stopwords = make(map[string]struct{}, len(words))
		for _, w := range words {
			n.stopwords[strings.ToLower(w)] = struct{}{}
		}
		return nil
	}
}

// WithFirstParagraphMin sets how many characters a paragraph must exceed
// to be taken as the first paragraph.
func WithFirstParagraphMin(chars int) Option {
	return func(n *Normalizer) error {
		if chars < 0 {
			return fmt.Errorf("first paragraph minimum must not be negative, got %d", chars)
		}
		n.firstParagraphMin = chars
		return nil
	}
}

// New creates a Normalizer.
func New(opts ...Option) (*Normalizer, error) {
	n := &Normalizer{firstParagraphMin: DefaultFirstParagraphMin}
	if err := WithStopwords(EnglishStopwords)(n); err != nil {
		return nil, err
	}
	for _, opt := range opts {
		if err := opt(n); err != nil {
			return nil, err
		}
	}
	return n, nil
}

// Clean extracts the title, first paragraph and body text from markup.
// The body includes every visible string, the title among them.
func (n *Normalizer) Clean(markup []byte) (Document, error) {
	root, err := html.Parse(bytes.NewReader(markup))
	if err != nil {
		return Document{}, fmt.Errorf("%w: %w", ErrMalformedMarkup, err)
	}
	prune(root)

	doc := Document{Title: DefaultTitle}
	if t := findFirst(root, atom.Title); t != nil {
		if s, ok := singleString(t); ok {
			if s = strings.TrimSpace(s); s != "" {
				doc.Title = s
			}
		}
	}

	for _, p := range findAll(root, atom.P) {
		text := strings.TrimSpace(textContent(p, ""))
		if utf8.RuneCountInString(text) > n.firstParagraphMin {
			doc.FirstParagraph = text
			break
		}
	}

	doc.Body = collapseChunks(textContent(root, " "))
	return doc, nil
}

// Tokenize returns the stems of text.
func (n *Normalizer) Tokenize(text string) []string {
	stems, _ := n.TokenizeRaw(text)
	return stems
}

// TokenizeRaw returns the stems of text and, position for position, the
// lowercase words they were stemmed from. Words longer than MaxTokenLength
// are dropped.
func (n *Normalizer) TokenizeRaw(text string) (stems, raw []string) {
	if text == "" {
		return nil, nil
	}
	text = strings.Map(func(r rune) rune {
		if r < utf8.RuneSelf && strings.ContainsRune(punctuation, r) {
			return ' '
		}
		return r
	}, strings.ToLower(text))

	for _, word := range strings.Fields(text) {
		if size := utf8.RuneCountInString(word); size <= 1 || size > MaxTokenLength || !isAlnum(word) {
			continue
		}
		if _, stop := n.stopwords[word]; stop {
			continue
		}
		stems = append(stems, english.Stem(word, true))
		raw = append(raw, word)
	}
	return stems, raw
}

// Analyze cleans markup and tokenizes each field.
func (n *Normalizer) Analyze(markup []byte) (*Analysis, error) {
	doc, err := n.Clean(markup)
	if err != nil {
		return nil, err
	}
	a := &Analysis{Document: doc}

	var titleRaw, bodyRaw []string
	a.TitleStems, titleRaw = n.TokenizeRaw(doc.Title)
	a.FirstParagraphStems = n.Tokenize(doc.FirstParagraph)
	a.BodyStems, bodyRaw = n.TokenizeRaw(doc.Body)

	a.RawWords = make([]string, 0, len(titleRaw)+len(bodyRaw))
	a.RawWords = append(a.RawWords, titleRaw...)
	a.RawWords = append(a.RawWords, bodyRaw...)
	return a, nil
}

func isAlnum(word string) bool {
	for _, r := range word {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return word != ""
}

// prune detaches every dropped element from the tree.
func prune(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		if c.Type == html.ElementNode && droppedElements[c.DataAtom] {
			n.RemoveChild(c)
		} else {
			prune(c)
		}
		c = next
	}
}

func findFirst(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findFirst(c, a); found != nil {
			return found
		}
	}
	return nil
}

func findAll(n *html.Node, a atom.Atom) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == a {
			out = append(out, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}

// singleString returns the text of a node whose only descendant chain ends in
// one text node, mirroring how a title like <title><b>x</b></title> still counts.
func singleString(n *html.Node) (string, bool) {
	c := n.FirstChild
	if c == nil || c.NextSibling != nil {
		return "", false
	}
	switch c.Type {
	case html.TextNode:
		return c.Data, true
	case html.ElementNode:
		return singleString(c)
	}
	return "", false
}

// textContent joins every text node under n with sep.
func textContent(n *html.Node, sep string) string {
	var parts []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			parts = append(parts, n.Data)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(parts, sep)
}

// collapseChunks strips each line, splits it on double spaces and joins the
// non-empty pieces with newlines.
func collapseChunks(text string) string {
	lines := strings.FieldsFunc(text, func(r rune) bool {
		switch r {
		case '\n', '\r', '\v', '\f', 0x1c, 0x1d, 0x1e, 0x85, 0x2028, 0x2029:
			return true
		}
		return false
	})

	var chunks []string
	for _, line := range lines {
		for _, phrase := range strings.Split(strings.TrimSpace(line), "  ") {
			if phrase = strings.TrimSpace(phrase); phrase != "" {
				chunks = append(chunks, phrase)
			}
		}
	}
	return strings.Join(chunks, "\n")
}
