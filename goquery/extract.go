// Package goquery locates the main content of rendered pages and measures it
// using goquery selections over golang.org/x/net/html trees.
package goquery

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/blogstat"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Ensure Extractor implements blogstat.Extractor at compile time.
var _ blogstat.Extractor = (*Extractor)(nil)

// Extractor finds the block holding a page's article text by taking the
// parent of its longest paragraph, then counts words and rebuilds the
// heading outline inside that block.
type Extractor struct {
	strict bool
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithStrictHeadings makes extraction fail with EMALFORMED when an h3 or h4
// appears before any h1 or h2, instead of synthesizing placeholders.
func WithStrictHeadings() Option {
	return func(e *Extractor) {
		e.strict = true
	}
}

// NewExtractor creates a new Extractor.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract parses rendered HTML and measures its main content.
// Empty input parses to a document without paragraphs and fails with ENOCONTENT.
func (e *Extractor) Extract(rendered string) (*blogstat.ExtractionResult, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rendered))
	if err != nil {
		return nil, blogstat.Errorf(blogstat.EINVALID, "failed to parse HTML: %v", err)
	}

	return e.ExtractDocument(doc)
}

// ExtractDocument measures the main content of an already parsed document.
func (e *Extractor) ExtractDocument(doc *goquery.Document) (*blogstat.ExtractionResult, error) {
	p, err := DensestParagraph(doc)
	if err != nil {
		return nil, err
	}

	container, err := ContentContainer(p)
	if err != nil {
		return nil, err
	}

	headings, err := buildHeadingTree(container, e.strict)
	if err != nil {
		return nil, err
	}

	return &blogstat.ExtractionResult{
		WordCount: WordCount(container),
		Headings:  headings,
	}, nil
}

// DensestParagraph returns the <p> element with the longest text.
// Length is measured in runes; on a tie the earliest paragraph wins.
// Returns ENOCONTENT if the document has no paragraphs.
func DensestParagraph(doc *goquery.Document) (*goquery.Selection, error) {
	var best *goquery.Selection
	bestLen := 0

	doc.Find("p").Each(func(_ int, p *goquery.Selection) {
		n := utf8.RuneCountInString(textContent(p.Get(0)))
		if best == nil || n > bestLen {
			best = p
			bestLen = n
		}
	})

	if best == nil {
		return nil, blogstat.Errorf(blogstat.ENOCONTENT, "no paragraphs found in document")
	}
	return best, nil
}

// ContentContainer returns the immediate parent element of p.
// Returns ENOPARENT if p sits directly under the document root.
func ContentContainer(p *goquery.Selection) (*goquery.Selection, error) {
	if p.Length() == 0 {
		return nil, blogstat.Errorf(blogstat.ENOPARENT, "no paragraph to resolve")
	}
	if parent := p.Get(0).Parent; parent == nil || parent.Type != html.ElementNode {
		return nil, blogstat.Errorf(blogstat.ENOPARENT, "longest paragraph has no enclosing element")
	}
	return p.Parent(), nil
}

// WordCount counts the words in the flattened text of the container.
func WordCount(container *goquery.Selection) int {
	return blogstat.CountWords(FlattenText(container))
}

// HeadingTree rebuilds the h1-h4 outline of the container. Headings with no
// enclosing level get placeholder ancestors. Heading text is the element's
// text content with leading and trailing whitespace removed.
func HeadingTree(container *goquery.Selection) []*blogstat.HeadingNode {
	// Non-strict trees only fail on out of range ranks, which the scan never produces.
	headings, _ := buildHeadingTree(container, false)
	return headings
}

func buildHeadingTree(container *goquery.Selection, strict bool) ([]*blogstat.HeadingNode, error) {
	tree := blogstat.HeadingTree{Strict: strict}

	var err error
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil && err == nil; c = c.NextSibling {
			if c.Type != html.ElementNode || c.Namespace != "" {
				continue
			}
			if rank, ok := blogstat.ParseHeadingRank(c.Data); ok {
				err = tree.Add(rank, strings.TrimSpace(textContent(c)))
			}
			walk(c)
		}
	}
	for _, n := range container.Nodes {
		walk(n)
	}
	if err != nil {
		return nil, err
	}

	return tree.Headings(), nil
}

// FlattenText joins the text of every text node under the selection with a
// single space, so words in adjacent inline elements stay apart.
func FlattenText(sel *goquery.Selection) string {
	var parts []string
	for _, n := range sel.Nodes {
		parts = collectText(n, parts)
	}
	return strings.Join(parts, " ")
}

// textContent concatenates the text under n without separators.
func textContent(n *html.Node) string {
	return strings.Join(collectText(n, nil), "")
}

func collectText(n *html.Node, parts []string) []string {
	switch n.Type {
	case html.TextNode:
		return append(parts, n.Data)
	case html.ElementNode:
		if isNonContent(n) {
			return parts
		}
	case html.CommentNode, html.DoctypeNode:
		return parts
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		parts = collectText(c, parts)
	}
	return parts
}

// isNonContent reports elements whose text is never rendered as page content.
func isNonContent(n *html.Node) bool {
	switch n.DataAtom {
	case atom.Script, atom.Style, atom.Noscript, atom.Template:
		return true
	}
	return false
}
