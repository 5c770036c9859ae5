package blogstat

// ExtractionResult holds the measurements taken from a blog post.
type ExtractionResult struct {
	// WordCount is the number of words in the content container.
	WordCount int `json:"word-count"`

	// Headings is the outline rebuilt from h1-h4 tags in the content container.
	// Heading text has surrounding whitespace trimmed.
	Headings []*HeadingNode `json:"headings"`
}

// Extractor locates the main content of a rendered page and measures it.
type Extractor interface {
	// Extract parses rendered HTML and returns its word count and outline.
	// Returns ENOCONTENT if the page has no paragraphs and ENOPARENT if the
	// longest paragraph has no enclosing element.
	Extract(html string) (*ExtractionResult, error)
}
