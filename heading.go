package blogstat

// HeadingRank is the level of a heading tag, H1 (most significant) through H4.
type HeadingRank int

// Heading ranks recognised by the outline builder.
const (
	H1 HeadingRank = iota + 1
	H2
	H3
	H4
)

// MaxHeadingDepth is the number of heading ranks, and so the deepest outline.
const MaxHeadingDepth = int(H4)

// ParseHeadingRank returns the rank for an h1-h4 tag name.
// Other tag names, including h5 and h6, report false.
func ParseHeadingRank(tag string) (HeadingRank, bool) {
	switch tag {
	case "h1":
		return H1, true
	case "h2":
		return H2, true
	case "h3":
		return H3, true
	case "h4":
		return H4, true
	}
	return 0, false
}

// Depth returns the zero-based nesting depth for headings of this rank.
func (r HeadingRank) Depth() int {
	return int(r) - 1
}

// Valid reports whether r is one of H1-H4.
func (r HeadingRank) Valid() bool {
	return r >= H1 && r <= H4
}

// HeadingNode is one entry of a heading outline.
// A node with empty Text is a placeholder standing in for a skipped level.
type HeadingNode struct {
	Text        string         `json:"heading"`
	Subheadings []*HeadingNode `json:"subheadings"`
}

// NewHeadingNode returns a node with an empty, non-nil subheading list.
func NewHeadingNode(text string) *HeadingNode {
	return &HeadingNode{Text: text, Subheadings: []*HeadingNode{}}
}

// HeadingTree rebuilds a nested outline from a flat sequence of headings.
//
// The tree keeps a cursor with the most recently added node at each depth.
// Adding a heading attaches it under the cursor one level up, inserting
// placeholders for any shallower level that has no current node.
type HeadingTree struct {
	// Strict rejects an H3 or H4 heading when any shallower level has no
	// current node, such as an H3 before any H1 or H2, or an H4 right after
	// an H1. A leading H2 still gets a placeholder H1.
	// Without Strict the missing ancestors are synthesized as placeholders.
	Strict bool

	roots  []*HeadingNode
	cursor [MaxHeadingDepth]*HeadingNode
}

// Add appends a heading of the given rank to the outline.
func (t *HeadingTree) Add(rank HeadingRank, text string) error {
	if !rank.Valid() {
		return Errorf(EINVALID, "heading rank %d out of range", rank)
	}
	depth := rank.Depth()

	if t.Strict && depth >= 2 {
		for d := 0; d < depth; d++ {
			if t.cursor[d] == nil {
				return Errorf(EMALFORMED, "h%d %q skips heading level h%d", rank, text, d+1)
			}
		}
	}

	for d := 0; d < depth; d++ {
		if t.cursor[d] == nil {
			t.attach(d, NewHeadingNode(""))
		}
	}
	t.attach(depth, NewHeadingNode(text))
	return nil
}

// attach appends node at depth and makes it the current node there.
// Deeper cursors are cleared since the new node has no children yet.
func (t *HeadingTree) attach(depth int, node *HeadingNode) {
	if depth == 0 {
		t.roots = append(t.roots, node)
	} else {
		parent := t.cursor[depth-1]
		parent.Subheadings = append(parent.Subheadings, node)
	}
	t.cursor[depth] = node
	for d := depth + 1; d < MaxHeadingDepth; d++ {
		t.cursor[d] = nil
	}
}

// Headings returns the top-level nodes of the outline. The result is never nil.
func (t *HeadingTree) Headings() []*HeadingNode {
	if t.roots == nil {
		return []*HeadingNode{}
	}
	return t.roots
}
