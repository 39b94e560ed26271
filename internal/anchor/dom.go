package anchor

import (
	"iter"
	"slices"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Boundary is a point in the tree. For a text node Offset is a byte offset
// into its data, for any other node it is a child index.
type Boundary struct {
	Node   *html.Node
	Offset int
}

// Range is a selection between two boundary points of the same tree.
type Range struct {
	Start Boundary
	End   Boundary
}

// NewRange builds a range spanning [start, end).
func NewRange(startNode *html.Node, startOffset int, endNode *html.Node, endOffset int) Range {
	return Range{
		Start: Boundary{Node: startNode, Offset: startOffset},
		End:   Boundary{Node: endNode, Offset: endOffset},
	}
}

// CommonAncestor returns the deepest node containing both boundaries, or nil
// when they live in different trees.
func (r Range) CommonAncestor() *html.Node {
	if r.Start.Node == nil || r.End.Node == nil {
		return nil
	}
	seen := make(map[*html.Node]struct{})
	for n := r.Start.Node; n != nil; n = n.Parent {
		seen[n] = struct{}{}
	}
	for n := r.End.Node; n != nil; n = n.Parent {
		if _, ok := seen[n]; ok {
			return n
		}
	}
	return nil
}

// Intersects reports whether the range overlaps node.
func (r Range) Intersects(n *html.Node) bool {
	idx, ok := r.index()
	if !ok {
		return false
	}
	return idx.intersects(n)
}

// String returns the plain text covered by the range: the concatenation of
// every intersected text leaf's sub-span, in document order.
func (r Range) String() string {
	var out []byte
	for leaf := range r.Leaves() {
		s, e := r.SubSpan(leaf)
		if s < e {
			out = append(out, leaf.Data[s:e]...)
		}
	}
	return string(out)
}

// SubSpan returns the byte span of leaf covered by the range. The start is
// clamped to the range start only when leaf is the start container, the end
// only when leaf is the end container.
func (r Range) SubSpan(leaf *html.Node) (start, end int) {
	end = len(leaf.Data)
	if leaf == r.Start.Node {
		start = clamp(r.Start.Offset, 0, end)
	}
	if leaf == r.End.Node {
		end = clamp(r.End.Offset, 0, len(leaf.Data))
	}
	return start, end
}

// Leaves yields, in document order, the text leaves the range intersects.
// When the common container is itself a text node it is the only leaf.
// Element subtrees lying wholly outside the range are not descended into.
func (r Range) Leaves() iter.Seq[*html.Node] {
	return func(yield func(*html.Node) bool) {
		common := r.CommonAncestor()
		if common == nil {
			return
		}
		if common.Type == html.TextNode {
			yield(common)
			return
		}
		idx, ok := r.index()
		if !ok {
			return
		}
		for n := common.FirstChild; n != nil; {
			if !idx.intersects(n) {
				n = nextSkipping(n, common)
				continue
			}
			if n.Type == html.TextNode && !yield(n) {
				return
			}
			n = nextNode(n, common)
		}
	}
}

// TextLeaves yields every text leaf under root in document order, skipping
// raw-text elements such as <script>. The successor of a leaf is computed
// only after the consumer returns, so the consumer may wrap the leaf it was
// handed.
func TextLeaves(root *html.Node) iter.Seq[*html.Node] {
	return func(yield func(*html.Node) bool) {
		for n := firstLeaf(root); n != nil; n = NextLeaf(n, root) {
			if !yield(n) {
				return
			}
		}
	}
}

// NextLeaf returns the text leaf following n within root, or nil.
func NextLeaf(n, root *html.Node) *html.Node {
	for n = nextNode(n, root); n != nil; {
		switch {
		case isRawText(n):
			n = nextSkipping(n, root)
		case n.Type == html.TextNode:
			return n
		default:
			n = nextNode(n, root)
		}
	}
	return nil
}

func firstLeaf(root *html.Node) *html.Node {
	if root == nil {
		return nil
	}
	if root.Type == html.TextNode {
		return root
	}
	return NextLeaf(root, root)
}

// IsMarker reports whether n is a marker element.
func IsMarker(n *html.Node) bool {
	if n == nil || n.Type != html.ElementNode {
		return false
	}
	for _, a := range n.Attr {
		if a.Key == "class" && slices.Contains(strings.Fields(a.Val), MarkerClass) {
			return true
		}
	}
	return false
}

// InsideMarker reports whether any ancestor of n is a marker.
func InsideMarker(n *html.Node) bool {
	for p := n.Parent; p != nil; p = p.Parent {
		if IsMarker(p) {
			return true
		}
	}
	return false
}

func isRawText(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	switch n.DataAtom {
	case atom.Script, atom.Style, atom.Template, atom.Textarea, atom.Noscript:
		return true
	}
	return false
}

// nextNode steps to the pre-order successor of n, staying under root.
func nextNode(n, root *html.Node) *html.Node {
	if n.FirstChild != nil {
		return n.FirstChild
	}
	return nextSkipping(n, root)
}

// nextSkipping steps past n's subtree, staying under root.
func nextSkipping(n, root *html.Node) *html.Node {
	for ; n != nil && n != root; n = n.Parent {
		if n.NextSibling != nil {
			return n.NextSibling
		}
	}
	return nil
}

// position orders boundary points: pos is a pre-order index, off is a byte
// offset inside a text node or -1 for "just before node pos".
type position struct {
	pos int
	off int
}

func (a position) less(b position) bool {
	if a.pos != b.pos {
		return a.pos < b.pos
	}
	return a.off < b.off
}

// treeIndex maps nodes to their pre-order index and to the index following
// their subtree.
type treeIndex struct {
	pre   map[*html.Node]int
	after map[*html.Node]int
	start position
	end   position
}

func (r Range) index() (*treeIndex, bool) {
	if r.Start.Node == nil || r.End.Node == nil {
		return nil, false
	}
	root := r.Start.Node
	for root.Parent != nil {
		root = root.Parent
	}
	idx := &treeIndex{
		pre:   make(map[*html.Node]int),
		after: make(map[*html.Node]int),
	}
	counter := 0
	var visit func(n *html.Node)
	visit = func(n *html.Node) {
		idx.pre[n] = counter
		counter++
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
		idx.after[n] = counter
	}
	visit(root)

	if _, ok := idx.pre[r.End.Node]; !ok {
		return nil, false
	}
	idx.start = idx.boundary(r.Start)
	idx.end = idx.boundary(r.End)
	if idx.end.less(idx.start) {
		return nil, false
	}
	return idx, true
}

func (idx *treeIndex) boundary(b Boundary) position {
	if b.Node.Type == html.TextNode || b.Node.Type == html.CommentNode {
		return position{pos: idx.pre[b.Node], off: b.Offset}
	}
	i := 0
	for c := b.Node.FirstChild; c != nil; c = c.NextSibling {
		if i == b.Offset {
			return position{pos: idx.pre[c], off: -1}
		}
		i++
	}
	return position{pos: idx.after[b.Node], off: -1}
}

func (idx *treeIndex) intersects(n *html.Node) bool {
	pre, ok := idx.pre[n]
	if !ok {
		return false
	}
	before := position{pos: pre, off: -1}
	after := position{pos: idx.after[n], off: -1}
	return before.less(idx.end) && idx.start.less(after)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
