package dom

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/net/html/charset"
)

// Default traversal bounds
const (
	DefaultMaxNodes = 200000
	DefaultMaxDepth = 256
)

// ErrTreeTooLarge is returned when a document exceeds Limits.MaxNodes.
var ErrTreeTooLarge = errors.New("document tree too large")

// Limits bounds the size of a tree built from parser output. Zero values
// disable the corresponding bound.
type Limits struct {
	MaxNodes int // total nodes kept in the arena
	MaxDepth int // subtrees nested deeper than this are dropped
}

// DefaultLimits returns the bounds used when none are configured.
func DefaultLimits() Limits {
	return Limits{MaxNodes: DefaultMaxNodes, MaxDepth: DefaultMaxDepth}
}

// BuildStats reports what FromHTML dropped while building a tree.
type BuildStats struct {
	Nodes     int // nodes kept
	Truncated int // subtrees dropped for exceeding MaxDepth
}

// Parse decodes r to UTF-8, parses it as HTML and builds a tree. Scripting
// is disabled while parsing so noscript fallbacks come through as markup.
// An empty reader yields the empty document.
func Parse(r io.Reader, limits Limits) (*Tree, BuildStats, error) {
	utf8Reader, err := charset.NewReader(r, "")
	switch {
	case errors.Is(err, io.EOF):
		utf8Reader = strings.NewReader("")
	case err != nil:
		return nil, BuildStats{}, fmt.Errorf("detecting charset: %w", err)
	}
	doc, err := html.ParseWithOptions(utf8Reader, html.ParseOptionEnableScripting(false))
	if err != nil {
		return nil, BuildStats{}, fmt.Errorf("parsing html: %w", err)
	}
	return FromHTML(doc, limits)
}

// FromHTML builds a tree from an x/net/html parse tree. The root of the new
// tree is the document's html element; when the input has none a bare html
// root is synthesized and the input's top-level nodes are adopted into it.
// Doctype nodes are skipped.
func FromHTML(doc *html.Node, limits Limits) (*Tree, BuildStats, error) {
	stats := BuildStats{Nodes: 1}
	if doc == nil {
		return nil, stats, errors.New("nil document")
	}

	t := New("html")
	var top []*html.Node
	switch {
	case doc.Type == html.DocumentNode && firstElement(doc, atom.Html) != nil:
		h := firstElement(doc, atom.Html)
		t.copyAttrs(t.root, h)
		top = siblings(h.FirstChild)
	case doc.Type == html.DocumentNode:
		top = siblings(doc.FirstChild)
	case doc.Type == html.ElementNode && doc.DataAtom == atom.Html:
		t.copyAttrs(t.root, doc)
		top = siblings(doc.FirstChild)
	default:
		top = []*html.Node{doc}
	}

	if err := t.build(top, t.root, limits, &stats); err != nil {
		return nil, stats, err
	}
	return t, stats, nil
}

// AppendHTML parses fragment as body content and appends the resulting
// nodes to parent.
func (t *Tree) AppendHTML(parent NodeID, fragment string, limits Limits) error {
	context := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragmentWithOptions(strings.NewReader(fragment), context, html.ParseOptionEnableScripting(false))
	if err != nil {
		return fmt.Errorf("parsing fragment: %w", err)
	}
	stats := BuildStats{Nodes: t.Len()}
	return t.build(nodes, parent, limits, &stats)
}

// build copies srcs and their subtrees under parent without recursion.
func (t *Tree) build(srcs []*html.Node, parent NodeID, limits Limits, stats *BuildStats) error {
	type frame struct {
		src    *html.Node
		parent NodeID
		depth  int
	}
	base := t.Depth(parent) + 1
	stack := make([]frame, 0, len(srcs))
	for i := len(srcs) - 1; i >= 0; i-- {
		stack = append(stack, frame{src: srcs[i], parent: parent, depth: base})
	}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if limits.MaxDepth > 0 && f.depth > limits.MaxDepth {
			stats.Truncated++
			continue
		}

		var id NodeID
		switch f.src.Type {
		case html.ElementNode:
			id = t.CreateElement(f.src.Data)
			t.copyAttrs(id, f.src)
		case html.TextNode:
			id = t.CreateText(f.src.Data)
		case html.CommentNode:
			id = t.CreateComment(f.src.Data)
		case html.DocumentNode:
			kids := siblings(f.src.FirstChild)
			for i := len(kids) - 1; i >= 0; i-- {
				stack = append(stack, frame{src: kids[i], parent: f.parent, depth: f.depth})
			}
			continue
		default:
			continue
		}

		stats.Nodes++
		if limits.MaxNodes > 0 && stats.Nodes > limits.MaxNodes {
			return fmt.Errorf("%w: more than %d nodes", ErrTreeTooLarge, limits.MaxNodes)
		}
		t.AppendChild(f.parent, id)
		if f.src.Type == html.ElementNode {
			kids := siblings(f.src.FirstChild)
			for i := len(kids) - 1; i >= 0; i-- {
				stack = append(stack, frame{src: kids[i], parent: id, depth: f.depth + 1})
			}
		}
	}
	return nil
}

func (t *Tree) copyAttrs(id NodeID, src *html.Node) {
	for _, a := range src.Attr {
		key := a.Key
		if a.Namespace != "" {
			key = a.Namespace + ":" + a.Key
		}
		t.SetAttr(id, key, a.Val)
	}
}

func siblings(first *html.Node) []*html.Node {
	var out []*html.Node
	for c := first; c != nil; c = c.NextSibling {
		out = append(out, c)
	}
	return out
}

func firstElement(n *html.Node, a atom.Atom) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == a {
			return c
		}
	}
	return nil
}

// ToHTML renders the subtree rooted at id as an x/net/html node tree. The
// returned index maps every rendered element back to its NodeID.
func (t *Tree) ToHTML(id NodeID) (*html.Node, map[*html.Node]NodeID) {
	index := make(map[*html.Node]NodeID)
	root := t.htmlNode(id)
	if root == nil {
		return nil, index
	}
	index[root] = id

	type frame struct {
		src NodeID
		dst *html.Node
	}
	stack := []frame{{src: id, dst: root}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for c := t.FirstChild(f.src); c != NoNode; c = t.NextSibling(c) {
			n := t.htmlNode(c)
			if n == nil {
				continue
			}
			f.dst.AppendChild(n)
			if t.IsElement(c) {
				index[n] = c
				stack = append(stack, frame{src: c, dst: n})
			}
		}
	}
	return root, index
}

// Document wraps the whole tree in an html.DocumentNode.
func (t *Tree) Document() (*html.Node, map[*html.Node]NodeID) {
	doc := &html.Node{Type: html.DocumentNode}
	root, index := t.ToHTML(t.root)
	if root != nil {
		doc.AppendChild(root)
	}
	return doc, index
}

func (t *Tree) htmlNode(id NodeID) *html.Node {
	switch t.Kind(id) {
	case ElementNode:
		n := &html.Node{
			Type:     html.ElementNode,
			Data:     t.Tag(id),
			DataAtom: atom.Lookup([]byte(t.Tag(id))),
		}
		for _, a := range t.Attrs(id) {
			n.Attr = append(n.Attr, html.Attribute{Key: a.Key, Val: a.Val})
		}
		return n
	case TextNode:
		return &html.Node{Type: html.TextNode, Data: t.Text(id)}
	case CommentNode:
		return &html.Node{Type: html.CommentNode, Data: t.Text(id)}
	default:
		return nil
	}
}
