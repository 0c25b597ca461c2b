// Package features computes the per-element measurements the scoring model
// reads: visible text length, anchor text length, sibling position and
// id/class attribute text.
package features

import (
	"strings"
	"unicode/utf8"

	"github.com/feedkit/calamine/internal/dom"
)

// Record holds the derived values for one element.
type Record struct {
	TextLength           uint32
	AnchorTextLength     uint32
	SiblingCount         uint32
	PreviousSiblingCount uint32
	AttributeText        string
	Score                float64
}

// AnchorDensity returns the share of the element's text that sits inside
// links.
func (r *Record) AnchorDensity() float64 {
	if r.TextLength == 0 {
		return 0
	}
	return float64(r.AnchorTextLength) / float64(r.TextLength)
}

// Table maps elements to their records. It annotates a tree without owning
// any of its nodes and is valid until the tree is discarded.
type Table struct {
	records map[dom.NodeID]*Record
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{records: make(map[dom.NodeID]*Record)}
}

// Get returns the record for id, or nil.
func (t *Table) Get(id dom.NodeID) *Record { return t.records[id] }

// Ensure returns the record for id, creating it when missing.
func (t *Table) Ensure(id dom.NodeID) *Record {
	r, ok := t.records[id]
	if !ok {
		r = &Record{}
		t.records[id] = r
	}
	return r
}

// Len returns the number of records.
func (t *Table) Len() int { return len(t.records) }

// Extract computes a record for every attached element of tree except the
// root.
func Extract(tree *dom.Tree) *Table {
	table := NewTable()
	root := tree.Root()

	elements := tree.Elements(root)
	countSiblings(tree, root, table)
	for _, id := range elements {
		table.Ensure(id).AttributeText = AttributeText(tree, id)
		countSiblings(tree, id, table)
	}

	accumulateText(tree, table)
	accumulateAnchors(tree, table)

	for _, r := range table.records {
		if r.AnchorTextLength > r.TextLength {
			r.AnchorTextLength = r.TextLength
		}
	}
	return table
}

// accumulateText adds the trimmed rune count of every text node to each of
// its element ancestors below the root.
func accumulateText(tree *dom.Tree, table *Table) {
	root := tree.Root()
	for _, id := range tree.Descendants(root) {
		if tree.Kind(id) != dom.TextNode {
			continue
		}
		n := uint32(utf8.RuneCountInString(strings.TrimSpace(tree.Text(id))))
		if n == 0 {
			continue
		}
		for p := tree.Parent(id); p != dom.NoNode && p != root; p = tree.Parent(p) {
			table.Ensure(p).TextLength += n
		}
	}
}

// accumulateAnchors adds the text length of every linking anchor to the
// anchor and each of its ancestors below the root. Nested anchors count
// more than once.
func accumulateAnchors(tree *dom.Tree, table *Table) {
	root := tree.Root()
	for _, a := range tree.ElementsByTag(root, "a") {
		if strings.TrimSpace(tree.AttrOr(a, "href", "")) == "" {
			continue
		}
		n := table.Ensure(a).TextLength
		if n == 0 {
			continue
		}
		for p := a; p != dom.NoNode && p != root; p = tree.Parent(p) {
			table.Ensure(p).AnchorTextLength += n
		}
	}
}

// countSiblings records the sibling count and rank of every element child
// of parent in one pass over its children.
func countSiblings(tree *dom.Tree, parent dom.NodeID, table *Table) {
	kids := tree.ElementChildren(parent)
	for i, c := range kids {
		r := table.Ensure(c)
		r.SiblingCount = uint32(len(kids) - 1)
		r.PreviousSiblingCount = uint32(i)
	}
}

// AttributeText joins the id and class attributes of id, lowercased, with
// whitespace runs folded to single spaces.
func AttributeText(tree *dom.Tree, id dom.NodeID) string {
	text := tree.AttrOr(id, "id", "") + " " + tree.AttrOr(id, "class", "")
	return strings.ToLower(strings.Join(strings.Fields(text), " "))
}
