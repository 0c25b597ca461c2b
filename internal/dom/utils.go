package dom

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// TagSet is a set of lowercase tag names.
type TagSet map[string]struct{}

// NewTagSet builds a TagSet from the given tags.
func NewTagSet(tags ...string) TagSet {
	s := make(TagSet, len(tags))
	for _, tag := range tags {
		s[strings.ToLower(tag)] = struct{}{}
	}
	return s
}

// Has reports whether tag is in the set.
func (s TagSet) Has(tag string) bool {
	_, ok := s[tag]
	return ok
}

// Tags returns the members of the set in no particular order.
func (s TagSet) Tags() []string {
	out := make([]string, 0, len(s))
	for tag := range s {
		out = append(out, tag)
	}
	return out
}

// WhitespaceSensitiveTags are elements whose text keeps its whitespace.
var WhitespaceSensitiveTags = NewTagSet("code", "listing", "plaintext", "pre", "textarea", "xmp")

var whitespaceRun = regexp.MustCompile(`\s{2,}`)

// IsLeaf reports whether id carries no content. An element is a leaf when
// its tag is not in exceptions and every child is a leaf; a text node is a
// leaf when its trimmed value is empty; comments are always leaves.
//
// The walk is iterative so adversarially deep trees cannot exhaust the
// stack. It stops at the first non-leaf descendant.
func (t *Tree) IsLeaf(id NodeID, exceptions TagSet) bool {
	stack := []NodeID{id}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		switch t.Kind(cur) {
		case ElementNode:
			if exceptions.Has(t.Tag(cur)) {
				return false
			}
			for c := t.FirstChild(cur); c != NoNode; c = t.NextSibling(c) {
				stack = append(stack, c)
			}
		case TextNode:
			if strings.TrimSpace(t.Text(cur)) != "" {
				return false
			}
		case CommentNode:
		}
	}
	return true
}

// Unwrap replaces id with its children in its parent's child list. When the
// neighbouring sibling on either side is a text node a single space is
// inserted on that side, unless that text already has whitespace at the
// boundary, so previously separated words do not merge. It
// returns false, leaving the tree untouched, when id has no parent.
func (t *Tree) Unwrap(id NodeID) bool {
	parent := t.Parent(id)
	if parent == NoNode || !t.IsElement(id) {
		return false
	}
	prev, next := t.PrevSibling(id), t.NextSibling(id)
	if t.Kind(prev) == TextNode && !endsWithSpace(t.Text(prev)) {
		t.InsertBefore(parent, t.CreateText(" "), id)
	}
	for c := t.FirstChild(id); c != NoNode; c = t.FirstChild(id) {
		t.InsertBefore(parent, c, id)
	}
	if t.Kind(next) == TextNode && !startsWithSpace(t.Text(next)) {
		t.InsertBefore(parent, t.CreateText(" "), id)
	}
	t.Detach(id)
	return true
}

func startsWithSpace(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsSpace(r)
}

func endsWithSpace(s string) bool {
	r, _ := utf8.DecodeLastRuneInString(s)
	return unicode.IsSpace(r)
}

// RemoveIfAttached detaches id only when it is still reachable from the
// root. It reports whether anything was removed.
func (t *Tree) RemoveIfAttached(id NodeID) bool {
	if !t.Attached(id) || id == t.root {
		return false
	}
	t.Detach(id)
	return true
}

// Replace puts with in the position of id and detaches id.
func (t *Tree) Replace(id, with NodeID) bool {
	parent := t.Parent(id)
	if parent == NoNode {
		return false
	}
	t.InsertBefore(parent, with, id)
	t.Detach(id)
	return true
}

// CondenseWhitespace collapses every run of two or more whitespace
// characters into a single space.
func CondenseWhitespace(s string) string {
	return whitespaceRun.ReplaceAllString(s, " ")
}

// WhitespaceSensitive reports whether id sits inside an element whose
// whitespace is significant.
func (t *Tree) WhitespaceSensitive(id NodeID) bool {
	return t.ClosestAncestor(id, func(p NodeID) bool {
		return WhitespaceSensitiveTags.Has(t.Tag(p))
	}) != NoNode
}

// IsBlank reports whether id is a whitespace-only text node.
func (t *Tree) IsBlank(id NodeID) bool {
	return t.Kind(id) == TextNode && strings.TrimSpace(t.Text(id)) == ""
}

// TrimEdges repeatedly removes whitespace-only text nodes and line breaks
// from both ends of the child list of id. It reports whether anything was
// removed.
func (t *Tree) TrimEdges(id NodeID) bool {
	changed := false
	for c := t.FirstChild(id); c != NoNode && t.trimmable(c); c = t.FirstChild(id) {
		t.Detach(c)
		changed = true
	}
	for c := t.LastChild(id); c != NoNode && t.trimmable(c); c = t.LastChild(id) {
		t.Detach(c)
		changed = true
	}
	return changed
}

func (t *Tree) trimmable(id NodeID) bool {
	return t.IsBlank(id) || t.Is(id, "br")
}

// TextContent concatenates all text beneath id in document order.
func (t *Tree) TextContent(id NodeID) string {
	if t.Kind(id) == TextNode {
		return t.Text(id)
	}
	var b strings.Builder
	for _, n := range t.Descendants(id) {
		if t.Kind(n) == TextNode {
			b.WriteString(t.Text(n))
		}
	}
	return b.String()
}
