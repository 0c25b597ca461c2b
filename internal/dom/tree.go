// Package dom provides the arena-backed markup tree the extraction engine
// mutates in place, along with the primitive tree operations every pass
// builds on (leaf detection, unwrapping, guarded removal, whitespace
// handling).
package dom

import (
	"strings"
)

// NodeID is a stable index into a Tree's arena. IDs are never reused for the
// lifetime of a tree, so they are safe map keys for side tables.
type NodeID int32

// NoNode is the zero link.
const NoNode NodeID = -1

// Kind is the node variant.
type Kind uint8

// Node kinds
const (
	ElementNode Kind = iota + 1
	TextNode
	CommentNode
)

// String returns the kind name
func (k Kind) String() string {
	switch k {
	case ElementNode:
		return "element"
	case TextNode:
		return "text"
	case CommentNode:
		return "comment"
	default:
		return "unknown"
	}
}

// Attr is a single element attribute.
type Attr struct {
	Key string
	Val string
}

// node is one arena slot. Links are IDs, never pointers.
type node struct {
	kind  Kind
	tag   string // elements only, lowercase
	data  string // text value or comment payload
	attrs []Attr

	parent     NodeID
	firstChild NodeID
	lastChild  NodeID
	prev       NodeID
	next       NodeID

	// removed is set when the node is detached from its parent. The node and
	// its subtree stay in the arena so earlier snapshots remain valid.
	removed bool
}

// Tree is a rooted markup tree stored as an arena. The root is always an
// element and can never be detached.
type Tree struct {
	nodes []node
	root  NodeID
}

// New creates a tree whose root is an element with the given tag.
func New(rootTag string) *Tree {
	t := &Tree{nodes: make([]node, 0, 64)}
	t.root = t.CreateElement(rootTag)
	return t
}

// Root returns the root element.
func (t *Tree) Root() NodeID { return t.root }

// Len returns the number of arena slots, attached or not.
func (t *Tree) Len() int { return len(t.nodes) }

func (t *Tree) alloc(n node) NodeID {
	n.parent, n.firstChild, n.lastChild, n.prev, n.next = NoNode, NoNode, NoNode, NoNode, NoNode
	t.nodes = append(t.nodes, n)
	return NodeID(len(t.nodes) - 1)
}

func (t *Tree) valid(id NodeID) bool {
	return id >= 0 && int(id) < len(t.nodes)
}

// CreateElement allocates a detached element. Attribute keys and the tag are
// lowercased; duplicate keys keep the last value.
func (t *Tree) CreateElement(tag string, attrs ...Attr) NodeID {
	id := t.alloc(node{kind: ElementNode, tag: strings.ToLower(tag)})
	for _, a := range attrs {
		t.SetAttr(id, a.Key, a.Val)
	}
	return id
}

// CreateText allocates a detached text node.
func (t *Tree) CreateText(value string) NodeID {
	return t.alloc(node{kind: TextNode, data: value})
}

// CreateComment allocates a detached comment node.
func (t *Tree) CreateComment(payload string) NodeID {
	return t.alloc(node{kind: CommentNode, data: payload})
}

// Kind returns the variant of id.
func (t *Tree) Kind(id NodeID) Kind {
	if !t.valid(id) {
		return 0
	}
	return t.nodes[id].kind
}

// IsElement reports whether id is an element.
func (t *Tree) IsElement(id NodeID) bool { return t.Kind(id) == ElementNode }

// Tag returns the lowercase tag name of an element, or "" for other kinds.
func (t *Tree) Tag(id NodeID) string {
	if !t.valid(id) {
		return ""
	}
	return t.nodes[id].tag
}

// Is reports whether id is an element with the given tag.
func (t *Tree) Is(id NodeID, tag string) bool {
	return t.IsElement(id) && t.nodes[id].tag == tag
}

// Text returns the value of a text node or the payload of a comment.
func (t *Tree) Text(id NodeID) string {
	if !t.valid(id) {
		return ""
	}
	return t.nodes[id].data
}

// SetText rewrites the value of a text node in place.
func (t *Tree) SetText(id NodeID, value string) {
	if t.Kind(id) == TextNode {
		t.nodes[id].data = value
	}
}

// Attr returns the value of the named attribute.
func (t *Tree) Attr(id NodeID, key string) (string, bool) {
	if !t.IsElement(id) {
		return "", false
	}
	for _, a := range t.nodes[id].attrs {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// AttrOr returns the named attribute or def when absent.
func (t *Tree) AttrOr(id NodeID, key, def string) string {
	if v, ok := t.Attr(id, key); ok {
		return v
	}
	return def
}

// SetAttr sets an attribute, overwriting an existing value.
func (t *Tree) SetAttr(id NodeID, key, val string) {
	if !t.IsElement(id) {
		return
	}
	key = strings.ToLower(key)
	n := &t.nodes[id]
	for i := range n.attrs {
		if n.attrs[i].Key == key {
			n.attrs[i].Val = val
			return
		}
	}
	n.attrs = append(n.attrs, Attr{Key: key, Val: val})
}

// Attrs returns the attributes of an element in document order. The slice
// is shared; use SetAttrs to replace it.
func (t *Tree) Attrs(id NodeID) []Attr {
	if !t.IsElement(id) {
		return nil
	}
	return t.nodes[id].attrs
}

// SetAttrs replaces the attribute list of an element.
func (t *Tree) SetAttrs(id NodeID, attrs []Attr) {
	if t.IsElement(id) {
		t.nodes[id].attrs = attrs
	}
}

// Parent returns the parent of id, or NoNode.
func (t *Tree) Parent(id NodeID) NodeID {
	if !t.valid(id) {
		return NoNode
	}
	return t.nodes[id].parent
}

// FirstChild returns the first child of id, or NoNode.
func (t *Tree) FirstChild(id NodeID) NodeID {
	if !t.valid(id) {
		return NoNode
	}
	return t.nodes[id].firstChild
}

// LastChild returns the last child of id, or NoNode.
func (t *Tree) LastChild(id NodeID) NodeID {
	if !t.valid(id) {
		return NoNode
	}
	return t.nodes[id].lastChild
}

// NextSibling returns the next sibling of id, or NoNode.
func (t *Tree) NextSibling(id NodeID) NodeID {
	if !t.valid(id) {
		return NoNode
	}
	return t.nodes[id].next
}

// PrevSibling returns the previous sibling of id, or NoNode.
func (t *Tree) PrevSibling(id NodeID) NodeID {
	if !t.valid(id) {
		return NoNode
	}
	return t.nodes[id].prev
}

// NextElementSibling skips non-element siblings.
func (t *Tree) NextElementSibling(id NodeID) NodeID {
	for s := t.NextSibling(id); s != NoNode; s = t.NextSibling(s) {
		if t.IsElement(s) {
			return s
		}
	}
	return NoNode
}

// PrevElementSibling skips non-element siblings.
func (t *Tree) PrevElementSibling(id NodeID) NodeID {
	for s := t.PrevSibling(id); s != NoNode; s = t.PrevSibling(s) {
		if t.IsElement(s) {
			return s
		}
	}
	return NoNode
}

// Children returns a snapshot of the children of id.
func (t *Tree) Children(id NodeID) []NodeID {
	var out []NodeID
	for c := t.FirstChild(id); c != NoNode; c = t.NextSibling(c) {
		out = append(out, c)
	}
	return out
}

// ElementChildren returns a snapshot of the element children of id.
func (t *Tree) ElementChildren(id NodeID) []NodeID {
	var out []NodeID
	for c := t.FirstChild(id); c != NoNode; c = t.NextSibling(c) {
		if t.IsElement(c) {
			out = append(out, c)
		}
	}
	return out
}

// AppendChild detaches child from wherever it is and appends it to parent.
func (t *Tree) AppendChild(parent, child NodeID) {
	t.InsertBefore(parent, child, NoNode)
}

// InsertBefore detaches child and inserts it into parent before ref. A ref
// of NoNode appends.
func (t *Tree) InsertBefore(parent, child, ref NodeID) {
	if !t.IsElement(parent) || !t.valid(child) || child == t.root || child == parent {
		return
	}
	if ref != NoNode && t.Parent(ref) != parent {
		return
	}
	if t.Contains(child, parent) {
		return
	}
	t.unlink(child)
	c := &t.nodes[child]
	c.removed = false
	c.parent = parent
	p := &t.nodes[parent]
	if ref == NoNode {
		c.prev = p.lastChild
		c.next = NoNode
		if p.lastChild != NoNode {
			t.nodes[p.lastChild].next = child
		} else {
			p.firstChild = child
		}
		p.lastChild = child
		return
	}
	r := &t.nodes[ref]
	c.prev = r.prev
	c.next = ref
	if r.prev != NoNode {
		t.nodes[r.prev].next = child
	} else {
		p.firstChild = child
	}
	r.prev = child
}

// InsertAfter inserts child into parent right after ref.
func (t *Tree) InsertAfter(parent, child, ref NodeID) {
	if ref == NoNode {
		t.InsertBefore(parent, child, t.FirstChild(parent))
		return
	}
	t.InsertBefore(parent, child, t.NextSibling(ref))
}

func (t *Tree) unlink(id NodeID) {
	n := &t.nodes[id]
	if n.parent == NoNode {
		return
	}
	p := &t.nodes[n.parent]
	if n.prev != NoNode {
		t.nodes[n.prev].next = n.next
	} else {
		p.firstChild = n.next
	}
	if n.next != NoNode {
		t.nodes[n.next].prev = n.prev
	} else {
		p.lastChild = n.prev
	}
	n.parent, n.prev, n.next = NoNode, NoNode, NoNode
}

// Detach unlinks id from its parent and marks it removed. Detaching the root
// or an already detached node is a no-op.
func (t *Tree) Detach(id NodeID) {
	if !t.valid(id) || id == t.root {
		return
	}
	t.unlink(id)
	t.nodes[id].removed = true
}

// Attached reports whether id is still reachable from the root.
func (t *Tree) Attached(id NodeID) bool {
	for cur := id; t.valid(cur); cur = t.nodes[cur].parent {
		if cur == t.root {
			return true
		}
		if t.nodes[cur].removed {
			return false
		}
	}
	return false
}

// Depth returns the number of ancestors of id.
func (t *Tree) Depth(id NodeID) int {
	d := 0
	for p := t.Parent(id); p != NoNode; p = t.Parent(p) {
		d++
	}
	return d
}

// Contains reports whether descendant is ancestor or lies beneath it.
func (t *Tree) Contains(ancestor, descendant NodeID) bool {
	for cur := descendant; cur != NoNode; cur = t.Parent(cur) {
		if cur == ancestor {
			return true
		}
	}
	return false
}

// Descendants returns every node beneath id in document (pre-)order,
// excluding id itself. The result is a snapshot; callers that mutate the
// tree while iterating it must check Attached.
func (t *Tree) Descendants(id NodeID) []NodeID {
	var out []NodeID
	stack := t.reverseChildren(id, nil)
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		out = append(out, cur)
		stack = t.reverseChildren(cur, stack)
	}
	return out
}

// Elements returns the element descendants of id in document order.
func (t *Tree) Elements(id NodeID) []NodeID {
	all := t.Descendants(id)
	out := all[:0]
	for _, n := range all {
		if t.IsElement(n) {
			out = append(out, n)
		}
	}
	return out
}

// ElementsByTag returns the element descendants of id with the given tag.
func (t *Tree) ElementsByTag(id NodeID, tag string) []NodeID {
	var out []NodeID
	for _, n := range t.Descendants(id) {
		if t.Is(n, tag) {
			out = append(out, n)
		}
	}
	return out
}

// PostOrder returns id and its descendants with every node listed after all
// of its descendants.
func (t *Tree) PostOrder(id NodeID) []NodeID {
	// Visit parent first and children right-to-left, then reverse.
	var out []NodeID
	stack := []NodeID{id}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		out = append(out, cur)
		for c := t.FirstChild(cur); c != NoNode; c = t.NextSibling(c) {
			stack = append(stack, c)
		}
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// FindFirst returns the first element beneath id with the given tag.
func (t *Tree) FindFirst(id NodeID, tag string) NodeID {
	stack := t.reverseChildren(id, nil)
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if t.Is(cur, tag) {
			return cur
		}
		stack = t.reverseChildren(cur, stack)
	}
	return NoNode
}

// Body returns the body element directly under the root, or NoNode.
func (t *Tree) Body() NodeID {
	for c := t.FirstChild(t.root); c != NoNode; c = t.NextSibling(c) {
		if t.Is(c, "body") {
			return c
		}
	}
	return NoNode
}

// ClosestAncestor returns the nearest strict ancestor of id for which match
// returns true, or NoNode.
func (t *Tree) ClosestAncestor(id NodeID, match func(NodeID) bool) NodeID {
	for p := t.Parent(id); p != NoNode; p = t.Parent(p) {
		if match(p) {
			return p
		}
	}
	return NoNode
}

// reverseChildren pushes the children of id onto stack last-first so that
// popping yields them in document order.
func (t *Tree) reverseChildren(id NodeID, stack []NodeID) []NodeID {
	for c := t.LastChild(id); c != NoNode; c = t.PrevSibling(c) {
		stack = append(stack, c)
	}
	return stack
}
