package render

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/feedkit/calamine/internal/dom"
)

// Block is one paragraph of plain text.
type Block struct {
	Text      string
	NodeIndex string
}

// blockTags start a new text block.
var blockTags = dom.NewTagSet(
	"address", "article", "aside", "blockquote", "dd", "div", "dl", "dt",
	"figcaption", "figure", "footer", "h1", "h2", "h3", "h4", "h5", "h6",
	"header", "hr", "li", "main", "nav", "ol", "p", "pre", "section", "table",
	"tbody", "td", "tfoot", "th", "thead", "tr", "ul", "body", "center",
)

// Blocks splits the text under root into paragraphs. Inline runs between
// block elements form blocks of their own. List items are prefixed with
// "* ".
func (r *Renderer) Blocks(tree *dom.Tree, root dom.NodeID) []Block {
	c := &blockCollector{tree: tree, indexes: r.opts.NodeIndexes}
	c.walk(root)
	c.flush(root)
	return c.blocks
}

type blockCollector struct {
	tree    *dom.Tree
	indexes bool
	blocks  []Block
	run     strings.Builder
}

func (c *blockCollector) walk(id dom.NodeID) {
	t := c.tree
	for child := t.FirstChild(id); child != dom.NoNode; child = t.NextSibling(child) {
		switch t.Kind(child) {
		case dom.TextNode:
			c.run.WriteString(t.Text(child))
		case dom.ElementNode:
			switch {
			case t.Is(child, "br"):
				c.run.WriteString(" ")
			case blockTags.Has(t.Tag(child)):
				c.flush(id)
				if t.Is(child, "li") {
					c.run.WriteString("* ")
				}
				c.walk(child)
				c.flush(child)
			default:
				c.walk(child)
			}
		}
	}
}

// flush ends the current inline run and records it as a block owned by id.
func (c *blockCollector) flush(id dom.NodeID) {
	text := normalizeBlock(c.run.String())
	c.run.Reset()
	if text == "" || text == "*" {
		return
	}
	b := Block{Text: text}
	if c.indexes {
		b.NodeIndex = strconv.Itoa(int(id))
	}
	c.blocks = append(c.blocks, b)
}

// normalizeBlock folds compatibility characters with NFKC, drops control
// characters and joins the remaining words with single spaces.
func normalizeBlock(s string) string {
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && !unicode.IsSpace(r) {
			return -1
		}
		return r
	}, norm.NFKC.String(s))
	return strings.Join(strings.Fields(s), " ")
}
