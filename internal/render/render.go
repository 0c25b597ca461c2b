// Package render turns an extracted content subtree into the forms a feed
// reader displays: sanitized HTML, Markdown, plain text and text blocks.
package render

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"

	"github.com/feedkit/calamine/internal/dom"
)

// NodeIndexAttr carries the arena index of an element in rendered HTML.
const NodeIndexAttr = "data-node-index"

// Options configures a Renderer.
type Options struct {
	BaseURL     string // resolves relative links and image sources
	NodeIndexes bool   // tag rendered elements and blocks with their NodeID
}

// Renderer renders content subtrees. It is safe for concurrent use.
type Renderer struct {
	opts     Options
	base     *url.URL
	md       *converter.Converter
	sanitize *bluemonday.Policy
}

// New creates a Renderer. It fails when BaseURL is set but not absolute.
func New(opts Options) (*Renderer, error) {
	r := &Renderer{
		opts: opts,
		md: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
				table.NewTablePlugin(),
			),
		),
		sanitize: newContentPolicy(opts.NodeIndexes),
	}
	if opts.BaseURL != "" {
		u, err := url.Parse(opts.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("parsing base url: %w", err)
		}
		if !u.IsAbs() {
			return nil, fmt.Errorf("base url %q is not absolute", opts.BaseURL)
		}
		r.base = u
	}
	return r, nil
}

// newContentPolicy allows the markup that survives extraction and nothing
// that could run script in a reader view.
func newContentPolicy(nodeIndexes bool) *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowElements("picture", "source", "figure", "figcaption", "main", "article", "section")
	p.AllowAttrs("srcset", "sizes", "media", "type").OnElements("img", "source")
	p.AllowAttrs("src").OnElements("source")
	if nodeIndexes {
		p.AllowAttrs(NodeIndexAttr).Matching(bluemonday.Integer).Globally()
	}
	return p
}

// document renders the subtree at root to a goquery document with links
// resolved and node indexes attached as configured.
func (r *Renderer) document(tree *dom.Tree, root dom.NodeID) (*goquery.Document, error) {
	node, index := tree.ToHTML(root)
	if node == nil {
		return nil, fmt.Errorf("node %d is not renderable", root)
	}
	if r.opts.NodeIndexes {
		for n, id := range index {
			n.Attr = append(n.Attr, html.Attribute{Key: NodeIndexAttr, Val: strconv.Itoa(int(id))})
		}
	}
	doc := goquery.NewDocumentFromNode(node)
	if r.base != nil {
		r.resolve(doc.Selection, "href")
		r.resolve(doc.Selection, "src")
	}
	return doc, nil
}

func (r *Renderer) resolve(sel *goquery.Selection, attr string) {
	sel.Find("[" + attr + "]").AddSelection(sel.Filter("[" + attr + "]")).Each(func(_ int, s *goquery.Selection) {
		raw, _ := s.Attr(attr)
		ref, err := url.Parse(strings.TrimSpace(raw))
		if err != nil {
			return
		}
		s.SetAttr(attr, r.base.ResolveReference(ref).String())
	})
}

// HTML returns the sanitized outer HTML of root.
func (r *Renderer) HTML(tree *dom.Tree, root dom.NodeID) (string, error) {
	doc, err := r.document(tree, root)
	if err != nil {
		return "", err
	}
	out, err := goquery.OuterHtml(doc.Selection)
	if err != nil {
		return "", fmt.Errorf("rendering html: %w", err)
	}
	return r.sanitize.Sanitize(out), nil
}

// Markdown converts root to CommonMark.
func (r *Renderer) Markdown(tree *dom.Tree, root dom.NodeID) (string, error) {
	node, _ := tree.ToHTML(root)
	if node == nil {
		return "", fmt.Errorf("node %d is not renderable", root)
	}
	var (
		out []byte
		err error
	)
	if r.base != nil {
		out, err = r.md.ConvertNode(node, converter.WithDomain(r.base.String()))
	} else {
		out, err = r.md.ConvertNode(node)
	}
	if err != nil {
		return "", fmt.Errorf("converting to markdown: %w", err)
	}
	return strings.TrimSpace(string(out)), nil
}

// Text returns the plain text of root, one block per paragraph.
func (r *Renderer) Text(tree *dom.Tree, root dom.NodeID) string {
	blocks := r.Blocks(tree, root)
	parts := make([]string, len(blocks))
	for i, b := range blocks {
		parts[i] = b.Text
	}
	return strings.Join(parts, "\n\n")
}
