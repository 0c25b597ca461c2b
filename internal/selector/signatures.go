package selector

import (
	"fmt"

	"github.com/andybalholm/cascadia"
	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"
)

// Signature is a high precision structural pattern for article content.
type Signature struct {
	Name  string
	Match func(doc *html.Node) ([]*html.Node, error)
}

// CSS builds a signature from a CSS selector group. It panics if the
// selector does not parse.
func CSS(selector string) Signature {
	group, err := cascadia.ParseGroup(selector)
	if err != nil {
		panic(fmt.Sprintf("selector: bad css signature %q: %v", selector, err))
	}
	return Signature{
		Name: selector,
		Match: func(doc *html.Node) ([]*html.Node, error) {
			return cascadia.QueryAll(doc, group), nil
		},
	}
}

// XPath builds a signature from an XPath expression.
func XPath(expr string) Signature {
	return Signature{
		Name: expr,
		Match: func(doc *html.Node) ([]*html.Node, error) {
			return htmlquery.QueryAll(doc, expr)
		},
	}
}

// DefaultSignatures are tried in order by the fast path.
var DefaultSignatures = []Signature{
	CSS("article"),
	XPath(`//*[@itemprop="articleBody"]`),
	CSS(".entry-content"),
	CSS(".article-body"),
	CSS(`[itemtype$="/Article"], [itemtype$="/NewsArticle"], [itemtype$="/BlogPosting"]`),
}
