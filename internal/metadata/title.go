package metadata

import (
	"regexp"
	"strings"

	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"
)

// SelectorScore is an XPath expression with a confidence score.
type SelectorScore struct {
	Selector string
	Score    int
}

// TitleSelectors locate candidate titles. Scores of identical candidates
// found by several selectors add up.
var TitleSelectors = []SelectorScore{
	{Selector: `//h1[@class="entry-title"]`, Score: 6},
	{Selector: `//h1[@itemprop="headline"]`, Score: 5},
	{Selector: `//header[@class="entry-header"]/h1[@class="entry-title"]`, Score: 4},
	{Selector: `//meta[@property="og:title"]/@content`, Score: 3},
	{Selector: `//meta[@name="twitter:title"]/@content`, Score: 2},
	{Selector: `//meta[@property="twitter:title"]/@content`, Score: 2},
	{Selector: `//h2[@itemprop="headline"]`, Score: 2},
	{Selector: `//meta[contains(@itemprop, "headline")]/@content`, Score: 2},
	{Selector: `//h1[@class="post__title"]`, Score: 1},
	{Selector: `//h1[@class="title"]`, Score: 1},
	{Selector: `//header/h1`, Score: 1},
	{Selector: `//meta[@name="dcterms.title"]/@content`, Score: 1},
	{Selector: `//meta[@name="title"]/@content`, Score: 1},
	{Selector: `//head/title`, Score: 1},
	{Selector: `//h1`, Score: 1},
}

var titleWhitespace = regexp.MustCompile(`\s+`)

// ExtractTitle returns the best scoring title candidate in doc. Ties go to
// the candidate found first.
func ExtractTitle(doc *html.Node) string {
	scores := make(map[string]int)
	var order []string
	for _, sel := range TitleSelectors {
		nodes, err := htmlquery.QueryAll(doc, sel.Selector)
		if err != nil {
			continue
		}
		for _, n := range nodes {
			title := titleWhitespace.ReplaceAllString(strings.TrimSpace(htmlquery.InnerText(n)), " ")
			if title == "" {
				continue
			}
			if _, seen := scores[title]; !seen {
				order = append(order, title)
			}
			scores[title] += sel.Score
		}
	}

	var best string
	for _, title := range order {
		if best == "" || scores[title] > scores[best] {
			best = title
		}
	}
	return best
}
