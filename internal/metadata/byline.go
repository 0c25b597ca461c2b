package metadata

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// BylineSelectors are tried in order of confidence. Meta tags contribute
// their content attribute, everything else its text.
var BylineSelectors = []string{
	"meta[property='article:author']",
	"meta[property='og:article:author']",
	"meta[name='author']",
	"meta[name='sailthru.author']",
	"meta[name='byl']",
	"meta[name='twitter:creator']",
	"meta[property='book:author']",
	"meta[name='dc.creator']",
	"meta[name='dcterms.creator']",
	"a[rel='author']",
	"[itemprop='author']",
	"[class*='byline']",
	"[class*='author']",
}

var bylinePrefixes = []string{"by ", "author: ", "written by ", "posted by ", "published by ", "reported by "}

var bylineSuffixes = []string{" | Author", " | Writer", " | Reporter", " | Staff"}

// ExtractByline returns the author of the document, or "".
func ExtractByline(doc *goquery.Document) string {
	for _, selector := range BylineSelectors {
		var byline string
		doc.Find(selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			if strings.HasPrefix(selector, "meta") {
				byline = cleanByline(s.AttrOr("content", ""))
			} else {
				byline = cleanByline(s.Text())
			}
			return byline == ""
		})
		if byline != "" {
			return byline
		}
	}

	// Paragraphs that open with "By ".
	var byline string
	doc.Find("p").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := strings.TrimSpace(s.Text())
		lower := strings.ToLower(text)
		if strings.HasPrefix(lower, "by ") || strings.HasPrefix(lower, "written by ") {
			byline = cleanByline(text)
		}
		return byline == ""
	})
	return byline
}

func cleanByline(byline string) string {
	byline = strings.Join(strings.Fields(byline), " ")
	for _, prefix := range bylinePrefixes {
		if len(byline) >= len(prefix) && strings.EqualFold(byline[:len(prefix)], prefix) {
			byline = strings.TrimSpace(byline[len(prefix):])
		}
	}
	for _, suffix := range bylineSuffixes {
		byline = strings.TrimSpace(strings.TrimSuffix(byline, suffix))
	}
	return byline
}
