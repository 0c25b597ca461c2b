// Package metadata reads the article title, byline and publication date
// from a document before normalization strips the head and page chrome.
package metadata

import (
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Metadata describes an article.
type Metadata struct {
	Title  string
	Byline string
	Date   time.Time
}

// Extract reads every metadata field from doc.
func Extract(doc *html.Node) Metadata {
	if doc == nil {
		return Metadata{}
	}
	q := goquery.NewDocumentFromNode(doc)
	return Metadata{
		Title:  ExtractTitle(doc),
		Byline: ExtractByline(q),
		Date:   ExtractDate(q),
	}
}
