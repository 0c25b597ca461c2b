package metadata

import (
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// dateSource is a selector and the attribute holding the date; an empty
// attribute means the element text.
type dateSource struct {
	selector string
	attr     string
}

// dateSources are tried in order; the first parseable value wins.
var dateSources = []dateSource{
	{"meta[property='article:published_time']", "content"},
	{"meta[property='og:article:published_time']", "content"},
	{"meta[name='pubdate']", "content"},
	{"meta[name='publishdate']", "content"},
	{"meta[name='date']", "content"},
	{"meta[itemprop='datePublished']", "content"},
	{"time[datetime]", "datetime"},
	{"meta[property='og:updated_time']", "content"},
	{"meta[property='article:modified_time']", "content"},
	{"meta[itemprop='dateModified']", "content"},
	{"meta[name='DC.date.issued']", "content"},
	{"meta[name='dcterms.created']", "content"},
	{"span[class='date'], span[class='published'], span[class='timestamp']", ""},
	{"time", ""},
	{"[class*='dateline'], [class*='date']", ""},
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05-0700",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"20060102T150405Z",
	time.RFC1123,
	time.RFC1123Z,
	time.RFC822,
	time.RFC822Z,
	time.RFC850,
	"January 2, 2006",
	"January 2, 2006 15:04",
	"January 2, 2006 3:04 PM",
	"Jan 2, 2006",
	"2 January 2006",
	"2 Jan 2006",
	"2006/01/02",
	"01/02/2006",
	"02/01/2006",
}

var datePrefix = regexp.MustCompile(`(?i)^(published|updated|posted|written|date)?\s*(on)?\s*:?\s*`)

// ExtractDate returns the publication date of the document, or the zero
// time.
func ExtractDate(doc *goquery.Document) time.Time {
	for _, src := range dateSources {
		var found time.Time
		doc.Find(src.selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			raw := s.Text()
			if src.attr != "" {
				raw = s.AttrOr(src.attr, "")
			}
			found = ParseDate(raw)
			return found.IsZero()
		})
		if !found.IsZero() {
			return found
		}
	}
	return time.Time{}
}

// ParseDate parses s with the known layouts after stripping labels such as
// "Published on". The result is in UTC, truncated to the second.
func ParseDate(s string) time.Time {
	s = strings.Join(strings.Fields(s), " ")
	s = strings.TrimSpace(datePrefix.ReplaceAllString(s, ""))
	if s == "" {
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC().Truncate(time.Second)
		}
	}
	return time.Time{}
}
