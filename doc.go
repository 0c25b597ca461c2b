/*
Package calamine extracts the main content of a web page for a feed reader.
It separates an article from the navigation, comments, advertising and other
boilerplate around it and renders what remains as HTML, Markdown and plain
text.

Extraction runs in stages over an arena-backed copy of the document:
structural normalization, feature extraction, scoring and content
selection. Pages carrying a well-known article marker, such as a single
<article> element or schema.org microdata, are resolved by a fast path
that skips scoring.

Basic Usage:

	import "github.com/feedkit/calamine"

	// Create a new extractor
	ext := calamine.New()

	// Extract from HTML string
	article, err := ext.ExtractFromHTML(htmlString, nil)
	if err != nil {
	    // Handle error
	}

	// Access article data
	fmt.Printf("Title: %s\n", article.Title)
	fmt.Printf("Byline: %s\n", article.Byline)
	fmt.Printf("Content: %s\n", article.Content)
	fmt.Printf("Markdown: %s\n", article.Markdown)

	// Access plain text paragraphs
	for i, block := range article.PlainText {
	    fmt.Printf("Paragraph %d: %s\n", i+1, block.Text)
	}

Advanced Usage with Options:

	ext := calamine.New(
	    calamine.WithBaseURL("https://example.com/posts/"),
	    calamine.WithNodeIndexes(true),
	    calamine.WithFastPath(false),
	    calamine.WithTimeout(time.Second*10),
	)

	// Extract from a reader (like a file or HTTP response)
	article, err := ext.ExtractFromReader(reader, nil)

Errors are tagged with a category. Oversized documents fail with a
validation error wrapping ErrTreeTooLarge or ErrDocumentLarge; use
errors.Is, IsValidationError and IsParseError to inspect them. A document
with no usable content is not an error: its content is a single paragraph
explaining that nothing could be extracted.
*/
package calamine
