package calamine_test

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/feedkit/calamine"
)

func TestExtractor(t *testing.T) {
	ext := calamine.New()

	article, err := ext.ExtractFromHTML(examplePage, nil)
	require.NoError(t, err)

	assert.Equal(t, "Article Title", article.Title)
	assert.Contains(t, article.Content, "<article>")
	assert.NotContains(t, article.Content, "<nav>")
	assert.NotContains(t, article.PlainContent, "Home")
	assert.Contains(t, article.Markdown, "# Article Title")
	require.NotEmpty(t, article.PlainText)
	assert.Equal(t, "Article Title", article.PlainText[0].Text)
	assert.Empty(t, article.PlainText[0].NodeIndex)
}

func TestOptions(t *testing.T) {
	ext := calamine.New(
		calamine.WithNodeIndexes(true),
		calamine.WithBaseURL("https://example.com/a/b"),
		calamine.WithTimeout(time.Second*5),
	)

	article, err := ext.ExtractFromHTML(examplePage, nil)
	require.NoError(t, err)

	assert.Contains(t, article.Content, "data-node-index")
	assert.Contains(t, article.Content, `href="https://example.com/more"`)
	assert.Contains(t, article.Markdown, "https://example.com/more")
	for _, block := range article.PlainText {
		assert.NotEmpty(t, block.NodeIndex)
	}
}

func TestPerCallOptions(t *testing.T) {
	ext := calamine.New()
	opts := calamine.DefaultOptions()
	opts.EnableFastPath = false

	article, err := ext.ExtractFromHTML(examplePage, &opts)
	require.NoError(t, err)
	assert.Equal(t, "score", article.Method)
	assert.Empty(t, article.Signature)
}

func TestExtractFromNode(t *testing.T) {
	doc, err := html.Parse(strings.NewReader(examplePage))
	require.NoError(t, err)
	var before bytes.Buffer
	require.NoError(t, html.Render(&before, doc))

	article, err := calamine.New().ExtractFromNode(doc, nil)
	require.NoError(t, err)
	assert.Equal(t, "signature", article.Method)

	var after bytes.Buffer
	require.NoError(t, html.Render(&after, doc))
	assert.Equal(t, before.String(), after.String(), "input document was modified")

	_, err = calamine.New().ExtractFromNode(nil, nil)
	assert.True(t, calamine.IsParseError(err))
	assert.ErrorIs(t, err, calamine.ErrNoDocument)
}

func TestEmptyDocument(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"chrome only", `<html><body><nav> </nav><script>track()</script></body></html>`},
		{"empty string", ``},
		{"whitespace", " \n "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			ext := calamine.New(calamine.WithLogger(zerolog.New(&buf)))

			article, err := ext.ExtractFromHTML(tt.src, nil)
			require.NoError(t, err)
			assert.Equal(t, "fallback", article.Method)
			require.Len(t, article.PlainText, 1)
			assert.Equal(t, "Unable to extract content from this page.", article.PlainText[0].Text)
			assert.Contains(t, buf.String(), `[extraction:Run]`)

			article, err = ext.ExtractFromReader(strings.NewReader(tt.src), nil)
			require.NoError(t, err)
			assert.Equal(t, "fallback", article.Method)
		})
	}
}

func TestErrors(t *testing.T) {
	t.Run("buffer size", func(t *testing.T) {
		ext := calamine.New(calamine.WithMaxBufferSize(64))
		_, err := ext.ExtractFromReader(strings.NewReader(examplePage), nil)
		require.Error(t, err)
		assert.True(t, calamine.IsValidationError(err))
		assert.ErrorIs(t, err, calamine.ErrDocumentLarge)
	})

	t.Run("node limit", func(t *testing.T) {
		ext := calamine.New(calamine.WithLimits(10, 0))
		_, err := ext.ExtractFromHTML(examplePage, nil)
		require.Error(t, err)
		assert.True(t, calamine.IsValidationError(err))
		assert.ErrorIs(t, err, calamine.ErrTreeTooLarge)
	})

	t.Run("relative base url", func(t *testing.T) {
		ext := calamine.New(calamine.WithBaseURL("/relative"))
		_, err := ext.ExtractFromHTML(examplePage, nil)
		assert.True(t, calamine.IsValidationError(err))
	})

	t.Run("nil reader", func(t *testing.T) {
		_, err := calamine.New().ExtractFromReader(nil, nil)
		assert.ErrorIs(t, err, calamine.ErrNoDocument)
	})

	t.Run("read failure", func(t *testing.T) {
		_, err := calamine.New().ExtractFromReader(failingReader{}, nil)
		assert.True(t, calamine.IsParseError(err))
	})

	t.Run("timeout", func(t *testing.T) {
		ext := calamine.New(calamine.WithTimeout(time.Nanosecond))
		var b strings.Builder
		for i := 0; i < 2000; i++ {
			b.WriteString(`<div class="post"><p>some words in a paragraph</p></div>`)
		}
		_, err := ext.ExtractFromHTML(b.String(), nil)
		require.Error(t, err)
		assert.True(t, calamine.IsTimeoutError(err))
		assert.ErrorIs(t, err, calamine.ErrTimeout)
	})
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("boom") }

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	ext := calamine.New(calamine.WithLogger(zerolog.New(&buf).Level(zerolog.DebugLevel)))

	_, err := ext.ExtractFromHTML(examplePage, nil)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"message":"extraction complete"`)
	assert.Contains(t, buf.String(), `"method":"signature"`)
}

func TestConcurrentExtraction(t *testing.T) {
	ext := calamine.New(calamine.WithFastPath(false))

	var wg sync.WaitGroup
	results := make([]*calamine.Article, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			article, err := ext.ExtractFromHTML(examplePage, nil)
			assert.NoError(t, err)
			results[i] = article
		}(i)
	}
	wg.Wait()

	for _, article := range results[1:] {
		require.NotNil(t, article)
		assert.Equal(t, results[0].Content, article.Content)
	}
}

func TestBuildInfo(t *testing.T) {
	info := calamine.GetBuildInfo()
	assert.Equal(t, calamine.Version, info.Version)
	assert.Equal(t, "calamine", info.Name)
	assert.True(t, strings.HasPrefix(info.GoVersion, "go"))
}

// buildNestedHTML wraps content in levels of plain divs inside wrapperTag.
func buildNestedHTML(levels int, wrapperTag, content string) string {
	var b strings.Builder
	b.WriteString(`<!DOCTYPE html><html><head><title>Test</title></head><body><nav><a href="/">Home</a></nav>`)
	b.WriteString("<" + wrapperTag + ">")
	b.WriteString(strings.Repeat("<div>", levels))
	b.WriteString(content)
	b.WriteString("<p>Additional paragraph content to ensure extraction threshold is met.</p>")
	b.WriteString("<p>More content to provide context and meet character requirements.</p>")
	b.WriteString(strings.Repeat("</div>", levels))
	b.WriteString("</" + wrapperTag + "></body></html>")
	return b.String()
}

func TestDeeplyNestedContent(t *testing.T) {
	tests := []struct {
		name       string
		html       string
		expectText string
	}{
		{
			name:       "NestedParagraphs_7Levels",
			html:       buildNestedHTML(7, "article", "<p>This is deeply nested content that should be extracted.</p>"),
			expectText: "This is deeply nested content that should be extracted.",
		},
		{
			name:       "NestedHeadings_10Levels",
			html:       buildNestedHTML(10, "main", "<h3>Deeply Nested Title</h3>"),
			expectText: "Deeply Nested Title",
		},
		{
			name:       "NestedLists_5Levels",
			html:       buildNestedHTML(5, "article", strings.Repeat("<ul><li>item one</li><li>item two", 5)+strings.Repeat("</li></ul>", 5)),
			expectText: "item two",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			article, err := calamine.New().ExtractFromHTML(tt.html, nil)
			require.NoError(t, err)
			assert.Contains(t, article.Content, tt.expectText)
			assert.NotContains(t, article.Content, "Home")
		})
	}
}

func TestBeyondDepthLimit(t *testing.T) {
	article, err := calamine.New(calamine.WithLimits(0, 64)).ExtractFromHTML(buildNestedHTML(100, "article", "<p>too deep</p>"), nil)
	require.NoError(t, err)
	assert.NotContains(t, article.Content, "too deep")
	assert.NotEmpty(t, article.PlainText)
}
