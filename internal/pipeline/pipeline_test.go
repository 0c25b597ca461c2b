package pipeline

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/feedkit/calamine/internal/dom"
	"github.com/feedkit/calamine/internal/selector"
)

func words(n int) string {
	var b strings.Builder
	for b.Len() < n {
		b.WriteString("lorem ipsum dolor sit amet ")
	}
	return strings.TrimSpace(b.String()[:n])
}

func run(t testing.TB, cfg Config, src string) *Result {
	t.Helper()
	res, err := New(cfg).RunReader(strings.NewReader(src))
	require.NoError(t, err)
	return res
}

func textOf(res *Result) string {
	return strings.Join(strings.Fields(res.Tree.TextContent(res.Tree.Root())), " ")
}

// bodyChildren returns the element children of the body.
func bodyChildren(res *Result) []dom.NodeID {
	return res.Tree.ElementChildren(res.Tree.Body())
}

func TestRunArticleBeatsNavigation(t *testing.T) {
	src := `<html><head><title>Story</title></head><body>` +
		`<nav><ul><li><a href="/">Home</a></li><li><a href="/about">About</a></li></ul></nav>` +
		`<article><p>` + words(1100) + ` <a href="/more">more</a></p></article>` +
		`<footer>Copyright</footer></body></html>`

	for _, fastPath := range []bool{true, false} {
		cfg := DefaultConfig()
		cfg.EnableFastPath = fastPath
		res := run(t, cfg, src)

		children := bodyChildren(res)
		require.Len(t, children, 1)
		assert.Equal(t, res.Root, children[0])
		assert.Equal(t, "article", res.Tree.Tag(res.Root))
		assert.Equal(t, dom.NoNode, res.Tree.FindFirst(res.Tree.Root(), "nav"))
		assert.NotContains(t, textOf(res), "Copyright")
		assert.Equal(t, "Story", res.Metadata.Title)
		assert.NoError(t, res.Fallback)

		if fastPath {
			assert.Equal(t, selector.MethodSignature, res.Selection.Method)
			assert.Equal(t, "article", res.Selection.Signature)
			assert.Nil(t, res.Features)
		} else {
			assert.Equal(t, selector.MethodScore, res.Selection.Method)
			assert.NotNil(t, res.Features)
			assert.Positive(t, res.Stats.Candidates)
		}
	}
}

func TestRunContentBeatsComments(t *testing.T) {
	var b strings.Builder
	b.WriteString(`<html><body><div id="comments">`)
	for i := 0; i < 8; i++ {
		b.WriteString(`<p>Nice post! <a href="/u/1">commenter name</a></p>`)
	}
	b.WriteString(`</div><div class="content">`)
	for i := 0; i < 4; i++ {
		b.WriteString(`<p>` + words(400) + `</p>`)
	}
	b.WriteString(`</div></body></html>`)

	res := run(t, DefaultConfig(), b.String())
	assert.Equal(t, selector.MethodScore, res.Selection.Method)
	assert.Equal(t, "div", res.Tree.Tag(res.Root))
	assert.Len(t, res.Tree.ElementsByTag(res.Root, "p"), 4)
	assert.NotContains(t, textOf(res), "Nice post")
}

func TestRunNeverEmpty(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"empty body", `<html><body> </body></html>`},
		{"only chrome", `<html><body><nav></nav><script>x()</script></body></html>`},
		{"only head", `<html><head><title>T</title></head></html>`},
		{"empty input", ``},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := run(t, DefaultConfig(), tt.src)
			assert.Equal(t, ErrorBodyText, textOf(res))
			assert.Equal(t, res.Tree.Body(), res.Root)
			assert.Equal(t, selector.MethodFallback, res.Selection.Method)
			assert.True(t, IsExtractionError(res.Fallback))
			assert.ErrorIs(t, res.Fallback, ErrNoContent)
		})
	}
}

func TestRunNilTree(t *testing.T) {
	res := New(DefaultConfig()).Run(nil)
	require.NotNil(t, res.Tree)
	assert.NotEqual(t, dom.NoNode, res.Tree.Body())
	assert.Equal(t, ErrorBodyText, textOf(res))
}

func TestRunSynthesizesBody(t *testing.T) {
	tree := dom.New("html")
	p := tree.CreateElement("p")
	tree.AppendChild(p, tree.CreateText(words(300)))
	tree.AppendChild(tree.Root(), p)

	res := New(DefaultConfig()).Run(tree)
	body := res.Tree.Body()
	require.NotEqual(t, dom.NoNode, body)
	assert.Equal(t, body, res.Tree.Parent(p))
	assert.True(t, res.Tree.Contains(res.Root, p) || res.Root == p)
	assert.Equal(t, words(300), textOf(res))
}

func TestRunStripsAttributesLast(t *testing.T) {
	src := `<html lang="en"><body class="page"><article class="story" onclick="go()">` +
		`<p id="lead">` + words(200) + ` <a href="/a" class="c" target="_blank">link</a></p>` +
		`<img src="/i.png" alt="pic" width="300" height="200"></article></body></html>`
	res := run(t, DefaultConfig(), src)
	tree := res.Tree

	require.Equal(t, "article", tree.Tag(res.Root))
	assert.Empty(t, tree.Attrs(tree.Root()))
	assert.Empty(t, tree.Attrs(tree.Body()))
	assert.Empty(t, tree.Attrs(res.Root))

	a := tree.FindFirst(res.Root, "a")
	assert.Equal(t, []dom.Attr{{Key: "href", Val: "/a"}}, tree.Attrs(a))
	img := tree.FindFirst(res.Root, "img")
	assert.Equal(t, "/i.png", tree.AttrOr(img, "src", ""))
	_, hasWidth := tree.Attr(img, "width")
	assert.False(t, hasWidth)
}

func TestRunLeafInvariant(t *testing.T) {
	src := `<html><body><div class="main"><p>` + words(600) + `</p><p> </p><span></span>` +
		`<ul><li></li><li>` + words(50) + `</li><li>two</li></ul></div></body></html>`
	cfg := DefaultConfig()
	res := run(t, cfg, src)
	for _, id := range res.Tree.Elements(res.Tree.Root()) {
		if res.Tree.Tag(id) == "html" || res.Tree.Tag(id) == "body" {
			continue
		}
		assert.False(t, res.Tree.IsLeaf(id, cfg.LeafExceptions), "leaf <%s> survived", res.Tree.Tag(id))
	}
}

func TestRunMetadata(t *testing.T) {
	src := `<html><head><title>Headline</title><meta name="author" content="Ann Lee">` +
		`<meta property="article:published_time" content="2023-05-06T07:08:09Z"></head>` +
		`<body><article><p>` + words(300) + `</p></article></body></html>`
	res := run(t, DefaultConfig(), src)
	assert.Equal(t, "Headline", res.Metadata.Title)
	assert.Equal(t, "Ann Lee", res.Metadata.Byline)
	assert.Equal(t, 2023, res.Metadata.Date.Year())
}

func TestRunHTML(t *testing.T) {
	doc, err := html.Parse(strings.NewReader(`<article><p>` + words(200) + `</p></article>`))
	require.NoError(t, err)

	res, err := New(DefaultConfig()).RunHTML(doc)
	require.NoError(t, err)
	assert.Equal(t, "article", res.Tree.Tag(res.Root))
	assert.Positive(t, res.Stats.Nodes)

	_, err = New(DefaultConfig()).RunHTML(nil)
	assert.True(t, IsParseError(err))
	assert.ErrorIs(t, err, ErrNoDocument)
}

func TestRunTreeTooLarge(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Limits = dom.Limits{MaxNodes: 10}
	src := `<html><body>` + strings.Repeat(`<p>x</p>`, 20) + `</body></html>`

	_, err := New(cfg).RunReader(strings.NewReader(src))
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
	assert.ErrorIs(t, err, ErrTreeTooLarge)
	assert.Contains(t, err.Error(), "[validation:RunReader]")
}

func TestRunTruncatesDeepTrees(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Limits = dom.Limits{MaxDepth: 8}
	src := `<html><body><article><p>` + words(200) + `</p>` +
		strings.Repeat(`<div>`, 20) + `deep` + strings.Repeat(`</div>`, 20) +
		`</article></body></html>`

	res := run(t, cfg, src)
	assert.Positive(t, res.Stats.Truncated)
	assert.NotContains(t, textOf(res), "deep")
	assert.Contains(t, textOf(res), "lorem")
}

func BenchmarkRun(b *testing.B) {
	var sb strings.Builder
	sb.WriteString("<html><body>")
	for i := 0; i < 100; i++ {
		sb.WriteString(`<div class="post"><p>` + words(300) + `</p><ul><li><a href="/x">x</a></li><li>y</li></ul></div>`)
	}
	sb.WriteString("</body></html>")
	src := sb.String()
	p := New(DefaultConfig())

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := p.RunReader(strings.NewReader(src)); err != nil {
			b.Fatal(err)
		}
	}
}
