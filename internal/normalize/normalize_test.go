package normalize

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/feedkit/calamine/internal/dom"
)

func parse(t testing.TB, src string) *dom.Tree {
	t.Helper()
	tree, _, err := dom.Parse(strings.NewReader(src), dom.DefaultLimits())
	require.NoError(t, err)
	return tree
}

func renderBody(t testing.TB, tree *dom.Tree) string {
	t.Helper()
	body := tree.Body()
	require.NotEqual(t, dom.NoNode, body)
	n, _ := tree.ToHTML(body)
	var b strings.Builder
	require.NoError(t, html.Render(&b, n))
	return b.String()
}

func normalizeBody(t testing.TB, src string) string {
	t.Helper()
	tree := parse(t, src)
	New(DefaultOptions()).Normalize(tree)
	return renderBody(t, tree)
}

func TestNormalizePasses(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "comments",
			in:   `<body><p>a<!-- tracking -->b</p></body>`,
			want: `<body><p>ab</p></body>`,
		},
		{
			name: "blacklist",
			in:   `<body><form><input name="q"></form><p>text</p><script>var x;</script><style>p{}</style></body>`,
			want: `<body><p>text</p></body>`,
		},
		{
			name: "hidden elements are unwrapped",
			in:   `<body><div style="display:none"><p>Visible</p></div><p style="opacity: 0.1">x</p></body>`,
			want: `<body><p>Visible</p>x</body>`,
		},
		{
			name: "noscript surfaces",
			in:   `<body><noscript><p>fallback</p></noscript></body>`,
			want: `<body><p>fallback</p></body>`,
		},
		{
			name: "duplicate breaks",
			in:   `<body><p>a<br> <br><br>b</p></body>`,
			want: `<body><p>a<br/>b</p></body>`,
		},
		{
			name: "rules inside lists",
			in:   `<body><ul><li>a</li><hr><li>b</li></ul></body>`,
			want: `<body><ul><li>a</li><li>b</li></ul></body>`,
		},
		{
			name: "anchors",
			in:   `<body><p><a href="javascript:void(0)">go</a> <a>bare</a> <a name="top">t</a> <a href="/x">x</a></p></body>`,
			want: `<body><p>go bare <a name="top">t</a> <a href="/x">x</a></p></body>`,
		},
		{
			name: "images",
			in:   `<body><p><img><img src="pixel.gif" width="1" height="1"><img src="photo.jpg" width="300">text</p></body>`,
			want: `<body><p><img src="photo.jpg" width="300"/>text</p></body>`,
		},
		{
			name: "picture source keeps image",
			in:   `<body><picture><source srcset="a.webp"><img alt="a"></picture></body>`,
			want: `<body><picture><source srcset="a.webp"/><img alt="a"/></picture></body>`,
		},
		{
			name: "containers",
			in:   `<body><div><p>a</p></div><div id="main"><p>b</p></div></body>`,
			want: `<body><p>a</p><div id="main"><p>b</p></div></body>`,
		},
		{
			name: "figures without captions",
			in:   `<body><figure><img src="a.jpg"></figure><figure><img src="b.jpg"><figcaption>B</figcaption></figure></body>`,
			want: `<body><img src="a.jpg"/><figure><img src="b.jpg"/><figcaption>B</figcaption></figure></body>`,
		},
		{
			name: "whitespace",
			in:   "<body><p>a  b&hairsp;c</p><pre>x   y</pre></body>",
			want: "<body><p>a b c</p><pre>x   y</pre></body>",
		},
		{
			name: "multi item lists are kept",
			in:   `<body><ul><li>a</li><li>b</li></ul></body>`,
			want: `<body><ul><li>a</li><li>b</li></ul></body>`,
		},
		{
			name: "single item list with empty siblings",
			in:   `<body><ol><li>only</li><li> </li></ol></body>`,
			want: `<body>only</body>`,
		},
		{
			name: "multi column tables are kept",
			in:   `<body><table><tr><td>a</td><td>b</td></tr></table></body>`,
			want: `<body><table><tbody><tr><td>a</td><td>b</td></tr></tbody></table></body>`,
		},
		{
			name: "table caption",
			in:   `<body><table><caption>Cap</caption><tr><td>row</td></tr></table></body>`,
			want: `<body><p>Cap</p><p>row</p></body>`,
		},
		{
			name: "empty leaves",
			in:   `<body><p><span></span></p><p>kept<b> </b></p><p><br></p></body>`,
			want: `<body><p>kept</p><p><br/></p></body>`,
		},
		{
			name: "edges",
			in:   `<body><br> <p>x</p> <br></body>`,
			want: `<body><p>x</p></body>`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeBody(t, tt.in))
		})
	}
}

func TestSingleColumnTable(t *testing.T) {
	got := normalizeBody(t, `<body><table><tr><td>One</td><td></td></tr><tr><td></td><td>Two</td></tr><tr><th>Three</th></tr></table></body>`)
	assert.Equal(t, `<body><p>One</p><p>Two</p><p>Three</p></body>`, got)
}

func TestSingleColumnTableRowScanLimit(t *testing.T) {
	src := `<body><table><tr><td>a</td></tr><tr><td>b</td><td>c</td></tr></table></body>`

	tree := parse(t, src)
	New(Options{RowScanLimit: 1, HiddenOpacityThreshold: -1}).Normalize(tree)
	assert.Equal(t, `<body><p>a</p><p>b c</p></body>`, renderBody(t, tree))

	tree = parse(t, src)
	New(Options{RowScanLimit: 2, HiddenOpacityThreshold: -1}).Normalize(tree)
	assert.Contains(t, renderBody(t, tree), "<table>")
}

func TestHiddenOpacityThresholdOption(t *testing.T) {
	src := `<body><p style="opacity: 0.1">faded</p><p style="display:none">gone</p></body>`

	tree := parse(t, src)
	n := New(Options{HiddenOpacityThreshold: -1})
	assert.Equal(t, DefaultHiddenOpacityThreshold, n.Options().HiddenOpacityThreshold)
	n.Normalize(tree)
	assert.Equal(t, `<body>faded gone</body>`, renderBody(t, tree))

	tree = parse(t, src)
	n = New(Options{HiddenOpacityThreshold: 0})
	assert.Zero(t, n.Options().HiddenOpacityThreshold)
	n.Normalize(tree)
	assert.Equal(t, `<body><p style="opacity: 0.1">faded</p>gone</body>`, renderBody(t, tree))

	assert.Equal(t, DefaultRowScanLimit, New(Options{RowScanLimit: 0}).Options().RowScanLimit)
}

func TestSingleItemListKeepsSpan(t *testing.T) {
	got := normalizeBody(t, `<body><ul><li><span>x</span></li></ul></body>`)
	assert.Equal(t, `<body><span>x</span></body>`, got)
}

func TestCollapseFrames(t *testing.T) {
	t.Run("noframes fallback", func(t *testing.T) {
		got := normalizeBody(t, `<html><frameset><frame src="a.html"></frameset><noframes><p>Fallback</p></noframes></html>`)
		assert.Equal(t, `<body><p>Fallback</p></body>`, got)
	})
	t.Run("no fallback", func(t *testing.T) {
		got := normalizeBody(t, `<html><frameset><frame src="a.html"></frameset></html>`)
		assert.Equal(t, `<body>`+FramesetFallbackText+`</body>`, got)
	})
}

const messyDocument = `<html><head><title>T</title><style>.x{}</style></head>
<body>
  <!-- header -->
  <div><div class="nav"><ul><li><a href="/">Home</a></li><li><a href="/about">About</a></li></ul></div></div>
  <div id="content">
    <h1>Title&ensp;here</h1>
    <p>First   paragraph <a>plain</a> with <a href="javascript:x()">script</a>.</p>
    <p><span></span></p>
    <figure><img src="a.jpg" width="400" height="300"></figure>
    <ul><li>single <em>item</em></li></ul>
    <table><tr><td>cell one</td></tr><tr><td></td><td>cell two</td></tr></table>
    <p>a<br><br>b</p>
    <section><p style="visibility:hidden">shh</p></section>
    <img src="t.gif" width="1" height="1">
    <pre>  keep   this  </pre>
  </div>
  <noscript><p>Enable JS</p></noscript>
  <br><br>
</body></html>`

func TestNormalizeIdempotent(t *testing.T) {
	tree := parse(t, messyDocument)
	n := New(DefaultOptions())
	require.True(t, n.Normalize(tree))
	first := renderBody(t, tree)

	assert.False(t, n.Normalize(tree), "second run changed the tree")
	assert.Equal(t, first, renderBody(t, tree))
}

func TestNormalizeLeafInvariant(t *testing.T) {
	tree := parse(t, messyDocument)
	opts := DefaultOptions()
	New(opts).Normalize(tree)

	body := tree.Body()
	for _, id := range tree.Elements(body) {
		assert.False(t, tree.IsLeaf(id, opts.LeafExceptions), "leaf <%s> survived", tree.Tag(id))
	}
	for _, id := range tree.Descendants(tree.Root()) {
		assert.NotEqual(t, dom.CommentNode, tree.Kind(id))
	}
}

func TestLeafMapMatchesIsLeaf(t *testing.T) {
	tree := parse(t, messyDocument)
	exceptions := dom.NewTagSet(DefaultLeafExceptions...)
	leaves := LeafMap(tree, tree.Root(), exceptions)
	for _, id := range tree.Descendants(tree.Root()) {
		assert.Equal(t, tree.IsLeaf(id, exceptions), leaves[id])
	}
}

func TestIsHiddenStyle(t *testing.T) {
	tests := []struct {
		style string
		want  bool
	}{
		{"display:none", true},
		{"DISPLAY : None !important", true},
		{"visibility: hidden", true},
		{"opacity:0", true},
		{"opacity: 0.29", true},
		{"opacity: 20%", true},
		{"opacity: 0.3", false},
		{"opacity: 1", false},
		{"display:block; color:red", false},
		{"color: red; display: none;", true},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsHiddenStyle(tt.style, DefaultHiddenOpacityThreshold), tt.style)
	}
}

func TestStripAttributes(t *testing.T) {
	tree := parse(t, `<body><p id="z" class="c"><a href="/x" class="c" onclick="y()" title="t">x</a><img src="a.jpg" alt="a" width="10" style="s"></p></body>`)
	assert.True(t, StripAttributes(tree, tree.Body()))
	assert.Equal(t, `<body><p><a href="/x" title="t">x</a><img src="a.jpg" alt="a"/></p></body>`, renderBody(t, tree))
	assert.False(t, StripAttributes(tree, tree.Body()))
}

func TestPipelineLogsPasses(t *testing.T) {
	n := New(DefaultOptions())
	var names []string
	for _, f := range n.Pipeline().Filters {
		names = append(names, f.Name())
	}
	assert.Equal(t, []string{
		"strip-comments", "collapse-frames", "unwrap-noscript", "strip-blacklist",
		"unwrap-hidden", "collapse-breaks", "unwrap-anchors", "strip-images",
		"unwrap-containers", "unwrap-figures", "normalize-whitespace",
		"unwrap-single-item-lists", "unwrap-single-column-tables", "strip-leaves",
		"strip-orphan-rules", "trim-edges",
	}, names)
}
