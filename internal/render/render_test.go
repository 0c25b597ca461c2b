package render

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feedkit/calamine/internal/dom"
)

func content(t testing.TB, src, tag string) (*dom.Tree, dom.NodeID) {
	t.Helper()
	tree, _, err := dom.Parse(strings.NewReader(src), dom.DefaultLimits())
	require.NoError(t, err)
	root := tree.FindFirst(tree.Root(), tag)
	require.NotEqual(t, dom.NoNode, root)
	return tree, root
}

func TestHTML(t *testing.T) {
	tree, root := content(t, `<body><article><p onclick="x()">Hello <a href="/x">link</a> <img src="img/a.png" alt="a"></p></article></body>`, "article")

	r, err := New(Options{BaseURL: "https://example.com/post/"})
	require.NoError(t, err)
	out, err := r.HTML(tree, root)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "<article>"))
	assert.Contains(t, out, `href="https://example.com/x"`)
	assert.Contains(t, out, `src="https://example.com/post/img/a.png"`)
	assert.NotContains(t, out, "onclick")
}

func TestHTMLNodeIndexes(t *testing.T) {
	tree, root := content(t, `<body><article><p>x</p></article></body>`, "article")
	p := tree.FindFirst(root, "p")

	r, err := New(Options{NodeIndexes: true})
	require.NoError(t, err)
	out, err := r.HTML(tree, root)
	require.NoError(t, err)
	assert.Contains(t, out, `<p data-node-index="`+strconv.Itoa(int(p))+`">`)

	blocks := r.Blocks(tree, root)
	require.Len(t, blocks, 1)
	assert.Equal(t, strconv.Itoa(int(p)), blocks[0].NodeIndex)
}

func TestNewRejectsRelativeBase(t *testing.T) {
	_, err := New(Options{BaseURL: "/relative"})
	assert.Error(t, err)
}

func TestMarkdown(t *testing.T) {
	tree, root := content(t, `<body><article><h1>Title</h1><p>Hello <strong>world</strong> <a href="/about">about</a></p></article></body>`, "article")

	r, err := New(Options{BaseURL: "https://example.com"})
	require.NoError(t, err)
	md, err := r.Markdown(tree, root)
	require.NoError(t, err)

	assert.Contains(t, md, "# Title")
	assert.Contains(t, md, "Hello **world**")
	assert.Contains(t, md, "(https://example.com/about)")
}

func TestBlocks(t *testing.T) {
	tree, root := content(t, `<body><div><h1>T</h1><p>One <b>bold</b><br>line</p>loose<ul><li>a</li><li><p>b</p></li></ul></div></body>`, "div")

	r, err := New(Options{})
	require.NoError(t, err)

	var texts []string
	for _, b := range r.Blocks(tree, root) {
		texts = append(texts, b.Text)
		assert.Empty(t, b.NodeIndex)
	}
	assert.Equal(t, []string{"T", "One bold line", "loose", "* a", "b"}, texts)
	assert.Equal(t, "T\n\nOne bold line\n\nloose\n\n* a\n\nb", r.Text(tree, root))
}

func TestBlocksNormalizeText(t *testing.T) {
	tree, root := content(t, "<body><div><p> \uFB01ne\u00a0print \u0007x\n\ty </p><p> \n </p></div></body>", "div")

	r, err := New(Options{})
	require.NoError(t, err)

	blocks := r.Blocks(tree, root)
	require.Len(t, blocks, 1)
	assert.Equal(t, "fine print x y", blocks[0].Text)
}
