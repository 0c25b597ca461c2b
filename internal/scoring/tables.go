package scoring

import "github.com/feedkit/calamine/internal/dom"

// Model weights
const (
	TextWeight         = 0.25
	AnchorWeight       = 0.7
	MaxTextDensity     = 4000.0
	ImageAreaWeight    = 0.0015
	MaxImageAreaBias   = 150.0
	ImageAltBias       = 20.0
	ImageTitleBias     = 30.0
	ImageCaptionBias   = 100.0
	CarouselPenalty    = -50.0
	SiblingBias        = 5.0
	SiblingReach       = 2
	ListAncestorBias   = -200.0
	ChromeAncestorBias = -500.0
)

// Candidates are the elements that may be chosen as the article root.
var Candidates = dom.NewTagSet(
	"address", "article", "aside", "blockquote", "center", "dd", "div", "dl",
	"figure", "footer", "header", "li", "main", "nav", "ol", "p", "pre",
	"section", "td", "th", "ul",
)

// TagBias is added to a candidate according to its own tag.
var TagBias = map[string]float64{
	"address":    -3,
	"article":    100,
	"aside":      -200,
	"blockquote": 3,
	"dd":         -3,
	"div":        20,
	"dl":         -10,
	"figure":     10,
	"footer":     -100,
	"header":     -50,
	"li":         -20,
	"main":       100,
	"nav":        -50,
	"ol":         -20,
	"p":          10,
	"pre":        5,
	"section":    10,
	"td":         3,
	"th":         -3,
	"ul":         -20,
}

// ChildBias is added to a candidate once for each immediate element child
// with a listed tag.
var ChildBias = map[string]float64{
	"a":          -5,
	"aside":      -50,
	"blockquote": 20,
	"br":         3,
	"div":        -50,
	"dl":         -5,
	"figure":     20,
	"h1":         10,
	"h2":         10,
	"h3":         10,
	"h4":         10,
	"h5":         10,
	"h6":         10,
	"nav":        -100,
	"ol":         -5,
	"p":          100,
	"pre":        10,
	"section":    -20,
	"ul":         -5,
}

// KeywordBias is added once for every keyword that occurs in a candidate's
// id and class text.
var KeywordBias = map[string]float64{
	"ad-":        -100,
	"advert":     -200,
	"article":    100,
	"banner":     -200,
	"body":       20,
	"breadcrumb": -200,
	"comment":    -300,
	"content":    50,
	"disqus":     -300,
	"entry":      50,
	"footer":     -100,
	"header":     -50,
	"main":       50,
	"masthead":   -100,
	"menu":       -200,
	"nav":        -200,
	"newsletter": -150,
	"post":       50,
	"promo":      -200,
	"related":    -200,
	"share":      -200,
	"sidebar":    -200,
	"social":     -200,
	"sponsor":    -200,
	"story":      50,
	"subscribe":  -150,
	"text":       20,
	"widget":     -200,
}

// Ancestor families penalized by AncestorBias.
var (
	ListAncestors   = dom.NewTagSet("dd", "dl", "dt", "li", "ol", "ul")
	ChromeAncestors = dom.NewTagSet("aside", "footer", "header", "menu", "nav")
)
