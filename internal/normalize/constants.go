package normalize

import (
	"regexp"
	"strings"

	"github.com/feedkit/calamine/internal/dom"
)

// Default settings
const (
	// DefaultRowScanLimit is the number of table rows inspected by the
	// single-column table heuristic.
	DefaultRowScanLimit = 20

	// DefaultHiddenOpacityThreshold is the opacity below which an element is
	// treated as hidden.
	DefaultHiddenOpacityThreshold = 0.3

	// MinImageDimension is the smallest declared width or height an image
	// may have before it is treated as a tracking pixel.
	MinImageDimension = 2

	// FramesetFallbackText is used when a frameset document has no usable
	// noframes content.
	FramesetFallbackText = "Unable to display framed document."
)

// DefaultLeafExceptions are elements kept even when they have no content.
var DefaultLeafExceptions = []string{
	"area", "audio", "br", "col", "embed", "hr", "img", "picture",
	"source", "track", "video", "wbr",
}

// BlacklistedElements are removed together with their subtrees.
var BlacklistedElements = dom.NewTagSet(
	// forms and controls
	"button", "datalist", "fieldset", "form", "input", "isindex", "keygen",
	"label", "legend", "optgroup", "option", "output", "progress", "select",
	"textarea",
	// scripting and styling
	"canvas", "script", "style", "template",
	// embedded objects
	"applet", "embed", "frame", "iframe", "math", "noembed", "noframes", "object",
	"param", "svg",
	// media controls and legacy widgets
	"basefont", "bgsound", "command", "dialog", "marquee", "menu", "spacer",
	// metadata
	"base", "head", "link", "meta", "title",
)

// ContainerElements are unwrapped when they carry no distinguishing
// attribute.
var ContainerElements = dom.NewTagSet("center", "div", "font", "section")

// DistinguishingAttributes keep a container from being unwrapped.
var DistinguishingAttributes = []string{"class", "id", "itemprop", "itemtype", "role"}

// ListElements are the containers checked by the single-item list rule.
var ListElements = dom.NewTagSet("ol", "ul")

// RuleParents may not contain horizontal rules.
var RuleParents = dom.NewTagSet("dl", "ol", "ul")

// AllowedAttributes lists the attributes each element keeps after the final
// attribute strip. Elements not listed keep none.
var AllowedAttributes = map[string]dom.TagSet{
	"a":      dom.NewTagSet("href", "name", "title"),
	"img":    dom.NewTagSet("alt", "src", "srcset", "title"),
	"source": dom.NewTagSet("media", "sizes", "src", "srcset", "type"),
}

// spaceRunes are the typographic space characters folded to a plain space.
var spaceRunes = strings.NewReplacer(
	"\u2002", " ", // en space
	"\u2003", " ", // em space
	"\u2004", " ",
	"\u2005", " ",
	"\u2006", " ",
	"\u2007", " ",
	"\u2008", " ",
	"\u2009", " ", // thin space
	"\u200a", " ", // hair space
	"\u205f", " ",
	"&hairsp;", " ",
	"&thinsp;", " ",
	"&ensp;", " ",
	"&emsp;", " ",
	"&#8194;", " ",
	"&#8195;", " ",
	"&#8201;", " ",
	"&#8202;", " ",
)

// RegexpScriptURL matches hrefs that run script instead of navigating.
var RegexpScriptURL = regexp.MustCompile(`(?i)^\s*javascript\s*:`)
