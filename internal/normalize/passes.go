package normalize

import (
	"strconv"
	"strings"

	"github.com/feedkit/calamine/internal/dom"
)

func (n *Normalizer) stripComments(t *dom.Tree) bool {
	return stripCommentsUnder(t, t.Root())
}

func stripCommentsUnder(t *dom.Tree, root dom.NodeID) bool {
	changed := false
	for _, id := range t.Descendants(root) {
		if t.Kind(id) == dom.CommentNode && t.RemoveIfAttached(id) {
			changed = true
		}
	}
	return changed
}

// collapseFrames gives a frameset document without a body a body built from
// its noframes fallback, or a fixed message when there is none.
func (n *Normalizer) collapseFrames(t *dom.Tree) bool {
	if t.Body() != dom.NoNode {
		return false
	}
	frameset := t.FindFirst(t.Root(), "frameset")
	if frameset == dom.NoNode {
		return false
	}

	body := t.CreateElement("body")
	t.AppendChild(t.Root(), body)

	if noframes := t.FindFirst(t.Root(), "noframes"); noframes != dom.NoNode {
		n.surfaceFallback(t, noframes, body)
		t.Detach(noframes)
	}
	if t.IsLeaf(body, n.opts.LeafExceptions) {
		for _, c := range t.Children(body) {
			t.Detach(c)
		}
		t.AppendChild(body, t.CreateText(FramesetFallbackText))
	}
	t.Detach(frameset)
	return true
}

// surfaceFallback moves the content of a fallback container (noframes,
// noscript) into dst. Content the parser kept as raw text is parsed as
// markup first.
func (n *Normalizer) surfaceFallback(t *dom.Tree, src, dst dom.NodeID) {
	kids := t.Children(src)
	if len(kids) == 1 && t.Kind(kids[0]) == dom.TextNode && strings.Contains(t.Text(kids[0]), "<") {
		err := t.AppendHTML(dst, t.Text(kids[0]), n.opts.Limits)
		if err == nil {
			t.Detach(kids[0])
			stripCommentsUnder(t, dst)
			return
		}
		n.opts.Logger.Warn().Err(err).Str("tag", t.Tag(src)).Msg("cannot parse fallback markup")
	}
	for _, c := range kids {
		t.AppendChild(dst, c)
	}
}

func (n *Normalizer) unwrapNoscript(t *dom.Tree) bool {
	changed := false
	for _, id := range attachedElements(t, dom.NewTagSet("noscript")) {
		if !t.Attached(id) {
			continue
		}
		parent := t.Parent(id)
		holder := t.CreateElement("noscript")
		t.InsertBefore(parent, holder, id)
		n.surfaceFallback(t, id, holder)
		t.Detach(id)
		changed = n.unwrap(t, holder, "unwrap-noscript") || changed
	}
	return changed
}

func (n *Normalizer) stripBlacklist(t *dom.Tree) bool {
	changed := false
	for _, id := range attachedElements(t, BlacklistedElements) {
		if t.RemoveIfAttached(id) {
			changed = true
		}
	}
	return changed
}

// unwrapHidden unwraps elements whose inline style hides them. Unwrapping
// instead of removing keeps visible content of a misdetected ancestor.
func (n *Normalizer) unwrapHidden(t *dom.Tree) bool {
	changed := false
	for _, id := range t.Elements(t.Root()) {
		if !t.Attached(id) || isStructural(t, id) {
			continue
		}
		style, ok := t.Attr(id, "style")
		if !ok || !IsHiddenStyle(style, n.opts.HiddenOpacityThreshold) {
			continue
		}
		changed = n.unwrap(t, id, "unwrap-hidden") || changed
	}
	return changed
}

// IsHiddenStyle reports whether an inline style declaration hides its
// element: display:none, visibility:hidden or an opacity below threshold.
func IsHiddenStyle(style string, threshold float64) bool {
	for _, decl := range strings.Split(style, ";") {
		name, value, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		name = strings.ToLower(strings.TrimSpace(name))
		value = strings.ToLower(strings.TrimSpace(value))
		value = strings.TrimSpace(strings.TrimSuffix(value, "!important"))
		switch name {
		case "display":
			if value == "none" {
				return true
			}
		case "visibility":
			if value == "hidden" {
				return true
			}
		case "opacity":
			if f, err := parseOpacity(value); err == nil && f < threshold {
				return true
			}
		}
	}
	return false
}

func parseOpacity(value string) (float64, error) {
	if pct, ok := strings.CutSuffix(value, "%"); ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(pct), 64)
		return f / 100, err
	}
	return strconv.ParseFloat(value, 64)
}

// collapseBreaks keeps one line break out of each run of breaks separated
// only by whitespace, and drops rules placed directly inside lists.
func (n *Normalizer) collapseBreaks(t *dom.Tree) bool {
	changed := false
	for _, br := range t.ElementsByTag(t.Root(), "br") {
		if !t.Attached(br) {
			continue
		}
		for {
			var between []dom.NodeID
			next := t.NextSibling(br)
			for next != dom.NoNode && t.IsBlank(next) {
				between = append(between, next)
				next = t.NextSibling(next)
			}
			if !t.Is(next, "br") {
				break
			}
			for _, id := range between {
				t.Detach(id)
			}
			t.Detach(next)
			changed = true
		}
	}
	for _, hr := range t.ElementsByTag(t.Root(), "hr") {
		if t.Attached(hr) && RuleParents.Has(t.Tag(t.Parent(hr))) {
			t.Detach(hr)
			changed = true
		}
	}
	return changed
}

// unwrapAnchors unwraps anchors that run script or point nowhere.
func (n *Normalizer) unwrapAnchors(t *dom.Tree) bool {
	changed := false
	for _, a := range t.ElementsByTag(t.Root(), "a") {
		if !t.Attached(a) {
			continue
		}
		href := strings.TrimSpace(t.AttrOr(a, "href", ""))
		name := strings.TrimSpace(t.AttrOr(a, "name", ""))
		if RegexpScriptURL.MatchString(href) || (href == "" && name == "") {
			changed = n.unwrap(t, a, "unwrap-anchors") || changed
		}
	}
	return changed
}

// stripImages removes images with no source and tracking pixels.
func (n *Normalizer) stripImages(t *dom.Tree) bool {
	changed := false
	for _, img := range t.ElementsByTag(t.Root(), "img") {
		if !t.Attached(img) {
			continue
		}
		if !hasImageSource(t, img) || isTinyImage(t, img) {
			t.Detach(img)
			changed = true
		}
	}
	return changed
}

func hasImageSource(t *dom.Tree, img dom.NodeID) bool {
	if strings.TrimSpace(t.AttrOr(img, "src", "")) != "" || strings.TrimSpace(t.AttrOr(img, "srcset", "")) != "" {
		return true
	}
	parent := t.Parent(img)
	if !t.Is(parent, "picture") {
		return false
	}
	for _, c := range t.ElementChildren(parent) {
		if t.Is(c, "source") && strings.TrimSpace(t.AttrOr(c, "srcset", "")) != "" {
			return true
		}
	}
	return false
}

func isTinyImage(t *dom.Tree, img dom.NodeID) bool {
	for _, key := range []string{"width", "height"} {
		if v, ok := ImageDimension(t, img, key); ok && v < MinImageDimension {
			return true
		}
	}
	return false
}

// ImageDimension parses a declared pixel width or height attribute.
func ImageDimension(t *dom.Tree, img dom.NodeID, key string) (int, bool) {
	raw, ok := t.Attr(img, key)
	if !ok {
		return 0, false
	}
	raw = strings.TrimSuffix(strings.TrimSpace(strings.ToLower(raw)), "px")
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, false
	}
	return v, true
}

// unwrapContainers flattens generic containers that carry nothing a later
// classifier could use.
func (n *Normalizer) unwrapContainers(t *dom.Tree) bool {
	changed := false
	for _, id := range attachedElements(t, ContainerElements) {
		if !t.Attached(id) || hasDistinguishingAttribute(t, id) {
			continue
		}
		changed = n.unwrap(t, id, "unwrap-containers") || changed
	}
	return changed
}

func hasDistinguishingAttribute(t *dom.Tree, id dom.NodeID) bool {
	for _, key := range DistinguishingAttributes {
		if strings.TrimSpace(t.AttrOr(id, key, "")) != "" {
			return true
		}
	}
	return false
}

// unwrapFigures unwraps figures that are only image wrappers.
func (n *Normalizer) unwrapFigures(t *dom.Tree) bool {
	changed := false
	for _, fig := range t.ElementsByTag(t.Root(), "figure") {
		if !t.Attached(fig) || n.hasCaption(t, fig) {
			continue
		}
		changed = n.unwrap(t, fig, "unwrap-figures") || changed
	}
	return changed
}

func (n *Normalizer) hasCaption(t *dom.Tree, fig dom.NodeID) bool {
	for _, c := range t.ElementChildren(fig) {
		if t.Is(c, "figcaption") && !t.IsLeaf(c, n.opts.LeafExceptions) {
			return true
		}
	}
	return false
}

// normalizeWhitespace folds typographic spaces and condenses whitespace
// runs outside whitespace-sensitive elements.
func (n *Normalizer) normalizeWhitespace(t *dom.Tree) bool {
	changed := false
	for _, id := range t.Descendants(t.Root()) {
		if t.Kind(id) != dom.TextNode {
			continue
		}
		value := t.Text(id)
		out := spaceRunes.Replace(value)
		if !t.WhitespaceSensitive(id) {
			out = dom.CondenseWhitespace(out)
		}
		if out != value {
			t.SetText(id, out)
			changed = true
		}
	}
	return changed
}

// unwrapSingleItemLists unwraps lists whose only content is a single item,
// along with their items.
func (n *Normalizer) unwrapSingleItemLists(t *dom.Tree) bool {
	changed := false
	for _, list := range attachedElements(t, ListElements) {
		if !t.Attached(list) || !n.isSingleItemList(t, list) {
			continue
		}
		for _, item := range t.ElementChildren(list) {
			if t.Is(item, "li") {
				n.unwrap(t, item, "unwrap-single-item-lists")
			}
		}
		changed = n.unwrap(t, list, "unwrap-single-item-lists") || changed
	}
	return changed
}

func (n *Normalizer) isSingleItemList(t *dom.Tree, list dom.NodeID) bool {
	item := dom.NoNode
	for c := t.FirstChild(list); c != dom.NoNode; c = t.NextSibling(c) {
		if t.IsLeaf(c, n.opts.LeafExceptions) {
			continue
		}
		if item != dom.NoNode || !t.Is(c, "li") {
			return false
		}
		item = c
	}
	return item != dom.NoNode
}

func (n *Normalizer) stripLeaves(t *dom.Tree) bool {
	return StripLeaves(t, t.Root(), n.opts.LeafExceptions)
}

// StripLeaves removes every empty element beneath root in one preorder
// sweep. Leafness is computed bottom-up once; removing a leaf never changes
// the leafness of anything else. root itself, the tree root and the body are
// kept.
func StripLeaves(t *dom.Tree, root dom.NodeID, exceptions dom.TagSet) bool {
	leaves := LeafMap(t, root, exceptions)
	changed := false
	for _, id := range t.Elements(root) {
		if !leaves[id] || isStructural(t, id) {
			continue
		}
		if t.RemoveIfAttached(id) {
			changed = true
		}
	}
	return changed
}

// LeafMap computes IsLeaf for every node beneath root in a single
// post-order walk.
func LeafMap(t *dom.Tree, root dom.NodeID, exceptions dom.TagSet) map[dom.NodeID]bool {
	leaves := make(map[dom.NodeID]bool)
	for _, id := range t.PostOrder(root) {
		switch t.Kind(id) {
		case dom.TextNode:
			leaves[id] = t.IsBlank(id)
		case dom.CommentNode:
			leaves[id] = true
		case dom.ElementNode:
			leaf := !exceptions.Has(t.Tag(id))
			for c := t.FirstChild(id); leaf && c != dom.NoNode; c = t.NextSibling(c) {
				leaf = leaves[c]
			}
			leaves[id] = leaf
		}
	}
	return leaves
}

func (n *Normalizer) trimEdges(t *dom.Tree) bool {
	body := t.Body()
	if body == dom.NoNode {
		return false
	}
	return t.TrimEdges(body)
}

// StripAttributes drops every attribute not allowed for its element on id
// and its descendants.
func StripAttributes(t *dom.Tree, id dom.NodeID) bool {
	changed := false
	for _, el := range append([]dom.NodeID{id}, t.Elements(id)...) {
		attrs := t.Attrs(el)
		if len(attrs) == 0 {
			continue
		}
		allowed := AllowedAttributes[t.Tag(el)]
		kept := make([]dom.Attr, 0, len(attrs))
		for _, a := range attrs {
			if allowed.Has(a.Key) {
				kept = append(kept, a)
			}
		}
		if len(kept) != len(attrs) {
			t.SetAttrs(el, kept)
			changed = true
		}
	}
	return changed
}
