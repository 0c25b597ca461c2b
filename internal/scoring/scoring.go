// Package scoring applies the weighted bias model that ranks candidate
// elements as possible article roots.
package scoring

import (
	"math"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/feedkit/calamine/internal/dom"
	"github.com/feedkit/calamine/internal/features"
)

// Engine scores candidates. The bias tables it reads are shared and never
// mutated, so one Engine may serve concurrent runs over distinct trees.
type Engine struct {
	logger zerolog.Logger
}

// New returns an Engine that traces its work to logger.
func New(logger zerolog.Logger) *Engine {
	return &Engine{logger: logger}
}

// Score accumulates the composite score of every attached candidate into
// table and returns the candidates in document order. Sibling smoothing runs
// last, after every other contribution is settled.
func (e *Engine) Score(tree *dom.Tree, table *features.Table) []dom.NodeID {
	var candidates []dom.NodeID
	for _, id := range tree.Elements(tree.Root()) {
		if !Candidates.Has(tree.Tag(id)) {
			continue
		}
		candidates = append(candidates, id)

		r := table.Ensure(id)
		r.Score += TextDensityScore(r)
		r.Score += TagBias[tree.Tag(id)]
		r.Score += KeywordScore(r.AttributeText)
		r.Score += AncestorBias(tree, id)
		r.Score += ChildScore(tree, id)
	}

	siblings := make(map[dom.NodeID]ImageSiblings)
	for _, img := range tree.ElementsByTag(tree.Root(), "img") {
		parent := tree.Parent(img)
		if !Candidates.Has(tree.Tag(parent)) {
			continue
		}
		sibs, ok := siblings[parent]
		if !ok {
			sibs = CountImageSiblings(tree, parent)
			siblings[parent] = sibs
		}
		table.Ensure(parent).Score += ImageScore(tree, img, sibs)
	}

	e.smooth(tree, table, candidates)

	for _, id := range candidates {
		r := table.Get(id)
		e.logger.Debug().
			Str("tag", tree.Tag(id)).
			Str("attrs", r.AttributeText).
			Uint32("text", r.TextLength).
			Uint32("anchor", r.AnchorTextLength).
			Float64("score", r.Score).
			Msg("scored candidate")
	}
	return candidates
}

// TextDensityScore rewards plain text and penalizes linked text.
func TextDensityScore(r *features.Record) float64 {
	if r.TextLength == 0 {
		return 0
	}
	s := TextWeight*float64(r.TextLength) - AnchorWeight*float64(r.AnchorTextLength)
	return math.Min(s, MaxTextDensity)
}

// KeywordScore sums the bias of each keyword present in attrText. A keyword
// counts once however often it occurs.
func KeywordScore(attrText string) float64 {
	if attrText == "" {
		return 0
	}
	var s float64
	for kw, bias := range KeywordBias {
		if strings.Contains(attrText, kw) {
			s += bias
		}
	}
	return s
}

// AncestorBias penalizes elements nested in lists or page chrome. Only the
// nearest matching ancestor counts.
func AncestorBias(tree *dom.Tree, id dom.NodeID) float64 {
	root := tree.Root()
	for p := tree.Parent(id); p != dom.NoNode && p != root; p = tree.Parent(p) {
		switch tag := tree.Tag(p); {
		case ListAncestors.Has(tag):
			return ListAncestorBias
		case ChromeAncestors.Has(tag):
			return ChromeAncestorBias
		}
	}
	return 0
}

// ChildScore sums ChildBias over the immediate element children of id.
func ChildScore(tree *dom.Tree, id dom.NodeID) float64 {
	var s float64
	for c := tree.FirstChild(id); c != dom.NoNode; c = tree.NextSibling(c) {
		if tree.IsElement(c) {
			s += ChildBias[tree.Tag(c)]
		}
	}
	return s
}

// ImageSiblings describes the element children of an image's parent.
type ImageSiblings struct {
	Images  int  // img children, the image itself included
	Caption bool // a figcaption child has text
}

// CountImageSiblings inspects the element children of parent once.
func CountImageSiblings(tree *dom.Tree, parent dom.NodeID) ImageSiblings {
	var sibs ImageSiblings
	for c := tree.FirstChild(parent); c != dom.NoNode; c = tree.NextSibling(c) {
		switch {
		case tree.Is(c, "img"):
			sibs.Images++
		case !sibs.Caption && tree.Is(c, "figcaption"):
			sibs.Caption = strings.TrimSpace(tree.TextContent(c)) != ""
		}
	}
	return sibs
}

// ImageScore is the bias an image contributes to its parent, whose children
// are summarized by sibs.
func ImageScore(tree *dom.Tree, img dom.NodeID, sibs ImageSiblings) float64 {
	s := math.Min(ImageAreaWeight*float64(ImageArea(tree, img)), MaxImageAreaBias)
	if strings.TrimSpace(tree.AttrOr(img, "alt", "")) != "" {
		s += ImageAltBias
	}
	if strings.TrimSpace(tree.AttrOr(img, "title", "")) != "" {
		s += ImageTitleBias
	}
	if sibs.Caption {
		s += ImageCaptionBias
	}
	if sibs.Images > 1 {
		s += CarouselPenalty * float64(sibs.Images-1)
	}
	return s
}

// ImageArea returns the declared pixel area of img, or 0 when either
// dimension is missing or invalid.
func ImageArea(tree *dom.Tree, img dom.NodeID) int {
	w, h := dimension(tree, img, "width"), dimension(tree, img, "height")
	if w <= 0 || h <= 0 {
		return 0
	}
	return w * h
}

func dimension(tree *dom.Tree, img dom.NodeID, key string) int {
	raw := strings.TrimSpace(strings.ToLower(tree.AttrOr(img, key, "")))
	v, err := strconv.Atoi(strings.TrimSpace(strings.TrimSuffix(raw, "px")))
	if err != nil {
		return 0
	}
	return v
}

// smooth spreads a fixed bias from each scored candidate to its nearest
// element siblings, with the sign of the candidate's settled score.
func (e *Engine) smooth(tree *dom.Tree, table *features.Table, candidates []dom.NodeID) {
	settled := make(map[dom.NodeID]float64, len(candidates))
	for _, id := range candidates {
		settled[id] = table.Get(id).Score
	}
	for _, id := range candidates {
		var bias float64
		switch s := settled[id]; {
		case s > 0:
			bias = SiblingBias
		case s < 0:
			bias = -SiblingBias
		default:
			continue
		}
		for i, s := 0, tree.PrevElementSibling(id); i < SiblingReach && s != dom.NoNode; i, s = i+1, tree.PrevElementSibling(s) {
			table.Ensure(s).Score += bias
		}
		for i, s := 0, tree.NextElementSibling(id); i < SiblingReach && s != dom.NoNode; i, s = i+1, tree.NextElementSibling(s) {
			table.Ensure(s).Score += bias
		}
	}
}
