// Package normalize implements the deterministic structural cleanup passes
// that run before content scoring: stripping disallowed, hidden and empty
// elements, flattening wrappers, and collapsing degenerate lists and tables.
package normalize

import (
	"github.com/rs/zerolog"

	"github.com/feedkit/calamine/internal/dom"
)

// Options configures the normalizer.
type Options struct {
	RowScanLimit           int            // rows scanned by the single-column table rule; <= 0 selects the default
	HiddenOpacityThreshold float64        // opacity below which an element is hidden; 0 disables, < 0 selects the default
	LeafExceptions         dom.TagSet     // elements never removed as empty leaves
	Limits                 dom.Limits     // bounds for re-parsed fallback markup
	Logger                 zerolog.Logger // pass tracing and recoverable anomalies
}

// DefaultOptions returns the options used when none are given.
func DefaultOptions() Options {
	return Options{
		RowScanLimit:           DefaultRowScanLimit,
		HiddenOpacityThreshold: DefaultHiddenOpacityThreshold,
		LeafExceptions:         dom.NewTagSet(DefaultLeafExceptions...),
		Limits:                 dom.DefaultLimits(),
		Logger:                 zerolog.Nop(),
	}
}

// Normalizer runs the ordered rule passes over a tree.
type Normalizer struct {
	opts     Options
	pipeline *Pipeline
}

// New creates a Normalizer. Zero-valued options fall back to defaults.
func New(opts Options) *Normalizer {
	defaults := DefaultOptions()
	if opts.RowScanLimit <= 0 {
		opts.RowScanLimit = defaults.RowScanLimit
	}
	if opts.HiddenOpacityThreshold < 0 {
		opts.HiddenOpacityThreshold = defaults.HiddenOpacityThreshold
	}
	if opts.LeafExceptions == nil {
		opts.LeafExceptions = defaults.LeafExceptions
	}

	n := &Normalizer{opts: opts}
	n.pipeline = &Pipeline{
		PipelineName: "normalize",
		Logger:       opts.Logger,
		Filters: []Filter{
			NewFilter("strip-comments", n.stripComments),
			NewFilter("collapse-frames", n.collapseFrames),
			NewFilter("unwrap-noscript", n.unwrapNoscript),
			NewFilter("strip-blacklist", n.stripBlacklist),
			NewFilter("unwrap-hidden", n.unwrapHidden),
			NewFilter("collapse-breaks", n.collapseBreaks),
			NewFilter("unwrap-anchors", n.unwrapAnchors),
			NewFilter("strip-images", n.stripImages),
			NewFilter("unwrap-containers", n.unwrapContainers),
			NewFilter("unwrap-figures", n.unwrapFigures),
			NewFilter("normalize-whitespace", n.normalizeWhitespace),
			NewFilter("unwrap-single-item-lists", n.unwrapSingleItemLists),
			NewFilter("unwrap-single-column-tables", n.unwrapSingleColumnTables),
			NewFilter("strip-leaves", n.stripLeaves),
			NewFilter("strip-orphan-rules", n.collapseBreaks),
			NewFilter("trim-edges", n.trimEdges),
		},
	}
	return n
}

// Pipeline exposes the ordered passes.
func (n *Normalizer) Pipeline() *Pipeline { return n.pipeline }

// Options returns the effective options.
func (n *Normalizer) Options() Options { return n.opts }

// Normalize runs every structural pass over t and reports whether anything
// changed. Attributes are left in place; see StripAttributes.
func (n *Normalizer) Normalize(t *dom.Tree) bool {
	return n.pipeline.Process(t)
}

// unwrap unwraps id and logs when it has no parent.
func (n *Normalizer) unwrap(t *dom.Tree, id dom.NodeID, pass string) bool {
	if t.Unwrap(id) {
		return true
	}
	n.opts.Logger.Warn().Str("pass", pass).Str("tag", t.Tag(id)).Msg("cannot unwrap parentless element")
	return false
}

// attachedElements returns a snapshot of the attached elements beneath the
// root whose tag is in tags.
func attachedElements(t *dom.Tree, tags dom.TagSet) []dom.NodeID {
	var out []dom.NodeID
	for _, id := range t.Elements(t.Root()) {
		if tags.Has(t.Tag(id)) {
			out = append(out, id)
		}
	}
	return out
}

// isStructural reports whether id is the root or the body.
func isStructural(t *dom.Tree, id dom.NodeID) bool {
	return id == t.Root() || (t.Is(id, "body") && t.Parent(id) == t.Root())
}
