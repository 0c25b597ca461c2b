// Package pipeline sequences the extraction stages over a single tree:
// normalization, feature extraction, scoring, content selection and the
// final prune and trim.
package pipeline

import (
	"errors"
	"io"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/net/html"

	"github.com/feedkit/calamine/internal/dom"
	"github.com/feedkit/calamine/internal/features"
	"github.com/feedkit/calamine/internal/metadata"
	"github.com/feedkit/calamine/internal/normalize"
	"github.com/feedkit/calamine/internal/scoring"
	"github.com/feedkit/calamine/internal/selector"
)

// ErrorBodyText is the paragraph placed in the body when nothing usable
// remains.
const ErrorBodyText = "Unable to extract content from this page."

// Config configures a Pipeline.
type Config struct {
	EnableFastPath         bool
	RowScanLimit           int
	HiddenOpacityThreshold float64
	LeafExceptions         dom.TagSet
	Signatures             []selector.Signature
	Limits                 dom.Limits
	Logger                 zerolog.Logger
}

// DefaultConfig returns the configuration used when none is given.
func DefaultConfig() Config {
	return Config{
		EnableFastPath:         true,
		RowScanLimit:           normalize.DefaultRowScanLimit,
		HiddenOpacityThreshold: normalize.DefaultHiddenOpacityThreshold,
		LeafExceptions:         dom.NewTagSet(normalize.DefaultLeafExceptions...),
		Limits:                 dom.DefaultLimits(),
		Logger:                 zerolog.Nop(),
	}
}

// Stats describes a run.
type Stats struct {
	Nodes      int           // nodes in the tree when the run started
	Truncated  int           // subtrees dropped for exceeding the depth bound
	Candidates int           // elements scored, zero on the fast path
	Elapsed    time.Duration // time spent in Run
}

// Result is the outcome of a run. Tree has been pruned so that Root is the
// only child of the body.
type Result struct {
	Tree      *dom.Tree
	Root      dom.NodeID
	Selection selector.Selection
	Features  *features.Table // nil when the fast path matched
	Metadata  metadata.Metadata
	Stats     Stats

	// Fallback is an extraction error wrapping ErrNoContent when the body
	// holds ErrorBodyText instead of document content.
	Fallback error
}

// Pipeline runs the extraction stages. It holds no per-document state and
// is safe for concurrent use over distinct trees.
type Pipeline struct {
	cfg        Config
	normalizer *normalize.Normalizer
	scorer     *scoring.Engine
	selector   *selector.Selector
}

// New creates a Pipeline from cfg. A nil leaf exception set selects the
// defaults.
func New(cfg Config) *Pipeline {
	if cfg.LeafExceptions == nil {
		cfg.LeafExceptions = dom.NewTagSet(normalize.DefaultLeafExceptions...)
	}
	return &Pipeline{
		cfg: cfg,
		normalizer: normalize.New(normalize.Options{
			RowScanLimit:           cfg.RowScanLimit,
			HiddenOpacityThreshold: cfg.HiddenOpacityThreshold,
			LeafExceptions:         cfg.LeafExceptions,
			Limits:                 cfg.Limits,
			Logger:                 cfg.Logger,
		}),
		scorer: scoring.New(cfg.Logger),
		selector: selector.New(selector.Options{
			Signatures:     cfg.Signatures,
			LeafExceptions: cfg.LeafExceptions,
			Logger:         cfg.Logger,
		}),
	}
}

// Config returns the effective configuration.
func (p *Pipeline) Config() Config { return p.cfg }

// RunReader parses r and runs the pipeline over the resulting tree.
func (p *Pipeline) RunReader(r io.Reader) (*Result, error) {
	if r == nil {
		return nil, WrapParseError(ErrNoDocument, "RunReader", "")
	}
	tree, stats, err := dom.Parse(r, p.cfg.Limits)
	if err != nil {
		return nil, wrapBuildError(err, "RunReader")
	}
	return p.run(tree, stats), nil
}

// RunHTML converts doc and runs the pipeline over the resulting tree.
func (p *Pipeline) RunHTML(doc *html.Node) (*Result, error) {
	if doc == nil {
		return nil, WrapParseError(ErrNoDocument, "RunHTML", "")
	}
	tree, stats, err := dom.FromHTML(doc, p.cfg.Limits)
	if err != nil {
		return nil, wrapBuildError(err, "RunHTML")
	}
	return p.run(tree, stats), nil
}

func wrapBuildError(err error, funcName string) error {
	if errors.Is(err, dom.ErrTreeTooLarge) {
		return WrapValidationError(err, funcName, "building tree")
	}
	return WrapParseError(err, funcName, "building tree")
}

// Run extracts the main content of tree in place. It never fails: a nil or
// empty tree yields a body holding ErrorBodyText.
func (p *Pipeline) Run(tree *dom.Tree) *Result {
	if tree == nil {
		tree = dom.New("html")
	}
	return p.run(tree, dom.BuildStats{Nodes: tree.Len()})
}

func (p *Pipeline) run(tree *dom.Tree, build dom.BuildStats) *Result {
	start := time.Now()
	log := p.cfg.Logger
	res := &Result{
		Tree:  tree,
		Stats: Stats{Nodes: build.Nodes, Truncated: build.Truncated},
	}

	// The head does not survive normalization.
	doc, _ := tree.Document()
	res.Metadata = metadata.Extract(doc)

	p.normalizer.Normalize(tree)

	body, ok := p.ensureBody(tree)
	if !ok {
		res.Root = body
		res.Selection = selector.Selection{Node: body, Method: selector.MethodFallback}
		res.Fallback = WrapExtractionError(ErrNoContent, "Run", "document has no content")
		log.Warn().Err(res.Fallback).Msg("using error body")
		return p.finish(res, start)
	}

	sel, matched := selector.Selection{}, false
	if p.cfg.EnableFastPath {
		sel, matched = p.selector.FastPath(tree)
	}
	if !matched {
		res.Features = features.Extract(tree)
		candidates := p.scorer.Score(tree, res.Features)
		res.Stats.Candidates = len(candidates)
		sel = p.selector.ByScore(tree, res.Features, candidates)
	}
	if sel.Node == tree.Root() {
		sel.Node = body
	}
	res.Selection = sel

	root := prune(tree, body, sel.Node)
	tree.TrimEdges(root)
	normalize.StripLeaves(tree, root, p.cfg.LeafExceptions)
	if tree.IsLeaf(root, p.cfg.LeafExceptions) {
		res.Fallback = WrapExtractionError(ErrNoContent, "Run", "selected content is empty")
		log.Warn().Err(res.Fallback).Str("method", string(sel.Method)).Msg("using error body")
		fillErrorBody(tree, body)
		root = body
	}
	res.Root = root
	return p.finish(res, start)
}

func (p *Pipeline) finish(res *Result, start time.Time) *Result {
	normalize.StripAttributes(res.Tree, res.Tree.Root())
	res.Stats.Elapsed = time.Since(start)
	p.cfg.Logger.Debug().
		Str("method", string(res.Selection.Method)).
		Str("signature", res.Selection.Signature).
		Float64("score", res.Selection.Score).
		Str("root", res.Tree.Tag(res.Root)).
		Int("candidates", res.Stats.Candidates).
		Dur("elapsed", res.Stats.Elapsed).
		Msg("extraction complete")
	return res
}

// ensureBody makes sure the root has a body holding all remaining content.
// It reports false when the body had to be filled with the error message.
func (p *Pipeline) ensureBody(tree *dom.Tree) (dom.NodeID, bool) {
	root := tree.Root()
	body := tree.Body()
	if body == dom.NoNode {
		body = tree.CreateElement("body")
		tree.AppendChild(root, body)
	}
	for _, c := range tree.Children(root) {
		if c != body {
			tree.AppendChild(body, c)
		}
	}
	if tree.IsLeaf(body, p.cfg.LeafExceptions) {
		fillErrorBody(tree, body)
		return body, false
	}
	return body, true
}

// fillErrorBody replaces the content of body with the error paragraph.
func fillErrorBody(tree *dom.Tree, body dom.NodeID) {
	for _, c := range tree.Children(body) {
		tree.Detach(c)
	}
	p := tree.CreateElement("p")
	tree.AppendChild(p, tree.CreateText(ErrorBodyText))
	tree.AppendChild(body, p)
}

// prune makes root the only child of body and drops everything else under
// the document root. It returns the content root.
func prune(tree *dom.Tree, body, root dom.NodeID) dom.NodeID {
	if root != body {
		tree.Detach(root)
		for _, c := range tree.Children(body) {
			tree.Detach(c)
		}
		tree.AppendChild(body, root)
	}
	for _, c := range tree.Children(tree.Root()) {
		if c != body {
			tree.Detach(c)
		}
	}
	return root
}
