// Package selector chooses the element that becomes the article root,
// either from a known structural signature or from candidate scores.
package selector

import (
	"github.com/rs/zerolog"
	"golang.org/x/net/html"

	"github.com/feedkit/calamine/internal/dom"
	"github.com/feedkit/calamine/internal/features"
)

// Method records how a selection was made.
type Method string

// Selection methods
const (
	MethodSignature Method = "signature"
	MethodScore     Method = "score"
	MethodFallback  Method = "fallback"
)

// Selection is the chosen content root. Node is never NoNode.
type Selection struct {
	Node      dom.NodeID
	Method    Method
	Signature string  // matching signature, MethodSignature only
	Score     float64 // composite score, MethodScore only
}

// Options configures a Selector.
type Options struct {
	Signatures     []Signature // fast-path signatures in priority order
	LeafExceptions dom.TagSet  // matches that are leaves are ignored
	Logger         zerolog.Logger
}

// Selector picks content roots.
type Selector struct {
	opts Options
}

// New creates a Selector. A nil signature list selects DefaultSignatures.
func New(opts Options) *Selector {
	if opts.Signatures == nil {
		opts.Signatures = DefaultSignatures
	}
	return &Selector{opts: opts}
}

// FastPath tests the signatures in order and returns the sole non-leaf match
// of the first signature that has exactly one.
func (s *Selector) FastPath(tree *dom.Tree) (Selection, bool) {
	doc, index := tree.Document()
	for _, sig := range s.opts.Signatures {
		nodes, err := sig.Match(doc)
		if err != nil {
			s.opts.Logger.Warn().Err(err).Str("signature", sig.Name).Msg("signature failed")
			continue
		}
		matches := s.contentMatches(tree, nodes, index)
		s.opts.Logger.Debug().Str("signature", sig.Name).Int("matches", len(matches)).Msg("fast path")
		if len(matches) == 1 {
			return Selection{Node: matches[0], Method: MethodSignature, Signature: sig.Name}, true
		}
	}
	return Selection{}, false
}

func (s *Selector) contentMatches(tree *dom.Tree, nodes []*html.Node, index map[*html.Node]dom.NodeID) []dom.NodeID {
	var out []dom.NodeID
	for _, n := range nodes {
		id, ok := index[n]
		if !ok || id == tree.Root() || tree.IsLeaf(id, s.opts.LeafExceptions) {
			continue
		}
		out = append(out, id)
	}
	return out
}

// ByScore returns the attached candidate with the strictly highest score,
// the earliest in document order on ties. When no candidate scores above
// zero it falls back to the body, or to the root when there is no body.
func (s *Selector) ByScore(tree *dom.Tree, table *features.Table, candidates []dom.NodeID) Selection {
	best := dom.NoNode
	var bestScore float64
	for _, id := range candidates {
		r := table.Get(id)
		if r == nil || !tree.Attached(id) {
			continue
		}
		if best == dom.NoNode || r.Score > bestScore {
			best, bestScore = id, r.Score
		}
	}
	if best != dom.NoNode && bestScore > 0 {
		return Selection{Node: best, Method: MethodScore, Score: bestScore}
	}
	return Fallback(tree)
}

// Fallback selects the body, or the root when there is no body.
func Fallback(tree *dom.Tree) Selection {
	if body := tree.Body(); body != dom.NoNode {
		return Selection{Node: body, Method: MethodFallback}
	}
	return Selection{Node: tree.Root(), Method: MethodFallback}
}
