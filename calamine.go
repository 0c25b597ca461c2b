package calamine

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/net/html"

	"github.com/feedkit/calamine/internal/dom"
	"github.com/feedkit/calamine/internal/pipeline"
	"github.com/feedkit/calamine/internal/render"
)

// Extractor defines the interface for article extraction.
// It provides methods to extract article content from HTML strings,
// io.Readers and already parsed documents.
type Extractor interface {
	// ExtractFromHTML extracts article content from an HTML string
	ExtractFromHTML(html string, options *ExtractionOptions) (*Article, error)

	// ExtractFromReader extracts article content from an io.Reader
	ExtractFromReader(r io.Reader, options *ExtractionOptions) (*Article, error)

	// ExtractFromNode extracts article content from a parsed document. The
	// document is not modified.
	ExtractFromNode(doc *html.Node, options *ExtractionOptions) (*Article, error)
}

// Option represents a function that modifies ExtractionOptions.
type Option func(*ExtractionOptions)

// WithFastPath enables or disables the structural signature fast path.
// When disabled every document goes through feature scoring.
func WithFastPath(enable bool) Option {
	return func(o *ExtractionOptions) {
		o.EnableFastPath = enable
	}
}

// WithRowScanLimit sets how many rows of a table are inspected before it is
// treated as a single-column layout table. A limit of zero or less selects
// the default of 20.
func WithRowScanLimit(rows int) Option {
	return func(o *ExtractionOptions) {
		o.RowScanLimit = rows
	}
}

// WithHiddenOpacityThreshold sets the inline opacity below which an element
// is treated as hidden. Zero disables opacity-based hiding; a negative
// threshold selects the default of 0.3.
func WithHiddenOpacityThreshold(threshold float64) Option {
	return func(o *ExtractionOptions) {
		o.HiddenOpacityThreshold = threshold
	}
}

// WithLeafExceptions replaces the elements that are kept even when they have
// no text, such as images and line breaks.
func WithLeafExceptions(tags ...string) Option {
	return func(o *ExtractionOptions) {
		o.LeafExceptions = append([]string{}, tags...)
	}
}

// WithNodeIndexes enables or disables node index attributes.
// Node indexes identify the element each rendered element and text block
// came from.
func WithNodeIndexes(enable bool) Option {
	return func(o *ExtractionOptions) {
		o.NodeIndexes = enable
	}
}

// WithBaseURL resolves relative links and image sources in the rendered
// content against base, which must be absolute.
func WithBaseURL(base string) Option {
	return func(o *ExtractionOptions) {
		o.BaseURL = base
	}
}

// WithLimits bounds the documents the extractor accepts. Documents with more
// than maxNodes nodes are rejected; subtrees nested deeper than maxDepth are
// dropped. Zero disables a bound.
func WithLimits(maxNodes, maxDepth int) Option {
	return func(o *ExtractionOptions) {
		o.MaxNodes = maxNodes
		o.MaxDepth = maxDepth
	}
}

// WithMaxBufferSize sets the maximum number of bytes read from a reader.
func WithMaxBufferSize(size int) Option {
	return func(o *ExtractionOptions) {
		o.MaxBufferSize = size
	}
}

// WithTimeout sets the timeout duration for extraction.
// This prevents extraction from hanging indefinitely on problematic documents.
func WithTimeout(timeout time.Duration) Option {
	return func(o *ExtractionOptions) {
		o.Timeout = timeout
	}
}

// WithLogger sets the logger used to trace extraction.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *ExtractionOptions) {
		o.Logger = logger
	}
}

// articleExtractor is the concrete implementation of the Extractor interface.
type articleExtractor struct {
	options ExtractionOptions
}

// New creates a new Extractor instance with the provided options.
//
// Example:
//
//	extractor := calamine.New(
//	    calamine.WithBaseURL("https://example.com/post/"),
//	    calamine.WithTimeout(time.Second*60),
//	)
func New(opts ...Option) Extractor {
	options := DefaultOptions()
	for _, opt := range opts {
		opt(&options)
	}

	return &articleExtractor{
		options: options,
	}
}

// ExtractFromHTML extracts article content from an HTML string.
func (e *articleExtractor) ExtractFromHTML(src string, options *ExtractionOptions) (*Article, error) {
	if options == nil {
		options = &e.options
	}
	return withTimeout("ExtractFromHTML", options.Timeout, func() (*Article, error) {
		return extract(options, func(p *pipeline.Pipeline) (*pipeline.Result, error) {
			return p.RunReader(strings.NewReader(src))
		})
	})
}

// ExtractFromReader extracts article content from an io.Reader. At most
// MaxBufferSize bytes are read; larger documents are rejected.
func (e *articleExtractor) ExtractFromReader(r io.Reader, options *ExtractionOptions) (*Article, error) {
	if options == nil {
		options = &e.options
	}
	if r == nil {
		return nil, pipeline.WrapParseError(ErrNoDocument, "ExtractFromReader", "")
	}

	if options.MaxBufferSize > 0 {
		r = io.LimitReader(r, int64(options.MaxBufferSize)+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, pipeline.WrapParseError(err, "ExtractFromReader", "reading document")
	}
	if options.MaxBufferSize > 0 && len(data) > options.MaxBufferSize {
		return nil, pipeline.WrapValidationError(ErrDocumentLarge, "ExtractFromReader",
			fmt.Sprintf("more than %d bytes", options.MaxBufferSize))
	}

	return e.ExtractFromHTML(string(data), options)
}

// ExtractFromNode extracts article content from a parsed document.
func (e *articleExtractor) ExtractFromNode(doc *html.Node, options *ExtractionOptions) (*Article, error) {
	if options == nil {
		options = &e.options
	}
	return withTimeout("ExtractFromNode", options.Timeout, func() (*Article, error) {
		return extract(options, func(p *pipeline.Pipeline) (*pipeline.Result, error) {
			return p.RunHTML(doc)
		})
	})
}

// withTimeout runs fn, giving up after timeout. A non-positive timeout waits
// indefinitely.
func withTimeout(funcName string, timeout time.Duration, fn func() (*Article, error)) (*Article, error) {
	if timeout <= 0 {
		return fn()
	}

	type result struct {
		article *Article
		err     error
	}
	// Buffered so the worker can finish after a timeout.
	resultCh := make(chan result, 1)
	go func() {
		article, err := fn()
		resultCh <- result{article, err}
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case res := <-resultCh:
		return res.article, res.err
	case <-timer.C:
		return nil, pipeline.WrapError(ErrTimeout, pipeline.TimeoutError, funcName,
			fmt.Sprintf("after %v", timeout))
	}
}

// pipelineConfig converts public options to the pipeline configuration.
func pipelineConfig(options *ExtractionOptions) pipeline.Config {
	cfg := pipeline.Config{
		EnableFastPath:         options.EnableFastPath,
		RowScanLimit:           options.RowScanLimit,
		HiddenOpacityThreshold: options.HiddenOpacityThreshold,
		Limits:                 dom.Limits{MaxNodes: options.MaxNodes, MaxDepth: options.MaxDepth},
		Logger:                 options.Logger,
	}
	if options.LeafExceptions != nil {
		cfg.LeafExceptions = dom.NewTagSet(options.LeafExceptions...)
	}
	return cfg
}

// extract runs the pipeline with run and renders the result.
func extract(options *ExtractionOptions, run func(*pipeline.Pipeline) (*pipeline.Result, error)) (*Article, error) {
	renderer, err := render.New(render.Options{
		BaseURL:     options.BaseURL,
		NodeIndexes: options.NodeIndexes,
	})
	if err != nil {
		return nil, pipeline.WrapValidationError(err, "extract", "configuring renderer")
	}

	res, err := run(pipeline.New(pipelineConfig(options)))
	if err != nil {
		return nil, err
	}

	content, err := renderer.HTML(res.Tree, res.Root)
	if err != nil {
		return nil, pipeline.WrapRenderError(err, "extract", "rendering html")
	}
	markdown, err := renderer.Markdown(res.Tree, res.Root)
	if err != nil {
		return nil, pipeline.WrapRenderError(err, "extract", "rendering markdown")
	}

	article := &Article{
		Title:        res.Metadata.Title,
		Byline:       res.Metadata.Byline,
		Date:         res.Metadata.Date,
		Content:      content,
		PlainContent: renderer.Text(res.Tree, res.Root),
		Markdown:     markdown,
		Method:       string(res.Selection.Method),
		Signature:    res.Selection.Signature,
		Score:        res.Selection.Score,
	}

	blocks := renderer.Blocks(res.Tree, res.Root)
	article.PlainText = make([]Block, len(blocks))
	for i, block := range blocks {
		article.PlainText[i] = Block{
			Text:      block.Text,
			NodeIndex: block.NodeIndex,
		}
	}

	return article, nil
}
