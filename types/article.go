// Package types provides the core data structures for the calamine library.
package types

import (
	"time"

	"github.com/rs/zerolog"
)

// Block represents one paragraph of plain text. NodeIndex identifies the
// element the text came from when node indexes are enabled.
type Block struct {
	Text      string `json:"text"`
	NodeIndex string `json:"node_index,omitempty"`
}

// Article is the main content of a page and its metadata.
type Article struct {
	Title        string    `json:"title"`
	Byline       string    `json:"byline"`
	Date         time.Time `json:"date"`
	Content      string    `json:"content"`
	PlainContent string    `json:"plain_content"`
	Markdown     string    `json:"markdown"`
	PlainText    []Block   `json:"plain_text"`

	// Method is how the content root was chosen: "signature", "score" or
	// "fallback".
	Method    string  `json:"method"`
	Signature string  `json:"signature,omitempty"`
	Score     float64 `json:"score,omitempty"`
}

// ExtractionOptions configures the article extraction process.
type ExtractionOptions struct {
	EnableFastPath         bool          // Try structural signatures before scoring
	RowScanLimit           int           // Rows checked by the single-column table rule
	HiddenOpacityThreshold float64       // Opacity below which an element counts as hidden
	LeafExceptions         []string      // Elements kept even when empty
	NodeIndexes            bool          // Add node index attributes
	BaseURL                string        // Resolve relative links against this URL
	MaxBufferSize          int           // Maximum bytes read from a reader
	MaxNodes               int           // Reject documents with more nodes
	MaxDepth               int           // Drop subtrees nested deeper
	Timeout                time.Duration // Timeout for extraction process
	Logger                 zerolog.Logger
}

// DefaultOptions returns the default extraction options. The fast path is
// on, node indexes are off, reads are limited to 5MB and extraction times
// out after 30 seconds.
func DefaultOptions() ExtractionOptions {
	return ExtractionOptions{
		EnableFastPath:         true,
		RowScanLimit:           20,
		HiddenOpacityThreshold: 0.3,
		LeafExceptions: []string{
			"area", "audio", "br", "col", "embed", "hr", "img", "picture",
			"source", "track", "video", "wbr",
		},
		MaxBufferSize: 5 * 1024 * 1024,
		MaxNodes:      200000,
		MaxDepth:      256,
		Timeout:       time.Second * 30,
		Logger:        zerolog.Nop(),
	}
}
