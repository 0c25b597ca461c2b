package calamine

import (
	"github.com/feedkit/calamine/types"
)

// Block represents one paragraph of plain text, optionally tagged with the
// node index of the element it came from.
type Block = types.Block

// Article represents the extracted content and metadata from a webpage.
type Article = types.Article

// ExtractionOptions configures the article extraction process.
type ExtractionOptions = types.ExtractionOptions

// DefaultOptions returns the default extraction options.
func DefaultOptions() ExtractionOptions {
	return types.DefaultOptions()
}

// BuildInfo contains version and build information for the calamine library.
type BuildInfo = types.BuildInfo

// GetBuildInfo returns the current version information for the calamine library.
func GetBuildInfo() BuildInfo {
	return types.GetBuildInfo()
}

// Version is the current version of the calamine library.
var Version = types.Version

// Name is the name of the calamine library.
var Name = types.Name
