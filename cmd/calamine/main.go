// Package main provides the command-line interface for calamine.
// It extracts the main content from HTML files, directories of HTML files
// or standard input and writes it as JSON, HTML, Markdown or plain text.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/feedkit/calamine"
)

// OutputFormat represents the supported output formats for the extracted content.
type OutputFormat string

const (
	FormatJSON     OutputFormat = "json"
	FormatHTML     OutputFormat = "html"
	FormatMarkdown OutputFormat = "markdown"
	FormatText     OutputFormat = "text"
)

// extension returns the file extension used for f in batch output.
func (f OutputFormat) extension() string {
	switch f {
	case FormatHTML:
		return ".html"
	case FormatMarkdown:
		return ".md"
	case FormatText:
		return ".txt"
	default:
		return ".json"
	}
}

func (f OutputFormat) valid() bool {
	switch f {
	case FormatJSON, FormatHTML, FormatMarkdown, FormatText:
		return true
	}
	return false
}

// Exit codes
const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run executes the command with args and returns the exit code.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("calamine", flag.ContinueOnError)
	fs.SetOutput(stderr)

	defaults := defaultSettings()
	inputFiles := fs.String("input", "-", "Input HTML file(s) or directories (comma-separated, use '-' for stdin)")
	outputDir := fs.String("output-dir", "", "Output directory for batch processing")
	outputFile := fs.String("output", "", "Output file path for a single input (default: stdout)")
	formatStr := fs.String("format", string(defaults.Format), "Output format: json, html, markdown, or text")
	compact := fs.Bool("compact", false, "Output compact JSON without indentation")
	nodeIndexes := fs.Bool("indexes", false, "Add node index attributes")
	baseURL := fs.String("base", "", "Absolute URL used to resolve relative links")
	fastPath := fs.Bool("fast-path", defaults.Options.EnableFastPath, "Try structural signatures before scoring")
	rowScanLimit := fs.Int("row-scan-limit", defaults.Options.RowScanLimit, "Table rows inspected by the single-column rule")
	opacity := fs.Float64("opacity", defaults.Options.HiddenOpacityThreshold, "Opacity below which elements are hidden")
	maxBuffer := fs.Int("max-buffer", defaults.Options.MaxBufferSize, "Maximum bytes read per document")
	timeout := fs.Duration("timeout", defaults.Options.Timeout, "Timeout for extraction")
	jobs := fs.Int("j", defaults.Jobs, "Number of documents processed concurrently")
	verbose := fs.Bool("v", false, "Log extraction details")
	configPath := fs.String("config", "", "YAML or JSON config file; flags override its values")
	showVersion := fs.Bool("version", false, "Show version information")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "calamine - Extract the main content from HTML\n\n")
		fmt.Fprintf(stderr, "Usage: calamine [options]\n\n")
		fmt.Fprintf(stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(stderr, "\nExamples:\n")
		fmt.Fprintf(stderr, "  calamine -input article.html -output article.json\n")
		fmt.Fprintf(stderr, "  calamine -input article.html -format markdown -base https://example.com/post\n")
		fmt.Fprintf(stderr, "  calamine -input ./pages -output-dir ./extracted -j 8\n")
		fmt.Fprintf(stderr, "  cat article.html | calamine -format text\n")
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}

	if *showVersion {
		info := calamine.GetBuildInfo()
		fmt.Fprintf(stdout, "%s version %s (%s)\n", info.Name, info.Version, info.GoVersion)
		return exitOK
	}

	s := defaults
	if *configPath != "" {
		fc, err := LoadConfigFile(*configPath)
		if err != nil {
			fmt.Fprintf(stderr, "Error loading config %s: %v\n", *configPath, err)
			return exitUsage
		}
		fc.apply(&s)
	}

	// Flags given on the command line win over the config file.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "output-dir":
			s.OutputDir = *outputDir
		case "format":
			s.Format = OutputFormat(strings.ToLower(*formatStr))
		case "compact":
			s.Compact = *compact
		case "indexes":
			s.Options.NodeIndexes = *nodeIndexes
		case "base":
			s.Options.BaseURL = *baseURL
		case "fast-path":
			s.Options.EnableFastPath = *fastPath
		case "row-scan-limit":
			s.Options.RowScanLimit = *rowScanLimit
		case "opacity":
			s.Options.HiddenOpacityThreshold = *opacity
		case "max-buffer":
			s.Options.MaxBufferSize = *maxBuffer
		case "timeout":
			s.Options.Timeout = *timeout
		case "j":
			s.Jobs = *jobs
		case "v":
			s.Verbose = *verbose
		}
	})
	s.Output = *outputFile

	if !s.Format.valid() {
		fmt.Fprintf(stderr, "Invalid output format: %s. Must be one of: json, html, markdown, text\n", s.Format)
		return exitUsage
	}
	if s.Jobs < 1 {
		s.Jobs = 1
	}

	level := zerolog.InfoLevel
	if s.Verbose {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: zerolog.SyncWriter(stderr), TimeFormat: time.RFC3339}).
		Level(level).With().Timestamp().Logger()
	if s.Verbose {
		s.Options.Logger = logger
	}

	inputs, err := expandInputs(strings.Split(*inputFiles, ","))
	if err != nil {
		logger.Error().Err(err).Msg("reading inputs")
		return exitFailure
	}
	if len(inputs) > 1 && s.Output != "" && s.OutputDir == "" {
		logger.Warn().Msg("multiple inputs with a single output file; writing to stdout")
		s.Output = ""
	}

	b := &batch{settings: s, logger: logger, stdin: stdin, stdout: stdout}
	if failed := b.process(ctx, inputs); failed > 0 {
		logger.Error().Int("failed", failed).Int("total", len(inputs)).Msg("some documents could not be processed")
		return exitFailure
	}
	return exitOK
}

// expandInputs trims the input list and replaces each directory with the
// HTML files directly inside it, in lexical order.
func expandInputs(paths []string) ([]string, error) {
	var out []string
	for _, p := range paths {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if p == "-" {
			out = append(out, p)
			continue
		}
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			out = append(out, p)
			continue
		}
		entries, err := os.ReadDir(p)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			switch strings.ToLower(filepath.Ext(e.Name())) {
			case ".html", ".htm", ".xhtml":
				if !e.IsDir() {
					out = append(out, filepath.Join(p, e.Name()))
				}
			}
		}
	}
	if len(out) == 0 {
		out = []string{"-"}
	}
	return out, nil
}

// batch extracts a set of inputs concurrently.
type batch struct {
	settings
	logger zerolog.Logger
	stdin  io.Reader
	stdout io.Writer
}

// result is the rendered output for one input.
type result struct {
	data []byte
	err  error
}

// process extracts every input with at most Jobs running at once. Output
// files are written as documents finish; stdout output is written in input
// order. It returns the number of inputs that failed.
func (b *batch) process(ctx context.Context, inputs []string) int {
	ext := calamine.New()
	results := make([]result, len(inputs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(b.Jobs)
	for i, input := range inputs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i].err = err
				return nil
			}
			results[i] = b.processOne(ext, input)
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for i, res := range results {
		if res.err != nil {
			failed++
			b.logger.Error().Err(res.err).Str("input", inputs[i]).Msg("extraction failed")
			continue
		}
		if res.data == nil {
			continue
		}
		if _, err := b.stdout.Write(res.data); err != nil {
			b.logger.Error().Err(err).Msg("writing output")
			return len(inputs)
		}
		fmt.Fprintln(b.stdout)
	}
	return failed
}

// processOne extracts input and writes it to its output file, or returns
// the rendered bytes when the output is stdout.
func (b *batch) processOne(ext calamine.Extractor, input string) result {
	opts := b.Options
	var r io.Reader = b.stdin
	if input != "-" {
		file, err := os.Open(input)
		if err != nil {
			return result{err: err}
		}
		defer file.Close()
		r = file
	}

	article, err := ext.ExtractFromReader(r, &opts)
	if err != nil {
		return result{err: err}
	}
	data, err := formatArticle(article, b.Format, b.Compact)
	if err != nil {
		return result{err: err}
	}

	outputPath := b.outputPath(input)
	if outputPath == "" {
		return result{data: data}
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return result{err: err}
	}
	if err := os.WriteFile(outputPath, data, 0o644); err != nil {
		return result{err: err}
	}
	b.logger.Info().Str("input", input).Str("output", outputPath).Str("method", article.Method).Msg("processed")
	return result{}
}

// outputPath returns where the output for input goes, or "" for stdout.
func (b *batch) outputPath(input string) string {
	if b.OutputDir != "" && input != "-" {
		base := filepath.Base(input)
		name := strings.TrimSuffix(base, filepath.Ext(base))
		return filepath.Join(b.OutputDir, name+b.Format.extension())
	}
	return b.Output
}

// formatArticle renders article in the requested format.
func formatArticle(article *calamine.Article, format OutputFormat, compact bool) ([]byte, error) {
	switch format {
	case FormatHTML:
		return []byte(article.Content), nil
	case FormatMarkdown:
		return []byte(article.Markdown), nil
	case FormatText:
		texts := make([]string, len(article.PlainText))
		for i, block := range article.PlainText {
			texts[i] = block.Text
		}
		return []byte(strings.Join(texts, "\n\n")), nil
	default:
		if compact {
			return json.Marshal(article)
		}
		return json.MarshalIndent(article, "", "  ")
	}
}
