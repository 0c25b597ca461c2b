package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	yaml "gopkg.in/yaml.v3"

	"github.com/feedkit/calamine"
)

// FileConfig is the schema of the -config file. Any field left unset keeps
// the built-in default.
type FileConfig struct {
	Format    string        `yaml:"format" json:"format"`
	OutputDir string        `yaml:"outputDir" json:"outputDir"`
	Compact   bool          `yaml:"compact" json:"compact"`
	Jobs      int           `yaml:"jobs" json:"jobs"`
	Timeout   time.Duration `yaml:"timeout" json:"timeout"`
	Verbose   bool          `yaml:"verbose" json:"verbose"`
	BaseURL   string        `yaml:"baseURL" json:"baseURL"`
	Indexes   bool          `yaml:"indexes" json:"indexes"`

	Extraction struct {
		FastPath               *bool    `yaml:"fastPath" json:"fastPath"`
		RowScanLimit           int      `yaml:"rowScanLimit" json:"rowScanLimit"`
		HiddenOpacityThreshold *float64 `yaml:"hiddenOpacityThreshold" json:"hiddenOpacityThreshold"`
		LeafExceptions         []string `yaml:"leafExceptions" json:"leafExceptions"`
	} `yaml:"extraction" json:"extraction"`

	Limits struct {
		MaxBufferSize int `yaml:"maxBufferSize" json:"maxBufferSize"`
		MaxNodes      int `yaml:"maxNodes" json:"maxNodes"`
		MaxDepth      int `yaml:"maxDepth" json:"maxDepth"`
	} `yaml:"limits" json:"limits"`
}

// LoadConfigFile reads YAML or JSON into FileConfig.
func LoadConfigFile(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	switch ext := filepath.Ext(path); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse yaml: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse json: %w", err)
		}
	default:
		// Try YAML then JSON
		if err := yaml.Unmarshal(b, &fc); err != nil {
			if jerr := json.Unmarshal(b, &fc); jerr != nil {
				return fc, fmt.Errorf("parse config: %v (yaml) / %v (json)", err, jerr)
			}
		}
	}
	return fc, nil
}

// settings are the resolved command-line options.
type settings struct {
	Format    OutputFormat
	OutputDir string
	Output    string
	Compact   bool
	Jobs      int
	Verbose   bool
	Options   calamine.ExtractionOptions
}

// defaultSettings returns the settings used when neither flags nor a config
// file say otherwise.
func defaultSettings() settings {
	return settings{
		Format:  FormatJSON,
		Jobs:    4,
		Options: calamine.DefaultOptions(),
	}
}

// apply copies the values set in fc onto s.
func (fc FileConfig) apply(s *settings) {
	if fc.Format != "" {
		s.Format = OutputFormat(fc.Format)
	}
	if fc.OutputDir != "" {
		s.OutputDir = fc.OutputDir
	}
	if fc.Compact {
		s.Compact = true
	}
	if fc.Jobs > 0 {
		s.Jobs = fc.Jobs
	}
	if fc.Timeout > 0 {
		s.Options.Timeout = fc.Timeout
	}
	if fc.Verbose {
		s.Verbose = true
	}
	if fc.BaseURL != "" {
		s.Options.BaseURL = fc.BaseURL
	}
	if fc.Indexes {
		s.Options.NodeIndexes = true
	}

	ex := fc.Extraction
	if ex.FastPath != nil {
		s.Options.EnableFastPath = *ex.FastPath
	}
	if ex.RowScanLimit > 0 {
		s.Options.RowScanLimit = ex.RowScanLimit
	}
	if ex.HiddenOpacityThreshold != nil {
		s.Options.HiddenOpacityThreshold = *ex.HiddenOpacityThreshold
	}
	if ex.LeafExceptions != nil {
		s.Options.LeafExceptions = ex.LeafExceptions
	}

	if fc.Limits.MaxBufferSize > 0 {
		s.Options.MaxBufferSize = fc.Limits.MaxBufferSize
	}
	if fc.Limits.MaxNodes > 0 {
		s.Options.MaxNodes = fc.Limits.MaxNodes
	}
	if fc.Limits.MaxDepth > 0 {
		s.Options.MaxDepth = fc.Limits.MaxDepth
	}
}
