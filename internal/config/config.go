// Package config loads configuration trees from JSON or HCL files with an
// optional front matter header.
package config

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/adrg/frontmatter"
	"github.com/jakoblorz/go-treegen/internal/filesystem"
	"github.com/jakoblorz/go-treegen/internal/models"
	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v2"
)

// Format selects the body syntax of a configuration file
type Format string

const (
	FormatAuto Format = "auto"
	FormatJSON Format = "json"
	FormatHCL  Format = "hcl"
)

// DefaultVersion is assumed when the front matter does not name one
const DefaultVersion = "v1"

// ParseFormat parses a format name. The empty string means FormatAuto.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "", FormatAuto:
		return FormatAuto, nil
	case FormatJSON, FormatHCL:
		return f, nil
	default:
		return "", fmt.Errorf("unknown config format %q (expected json, hcl or auto)", s)
	}
}

// DetectFormat picks a format from the file extension
func DetectFormat(filename string) (Format, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".json":
		return FormatJSON, nil
	case ".hcl":
		return FormatHCL, nil
	default:
		return "", fmt.Errorf("cannot detect config format of %s (use .json, .hcl or --format)", filename)
	}
}

// Metadata is the optional front matter of a configuration file
type Metadata struct {
	Version     string `yaml:"version" toml:"version"`
	Description string `yaml:"description" toml:"description"`
	Output      string `yaml:"output" toml:"output"`
}

// Config is a loaded configuration file
type Config struct {
	Path     string
	Format   Format
	Metadata Metadata
	Root     models.Node
}

// JSON bodies start with "{", so the front matter formats are limited to
// YAML and TOML to keep the body from being taken as a JSON header.
var frontMatterFormats = []*frontmatter.Format{
	frontmatter.NewFormat("---", "---", yaml.Unmarshal),
	frontmatter.NewFormat("+++", "+++", toml.Unmarshal),
}

// Load reads and parses the configuration file at path
func Load(fs filesystem.FileSystem, path string, format Format) (*Config, error) {
	data, err := fs.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return Parse(data, path, format)
}

// Parse parses configuration data. filename is used for format detection
// and diagnostics.
func Parse(data []byte, filename string, format Format) (*Config, error) {
	if format == "" || format == FormatAuto {
		detected, err := DetectFormat(filename)
		if err != nil {
			return nil, err
		}
		format = detected
	}

	var meta Metadata
	body, err := frontmatter.Parse(bytes.NewReader(data), &meta, frontMatterFormats...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse front matter of %s: %w", filename, err)
	}

	if err := checkVersion(&meta); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}

	var root models.Node
	switch format {
	case FormatJSON:
		root, err = ParseJSON(body)
	case FormatHCL:
		root, err = ParseHCL(body, filename)
	default:
		return nil, fmt.Errorf("unknown config format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", filename, err)
	}

	return &Config{
		Path:     filename,
		Format:   format,
		Metadata: meta,
		Root:     root,
	}, nil
}

func checkVersion(meta *Metadata) error {
	v := strings.TrimSpace(meta.Version)
	if v == "" {
		meta.Version = DefaultVersion
		return nil
	}
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return fmt.Errorf("invalid config version %q", meta.Version)
	}
	if semver.Major(v) != DefaultVersion {
		return fmt.Errorf("unsupported config version %s (supported: %s)", v, DefaultVersion)
	}
	meta.Version = v
	return nil
}
