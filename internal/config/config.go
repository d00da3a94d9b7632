// Package config loads crossprint-mcp settings from an optional JSON file
// and environment overrides.
package config

import (
	"encoding/json"
	"fmt"
	"image/color"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Environment variables that override file settings.
const (
	EnvPreviewLongEdge = "CROSSPRINT_PREVIEW_LONG_EDGE"
	EnvFullLongEdge    = "CROSSPRINT_FULL_LONG_EDGE"
	EnvExportDir       = "CROSSPRINT_EXPORT_DIR"
	EnvFillColor       = "CROSSPRINT_FILL_COLOR"
	EnvLogLevel        = "CROSSPRINT_LOG_LEVEL"
)

// Config holds runtime configuration for the registry, the editor and the
// server.
type Config struct {
	// Resolution caps, long edge in pixels.
	PreviewLongEdge int `json:"preview_long_edge"`
	FullLongEdge    int `json:"full_long_edge"`

	// ExportDir is used when image_export is called without a directory.
	ExportDir string `json:"export_dir"`

	// FillColor is a hex colour ("#000000") for warp pixels outside the source.
	FillColor string `json:"fill_color"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `json:"log_level"`
}

// DefaultConfig returns a Config populated with standard defaults.
func DefaultConfig() *Config {
	return &Config{
		PreviewLongEdge: 1600,
		FullLongEdge:    8000,
		ExportDir:       "exports",
		FillColor:       "#000000",
		LogLevel:        "info",
	}
}

// Validate clamps/normalizes values to safe ranges. It fails only when the
// fill colour cannot be parsed.
func (c *Config) Validate() error {
	def := DefaultConfig()
	if c.FullLongEdge <= 0 {
		c.FullLongEdge = def.FullLongEdge
	}
	if c.PreviewLongEdge <= 0 {
		c.PreviewLongEdge = def.PreviewLongEdge
	}
	if c.PreviewLongEdge > c.FullLongEdge {
		c.PreviewLongEdge = c.FullLongEdge
	}
	if strings.TrimSpace(c.ExportDir) == "" {
		c.ExportDir = def.ExportDir
	}
	if _, ok := parseLevel(c.LogLevel); !ok {
		c.LogLevel = def.LogLevel
	}
	if c.FillColor == "" {
		c.FillColor = def.FillColor
	}
	if _, err := parseFill(c.FillColor); err != nil {
		return err
	}
	return nil
}

// Load reads configuration from the JSON file at path. A missing file (or an
// empty path) yields DefaultConfig(). Environment overrides are not applied;
// see ApplyEnv.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to open config: %w", err)
	}
	defer f.Close()

	dec := json.NewDecoder(f)
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from the environment using lookup (normally
// os.LookupEnv) and re-validates.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvPreviewLongEdge); ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvPreviewLongEdge, err)
		}
		c.PreviewLongEdge = n
	}
	if v, ok := lookup(EnvFullLongEdge); ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvFullLongEdge, err)
		}
		c.FullLongEdge = n
	}
	if v, ok := lookup(EnvExportDir); ok {
		c.ExportDir = v
	}
	if v, ok := lookup(EnvFillColor); ok {
		c.FillColor = strings.TrimSpace(v)
	}
	if v, ok := lookup(EnvLogLevel); ok {
		c.LogLevel = strings.TrimSpace(v)
	}
	return c.Validate()
}

// Save writes the configuration to the given path in JSON format.
func (c *Config) Save(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(c)
}

// Fill returns FillColor as an opaque colour, defaulting to black. Validate
// reports an unparseable value.
func (c *Config) Fill() color.Color {
	col, err := parseFill(c.FillColor)
	if err != nil {
		return color.NRGBA{A: 255}
	}
	return col
}

func parseFill(s string) (color.NRGBA, error) {
	col, err := colorful.Hex(s)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid fill_color %q: %w", s, err)
	}
	r, g, b := col.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 255}, nil
}

// Level returns LogLevel as a slog level, defaulting to info.
func (c *Config) Level() slog.Level {
	lvl, _ := parseLevel(c.LogLevel)
	return lvl
}

func parseLevel(s string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	}
	return slog.LevelInfo, false
}
