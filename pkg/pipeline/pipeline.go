// Package pipeline runs the layout → render → sequence stages for a score
// document with caching.
//
// The CLI and the HTTP server both go through this package so that option
// defaults, validation and cache keys are the same everywhere.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{Formats: []string{"svg", "json"}}
//	result, err := runner.Execute(ctx, doc, opts)
//	if err != nil {
//	    return err
//	}
//	svg := result.Artifacts["svg"]
//
// Individual stages:
//
//	l, err := pipeline.ComputeLayout(ctx, doc, opts)
//	artifacts, err := pipeline.RenderFromLayout(l, doc, opts)
//	plan, data, hit, err := runner.Sequence(ctx, doc)
//
// Options can be read from a TOML file with [LoadOptions].
package pipeline

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/staffline/pkg/cache"
	"github.com/matzehuels/staffline/pkg/render/layout"
	"github.com/matzehuels/staffline/pkg/render/styles"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultWidth is the page width in pixels.
	DefaultWidth = 1000.0

	// DefaultUnit is the staff space in pixels.
	DefaultUnit = 8.0

	// DefaultStyle is the visual style.
	DefaultStyle = "simple"

	// DefaultMeasurer measures text with the embedded Go font.
	DefaultMeasurer = MeasurerFont

	// DefaultCacheBackend stores artifacts on disk.
	DefaultCacheBackend = CacheFile

	// DefaultRedisAddr is used when the redis backend has no address.
	DefaultRedisAddr = "localhost:6379"

	// DefaultVolume is the master playback volume.
	DefaultVolume = 1.0

	// DefaultInstrument names the player in logs and MIDI track names.
	DefaultInstrument = "piano"

	// DefaultDemo is the built-in document used when none is named.
	DefaultDemo = "ode"
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatJSON = "json"
)

// Text measurers.
const (
	MeasurerFont  = "font"
	MeasurerFixed = "fixed"
)

// Cache backends.
const (
	CacheNone  = "none"
	CacheFile  = "file"
	CacheRedis = "redis"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
	FormatJSON: true,
}

// ValidCacheBackends is the set of supported cache backends.
var ValidCacheBackends = map[string]bool{
	CacheNone:  true,
	CacheFile:  true,
	CacheRedis: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the pipeline. It is JSON and TOML
// serializable for config files and API requests.
type Options struct {
	// Layout options
	Width    float64 `json:"width,omitempty" toml:"width"`
	Unit     float64 `json:"unit,omitempty" toml:"unit"`
	NoHeader bool    `json:"no_header,omitempty" toml:"no_header"`
	Measurer string  `json:"measurer,omitempty" toml:"measurer"`

	// Render options
	Formats     []string `json:"formats,omitempty" toml:"formats"`
	Style       string   `json:"style,omitempty" toml:"style"`
	Interactive bool     `json:"interactive,omitempty" toml:"interactive"`

	// Cache options
	CacheBackend string `json:"cache_backend,omitempty" toml:"cache_backend"`
	RedisAddr    string `json:"redis_addr,omitempty" toml:"redis_addr"`
	Refresh      bool   `json:"refresh,omitempty" toml:"-"`

	// Player options
	Volume     float64 `json:"volume,omitempty" toml:"volume"`
	Instrument string  `json:"instrument,omitempty" toml:"instrument"`

	// Demo names the built-in document to use.
	Demo string `json:"demo,omitempty" toml:"demo"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-" toml:"-"`

	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Fingerprint is the content digest of the document.
	Fingerprint string

	// Layout is nil when every artifact came from the cache.
	Layout *layout.Layout

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Rows       int
	Measures   int
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	RenderHit   bool // every artifact came from cache
	SequenceHit bool
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return fmt.Errorf("invalid format: %q (must be one of: svg, png, pdf, json)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateStyle checks that a style is valid.
func ValidateStyle(style string) error {
	if !slices.Contains(styles.Names(), style) {
		return fmt.Errorf("invalid style: %q (must be one of: %s)", style, strings.Join(styles.Names(), ", "))
	}
	return nil
}

// ValidateCacheBackend checks that a cache backend is valid.
func ValidateCacheBackend(backend string) error {
	if !ValidCacheBackends[backend] {
		return fmt.Errorf("invalid cache backend: %q (must be one of: none, file, redis)", backend)
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults applies every default and validates the result.
// It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	if o.CacheBackend == "" {
		o.CacheBackend = DefaultCacheBackend
	}
	if err := ValidateCacheBackend(o.CacheBackend); err != nil {
		return err
	}
	if o.CacheBackend == CacheRedis && o.RedisAddr == "" {
		o.RedisAddr = DefaultRedisAddr
	}
	if o.Volume == 0 {
		o.Volume = DefaultVolume
	}
	if o.Volume < 0 || o.Volume > 1 {
		return fmt.Errorf("invalid volume: %v (must be within 0..1)", o.Volume)
	}
	if o.Instrument == "" {
		o.Instrument = DefaultInstrument
	}
	if o.Demo == "" {
		o.Demo = DefaultDemo
	}
	o.validated = true
	return nil
}

// SetLayoutDefaults sets default values for layout computation.
func (o *Options) SetLayoutDefaults() {
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Unit == 0 {
		o.Unit = DefaultUnit
	}
	if o.Measurer == "" {
		o.Measurer = DefaultMeasurer
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForLayout sets layout defaults and validates them.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()
	if o.Width <= 0 || o.Unit <= 0 {
		return fmt.Errorf("invalid geometry: width %v, unit %v", o.Width, o.Unit)
	}
	if o.Measurer != MeasurerFont && o.Measurer != MeasurerFixed {
		return fmt.Errorf("invalid measurer: %q (must be one of: font, fixed)", o.Measurer)
	}
	return nil
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Style == "" {
		o.Style = DefaultStyle
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender sets layout and render defaults and validates them.
func (o *Options) ValidateForRender() error {
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	o.SetRenderDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	return ValidateStyle(o.Style)
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Width:  o.Width,
		Unit:   o.Unit,
		Header: !o.NoHeader,
	}
}

// ArtifactKeyOpts returns cache key options for one rendered format.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:      format,
		Style:       o.Style,
		Width:       o.Width,
		Unit:        o.Unit,
		Header:      !o.NoHeader,
		Interactive: o.Interactive && format == FormatSVG,
	}
}
