package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/staffline/pkg/cache"
	"github.com/matzehuels/staffline/pkg/player"
	"github.com/matzehuels/staffline/pkg/render/layout"
	"github.com/matzehuels/staffline/pkg/score"
)

// Runner runs the pipeline with caching. The CLI and the HTTP server share
// it so neither duplicates the caching logic.
//
// A Runner holds no per-run state. Multiple goroutines can use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: logger}
}

// Execute renders d into every requested format. Formats already in the
// cache are served from it; the layout is computed only when at least one
// format is missing.
func (r *Runner) Execute(ctx context.Context, d *score.Document, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	r.applyLogger(&opts)

	fp := score.Fingerprint(d)
	result := &Result{
		Fingerprint: fp,
		Artifacts:   make(map[string][]byte, len(opts.Formats)),
	}

	var missing []string
	for _, format := range opts.Formats {
		if opts.Refresh {
			missing = append(missing, format)
			continue
		}
		key := r.Keyer.ArtifactKey(fp, opts.ArtifactKeyOpts(format))
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			result.Artifacts[format] = data
			continue
		} else if err != nil {
			r.Logger.Warn("cache read failed", "format", format, "error", err)
		}
		missing = append(missing, format)
	}
	if len(missing) == 0 {
		result.CacheInfo.RenderHit = true
		r.Logger.Debug("artifacts cached", "formats", opts.Formats)
		return result, nil
	}

	layoutStart := time.Now()
	l, err := ComputeLayout(ctx, d, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Layout = l
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.Stats.Rows = len(l.Rows)
	result.Stats.Measures = countMeasures(l)

	r.Logger.Info("computed layout",
		"rows", result.Stats.Rows,
		"measures", result.Stats.Measures,
		"duration", result.Stats.LayoutTime)

	renderStart := time.Now()
	renderOpts := opts
	renderOpts.Formats = missing
	artifacts, err := RenderFromLayout(l, d, renderOpts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	for format, data := range artifacts {
		result.Artifacts[format] = data
		key := r.Keyer.ArtifactKey(fp, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, key, data, cache.TTLArtifact); err != nil {
			r.Logger.Warn("cache write failed", "format", format, "error", err)
		}
	}
	result.Stats.RenderTime = time.Since(renderStart)

	r.Logger.Info("rendered outputs",
		"formats", missing,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// LayoutJSON returns the style independent layout of d as JSON, with
// caching. It is what the HTTP API serves to clients that draw the score
// themselves.
func (r *Runner) LayoutJSON(ctx context.Context, d *score.Document, opts Options) ([]byte, bool, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	key := r.Keyer.LayoutKey(score.Fingerprint(d), opts.LayoutKeyOpts())
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			return data, true, nil
		}
	}

	l, err := ComputeLayout(ctx, d, opts)
	if err != nil {
		return nil, false, err
	}
	data, err := layoutJSON(l, d, "")
	if err != nil {
		return nil, false, err
	}
	_ = r.Cache.Set(ctx, key, data, cache.TTLLayout)
	return data, false, nil
}

// Sequence resolves the playback plan of d and returns it as JSON, with
// caching. The plan is also returned on a miss.
func (r *Runner) Sequence(ctx context.Context, d *score.Document) (*player.Plan, []byte, bool, error) {
	key := r.Keyer.SequenceKey(score.Fingerprint(d))
	if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
		return nil, data, true, nil
	}

	plan, err := player.Resolve(d)
	if err != nil {
		return nil, nil, false, fmt.Errorf("sequence: %w", err)
	}
	if plan.Truncated {
		r.Logger.Warn("navigation loop truncated", "steps", len(plan.Steps))
	}
	data, err := json.Marshal(plan)
	if err != nil {
		return nil, nil, false, err
	}
	if err := r.Cache.Set(ctx, key, data, cache.TTLSequence); err != nil {
		r.Logger.Warn("cache write failed", "kind", cache.KindSequence, "error", err)
	}
	return plan, data, false, nil
}

// ComputeLayout is [ComputeLayout] with the runner's logger.
func (r *Runner) ComputeLayout(ctx context.Context, d *score.Document, opts Options) (*layout.Layout, error) {
	r.applyLogger(&opts)
	return ComputeLayout(ctx, d, opts)
}

// Close releases the cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
