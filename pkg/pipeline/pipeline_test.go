package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/staffline/pkg/cache"
	"github.com/matzehuels/staffline/pkg/score"
)

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"svg", false},
		{"png", false},
		{"pdf", false},
		{"json", false},
		{"midi", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}

func TestValidateStyle(t *testing.T) {
	tests := []struct {
		style   string
		wantErr bool
	}{
		{"simple", false},
		{"dark", false},
		{"handdrawn", true},
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateStyle(tt.style)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateStyle(%q) error = %v, wantErr %v", tt.style, err, tt.wantErr)
		}
	}
}

func TestValidateCacheBackend(t *testing.T) {
	for _, b := range []string{"none", "file", "redis"} {
		if err := ValidateCacheBackend(b); err != nil {
			t.Errorf("ValidateCacheBackend(%q) error = %v", b, err)
		}
	}
	if err := ValidateCacheBackend("memcached"); err == nil {
		t.Error("ValidateCacheBackend(memcached) should fail")
	}
}

func TestValidateAndSetDefaults(t *testing.T) {
	var opts Options
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults() error: %v", err)
	}

	if opts.Width != DefaultWidth || opts.Unit != DefaultUnit {
		t.Errorf("geometry = %v/%v, want %v/%v", opts.Width, opts.Unit, DefaultWidth, DefaultUnit)
	}
	if len(opts.Formats) != 1 || opts.Formats[0] != FormatSVG {
		t.Errorf("Formats = %v, want [svg]", opts.Formats)
	}
	if opts.Style != DefaultStyle || opts.Measurer != DefaultMeasurer {
		t.Errorf("Style = %q, Measurer = %q", opts.Style, opts.Measurer)
	}
	if opts.CacheBackend != DefaultCacheBackend || opts.RedisAddr != "" {
		t.Errorf("CacheBackend = %q, RedisAddr = %q", opts.CacheBackend, opts.RedisAddr)
	}
	if opts.Volume != DefaultVolume || opts.Instrument != DefaultInstrument || opts.Demo != DefaultDemo {
		t.Errorf("player defaults = %v %q %q", opts.Volume, opts.Instrument, opts.Demo)
	}
	if opts.Logger == nil {
		t.Error("Logger should be set")
	}

	// Idempotent
	opts.Width = 0
	if err := opts.ValidateAndSetDefaults(); err != nil || opts.Width != 0 {
		t.Errorf("second call changed options: width %v, err %v", opts.Width, err)
	}
}

func TestValidateAndSetDefaultsErrors(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{"negative width", Options{Width: -1}},
		{"bad measurer", Options{Measurer: "ruler"}},
		{"bad format", Options{Formats: []string{"svg", "gif"}}},
		{"bad style", Options{Style: "neon"}},
		{"bad backend", Options{CacheBackend: "s3"}},
		{"loud", Options{Volume: 1.5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.opts.ValidateAndSetDefaults(); err == nil {
				t.Error("ValidateAndSetDefaults() should fail")
			}
		})
	}
}

func TestRedisAddrDefault(t *testing.T) {
	opts := Options{CacheBackend: CacheRedis}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if opts.RedisAddr != DefaultRedisAddr {
		t.Errorf("RedisAddr = %q, want %q", opts.RedisAddr, DefaultRedisAddr)
	}
}

func TestKeyOpts(t *testing.T) {
	opts := Options{Width: 800, Unit: 10, NoHeader: true, Style: "dark", Interactive: true}

	lk := opts.LayoutKeyOpts()
	if lk.Width != 800 || lk.Unit != 10 || lk.Header {
		t.Errorf("LayoutKeyOpts() = %+v", lk)
	}
	if ak := opts.ArtifactKeyOpts(FormatSVG); !ak.Interactive || ak.Style != "dark" || ak.Format != "svg" {
		t.Errorf("ArtifactKeyOpts(svg) = %+v", ak)
	}
	// Interaction only changes SVG output.
	if ak := opts.ArtifactKeyOpts(FormatJSON); ak.Interactive {
		t.Errorf("ArtifactKeyOpts(json).Interactive = true")
	}
}

func TestLoadOptions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "staffline.toml")
	data := `width = 1200
style = "dark"
formats = ["svg", "json"]
cache_backend = "none"
volume = 0.5
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	opts, err := LoadOptions(path)
	if err != nil {
		t.Fatalf("LoadOptions() error: %v", err)
	}
	if opts.Width != 1200 || opts.Style != "dark" || opts.CacheBackend != "none" || opts.Volume != 0.5 {
		t.Errorf("LoadOptions() = %+v", opts)
	}
	if len(opts.Formats) != 2 || opts.Formats[1] != "json" {
		t.Errorf("Formats = %v", opts.Formats)
	}
}

func TestLoadOptionsErrors(t *testing.T) {
	dir := t.TempDir()
	unknown := filepath.Join(dir, "unknown.toml")
	os.WriteFile(unknown, []byte("widht = 10\n"), 0o644)
	broken := filepath.Join(dir, "broken.toml")
	os.WriteFile(broken, []byte("width = \n"), 0o644)

	for _, path := range []string{unknown, broken, filepath.Join(dir, "missing.toml")} {
		if _, err := LoadOptions(path); err == nil {
			t.Errorf("LoadOptions(%s) should fail", filepath.Base(path))
		}
	}
}

func TestMerge(t *testing.T) {
	base := Options{Width: 1200, Style: "dark", Formats: []string{"json"}}
	got := Merge(base, Options{Style: "simple", NoHeader: true})

	if got.Width != 1200 || got.Style != "simple" || !got.NoHeader || got.Formats[0] != "json" {
		t.Errorf("Merge() = %+v", got)
	}
}

// countingCache wraps a cache and counts hits.
type countingCache struct {
	cache.Cache
	hits, sets int
}

func (c *countingCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, ok, err := c.Cache.Get(ctx, key)
	if ok {
		c.hits++
	}
	return data, ok, err
}

func (c *countingCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	c.sets++
	return c.Cache.Set(ctx, key, data, ttl)
}

func testDoc(t *testing.T) *score.Document {
	t.Helper()
	d := score.New(score.PresetTreble)
	d.SetHeader(score.Header{Title: "Test"})
	m := d.AddMeasure()
	for _, n := range []string{"C4", "E4", "G4", "C5"} {
		if _, err := m.AddNote(0, n, "4"); err != nil {
			t.Fatal(err)
		}
	}
	m.EndSong()
	return d
}

func newTestRunner(t *testing.T) (*Runner, *countingCache) {
	t.Helper()
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	cc := &countingCache{Cache: fc}
	return NewRunner(cc, nil, nil), cc
}

func TestRunnerExecute(t *testing.T) {
	ctx := context.Background()
	runner, cc := newTestRunner(t)
	opts := Options{Formats: []string{"svg", "json"}, Measurer: MeasurerFixed, CacheBackend: CacheNone}

	first, err := runner.Execute(ctx, testDoc(t), opts)
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if first.CacheInfo.RenderHit || first.Layout == nil {
		t.Errorf("first run: hit = %v, layout = %v", first.CacheInfo.RenderHit, first.Layout != nil)
	}
	if first.Stats.Rows != 1 || first.Stats.Measures != 1 {
		t.Errorf("Stats = %+v", first.Stats)
	}
	if !bytes.HasPrefix(bytes.TrimSpace(first.Artifacts["svg"]), []byte("<svg")) {
		t.Errorf("svg artifact = %.40q", first.Artifacts["svg"])
	}
	var out struct {
		Fingerprint string `json:"fingerprint"`
		Title       string `json:"title"`
		Style       string `json:"style"`
	}
	if err := json.Unmarshal(first.Artifacts["json"], &out); err != nil {
		t.Fatalf("json artifact: %v", err)
	}
	if out.Fingerprint != first.Fingerprint || out.Title != "Test" || out.Style != DefaultStyle {
		t.Errorf("json artifact header = %+v", out)
	}
	if cc.sets != 2 {
		t.Errorf("cache sets = %d, want 2", cc.sets)
	}

	// A fresh document with the same content is served from the cache.
	second, err := runner.Execute(ctx, testDoc(t), opts)
	if err != nil {
		t.Fatal(err)
	}
	if !second.CacheInfo.RenderHit || second.Layout != nil {
		t.Errorf("second run: hit = %v, layout = %v", second.CacheInfo.RenderHit, second.Layout != nil)
	}
	if !bytes.Equal(first.Artifacts["svg"], second.Artifacts["svg"]) {
		t.Error("cached svg differs")
	}

	// Another style misses.
	opts.Style = "dark"
	opts.Formats = []string{"svg"}
	third, err := runner.Execute(ctx, testDoc(t), opts)
	if err != nil {
		t.Fatal(err)
	}
	if third.CacheInfo.RenderHit {
		t.Error("dark style should not hit the simple style entry")
	}
}

func TestRunnerRefresh(t *testing.T) {
	ctx := context.Background()
	runner, cc := newTestRunner(t)
	opts := Options{Measurer: MeasurerFixed}

	if _, err := runner.Execute(ctx, testDoc(t), opts); err != nil {
		t.Fatal(err)
	}
	opts.Refresh = true
	res, err := runner.Execute(ctx, testDoc(t), opts)
	if err != nil {
		t.Fatal(err)
	}
	if res.CacheInfo.RenderHit || cc.hits != 0 {
		t.Errorf("refresh: hit = %v, cache hits = %d", res.CacheInfo.RenderHit, cc.hits)
	}
}

func TestRunnerLayoutJSON(t *testing.T) {
	ctx := context.Background()
	runner, _ := newTestRunner(t)
	opts := Options{Measurer: MeasurerFixed}

	data, hit, err := runner.LayoutJSON(ctx, testDoc(t), opts)
	if err != nil || hit {
		t.Fatalf("LayoutJSON() hit = %v, err = %v", hit, err)
	}
	var out struct {
		Style string `json:"style"`
		Rows  []any  `json:"rows"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatal(err)
	}
	if out.Style != "" || len(out.Rows) != 1 {
		t.Errorf("layout JSON style = %q, rows = %d", out.Style, len(out.Rows))
	}
	again, hit, err := runner.LayoutJSON(ctx, testDoc(t), opts)
	if err != nil || !hit || !bytes.Equal(data, again) {
		t.Errorf("second LayoutJSON() hit = %v, err = %v", hit, err)
	}
}

func TestRunnerSequence(t *testing.T) {
	ctx := context.Background()
	runner, _ := newTestRunner(t)

	plan, data, hit, err := runner.Sequence(ctx, testDoc(t))
	if err != nil || hit {
		t.Fatalf("Sequence() hit = %v, err = %v", hit, err)
	}
	if plan == nil || len(plan.Steps) != 4 {
		t.Fatalf("plan = %+v", plan)
	}

	plan, cached, hit, err := runner.Sequence(ctx, testDoc(t))
	if err != nil || !hit || plan != nil {
		t.Fatalf("second Sequence() hit = %v, plan = %v, err = %v", hit, plan, err)
	}
	if !bytes.Equal(data, cached) {
		t.Error("cached plan differs")
	}
}

func TestOpenCache(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	c, err := OpenCache(ctx, Options{CacheBackend: CacheFile}, dir)
	if err != nil {
		t.Fatalf("OpenCache(file) error: %v", err)
	}
	if err := c.Set(ctx, "artifact:x", []byte("x"), 0); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := c.Get(ctx, "artifact:x"); !ok {
		t.Error("file cache lost entry")
	}

	if _, err := OpenCache(ctx, Options{CacheBackend: "tape"}, dir); err == nil {
		t.Error("OpenCache(tape) should fail")
	}
	if _, err := OpenCache(ctx, Options{CacheBackend: CacheRedis, RedisAddr: "127.0.0.1:1"}, dir); err == nil {
		t.Error("OpenCache(redis) on a closed port should fail")
	}
}

func TestLoadExampleConfig(t *testing.T) {
	opts, err := LoadOptions(filepath.Join("..", "..", "examples", "staffline.toml"))
	if err != nil {
		t.Fatalf("LoadOptions() error: %v", err)
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("example config does not validate: %v", err)
	}
	if opts.Demo != "coda" || opts.Style != "dark" {
		t.Errorf("opts = %+v", opts)
	}
}
