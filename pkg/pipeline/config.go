package pipeline

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// LoadOptions reads pipeline options from a TOML file. Unknown keys are an
// error so that typos do not silently fall back to defaults.
//
//	width = 1200
//	style = "dark"
//	formats = ["svg", "json"]
//	cache_backend = "redis"
//	redis_addr = "localhost:6379"
func LoadOptions(path string) (Options, error) {
	var opts Options
	md, err := toml.DecodeFile(path, &opts)
	if err != nil {
		return Options{}, fmt.Errorf("read config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Options{}, fmt.Errorf("read config %s: unknown key %q", path, undecoded[0].String())
	}
	return opts, nil
}

// Merge overlays the non-zero fields of o onto base and returns the result.
// Command-line flags are merged over a config file this way.
func Merge(base, o Options) Options {
	if o.Width != 0 {
		base.Width = o.Width
	}
	if o.Unit != 0 {
		base.Unit = o.Unit
	}
	if o.NoHeader {
		base.NoHeader = true
	}
	if o.Measurer != "" {
		base.Measurer = o.Measurer
	}
	if len(o.Formats) > 0 {
		base.Formats = o.Formats
	}
	if o.Style != "" {
		base.Style = o.Style
	}
	if o.Interactive {
		base.Interactive = true
	}
	if o.CacheBackend != "" {
		base.CacheBackend = o.CacheBackend
	}
	if o.RedisAddr != "" {
		base.RedisAddr = o.RedisAddr
	}
	if o.Refresh {
		base.Refresh = true
	}
	if o.Volume != 0 {
		base.Volume = o.Volume
	}
	if o.Instrument != "" {
		base.Instrument = o.Instrument
	}
	if o.Demo != "" {
		base.Demo = o.Demo
	}
	if o.Logger != nil {
		base.Logger = o.Logger
	}
	return base
}
