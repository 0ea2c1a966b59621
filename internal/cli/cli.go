package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/staffline/internal/demos"
	"github.com/matzehuels/staffline/pkg/buildinfo"
	"github.com/matzehuels/staffline/pkg/pipeline"
	"github.com/matzehuels/staffline/pkg/score"
)

// appName is used for the cache directory and display.
const appName = "staffline"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
	LogError = log.ErrorLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// set by persistent flags
	configPath   string
	cacheBackend string
	redisAddr    string
}

// New creates a CLI that logs to w.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Staffline lays out and plays back music scores",
		Long: `Staffline lays out music scores as SVG, PNG, PDF or JSON geometry and
plays them back honoring repeats, endings, D.C./D.S. jumps, tempo and dynamics.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}
	root.SetVersionTemplate(buildinfo.Template())

	flags := root.PersistentFlags()
	flags.StringVar(&c.configPath, "config", "", "TOML config file with pipeline options")
	flags.StringVar(&c.cacheBackend, "cache", "", "cache backend: file (default), redis, none")
	flags.StringVar(&c.redisAddr, "redis-addr", "", "redis address for --cache redis")

	root.AddCommand(c.renderCommand())
	root.AddCommand(c.sequenceCommand())
	root.AddCommand(c.playCommand())
	root.AddCommand(c.navgraphCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.demosCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// options loads the config file, if any, and overlays flags on it.
func (c *CLI) options(flags pipeline.Options) (pipeline.Options, error) {
	var base pipeline.Options
	if c.configPath != "" {
		loaded, err := pipeline.LoadOptions(c.configPath)
		if err != nil {
			return pipeline.Options{}, err
		}
		base = loaded
		c.Logger.Debug("loaded config", "path", c.configPath)
	}
	flags.CacheBackend = c.cacheBackend
	flags.RedisAddr = c.redisAddr
	flags.Logger = c.Logger
	opts := pipeline.Merge(base, flags)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return pipeline.Options{}, err
	}
	return opts, nil
}

// newRunner creates a pipeline runner on the configured cache backend.
func (c *CLI) newRunner(ctx context.Context, opts pipeline.Options) (*pipeline.Runner, error) {
	dir, err := cacheDir()
	if err != nil && opts.CacheBackend == pipeline.CacheFile {
		c.Logger.Warn("no cache directory, caching disabled", "error", err)
		opts.CacheBackend = pipeline.CacheNone
	}
	cc, err := pipeline.OpenCache(ctx, opts, dir)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	return pipeline.NewRunner(cc, nil, c.Logger), nil
}

// loadDemo resolves the optional demo argument against the configured
// default.
func loadDemo(args []string, opts pipeline.Options) (string, *score.Document, error) {
	name := opts.Demo
	if len(args) > 0 {
		name = args[0]
	}
	d, err := demos.Load(name)
	if err != nil {
		return "", nil, fmt.Errorf("%w (available: %s)", err, strings.Join(demos.Names(), ", "))
	}
	return name, d, nil
}

func completeDemos(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return demos.Names(), cobra.ShellCompDirectiveNoFileComp
}

// cacheDir returns the cache directory using XDG standard (~/.cache/staffline/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, strings.ToLower(f))
		}
	}
	return out
}
