package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"github.com/spf13/cobra"

	"github.com/matzehuels/staffline/internal/demos"
	"github.com/matzehuels/staffline/pkg/audio/midi"
	"github.com/matzehuels/staffline/pkg/buildinfo"
	"github.com/matzehuels/staffline/pkg/pipeline"
	"github.com/matzehuels/staffline/pkg/player"
)

var contentTypes = map[string]string{
	pipeline.FormatSVG:  "image/svg+xml",
	pipeline.FormatPNG:  "image/png",
	pipeline.FormatPDF:  "application/pdf",
	pipeline.FormatJSON: "application/json",
}

// serveCommand serves the demos over HTTP.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		origins []string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve rendered demos, layouts and sequences over HTTP",
		Long: `Serve the built-in demos over HTTP:

  GET /version
  GET /demos
  GET /demos/{name}
  GET /demos/{name}/score.{svg,png,pdf,json}?style=dark&width=800
  GET /demos/{name}/layout.json
  GET /demos/{name}/sequence.json
  GET /demos/{name}/play.mid`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.options(pipeline.Options{})
			if err != nil {
				return err
			}
			runner, err := c.newRunner(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer runner.Close()
			return c.runServer(cmd.Context(), addr, newRouter(runner, opts, origins))
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().StringSliceVar(&origins, "cors-origin", []string{"*"}, "allowed CORS origins")

	return cmd
}

func (c *CLI) runServer(ctx context.Context, addr string, h http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	c.Logger.Info("listening", "addr", addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		c.Logger.Info("shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// server holds the HTTP handlers. Every request builds a fresh document;
// the runner's cache makes repeated requests cheap.
type server struct {
	runner *pipeline.Runner
	opts   pipeline.Options
	logger *log.Logger
}

func newRouter(runner *pipeline.Runner, opts pipeline.Options, origins []string) http.Handler {
	s := &server{runner: runner, opts: opts, logger: runner.Logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/version", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, buildinfo.Get())
	})
	r.Get("/demos", s.listDemos)
	r.Route("/demos/{name}", func(r chi.Router) {
		r.Get("/", s.demoInfo)
		r.Get("/score.{format}", s.score)
		r.Get("/layout.json", s.layout)
		r.Get("/sequence.json", s.sequence)
		r.Get("/play.mid", s.midi)
	})

	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodHead, http.MethodOptions},
	}).Handler(r)
}

func (s *server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"id", middleware.GetReqID(r.Context()))
	})
}

type demoSummary struct {
	Name     string `json:"name"`
	Title    string `json:"title"`
	Measures int    `json:"measures,omitempty"`
}

func (s *server) listDemos(w http.ResponseWriter, r *http.Request) {
	out := make([]demoSummary, 0, len(demos.Names()))
	for _, name := range demos.Names() {
		out = append(out, demoSummary{Name: name, Title: demos.Title(name)})
	}
	writeJSON(w, out)
}

func (s *server) demoInfo(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	d, err := demos.Load(name)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	writeJSON(w, demoSummary{Name: name, Title: demos.Title(name), Measures: len(d.Measures())})
}

func (s *server) score(w http.ResponseWriter, r *http.Request) {
	name, format := chi.URLParam(r, "name"), chi.URLParam(r, "format")
	d, err := demos.Load(name)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	opts, err := s.requestOptions(r, format)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	result, err := s.runner.Execute(r.Context(), d, opts)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", contentTypes[format])
	w.Header().Set("ETag", strconv.Quote(result.Fingerprint[:16]))
	w.Header().Set("X-Cache", cacheHeader(result.CacheInfo.RenderHit))
	_, _ = w.Write(result.Artifacts[format])
}

func (s *server) layout(w http.ResponseWriter, r *http.Request) {
	d, err := demos.Load(chi.URLParam(r, "name"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	opts, err := s.requestOptions(r, pipeline.FormatJSON)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	data, hit, err := s.runner.LayoutJSON(r.Context(), d, opts)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Cache", cacheHeader(hit))
	_, _ = w.Write(data)
}

func (s *server) sequence(w http.ResponseWriter, r *http.Request) {
	d, err := demos.Load(chi.URLParam(r, "name"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	_, data, hit, err := s.runner.Sequence(r.Context(), d)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Cache", cacheHeader(hit))
	_, _ = w.Write(data)
}

func (s *server) midi(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	d, err := demos.Load(name)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	rec := midi.NewRecorder(midi.WithTrackName(s.opts.Instrument))
	if _, err := player.Render(r.Context(), d, rec,
		player.WithLogger(s.logger), player.WithVolume(s.opts.Volume)); err != nil {
		s.fail(w, r, err)
		return
	}
	data, err := rec.Bytes()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "audio/midi")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name+".mid"))
	_, _ = w.Write(data)
}

// requestOptions applies query parameters over the server defaults.
func (s *server) requestOptions(r *http.Request, format string) (pipeline.Options, error) {
	opts := s.opts
	opts.Formats = []string{format}
	q := r.URL.Query()
	if v := q.Get("style"); v != "" {
		opts.Style = v
	}
	if v := q.Get("width"); v != "" {
		w, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return opts, fmt.Errorf("invalid width %q", v)
		}
		opts.Width = w
	}
	if v := q.Get("header"); v != "" {
		opts.NoHeader = !parseBool(v)
	}
	if v := q.Get("interactive"); v != "" {
		opts.Interactive = parseBool(v)
	}
	if err := opts.ValidateForRender(); err != nil {
		return opts, err
	}
	return opts, nil
}

func (s *server) fail(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Error("request failed", "path", r.URL.Path, "error", err)
	http.Error(w, err.Error(), http.StatusInternalServerError)
}

func parseBool(v string) bool {
	b, err := strconv.ParseBool(strings.ToLower(v))
	return err == nil && b
}

func cacheHeader(hit bool) string {
	if hit {
		return "HIT"
	}
	return "MISS"
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
