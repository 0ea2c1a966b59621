// Package cli implements the staffline command-line interface.
//
// # Commands
//
//   - render: lay out a score and write SVG, PNG, PDF or JSON
//   - sequence: list the resolved playback steps
//   - play: play a score in the terminal or export it as MIDI
//   - navgraph: draw the playback path through the measures
//   - serve: serve demos, layouts and sequences over HTTP
//   - demos, cache, completion
//
// All commands take --verbose (-v) for debug logging and --config for a
// TOML options file.
package cli

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a logger with "HH:MM:SS.ms" timestamps.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress logs completion of an operation with its elapsed time.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg with the elapsed time, e.g. "Rendered ode (12ms)".
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}
