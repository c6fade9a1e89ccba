// Package report provides the run reporter: a zerolog-backed logger that
// is threaded through the resolution run via context, accumulates non-fatal
// warnings, and can escalate them to a fatal error in strict mode.
package report

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/openlsm/nlconf/pkg/engine"
)

// Options configures a reporter.
type Options struct {
	// Verbose lowers the log level to debug.
	Verbose bool

	// Silent raises the log level so only errors are printed. Warnings
	// are still accumulated.
	Silent bool

	// Strict escalates accumulated warnings to a fatal error at the end
	// of the run.
	Strict bool

	// Out is the log destination. Defaults to stderr.
	Out io.Writer
}

// Reporter carries the run's logger, run ID, and accumulated warnings.
// A resolution run is single-threaded, so no locking is needed.
type Reporter struct {
	zlog     zerolog.Logger
	runID    string
	strict   bool
	warnings []string
}

// reporterContextKey is the context key for reporter instances.
type reporterContextKey struct{}

// New creates a reporter.
func New(opts Options) *Reporter {
	out := opts.Out
	if out == nil {
		out = os.Stderr
	}
	writer := zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}

	level := zerolog.InfoLevel
	if opts.Verbose {
		level = zerolog.DebugLevel
	}
	if opts.Silent {
		level = zerolog.ErrorLevel
	}

	runID := uuid.NewString()
	zlog := zerolog.New(writer).Level(level).With().
		Timestamp().
		Str("run_id", runID).
		Logger()

	return &Reporter{zlog: zlog, runID: runID, strict: opts.Strict}
}

// WithContext adds the reporter to the context.
func (r *Reporter) WithContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, reporterContextKey{}, r)
}

// FromContext retrieves the reporter from the context. If none is found it
// returns a quiet reporter so library code never has to nil-check.
func FromContext(ctx context.Context) *Reporter {
	if r, ok := ctx.Value(reporterContextKey{}).(*Reporter); ok {
		return r
	}
	return &Reporter{zlog: zerolog.Nop(), runID: "detached"}
}

// RunID returns the identifier of this invocation.
func (r *Reporter) RunID() string {
	return r.runID
}

// Log returns the underlying logger for structured events.
func (r *Reporter) Log() *zerolog.Logger {
	return &r.zlog
}

// Component returns a child logger tagged with a component name.
func (r *Reporter) Component(name string) zerolog.Logger {
	return r.zlog.With().Str("component", name).Logger()
}

// Warnf records a non-fatal warning. Warnings never stop resolution unless
// strict mode escalates them afterwards.
func (r *Reporter) Warnf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	r.warnings = append(r.warnings, msg)
	r.zlog.Warn().Msg(msg)
}

// Warnings returns the warnings accumulated so far.
func (r *Reporter) Warnings() []string {
	out := make([]string, len(r.warnings))
	copy(out, r.warnings)
	return out
}

// Strict reports whether strict mode is enabled.
func (r *Reporter) Strict() bool {
	return r.strict
}

// CheckStrict returns a fatal error if strict mode is on and any warning
// was accumulated. Called once, after validation has passed.
func (r *Reporter) CheckStrict() error {
	if !r.strict || len(r.warnings) == 0 {
		return nil
	}
	return engine.NewValidationError(
		fmt.Sprintf("strict mode: %d warning(s) escalated to an error; first: %s",
			len(r.warnings), r.warnings[0]), nil)
}
