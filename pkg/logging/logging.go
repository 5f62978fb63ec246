// Package logging provides the structured logger shared across the
// screening pipeline. The pipeline logs through a logr.Logger rather than
// the bare "log" package so request-scoped fields (request_id, layer,
// latency_ms) stay attached without string formatting at each call site.
package logging

import (
	"context"
	"os"
	"time"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"
)

type ctxKey struct{}

// New builds the process-wide logger. verbose enables V(1) debug output;
// with it off, only V(0) Info lines and errors are written.
func New(verbose bool) logr.Logger {
	log := funcr.New(func(prefix, args string) {
		if prefix != "" {
			os.Stderr.WriteString(prefix + " " + args + "\n")
			return
		}
		os.Stderr.WriteString(args + "\n")
	}, funcr.Options{LogTimestamp: true, Verbosity: verbosityLevel(verbose)})
	return log
}

func verbosityLevel(verbose bool) int {
	if verbose {
		return 1
	}
	return 0
}

// WithContext attaches a logger to ctx, to be retrieved downstream with
// FromContext.
func WithContext(ctx context.Context, log logr.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, log)
}

// FromContext returns the logger attached to ctx, or a discard logger if
// none was attached — never nil, so call sites never need a nil check.
func FromContext(ctx context.Context) logr.Logger {
	if log, ok := ctx.Value(ctxKey{}).(logr.Logger); ok {
		return log
	}
	return logr.Discard()
}

// ForRequest returns a child logger tagged with the request's identifier
// (request_id).
func ForRequest(log logr.Logger, requestID string) logr.Logger {
	return log.WithValues("request_id", requestID)
}

// LogLatency logs how long a named layer took to run, in milliseconds.
// Call with `defer` right after entering the layer:
//
//	defer logging.LogLatency(log, "normalize", time.Now())
func LogLatency(log logr.Logger, layer string, start time.Time) {
	log.V(1).Info("layer completed", "layer", layer, "latency_ms", float64(time.Since(start).Microseconds())/1000.0)
}
