package svgutil

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/svg"
)

// svgMediaType is the media type the minifier dispatches on.
const svgMediaType = "image/svg+xml"

// minifier is the slice of minify.M the Optimizer needs. Tests substitute a
// failing implementation to exercise the fallback path.
type minifier interface {
	String(mediatype, s string) (string, error)
}

// Optimizer shrinks SVG markup through the external minifier, best-effort.
//
// Optimization is never allowed to turn a successful conversion into a
// failed one: any minifier error is logged and the original markup is
// returned unchanged.
type Optimizer struct {
	m      minifier
	logger *log.Logger
}

// NewOptimizer creates an optimizer with a fixed minifier configuration:
// comments stripped, no indentation, viewBox and other semantic attributes
// preserved.
func NewOptimizer(logger *log.Logger) *Optimizer {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	m := minify.New()
	m.AddFunc(svgMediaType, svg.Minify)
	return &Optimizer{m: m, logger: logger}
}

// Optimize returns the minified markup, or the input unchanged when the
// minifier fails or would grow the document.
func (o *Optimizer) Optimize(in []byte) []byte {
	out, err := o.m.String(svgMediaType, string(in))
	if err != nil {
		o.logger.Warn("svg optimization failed, keeping original", "err", err)
		return in
	}
	if len(out) == 0 || len(out) >= len(in) {
		return in
	}
	return []byte(out)
}
