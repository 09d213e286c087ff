// Package convert orchestrates the conversion pipeline.
//
// For each source image the pipeline runs acquire → trace → normalize →
// optimize, with every stage error converted into a failure Result at the
// point closest to the faulty operation. One item's failure never aborts a
// batch, and each item's temporary files are released before the next item
// starts, on success and failure alike.
package convert

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/mkoeppen/svgtrace/pkg/cache"
	"github.com/mkoeppen/svgtrace/pkg/errors"
	"github.com/mkoeppen/svgtrace/pkg/observability"
	"github.com/mkoeppen/svgtrace/pkg/source"
	"github.com/mkoeppen/svgtrace/pkg/svgutil"
	"github.com/mkoeppen/svgtrace/pkg/trace"
)

// DefaultCacheTTL is how long converted SVGs stay in the result cache.
const DefaultCacheTTL = 24 * time.Hour

// Options controls a single conversion call.
type Options struct {
	// Optimize passes the SVG through the external minifier.
	Optimize bool

	// KeepOutput retains the output SVG on disk for later download.
	// When false the output file is removed as soon as it has been read
	// back (preview semantics).
	KeepOutput bool
}

// Converter runs the conversion pipeline. It is stateless apart from its
// collaborators and safe for concurrent use: every item operates on its own
// uniquely named temporary files.
type Converter struct {
	engine    trace.Engine
	acquirer  *source.Acquirer
	optimizer *svgutil.Optimizer
	cache     cache.Cache
	outputDir string
	cacheTTL  time.Duration
	logger    *log.Logger
}

// Option configures a Converter.
type Option func(*Converter)

// WithCache enables the content-addressed result cache.
func WithCache(c cache.Cache) Option {
	return func(cv *Converter) { cv.cache = c }
}

// WithCacheTTL overrides the result cache TTL.
func WithCacheTTL(ttl time.Duration) Option {
	return func(cv *Converter) { cv.cacheTTL = ttl }
}

// WithLogger sets the converter's logger.
func WithLogger(l *log.Logger) Option {
	return func(cv *Converter) { cv.logger = l }
}

// WithOptimizer replaces the SVG optimizer.
func WithOptimizer(o *svgutil.Optimizer) Option {
	return func(cv *Converter) { cv.optimizer = o }
}

// New creates a Converter writing output SVGs under outputDir.
// The directory is created if needed; an empty outputDir selects a svgtrace
// subdirectory of the system temp dir. Caching defaults to disabled.
func New(engine trace.Engine, acquirer *source.Acquirer, outputDir string, opts ...Option) (*Converter, error) {
	if outputDir == "" {
		outputDir = filepath.Join(os.TempDir(), "svgtrace-out")
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, err
	}
	cv := &Converter{
		engine:    engine,
		acquirer:  acquirer,
		cache:     cache.NewNullCache(),
		outputDir: outputDir,
		cacheTTL:  DefaultCacheTTL,
		logger:    log.NewWithOptions(io.Discard, log.Options{}),
	}
	for _, opt := range opts {
		opt(cv)
	}
	if cv.optimizer == nil {
		cv.optimizer = svgutil.NewOptimizer(cv.logger)
	}
	return cv, nil
}

// OutputDir returns the directory where retained output SVGs live.
func (c *Converter) OutputDir() string {
	return c.outputDir
}

// ConvertBatch converts every source independently and returns one Result
// per input, preserving submission order.
func (c *Converter) ConvertBatch(ctx context.Context, sources []source.Source, s trace.Settings, opts Options) []Result {
	results := make([]Result, 0, len(sources))
	for _, src := range sources {
		results = append(results, c.Convert(ctx, src, s, opts))
	}
	return results
}

// Convert runs the full pipeline for one source image.
// All errors are folded into the returned Result; the input's temporary file
// is removed before Convert returns regardless of the outcome.
func (c *Converter) Convert(ctx context.Context, src source.Source, s trace.Settings, opts Options) Result {
	img, err := c.acquirer.Acquire(ctx, src)
	if err != nil {
		observability.Conversion().OnAcquire(ctx, channelOf(src), 0, err)
		return failure(source.SanitizeFilename(src.Describe()), err)
	}
	observability.Conversion().OnAcquire(ctx, channelOf(src), img.Size, nil)
	defer img.Cleanup()

	outputName := fmt.Sprintf("%s_%s.svg", img.ID, img.Stem())
	outputPath := filepath.Join(c.outputDir, outputName)
	if !opts.KeepOutput {
		defer os.Remove(outputPath)
	}

	key := cache.Key("svg", img.SHA256, s, opts.Optimize)
	if data, hit, err := c.cache.Get(ctx, key); err == nil && hit {
		observability.Cache().OnCacheHit(ctx, "svg")
		c.logger.Debug("result cache hit", "name", img.Name)
		if opts.KeepOutput {
			if err := os.WriteFile(outputPath, data, 0644); err != nil {
				return failure(img.Name, errors.Wrap(errors.ErrCodeInternal, err, "writing cached output"))
			}
		}
		return c.success(img, outputName, data, opts, true)
	}

	observability.Cache().OnCacheMiss(ctx, "svg")

	start := time.Now()
	observability.Conversion().OnTraceStart(ctx, img.Name)
	err = c.engine.Trace(ctx, img.Path, outputPath, s)
	observability.Conversion().OnTraceComplete(ctx, img.Name, time.Since(start), err)
	if err != nil {
		return failure(img.Name, err)
	}
	c.logger.Debug("traced image", "name", img.Name, "duration", time.Since(start).Round(time.Millisecond))

	data, err := os.ReadFile(outputPath)
	if err != nil {
		return failure(img.Name, errors.Wrap(errors.ErrCodeConversionFailed, err, "reading engine output"))
	}

	data = svgutil.EnsureViewBox(data)
	if opts.Optimize {
		data = c.optimizer.Optimize(data)
	}

	// Persist the post-processed markup so a later download serves exactly
	// what the response contained.
	if opts.KeepOutput {
		if err := os.WriteFile(outputPath, data, 0644); err != nil {
			return failure(img.Name, errors.Wrap(errors.ErrCodeInternal, err, "writing output"))
		}
	}

	if err := c.cache.Set(ctx, key, data, c.cacheTTL); err != nil {
		c.logger.Warn("result cache write failed", "err", err)
	} else {
		observability.Cache().OnCacheSet(ctx, "svg", len(data))
	}

	return c.success(img, outputName, data, opts, false)
}

// channelOf names the acquisition channel for instrumentation.
func channelOf(src source.Source) string {
	switch src.(type) {
	case source.Upload:
		return "upload"
	case source.RemoteURL:
		return "url"
	case source.DataURI:
		return "data_uri"
	default:
		return "unknown"
	}
}

func (c *Converter) success(img *source.Image, outputName string, data []byte, opts Options, cached bool) Result {
	r := Result{
		Success:      true,
		OriginalName: img.Name,
		SVGContent:   string(data),
		InputSize:    img.Size,
		OutputSize:   int64(len(data)),
		Cached:       cached,
	}
	if opts.KeepOutput {
		r.SVGFilename = outputName
	}
	c.logger.Info("converted image",
		"name", img.Name,
		"input_bytes", r.InputSize,
		"output_bytes", r.OutputSize,
		"cached", cached)
	return r
}
