package trace

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/mkoeppen/svgtrace/pkg/errors"
)

// DefaultEngineBinary is the vectorization engine executable looked up on
// PATH when no explicit path is configured.
const DefaultEngineBinary = "vtracer"

// Engine is the boundary to the external vectorization engine.
//
// Trace reads the raster image at inputPath and writes an SVG document to
// outputPath using the given settings. A single trace is deterministic, so
// implementations must not retry on failure.
type Engine interface {
	Trace(ctx context.Context, inputPath, outputPath string, s Settings) error
}

// ExecEngine invokes the vtracer command-line binary.
// Its only responsibilities are marshaling Settings onto the engine's flags
// and surfacing engine failures as CONVERSION_FAILED errors.
type ExecEngine struct {
	// Binary is the engine executable; DefaultEngineBinary if empty.
	Binary string
}

// NewExecEngine creates an engine invoker for the given binary path.
// An empty path selects DefaultEngineBinary from PATH.
func NewExecEngine(binary string) *ExecEngine {
	if binary == "" {
		binary = DefaultEngineBinary
	}
	return &ExecEngine{Binary: binary}
}

// Trace runs the engine binary once. The engine's stderr is captured and
// carried in the returned error on failure.
func (e *ExecEngine) Trace(ctx context.Context, inputPath, outputPath string, s Settings) error {
	cmd := exec.CommandContext(ctx, e.Binary, e.args(inputPath, outputPath, s)...)

	out, err := cmd.CombinedOutput()
	if err != nil {
		if ctx.Err() != nil {
			return errors.Wrap(errors.ErrCodeTimeout, ctx.Err(), "tracing %s", inputPath)
		}
		msg := strings.TrimSpace(string(out))
		if msg == "" {
			msg = err.Error()
		}
		return errors.New(errors.ErrCodeConversionFailed, "%s", msg)
	}

	// The engine signals some failures only through a missing output file.
	if _, err := os.Stat(outputPath); err != nil {
		return errors.New(errors.ErrCodeConversionFailed, "engine produced no output for %s", inputPath)
	}
	return nil
}

// args marshals the eleven settings fields onto the engine's CLI flags.
// The engine names a couple of parameters differently from its library
// bindings: layer_difference is --gradient_step, length_threshold is
// --segment_length, and curve mode "none" is called "pixel".
func (e *ExecEngine) args(inputPath, outputPath string, s Settings) []string {
	mode := string(s.Mode)
	if s.Mode == CurveModeNone {
		mode = "pixel"
	}
	return []string{
		"--input", inputPath,
		"--output", outputPath,
		"--colormode", string(s.ColorMode),
		"--hierarchical", string(s.Hierarchical),
		"--mode", mode,
		"--filter_speckle", strconv.Itoa(s.FilterSpeckle),
		"--color_precision", strconv.Itoa(s.ColorPrecision),
		"--gradient_step", strconv.Itoa(s.LayerDifference),
		"--corner_threshold", strconv.Itoa(s.CornerThreshold),
		"--segment_length", fmt.Sprintf("%g", s.LengthThreshold),
		"--max_iterations", strconv.Itoa(s.MaxIterations),
		"--splice_threshold", strconv.Itoa(s.SpliceThreshold),
		"--path_precision", strconv.Itoa(s.PathPrecision),
	}
}

// Ensure ExecEngine implements Engine.
var _ Engine = (*ExecEngine)(nil)
