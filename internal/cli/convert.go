package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mkoeppen/svgtrace/pkg/convert"
	"github.com/mkoeppen/svgtrace/pkg/source"
	"github.com/mkoeppen/svgtrace/pkg/trace"
)

// convertOpts holds the command-line flags for the convert command.
// Setting flags are kept as raw strings so they run through exactly the same
// parsing and validation as API overrides.
type convertOpts struct {
	output    string
	preset    string
	engine    string
	optimize  bool
	overrides map[string]string
}

// newConvertCmd creates the convert command for tracing a single image.
// Every conversion setting has a flag; unset flags take their value from the
// chosen preset.
func newConvertCmd() *cobra.Command {
	opts := convertOpts{overrides: make(map[string]string)}
	raw := make(map[string]*string, len(trace.SettingFields))

	cmd := &cobra.Command{
		Use:   "convert <image>",
		Short: "Trace a raster image into an SVG file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for field, val := range raw {
				if *val != "" {
					opts.overrides[field] = *val
				}
			}
			return runConvert(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output SVG file (default: input name with .svg)")
	cmd.Flags().StringVarP(&opts.preset, "preset", "p", "default", "preset profile: "+strings.Join(trace.PresetNames(), ", "))
	cmd.Flags().StringVar(&opts.engine, "engine", "", "path to the vtracer binary (default: vtracer on PATH)")
	cmd.Flags().BoolVar(&opts.optimize, "optimize", false, "minify the output SVG")

	defaults := trace.LookupPreset(trace.DefaultPreset)
	help := map[string]string{
		"colormode":        fmt.Sprintf("color mode: color, binary (preset default: %s)", defaults.ColorMode),
		"hierarchical":     fmt.Sprintf("shape hierarchy: stacked, cutout (preset default: %s)", defaults.Hierarchical),
		"mode":             fmt.Sprintf("curve fitting mode: spline, polygon, none (preset default: %s)", defaults.Mode),
		"filter_speckle":   fmt.Sprintf("discard speckles smaller than N pixels (preset default: %d)", defaults.FilterSpeckle),
		"color_precision":  fmt.Sprintf("color precision in bits, 1-8 (preset default: %d)", defaults.ColorPrecision),
		"layer_difference": fmt.Sprintf("color difference between gradient layers (preset default: %d)", defaults.LayerDifference),
		"corner_threshold": fmt.Sprintf("corner detection angle in degrees (preset default: %d)", defaults.CornerThreshold),
		"length_threshold": fmt.Sprintf("minimum segment length (preset default: %g)", defaults.LengthThreshold),
		"max_iterations":   fmt.Sprintf("curve fitting iteration cap (preset default: %d)", defaults.MaxIterations),
		"splice_threshold": fmt.Sprintf("spline splicing angle in degrees (preset default: %d)", defaults.SpliceThreshold),
		"path_precision":   fmt.Sprintf("decimal places in path coordinates (preset default: %d)", defaults.PathPrecision),
	}
	for _, field := range trace.SettingFields {
		var v string
		raw[field] = &v
		cmd.Flags().StringVar(&v, strings.ReplaceAll(field, "_", "-"), "", help[field])
	}

	return cmd
}

// runConvert traces a single input file and writes the SVG next to it or to
// the -o path.
func runConvert(ctx context.Context, input string, opts *convertOpts) error {
	logger := loggerFromContext(ctx)

	settings, err := trace.Resolve(opts.preset, opts.overrides)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("reading %s: %w", input, err)
	}

	acquirer, err := source.NewAcquirer("", source.WithLogger(logger))
	if err != nil {
		return err
	}
	converter, err := convert.New(trace.NewExecEngine(opts.engine), acquirer, "", convert.WithLogger(logger))
	if err != nil {
		return err
	}

	prog := newProgress(logger)
	spinner := newSpinner(ctx, fmt.Sprintf("Tracing %s", filepath.Base(input)))
	spinner.Start()

	result := converter.Convert(ctx, source.Upload{
		Filename: filepath.Base(input),
		Data:     data,
	}, settings, convert.Options{Optimize: opts.optimize})

	spinner.Stop()
	if !result.Success {
		printError("%s", result.Error)
		return result.Err()
	}

	output := opts.output
	if output == "" {
		output = strings.TrimSuffix(input, filepath.Ext(input)) + ".svg"
	}
	if err := os.WriteFile(output, []byte(result.SVGContent), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", output, err)
	}

	prog.done(fmt.Sprintf("Traced %s", filepath.Base(input)))
	printSuccess("%s %s %s %s",
		StyleValue.Render(input),
		StyleDim.Render(iconArrow),
		StyleHighlight.Render(output),
		StyleDim.Render(fmt.Sprintf("(%s → %s)", humanSize(result.InputSize), humanSize(result.OutputSize))))
	return nil
}

// humanSize formats a byte count as KB/MB for terminal output.
func humanSize(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}
