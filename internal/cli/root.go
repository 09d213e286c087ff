package cli

import (
	"context"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/mkoeppen/svgtrace/pkg/buildinfo"
)

// Execute runs the svgtrace CLI and returns an error if any command fails.
// This is the main entry point for the CLI application.
//
// Logging:
//   - Default: info level (logs to stderr)
//   - With --verbose (-v): debug level
//
// The logger is attached to the context and accessible to all commands via
// loggerFromContext.
func Execute(ctx context.Context) error {
	var verbose bool

	root := &cobra.Command{
		Use:          "svgtrace",
		Short:        "svgtrace converts raster images to SVG vector graphics",
		Long:         `svgtrace traces raster images (PNG, JPG, BMP, GIF, WebP, TIFF) into scalable vector graphics through the vtracer engine, with preset profiles for common image types and an HTTP service for browser use.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := charmlog.InfoLevel
			if verbose {
				level = charmlog.DebugLevel
			}
			ctx := withLogger(cmd.Context(), newLogger(os.Stderr, level))
			cmd.SetContext(ctx)
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(newConvertCmd())
	root.AddCommand(newServeCmd())
	root.AddCommand(newPresetsCmd())
	root.AddCommand(newCompletionCmd())

	return root.ExecuteContext(ctx)
}
