package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mkoeppen/svgtrace/pkg/trace"
)

// newPresetsCmd creates the presets command listing the built-in catalog.
func newPresetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "Show the built-in conversion presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			printPresets()
			return nil
		},
	}
}

func printPresets() {
	for _, name := range trace.PresetNames() {
		s := trace.LookupPreset(name)
		fmt.Fprintln(os.Stdout, StyleTitle.Render(name))
		printSetting("colormode", string(s.ColorMode))
		printSetting("hierarchical", string(s.Hierarchical))
		printSetting("mode", string(s.Mode))
		printSetting("filter_speckle", fmt.Sprint(s.FilterSpeckle))
		printSetting("color_precision", fmt.Sprint(s.ColorPrecision))
		printSetting("layer_difference", fmt.Sprint(s.LayerDifference))
		printSetting("corner_threshold", fmt.Sprint(s.CornerThreshold))
		printSetting("length_threshold", fmt.Sprint(s.LengthThreshold))
		printSetting("max_iterations", fmt.Sprint(s.MaxIterations))
		printSetting("splice_threshold", fmt.Sprint(s.SpliceThreshold))
		printSetting("path_precision", fmt.Sprint(s.PathPrecision))
		fmt.Fprintln(os.Stdout)
	}
}

func printSetting(label, value string) {
	fmt.Fprintf(os.Stdout, "  %s %s\n",
		StyleLabel.Render(fmt.Sprintf("%-17s", label)),
		StyleValue.Render(value))
}
