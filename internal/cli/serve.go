package cli

import (
	"github.com/spf13/cobra"

	"github.com/mkoeppen/svgtrace/internal/server"
)

// newServeCmd creates the serve command for running the HTTP service.
func newServeCmd() *cobra.Command {
	var (
		configPath string
		addr       string
		outputDir  string
		engine     string
		redisAddr  string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP conversion service",
		Long:  `Serve the conversion API and web UI. Configuration is read from an optional TOML file; flags override file values.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())

			cfg, err := server.LoadConfig(configPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Addr = addr
			}
			if outputDir != "" {
				cfg.OutputDir = outputDir
			}
			if engine != "" {
				cfg.EngineBinary = engine
			}
			if redisAddr != "" {
				cfg.Redis.Addr = redisAddr
			}

			srv, err := server.New(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			return srv.Run(cmd.Context())
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to TOML config file")
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default :8080)")
	cmd.Flags().StringVar(&outputDir, "output-dir", "", "directory for retained output SVGs")
	cmd.Flags().StringVar(&engine, "engine", "", "path to the vtracer binary")
	cmd.Flags().StringVar(&redisAddr, "redis", "", "redis address for the shared result cache")

	return cmd
}
