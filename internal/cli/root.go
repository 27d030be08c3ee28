// Package cli implements the smart-park command line.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/smart-park/backend/internal/config"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Config  *config.Config
	Version string

	DataDir  string
	SeedFile string
	Debug    bool
	Format   string // "json" | "text"
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command. Environment settings are
// loaded before any subcommand runs; flags given on the command line
// take precedence.
func NewRootCommand(version string) *cobra.Command {
	opts := &RootOptions{Version: version}

	cmd := &cobra.Command{
		Use:           "smart-park",
		Short:         "Smart Park - parking spot management",
		Long:          "Manage parking spots, registered vehicles and the occupancy audit log.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			flags := cmd.Flags()
			if flags.Changed("data") {
				cfg.DataDir = opts.DataDir
			}
			if flags.Changed("seed") {
				cfg.SeedFile = opts.SeedFile
			}
			if flags.Changed("debug") {
				cfg.Debug = opts.Debug
			}
			opts.Config = cfg
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().StringVar(&opts.DataDir, "data", "./data", "data directory for the SQLite store (env PARKING_DATA_DIR)")
	cmd.PersistentFlags().StringVar(&opts.SeedFile, "seed", "", "YAML layout used to populate a new store (env PARKING_SEED_FILE)")
	cmd.PersistentFlags().BoolVar(&opts.Debug, "debug", false, "debug logging (env PARKING_DEBUG)")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewHealthCheckCommand(opts))
	cmd.AddCommand(NewOccupyCommand(opts))
	cmd.AddCommand(NewFreeCommand(opts))
	cmd.AddCommand(NewDeleteSpotsCommand(opts))
	cmd.AddCommand(NewSpotsCommand(opts))
	cmd.AddCommand(NewVehicleCommand(opts))
	cmd.AddCommand(NewLogsCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
