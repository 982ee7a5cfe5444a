package main

import (
	"github.com/RyanBlaney/timbre-match/config"
	"github.com/RyanBlaney/timbre-match/logging"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
	logLevel   string
	noColor    bool
	threshold  float64
	cfg        *config.EngineConfig
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "timbrematch",
		Short:         "Capture a reference timbre and get suggestions to match it",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logging.SetLevel(logging.ParseLevel(opts.logLevel))
			if opts.noColor {
				logging.DisableColors()
			}

			cfg := config.DefaultEngineConfig()
			if opts.configPath != "" {
				loaded, err := config.LoadFile(opts.configPath)
				if err != nil {
					return err
				}
				cfg = loaded
			}
			if cmd.Flags().Changed("threshold") {
				cfg.SuggestionThreshold = opts.threshold
				if err := cfg.Validate(); err != nil {
					return err
				}
			}
			opts.cfg = cfg

			logging.Debug("Configuration loaded", logging.Fields{
				"config":     opts.configPath,
				"frame_size": cfg.FrameSize,
				"hop_size":   cfg.HopSize,
			})
			return nil
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "JSON engine config file")
	flags.StringVar(&opts.logLevel, "log-level", "info", "log level: debug|info|warn|error")
	flags.BoolVar(&opts.noColor, "no-color", false, "disable colored log output")
	flags.Float64Var(&opts.threshold, "threshold", 0, "minimum |diff| for a suggestion")

	cmd.AddCommand(
		newAnalyzeCmd(opts),
		newCompareCmd(opts),
		newLiveCmd(opts),
	)
	return cmd
}
