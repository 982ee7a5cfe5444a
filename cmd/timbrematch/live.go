package main

import (
	"fmt"
	"os"

	"github.com/RyanBlaney/timbre-match/engine"
	"github.com/RyanBlaney/timbre-match/host"
	"github.com/RyanBlaney/timbre-match/logging"
	"github.com/RyanBlaney/timbre-match/ui"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

func newLiveCmd(opts *rootOptions) *cobra.Command {
	var (
		seconds    float64
		sampleRate float64
		channels   int
		frames     int
		logFile    string
	)

	cmd := &cobra.Command{
		Use:   "live",
		Short: "Analyse the default input device interactively",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("seconds") {
				seconds = opts.cfg.DefaultCaptureSeconds
			}

			// the alt screen owns the terminal, so logs go to a file or nowhere
			if logFile != "" {
				f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
				if err != nil {
					return fmt.Errorf("could not open log file: %w", err)
				}
				defer f.Close()
				l := logging.NewWriterLogger(f)
				l.SetLevel(logging.ParseLevel(opts.logLevel))
				logging.SetGlobalLogger(l)
			} else {
				logging.SetGlobalLogger(&logging.NoOpLogger{})
			}

			e := engine.New(opts.cfg)
			if err := e.Prepare(sampleRate, channels); err != nil {
				return err
			}

			input, err := host.NewLiveInput(e, sampleRate, channels, frames)
			if err != nil {
				return err
			}
			if err := input.Start(); err != nil {
				return err
			}
			defer func() {
				if err := input.Stop(); err != nil {
					logging.Error(err, "Failed to stop live input")
				}
			}()

			p := tea.NewProgram(ui.NewModel(e, seconds), tea.WithAltScreen())
			_, err = p.Run()
			return err
		},
	}

	flags := cmd.Flags()
	flags.Float64Var(&seconds, "seconds", 2.0, "capture length in seconds")
	flags.Float64Var(&sampleRate, "rate", 48000, "input sample rate")
	flags.IntVar(&channels, "channels", 2, "input channels (1 or 2)")
	flags.IntVar(&frames, "frames", 512, "frames per callback buffer")
	flags.StringVar(&logFile, "log-file", "", "append logs to this file while the monitor runs")
	return cmd
}
