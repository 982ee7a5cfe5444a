package main

import (
	"fmt"

	"github.com/RyanBlaney/timbre-match/engine"
	"github.com/RyanBlaney/timbre-match/host"
	"github.com/RyanBlaney/timbre-match/logging"
	"github.com/RyanBlaney/timbre-match/timbre"
	"github.com/RyanBlaney/timbre-match/transcode"
	"github.com/spf13/cobra"
)

func newCompareCmd(opts *rootOptions) *cobra.Command {
	var targetPath string
	var blockSize int

	cmd := &cobra.Command{
		Use:   "compare --target <ref.wav> <input.wav>",
		Short: "Capture a reference file, play an input file, and suggest changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dec := transcode.NewDecoder(nil)
			ref, err := dec.DecodeFile(targetPath)
			if err != nil {
				return err
			}
			input, err := dec.DecodeFile(args[0])
			if err != nil {
				return err
			}
			if ref.SampleRate != input.SampleRate {
				return fmt.Errorf("sample rates differ: %s is %d Hz, %s is %d Hz",
					targetPath, ref.SampleRate, args[0], input.SampleRate)
			}

			e := engine.New(opts.cfg)
			if _, err := analyzeData(cmd.Context(), e, ref, blockSize); err != nil {
				return err
			}
			logging.Info("Target captured", logging.Fields{"file": targetPath})

			// channel count may differ; Prepare would drop the target, so
			// pad or trim the input to the reference layout instead
			input = matchChannels(input, ref.NumChans)
			if err := host.Play(cmd.Context(), e, input, host.PlayOptions{BlockSizes: []int{blockSize}}); err != nil {
				return err
			}

			r := e.PerformCompare()
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, r.Text)
			for _, d := range timbre.Dimensions() {
				fmt.Fprintf(out, "  %-8s %+.3f\n", d.Label(), r.Diff[d])
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&targetPath, "target", "", "reference WAV file")
	cmd.Flags().IntVar(&blockSize, "block", 512, "frames per processing block")
	_ = cmd.MarkFlagRequired("target")
	return cmd
}

// matchChannels reshapes data to n channels, repeating the last channel
func matchChannels(data *transcode.AudioData, n int) *transcode.AudioData {
	if data.NumChans == n || data.NumChans == 0 {
		return data
	}
	out := *data
	out.Channels = make([][]float32, n)
	for ch := range n {
		out.Channels[ch] = data.Channels[min(ch, data.NumChans-1)]
	}
	out.NumChans = n
	return &out
}
