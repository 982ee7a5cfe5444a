package main

import (
	"context"
	"fmt"
	"io"

	"github.com/RyanBlaney/timbre-match/algorithms/spectral"
	"github.com/RyanBlaney/timbre-match/engine"
	"github.com/RyanBlaney/timbre-match/host"
	"github.com/RyanBlaney/timbre-match/timbre"
	"github.com/RyanBlaney/timbre-match/transcode"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/stat"
)

// fileReport is the analysis of one decoded file
type fileReport struct {
	Target timbre.Profile
	Mean   timbre.Profile
	StdDev timbre.Profile
	Blocks int

	// of the averaged capture spectrum
	CentroidHz float64
	RolloffHz  float64
}

const rolloffThreshold = 0.85

func newAnalyzeCmd(opts *rootOptions) *cobra.Command {
	var blockSize int

	cmd := &cobra.Command{
		Use:   "analyze <file.wav>",
		Short: "Print the averaged timbre profile of a WAV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := transcode.NewDecoder(nil).DecodeFile(args[0])
			if err != nil {
				return err
			}

			e := engine.New(opts.cfg)
			report, err := analyzeData(cmd.Context(), e, data, blockSize)
			if err != nil {
				return err
			}
			printReport(cmd.OutOrStdout(), args[0], report)
			return nil
		},
	}
	cmd.Flags().IntVar(&blockSize, "block", 512, "frames per processing block")
	return cmd
}

// analyzeData captures the whole file as a target while collecting per-block
// statistics of the live profile
func analyzeData(ctx context.Context, e *engine.Engine, data *transcode.AudioData, blockSize int) (*fileReport, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := e.Prepare(float64(data.SampleRate), data.NumChans); err != nil {
		return nil, err
	}
	if err := e.BeginCapture(data.Duration.Seconds()); err != nil {
		return nil, err
	}

	var series [timbre.NumDimensions][]float64
	err := host.Play(ctx, e, data, host.PlayOptions{
		BlockSizes: []int{blockSize},
		OnBlock: func(int) {
			p := e.CurrentProfile()
			for d, v := range p {
				series[d] = append(series[d], v)
			}
		},
	})
	if err != nil {
		return nil, err
	}
	if !e.HasTarget() {
		return nil, fmt.Errorf("capture incomplete: %s", e.StatusText())
	}

	nyquist := float64(data.SampleRate) / 2
	spectrum := e.TargetSpectrumSnapshot()
	report := &fileReport{
		Target:     e.TargetProfile(),
		Blocks:     len(series[0]),
		CentroidHz: spectral.Centroid(spectrum, nyquist),
		RolloffHz:  spectral.Rolloff(spectrum, nyquist, rolloffThreshold),
	}
	for d := range series {
		report.Mean[d], report.StdDev[d] = stat.MeanStdDev(series[d], nil)
	}
	return report, nil
}

func printReport(w io.Writer, name string, r *fileReport) {
	fmt.Fprintf(w, "%s (%d blocks)\n", name, r.Blocks)
	fmt.Fprintf(w, "%-8s %8s %8s %8s\n", "", "profile", "live", "±")
	for _, d := range timbre.Dimensions() {
		fmt.Fprintf(w, "%-8s %8.3f %8.3f %8.3f\n", d.Label(), r.Target[d], r.Mean[d], r.StdDev[d])
	}
	fmt.Fprintf(w, "centroid %.0f Hz, rolloff %.0f Hz\n", r.CentroidHz, r.RolloffHz)
}
