// Package host drives an engine from an audio source: a decoded file or a
// PortAudio input stream.
package host

import (
	"context"
	"errors"
	"time"

	"github.com/RyanBlaney/timbre-match/transcode"
)

// Processor consumes planar blocks on the audio thread
type Processor interface {
	Process(block [][]float32)
}

// ErrNoAudio is returned for empty or channel-less input
var ErrNoAudio = errors.New("no audio to play")

// PlayOptions controls file playback
type PlayOptions struct {
	// BlockSizes cycles through these block lengths; hosts rarely deliver a
	// constant size. Defaults to a single 512-frame block.
	BlockSizes []int
	// Realtime paces blocks at the file's sample rate
	Realtime bool
	// OnBlock runs after each block with the frames delivered so far
	OnBlock func(frames int)
}

// Play feeds data to p block by block until the file ends or ctx is done
func Play(ctx context.Context, p Processor, data *transcode.AudioData, opts PlayOptions) error {
	if data == nil || data.NumChans == 0 || data.Frames == 0 {
		return ErrNoAudio
	}
	sizes := opts.BlockSizes
	if len(sizes) == 0 {
		sizes = []int{512}
	}

	block := make([][]float32, data.NumChans)
	start := time.Now()
	pos := 0
	for i := 0; pos < data.Frames; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		n := min(max(sizes[i%len(sizes)], 1), data.Frames-pos)
		for ch := range block {
			block[ch] = data.Channels[ch][pos : pos+n]
		}
		p.Process(block)
		pos += n

		if opts.OnBlock != nil {
			opts.OnBlock(pos)
		}
		if opts.Realtime {
			due := start.Add(time.Duration(pos) * time.Second / time.Duration(data.SampleRate))
			if err := sleepUntil(ctx, due); err != nil {
				return err
			}
		}
	}
	return nil
}

func sleepUntil(ctx context.Context, t time.Time) error {
	d := time.Until(t)
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
