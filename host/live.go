package host

import (
	"errors"
	"fmt"

	"github.com/RyanBlaney/timbre-match/logging"
	"github.com/gordonklaus/portaudio"
)

// inputStream is the part of *portaudio.Stream LiveInput drives
type inputStream interface {
	Start() error
	Stop() error
	Close() error
}

// LiveInput streams the default input device into a Processor
type LiveInput struct {
	stream          inputStream
	open            func() (inputStream, error)
	terminate       func() error
	closed          bool
	processor       Processor
	sampleRate      float64
	channels        int
	framesPerBuffer int
	planar          [][]float32
	view            [][]float32
	running         bool
	logger          logging.Logger
}

// NewLiveInput initialises PortAudio. Every callback buffer is allocated here.
func NewLiveInput(p Processor, sampleRate float64, channels, framesPerBuffer int) (*LiveInput, error) {
	if channels < 1 || framesPerBuffer < 1 {
		return nil, fmt.Errorf("invalid input layout: %d channels, %d frames", channels, framesPerBuffer)
	}
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialise portaudio: %w", err)
	}

	planar := make([][]float32, channels)
	for ch := range planar {
		planar[ch] = make([]float32, framesPerBuffer)
	}

	l := &LiveInput{
		terminate:       portaudio.Terminate,
		processor:       p,
		sampleRate:      sampleRate,
		channels:        channels,
		framesPerBuffer: framesPerBuffer,
		planar:          planar,
		view:            make([][]float32, channels),
		logger: logging.WithFields(logging.Fields{
			"component":   "live_input",
			"sample_rate": sampleRate,
			"channels":    channels,
		}),
	}
	l.open = func() (inputStream, error) {
		stream, err := portaudio.OpenDefaultStream(l.channels, 0, l.sampleRate, l.framesPerBuffer, l.callback)
		if err != nil {
			return nil, err
		}
		return stream, nil
	}
	return l, nil
}

// Start opens and starts the default input stream. A failed Start
// releases PortAudio, so the LiveInput cannot be started again.
func (l *LiveInput) Start() error {
	if l.running {
		return errors.New("live input already started")
	}
	if l.closed {
		return errors.New("live input already released")
	}

	stream, err := l.open()
	if err != nil {
		return errors.Join(fmt.Errorf("failed to open input stream: %w", err), l.release())
	}
	if err := stream.Start(); err != nil {
		return errors.Join(fmt.Errorf("failed to start input stream: %w", err), stream.Close(), l.release())
	}

	l.stream = stream
	l.running = true
	l.logger.Info("Live input started", logging.Fields{
		"frames_per_buffer": l.framesPerBuffer,
	})
	return nil
}

func (l *LiveInput) callback(in []float32) {
	l.processor.Process(deinterleave(l.view, l.planar, in))
}

// Stop stops and closes the stream and terminates PortAudio. Every step
// runs even when an earlier one fails.
func (l *LiveInput) Stop() error {
	if !l.running {
		return errors.New("live input not started")
	}
	l.running = false

	var errs []error
	if err := l.stream.Stop(); err != nil {
		errs = append(errs, fmt.Errorf("failed to stop input stream: %w", err))
	}
	if err := l.stream.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close input stream: %w", err))
	}
	if err := l.release(); err != nil {
		errs = append(errs, err)
	}
	l.logger.Info("Live input stopped")
	return errors.Join(errs...)
}

func (l *LiveInput) release() error {
	if l.closed {
		return nil
	}
	l.closed = true
	if err := l.terminate(); err != nil {
		return fmt.Errorf("failed to terminate portaudio: %w", err)
	}
	return nil
}

// deinterleave splits in into planar, returning view resliced to the frame
// count. Frames beyond the planar capacity are dropped.
func deinterleave(view, planar [][]float32, in []float32) [][]float32 {
	channels := len(planar)
	frames := len(in) / channels
	if channels > 0 {
		frames = min(frames, len(planar[0]))
	}
	for f := range frames {
		for ch := range channels {
			planar[ch][f] = in[f*channels+ch]
		}
	}
	for ch := range view {
		view[ch] = planar[ch][:frames]
	}
	return view
}
