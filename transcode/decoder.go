package transcode

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/RyanBlaney/timbre-match/logging"
	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

var ErrInvalidWAV = errors.New("invalid WAV file")

// AudioData is a fully decoded file in planar float32, one slice per channel
type AudioData struct {
	Channels   [][]float32   `json:"-"`
	SampleRate int           `json:"sample_rate"`
	NumChans   int           `json:"channels"`
	BitDepth   int           `json:"bit_depth"`
	Frames     int           `json:"frames"`
	Duration   time.Duration `json:"duration"`
	Source     string        `json:"source,omitempty"`
}

// DecoderConfig holds decoder configuration
type DecoderConfig struct {
	BlockFrames int           `json:"block_frames"` // frames per ReadBlock
	MaxDuration time.Duration `json:"max_duration"` // 0 decodes everything
}

// DefaultDecoderConfig returns default decoder configuration
func DefaultDecoderConfig() *DecoderConfig {
	return &DecoderConfig{
		BlockFrames: 4096,
	}
}

// Decoder reads PCM WAV files
type Decoder struct {
	config *DecoderConfig
}

// NewDecoder creates a WAV decoder
func NewDecoder(config *DecoderConfig) *Decoder {
	if config == nil {
		config = DefaultDecoderConfig()
	}
	return &Decoder{config: config}
}

// ValidateConfig checks the decoder settings
func (d *Decoder) ValidateConfig() error {
	if d.config.BlockFrames <= 0 {
		return fmt.Errorf("block frames must be positive, got %d", d.config.BlockFrames)
	}
	if d.config.MaxDuration < 0 {
		return fmt.Errorf("max duration must not be negative, got %v", d.config.MaxDuration)
	}
	return nil
}

// GetSupportedFormats returns the container formats this decoder reads
func (d *Decoder) GetSupportedFormats() []string {
	return []string{"wav"}
}

// DecodeFile decodes a whole WAV file
func (d *Decoder) DecodeFile(filename string) (*AudioData, error) {
	logger := logging.WithFields(logging.Fields{
		"component": "wav_decoder",
		"function":  "DecodeFile",
		"file":      filename,
	})

	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("could not open file: %w", err)
	}
	defer f.Close()

	data, err := d.DecodeReader(f)
	if err != nil {
		logger.Error(err, "Failed to decode audio file")
		return nil, err
	}
	data.Source = filename

	logger.Debug("Audio file decoded", logging.Fields{
		"sample_rate": data.SampleRate,
		"channels":    data.NumChans,
		"bit_depth":   data.BitDepth,
		"duration":    data.Duration.String(),
	})
	return data, nil
}

// DecodeReader decodes a whole WAV stream
func (d *Decoder) DecodeReader(r io.ReadSeeker) (*AudioData, error) {
	s, err := d.Open(r)
	if err != nil {
		return nil, err
	}

	out := &AudioData{
		Channels:   make([][]float32, s.NumChans()),
		SampleRate: s.SampleRate(),
		NumChans:   s.NumChans(),
		BitDepth:   s.BitDepth(),
	}
	for {
		block, err := s.ReadBlock()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		for ch := range block {
			out.Channels[ch] = append(out.Channels[ch], block[ch]...)
		}
	}

	if out.NumChans > 0 {
		out.Frames = len(out.Channels[0])
	}
	if out.SampleRate > 0 {
		out.Duration = time.Duration(out.Frames) * time.Second / time.Duration(out.SampleRate)
	}
	return out, nil
}

// Open starts block-wise decoding of r
func (d *Decoder) Open(r io.ReadSeeker) (*Stream, error) {
	if err := d.ValidateConfig(); err != nil {
		return nil, err
	}

	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, ErrInvalidWAV
	}
	format := dec.Format()
	if format == nil || format.NumChannels < 1 || format.SampleRate <= 0 {
		return nil, fmt.Errorf("%w: missing format", ErrInvalidWAV)
	}
	bitDepth := int(dec.BitDepth)
	if bitDepth <= 0 || bitDepth > 32 {
		return nil, fmt.Errorf("%w: unsupported bit depth %d", ErrInvalidWAV, bitDepth)
	}

	channels := format.NumChannels
	frames := d.config.BlockFrames
	planar := make([][]float32, channels)
	for ch := range planar {
		planar[ch] = make([]float32, frames)
	}

	s := &Stream{
		dec:      dec,
		buf:      &audio.IntBuffer{Format: format, Data: make([]int, frames*channels), SourceBitDepth: bitDepth},
		planar:   planar,
		view:     make([][]float32, channels),
		channels: channels,
		rate:     format.SampleRate,
		bitDepth: bitDepth,
		scale:    1 / float32(int64(1)<<(bitDepth-1)),
	}
	if d.config.MaxDuration > 0 {
		s.limit = int(d.config.MaxDuration.Seconds() * float64(format.SampleRate))
	}
	return s, nil
}

// Close releases decoder resources
func (d *Decoder) Close() error {
	return nil
}

// Stream yields fixed-size planar blocks from a WAV decoder
type Stream struct {
	dec      *wav.Decoder
	buf      *audio.IntBuffer
	planar   [][]float32
	view     [][]float32
	channels int
	rate     int
	bitDepth int
	scale    float32
	read     int
	limit    int
}

// ReadBlock returns the next block, sized down at end of stream, or io.EOF.
// The slices are reused by the next call.
func (s *Stream) ReadBlock() ([][]float32, error) {
	if s.limit > 0 && s.read >= s.limit {
		return nil, io.EOF
	}

	s.buf.Data = s.buf.Data[:cap(s.buf.Data)]
	n, err := s.dec.PCMBuffer(s.buf)
	if n == 0 {
		return nil, io.EOF
	}
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("could not read PCM buffer: %w", err)
	}

	frames := n / s.channels
	if s.limit > 0 {
		frames = min(frames, s.limit-s.read)
	}
	// 8-bit WAV is unsigned
	var offset int
	if s.bitDepth == 8 {
		offset = 128
	}
	for f := range frames {
		for ch := range s.channels {
			s.planar[ch][f] = float32(s.buf.Data[f*s.channels+ch]-offset) * s.scale
		}
	}
	s.read += frames

	for ch := range s.view {
		s.view[ch] = s.planar[ch][:frames]
	}
	return s.view, nil
}

// SampleRate returns the file's sample rate
func (s *Stream) SampleRate() int {
	return s.rate
}

// NumChans returns the file's channel count
func (s *Stream) NumChans() int {
	return s.channels
}

// BitDepth returns the source bit depth
func (s *Stream) BitDepth() int {
	return s.bitDepth
}
