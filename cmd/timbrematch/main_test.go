package main

import (
	"bytes"
	"context"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/RyanBlaney/timbre-match/engine"
	"github.com/RyanBlaney/timbre-match/logging"
	"github.com/RyanBlaney/timbre-match/timbre"
	"github.com/RyanBlaney/timbre-match/transcode"
	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

func init() {
	logging.SetGlobalLogger(&logging.NoOpLogger{})
}

func writeTone(t *testing.T, name string, freq float64, frames int) string {
	t.Helper()
	const rate = 48000
	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	data := make([]int, frames)
	for i := range data {
		data[i] = int(12000 * math.Sin(2*math.Pi*freq*float64(i)/rate))
	}
	enc := wav.NewEncoder(f, rate, 16, 1, 1)
	if err := enc.Write(&audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: rate},
		Data:           data,
		SourceBitDepth: 16,
	}); err != nil {
		t.Fatal(err)
	}
	if err := enc.Close(); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestAnalyzeData(t *testing.T) {
	path := writeTone(t, "low.wav", 200, 48000)
	data, err := transcode.NewDecoder(nil).DecodeFile(path)
	if err != nil {
		t.Fatal(err)
	}

	report, err := analyzeData(context.Background(), engine.New(nil), data, 480)
	if err != nil {
		t.Fatalf("analyzeData: %v", err)
	}
	if report.Blocks != 100 {
		t.Errorf("blocks = %d, want 100", report.Blocks)
	}
	if report.Target[timbre.Body] < 0.9 {
		t.Errorf("body = %v, want near 1", report.Target[timbre.Body])
	}
	if report.CentroidHz < 100 || report.CentroidHz > 600 {
		t.Errorf("centroid = %v Hz, want near 200", report.CentroidHz)
	}
	if report.Target[timbre.Width] != 0.5 {
		t.Errorf("mono width = %v", report.Target[timbre.Width])
	}
}

func TestCompareCommand(t *testing.T) {
	ref := writeTone(t, "ref.wav", 200, 48000)
	input := writeTone(t, "input.wav", 6000, 24000)

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"compare", "--target", ref, input})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("compare: %v", err)
	}

	text := out.String()
	if !strings.HasPrefix(text, "1. ") {
		t.Errorf("output should start with a suggestion:\n%s", text)
	}
	if !strings.Contains(text, "Bright") || !strings.Contains(text, "Body") {
		t.Errorf("expected bright and body suggestions:\n%s", text)
	}
}

func TestCompareRequiresTarget(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"compare", "input.wav"})
	if err := cmd.Execute(); err == nil {
		t.Error("compare without --target should fail")
	}
}
