package tts

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/wav"
)

const mockSampleRate beep.SampleRate = 22050
const mockWordsPerMinute = 200.0

// MockSynthesizer writes silent WAV files whose length matches the estimated
// speaking time of the text. Useful for tests and for running the pipeline
// without a speech backend.
type MockSynthesizer struct {
	speed float64
}

func newMockSynthesizer(c Config) *MockSynthesizer {
	return &MockSynthesizer{speed: c.Speed}
}

func (m *MockSynthesizer) Name() string { return EngineTypeMock.String() }

func (m *MockSynthesizer) FileExt() string { return "wav" }

// Synthesize writes words/(rate*speed) minutes of silence to outputPath.
func (m *MockSynthesizer) Synthesize(text string, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	words := len(strings.Fields(text))
	duration := time.Duration(float64(words) / (mockWordsPerMinute * m.speed) * float64(time.Minute))
	if duration <= 0 {
		duration = 100 * time.Millisecond
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", outputPath, err)
	}
	defer f.Close()

	format := beep.Format{SampleRate: mockSampleRate, NumChannels: 2, Precision: 2}
	if err := wav.Encode(f, beep.Silence(format.SampleRate.N(duration)), format); err != nil {
		return fmt.Errorf("encode %s: %w", outputPath, err)
	}
	return nil
}
