package mix

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/wav"

	"audioweave/internal/audio/asset"
	"audioweave/internal/text/cue"
	"audioweave/internal/text/segment"
	"audioweave/internal/timeline"
)

const testRate beep.SampleRate = 22050

func testFormat() beep.Format {
	return beep.Format{SampleRate: testRate, NumChannels: 2, Precision: 2}
}

func constStreamer(value float64) beep.Streamer {
	return beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		for i := range samples {
			samples[i][0] = value
			samples[i][1] = value
		}
		return len(samples), true
	})
}

// constBuffer builds an in-memory narration buffer of constant sample value.
func constBuffer(d time.Duration, value float64) *beep.Buffer {
	buf := beep.NewBuffer(testFormat())
	buf.Append(beep.Take(testRate.N(d), constStreamer(value)))
	return buf
}

func writeWav(t *testing.T, path string, d time.Duration, value float64) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()
	if err := wav.Encode(f, beep.Take(testRate.N(d), constStreamer(value)), testFormat()); err != nil {
		t.Fatalf("encode %s: %v", path, err)
	}
}

func samplesOf(t *testing.T, buf *beep.Buffer) [][2]float64 {
	t.Helper()
	out := make([][2]float64, 0, buf.Len())
	s := buf.Streamer(0, buf.Len())
	block := make([][2]float64, 512)
	for {
		n, ok := s.Stream(block)
		out = append(out, block[:n]...)
		if !ok {
			break
		}
	}
	return out
}

func newTestMixer(t *testing.T, cfg Config, tracks map[string]string) (*Mixer, string, string) {
	t.Helper()
	bgDir := t.TempDir()
	fxDir := t.TempDir()
	resolver := asset.NewResolver(asset.Config{
		BackgroundDir:  bgDir,
		EffectsDir:     fxDir,
		EmotionTracks:  tracks,
		DefaultEmotion: "neutral",
		SampleRate:     testRate,
	})
	return New(cfg, resolver), bgDir, fxDir
}

func plainChunk(id int) segment.Chunk {
	return segment.Chunk{ID: id, Text: "placeholder text for the chunk.", Start: id * 100, End: id*100 + 31}
}

func cuedChunk(id int, cueType cue.Type, position int, dur time.Duration) segment.Chunk {
	return segment.Chunk{
		ID:                id,
		Text:              string(make([]byte, 100)),
		Start:             0,
		End:               100,
		EstimatedDuration: dur,
		Cues:              []cue.Event{{Type: cueType, Keyword: string(cueType), Position: position, Confidence: 0.5}},
	}
}

func TestComposeTotalDuration(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SampleRate = testRate
	m, _, _ := newTestMixer(t, cfg, nil)

	segments := []Segment{
		{Chunk: plainChunk(0), Emotion: "fear", Narration: constBuffer(2000*time.Millisecond, 0)},
		{Chunk: plainChunk(1), Emotion: "joy", Narration: constBuffer(1500*time.Millisecond, 0)},
	}
	track, err := m.Compose(segments, timeline.Build(nil))
	if err != nil {
		t.Fatalf("compose: %v", err)
	}

	// 2000ms + 500ms gap + 1500ms = 4000ms exactly.
	if want := testRate.N(4 * time.Second); track.Len() != want {
		t.Errorf("expected %d samples (4s), got %d", want, track.Len())
	}
}

func TestComposeZeroUsableSegmentsFails(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SampleRate = testRate
	m, _, _ := newTestMixer(t, cfg, nil)

	segments := []Segment{
		{Chunk: plainChunk(0), Emotion: "joy", Narration: nil},
		{Chunk: plainChunk(1), Emotion: "joy", Narration: beep.NewBuffer(testFormat())},
	}
	if _, err := m.Compose(segments, timeline.Build(nil)); err != ErrNoUsableSegments {
		t.Fatalf("expected ErrNoUsableSegments, got %v", err)
	}
}

func TestComposeSkipsUnusableSegment(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SampleRate = testRate
	m, _, _ := newTestMixer(t, cfg, nil)

	segments := []Segment{
		{Chunk: plainChunk(0), Emotion: "joy", Narration: nil},
		{Chunk: plainChunk(1), Emotion: "joy", Narration: constBuffer(time.Second, 0)},
	}
	track, err := m.Compose(segments, timeline.Build(nil))
	if err != nil {
		t.Fatalf("compose should survive one bad segment: %v", err)
	}
	// Single usable segment, so no gap either.
	if want := testRate.N(time.Second); track.Len() != want {
		t.Errorf("expected %d samples, got %d", want, track.Len())
	}
}

func TestBackgroundLoopedAndTrimmedToNarration(t *testing.T) {
	cfg := Config{SampleRate: testRate, BGMVolume: 0.5, SFXVolume: 0.6, Gap: 500 * time.Millisecond}
	m, bgDir, _ := newTestMixer(t, cfg, map[string]string{"neutral": "calm.wav"})
	// 300ms of music against 1000ms of narration: must loop, then cut exactly.
	writeWav(t, filepath.Join(bgDir, "calm.wav"), 300*time.Millisecond, 0.5)

	segments := []Segment{
		{Chunk: plainChunk(0), Emotion: "neutral", Narration: constBuffer(time.Second, 0)},
	}
	track, err := m.Compose(segments, timeline.Build(nil))
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	if want := testRate.N(time.Second); track.Len() != want {
		t.Fatalf("expected exactly %d samples, got %d", want, track.Len())
	}

	samples := samplesOf(t, track)
	// Music at half volume throughout, including past the loop seam.
	for _, idx := range []int{0, testRate.N(450 * time.Millisecond), len(samples) - 10} {
		got := samples[idx][0]
		if got < 0.24 || got > 0.26 {
			t.Errorf("sample %d: expected looped music at ~0.25, got %f", idx, got)
		}
	}
}

func TestEffectPlacedAtTimelineOffset(t *testing.T) {
	cfg := Config{SampleRate: testRate, BGMVolume: 0.3, SFXVolume: 1.0, Gap: 500 * time.Millisecond}
	m, _, fxDir := newTestMixer(t, cfg, nil)
	writeWav(t, filepath.Join(fxDir, "door.wav"), 100*time.Millisecond, 0.5)

	// Cue at char 50 of a 100-char chunk estimated at 1s lands at 500ms.
	chunk := cuedChunk(0, "door", 50, time.Second)
	tl := timeline.Build([]segment.Chunk{chunk})

	track, err := m.Compose([]Segment{{Chunk: chunk, Emotion: "joy", Narration: constBuffer(time.Second, 0)}}, tl)
	if err != nil {
		t.Fatalf("compose: %v", err)
	}

	samples := samplesOf(t, track)
	if got := samples[testRate.N(400*time.Millisecond)][0]; got > 0.01 {
		t.Errorf("expected silence before the cue, got %f", got)
	}
	if got := samples[testRate.N(550*time.Millisecond)][0]; got < 0.45 {
		t.Errorf("expected effect audio at 550ms, got %f", got)
	}
	if got := samples[testRate.N(700*time.Millisecond)][0]; got > 0.01 {
		t.Errorf("expected silence after the effect, got %f", got)
	}
}

func TestEffectLongerThanSegmentSkipped(t *testing.T) {
	cfg := Config{SampleRate: testRate, BGMVolume: 0.3, SFXVolume: 1.0, Gap: 500 * time.Millisecond}
	m, _, fxDir := newTestMixer(t, cfg, nil)
	writeWav(t, filepath.Join(fxDir, "door.wav"), 2*time.Second, 0.5)

	chunk := cuedChunk(0, "door", 10, time.Second)
	tl := timeline.Build([]segment.Chunk{chunk})

	track, err := m.Compose([]Segment{{Chunk: chunk, Emotion: "joy", Narration: constBuffer(time.Second, 0)}}, tl)
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	if want := testRate.N(time.Second); track.Len() != want {
		t.Fatalf("oversized effect must not stretch the segment: got %d samples", track.Len())
	}
	for i, smp := range samplesOf(t, track) {
		if smp[0] > 0.01 {
			t.Fatalf("sample %d: oversized effect leaked into segment audio: %f", i, smp[0])
		}
	}
}

func TestMissingEffectNonFatal(t *testing.T) {
	cfg := Config{SampleRate: testRate, BGMVolume: 0.3, SFXVolume: 0.6, Gap: 500 * time.Millisecond}
	m, _, _ := newTestMixer(t, cfg, nil)

	chunk := cuedChunk(0, "ghost", 10, time.Second)
	tl := timeline.Build([]segment.Chunk{chunk})

	track, err := m.Compose([]Segment{{Chunk: chunk, Emotion: "joy", Narration: constBuffer(time.Second, 0)}}, tl)
	if err != nil {
		t.Fatalf("missing effect clip must not fail composition: %v", err)
	}
	if want := testRate.N(time.Second); track.Len() != want {
		t.Errorf("expected %d samples, got %d", want, track.Len())
	}
}

func TestPeakNormalizationReachesTarget(t *testing.T) {
	cfg := Config{SampleRate: testRate, BGMVolume: 0.3, SFXVolume: 0.6, Gap: 500 * time.Millisecond, PeakTarget: 0.5}
	m, _, _ := newTestMixer(t, cfg, nil)

	track, err := m.Compose([]Segment{
		{Chunk: plainChunk(0), Emotion: "joy", Narration: constBuffer(time.Second, 0.25)},
	}, timeline.Build(nil))
	if err != nil {
		t.Fatalf("compose: %v", err)
	}

	var peak float64
	for _, smp := range samplesOf(t, track) {
		if smp[0] > peak {
			peak = smp[0]
		}
	}
	if peak < 0.49 || peak > 0.51 {
		t.Errorf("expected peak normalized to 0.5, got %f", peak)
	}
}

func TestSegmentDuration(t *testing.T) {
	seg := Segment{Narration: constBuffer(1500*time.Millisecond, 0)}
	if got := seg.Duration(); got != 1500*time.Millisecond {
		t.Errorf("expected 1500ms, got %v", got)
	}
	if got := (Segment{}).Duration(); got != 0 {
		t.Errorf("expected 0 for nil narration, got %v", got)
	}
}
