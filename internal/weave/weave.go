// Package weave drives the full composition pipeline: text is segmented,
// labeled, narrated, and mixed into a single exported track.
package weave

import (
	"crypto/md5"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/faiface/beep"
	"github.com/sirupsen/logrus"

	"audioweave/internal/audio/asset"
	"audioweave/internal/audio/export"
	"audioweave/internal/audio/mix"
	"audioweave/internal/config"
	"audioweave/internal/emotion"
	"audioweave/internal/text/cue"
	"audioweave/internal/text/segment"
	"audioweave/internal/timeline"
	"audioweave/internal/tts"
)

// ErrEmptyText is returned when the input contains nothing speakable.
var ErrEmptyText = errors.New("input text is empty")

// Weaver wires the pipeline components together for one configuration.
type Weaver struct {
	cfg      config.Config
	detector *cue.Detector
	emotions *emotion.Classifier
	assets   *asset.Resolver
	mixer    *mix.Mixer
	cacheDir string
	log      *logrus.Entry

	// NewSynth builds a fresh synthesis engine for each composition run;
	// engines are never held across runs. Overridable for tests.
	NewSynth func() (tts.Synthesizer, error)
}

// Result summarizes one composition run.
type Result struct {
	Chunks     int
	Skipped    int
	CueEvents  int
	Duration   time.Duration
	OutputPath string
}

// New builds a weaver from resolved configuration.
func New(cfg config.Config) *Weaver {
	cacheDir := cfg.CacheDir
	if cacheDir == "" {
		cacheDir = defaultCacheDirectory()
	}
	cues := cfg.CueKeywords
	if cues == nil {
		cues = cue.DefaultTable()
	}

	resolver := asset.NewResolver(asset.Config{
		BackgroundDir:  cfg.Assets.BackgroundDir,
		EffectsDir:     cfg.Assets.EffectsDir,
		EmotionTracks:  cfg.Assets.EmotionTracks,
		DefaultEmotion: cfg.Assets.DefaultEmotion,
		EffectFiles:    cfg.Assets.EffectFiles,
		SampleRate:     cfg.Audio.SampleRate,
	})

	return &Weaver{
		cfg:      cfg,
		detector: cue.NewDetector(cues),
		emotions: emotion.NewClassifier(nil, cfg.Assets.DefaultEmotion),
		assets:   resolver,
		mixer: mix.New(mix.Config{
			SampleRate: cfg.Audio.SampleRate,
			BGMVolume:  cfg.Audio.BGMVolume,
			SFXVolume:  cfg.Audio.SFXVolume,
			Gap:        cfg.Audio.Gap,
			PeakTarget: cfg.Audio.PeakTarget,
		}, resolver),
		cacheDir: cacheDir,
		log:      logrus.WithField("component", "weaver"),
		NewSynth: func() (tts.Synthesizer, error) {
			return tts.NewSynthesizer(tts.Config{
				Type:   cfg.TTS.Type,
				Voice:  cfg.TTS.Voice,
				Speed:  cfg.TTS.Speed,
				Volume: cfg.TTS.Volume,
			})
		},
	}
}

// Segments splits text into chunks using the weaver's configuration.
func (w *Weaver) Segments(text string) []segment.Chunk {
	return segment.Split(text, segment.Config{
		MaxChunkChars:  w.cfg.Text.MaxChunkChars,
		MinChunkChars:  w.cfg.Text.MinChunkChars,
		WordsPerMinute: w.cfg.Text.WordsPerMinute,
	}, w.detector)
}

// Detect exposes raw cue detection over a whole text.
func (w *Weaver) Detect(text string) []cue.Event {
	return w.detector.Detect(text, 0)
}

// Compose runs the whole pipeline: segment, label, synthesize narration,
// build the cue timeline, mix, and export to outputPath. Individual chunks
// that fail synthesis are skipped; the run fails only when nothing usable
// remains or the output cannot be written.
func (w *Weaver) Compose(text string, outputPath string) (*Result, error) {
	chunks := w.Segments(text)
	if len(chunks) == 0 {
		return nil, ErrEmptyText
	}
	tl := timeline.Build(chunks)

	synth, err := w.NewSynth()
	if err != nil {
		return nil, fmt.Errorf("create synthesis engine: %w", err)
	}
	if closer, ok := synth.(io.Closer); ok {
		defer closer.Close()
	}
	w.log.WithFields(logrus.Fields{
		"chunks": len(chunks),
		"cues":   tl.Len(),
		"engine": synth.Name(),
	}).Info("starting composition")

	segments := make([]mix.Segment, 0, len(chunks))
	skipped := 0
	for _, c := range chunks {
		narration := w.narrate(synth, c)
		if narration == nil {
			skipped++
		}
		segments = append(segments, mix.Segment{
			Chunk:     c,
			Emotion:   w.emotions.Classify(c.Text),
			Narration: narration,
		})
	}

	track, err := w.mixer.Compose(segments, tl)
	if err != nil {
		return nil, fmt.Errorf("compose track: %w", err)
	}
	if err := export.Track(track, outputPath); err != nil {
		return nil, fmt.Errorf("export track: %w", err)
	}

	return &Result{
		Chunks:     len(chunks),
		Skipped:    skipped,
		CueEvents:  tl.Len(),
		Duration:   track.Format().SampleRate.D(track.Len()),
		OutputPath: outputPath,
	}, nil
}

// narrate synthesizes one chunk's narration, reusing a cached rendering when
// the same text and voice were already synthesized. Returns nil when the
// chunk cannot be narrated; the mixer treats that as a skippable segment.
func (w *Weaver) narrate(synth tts.Synthesizer, c segment.Chunk) *beep.Buffer {
	name := fmt.Sprintf("narr_%s.%s", contentHash(c.Text+w.cfg.TTS.Voice), synth.FileExt())
	path := filepath.Join(w.cacheDir, synth.Name(), name)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := synth.Synthesize(c.Text, path); err != nil {
			w.log.WithError(err).WithField("chunk", c.ID).Warn("narration synthesis failed, skipping chunk")
			return nil
		}
	}

	buf, err := w.assets.Load(path)
	if err != nil {
		w.log.WithError(err).WithField("chunk", c.ID).Warn("narration audio unusable, skipping chunk")
		return nil
	}
	return buf
}

// CacheStats reports the narration cache's file count and total size.
func (w *Weaver) CacheStats() (files int, bytes int64, err error) {
	err = filepath.Walk(w.cacheDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // Continue walking despite errors
		}
		if !info.IsDir() && isAudioFile(info.Name()) {
			files++
			bytes += info.Size()
		}
		return nil
	})
	return files, bytes, err
}

// CacheDir returns the narration cache location.
func (w *Weaver) CacheDir() string {
	return w.cacheDir
}

// ClearCache removes all cached narration files and drops loaded audio
// buffers.
func (w *Weaver) ClearCache() error {
	w.assets.ClearCache()
	return os.RemoveAll(w.cacheDir)
}

func isAudioFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".mp3", ".wav", ".flac", ".ogg":
		return true
	}
	return false
}

func contentHash(s string) string {
	h := md5.New()
	io.WriteString(h, s)
	return fmt.Sprintf("%x", h.Sum(nil))[:8]
}

// defaultCacheDirectory returns the appropriate narration cache directory.
func defaultCacheDirectory() string {
	if cacheDir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(cacheDir, "audioweave")
	}

	if homeDir, err := os.UserHomeDir(); err == nil {
		return filepath.Join(homeDir, ".audioweave", "cache")
	}

	if cwd, err := os.Getwd(); err == nil {
		return filepath.Join(cwd, "cache")
	}

	return "cache"
}
