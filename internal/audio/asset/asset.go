// Package asset resolves emotion labels and cue types to audio files and
// loads them as normalized, cached buffers.
package asset

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/flac"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/vorbis"
	"github.com/faiface/beep/wav"
	"github.com/sirupsen/logrus"
)

// Config wires the resolver to its asset directories and lookup tables.
type Config struct {
	BackgroundDir  string
	EffectsDir     string
	EmotionTracks  map[string]string // emotion label -> filename under BackgroundDir
	DefaultEmotion string            // label to fall back to for unknown emotions
	EffectFiles    map[string]string // cue type -> filename under EffectsDir
	SampleRate     beep.SampleRate   // every loaded buffer is resampled to this
}

// Resolver maps emotions and cue types to decoded audio buffers. Loaded
// buffers are cached by path and shared read-only; the cache is append-only
// and populated single-threaded (concurrent mixing would need a load-once
// guard per key).
type Resolver struct {
	cfg   Config
	cache map[string]*beep.Buffer
	log   *logrus.Entry
}

// NewResolver creates a resolver over the configured asset layout.
func NewResolver(cfg Config) *Resolver {
	if cfg.SampleRate == 0 {
		cfg.SampleRate = 22050
	}
	return &Resolver{
		cfg:   cfg,
		cache: make(map[string]*beep.Buffer),
		log:   logrus.WithField("component", "assets"),
	}
}

// Format returns the normalized format every cached buffer carries.
func (r *Resolver) Format() beep.Format {
	return beep.Format{SampleRate: r.cfg.SampleRate, NumChannels: 2, Precision: 2}
}

// ResolveBackground maps an emotion label to its configured background track
// path. Unknown emotions resolve through the default label. Returns "" when
// no track is configured at all.
func (r *Resolver) ResolveBackground(emotion string) string {
	name := r.cfg.EmotionTracks[emotion]
	if name == "" {
		name = r.cfg.EmotionTracks[r.cfg.DefaultEmotion]
	}
	if name == "" {
		return ""
	}
	return filepath.Join(r.cfg.BackgroundDir, name)
}

// ResolveEffect maps a cue type to an effect clip path. When the configured
// mapping misses, it probes conventional filenames and then scans the effects
// directory for any file containing the type in its name. Returns "" when
// nothing matches; callers skip the effect rather than fail.
func (r *Resolver) ResolveEffect(cueType string) string {
	if name := r.cfg.EffectFiles[cueType]; name != "" {
		return filepath.Join(r.cfg.EffectsDir, name)
	}

	candidates := []string{
		cueType + ".wav",
		cueType + ".mp3",
		cueType + "_001.wav",
		cueType + "_1.wav",
	}
	for _, name := range candidates {
		p := filepath.Join(r.cfg.EffectsDir, name)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	entries, err := os.ReadDir(r.cfg.EffectsDir)
	if err != nil {
		return ""
	}
	for _, e := range entries {
		if e.IsDir() || !supportedExt(e.Name()) {
			continue
		}
		if strings.Contains(strings.ToLower(e.Name()), strings.ToLower(cueType)) {
			return filepath.Join(r.cfg.EffectsDir, e.Name())
		}
	}
	return ""
}

// Load decodes the file at path, resamples it to the configured rate, and
// caches the buffer by path. Repeated calls return the cached buffer without
// re-decoding.
func (r *Resolver) Load(path string) (*beep.Buffer, error) {
	if buf, ok := r.cache[path]; ok {
		return buf, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open audio file: %w", err)
	}

	streamer, format, err := decode(path, f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	defer streamer.Close()

	var src beep.Streamer = streamer
	if format.SampleRate != r.cfg.SampleRate {
		src = beep.Resample(4, format.SampleRate, r.cfg.SampleRate, streamer)
	}

	buf := beep.NewBuffer(r.Format())
	buf.Append(src)
	r.cache[path] = buf
	return buf, nil
}

// Background resolves and loads the background track for an emotion. When the
// resolved file is missing or undecodable, it falls back to any valid audio
// file in the background directory; when none exists it returns nil and the
// caller proceeds without music.
func (r *Resolver) Background(emotion string) *beep.Buffer {
	if path := r.ResolveBackground(emotion); path != "" {
		buf, err := r.Load(path)
		if err == nil {
			return buf
		}
		r.log.WithError(err).WithField("emotion", emotion).Warn("background track unusable, trying fallback")
	}
	return r.fallbackBackground()
}

// Effect resolves and loads the clip for a cue type, or nil when no usable
// clip exists.
func (r *Resolver) Effect(cueType string) *beep.Buffer {
	path := r.ResolveEffect(cueType)
	if path == "" {
		return nil
	}
	buf, err := r.Load(path)
	if err != nil {
		r.log.WithError(err).WithField("cue", cueType).Warn("effect clip unusable")
		return nil
	}
	return buf
}

// fallbackBackground scans the background directory for the first decodable
// audio file.
func (r *Resolver) fallbackBackground() *beep.Buffer {
	entries, err := os.ReadDir(r.cfg.BackgroundDir)
	if err != nil {
		return nil
	}
	for _, e := range entries {
		if e.IsDir() || !supportedExt(e.Name()) {
			continue
		}
		buf, err := r.Load(filepath.Join(r.cfg.BackgroundDir, e.Name()))
		if err == nil {
			return buf
		}
	}
	return nil
}

// ClearCache drops every cached buffer.
func (r *Resolver) ClearCache() {
	r.cache = make(map[string]*beep.Buffer)
}

// CachedCount reports how many buffers the cache holds.
func (r *Resolver) CachedCount() int {
	return len(r.cache)
}

// Info describes an audio file in its native format.
type Info struct {
	Path       string
	SampleRate beep.SampleRate
	Channels   int
	Samples    int
	Duration   time.Duration
}

// Probe reports an audio file's native format and length without loading it
// into any cache.
func Probe(path string) (Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return Info{}, fmt.Errorf("open audio file: %w", err)
	}
	defer f.Close()

	streamer, format, err := decode(path, f)
	if err != nil {
		return Info{}, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	defer streamer.Close()

	return Info{
		Path:       path,
		SampleRate: format.SampleRate,
		Channels:   format.NumChannels,
		Samples:    streamer.Len(),
		Duration:   format.SampleRate.D(streamer.Len()),
	}, nil
}

func decode(path string, f *os.File) (beep.StreamSeekCloser, beep.Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		return mp3.Decode(f)
	case ".wav":
		return wav.Decode(f)
	case ".flac":
		return flac.Decode(f)
	case ".ogg":
		return vorbis.Decode(f)
	default:
		return nil, beep.Format{}, fmt.Errorf("unsupported audio format %q", filepath.Ext(path))
	}
}

func supportedExt(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".mp3", ".wav", ".flac", ".ogg":
		return true
	}
	return false
}
