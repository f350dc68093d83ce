// Package mix builds one continuous audio track from narration segments,
// emotion-matched background music, and timeline-placed sound effects.
package mix

import (
	"errors"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/effects"
	"github.com/sirupsen/logrus"

	"audioweave/internal/audio/asset"
	"audioweave/internal/text/segment"
	"audioweave/internal/timeline"
)

// ErrNoUsableSegments is returned when composition finds not a single segment
// with usable narration audio.
var ErrNoUsableSegments = errors.New("no usable narration segments")

// Segment pairs a text chunk with its externally produced narration audio and
// emotion label. A nil or empty Narration marks the segment unusable.
type Segment struct {
	Chunk     segment.Chunk
	Emotion   string
	Narration *beep.Buffer
}

// Duration reports the narration's real spoken length.
func (s Segment) Duration() time.Duration {
	if s.Narration == nil {
		return 0
	}
	return s.Narration.Format().SampleRate.D(s.Narration.Len())
}

// Config holds the mixer's level and timing knobs. Volumes are linear gain
// factors applied to the overlay layers so narration stays intelligible.
type Config struct {
	SampleRate beep.SampleRate
	BGMVolume  float64       // background music gain, 0..1
	SFXVolume  float64       // sound effect gain, 0..1
	Gap        time.Duration // silence between consecutive segments
	PeakTarget float64       // final peak level; <= 0 disables normalization
}

// DefaultConfig returns the standard mixing levels.
func DefaultConfig() Config {
	return Config{
		SampleRate: 22050,
		BGMVolume:  0.3,
		SFXVolume:  0.6,
		Gap:        500 * time.Millisecond,
		PeakTarget: 0.89,
	}
}

// Mixer composes layered audio segments into a single track.
type Mixer struct {
	cfg    Config
	assets *asset.Resolver
	log    *logrus.Entry
}

// New creates a mixer over the given asset resolver.
func New(cfg Config, assets *asset.Resolver) *Mixer {
	if cfg.SampleRate == 0 {
		cfg.SampleRate = 22050
	}
	return &Mixer{
		cfg:    cfg,
		assets: assets,
		log:    logrus.WithField("component", "mixer"),
	}
}

func (m *Mixer) format() beep.Format {
	return beep.Format{SampleRate: m.cfg.SampleRate, NumChannels: 2, Precision: 2}
}

// Compose mixes the ordered segments into one continuous track: per segment,
// background music is looped or trimmed to the narration duration and
// overlaid at reduced level, then the segment's cue effects are overlaid at
// their timeline offsets. Segments are separated by the configured silence
// gap and the finished track is peak-normalized. Unusable segments are
// skipped with a warning; composition fails only when none survive.
func (m *Mixer) Compose(segments []Segment, tl timeline.Timeline) (*beep.Buffer, error) {
	out := beep.NewBuffer(m.format())
	usable := 0

	for _, seg := range segments {
		if seg.Narration == nil || seg.Narration.Len() == 0 {
			m.log.WithField("chunk", seg.Chunk.ID).Warn("skipping segment without narration audio")
			continue
		}
		mixed := m.mixSegment(seg, tl.ForChunk(seg.Chunk.ID))
		if usable > 0 {
			out.Append(beep.Silence(m.cfg.SampleRate.N(m.cfg.Gap)))
		}
		out.Append(mixed.Streamer(0, mixed.Len()))
		usable++
	}

	if usable == 0 {
		return nil, ErrNoUsableSegments
	}

	m.log.WithFields(logrus.Fields{
		"segments": usable,
		"duration": m.cfg.SampleRate.D(out.Len()),
	}).Info("composed track")

	return m.normalizePeak(out), nil
}

// mixSegment overlays background music and cue effects onto one narration
// buffer. The result is exactly the narration's length.
func (m *Mixer) mixSegment(seg Segment, events []timeline.Event) *beep.Buffer {
	n := seg.Narration.Len()
	layers := []beep.Streamer{seg.Narration.Streamer(0, n)}

	if bgm := m.assets.Background(seg.Emotion); bgm != nil && bgm.Len() > 0 {
		// Loop the track until it covers the narration, then cut it to size.
		looped := beep.Take(n, beep.Loop(-1, bgm.Streamer(0, bgm.Len())))
		layers = append(layers, &effects.Gain{Streamer: looped, Gain: m.cfg.BGMVolume - 1})
	} else {
		m.log.WithFields(logrus.Fields{
			"chunk":   seg.Chunk.ID,
			"emotion": seg.Emotion,
		}).Warn("no background music available, narration only")
	}

	for _, ev := range events {
		fx := m.assets.Effect(string(ev.Type))
		if fx == nil {
			m.log.WithFields(logrus.Fields{
				"chunk": seg.Chunk.ID,
				"cue":   ev.Type,
			}).Warn("no effect clip for cue, skipping")
			continue
		}
		if fx.Len() > n {
			m.log.WithFields(logrus.Fields{
				"chunk": seg.Chunk.ID,
				"cue":   ev.Type,
			}).Warn("effect longer than segment, skipping")
			continue
		}
		offset := m.cfg.SampleRate.N(ev.Offset)
		if offset+fx.Len() > n {
			offset = n - fx.Len()
		}
		if offset < 0 {
			offset = 0
		}
		layers = append(layers, beep.Seq(
			beep.Silence(offset),
			&effects.Gain{Streamer: fx.Streamer(0, fx.Len()), Gain: m.cfg.SFXVolume - 1},
		))
	}

	mixed := beep.NewBuffer(m.format())
	mixed.Append(beep.Mix(layers...))
	return mixed
}

// normalizePeak scales the whole track so its peak sits at the configured
// target level. A silent track or a disabled target passes through unchanged.
func (m *Mixer) normalizePeak(track *beep.Buffer) *beep.Buffer {
	if m.cfg.PeakTarget <= 0 {
		return track
	}
	peak := peakLevel(track)
	if peak == 0 {
		return track
	}

	gain := m.cfg.PeakTarget / peak
	scaled := beep.NewBuffer(m.format())
	scaled.Append(&effects.Gain{
		Streamer: track.Streamer(0, track.Len()),
		Gain:     gain - 1,
	})
	return scaled
}

// peakLevel streams through the buffer and reports the highest absolute
// sample value.
func peakLevel(buf *beep.Buffer) float64 {
	s := buf.Streamer(0, buf.Len())
	var peak float64
	samples := make([][2]float64, 512)
	for {
		n, ok := s.Stream(samples)
		for _, smp := range samples[:n] {
			for _, v := range smp {
				if v < 0 {
					v = -v
				}
				if v > peak {
					peak = v
				}
			}
		}
		if !ok {
			break
		}
	}
	return peak
}
