package config

import (
	"time"

	"github.com/faiface/beep"
	"github.com/spf13/viper"

	"audioweave/internal/text/cue"
)

// Audio holds mixing and output settings.
type Audio struct {
	SampleRate beep.SampleRate
	BGMVolume  float64
	SFXVolume  float64
	Gap        time.Duration
	PeakTarget float64
}

// Text holds segmentation settings.
type Text struct {
	MaxChunkChars  int
	MinChunkChars  int
	WordsPerMinute int
}

// Assets describes the asset directory layout and lookup tables.
type Assets struct {
	BackgroundDir  string
	EffectsDir     string
	EmotionTracks  map[string]string
	DefaultEmotion string
	EffectFiles    map[string]string
}

// TTS holds synthesis engine settings.
type TTS struct {
	Type   string
	Voice  string
	Speed  float64
	Volume float64
}

// Config is the fully resolved configuration handed to each component, so the
// core stays testable without touching process-wide state.
type Config struct {
	Audio       Audio
	Text        Text
	Assets      Assets
	TTS         TTS
	CueKeywords cue.Table
	CacheDir    string
}

// SetDefaults registers every configuration default with viper.
func SetDefaults() {
	viper.SetDefault("audio.sample_rate", 22050)
	viper.SetDefault("audio.bgm_volume", 0.3)
	viper.SetDefault("audio.sfx_volume", 0.6)
	viper.SetDefault("audio.gap_ms", 500)
	viper.SetDefault("audio.peak_target", 0.89)

	viper.SetDefault("text.max_chunk_chars", 1000)
	viper.SetDefault("text.min_chunk_chars", 3)
	viper.SetDefault("text.words_per_minute", 200)

	viper.SetDefault("assets.background_dir", "assets/bg_music")
	viper.SetDefault("assets.effects_dir", "assets/sfx")
	viper.SetDefault("assets.default_emotion", "neutral")
	viper.SetDefault("assets.emotion_tracks", map[string]string{
		"joy":      "joy.mp3",
		"sadness":  "sadness.mp3",
		"anger":    "sadness.mp3",
		"fear":     "sadness.mp3",
		"surprise": "joy.mp3",
		"neutral":  "sadness.mp3",
	})

	viper.SetDefault("tts.type", "auto") // Auto-select best engine
	viper.SetDefault("tts.voice", "default")
	viper.SetDefault("tts.speed", 1.0)
	viper.SetDefault("tts.volume", 1.0)
}

// Load assembles the typed configuration from viper's current state.
func Load() Config {
	cfg := Config{
		Audio: Audio{
			SampleRate: beep.SampleRate(viper.GetInt("audio.sample_rate")),
			BGMVolume:  viper.GetFloat64("audio.bgm_volume"),
			SFXVolume:  viper.GetFloat64("audio.sfx_volume"),
			Gap:        time.Duration(viper.GetInt("audio.gap_ms")) * time.Millisecond,
			PeakTarget: viper.GetFloat64("audio.peak_target"),
		},
		Text: Text{
			MaxChunkChars:  viper.GetInt("text.max_chunk_chars"),
			MinChunkChars:  viper.GetInt("text.min_chunk_chars"),
			WordsPerMinute: viper.GetInt("text.words_per_minute"),
		},
		Assets: Assets{
			BackgroundDir:  viper.GetString("assets.background_dir"),
			EffectsDir:     viper.GetString("assets.effects_dir"),
			EmotionTracks:  viper.GetStringMapString("assets.emotion_tracks"),
			DefaultEmotion: viper.GetString("assets.default_emotion"),
			EffectFiles:    viper.GetStringMapString("assets.effect_files"),
		},
		TTS: TTS{
			Type:   viper.GetString("tts.type"),
			Voice:  viper.GetString("tts.voice"),
			Speed:  viper.GetFloat64("tts.speed"),
			Volume: viper.GetFloat64("tts.volume"),
		},
		CacheDir:    viper.GetString("cache.dir"),
		CueKeywords: cue.DefaultTable(),
	}

	// The cue table is only overridden when the config file provides one.
	if viper.IsSet("cues.keywords") {
		table := cue.Table{}
		for t, words := range viper.GetStringMapStringSlice("cues.keywords") {
			table[cue.Type(t)] = words
		}
		if len(table) > 0 {
			cfg.CueKeywords = table
		}
	}
	return cfg
}
