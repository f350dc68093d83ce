package tts

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	texttospeech "cloud.google.com/go/texttospeech/apiv1"
	texttospeechpb "google.golang.org/genproto/googleapis/cloud/texttospeech/v1"
)

// GoogleSynthesizer renders text through the Google Cloud Text-to-Speech API,
// writing MP3 files.
type GoogleSynthesizer struct {
	client *texttospeech.Client
	ctx    context.Context
	config Config
}

func newGoogleSynthesizer(config Config) (*GoogleSynthesizer, error) {
	ctx := context.Background()
	client, err := texttospeech.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create TTS client: %w", err)
	}

	if config.Voice == "" || config.Voice == "default" {
		config.Voice = "en-US-Chirp3-HD-Charon"
	}

	return &GoogleSynthesizer{client: client, ctx: ctx, config: config}, nil
}

func (g *GoogleSynthesizer) Name() string { return EngineTypeGoogle.String() }

func (g *GoogleSynthesizer) FileExt() string { return "mp3" }

// Synthesize requests MP3 audio for the text and writes it to outputPath.
func (g *GoogleSynthesizer) Synthesize(text string, outputPath string) error {
	audioCfg := &texttospeechpb.AudioConfig{
		AudioEncoding: texttospeechpb.AudioEncoding_MP3,
	}

	// Chirp voices often don't support speakingRate/pitch, skip them
	if !strings.Contains(strings.ToLower(g.config.Voice), "chirp") {
		audioCfg.SpeakingRate = g.config.Speed
		audioCfg.VolumeGainDb = g.config.Volume
	}

	req := &texttospeechpb.SynthesizeSpeechRequest{
		Input: &texttospeechpb.SynthesisInput{
			InputSource: &texttospeechpb.SynthesisInput_Text{Text: text},
		},
		Voice: &texttospeechpb.VoiceSelectionParams{
			LanguageCode: "en-US",
			Name:         g.config.Voice,
		},
		AudioConfig: audioCfg,
	}

	resp, err := g.client.SynthesizeSpeech(g.ctx, req)
	if err != nil {
		return fmt.Errorf("failed to synthesize speech: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	if err := os.WriteFile(outputPath, resp.AudioContent, 0644); err != nil {
		return fmt.Errorf("failed to write audio to %s: %w", outputPath, err)
	}
	return nil
}

// AvailableVoices lists the voice names the API offers.
func (g *GoogleSynthesizer) AvailableVoices() ([]string, error) {
	resp, err := g.client.ListVoices(g.ctx, &texttospeechpb.ListVoicesRequest{})
	if err != nil {
		return nil, err
	}
	voices := []string{}
	for _, v := range resp.Voices {
		voices = append(voices, v.Name)
	}
	return voices, nil
}

// Close releases the API client.
func (g *GoogleSynthesizer) Close() error {
	return g.client.Close()
}
