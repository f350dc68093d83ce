// Cross-platform eSpeak implementation, rendering to WAV files.
package tts

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// ESpeakSynthesizer shells out to eSpeak/eSpeak-NG with file output.
type ESpeakSynthesizer struct {
	config Config
	path   string
}

// newESpeakSynthesizer locates and verifies the eSpeak installation.
func newESpeakSynthesizer(config Config) (*ESpeakSynthesizer, error) {
	espeakPath, err := findESpeakExecutable()
	if err != nil {
		return nil, fmt.Errorf("eSpeak not found: %w", err)
	}

	if err := exec.Command(espeakPath, "--version").Run(); err != nil {
		return nil, fmt.Errorf("eSpeak test failed: %w", err)
	}

	return &ESpeakSynthesizer{config: config, path: espeakPath}, nil
}

func (e *ESpeakSynthesizer) Name() string { return EngineTypeESpeak.String() }

func (e *ESpeakSynthesizer) FileExt() string { return "wav" }

// Synthesize runs eSpeak once, writing the spoken text to outputPath. Each
// call is an independent process; nothing is shared between calls.
func (e *ESpeakSynthesizer) Synthesize(text string, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	args := []string{"-w", outputPath}

	if e.config.Voice != "" && e.config.Voice != "default" {
		args = append(args, "-v", e.config.Voice)
	}

	// Speed in words per minute, eSpeak's default is 175.
	args = append(args, "-s", strconv.Itoa(int(175*e.config.Speed)))

	// Amplitude 0-200, default is 100.
	args = append(args, "-a", strconv.Itoa(int(100*e.config.Volume)))

	args = append(args, text)

	if err := exec.Command(e.path, args...).Run(); err != nil {
		return fmt.Errorf("eSpeak synthesis failed: %w", err)
	}
	return nil
}

// AvailableVoices lists the voices the local eSpeak installation offers.
func (e *ESpeakSynthesizer) AvailableVoices() ([]string, error) {
	output, err := exec.Command(e.path, "--voices").Output()
	if err != nil {
		return nil, fmt.Errorf("list eSpeak voices: %w", err)
	}
	return parseVoiceListing(string(output)), nil
}

// parseVoiceListing extracts voice names from the --voices table. The first
// line is the column header; the voice name sits in the fourth column
// (Pty, Language, Age/Gender, VoiceName, File, Other Languages).
func parseVoiceListing(output string) []string {
	var voices []string
	for i, line := range strings.Split(output, "\n") {
		if i == 0 || strings.TrimSpace(line) == "" {
			continue
		}
		if fields := strings.Fields(line); len(fields) >= 4 {
			voices = append(voices, fields[3])
		}
	}
	return voices
}
