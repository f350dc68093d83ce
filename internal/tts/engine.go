package tts

import (
	"fmt"
	"os"
	"os/exec"
)

type EngineType string

const (
	EngineTypeMock   EngineType = "mock"
	EngineTypeESpeak EngineType = "espeak"
	EngineTypeGoogle EngineType = "google"
	EngineTypeAuto   EngineType = "auto" // Automatically choose best available
)

func (e EngineType) String() string {
	return string(e)
}

// NewSynthesizer creates a synthesis engine based on the provided config.
func NewSynthesizer(config Config) (Synthesizer, error) {
	if config.Speed <= 0 {
		config.Speed = 1.0
	}
	if config.Volume <= 0 {
		config.Volume = 1.0
	}

	// Handle auto-selection
	if config.Type == "" || config.Type == EngineTypeAuto.String() {
		config.Type = bestAvailableEngine().String()
	}

	switch config.Type {
	case EngineTypeMock.String():
		return newMockSynthesizer(config), nil

	case EngineTypeGoogle.String():
		return newGoogleSynthesizer(config)

	case EngineTypeESpeak.String():
		return newESpeakSynthesizer(config)

	default:
		return nil, fmt.Errorf("unsupported TTS engine type: %s", config.Type)
	}
}

// bestAvailableEngine picks the highest-quality engine the environment
// supports.
func bestAvailableEngine() EngineType {
	if hasGoogleCredentials() {
		return EngineTypeGoogle
	}
	if _, err := findESpeakExecutable(); err == nil {
		return EngineTypeESpeak
	}
	return EngineTypeMock
}

// AvailableEngines returns the engines usable in the current environment.
func AvailableEngines() []EngineType {
	engines := []EngineType{EngineTypeMock}
	if _, err := findESpeakExecutable(); err == nil {
		engines = append(engines, EngineTypeESpeak)
	}
	if hasGoogleCredentials() {
		engines = append(engines, EngineTypeGoogle)
	}
	return engines
}

// hasGoogleCredentials checks if Google Cloud credentials are available.
func hasGoogleCredentials() bool {
	_, ok := os.LookupEnv("GOOGLE_APPLICATION_CREDENTIALS")
	return ok
}

func findESpeakExecutable() (string, error) {
	// Try different possible eSpeak executables
	candidates := []string{"espeak-ng", "espeak"}

	for _, candidate := range candidates {
		if path, err := exec.LookPath(candidate); err == nil {
			return path, nil
		}
	}

	return "", fmt.Errorf("eSpeak executable not found in PATH")
}
