package tts

// Config carries voice settings shared by all engines.
type Config struct {
	Type   string
	Voice  string
	Speed  float64
	Volume float64
}

// Synthesizer renders one text unit to an audio file. Engines may be
// stateful, sequential backends; create one per composition run and never
// hold it across runs.
type Synthesizer interface {
	Synthesize(text string, outputPath string) error
	FileExt() string // container the engine writes, without dot ("wav", "mp3")
	Name() string
}

// VoiceLister is implemented by engines that can enumerate the voices they
// offer.
type VoiceLister interface {
	AvailableVoices() ([]string, error)
}
