package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"audioweave/internal/audio/asset"
	"audioweave/internal/cli/scheme/colours"
	"audioweave/internal/config"
	"audioweave/internal/tts"
	"audioweave/internal/weave"
)

func main() {

	config.SetDefaults()

	// Setup signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\n" + colours.Warning.Sprint("Interrupted, exiting."))
		os.Exit(1)
	}()

	rootCmd := &cobra.Command{
		Use:   "audioweave",
		Short: "🎧 Weave text into layered audio",
		Long: `AudioWeave turns plain text into a finished audio track: narration is
synthesized per segment, background music follows the mood of the text,
and sound effects land where the prose calls for them.`,
	}

	// Compose command
	composeCmd := &cobra.Command{
		Use:   "compose [file]",
		Short: "🎬 Compose a full audio track from text",
		Long:  "Segment the text, synthesize narration, and mix narration, music, and effects into one file. Reads from stdin when no file is given.",
		RunE:  runCompose,
	}

	// Segment command
	segmentCmd := &cobra.Command{
		Use:   "segment [file]",
		Short: "✂️ Show how text splits into narration chunks",
		RunE:  runSegment,
	}

	// Detect command
	detectCmd := &cobra.Command{
		Use:   "detect [file]",
		Short: "🔎 List detected sound effect cues",
		RunE:  runDetect,
	}

	// Info command
	infoCmd := &cobra.Command{
		Use:   "info <file>",
		Short: "ℹ️ Show an audio file's format and duration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := asset.Probe(args[0])
			if err != nil {
				return err
			}
			colours.Title.Println(info.Path)
			colours.Detail.Printf("  %d Hz, %d channels, %d samples, %s\n",
				info.SampleRate, info.Channels, info.Samples, info.Duration.Round(10*time.Millisecond))
			return nil
		},
	}

	// Engines command
	enginesCmd := &cobra.Command{
		Use:   "engines",
		Short: "🗣️ List available speech engines",
		Run: func(cmd *cobra.Command, args []string) {
			withVoices, _ := cmd.Flags().GetBool("voices")
			colours.Title.Println("Available speech engines:")
			for _, e := range tts.AvailableEngines() {
				colours.Info.Printf("  %s\n", e)
				if withVoices {
					listVoices(e)
				}
			}
		},
	}
	enginesCmd.Flags().Bool("voices", false, "List each engine's available voices")

	// Cache commands
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "🗄️ Inspect or clear the narration cache",
	}
	cacheCmd.AddCommand(
		&cobra.Command{
			Use:   "status",
			Short: "Show narration cache size",
			RunE: func(cmd *cobra.Command, args []string) error {
				w := weave.New(config.Load())
				files, bytes, err := w.CacheStats()
				if err != nil {
					return err
				}
				colours.Info.Printf("%d cached files, %.1f KB in %s\n", files, float64(bytes)/1024, w.CacheDir())
				return nil
			},
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Delete all cached narration",
			RunE: func(cmd *cobra.Command, args []string) error {
				w := weave.New(config.Load())
				if err := w.ClearCache(); err != nil {
					return err
				}
				colours.Success.Println("Narration cache cleared.")
				return nil
			},
		},
	)

	// Add flags
	composeCmd.Flags().StringP("output", "o", "out.wav", "Output audio file")
	composeCmd.Flags().StringP("engine", "e", "", "Speech engine (mock, espeak, google, auto)")
	composeCmd.Flags().StringP("voice", "v", "", "Voice to use for narration")
	composeCmd.Flags().Bool("verbose", false, "Enable debug logging")

	rootCmd.AddCommand(composeCmd, segmentCmd, detectCmd, infoCmd, enginesCmd, cacheCmd)

	if err := rootCmd.Execute(); err != nil {
		colours.Error.Printf("❌ Error: %v\n", err)
		os.Exit(1)
	}
}

func runCompose(cmd *cobra.Command, args []string) error {
	text, err := readInput(args)
	if err != nil {
		return err
	}
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}

	cfg := config.Load()
	if engine, _ := cmd.Flags().GetString("engine"); engine != "" {
		cfg.TTS.Type = engine
	}
	if voice, _ := cmd.Flags().GetString("voice"); voice != "" {
		cfg.TTS.Voice = voice
	}
	output, _ := cmd.Flags().GetString("output")

	w := weave.New(cfg)
	res, err := w.Compose(text, output)
	if err != nil {
		return err
	}

	colours.Success.Printf("🎧 Wrote %s (%s)\n", res.OutputPath, res.Duration.Round(10*time.Millisecond))
	colours.Detail.Printf("   %d chunks, %d cue events", res.Chunks, res.CueEvents)
	if res.Skipped > 0 {
		colours.Warning.Printf(", %d chunks skipped", res.Skipped)
	}
	fmt.Println()
	return nil
}

func runSegment(cmd *cobra.Command, args []string) error {
	text, err := readInput(args)
	if err != nil {
		return err
	}

	w := weave.New(config.Load())
	chunks := w.Segments(text)
	if len(chunks) == 0 {
		return weave.ErrEmptyText
	}

	for _, c := range chunks {
		colours.Title.Printf("Chunk %d", c.ID)
		colours.Detail.Printf("  [%d:%d]  ~%s\n", c.Start, c.End, c.EstimatedDuration.Round(10*time.Millisecond))
		fmt.Printf("  %s\n", c.Text)
		for _, ev := range c.Cues {
			colours.Cue.Printf("  cue: %s (%q, confidence %.2f)\n", ev.Type, ev.Keyword, ev.Confidence)
		}
	}
	return nil
}

func runDetect(cmd *cobra.Command, args []string) error {
	text, err := readInput(args)
	if err != nil {
		return err
	}

	w := weave.New(config.Load())
	events := w.Detect(text)
	if len(events) == 0 {
		colours.Info.Println("No sound effect cues detected.")
		return nil
	}

	for _, ev := range events {
		colours.Cue.Printf("%-10s", ev.Type)
		fmt.Printf(" %q at %d (confidence %.2f)  ...%s...\n", ev.Keyword, ev.Position, ev.Confidence, ev.Context)
	}
	return nil
}

// listVoices prints the voices one engine offers. Engines without a voice
// inventory (the mock) print nothing.
func listVoices(engine tts.EngineType) {
	synth, err := tts.NewSynthesizer(tts.Config{Type: engine.String()})
	if err != nil {
		colours.Warning.Printf("    voices unavailable: %v\n", err)
		return
	}
	if closer, ok := synth.(io.Closer); ok {
		defer closer.Close()
	}

	lister, ok := synth.(tts.VoiceLister)
	if !ok {
		return
	}
	voices, err := lister.AvailableVoices()
	if err != nil {
		colours.Warning.Printf("    voices unavailable: %v\n", err)
		return
	}
	for _, v := range voices {
		colours.Detail.Printf("    %s\n", v)
	}
}

// readInput reads the text to process from the file argument, or from stdin
// when no argument is given.
func readInput(args []string) (string, error) {
	if len(args) > 0 {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", fmt.Errorf("read input file: %w", err)
		}
		return string(data), nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return "", weave.ErrEmptyText
	}
	return string(data), nil
}

// Configuration management with Viper
func init() {
	viper.SetConfigName("audioweave")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("$HOME/.audioweave")
	viper.AddConfigPath(".")

	viper.ReadInConfig()
}
