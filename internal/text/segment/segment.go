// Package segment splits narrative text into bounded, speakable chunks with
// cue metadata and estimated spoken durations.
package segment

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"audioweave/internal/text/cue"
)

// Chunk is one narration unit: a span of sentences that fits the configured
// size bound. Start and End are character offsets into the reassembled source
// text (consecutive chunks are separated by two characters of spacing).
// Cues holds at most one event per cue type; the first occurrence wins.
type Chunk struct {
	ID                int
	Text              string
	Start             int
	End               int
	EstimatedDuration time.Duration
	Cues              []cue.Event
}

// Config controls chunking behavior.
type Config struct {
	MaxChunkChars  int // Upper bound on chunk length; single sentences may exceed it.
	MinChunkChars  int // Chunks below this length are dropped.
	WordsPerMinute int // Speaking rate used for the duration estimate.
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		MaxChunkChars:  1000,
		MinChunkChars:  3,
		WordsPerMinute: 200,
	}
}

const interChunkSpacing = 2

// Split breaks text into sentence-aligned chunks no longer than the configured
// maximum, never splitting a sentence across chunks. Each chunk carries its
// character offsets, an estimated spoken duration, and the deduplicated cue
// events the detector found in it. Empty or all-whitespace input yields an
// empty result: nothing to produce, not an error.
func Split(text string, cfg Config, det *cue.Detector) []Chunk {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if cfg.MaxChunkChars <= 0 {
		cfg.MaxChunkChars = 1000
	}
	if cfg.WordsPerMinute <= 0 {
		cfg.WordsPerMinute = 200
	}

	var chunks []Chunk
	pos := 0
	id := 0
	for _, raw := range packSentences(sentences(text), cfg.MaxChunkChars) {
		if len(raw) < cfg.MinChunkChars {
			// Dropped chunks still occupy source characters; keep offsets
			// mappable by advancing past them.
			pos += len(raw) + interChunkSpacing
			continue
		}
		c := Chunk{
			ID:                id,
			Text:              raw,
			Start:             pos,
			End:               pos + len(raw),
			EstimatedDuration: estimateDuration(raw, cfg.WordsPerMinute),
		}
		if det != nil {
			c.Cues = dedupeByType(det.Detect(raw, c.Start))
		}
		chunks = append(chunks, c)
		id++
		pos = c.End + interChunkSpacing
	}

	logrus.WithFields(logrus.Fields{
		"chunks": len(chunks),
		"chars":  len(text),
	}).Debug("segmented text")
	return chunks
}

// sentences splits text on terminator punctuation, trimming whitespace and
// re-appending a terminator where the original had none.
func sentences(text string) []string {
	var out []string
	var b strings.Builder
	flush := func() {
		s := strings.TrimSpace(b.String())
		b.Reset()
		if s == "" {
			return
		}
		if last, _ := utf8.DecodeLastRuneInString(s); !isTerminator(last) {
			s += "."
		}
		out = append(out, s)
	}

	prevTerm := false
	for _, r := range text {
		term := isTerminator(r)
		if prevTerm && !term {
			flush()
		}
		b.WriteRune(r)
		prevTerm = term
	}
	flush()
	return out
}

func isTerminator(r rune) bool {
	switch r {
	case '.', '!', '?', '…':
		return true
	}
	return false
}

// packSentences greedily packs sentences into chunks of at most maxChars
// characters. A sentence longer than maxChars becomes its own chunk rather
// than being split.
func packSentences(sents []string, maxChars int) []string {
	var chunks []string
	var current string
	for _, s := range sents {
		switch {
		case current == "":
			current = s
		case len(current)+1+len(s) <= maxChars:
			current += " " + s
		default:
			chunks = append(chunks, current)
			current = s
		}
	}
	if current != "" {
		chunks = append(chunks, current)
	}
	return chunks
}

// dedupeByType keeps the first event of each cue type, preserving position
// order.
func dedupeByType(events []cue.Event) []cue.Event {
	if len(events) == 0 {
		return nil
	}
	seen := make(map[cue.Type]bool, len(events))
	var out []cue.Event
	for _, ev := range events {
		if seen[ev.Type] {
			continue
		}
		seen[ev.Type] = true
		out = append(out, ev)
	}
	return out
}

// estimateDuration derives speaking time from word count at a fixed rate.
// It feeds cue placement only; the synthesized narration's real duration is
// authoritative for audio.
func estimateDuration(text string, wpm int) time.Duration {
	words := len(strings.Fields(text))
	return time.Duration(float64(words) / float64(wpm) * float64(time.Minute))
}
