package cue

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

// Type identifies a sound-effect category from the fixed vocabulary.
type Type string

// Event is a detected sound-effect trigger in a span of text. Position is the
// character offset in the full source text, Context the surrounding snippet
// the confidence score was derived from.
type Event struct {
	Type       Type
	Keyword    string
	Position   int
	Context    string
	Confidence float64
}

// Table maps a cue type to its keyword variants.
type Table map[Type][]string

// DefaultTable returns the built-in cue vocabulary.
func DefaultTable() Table {
	return Table{
		"door":      {"door", "doorway", "opened", "closed", "creak"},
		"footsteps": {"walked", "running", "footsteps", "steps"},
		"thunder":   {"thunder", "lightning", "storm"},
		"water":     {"rain", "water", "splash", "drip"},
		"fire":      {"fire", "flames", "crackling", "burning"},
		"scream":    {"scream", "screamed", "screaming", "yell", "shout"},
	}
}

const (
	baseConfidence = 0.5
	minConfidence  = 0.3
	contextRadius  = 20
)

// Context words that raise or lower confidence. Figurative markers suggest the
// keyword is a metaphor rather than an actual sound.
var (
	intensifierWords = []string{"suddenly", "loudly", "slowly", "quickly", "heard", "sound"}
	descriptiveWords = []string{"creaking", "slamming", "echoing", "crackling"}
	figurativeWords  = []string{"like", "as if", "seemed", "appeared"}
)

// Detector finds cue keywords in text. It is a pure function of its table;
// safe for concurrent use once constructed.
type Detector struct {
	types    []Type
	patterns map[Type][]*regexp.Regexp
	keywords map[Type][]string
}

// NewDetector compiles whole-word, case-insensitive patterns for every
// keyword variant in the table.
func NewDetector(table Table) *Detector {
	d := &Detector{
		patterns: make(map[Type][]*regexp.Regexp, len(table)),
		keywords: make(map[Type][]string, len(table)),
	}
	for t, words := range table {
		d.types = append(d.types, t)
		for _, w := range words {
			re := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(strings.ToLower(w)) + `\b`)
			d.patterns[t] = append(d.patterns[t], re)
			d.keywords[t] = append(d.keywords[t], strings.ToLower(w))
		}
	}
	// Map order is random; a fixed type order keeps detection deterministic.
	sort.Slice(d.types, func(i, j int) bool { return d.types[i] < d.types[j] })
	return d
}

// Detect scans text for cue keywords and returns every match scoring above the
// confidence floor. base is the chunk's start offset in the full source text,
// added to every event position. Matches inside larger words never trigger.
func (d *Detector) Detect(text string, base int) []Event {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var events []Event
	for _, t := range d.types {
		for i, re := range d.patterns[t] {
			for _, loc := range re.FindAllStringIndex(text, -1) {
				ctx := contextWindow(text, loc[0], loc[1])
				conf := scoreConfidence(ctx)
				if conf <= minConfidence {
					continue
				}
				events = append(events, Event{
					Type:       t,
					Keyword:    d.keywords[t][i],
					Position:   base + loc[0],
					Context:    ctx,
					Confidence: conf,
				})
			}
		}
	}

	sort.SliceStable(events, func(i, j int) bool {
		if events[i].Position != events[j].Position {
			return events[i].Position < events[j].Position
		}
		return events[i].Type < events[j].Type
	})
	return events
}

// contextWindow returns the snippet of text around a match, clipped to the
// text bounds. The window edges are byte offsets, so they are widened to the
// nearest rune boundary to keep the snippet valid UTF-8.
func contextWindow(text string, start, end int) string {
	cs := start - contextRadius
	if cs < 0 {
		cs = 0
	}
	for cs > 0 && !utf8.RuneStart(text[cs]) {
		cs--
	}
	ce := end + contextRadius
	if ce > len(text) {
		ce = len(text)
	}
	for ce < len(text) && !utf8.RuneStart(text[ce]) {
		ce++
	}
	return strings.TrimSpace(text[cs:ce])
}

// scoreConfidence starts from the base score and adjusts it for context words:
// intensifiers and sound descriptions raise it, figurative markers lower it.
// The result is clamped to [0, 1].
func scoreConfidence(context string) float64 {
	conf := baseConfidence
	lower := strings.ToLower(context)

	for _, w := range intensifierWords {
		if strings.Contains(lower, w) {
			conf += 0.1
		}
	}
	for _, w := range descriptiveWords {
		if strings.Contains(lower, w) {
			conf += 0.2
		}
	}
	for _, w := range figurativeWords {
		if strings.Contains(lower, w) {
			conf -= 0.2
		}
	}

	if conf < 0 {
		conf = 0
	}
	if conf > 1 {
		conf = 1
	}
	return conf
}
