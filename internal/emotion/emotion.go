// Package emotion labels text with one of the fixed emotion categories using
// keyword scoring. The mixer only consumes the label; a model-backed
// classifier could replace this one behind the same interface.
package emotion

import (
	"sort"
	"strings"
)

// DefaultFallback is the label returned when no emotion keywords match.
const DefaultFallback = "neutral"

// DefaultKeywords returns the built-in emotion vocabulary.
func DefaultKeywords() map[string][]string {
	return map[string][]string{
		"joy": {"happy", "joy", "excited", "wonderful", "amazing", "great", "fantastic",
			"love", "smile", "laugh", "cheerful", "delighted", "pleased"},
		"sadness": {"sad", "cry", "tears", "sorrow", "grief", "melancholy", "depressed",
			"lonely", "empty", "lost", "hopeless", "despair", "mourn"},
		"anger": {"angry", "mad", "furious", "rage", "hate", "annoyed", "frustrated",
			"irritated", "outraged", "livid", "hostile", "aggressive"},
		"fear": {"afraid", "scared", "terrified", "anxious", "worried", "nervous",
			"panic", "frightened", "alarmed", "uneasy", "dread", "horror"},
		"surprise": {"surprised", "shocked", "amazed", "astonished", "stunned",
			"bewildered", "astounded", "startled", "unexpected"},
	}
}

// Classifier scores text against per-emotion keyword lists.
type Classifier struct {
	labels   []string
	keywords map[string][]string
	fallback string
}

// NewClassifier builds a classifier over the given vocabulary. A nil keyword
// map uses the defaults; an empty fallback uses DefaultFallback.
func NewClassifier(keywords map[string][]string, fallback string) *Classifier {
	if keywords == nil {
		keywords = DefaultKeywords()
	}
	if fallback == "" {
		fallback = DefaultFallback
	}
	c := &Classifier{keywords: keywords, fallback: fallback}
	for label := range keywords {
		c.labels = append(c.labels, label)
	}
	sort.Strings(c.labels)
	return c
}

// Classify returns the label whose keywords occur most often in the text, or
// the fallback when none occur. Ties resolve to the alphabetically first
// label so results are deterministic.
func (c *Classifier) Classify(text string) string {
	if strings.TrimSpace(text) == "" {
		return c.fallback
	}
	lower := strings.ToLower(text)

	best := c.fallback
	bestScore := 0
	for _, label := range c.labels {
		score := 0
		for _, kw := range c.keywords[label] {
			if strings.Contains(lower, kw) {
				score++
			}
		}
		if score > bestScore {
			best = label
			bestScore = score
		}
	}
	return best
}
