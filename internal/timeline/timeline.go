// Package timeline turns per-chunk cue events into a time-ordered event list
// the mixer can slice per segment.
package timeline

import (
	"sort"
	"time"

	"audioweave/internal/text/cue"
	"audioweave/internal/text/segment"
)

// Event is a cue re-expressed as a time offset relative to its chunk's start.
// The offset comes from the character-position-to-time ratio within the chunk,
// a linear approximation that assumes a uniform speaking rate; cue placement
// is best-effort, not frame-accurate.
type Event struct {
	ChunkID    int
	Type       cue.Type
	Keyword    string
	Offset     time.Duration
	Confidence float64
}

// Timeline is the flattened, (chunk, offset)-ordered cue event list.
type Timeline struct {
	events  []Event
	byChunk map[int][]Event
}

// Build flattens the cue lists of ordered chunks into a Timeline. Every event
// offset lands within [0, chunk duration].
func Build(chunks []segment.Chunk) Timeline {
	var events []Event
	for _, c := range chunks {
		for _, ev := range c.Cues {
			events = append(events, Event{
				ChunkID:    c.ID,
				Type:       ev.Type,
				Keyword:    ev.Keyword,
				Offset:     offsetWithin(c, ev.Position),
				Confidence: ev.Confidence,
			})
		}
	}

	sort.SliceStable(events, func(i, j int) bool {
		if events[i].ChunkID != events[j].ChunkID {
			return events[i].ChunkID < events[j].ChunkID
		}
		return events[i].Offset < events[j].Offset
	})

	byChunk := make(map[int][]Event)
	for _, ev := range events {
		byChunk[ev.ChunkID] = append(byChunk[ev.ChunkID], ev)
	}

	return Timeline{events: events, byChunk: byChunk}
}

// Events returns all events in (chunk, offset) order.
func (t Timeline) Events() []Event {
	return t.events
}

// Len reports the total number of events.
func (t Timeline) Len() int {
	return len(t.events)
}

// ForChunk returns the events belonging to one chunk, in offset order.
func (t Timeline) ForChunk(chunkID int) []Event {
	return t.byChunk[chunkID]
}

// offsetWithin maps a character position inside a chunk to a time offset,
// clamped to the chunk's estimated duration.
func offsetWithin(c segment.Chunk, position int) time.Duration {
	length := c.End - c.Start
	if length <= 0 {
		return 0
	}
	rel := position - c.Start
	if rel < 0 {
		rel = 0
	}
	off := time.Duration(float64(c.EstimatedDuration) * float64(rel) / float64(length))
	if off < 0 {
		off = 0
	}
	if off > c.EstimatedDuration {
		off = c.EstimatedDuration
	}
	return off
}
