package cue

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func testTable() Table {
	return Table{
		"door":      {"door", "creak"},
		"footsteps": {"walked", "footsteps"},
	}
}

func TestDetectEmptyText(t *testing.T) {
	d := NewDetector(testTable())
	if got := d.Detect("", 0); len(got) != 0 {
		t.Fatalf("expected no events for empty text, got %d", len(got))
	}
	if got := d.Detect("   \n\t", 0); len(got) != 0 {
		t.Fatalf("expected no events for whitespace text, got %d", len(got))
	}
}

func TestDetectWholeWordOnly(t *testing.T) {
	d := NewDetector(testTable())

	events := d.Detect("She wiped her boots on the doormat.", 0)
	if len(events) != 0 {
		t.Fatalf("keyword 'door' inside 'doormat' must not match, got %v", events)
	}

	events = d.Detect("The door opened.", 0)
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].Type != "door" || events[0].Keyword != "door" {
		t.Errorf("unexpected event: %+v", events[0])
	}
}

func TestDetectCaseInsensitive(t *testing.T) {
	d := NewDetector(testTable())
	events := d.Detect("The DOOR opened.", 0)
	if len(events) != 1 {
		t.Fatalf("expected case-insensitive match, got %d events", len(events))
	}
}

func TestDetectPositionIncludesBase(t *testing.T) {
	d := NewDetector(testTable())
	text := "The door opened."
	events := d.Detect(text, 100)
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].Position != 104 {
		t.Errorf("expected position 104 (base 100 + offset 4), got %d", events[0].Position)
	}
}

func TestConfidenceMonotonicInIntensifiers(t *testing.T) {
	d := NewDetector(testTable())

	texts := []string{
		"The door swung open.",
		"Suddenly the door swung open.",
		"Suddenly the door swung open loudly.",
	}

	prev := -1.0
	for _, text := range texts {
		events := d.Detect(text, 0)
		if len(events) != 1 {
			t.Fatalf("%q: expected 1 event, got %d", text, len(events))
		}
		if events[0].Confidence < prev {
			t.Errorf("%q: confidence %.2f decreased below %.2f", text, events[0].Confidence, prev)
		}
		prev = events[0].Confidence
	}
}

func TestConfidenceClampedToOne(t *testing.T) {
	d := NewDetector(testTable())
	// Every intensifier and descriptive word stacked around the keyword.
	text := "Suddenly he heard a sound, the door loudly creaking and slamming, echoing quickly and slowly."
	events := d.Detect(text, 0)
	if len(events) == 0 {
		t.Fatal("expected at least one event")
	}
	for _, ev := range events {
		if ev.Confidence > 1.0 {
			t.Errorf("confidence %.2f exceeds 1.0", ev.Confidence)
		}
	}
}

func TestFigurativeContextDiscardsEvent(t *testing.T) {
	d := NewDetector(testTable())
	// Three figurative markers in the context window drop the score to -0.1,
	// well under the floor.
	events := d.Detect("It seemed like a door, as if drawn.", 0)
	if len(events) != 0 {
		t.Fatalf("figurative match should be discarded, got %v", events)
	}
}

func TestFigurativeContextLowersConfidence(t *testing.T) {
	d := NewDetector(testTable())

	plain := d.Detect("Suddenly the door swung open.", 0)
	hedged := d.Detect("Suddenly, like a door swung open.", 0)
	if len(plain) != 1 || len(hedged) != 1 {
		t.Fatalf("expected 1 event each, got %d and %d", len(plain), len(hedged))
	}
	if hedged[0].Confidence >= plain[0].Confidence {
		t.Errorf("figurative context should lower confidence: %.2f >= %.2f",
			hedged[0].Confidence, plain[0].Confidence)
	}
}

func TestDetectMultipleTypesOrderedByPosition(t *testing.T) {
	d := NewDetector(testTable())
	events := d.Detect("The door opened and John walked in.", 0)
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Type != "door" || events[1].Type != "footsteps" {
		t.Errorf("events out of position order: %+v", events)
	}
	if events[0].Position >= events[1].Position {
		t.Errorf("positions not ascending: %d >= %d", events[0].Position, events[1].Position)
	}
}

func TestContextWindowRespectsRuneBoundaries(t *testing.T) {
	d := NewDetector(testTable())

	// Multibyte characters positioned so the byte-offset window edges land
	// inside a rune unless widened to the boundary.
	texts := []string{
		strings.Repeat("é", 15) + " door sound",
		"door heard " + strings.Repeat("é", 15),
	}
	for _, text := range texts {
		events := d.Detect(text, 0)
		if len(events) != 1 {
			t.Fatalf("Detect(%q): expected 1 event, got %d", text, len(events))
		}
		if !utf8.ValidString(events[0].Context) {
			t.Errorf("Detect(%q): context %q is not valid UTF-8", text, events[0].Context)
		}
	}
}
