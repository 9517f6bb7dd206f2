package interview

import (
	"slices"
	"testing"
)

func TestRandomAcknowledgmentsPickFromPhrases(t *testing.T) {
	picker := NewRandomAcknowledgments("one", "two")

	for range 50 {
		if phrase := picker.Pick(); phrase != "one" && phrase != "two" {
			t.Fatalf("expected a configured phrase, got %q", phrase)
		}
	}
}

func TestRandomAcknowledgmentsDefaultPhrases(t *testing.T) {
	picker := NewRandomAcknowledgments()

	if !slices.Equal(picker.Phrases(), DefaultAcknowledgments()) {
		t.Fatalf("expected default phrases, got %v", picker.Phrases())
	}
	if phrase := picker.Pick(); !slices.Contains(DefaultAcknowledgments(), phrase) {
		t.Fatalf("expected a default phrase, got %q", phrase)
	}
}
