package interview

import (
	"errors"
	"testing"
	"time"
)

func TestDefaultPacingIsValid(t *testing.T) {
	if err := DefaultPacing().Validate(); err != nil {
		t.Fatalf("expected default pacing to be valid, got %v", err)
	}
}

func TestPacingValidateRejectsInvalidValues(t *testing.T) {
	testCases := []struct {
		name   string
		modify func(*Pacing)
	}{
		{name: "negative delay", modify: func(p *Pacing) { p.ListenDelay = -time.Millisecond }},
		{name: "zero init timeout", modify: func(p *Pacing) { p.InitTimeout = 0 }},
		{name: "negative length", modify: func(p *Pacing) { p.MinTranscriptLength = -1 }},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			pacing := DefaultPacing()
			testCase.modify(&pacing)

			if err := pacing.Validate(); !errors.Is(err, ErrInvalidPacing) {
				t.Fatalf("expected %v, got %v", ErrInvalidPacing, err)
			}
		})
	}
}

func TestStateCanStartOnlyFromIdleOrFailed(t *testing.T) {
	for state := StateIdle; state <= StateFailed; state++ {
		expected := state == StateIdle || state == StateFailed
		if got := state.canStart(); got != expected {
			t.Fatalf("expected canStart for %s to be %v, got %v", state, expected, got)
		}
	}
	if !StateCompleted.IsTerminal() || StateFailed.IsTerminal() {
		t.Fatalf("expected only Completed to be terminal")
	}
}
