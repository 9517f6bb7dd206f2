package interview

import (
	"testing"
	"time"
)

func TestSilenceTimerIgnoresShortTranscripts(t *testing.T) {
	clock := newFakeClock()
	committed := 0
	timer := NewSilenceTimer(3*time.Second, 10, func(string) { committed++ }, WithSilenceTimerClock(clock))

	for _, transcript := range []string{"", "   ", "Yes.", "  ten chars  ", "0123456789"} {
		if timer.Arm(transcript) {
			t.Fatalf("expected %q not to arm the timer", transcript)
		}
	}
	clock.Advance(time.Minute)

	if committed != 0 {
		t.Fatalf("expected no commits, got %d", committed)
	}
	if timer.IsArmed() {
		t.Fatalf("expected timer to stay disarmed")
	}
}

func TestSilenceTimerRearmCommitsLastTranscriptOnce(t *testing.T) {
	clock := newFakeClock()
	var committed []string
	timer := NewSilenceTimer(3*time.Second, 10, func(transcript string) {
		committed = append(committed, transcript)
	}, WithSilenceTimerClock(clock))

	timer.Arm("I worked on payments")
	clock.Advance(2 * time.Second)
	timer.Arm("I worked on payments for three years")
	clock.Advance(2 * time.Second)
	timer.Arm("I worked on payments for three years at a bank")
	clock.Advance(2 * time.Second)

	if len(committed) != 0 {
		t.Fatalf("expected no commit before the quiet period elapsed, got %v", committed)
	}

	clock.Advance(time.Second)
	clock.Advance(time.Minute)

	if len(committed) != 1 {
		t.Fatalf("expected exactly one commit, got %v", committed)
	}
	if expected := "I worked on payments for three years at a bank"; committed[0] != expected {
		t.Fatalf("expected last armed transcript %q, got %q", expected, committed[0])
	}
}

func TestSilenceTimerShortTranscriptKeepsCountdown(t *testing.T) {
	clock := newFakeClock()
	committed := 0
	timer := NewSilenceTimer(3*time.Second, 10, func(string) { committed++ }, WithSilenceTimerClock(clock))

	timer.Arm("A qualifying transcript")
	clock.Advance(2 * time.Second)
	if timer.Arm("um") {
		t.Fatalf("expected short transcript not to re-arm")
	}
	clock.Advance(time.Second)

	if committed != 1 {
		t.Fatalf("expected the original countdown to commit, got %d commits", committed)
	}
}

func TestSilenceTimerCancelPreventsCommit(t *testing.T) {
	clock := newFakeClock()
	committed := 0
	timer := NewSilenceTimer(3*time.Second, 10, func(string) { committed++ }, WithSilenceTimerClock(clock))

	timer.Arm("A qualifying transcript")
	clock.Advance(time.Second)
	timer.Cancel()
	clock.Advance(time.Minute)

	if committed != 0 {
		t.Fatalf("expected no commit after cancel, got %d", committed)
	}

	timer.Cancel()
	if timer.IsArmed() {
		t.Fatalf("expected timer to be disarmed")
	}
}

// scheduledClock hands out timers whose callbacks the test fires by hand,
// even after they were stopped.
type scheduledClock struct {
	*fakeClock
	callbacks []func()
}

func (c *scheduledClock) AfterFunc(d time.Duration, f func()) Timer {
	c.callbacks = append(c.callbacks, f)
	return c.fakeClock.AfterFunc(d, f)
}

func TestSilenceTimerCancelWinsOverAlreadyScheduledExpiry(t *testing.T) {
	clock := &scheduledClock{fakeClock: newFakeClock()}
	committed := 0
	timer := NewSilenceTimer(3*time.Second, 10, func(string) { committed++ }, WithSilenceTimerClock(clock))

	timer.Arm("A qualifying transcript")
	timer.Cancel()
	for _, callback := range clock.callbacks {
		callback()
	}

	if committed != 0 {
		t.Fatalf("expected stale expiry to be ignored, got %d commits", committed)
	}
}

func TestIsQualifying(t *testing.T) {
	testCases := []struct {
		transcript string
		expected   bool
	}{
		{transcript: "", expected: false},
		{transcript: "0123456789", expected: false},
		{transcript: "   0123456789   ", expected: false},
		{transcript: "0123456789a", expected: true},
		{transcript: "ćčžšđćčžšđć", expected: true},
	}

	for _, testCase := range testCases {
		if got := IsQualifying(testCase.transcript, 10); got != testCase.expected {
			t.Fatalf("expected IsQualifying(%q) to be %v, got %v", testCase.transcript, testCase.expected, got)
		}
	}
}
