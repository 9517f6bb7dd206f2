package interview

import (
	"strings"
	"sync"
	"time"
	"unicode/utf8"
)

// SilenceTimer debounces auto-submission. Each qualifying Arm restarts a
// quiet-period countdown; when it expires without another Arm or Cancel, the
// last armed transcript is committed exactly once.
type SilenceTimer struct {
	clock       Clock
	quietPeriod time.Duration
	minLength   int
	onCommitted func(transcript string)

	mu sync.Mutex
	// generation identifies the current arm cycle. A timer firing for any
	// other generation is stale and ignored.
	generation uint64
	armed      bool
	transcript string
	timer      Timer
}

type SilenceTimerOption func(*SilenceTimer)

// WithSilenceTimerClock sets the clock the countdown is scheduled on.
func WithSilenceTimerClock(clock Clock) SilenceTimerOption {
	return func(t *SilenceTimer) {
		if clock != nil {
			t.clock = clock
		}
	}
}

func NewSilenceTimer(quietPeriod time.Duration, minLength int, onCommitted func(transcript string), opts ...SilenceTimerOption) *SilenceTimer {
	if onCommitted == nil {
		onCommitted = func(string) {}
	}

	timer := &SilenceTimer{
		clock:       systemClock{},
		quietPeriod: quietPeriod,
		minLength:   minLength,
		onCommitted: onCommitted,
	}
	for _, opt := range opts {
		opt(timer)
	}
	return timer
}

// IsQualifying reports whether the trimmed transcript is longer than
// minLength characters.
func IsQualifying(transcript string, minLength int) bool {
	return utf8.RuneCountInString(strings.TrimSpace(transcript)) > minLength
}

// Arm restarts the countdown with transcript if it qualifies. A transcript
// that does not qualify leaves any running countdown untouched and reports
// false.
func (t *SilenceTimer) Arm(transcript string) bool {
	if !IsQualifying(transcript, t.minLength) {
		return false
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.stopLocked()
	t.generation++
	t.armed = true
	t.transcript = transcript

	generation := t.generation
	t.timer = t.clock.AfterFunc(t.quietPeriod, func() { t.expire(generation) })
	return true
}

// Cancel clears any pending countdown. Safe to call when nothing is armed.
func (t *SilenceTimer) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.stopLocked()
	t.generation++
	t.armed = false
	t.transcript = ""
}

func (t *SilenceTimer) IsArmed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.armed
}

func (t *SilenceTimer) stopLocked() {
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}

func (t *SilenceTimer) expire(generation uint64) {
	t.mu.Lock()
	if !t.armed || generation != t.generation {
		t.mu.Unlock()
		return
	}
	transcript := t.transcript
	t.armed = false
	t.transcript = ""
	t.timer = nil
	t.mu.Unlock()

	t.onCommitted(transcript)
}
