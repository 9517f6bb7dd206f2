package interview

import (
	"math/rand/v2"
	"slices"
	"sync"
)

var defaultAcknowledgments = []string{
	"Thank you for sharing that.",
	"That's very interesting.",
	"I appreciate your detailed response.",
	"Great, that gives me good insight.",
	"Thank you for explaining that.",
	"Perfect, I understand.",
	"That's exactly what I was looking for.",
}

// AcknowledgmentPicker chooses the phrase spoken after each committed
// answer.
type AcknowledgmentPicker interface {
	Phrases() []string
	Pick() string
}

func DefaultAcknowledgments() []string { return slices.Clone(defaultAcknowledgments) }

type randomAcknowledgments struct {
	phrases []string

	mu   sync.Mutex
	rand *rand.Rand
}

// NewRandomAcknowledgments picks uniformly from phrases, or from the default
// phrases when none are given.
func NewRandomAcknowledgments(phrases ...string) AcknowledgmentPicker {
	if len(phrases) == 0 {
		phrases = defaultAcknowledgments
	}
	return &randomAcknowledgments{
		phrases: slices.Clone(phrases),
		rand:    rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
}

func (a *randomAcknowledgments) Phrases() []string { return slices.Clone(a.phrases) }

func (a *randomAcknowledgments) Pick() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.phrases[a.rand.IntN(len(a.phrases))]
}
