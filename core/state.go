package interview

type State int32

const (
	StateIdle State = iota
	StateInitializing
	StateGreeting
	StateAskingQuestion
	StateAwaitingResponse
	StateAcknowledging
	StateCompleting
	StateCompleted
	StateFailed
)

var stateNames = [...]string{
	StateIdle:             "Idle",
	StateInitializing:     "Initializing",
	StateGreeting:         "Greeting",
	StateAskingQuestion:   "AskingQuestion",
	StateAwaitingResponse: "AwaitingResponse",
	StateAcknowledging:    "Acknowledging",
	StateCompleting:       "Completing",
	StateCompleted:        "Completed",
	StateFailed:           "Failed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "Unknown"
	}
	return stateNames[s]
}

// IsTerminal reports whether no further transitions are accepted.
func (s State) IsTerminal() bool { return s == StateCompleted }

// canStart reports whether Start may be called from s.
func (s State) canStart() bool { return s == StateIdle || s == StateFailed }
