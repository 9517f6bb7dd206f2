package interview

import "github.com/koscakluka/ema-interview/core/events"

type eventEmitter func(events.Event)

func noopEventEmitter(events.Event) {}

func newCallbackEventEmitter(opts StartOptions) eventEmitter {
	return func(event events.Event) {
		switch typedEvent := event.(type) {
		case events.TurnAppended:
			if opts.onTurn != nil {
				opts.onTurn(typedEvent.Turn)
			}
		case events.PendingTranscriptUpdated:
			if opts.onPendingTranscript != nil {
				opts.onPendingTranscript(typedEvent.Transcript)
			}
		case events.SpeakingStarted:
			if opts.onSpeakingStateChanged != nil {
				opts.onSpeakingStateChanged(true)
			}
		case events.SpeakingEnded:
			if opts.onSpeakingStateChanged != nil {
				opts.onSpeakingStateChanged(false)
			}
		case events.ListeningChanged:
			if opts.onListeningStateChanged != nil {
				opts.onListeningStateChanged(typedEvent.IsListening)
			}
		case events.SessionCompleted:
			if opts.onComplete != nil {
				opts.onComplete(typedEvent.Completion)
			}
		}

		if opts.onEvent != nil {
			opts.onEvent(event)
		}
	}
}
