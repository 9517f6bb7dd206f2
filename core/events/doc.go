// Package events defines the typed interview session event contract.
//
// Event kinds are grouped by receiver-facing namespaces:
//
//   - session.*
//   - conversation.*
//   - participant_input.*
//   - engine_speech.*
//   - media.*
//
// Semantics used across the package:
//
//   - Updated: mutable point-in-time snapshot that can change over time.
//   - Changed: a flag or state moved from one value to another.
//   - Appended / Recorded: an append-only entry that is never mutated.
//   - Started / Stopped / Ended: lifecycle boundaries.
//
// session events
//
//   - SessionStateChanged (session.state_changed): the controller moved
//     between states.
//   - SessionDegraded (session.degraded): media or speech capabilities are
//     unavailable; the session continues on manual submission only.
//   - SessionFailed (session.failed): initialization failed unrecoverably.
//   - SessionCompleted (session.completed): terminal completion, carries the
//     completion payload handed to the sink.
//
// conversation events
//
//   - TurnAppended (conversation.turn_appended): a turn joined the transcript.
//   - AnswerRecorded (conversation.answer_recorded): a question was committed.
//
// participant_input events
//
//   - TranscriptUpdated (participant_input.transcript_updated): recognizer
//     callback, interim or final.
//   - PendingTranscriptUpdated (participant_input.pending_transcript_updated):
//     the transcript shown to the participant for the active question changed.
//   - ListeningChanged (participant_input.listening_changed): capture started
//     or stopped.
//   - CaptureFailed (participant_input.capture_failed): recognizer error.
//
// engine_speech events
//
//   - SpeakingStarted (engine_speech.started): an utterance began playing.
//   - SpeakingEnded (engine_speech.ended): an utterance finished or was
//     cancelled.
//
// media events
//
//   - MuteChanged (media.mute_changed)
//   - CameraChanged (media.camera_changed)
//   - MicrophoneChanged (media.microphone_changed)
package events
