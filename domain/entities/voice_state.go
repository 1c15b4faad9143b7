package entities

// VoiceState is the current phase of the voice interaction lifecycle
type VoiceState string

const (
	VoiceIdle          VoiceState = "idle"
	VoiceRecording     VoiceState = "recording"
	VoiceTranscribing  VoiceState = "transcribing"
	VoiceAwaitingReply VoiceState = "awaitingReply"
	VoiceSpeaking      VoiceState = "speaking"
)

// Busy reports whether a voice or reply operation is in flight
func (s VoiceState) Busy() bool {
	return s != VoiceIdle && s != ""
}
