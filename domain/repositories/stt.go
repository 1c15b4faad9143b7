package repositories

import "context"

// AudioInput is a recorded utterance to transcribe
type AudioInput struct {
	Data     []byte
	Filename string
	// Language is the spoken language hint, e.g. "pt"
	Language string
	// SampleRate and Encoding are only needed by providers that cannot sniff the container
	SampleRate int
	Encoding   string
}

// Transcriber abstracts speech recognition services
type Transcriber interface {
	// Transcribe converts audio data to text
	Transcribe(ctx context.Context, audio AudioInput) (string, error)
}
