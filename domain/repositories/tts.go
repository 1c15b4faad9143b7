package repositories

import (
	"context"
	"io"
)

// SynthesizedAudio is a stream of encoded audio. Callers must close Body.
type SynthesizedAudio struct {
	ContentType string
	Body        io.ReadCloser
}

type Synthesizer interface {
	Synthesize(ctx context.Context, text string) (*SynthesizedAudio, error)
}
